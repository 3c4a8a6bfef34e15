package alerting

import (
	"context"
	"testing"
	"time"

	"github.com/okieraised/farm-telemetry-agent/internal/cerrors"
	"github.com/okieraised/farm-telemetry-agent/internal/domain"
	"github.com/okieraised/farm-telemetry-agent/internal/store"
	"github.com/okieraised/farm-telemetry-agent/internal/utilities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveLatest(t *testing.T, s *store.MemoryStore, r domain.Reading) {
	t.Helper()
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	_, err := s.Save(context.Background(), r)
	require.NoError(t, err)
}

func alertsFor(t *testing.T, s *store.MemoryStore) []domain.Alert {
	t.Helper()
	alerts, appErr := NewEngine(s, s).Evaluate(context.Background(), "")
	require.Nil(t, appErr)
	return alerts
}

func soilAlerts(alerts []domain.Alert) []domain.Alert {
	var out []domain.Alert
	for _, a := range alerts {
		if a.Quantity == domain.QuantitySoilMoisture {
			out = append(out, a)
		}
	}
	return out
}

func TestEvaluateNoReading(t *testing.T) {
	_, appErr := NewEngine(store.NewMemoryStore(), nil).Evaluate(context.Background(), "")
	require.NotNil(t, appErr)
	assert.Equal(t, cerrors.ErrNoTelemetryData.Code, appErr.Code)
}

func TestCriticallyDrySoilFiresExactlyOneSoilAlert(t *testing.T) {
	mem := store.NewMemoryStore()
	saveLatest(t, mem, domain.Reading{SoilMoisture: utilities.Ptr(150)})

	got := soilAlerts(alertsFor(t, mem))
	require.Len(t, got, 1)
	assert.Equal(t, domain.SeverityCritical, got[0].Severity)
}

func TestDrySoilFiresHighNotCritical(t *testing.T) {
	mem := store.NewMemoryStore()
	saveLatest(t, mem, domain.Reading{SoilMoisture: utilities.Ptr(250)})

	got := soilAlerts(alertsFor(t, mem))
	require.Len(t, got, 1)
	assert.Equal(t, domain.SeverityHigh, got[0].Severity)
}

func TestWaterloggedSoil(t *testing.T) {
	mem := store.NewMemoryStore()
	saveLatest(t, mem, domain.Reading{SoilMoisture: utilities.Ptr(1300)})

	got := soilAlerts(alertsFor(t, mem))
	require.Len(t, got, 1)
	assert.Equal(t, domain.SeverityHigh, got[0].Severity)
}

func TestHealthyReadingFiresNothing(t *testing.T) {
	mem := store.NewMemoryStore()
	saveLatest(t, mem, domain.Reading{
		Temperature:  utilities.Ptr(22.0),
		Humidity:     utilities.Ptr(60.0),
		SoilMoisture: utilities.Ptr(700),
	})

	assert.Empty(t, alertsFor(t, mem))
}

func TestMultipleQuantitiesFireIndependently(t *testing.T) {
	mem := store.NewMemoryStore()
	saveLatest(t, mem, domain.Reading{
		Temperature:  utilities.Ptr(46.0),
		Humidity:     utilities.Ptr(10.0),
		SoilMoisture: utilities.Ptr(150),
	})

	alerts := alertsFor(t, mem)
	assert.Len(t, alerts, 3)

	bySeverity := map[domain.Quantity]domain.AlertSeverity{}
	for _, a := range alerts {
		bySeverity[a.Quantity] = a.Severity
	}
	assert.Equal(t, domain.SeverityCritical, bySeverity[domain.QuantityTemperature])
	assert.Equal(t, domain.SeverityHigh, bySeverity[domain.QuantityHumidity])
	assert.Equal(t, domain.SeverityCritical, bySeverity[domain.QuantitySoilMoisture])
}

func TestTemperatureColdLadder(t *testing.T) {
	mem := store.NewMemoryStore()
	saveLatest(t, mem, domain.Reading{Temperature: utilities.Ptr(5.0)})

	alerts := alertsFor(t, mem)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.SeverityMedium, alerts[0].Severity)

	mem2 := store.NewMemoryStore()
	saveLatest(t, mem2, domain.Reading{Temperature: utilities.Ptr(1.0)})

	alerts = alertsFor(t, mem2)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.SeverityHigh, alerts[0].Severity)
}

func TestCustomRuleFiresAlongsideLadder(t *testing.T) {
	mem := store.NewMemoryStore()
	_, err := mem.CreateRule(context.Background(), domain.AlertRule{
		Quantity:  domain.QuantitySoilMoisture,
		Threshold: 600,
		Condition: domain.ConditionBelow,
		Severity:  domain.SeverityLow,
		Message:   "soil below farm-specific comfort level",
	})
	require.NoError(t, err)

	saveLatest(t, mem, domain.Reading{SoilMoisture: utilities.Ptr(250)})

	alerts := alertsFor(t, mem)
	require.Len(t, alerts, 2)

	var custom, ladder int
	for _, a := range alerts {
		if a.Custom {
			custom++
			assert.Equal(t, domain.SeverityLow, a.Severity)
			assert.Equal(t, "soil below farm-specific comfort level", a.Message)
		} else {
			ladder++
		}
	}
	assert.Equal(t, 1, custom)
	assert.Equal(t, 1, ladder)
}

func TestCustomRuleSkipsAbsentQuantity(t *testing.T) {
	mem := store.NewMemoryStore()
	_, err := mem.CreateRule(context.Background(), domain.AlertRule{
		Quantity:  domain.QuantityHumidity,
		Threshold: 50,
		Condition: domain.ConditionAbove,
		Severity:  domain.SeverityMedium,
		Message:   "humid",
	})
	require.NoError(t, err)

	saveLatest(t, mem, domain.Reading{SoilMoisture: utilities.Ptr(700)})

	assert.Empty(t, alertsFor(t, mem))
}

func TestAlertRuleMatches(t *testing.T) {
	rule := domain.AlertRule{Threshold: 10, Condition: domain.ConditionAbove}
	assert.True(t, rule.Matches(11))
	assert.False(t, rule.Matches(10))

	rule.Condition = domain.ConditionBelow
	assert.True(t, rule.Matches(9))
	assert.False(t, rule.Matches(10))

	rule.Condition = domain.ConditionEqual
	assert.True(t, rule.Matches(10))
	assert.False(t, rule.Matches(9))
}
