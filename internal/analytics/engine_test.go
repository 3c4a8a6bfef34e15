package analytics

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/okieraised/farm-telemetry-agent/internal/cerrors"
	"github.com/okieraised/farm-telemetry-agent/internal/domain"
	"github.com/okieraised/farm-telemetry-agent/internal/store"
	"github.com/okieraised/farm-telemetry-agent/internal/utilities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedReadings(t *testing.T, s *store.MemoryStore, soil []int) {
	t.Helper()
	now := time.Now()
	for i, v := range soil {
		ts := now.Add(-time.Duration(len(soil)-i) * time.Minute)
		_, err := s.Save(context.Background(), domain.Reading{
			Temperature:  utilities.Ptr(20.0 + float64(i)),
			Humidity:     utilities.Ptr(60.0),
			SoilMoisture: utilities.Ptr(v),
			Timestamp:    ts,
			Source:       domain.SourcePoll,
		})
		require.NoError(t, err)
	}
}

func TestAnalyzeEmptyWindow(t *testing.T) {
	engine := NewEngine(store.NewMemoryStore())

	report, appErr := engine.Analyze(context.Background(), 24, "")
	assert.Nil(t, report)
	require.NotNil(t, appErr)
	assert.Equal(t, cerrors.ErrNoTelemetryData.Code, appErr.Code)
}

func TestAnalyzeInvalidWindow(t *testing.T) {
	engine := NewEngine(store.NewMemoryStore())

	_, appErr := engine.Analyze(context.Background(), 0, "")
	require.NotNil(t, appErr)
	assert.Equal(t, cerrors.ErrInvalidWindow.Code, appErr.Code)
}

func TestAnalyzeTrendAndPrediction(t *testing.T) {
	mem := store.NewMemoryStore()
	seedReadings(t, mem, []int{700, 725, 750, 775, 800})
	engine := NewEngine(mem)

	report, appErr := engine.Analyze(context.Background(), 24, "")
	require.Nil(t, appErr)
	require.NotNil(t, report)
	assert.Equal(t, 24, report.WindowHours)

	soil := report.Stats[domain.QuantitySoilMoisture]
	require.NotNil(t, soil)
	assert.InDelta(t, 25.0, soil.Trend, 1e-9)
	assert.Equal(t, float64(800), soil.Current)
	// Prediction extrapolates the trend six samples forward.
	assert.InDelta(t, 800+25*6, soil.Predicted, 1e-9)
	assert.Equal(t, 5, soil.SampleCount)
	assert.Equal(t, float64(700), soil.Min)
	assert.Equal(t, float64(800), soil.Max)

	temp := report.Stats[domain.QuantityTemperature]
	require.NotNil(t, temp)
	assert.InDelta(t, 1.0, temp.Trend, 1e-9)
}

func TestAnalyzeSkipsAbsentQuantities(t *testing.T) {
	mem := store.NewMemoryStore()
	now := time.Now()
	_, err := mem.Save(context.Background(), domain.Reading{
		Temperature: utilities.Ptr(21.0),
		Timestamp:   now.Add(-time.Minute),
		Source:      domain.SourcePush,
	})
	require.NoError(t, err)

	report, appErr := NewEngine(mem).Analyze(context.Background(), 24, "")
	require.Nil(t, appErr)
	assert.Contains(t, report.Stats, domain.QuantityTemperature)
	assert.NotContains(t, report.Stats, domain.QuantitySoilMoisture)
	assert.NotContains(t, report.Stats, domain.QuantityHumidity)
}

func TestAnalyzeRecommendsIrrigationWhenSoilDry(t *testing.T) {
	mem := store.NewMemoryStore()
	seedReadings(t, mem, []int{280, 275, 270, 265, 260})

	report, appErr := NewEngine(mem).Analyze(context.Background(), 24, "")
	require.Nil(t, appErr)

	var found bool
	for _, rec := range report.Recommendations {
		if strings.Contains(rec, "watering recommended") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAnalyzePredictsUpcomingIrrigationNeed(t *testing.T) {
	mem := store.NewMemoryStore()
	// Currently above the irrigation level but falling fast enough that the
	// six-sample projection crosses it.
	seedReadings(t, mem, []int{500, 450, 400, 350, 310})

	report, appErr := NewEngine(mem).Analyze(context.Background(), 24, "")
	require.Nil(t, appErr)

	soil := report.Stats[domain.QuantitySoilMoisture]
	require.NotNil(t, soil)
	assert.GreaterOrEqual(t, soil.Current, float64(300))
	assert.Less(t, soil.Predicted, float64(300))

	var found bool
	for _, rec := range report.Recommendations {
		if strings.Contains(rec, "projected to drop") {
			found = true
		}
	}
	assert.True(t, found)
}
