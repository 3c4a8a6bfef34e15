package store

import (
	"context"
	"testing"
	"time"

	"github.com/okieraised/farm-telemetry-agent/internal/domain"
	"github.com/okieraised/farm-telemetry-agent/internal/utilities"
	"github.com/stretchr/testify/assert"
)

func reading(ts time.Time, soil int) domain.Reading {
	return domain.Reading{
		Temperature:  utilities.Ptr(22.5),
		Humidity:     utilities.Ptr(55.0),
		SoilMoisture: utilities.Ptr(soil),
		Timestamp:    ts,
		Source:       domain.SourcePoll,
	}
}

func TestMemoryStoreSaveIsIdempotentPerTimestamp(t *testing.T) {
	s := NewMemoryStore()
	ts := time.Now()

	stored, err := s.Save(context.Background(), reading(ts, 700))
	assert.NoError(t, err)
	assert.True(t, stored)

	// Same timestamp again: no-op, not an error.
	stored, err = s.Save(context.Background(), reading(ts, 900))
	assert.NoError(t, err)
	assert.False(t, stored)

	latest, err := s.Latest(context.Background(), "")
	assert.NoError(t, err)
	assert.NotNil(t, latest)
	assert.Equal(t, 700, *latest.SoilMoisture)
}

func TestMemoryStoreLatestEmpty(t *testing.T) {
	s := NewMemoryStore()

	latest, err := s.Latest(context.Background(), "")
	assert.NoError(t, err)
	assert.Nil(t, latest)
}

func TestMemoryStoreHistoricalWindowAndOrder(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()

	// One reading outside the window, three inside, inserted out of order.
	for _, age := range []time.Duration{30 * time.Hour, 3 * time.Hour, 1 * time.Hour, 2 * time.Hour} {
		_, err := s.Save(context.Background(), reading(now.Add(-age), 700))
		assert.NoError(t, err)
	}

	got, err := s.Historical(context.Background(), 24, 0, "")
	assert.NoError(t, err)
	assert.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].Timestamp.Before(got[i].Timestamp))
	}
}

func TestMemoryStoreHistoricalLimitKeepsMostRecent(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()

	for i := 1; i <= 5; i++ {
		_, err := s.Save(context.Background(), reading(now.Add(-time.Duration(i)*time.Minute), 700))
		assert.NoError(t, err)
	}

	got, err := s.Historical(context.Background(), 24, 2, "")
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	// Most recent two, still ascending.
	assert.Equal(t, now.Add(-2*time.Minute).UnixNano(), got[0].Timestamp.UnixNano())
	assert.Equal(t, now.Add(-1*time.Minute).UnixNano(), got[1].Timestamp.UnixNano())
}

func TestMemoryStoreHistoricalOwnerFilter(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()

	r1 := reading(now.Add(-time.Hour), 700)
	r1.OwnerRef = "farm-1"
	r2 := reading(now.Add(-2*time.Hour), 800)
	r2.OwnerRef = "farm-2"
	for _, r := range []domain.Reading{r1, r2} {
		_, err := s.Save(context.Background(), r)
		assert.NoError(t, err)
	}

	got, err := s.Historical(context.Background(), 24, 0, "farm-1")
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "farm-1", got[0].OwnerRef)

	all, err := s.Historical(context.Background(), 24, 0, "")
	assert.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMemoryStoreDeleteOlderThan(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()

	ages := []time.Duration{
		45 * 24 * time.Hour,
		20 * 24 * time.Hour,
		5 * 24 * time.Hour,
	}
	for _, age := range ages {
		_, err := s.Save(context.Background(), reading(now.Add(-age), 700))
		assert.NoError(t, err)
	}

	removed, err := s.DeleteOlderThan(context.Background(), 30)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	removed, err = s.DeleteOlderThan(context.Background(), 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	got, err := s.Historical(context.Background(), 24*365, 0, "")
	assert.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestMemoryStoreAlertRules(t *testing.T) {
	s := NewMemoryStore()

	created, err := s.CreateRule(context.Background(), domain.AlertRule{
		Quantity:  domain.QuantitySoilMoisture,
		Threshold: 500,
		Condition: domain.ConditionBelow,
		Severity:  domain.SeverityHigh,
		Message:   "soil moisture dropping",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	rules, err := s.ListRules(context.Background())
	assert.NoError(t, err)
	assert.Len(t, rules, 1)

	removed, err := s.DeleteRule(context.Background(), created.ID)
	assert.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.DeleteRule(context.Background(), created.ID)
	assert.NoError(t, err)
	assert.False(t, removed)
}
