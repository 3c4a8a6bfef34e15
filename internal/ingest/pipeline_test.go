package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/okieraised/farm-telemetry-agent/internal/cerrors"
	"github.com/okieraised/farm-telemetry-agent/internal/domain"
	"github.com/okieraised/farm-telemetry-agent/internal/ingest/validate"
	"github.com/okieraised/farm-telemetry-agent/internal/store"
	"github.com/okieraised/farm-telemetry-agent/internal/utilities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureBus struct {
	readings []domain.Reading
}

func (b *captureBus) PublishReading(r domain.Reading) {
	b.readings = append(b.readings, r)
}

func completeSample(ts time.Time) domain.PartialSample {
	return domain.PartialSample{
		Temperature:    utilities.Ptr(22.456),
		Humidity:       utilities.Ptr(60.0),
		SoilMoisture:   utilities.Ptr(250.0),
		TemperatureAt:  ts,
		HumidityAt:     ts,
		SoilMoistureAt: ts,
	}
}

func TestProcessStoresNormalizedReading(t *testing.T) {
	mem := store.NewMemoryStore()
	bus := &captureBus{}
	p := NewPipeline(mem, bus, "farm-1")

	ts := time.Now()
	reading, stored, appErr := p.Process(context.Background(), completeSample(ts), domain.SourcePoll, validate.ModeScheduled)
	require.Nil(t, appErr)
	assert.True(t, stored)
	require.NotNil(t, reading)

	assert.Equal(t, 22.46, *reading.Temperature)
	assert.Equal(t, 250, *reading.SoilMoisture)
	assert.Equal(t, ts, reading.Timestamp)
	assert.Equal(t, "farm-1", reading.OwnerRef)
	assert.Equal(t, domain.SourcePoll, reading.Source)

	require.Len(t, bus.readings, 1)
	assert.Equal(t, *reading, bus.readings[0])
}

func TestProcessDuplicateTimestampSkipsBroadcast(t *testing.T) {
	mem := store.NewMemoryStore()
	bus := &captureBus{}
	p := NewPipeline(mem, bus, "")

	ts := time.Now()
	_, stored, appErr := p.Process(context.Background(), completeSample(ts), domain.SourcePoll, validate.ModeScheduled)
	require.Nil(t, appErr)
	assert.True(t, stored)

	reading, stored, appErr := p.Process(context.Background(), completeSample(ts), domain.SourcePush, validate.ModeScheduled)
	require.Nil(t, appErr)
	assert.False(t, stored)
	assert.NotNil(t, reading)

	// Only the first process call reached the fan-out.
	assert.Len(t, bus.readings, 1)
}

func TestProcessRejectsFatalSample(t *testing.T) {
	mem := store.NewMemoryStore()
	p := NewPipeline(mem, &captureBus{}, "")

	sample := completeSample(time.Now())
	sample.Temperature = utilities.Ptr(250.0)

	reading, stored, appErr := p.Process(context.Background(), sample, domain.SourceManual, validate.ModeManual)
	assert.Nil(t, reading)
	assert.False(t, stored)
	require.NotNil(t, appErr)
	assert.Equal(t, cerrors.ErrOutOfRange.Code, appErr.Code)

	latest, err := mem.Latest(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestProcessFallsBackToWallClockTimestamp(t *testing.T) {
	mem := store.NewMemoryStore()
	p := NewPipeline(mem, nil, "")

	fixed := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	sample := domain.PartialSample{Temperature: utilities.Ptr(20.0)}
	reading, stored, appErr := p.Process(context.Background(), sample, domain.SourceManual, validate.ModeScheduled)
	require.Nil(t, appErr)
	assert.True(t, stored)
	assert.Equal(t, fixed, reading.Timestamp)
}
