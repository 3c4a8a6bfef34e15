package push

import (
	"testing"
	"time"

	"github.com/okieraised/farm-telemetry-agent/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestAccumulatorEmitsOnCompletion(t *testing.T) {
	var acc accumulator
	t0 := time.Now()

	_, emitted := acc.set(domain.QuantityTemperature, 21.5, t0)
	assert.False(t, emitted)

	_, emitted = acc.set(domain.QuantityHumidity, 60, t0.Add(time.Second))
	assert.False(t, emitted)

	sample, emitted := acc.set(domain.QuantitySoilMoisture, 700, t0.Add(2*time.Second))
	assert.True(t, emitted)
	assert.True(t, sample.IsComplete())
	assert.Equal(t, 21.5, *sample.Temperature)
	assert.Equal(t, float64(60), *sample.Humidity)
	assert.Equal(t, float64(700), *sample.SoilMoisture)

	// The sample timestamp resolves to the latest per-quantity receipt.
	assert.Equal(t, t0.Add(2*time.Second), sample.Timestamp(time.Time{}))

	// Emission clears the accumulator.
	cleared := acc.snapshot()
	assert.True(t, cleared.IsEmpty())
}

func TestAccumulatorOverwritesRepeatedQuantity(t *testing.T) {
	var acc accumulator
	t0 := time.Now()

	_, emitted := acc.set(domain.QuantityTemperature, 20, t0)
	assert.False(t, emitted)
	_, emitted = acc.set(domain.QuantityTemperature, 22, t0.Add(time.Second))
	assert.False(t, emitted)

	pending := acc.snapshot()
	assert.Equal(t, float64(22), *pending.Temperature)

	_, emitted = acc.set(domain.QuantityHumidity, 55, t0)
	assert.False(t, emitted)
	sample, emitted := acc.set(domain.QuantitySoilMoisture, 900, t0)
	assert.True(t, emitted)
	assert.Equal(t, float64(22), *sample.Temperature)
}

func TestAccumulatorIgnoresUnknownQuantity(t *testing.T) {
	var acc accumulator

	_, emitted := acc.set(domain.Quantity("pressure"), 1013, time.Now())
	assert.False(t, emitted)
	pending := acc.snapshot()
	assert.True(t, pending.IsEmpty())
}
