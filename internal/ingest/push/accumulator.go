package push

import (
	"sync"
	"time"

	"github.com/okieraised/farm-telemetry-agent/internal/domain"
)

// accumulator collects per-quantity values until one sample instant holds
// all three quantities, then emits and clears atomically.
type accumulator struct {
	mu      sync.Mutex
	pending domain.PartialSample
}

// set records a value for one quantity, stamping the receipt time. When the
// pending sample becomes complete it is returned with emitted=true and the
// accumulator is cleared.
func (a *accumulator) set(q domain.Quantity, value float64, at time.Time) (domain.PartialSample, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch q {
	case domain.QuantityTemperature:
		a.pending.Temperature, a.pending.TemperatureAt = &value, at
	case domain.QuantityHumidity:
		a.pending.Humidity, a.pending.HumidityAt = &value, at
	case domain.QuantitySoilMoisture:
		a.pending.SoilMoisture, a.pending.SoilMoistureAt = &value, at
	default:
		return domain.PartialSample{}, false
	}

	if !a.pending.IsComplete() {
		return domain.PartialSample{}, false
	}
	complete := a.pending
	a.pending = domain.PartialSample{}
	return complete, true
}

// snapshot returns a copy of the pending partial sample.
func (a *accumulator) snapshot() domain.PartialSample {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending
}
