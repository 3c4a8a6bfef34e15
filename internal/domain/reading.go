package domain

import (
	"time"

	"github.com/okieraised/farm-telemetry-agent/internal/constants"
)

// Source tags the provenance of a reading. Informational only.
type Source string

const (
	SourcePoll   Source = "poll"
	SourcePush   Source = "push"
	SourceManual Source = "manual"
)

// Quantity identifies one physical measurement carried by a reading.
type Quantity string

const (
	QuantityTemperature  Quantity = "temperature"
	QuantityHumidity     Quantity = "humidity"
	QuantitySoilMoisture Quantity = "soil_moisture"
)

// Quantities lists every quantity in canonical order.
var Quantities = []Quantity{QuantityTemperature, QuantityHumidity, QuantitySoilMoisture}

// Reading is one timestamped environmental sample. Any subset of the three
// quantities may be present; the timestamp is the identity key.
type Reading struct {
	Temperature  *float64  `json:"temperature,omitempty"`
	Humidity     *float64  `json:"humidity,omitempty"`
	SoilMoisture *int      `json:"soil_moisture,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	Source       Source    `json:"source"`
	OwnerRef     string    `json:"owner_ref,omitempty"`
}

// HasAnyQuantity reports whether at least one quantity is present.
func (r *Reading) HasAnyQuantity() bool {
	return r.Temperature != nil || r.Humidity != nil || r.SoilMoisture != nil
}

// HasAllQuantities reports whether all three quantities are present.
func (r *Reading) HasAllQuantities() bool {
	return r.Temperature != nil && r.Humidity != nil && r.SoilMoisture != nil
}

// NeedsIrrigation reports whether the soil moisture level calls for watering.
// False when soil moisture is absent.
func (r *Reading) NeedsIrrigation() bool {
	return r.SoilMoisture != nil && *r.SoilMoisture < constants.SoilMoistureIrrigationLevel
}

// Value returns the named quantity as a float64 and whether it is present.
func (r *Reading) Value(q Quantity) (float64, bool) {
	switch q {
	case QuantityTemperature:
		if r.Temperature != nil {
			return *r.Temperature, true
		}
	case QuantityHumidity:
		if r.Humidity != nil {
			return *r.Humidity, true
		}
	case QuantitySoilMoisture:
		if r.SoilMoisture != nil {
			return float64(*r.SoilMoisture), true
		}
	}
	return 0, false
}

// PartialSample is a reading candidate assembled from per-quantity feeds.
// Each field carries its own observation time so the combined timestamp can
// be resolved to the latest one seen.
type PartialSample struct {
	Temperature    *float64
	Humidity       *float64
	SoilMoisture   *float64
	TemperatureAt  time.Time
	HumidityAt     time.Time
	SoilMoistureAt time.Time
}

// IsEmpty reports whether no quantity is present.
func (s *PartialSample) IsEmpty() bool {
	return s.Temperature == nil && s.Humidity == nil && s.SoilMoisture == nil
}

// IsComplete reports whether all three quantities are present.
func (s *PartialSample) IsComplete() bool {
	return s.Temperature != nil && s.Humidity != nil && s.SoilMoisture != nil
}

// Timestamp resolves the sample timestamp: the latest of the per-quantity
// observation times, or fallback when none of them is set.
func (s *PartialSample) Timestamp(fallback time.Time) time.Time {
	var latest time.Time
	for _, at := range []time.Time{s.TemperatureAt, s.HumidityAt, s.SoilMoistureAt} {
		if at.After(latest) {
			latest = at
		}
	}
	if latest.IsZero() {
		return fallback
	}
	return latest
}
