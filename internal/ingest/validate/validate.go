package validate

import (
	"fmt"

	"github.com/okieraised/farm-telemetry-agent/internal/cerrors"
	"github.com/okieraised/farm-telemetry-agent/internal/constants"
	"github.com/okieraised/farm-telemetry-agent/internal/domain"
	"github.com/okieraised/farm-telemetry-agent/internal/utilities"
)

// Mode selects the strictness applied to a sample. The scheduled pipeline
// tolerates partial samples; manual entry requires all three quantities.
type Mode int

const (
	ModeScheduled Mode = iota
	ModeManual
)

// Violation describes one out-of-range quantity, including the offending
// value so API callers can echo it back.
type Violation struct {
	Quantity domain.Quantity `json:"quantity"`
	Value    float64         `json:"value"`
	Min      float64         `json:"min"`
	Max      float64         `json:"max"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s=%g outside [%g, %g]", v.Quantity, v.Value, v.Min, v.Max)
}

// Result is the outcome of validating one sample.
type Result struct {
	// Accepted carries the normalized values that passed validation.
	Accepted domain.PartialSample
	// Missing names quantities absent from the sample. Non-fatal on the
	// scheduled path, fatal on the manual path.
	Missing []domain.Quantity
	// OutOfRange lists range violations. Any violation is fatal.
	OutOfRange []Violation
	Fatal      bool
}

// Err maps the result to the API error taxonomy, or nil when storable.
func (r *Result) Err() *cerrors.AppError {
	if !r.Fatal {
		return nil
	}
	if len(r.OutOfRange) > 0 {
		return cerrors.ErrOutOfRange.WithMessage("sensor value out of range: %s", r.OutOfRange[0].String())
	}
	if r.Accepted.IsEmpty() && len(r.Missing) == len(domain.Quantities) {
		return cerrors.ErrEmptySample
	}
	return cerrors.ErrMissingQuantity
}

// Validate range-checks and normalizes a sample.
//
// Both modes treat any out-of-range quantity as fatal, so no stored reading
// ever carries an out-of-bounds value. The modes differ on missing fields:
// scheduled ingestion stores whatever subset arrived, while manual entry
// refuses a sample unless all three quantities are present. The two paths
// are kept separate deliberately; unifying them would change which samples
// the scheduled pipeline accepts.
func Validate(sample domain.PartialSample, mode Mode) Result {
	var res Result

	if sample.Temperature == nil {
		res.Missing = append(res.Missing, domain.QuantityTemperature)
	} else if v := *sample.Temperature; v < constants.TemperatureMin || v > constants.TemperatureMax {
		res.OutOfRange = append(res.OutOfRange, Violation{
			Quantity: domain.QuantityTemperature, Value: v,
			Min: constants.TemperatureMin, Max: constants.TemperatureMax,
		})
	} else {
		res.Accepted.Temperature = utilities.Ptr(utilities.RoundTo(v, 2))
		res.Accepted.TemperatureAt = sample.TemperatureAt
	}

	if sample.Humidity == nil {
		res.Missing = append(res.Missing, domain.QuantityHumidity)
	} else if v := *sample.Humidity; v < constants.HumidityMin || v > constants.HumidityMax {
		res.OutOfRange = append(res.OutOfRange, Violation{
			Quantity: domain.QuantityHumidity, Value: v,
			Min: constants.HumidityMin, Max: constants.HumidityMax,
		})
	} else {
		res.Accepted.Humidity = utilities.Ptr(utilities.RoundTo(v, 2))
		res.Accepted.HumidityAt = sample.HumidityAt
	}

	if sample.SoilMoisture == nil {
		res.Missing = append(res.Missing, domain.QuantitySoilMoisture)
	} else if v := *sample.SoilMoisture; v < constants.SoilMoistureMin || v > constants.SoilMoistureMax {
		res.OutOfRange = append(res.OutOfRange, Violation{
			Quantity: domain.QuantitySoilMoisture, Value: v,
			Min: constants.SoilMoistureMin, Max: constants.SoilMoistureMax,
		})
	} else {
		res.Accepted.SoilMoisture = utilities.Ptr(float64(utilities.RoundToInt(v)))
		res.Accepted.SoilMoistureAt = sample.SoilMoistureAt
	}

	switch {
	case len(res.OutOfRange) > 0:
		res.Fatal = true
	case res.Accepted.IsEmpty():
		res.Fatal = true
	case mode == ModeManual && len(res.Missing) > 0:
		res.Fatal = true
	}
	return res
}
