package analytics

import (
	"fmt"

	"github.com/okieraised/farm-telemetry-agent/internal/constants"
	"github.com/okieraised/farm-telemetry-agent/internal/domain"
)

// Per-quantity thresholds for the advisory rules. Trend thresholds are in
// units per tick, volatility thresholds in quantity units.
var (
	trendThresholds = map[domain.Quantity]float64{
		domain.QuantityTemperature:  0.5,
		domain.QuantityHumidity:     1.0,
		domain.QuantitySoilMoisture: 20,
	}
	volatilityThresholds = map[domain.Quantity]float64{
		domain.QuantityTemperature:  5,
		domain.QuantityHumidity:     10,
		domain.QuantitySoilMoisture: 150,
	}
)

// recommendationsFor evaluates the advisory rules for one quantity. Each
// rule fires independently and every applicable message is appended; these
// are free-form advisory strings, not typed alerts.
func recommendationsFor(q domain.Quantity, stats *domain.QuantityStats) []string {
	var out []string

	if t := trendThresholds[q]; stats.Trend > t {
		out = append(out, fmt.Sprintf("%s is rising fast (%.2f per sample); check for sensor drift or environmental change", q, stats.Trend))
	} else if stats.Trend < -t {
		out = append(out, fmt.Sprintf("%s is falling fast (%.2f per sample); check for sensor drift or environmental change", q, stats.Trend))
	}

	if stats.StdDev > volatilityThresholds[q] {
		out = append(out, fmt.Sprintf("%s readings are highly volatile (stddev %.2f); verify sensor placement", q, stats.StdDev))
	}

	switch q {
	case domain.QuantityTemperature:
		if stats.Current > constants.TemperatureHighHot {
			out = append(out, "temperature is very high; provide shade or ventilation for sensitive crops")
		} else if stats.Current < constants.TemperatureHighCold {
			out = append(out, "temperature is near freezing; protect frost-sensitive crops")
		}
	case domain.QuantityHumidity:
		if stats.Current < constants.HumidityHighDry {
			out = append(out, "air is very dry; consider misting or mulching to retain moisture")
		} else if stats.Current > constants.HumidityHighWet {
			out = append(out, "humidity is near saturation; watch for fungal disease pressure")
		}
	case domain.QuantitySoilMoisture:
		if stats.Current < constants.SoilMoistureIrrigationLevel {
			out = append(out, "soil moisture is below the irrigation level; watering recommended now")
		} else if stats.Current > constants.SoilMoistureHighWet {
			out = append(out, "soil is saturated; hold off irrigation and check drainage")
		}
		// Forward-looking: surfaced separately from current-state advice.
		if stats.Predicted < constants.SoilMoistureIrrigationLevel && stats.Current >= constants.SoilMoistureIrrigationLevel {
			out = append(out, fmt.Sprintf("soil moisture is projected to drop below the irrigation level within %d samples; plan irrigation", constants.PredictionHorizonTicks))
		}
	}

	return out
}
