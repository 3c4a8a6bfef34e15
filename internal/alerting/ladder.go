package alerting

import (
	"fmt"

	"github.com/okieraised/farm-telemetry-agent/internal/constants"
	"github.com/okieraised/farm-telemetry-agent/internal/domain"
)

// ladderAlerts evaluates the fixed severity ladders. Each ladder is mutually
// exclusive per quantity per direction: only the most severe rung of one
// direction fires, but a dry-side and a wet-side alert can coexist for
// different quantities.
func ladderAlerts(r *domain.Reading) []domain.Alert {
	var out []domain.Alert

	if r.SoilMoisture != nil {
		v := float64(*r.SoilMoisture)
		switch {
		case v < constants.SoilMoistureCriticalLow:
			out = append(out, soilAlert(v, domain.SeverityCritical,
				"soil moisture critically low",
				"irrigate immediately; crops are at risk of wilting"))
		case v < constants.SoilMoistureHighDry:
			out = append(out, soilAlert(v, domain.SeverityHigh,
				"soil moisture below irrigation level",
				"schedule irrigation today"))
		case v > constants.SoilMoistureHighWet:
			out = append(out, soilAlert(v, domain.SeverityHigh,
				"soil is waterlogged",
				"stop irrigation and inspect drainage"))
		case v > constants.SoilMoistureMediumWet:
			out = append(out, soilAlert(v, domain.SeverityMedium,
				"soil moisture higher than optimal",
				"reduce the irrigation schedule"))
		}
	}

	if r.Temperature != nil {
		v := *r.Temperature
		switch {
		case v > constants.TemperatureCriticalHigh:
			out = append(out, tempAlert(v, domain.SeverityCritical,
				"temperature critically high",
				"deploy shading and increase irrigation frequency"))
		case v > constants.TemperatureHighHot:
			out = append(out, tempAlert(v, domain.SeverityHigh,
				"temperature above safe range for most crops",
				"monitor sensitive crops and consider shading"))
		case v < constants.TemperatureHighCold:
			out = append(out, tempAlert(v, domain.SeverityHigh,
				"temperature near freezing",
				"apply frost protection"))
		case v < constants.TemperatureMediumCold:
			out = append(out, tempAlert(v, domain.SeverityMedium,
				"temperature low for the growing season",
				"watch overnight forecasts for frost"))
		}
	}

	if r.Humidity != nil {
		v := *r.Humidity
		switch {
		case v < constants.HumidityHighDry:
			out = append(out, humidityAlert(v, domain.SeverityHigh,
				"air extremely dry",
				"consider misting or windbreaks to slow evaporation"))
		case v > constants.HumidityHighWet:
			out = append(out, humidityAlert(v, domain.SeverityHigh,
				"air near saturation",
				"improve airflow to limit fungal disease"))
		case v > constants.HumidityMediumWet:
			out = append(out, humidityAlert(v, domain.SeverityMedium,
				"humidity elevated",
				"monitor foliage for early signs of mildew"))
		}
	}

	return out
}

func soilAlert(v float64, sev domain.AlertSeverity, msg, rec string) domain.Alert {
	return domain.Alert{
		Quantity: domain.QuantitySoilMoisture, Severity: sev, Value: v,
		Message: fmt.Sprintf("%s (%d)", msg, int(v)), Recommendation: rec,
	}
}

func tempAlert(v float64, sev domain.AlertSeverity, msg, rec string) domain.Alert {
	return domain.Alert{
		Quantity: domain.QuantityTemperature, Severity: sev, Value: v,
		Message: fmt.Sprintf("%s (%.1f°C)", msg, v), Recommendation: rec,
	}
}

func humidityAlert(v float64, sev domain.AlertSeverity, msg, rec string) domain.Alert {
	return domain.Alert{
		Quantity: domain.QuantityHumidity, Severity: sev, Value: v,
		Message: fmt.Sprintf("%s (%.1f%%)", msg, v), Recommendation: rec,
	}
}
