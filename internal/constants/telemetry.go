package constants

// Declared sensor ranges. A present quantity outside its range invalidates
// the write attempt.
const (
	TemperatureMin = -50.0
	TemperatureMax = 100.0
	HumidityMin    = 0.0
	HumidityMax    = 100.0

	// Raw 12-bit ADC value from the capacitive soil probe.
	SoilMoistureMin = 0
	SoilMoistureMax = 4095
)

// Soil moisture below this level means the field needs irrigation.
const SoilMoistureIrrigationLevel = 300

// Fixed severity ladders evaluated by the alert engine.
const (
	SoilMoistureCriticalLow = 200
	SoilMoistureHighDry     = 300
	SoilMoistureHighWet     = 1200
	SoilMoistureMediumWet   = 1000

	TemperatureCriticalHigh = 45.0
	TemperatureHighHot      = 38.0
	TemperatureHighCold     = 2.0
	TemperatureMediumCold   = 8.0

	HumidityHighDry = 20.0
	HumidityHighWet = 95.0
	HumidityMediumWet = 85.0
)

const (
	// Number of ticks ahead the short-horizon prediction looks.
	PredictionHorizonTicks = 6
	// Samples averaged for the moving average.
	MovingAverageWindow = 5
)

// Fan-out event carrying a freshly stored reading.
const EventSensorDataUpdate = "sensorDataUpdate"
