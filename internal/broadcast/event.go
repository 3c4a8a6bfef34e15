package broadcast

import (
	"time"

	"github.com/okieraised/farm-telemetry-agent/internal/constants"
	"github.com/okieraised/farm-telemetry-agent/internal/domain"
)

// SensorUpdate is the payload delivered to live subscribers for each newly
// stored reading.
type SensorUpdate struct {
	Temperature     *float64  `json:"temperature,omitempty"`
	Humidity        *float64  `json:"humidity,omitempty"`
	SoilMoisture    *int      `json:"soilMoisture,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
	NeedsIrrigation bool      `json:"needsIrrigation"`
}

// Event is the wire envelope sent over the websocket.
type Event struct {
	Event string       `json:"event"`
	Data  SensorUpdate `json:"data"`
}

// NewSensorDataUpdate builds the fan-out event for a stored reading.
func NewSensorDataUpdate(r domain.Reading) Event {
	return Event{
		Event: constants.EventSensorDataUpdate,
		Data: SensorUpdate{
			Temperature:     r.Temperature,
			Humidity:        r.Humidity,
			SoilMoisture:    r.SoilMoisture,
			Timestamp:       r.Timestamp,
			NeedsIrrigation: r.NeedsIrrigation(),
		},
	}
}
