package push

import (
	"testing"

	"github.com/okieraised/farm-telemetry-agent/internal/domain"
	"github.com/stretchr/testify/assert"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 0 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 0 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

func newTestAdapter() *Adapter {
	return NewAdapter(nil, "farmer", map[domain.Quantity]string{
		domain.QuantityTemperature:  "temperature",
		domain.QuantityHumidity:     "humidity",
		domain.QuantitySoilMoisture: "soil-moisture",
	})
}

func TestAdapterAssemblesSampleFromPerFeedMessages(t *testing.T) {
	adapter := newTestAdapter()

	var got []domain.PartialSample
	adapter.OnSample(func(sample domain.PartialSample) {
		got = append(got, sample)
	})

	adapter.handleMessage(nil, &fakeMessage{topic: "farmer/feeds/temperature", payload: []byte("21.5")})
	adapter.handleMessage(nil, &fakeMessage{topic: "farmer/feeds/humidity", payload: []byte("60")})
	assert.Empty(t, got)

	adapter.handleMessage(nil, &fakeMessage{topic: "farmer/feeds/soil-moisture", payload: []byte("700")})
	assert.Len(t, got, 1)
	assert.True(t, got[0].IsComplete())
	assert.Equal(t, 21.5, *got[0].Temperature)
	assert.Equal(t, float64(700), *got[0].SoilMoisture)

	// Assembly state resets after the emit.
	pending := adapter.Pending()
	assert.True(t, pending.IsEmpty())
}

func TestAdapterDropsMalformedPayload(t *testing.T) {
	adapter := newTestAdapter()

	var emitted int
	adapter.OnSample(func(domain.PartialSample) { emitted++ })

	adapter.handleMessage(nil, &fakeMessage{topic: "farmer/feeds/temperature", payload: []byte("21.5")})
	adapter.handleMessage(nil, &fakeMessage{topic: "farmer/feeds/humidity", payload: []byte("not-a-number")})

	// The malformed message is dropped without disturbing collected values.
	pending := adapter.Pending()
	assert.NotNil(t, pending.Temperature)
	assert.Nil(t, pending.Humidity)
	assert.Equal(t, 0, emitted)
}

func TestAdapterIgnoresUnknownTopic(t *testing.T) {
	adapter := newTestAdapter()

	adapter.handleMessage(nil, &fakeMessage{topic: "farmer/feeds/pressure", payload: []byte("1013")})
	pending := adapter.Pending()
	assert.True(t, pending.IsEmpty())
}

func TestAdapterPayloadWhitespaceTolerated(t *testing.T) {
	adapter := newTestAdapter()

	adapter.handleMessage(nil, &fakeMessage{topic: "farmer/feeds/temperature", payload: []byte(" 21.5\n")})
	pending := adapter.Pending()
	assert.NotNil(t, pending.Temperature)
	assert.Equal(t, 21.5, *pending.Temperature)
}

func TestAdapterStateString(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "connected", StateConnected.String())
}
