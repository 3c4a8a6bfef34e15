package broadcast

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okieraised/farm-telemetry-agent/internal/constants"
	"github.com/okieraised/farm-telemetry-agent/internal/domain"
	"github.com/okieraised/farm-telemetry-agent/internal/utilities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(h *Hub, buffer int) *Client {
	return &Client{
		ID:     uuid.New(),
		send:   make(chan Event, buffer),
		hub:    h,
		closed: make(chan struct{}),
	}
}

func receiveEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case event, ok := <-c.send:
		require.True(t, ok)
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestHubDeliversToSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub()
	h.Run(ctx)

	c1 := testClient(h, 4)
	c2 := testClient(h, 4)
	h.Register(c1)
	h.Register(c2)

	h.PublishReading(domain.Reading{
		SoilMoisture: utilities.Ptr(250),
		Timestamp:    time.Now(),
		Source:       domain.SourcePush,
	})

	for _, c := range []*Client{c1, c2} {
		event := receiveEvent(t, c)
		assert.Equal(t, constants.EventSensorDataUpdate, event.Event)
		assert.Equal(t, 250, *event.Data.SoilMoisture)
		assert.True(t, event.Data.NeedsIrrigation)
	}
}

func TestHubDropsSlowSubscriberWithoutBlocking(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub()
	h.Run(ctx)

	slow := testClient(h, 1)
	fast := testClient(h, 16)
	h.Register(slow)
	h.Register(fast)

	// The slow subscriber never drains; its one-slot buffer fills on the
	// first event and the second delivery drops it.
	for i := 0; i < 3; i++ {
		h.PublishReading(domain.Reading{
			SoilMoisture: utilities.Ptr(700 + i),
			Timestamp:    time.Now().Add(time.Duration(i) * time.Second),
			Source:       domain.SourcePoll,
		})
	}

	for i := 0; i < 3; i++ {
		event := receiveEvent(t, fast)
		assert.Equal(t, 700+i, *event.Data.SoilMoisture)
	}

	// The slow subscriber's channel ends up closed after its buffered event.
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-slow.send:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestPublishReadingNeverBlocks(t *testing.T) {
	// No Run loop draining the queue: publishes beyond the buffer drop.
	h := NewHub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			h.PublishReading(domain.Reading{Timestamp: time.Now()})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PublishReading blocked")
	}
}

func TestUnregisterClosesSendChannel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub()
	h.Run(ctx)

	c := testClient(h, 4)
	h.Register(c)
	h.Unregister(c)

	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-c.send:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestNewSensorDataUpdate(t *testing.T) {
	ts := time.Now()
	event := NewSensorDataUpdate(domain.Reading{
		Temperature:  utilities.Ptr(21.5),
		SoilMoisture: utilities.Ptr(500),
		Timestamp:    ts,
		Source:       domain.SourceManual,
	})

	assert.Equal(t, constants.EventSensorDataUpdate, event.Event)
	assert.Equal(t, 21.5, *event.Data.Temperature)
	assert.Nil(t, event.Data.Humidity)
	assert.Equal(t, ts, event.Data.Timestamp)
	assert.False(t, event.Data.NeedsIrrigation)
}
