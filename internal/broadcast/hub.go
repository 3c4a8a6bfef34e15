package broadcast

import (
	"context"
	"fmt"

	"github.com/okieraised/farm-telemetry-agent/internal/domain"
	"github.com/okieraised/farm-telemetry-agent/internal/infrastructure/log"
)

// Hub broadcasts newly stored readings to live websocket subscribers.
// Delivery is best-effort: no buffering for disconnected subscribers, no
// back-pressure, and a slow subscriber is dropped rather than allowed to
// block ingestion.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	logger     *log.Logger
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Event, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     log.MustNewECSLogger().WithComponent("fanout"),
	}
}

func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("Starting to listen for subscribers and readings")
	go func() {
		for {
			select {
			case client := <-h.register:
				h.registerClient(client)
			case client := <-h.unregister:
				h.removeClient(client)
			case event := <-h.broadcast:
				h.deliver(event)
			case <-ctx.Done():
				h.logger.Info("Shutting down fan-out hub")
				return
			}
		}
	}()
}

// PublishReading enqueues a fan-out event for a stored reading. Never
// blocks: if the hub cannot keep up the event is dropped and logged.
func (h *Hub) PublishReading(r domain.Reading) {
	select {
	case h.broadcast <- NewSensorDataUpdate(r):
	default:
		h.logger.Warn("Fan-out queue full, dropping reading event")
	}
}

// Register hands a new subscriber to the hub loop.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a subscriber from the hub loop.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) registerClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		h.clients[client] = true
		h.logger.Debug(fmt.Sprintf("Registered subscriber [%s]", client.ID.String()))
	}
	h.logger.Debug(fmt.Sprintf("There are [%d] subscribers connected", len(h.clients)))
}

func (h *Hub) removeClient(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		h.logger.Debug(fmt.Sprintf("Subscriber [%s] disconnected", client.ID.String()))
	}
}

func (h *Hub) deliver(event Event) {
	for client := range h.clients {
		select {
		case client.send <- event:
		default:
			// A subscriber that cannot drain its buffer is dropped
			// rather than allowed to stall delivery for the rest.
			close(client.send)
			delete(h.clients, client)
			h.logger.Warn(fmt.Sprintf("Dropping slow subscriber [%s]", client.ID.String()))
		}
	}
}
