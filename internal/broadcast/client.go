package broadcast

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/okieraised/farm-telemetry-agent/internal/infrastructure/log"
	"github.com/pkg/errors"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client is one connected websocket subscriber. Subscribers are listen-only;
// the read pump exists to service pings and detect closure.
type Client struct {
	ID      uuid.UUID
	Conn    *websocket.Conn
	send    chan Event
	hub     *Hub
	writeMu sync.Mutex
	closed  chan struct{}
}

func NewClient(id uuid.UUID, conn *websocket.Conn, hub *Hub) *Client {
	c := &Client{
		ID:     id,
		Conn:   conn,
		send:   make(chan Event, 16),
		hub:    hub,
		closed: make(chan struct{}),
	}

	go c.pingLoop()

	return c
}

func (c *Client) Read() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Default().Info(errors.Wrap(err, "failed to set read deadline").Error())
	}
	c.Conn.SetPongHandler(func(string) error {
		if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Default().Info(errors.Wrap(err, "failed to set read deadline").Error())
		}
		return nil
	})

	for {
		// Inbound frames are discarded; this loop only notices closure.
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			log.Default().Info(errors.Wrap(err, "subscriber read ended").Error())
			break
		}
	}
}

func (c *Client) Write() {
	for {
		event, ok := <-c.send
		if !ok {
			// Channel closed -> send close frame
			if err := c.safeWrite(websocket.CloseMessage, []byte{}); err != nil {
				log.Default().Info(errors.Wrap(err, "failed to send close message").Error())
			}
			return
		}

		if err := c.writeJSON(event); err != nil {
			log.Default().Info(errors.Wrap(err, "failed to send event").Error())
			return
		}
	}
}

func (c *Client) safeWrite(msgType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.Conn.WriteMessage(msgType, data)
}

func (c *Client) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.Conn.WriteJSON(v)
}

func (c *Client) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case <-ticker.C:
			if err := c.safeWrite(websocket.PingMessage, nil); err != nil {
				log.Default().Error(errors.Wrap(err, fmt.Sprintf("subscriber [%s] ping error", c.ID.String())).Error())
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *Client) Close() {
	select {
	case <-c.closed:
		return
	default:
		close(c.closed)
		_ = c.Conn.Close()
	}
}
