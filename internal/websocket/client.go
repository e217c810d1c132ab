package websocket

import (
	"context"
	"encoding/json"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
)

// Client represents a single WebSocket connection.
type Client struct {
	hub  *Hub
	conn *ws.Conn
	send chan []byte

	// rooms is guarded by hub.mu.
	rooms map[string]struct{}
}

// NewClient creates a Client tied to the given hub and connection.
func NewClient(hub *Hub, conn *ws.Conn) *Client {
	return &Client{
		hub:   hub,
		conn:  conn,
		send:  make(chan []byte, sendBufferSize),
		rooms: make(map[string]struct{}),
	}
}

// Run registers the client, subscribes it to the initial rooms, starts the
// write pump, and runs the read pump. It blocks until the connection is
// closed, then unregisters.
func (c *Client) Run(ctx context.Context, rooms ...string) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	for _, room := range rooms {
		c.hub.Subscribe(c, room)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	c.readPump(ctx)
}

// readPump handles subscription control frames. It returns on error
// (connection close), which triggers cleanup.
func (c *Client) readPump(ctx context.Context) {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
		c.handleControl(data)
	}
}

// handleControl applies a subscribe/unsubscribe frame. Anything else is ignored.
func (c *Client) handleControl(data []byte) {
	var msg control
	if err := json.Unmarshal(data, &msg); err != nil {
		c.hub.logger.Debug("Ignoring malformed websocket frame", "error", err)
		return
	}
	switch msg.Action {
	case actionSubscribe:
		c.hub.Subscribe(c, msg.GroupID)
	case actionUnsubscribe:
		c.hub.Unsubscribe(c, msg.GroupID)
	}
}

// writePump drains the send channel and writes messages to the WebSocket.
// It also sends periodic pings to detect stale connections.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
