// Package websocket fans ledger notifications out to connected clients.
// Clients subscribe to rooms, one per group, and receive every event
// published to the rooms they are in.
package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmynk/splitvote/internal/metrics"
	"github.com/mmynk/splitvote/internal/notify"
)

var _ notify.Publisher = (*Hub)(nil)

// Hub maintains the set of active WebSocket clients and their room subscriptions.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		rooms:   make(map[string]map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	metrics.WebSocketConnected()
}

// Unregister removes a client from the hub and all of its rooms, and closes
// its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	for room := range c.rooms {
		h.leaveLocked(c, room)
	}
	delete(h.clients, c)
	close(c.send)
	metrics.WebSocketDisconnected()
}

// Subscribe adds a registered client to a room.
func (h *Hub) Subscribe(c *Client, room string) {
	if room == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
}

// Unsubscribe removes a client from a room.
func (h *Hub) Unsubscribe(c *Client, room string) {
	h.mu.Lock()
	h.leaveLocked(c, room)
	h.mu.Unlock()
}

func (h *Hub) leaveLocked(c *Client, room string) {
	delete(c.rooms, room)
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Publish sends an event to every client subscribed to room. Sends never
// block: a client whose buffer is full misses the event.
func (h *Hub) Publish(room string, evt notify.Event) error {
	data, err := json.Marshal(NewMessage(evt))
	if err != nil {
		metrics.RecordNotification(evt.Name, metrics.OutcomeFailed)
		return fmt.Errorf("marshal %s notification: %w", evt.Name, err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[room] {
		select {
		case c.send <- data:
			metrics.RecordNotification(evt.Name, metrics.OutcomeDelivered)
		default:
			metrics.RecordNotification(evt.Name, metrics.OutcomeDropped)
			h.logger.Debug("Dropped notification for slow client", "room", room, "event", evt.Name)
		}
	}
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomSize returns the number of clients subscribed to room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
