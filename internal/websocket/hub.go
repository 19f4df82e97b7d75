// Package websocket pushes change notifications to every open client so
// a check made on the kitchen tablet shows up on the living room one
// without a refresh.
package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Entity names used in broadcast events.
const (
	EntityTask        = "task"
	EntityCheck       = "check"
	EntityDailyStatus = "daily_status"
	EntityHousehold   = "household_task"
	EntityProfile     = "profile"
	EntityMetric      = "metric"
)

// Event is a change notification broadcast to all clients. Type is the
// entity and action joined, e.g. "check_updated", so clients can switch
// on a single field.
type Event struct {
	Type      string         `json:"type"`
	Entity    string         `json:"entity"`
	Action    string         `json:"action"`
	ID        int64          `json:"id,omitempty"`
	ProfileID int64          `json:"profile_id,omitempty"`
	Date      string         `json:"date,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// NewEvent builds an Event with the Type derived from entity and action.
func NewEvent(entity, action string, id int64) Event {
	return Event{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
		ID:     id,
	}
}

// WithProfile tags the event with the profile whose data changed.
func (e Event) WithProfile(profileID int64) Event {
	e.ProfileID = profileID
	return e
}

// WithDate tags the event with the calendar date it affects.
func (e Event) WithDate(date string) Event {
	e.Date = date
	return e
}

// Hub tracks the connected clients and fans events out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client and closes its send channel. Safe to call
// twice for the same client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast fans an event out to every connected client. A client whose
// send buffer is full misses the event rather than blocking the rest.
func (h *Hub) Broadcast(e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		h.logger.Error("marshal broadcast event", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
