// Package hub fans state-change notifications out to the dashboards
// subscribed to each category. Delivery is fire-and-forget: a failing
// subscriber is logged and dropped without affecting the others or the
// caller, whose durable work already committed.
package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// AdminRoom is the aggregate subscription group. Its subscribers receive
// every category's notifications without joining each room individually.
const AdminRoom = "admin-all"

// EventOrdersChanged signals that the orders visible to a room changed and
// the dashboard should refresh.
const EventOrdersChanged = "orders_changed"

// Notification is the opaque payload delivered to subscribers.
type Notification struct {
	Event    string `json:"event"`
	Category string `json:"category,omitempty"`
}

// Conn is a subscriber connection. *websocket.Conn satisfies it.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Mirror republishes notifications to an external transport. Optional.
type Mirror interface {
	Publish(ctx context.Context, category string, body []byte) error
}

// subscriber pairs a connection with its write lock. Notify runs from
// handler, timer and stats goroutines at once, and a websocket connection
// tolerates only one concurrent writer.
type subscriber struct {
	conn Conn
	mu   sync.Mutex
}

func (s *subscriber) send(n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(n)
}

// Hub maintains the category-keyed subscription groups.
type Hub struct {
	mu     sync.Mutex
	rooms  map[string]map[*subscriber]struct{}
	subs   map[Conn]*subscriber
	mirror Mirror
	logger zerolog.Logger
}

// New creates a hub. mirror may be nil.
func New(mirror Mirror, logger zerolog.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string]map[*subscriber]struct{}),
		subs:   make(map[Conn]*subscriber),
		mirror: mirror,
		logger: logger.With().Str("component", "hub").Logger(),
	}
}

// Subscribe adds conn to the category's group.
func (h *Hub) Subscribe(conn Conn, category string) {
	h.mu.Lock()
	sub, ok := h.subs[conn]
	if !ok {
		sub = &subscriber{conn: conn}
		h.subs[conn] = sub
	}
	room, ok := h.rooms[category]
	if !ok {
		room = make(map[*subscriber]struct{})
		h.rooms[category] = room
	}
	room[sub] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug().Str("category", category).Msg("subscriber joined")
}

// Unsubscribe removes conn from every group.
func (h *Hub) Unsubscribe(conn Conn) {
	h.mu.Lock()
	if sub, ok := h.subs[conn]; ok {
		delete(h.subs, conn)
		for category, room := range h.rooms {
			if _, ok := room[sub]; ok {
				delete(room, sub)
				if len(room) == 0 {
					delete(h.rooms, category)
				}
			}
		}
	}
	h.mu.Unlock()
}

// Notify delivers the notification to every subscriber of category and,
// unless category is the aggregate room itself, to the aggregate room's
// subscribers as well. Failed deliveries are logged and the subscriber is
// dropped; nothing propagates back to the caller.
func (h *Hub) Notify(category string, n Notification) {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.rooms[category]))
	for sub := range h.rooms[category] {
		subs = append(subs, sub)
	}
	if category != AdminRoom {
		for sub := range h.rooms[AdminRoom] {
			subs = append(subs, sub)
		}
	}
	h.mu.Unlock()

	for _, sub := range subs {
		if err := sub.send(n); err != nil {
			h.logger.Warn().Err(err).Str("category", category).Msg("subscriber delivery failed")
			h.Unsubscribe(sub.conn)
			_ = sub.conn.Close()
		}
	}

	if h.mirror != nil {
		body, err := json.Marshal(n)
		if err != nil {
			h.logger.Warn().Err(err).Msg("failed to encode notification for mirror")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.mirror.Publish(ctx, category, body); err != nil {
			h.logger.Warn().Err(err).Str("category", category).Msg("mirror publish failed")
		}
	}
}

// CloseAll closes every subscriber connection. Used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	conns := make([]Conn, 0, len(h.subs))
	for conn := range h.subs {
		conns = append(conns, conn)
	}
	h.rooms = make(map[string]map[*subscriber]struct{})
	h.subs = make(map[Conn]*subscriber)
	h.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
}
