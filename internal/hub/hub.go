package hub

import (
	"sync"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/dispatch/internal/metrics"
)

// Conn is the hub's view of a connected client. Send must never block:
// delivery is best-effort and a slow or dead peer loses messages, not the
// relay.
type Conn interface {
	Send(event string, payload any)
}

// Hub tracks which connections belong to which rooms. Event processing only
// queries it; membership changes happen on join/watch/disconnect.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[Room]map[Conn]struct{}
	logger *zap.Logger
}

func New(logger *zap.Logger) *Hub {
	return &Hub{
		rooms:  make(map[Room]map[Conn]struct{}),
		logger: logger,
	}
}

func (h *Hub) Join(c Conn, r Room) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, found := h.rooms[r]
	if !found {
		members = make(map[Conn]struct{})
		h.rooms[r] = members
		metrics.ActiveRooms.Inc()
	}
	members[c] = struct{}{}
	h.logger.Debug("joined room", zap.String("room", r.String()))
}

// LeaveAll removes the connection from every room it belongs to. Calling it
// for a connection that is in no rooms is a no-op.
func (h *Hub) LeaveAll(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for r, members := range h.rooms {
		if _, found := members[c]; !found {
			continue
		}
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, r)
			metrics.ActiveRooms.Dec()
		}
	}
}

// Broadcast queues the message for every current member of the room. Each
// Broadcast call delivers independently: a connection in two targeted rooms
// gets one copy per call, never deduplicated.
func (h *Hub) Broadcast(r Room, event string, payload any) {
	h.mu.RLock()
	members := make([]Conn, 0, len(h.rooms[r]))
	for c := range h.rooms[r] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	for _, c := range members {
		c.Send(event, payload)
	}
	metrics.MessagesSentTotal.WithLabelValues(event).Add(float64(len(members)))
}

// MemberCount reports the current size of a room.
func (h *Hub) MemberCount(r Room) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[r])
}
