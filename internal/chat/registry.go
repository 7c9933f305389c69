package chat

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Yuceldayan/ACADEM-X/pkg/types"
)

// ConnectionID identifies one live transport session for its lifetime.
type ConnectionID string

// RoomID is an opaque, client-chosen room key.
type RoomID string

// Sender is the delivery capability the core needs from a connection.
// Implementations must not block on I/O; a slow or dead peer is the
// transport's problem, not the broker's.
type Sender interface {
	SendEvent(ev *types.ChatEvent) error
}

// member is the registry record for one connection: its delivery handle
// and the set of rooms it has joined.
type member struct {
	sender Sender
	rooms  map[RoomID]struct{}
}

// Registry owns all mutable chat state: the connection records and the
// room membership maps. Broker and Router operate on a Registry, so the
// joined-room set of a connection and the member set of a room are
// updated under the same mutex and can never drift apart.
type Registry struct {
	mu    sync.RWMutex
	conns map[ConnectionID]*member
	rooms map[RoomID]map[ConnectionID]Sender
	log   zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		conns: make(map[ConnectionID]*member),
		rooms: make(map[RoomID]map[ConnectionID]Sender),
		log:   log.With().Str("component", "chat.registry").Logger(),
	}
}

// Connect allocates a fresh connection id and records the sender with an
// empty joined-room set.
func (r *Registry) Connect(sender Sender) ConnectionID {
	id := ConnectionID(uuid.New().String())

	r.mu.Lock()
	r.conns[id] = &member{
		sender: sender,
		rooms:  make(map[RoomID]struct{}),
	}
	r.mu.Unlock()

	r.log.Debug().Str("conn", string(id)).Msg("connection registered")
	return id
}

// Disconnect removes the connection from every room it had joined and
// discards its record. Idempotent: a second call, or a call with an id
// that was never registered, is a no-op.
func (r *Registry) Disconnect(id ConnectionID) {
	r.mu.Lock()
	m, ok := r.conns[id]
	if !ok {
		r.mu.Unlock()
		return
	}

	for room := range m.rooms {
		if members, exists := r.rooms[room]; exists {
			delete(members, id)
			if len(members) == 0 {
				delete(r.rooms, room)
			}
		}
	}
	delete(r.conns, id)
	r.mu.Unlock()

	r.log.Debug().Str("conn", string(id)).Msg("connection removed")
}

// RoomsOf returns a snapshot of the rooms the connection has joined.
// Unknown ids yield an empty slice, never an error.
func (r *Registry) RoomsOf(id ConnectionID) []RoomID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.conns[id]
	if !ok {
		return nil
	}

	rooms := make([]RoomID, 0, len(m.rooms))
	for room := range m.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// Connected reports whether the id is currently registered.
func (r *Registry) Connected(id ConnectionID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[id]
	return ok
}

// Stats reports registry counters for the health endpoint.
func (r *Registry) Stats() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return map[string]int{
		"connections": len(r.conns),
		"rooms":       len(r.rooms),
	}
}
