package chat

import (
	"github.com/rs/zerolog"

	"github.com/Yuceldayan/ACADEM-X/pkg/types"
)

// NoExclusion is the zero ConnectionID; pass it to Broadcast to deliver
// to every member including the sender.
const NoExclusion = ConnectionID("")

// Broker provides join/leave/broadcast over the rooms held in a
// Registry. It enforces no admission control: any access policy runs in
// the hosting application before Join is called, and both room classes
// (topic rooms and derived private pairing keys) get identical mechanics.
type Broker struct {
	reg *Registry
	log zerolog.Logger
}

// NewBroker creates a broker over the given registry.
func NewBroker(reg *Registry, log zerolog.Logger) *Broker {
	return &Broker{
		reg: reg,
		log: log.With().Str("component", "chat.broker").Logger(),
	}
}

// Join adds the connection to the room's member set, creating the room
// if it does not exist yet. Joining a room twice changes nothing
// observable. Unknown connections report ErrUnknownConnection so the
// caller can log the race; nothing is mutated in that case.
func (b *Broker) Join(room RoomID, id ConnectionID) error {
	b.reg.mu.Lock()
	defer b.reg.mu.Unlock()

	m, ok := b.reg.conns[id]
	if !ok {
		return ErrUnknownConnection
	}

	members, exists := b.reg.rooms[room]
	if !exists {
		members = make(map[ConnectionID]Sender)
		b.reg.rooms[room] = members
	}
	members[id] = m.sender
	m.rooms[room] = struct{}{}

	return nil
}

// Leave removes the connection from the room's member set. The room is
// deleted once its member set becomes empty, so long-lived processes do
// not accumulate empty ephemeral rooms; the next Join recreates it.
// Leaving a room never joined, or with an unknown id, is a no-op.
func (b *Broker) Leave(room RoomID, id ConnectionID) {
	b.reg.mu.Lock()
	defer b.reg.mu.Unlock()

	if m, ok := b.reg.conns[id]; ok {
		delete(m.rooms, room)
	}
	if members, exists := b.reg.rooms[room]; exists {
		delete(members, id)
		if len(members) == 0 {
			delete(b.reg.rooms, room)
		}
	}
}

// Broadcast delivers the event to every member of the room except, if
// given, the excluded connection. The recipient set is a snapshot taken
// under the membership lock: members that leave or disconnect after the
// snapshot may still receive the event (best effort), members that join
// after it will not. Delivery happens outside the lock and a failure for
// one recipient never aborts the rest. A broadcast to an empty or
// unknown room is a no-op. Returns the number of successful deliveries.
func (b *Broker) Broadcast(room RoomID, ev *types.ChatEvent, exclude ConnectionID) int {
	b.reg.mu.RLock()
	members := b.reg.rooms[room]
	recipients := make([]Sender, 0, len(members))
	for id, sender := range members {
		if id == exclude {
			continue
		}
		recipients = append(recipients, sender)
	}
	b.reg.mu.RUnlock()

	delivered := 0
	for _, sender := range recipients {
		if err := sender.SendEvent(ev); err != nil {
			b.log.Warn().Err(err).Str("room", string(room)).Msg("delivery failed")
			continue
		}
		delivered++
	}
	return delivered
}

// Members returns a snapshot of the room's member ids.
func (b *Broker) Members(room RoomID) []ConnectionID {
	b.reg.mu.RLock()
	defer b.reg.mu.RUnlock()

	members := b.reg.rooms[room]
	ids := make([]ConnectionID, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	return ids
}

// InRoom reports whether the connection is currently a member of room.
func (b *Broker) InRoom(room RoomID, id ConnectionID) bool {
	b.reg.mu.RLock()
	defer b.reg.mu.RUnlock()

	members, exists := b.reg.rooms[room]
	if !exists {
		return false
	}
	_, ok := members[id]
	return ok
}
