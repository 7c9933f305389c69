package chat

import (
	"github.com/rs/zerolog"

	"github.com/Yuceldayan/ACADEM-X/pkg/types"
)

// RouterConfig tunes router behavior.
type RouterConfig struct {
	// RequireMembership rejects chat and private messages whose sender
	// has not joined the declared room. The default (false) matches the
	// historical contract, which trusts the client-declared room;
	// enabling it closes the spoofing hole at the cost of that fidelity.
	RequireMembership bool
}

// Router validates inbound socket events and dispatches them to the
// broker. One method per event kind; each returns an error for the
// transport to log (and optionally echo back to the sender), never a
// reason to drop the connection.
type Router struct {
	reg    *Registry
	broker *Broker
	cfg    RouterConfig
	log    zerolog.Logger
}

// NewRouter creates a router over the registry and broker.
func NewRouter(reg *Registry, broker *Broker, cfg RouterConfig, log zerolog.Logger) *Router {
	return &Router{
		reg:    reg,
		broker: broker,
		cfg:    cfg,
		log:    log.With().Str("component", "chat.router").Logger(),
	}
}

// OnJoinRoom handles a joinRoom event for a topic room.
func (r *Router) OnJoinRoom(id ConnectionID, room string) error {
	return r.join(id, room, types.EventJoinRoom)
}

// OnJoinPrivateRoom handles a joinPrivateRoom event. Mechanically
// identical to OnJoinRoom; private rooms differ only in how the client
// derives the key (see types.PrivateRoomID).
func (r *Router) OnJoinPrivateRoom(id ConnectionID, room string) error {
	return r.join(id, room, types.EventJoinPrivateRoom)
}

func (r *Router) join(id ConnectionID, room, kind string) error {
	if !types.IsValidRoomID(room) {
		r.log.Warn().Str("conn", string(id)).Str("kind", kind).Msg("rejected join: invalid room id")
		return ErrInvalidRoomID
	}
	if err := r.broker.Join(RoomID(room), id); err != nil {
		return err
	}
	r.log.Debug().Str("conn", string(id)).Str("room", room).Str("kind", kind).Msg("joined room")
	return nil
}

// OnLeaveRoom handles an explicit leaveRoom event.
func (r *Router) OnLeaveRoom(id ConnectionID, room string) error {
	if !types.IsValidRoomID(room) {
		return ErrInvalidRoomID
	}
	r.broker.Leave(RoomID(room), id)
	return nil
}

// OnChatMessage handles a chatMessage event: the payload is broadcast
// verbatim to every member of the declared room except the sender.
func (r *Router) OnChatMessage(id ConnectionID, ev *types.ChatEvent) error {
	return r.message(id, ev, types.EventChatMessage)
}

// OnPrivateMessage handles a privateMessage event, same mechanics as
// OnChatMessage.
func (r *Router) OnPrivateMessage(id ConnectionID, ev *types.ChatEvent) error {
	return r.message(id, ev, types.EventPrivateMessage)
}

func (r *Router) message(id ConnectionID, ev *types.ChatEvent, kind string) error {
	if ev == nil || ev.Kind != kind {
		return ErrInvalidEventKind
	}
	if !types.IsValidRoomID(ev.Room) {
		r.log.Warn().Str("conn", string(id)).Str("kind", kind).Msg("rejected message: invalid room id")
		return ErrInvalidRoomID
	}
	if !r.reg.Connected(id) {
		// Disconnect race; drop silently.
		return ErrUnknownConnection
	}

	room := RoomID(ev.Room)
	if r.cfg.RequireMembership && !r.broker.InRoom(room, id) {
		r.log.Warn().Str("conn", string(id)).Str("room", ev.Room).Msg("rejected message: sender not in room")
		return ErrNotInRoom
	}

	delivered := r.broker.Broadcast(room, ev, id)
	r.log.Debug().
		Str("conn", string(id)).
		Str("room", ev.Room).
		Str("kind", kind).
		Int("delivered", delivered).
		Msg("message routed")
	return nil
}

// OnDisconnect unwinds all membership for the connection.
func (r *Router) OnDisconnect(id ConnectionID) {
	r.reg.Disconnect(id)
}
