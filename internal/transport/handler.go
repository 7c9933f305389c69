package transport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Yuceldayan/ACADEM-X/internal/auth"
	"github.com/Yuceldayan/ACADEM-X/internal/chat"
	"github.com/Yuceldayan/ACADEM-X/pkg/types"
)

// SessionValidator resolves a session token to a display identity. The
// broker itself never checks identity; this gate is the hosting
// application's only admission control on sockets.
type SessionValidator interface {
	Lookup(token string) (username string, ok bool)
}

// Config carries the socket tuning knobs.
type Config struct {
	PingInterval time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BufferSize   int
}

var upgrader = websocket.Upgrader{
	HandshakeTimeout: 10 * time.Second,
	CheckOrigin: func(r *http.Request) bool {
		// Same-origin clients only in practice; the app serves no
		// cross-site consumers.
		return true
	},
}

// Handler upgrades authenticated HTTP requests to WebSocket sessions and
// pumps decoded socket events into the chat router.
type Handler struct {
	registry *chat.Registry
	router   *chat.Router
	sessions SessionValidator
	cfg      Config
	log      zerolog.Logger
}

// NewHandler wires the socket endpoint.
func NewHandler(registry *chat.Registry, router *chat.Router, sessions SessionValidator, cfg Config, log zerolog.Logger) *Handler {
	return &Handler{
		registry: registry,
		router:   router,
		sessions: sessions,
		cfg:      cfg,
		log:      log.With().Str("component", "transport").Logger(),
	}
}

// ServeHTTP handles GET /ws. The session cookie is validated before the
// upgrade so rejected clients get a proper HTTP status instead of a
// half-open socket.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(auth.SessionCookie)
	if err != nil {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}
	username, ok := h.sessions.Lookup(cookie.Value)
	if !ok {
		http.Error(w, "Session expired", http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	conn := NewConnection(ws, username, h.cfg.BufferSize, h.cfg.WriteTimeout)
	id := h.registry.Connect(conn)
	h.log.Info().Str("conn", string(id)).Str("user", username).Msg("socket connected")

	go h.serve(conn, id)
}

// serve runs the read pump until the peer goes away, then unwinds
// membership. Heartbeat mirrors the read deadline: a peer that stops
// answering pings times out on the next read.
func (h *Handler) serve(conn *Connection, id chat.ConnectionID) {
	defer func() {
		h.router.OnDisconnect(id)
		_ = conn.Close()
		h.log.Info().Str("conn", string(id)).Msg("socket disconnected")
	}()

	if err := conn.conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout)); err != nil {
		return
	}
	conn.conn.SetPongHandler(func(string) error {
		return conn.conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	})

	go h.ping(conn)

	for {
		messageType, data, err := conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.log.Warn().Err(err).Str("conn", string(id)).Msg("read error")
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		h.dispatch(conn, id, data)
	}
}

func (h *Handler) ping(conn *Connection) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			deadline := time.Now().Add(h.cfg.WriteTimeout)
			if err := conn.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		case <-conn.ctx.Done():
			return
		}
	}
}

// roomPayload is the data shape for join and leave events.
type roomPayload struct {
	Room string `json:"room"`
}

// dispatch decodes one inbound frame and hands it to the router.
// Malformed frames and rejected operations are reported back to the
// sender on a best-effort error frame; the connection stays up either
// way.
func (h *Handler) dispatch(conn *Connection, id chat.ConnectionID, data []byte) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		h.log.Warn().Str("conn", string(id)).Msg("dropping malformed frame")
		h.sendError(conn, "", ErrInvalidJSON)
		return
	}

	var err error
	switch f.Event {
	case types.EventJoinRoom, types.EventJoinPrivateRoom, types.EventLeaveRoom:
		var p roomPayload
		if jsonErr := json.Unmarshal(f.Data, &p); jsonErr != nil {
			err = ErrInvalidJSON
			break
		}
		switch f.Event {
		case types.EventJoinRoom:
			err = h.router.OnJoinRoom(id, p.Room)
		case types.EventJoinPrivateRoom:
			err = h.router.OnJoinPrivateRoom(id, p.Room)
		case types.EventLeaveRoom:
			err = h.router.OnLeaveRoom(id, p.Room)
		}

	case types.EventChatMessage, types.EventPrivateMessage:
		ev, decodeErr := h.decodeEvent(conn, f.Event, f.Data)
		if decodeErr != nil {
			err = decodeErr
			break
		}
		if f.Event == types.EventChatMessage {
			err = h.router.OnChatMessage(id, ev)
		} else {
			err = h.router.OnPrivateMessage(id, ev)
		}

	default:
		h.log.Warn().Str("conn", string(id)).Str("event", f.Event).Msg("dropping unknown event kind")
		err = chat.ErrInvalidEventKind
	}

	if err != nil {
		h.log.Warn().Err(err).Str("conn", string(id)).Str("event", f.Event).Msg("event rejected")
		h.sendError(conn, f.Event, err)
	}
}

// decodeEvent builds a ChatEvent from a message frame. The body passes
// through untouched except for the username label the session layer
// attaches when the client left it out.
func (h *Handler) decodeEvent(conn *Connection, kind string, data []byte) (*types.ChatEvent, error) {
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil || body == nil {
		return nil, ErrInvalidJSON
	}

	room, _ := body["room"].(string)
	if _, present := body["username"]; !present {
		body["username"] = conn.Username()
	}

	return &types.ChatEvent{Kind: kind, Room: room, Body: body}, nil
}

// sendError reports a rejected operation back to the sender. There is no
// synchronous error channel in the fire-and-forget model, so this is
// best effort.
func (h *Handler) sendError(conn *Connection, event string, opErr error) {
	body, err := json.Marshal(map[string]string{
		"event":  event,
		"reason": opErr.Error(),
	})
	if err != nil {
		return
	}
	if err := conn.writeFrame(&frame{Event: "error", Data: body}); err != nil {
		h.log.Debug().Err(err).Msg("error frame not delivered")
	}
}
