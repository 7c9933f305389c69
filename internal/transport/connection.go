package transport

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Yuceldayan/ACADEM-X/pkg/types"
)

// frame is the wire envelope for socket traffic in both directions.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Connection wraps one WebSocket session. All writes go through a single
// writer goroutine so concurrent broadcasts never race on the underlying
// connection.
type Connection struct {
	conn         *websocket.Conn
	username     string
	writeCh      chan []byte
	writeTimeout time.Duration
	ctx          context.Context
	cancel       context.CancelFunc
	closeOnce    sync.Once
}

// NewConnection wraps an upgraded WebSocket connection and starts its
// writer goroutine. username is the display identity the session layer
// resolved before the upgrade.
func NewConnection(conn *websocket.Conn, username string, bufferSize int, writeTimeout time.Duration) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Connection{
		conn:         conn,
		username:     username,
		writeCh:      make(chan []byte, bufferSize),
		writeTimeout: writeTimeout,
		ctx:          ctx,
		cancel:       cancel,
	}

	go c.writeLoop()

	return c
}

// Username returns the display identity attached at upgrade time.
func (c *Connection) Username() string {
	return c.username
}

func (c *Connection) writeLoop() {
	for {
		select {
		case data := <-c.writeCh:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

// SendEvent implements chat.Sender: the event body is echoed to the peer
// verbatim under its original event kind.
func (c *Connection) SendEvent(ev *types.ChatEvent) error {
	body, err := json.Marshal(ev.Body)
	if err != nil {
		return ErrInvalidJSON
	}
	return c.writeFrame(&frame{Event: ev.Kind, Data: body})
}

func (c *Connection) writeFrame(f *frame) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	data, err := json.Marshal(f)
	if err != nil {
		return ErrInvalidJSON
	}

	select {
	case c.writeCh <- data:
		return nil
	case <-time.After(c.writeTimeout):
		return ErrWriteTimeout
	case <-c.ctx.Done():
		return ErrConnectionClosed
	}
}

// Close tears the connection down exactly once. Safe to call from the
// read pump and the handler cleanup path concurrently.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}
