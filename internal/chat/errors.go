package chat

import "errors"

// Nothing in this package is fatal: callers log these and keep the
// connection alive. Disconnect races are routine, so operations on an
// unknown connection surface ErrUnknownConnection rather than panicking.
var (
	ErrInvalidRoomID     = errors.New("invalid room id")
	ErrUnknownConnection = errors.New("unknown connection")
	ErrNotInRoom         = errors.New("sender has not joined the room")
	ErrInvalidEventKind  = errors.New("invalid event kind")
)
