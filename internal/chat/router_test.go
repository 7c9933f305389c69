package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yuceldayan/ACADEM-X/pkg/types"
)

func TestOnJoinRoom_RejectsInvalidRoomID(t *testing.T) {
	tests := []struct {
		name string
		room string
	}{
		{"empty", ""},
		{"too long", strings.Repeat("x", 101)},
		{"control character", "room\x00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, broker, router := newTestCore(RouterConfig{})
			id := reg.Connect(&fakeSender{})

			assert.ErrorIs(t, router.OnJoinRoom(id, tt.room), ErrInvalidRoomID)
			assert.Empty(t, broker.Members(RoomID(tt.room)))
			// The connection stays alive after a rejected operation.
			assert.True(t, reg.Connected(id))
		})
	}
}

// A joins math-101 with B; A sends {text: "hi"}; B receives exactly one
// chatMessage with the payload echoed verbatim and A hears nothing back.
func TestOnChatMessage_RoomScenario(t *testing.T) {
	reg, _, router := newTestCore(RouterConfig{})

	sa, sb := &fakeSender{}, &fakeSender{}
	a := reg.Connect(sa)
	b := reg.Connect(sb)
	require.NoError(t, router.OnJoinRoom(a, "math-101"))
	require.NoError(t, router.OnJoinRoom(b, "math-101"))

	ev := chatEvent("math-101", map[string]any{"text": "hi", "username": "ayse"})
	require.NoError(t, router.OnChatMessage(a, ev))

	require.Len(t, sb.received(), 1)
	got := sb.received()[0]
	assert.Equal(t, types.EventChatMessage, got.Kind)
	assert.Equal(t, "math-101", got.Room)
	assert.Equal(t, "hi", got.Body["text"])
	assert.Equal(t, "ayse", got.Body["username"])
	assert.Empty(t, sa.received())
}

func TestOnChatMessage_TrustsDeclaredRoomByDefault(t *testing.T) {
	reg, _, router := newTestCore(RouterConfig{})

	sender := reg.Connect(&fakeSender{})
	listener := &fakeSender{}
	l := reg.Connect(listener)
	require.NoError(t, router.OnJoinRoom(l, "r"))

	// Sender never joined "r": the historical contract still delivers.
	require.NoError(t, router.OnChatMessage(sender, chatEvent("r", nil)))
	assert.Len(t, listener.received(), 1)
}

func TestOnChatMessage_RequireMembershipRejectsOutsiders(t *testing.T) {
	reg, _, router := newTestCore(RouterConfig{RequireMembership: true})

	outsider := reg.Connect(&fakeSender{})
	listener := &fakeSender{}
	l := reg.Connect(listener)
	require.NoError(t, router.OnJoinRoom(l, "r"))

	assert.ErrorIs(t, router.OnChatMessage(outsider, chatEvent("r", nil)), ErrNotInRoom)
	assert.Empty(t, listener.received())

	// After joining, the same sender goes through.
	require.NoError(t, router.OnJoinRoom(outsider, "r"))
	require.NoError(t, router.OnChatMessage(outsider, chatEvent("r", nil)))
	assert.Len(t, listener.received(), 1)
}

func TestOnChatMessage_InvalidEvents(t *testing.T) {
	reg, _, router := newTestCore(RouterConfig{})
	id := reg.Connect(&fakeSender{})

	assert.ErrorIs(t, router.OnChatMessage(id, nil), ErrInvalidEventKind)

	wrongKind := &types.ChatEvent{Kind: types.EventPrivateMessage, Room: "r"}
	assert.ErrorIs(t, router.OnChatMessage(id, wrongKind), ErrInvalidEventKind)

	noRoom := &types.ChatEvent{Kind: types.EventChatMessage, Room: ""}
	assert.ErrorIs(t, router.OnChatMessage(id, noRoom), ErrInvalidRoomID)
}

func TestOnChatMessage_UnknownSenderDropped(t *testing.T) {
	_, _, router := newTestCore(RouterConfig{})

	err := router.OnChatMessage(ConnectionID("ghost"), chatEvent("r", nil))
	assert.ErrorIs(t, err, ErrUnknownConnection)
}

// Private rooms reuse the public mechanics end to end, keyed by the
// derived pairing id.
func TestPrivateMessage_PairingKeyScenario(t *testing.T) {
	reg, _, router := newTestCore(RouterConfig{})

	sa, sb := &fakeSender{}, &fakeSender{}
	a := reg.Connect(sa)
	b := reg.Connect(sb)

	room := types.PrivateRoomID("mehmet", "ayse")
	require.NoError(t, router.OnJoinPrivateRoom(a, room))
	require.NoError(t, router.OnJoinPrivateRoom(b, room))

	ev := &types.ChatEvent{
		Kind: types.EventPrivateMessage,
		Room: room,
		Body: map[string]any{"room": room, "text": "selam"},
	}
	require.NoError(t, router.OnPrivateMessage(a, ev))

	require.Len(t, sb.received(), 1)
	assert.Equal(t, types.EventPrivateMessage, sb.received()[0].Kind)
	assert.Empty(t, sa.received())
}

func TestOnLeaveRoom_StopsDelivery(t *testing.T) {
	reg, _, router := newTestCore(RouterConfig{})

	sa, sb := &fakeSender{}, &fakeSender{}
	a := reg.Connect(sa)
	b := reg.Connect(sb)
	require.NoError(t, router.OnJoinRoom(a, "r"))
	require.NoError(t, router.OnJoinRoom(b, "r"))

	require.NoError(t, router.OnLeaveRoom(b, "r"))
	require.NoError(t, router.OnChatMessage(a, chatEvent("r", nil)))

	assert.Empty(t, sb.received())
}

func TestOnDisconnect_UnwindsMembership(t *testing.T) {
	reg, broker, router := newTestCore(RouterConfig{})

	id := reg.Connect(&fakeSender{})
	require.NoError(t, router.OnJoinRoom(id, "r1"))
	require.NoError(t, router.OnJoinRoom(id, "r2"))

	router.OnDisconnect(id)

	assert.Empty(t, broker.Members("r1"))
	assert.Empty(t, broker.Members("r2"))
	assert.False(t, reg.Connected(id))
}
