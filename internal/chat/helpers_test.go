package chat

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Yuceldayan/ACADEM-X/pkg/types"
)

// fakeSender records delivered events; optionally fails every send to
// exercise delivery-failure isolation.
type fakeSender struct {
	mu     sync.Mutex
	events []*types.ChatEvent
	fail   bool
}

func (f *fakeSender) SendEvent(ev *types.ChatEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("transport gone")
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeSender) received() []*types.ChatEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*types.ChatEvent, len(f.events))
	copy(out, f.events)
	return out
}

func newTestCore(cfg RouterConfig) (*Registry, *Broker, *Router) {
	log := zerolog.Nop()
	reg := NewRegistry(log)
	broker := NewBroker(reg, log)
	return reg, broker, NewRouter(reg, broker, cfg, log)
}

func chatEvent(room string, body map[string]any) *types.ChatEvent {
	if body == nil {
		body = map[string]any{}
	}
	body["room"] = room
	return &types.ChatEvent{Kind: types.EventChatMessage, Room: room, Body: body}
}
