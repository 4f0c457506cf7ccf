package bridge

import (
	"context"
	"sync"

	tea "charm.land/bubbletea/v2"

	"github.com/guilhermegouw/archlens/internal/debug"
	"github.com/guilhermegouw/archlens/internal/events"
	"github.com/guilhermegouw/archlens/internal/pubsub"
)

// Sender receives forwarded messages. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// TUIBridge subscribes to every hub broker and sends each event to the
// program as a tea.Msg.
type TUIBridge struct { //nolint:govet // fieldalignment: preserving logical field order
	hub    *pubsub.Hub
	sender Sender

	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Only forward diagram events for this session when set.
	mu            sync.RWMutex
	sessionFilter string
}

// NewTUIBridge creates a bridge from hub to sender.
func NewTUIBridge(hub *pubsub.Hub, sender Sender) *TUIBridge {
	return &TUIBridge{hub: hub, sender: sender}
}

// Start begins forwarding. Call Stop to end it.
func (b *TUIBridge) Start(ctx context.Context) {
	ctx, b.cancel = context.WithCancel(ctx)

	b.wg.Add(3)
	go forward(ctx, &b.wg, b.hub.Session, func(ev pubsub.Event[events.SessionEvent]) (tea.Msg, bool) {
		return SessionEventMsg{Event: ev}, true
	}, b.sender)
	go forward(ctx, &b.wg, b.hub.Diagram, func(ev pubsub.Event[events.DiagramEvent]) (tea.Msg, bool) {
		if f := b.filter(); f != "" && ev.Payload.SessionID != f {
			return nil, false
		}
		return DiagramEventMsg{Event: ev}, true
	}, b.sender)
	go forward(ctx, &b.wg, b.hub.Surface, func(ev pubsub.Event[events.SurfaceEvent]) (tea.Msg, bool) {
		return SurfaceEventMsg{Event: ev}, true
	}, b.sender)

	debug.Event("bridge", "start", "TUI bridge started")
}

// Stop ends forwarding and waits for the forwarding goroutines.
func (b *TUIBridge) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
	b.wg.Wait()
	debug.Event("bridge", "stop", "TUI bridge stopped")
}

// SetSessionFilter restricts diagram events to one session. An empty id
// forwards all of them.
func (b *TUIBridge) SetSessionFilter(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessionFilter = id
}

func (b *TUIBridge) filter() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sessionFilter
}

func forward[T any](
	ctx context.Context,
	wg *sync.WaitGroup,
	broker *pubsub.Broker[T],
	wrap func(pubsub.Event[T]) (tea.Msg, bool),
	sender Sender,
) {
	defer wg.Done()

	ch := broker.Subscribe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if msg, send := wrap(ev); send {
				sender.Send(msg)
			}
		}
	}
}
