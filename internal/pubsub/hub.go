package pubsub

import (
	"fmt"
	"strings"

	"github.com/guilhermegouw/archlens/internal/events"
)

// Hub holds the brokers shared by the controller, the viewer surface and
// the TUI bridge.
type Hub struct {
	Session *Broker[events.SessionEvent]
	Diagram *Broker[events.DiagramEvent]
	Surface *Broker[events.SurfaceEvent]
}

// NewHub creates a hub with every broker initialized.
func NewHub() *Hub {
	return &Hub{
		Session: NewBroker[events.SessionEvent]("session"),
		Diagram: NewBroker[events.DiagramEvent]("diagram"),
		Surface: NewBroker[events.SurfaceEvent]("surface"),
	}
}

// Shutdown shuts down every broker. It is idempotent.
func (h *Hub) Shutdown() {
	h.Session.Shutdown()
	h.Diagram.Shutdown()
	h.Surface.Shutdown()
}

// IsShutdown reports whether every broker is shut down.
func (h *Hub) IsShutdown() bool {
	return h.Session.IsShutdown() && h.Diagram.IsShutdown() && h.Surface.IsShutdown()
}

// AllMetrics returns the counters of every broker.
func (h *Hub) AllMetrics() []Metrics {
	return []Metrics{h.Session.Metrics(), h.Diagram.Metrics(), h.Surface.Metrics()}
}

// DebugString formats AllMetrics for the debug log.
func (h *Hub) DebugString() string {
	var sb strings.Builder
	for _, m := range h.AllMetrics() {
		fmt.Fprintf(&sb, "%s: subs=%d published=%d dropped=%d\n", m.Name, m.Subscribers, m.Published, m.Dropped)
	}
	return sb.String()
}
