// Package bridge forwards hub events into the Bubble Tea program so that
// every state change happens on the UI loop.
package bridge

import (
	"github.com/guilhermegouw/archlens/internal/events"
	"github.com/guilhermegouw/archlens/internal/pubsub"
)

// SessionEventMsg wraps a session event for the TUI.
type SessionEventMsg struct {
	Event pubsub.Event[events.SessionEvent]
}

// DiagramEventMsg wraps a diagram event for the TUI.
type DiagramEventMsg struct {
	Event pubsub.Event[events.DiagramEvent]
}

// SurfaceEventMsg wraps a viewer surface event for the TUI.
type SurfaceEventMsg struct {
	Event pubsub.Event[events.SurfaceEvent]
}
