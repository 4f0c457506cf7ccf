package events

import "time"

// DiagramEventType is the kind of a diagram event.
type DiagramEventType string

// Diagram event types.
const (
	// DiagramEventRequested is published when a backend request is issued.
	DiagramEventRequested DiagramEventType = "requested"
	// DiagramEventUpdated carries a new validated diagram.
	DiagramEventUpdated DiagramEventType = "updated"
	// DiagramEventNavigated reports a navigation change without new content.
	DiagramEventNavigated DiagramEventType = "navigated"
	// DiagramEventFailed reports a failed or rejected request.
	DiagramEventFailed DiagramEventType = "failed"
	// DiagramEventCleared reports that no diagram is current.
	DiagramEventCleared DiagramEventType = "cleared"
)

// DiagramEvent reports a change to the current diagram or navigation.
type DiagramEvent struct {
	Type      DiagramEventType
	SessionID string
	Seq       uint64
	// Module is empty at the overview level.
	Module    string
	Path      []string
	SVG       string
	Error     string
	Timestamp time.Time
}

// Overview reports whether the event refers to the project overview.
func (e DiagramEvent) Overview() bool {
	return len(e.Path) == 0
}

// NewDiagramEvent builds a diagram event stamped with the current time.
func NewDiagramEvent(typ DiagramEventType, sessionID string, seq uint64, path []string) DiagramEvent {
	e := DiagramEvent{
		Type:      typ,
		SessionID: sessionID,
		Seq:       seq,
		Path:      append([]string(nil), path...),
		Timestamp: time.Now(),
	}
	if n := len(path); n > 0 {
		e.Module = path[n-1]
	}
	return e
}
