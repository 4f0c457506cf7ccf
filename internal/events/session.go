// Package events defines the domain events published on the pubsub hub.
package events

import "time"

// SessionEventType is the kind of a session event.
type SessionEventType string

// Session event types.
const (
	SessionEventCreated      SessionEventType = "created"
	SessionEventSwitched     SessionEventType = "switched"
	SessionEventRenamed      SessionEventType = "renamed"
	SessionEventMessageAdded SessionEventType = "message_added"
)

// SessionEvent reports a change to a chat session.
type SessionEvent struct {
	Type      SessionEventType
	SessionID string
	Title     string
	Timestamp time.Time

	// Set for message_added.
	Role string
	Text string
}

// NewSessionCreatedEvent reports a new session.
func NewSessionCreatedEvent(id, title string) SessionEvent {
	return SessionEvent{Type: SessionEventCreated, SessionID: id, Title: title, Timestamp: time.Now()}
}

// NewSessionSwitchedEvent reports that id became the current session.
func NewSessionSwitchedEvent(id, title string) SessionEvent {
	return SessionEvent{Type: SessionEventSwitched, SessionID: id, Title: title, Timestamp: time.Now()}
}

// NewSessionRenamedEvent reports a title change.
func NewSessionRenamedEvent(id, title string) SessionEvent {
	return SessionEvent{Type: SessionEventRenamed, SessionID: id, Title: title, Timestamp: time.Now()}
}

// NewMessageAddedEvent reports a message appended to a session.
func NewMessageAddedEvent(sessionID, role, text string) SessionEvent {
	return SessionEvent{
		Type:      SessionEventMessageAdded,
		SessionID: sessionID,
		Role:      role,
		Text:      text,
		Timestamp: time.Now(),
	}
}
