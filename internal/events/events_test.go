package events

import (
	"testing"
	"time"
)

func TestSessionEventConstructors(t *testing.T) {
	before := time.Now()

	tests := []struct {
		name  string
		event SessionEvent
		want  SessionEventType
	}{
		{"created", NewSessionCreatedEvent("s1", "New Session"), SessionEventCreated},
		{"switched", NewSessionSwitchedEvent("s1", "New Session"), SessionEventSwitched},
		{"renamed", NewSessionRenamedEvent("s1", "repo"), SessionEventRenamed},
		{"message added", NewMessageAddedEvent("s1", "user", "hi"), SessionEventMessageAdded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.event.Type != tt.want {
				t.Errorf("Type = %q, want %q", tt.event.Type, tt.want)
			}
			if tt.event.SessionID != "s1" {
				t.Errorf("SessionID = %q", tt.event.SessionID)
			}
			if tt.event.Timestamp.Before(before) {
				t.Error("timestamp predates test")
			}
		})
	}

	msg := NewMessageAddedEvent("s1", "assistant", "ok")
	if msg.Role != "assistant" || msg.Text != "ok" {
		t.Errorf("message fields = %q, %q", msg.Role, msg.Text)
	}
}

func TestNewDiagramEvent(t *testing.T) {
	t.Run("overview", func(t *testing.T) {
		e := NewDiagramEvent(DiagramEventUpdated, "s", 3, nil)
		if !e.Overview() || e.Module != "" || e.Seq != 3 {
			t.Errorf("event = %+v", e)
		}
	})

	t.Run("module path copies input", func(t *testing.T) {
		path := []string{"api", "store"}
		e := NewDiagramEvent(DiagramEventNavigated, "s", 1, path)
		path[1] = "mutated"

		if e.Overview() || e.Module != "store" {
			t.Errorf("event = %+v", e)
		}
		if e.Path[1] != "store" {
			t.Error("event path aliases caller slice")
		}
	})
}
