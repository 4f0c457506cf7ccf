// Package message stores the chat messages of a session.
package message

import (
	"time"

	"github.com/guilhermegouw/archlens/internal/svg"
)

// Role is the author of a message.
type Role string

// Roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one immutable chat entry. SVG is set on assistant messages
// that came back with a diagram.
type Message struct {
	ID        string
	SessionID string
	Seq       int
	Role      Role
	Content   string
	SVG       string
	CreatedAt time.Time
}

// HasDiagram reports whether the message carries a displayable diagram.
func (m *Message) HasDiagram() bool {
	return m.Role == RoleAssistant && svg.IsValid(m.SVG)
}
