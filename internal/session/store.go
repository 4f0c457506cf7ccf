// Package session manages chat sessions.
package session

import (
	"context"
	"time"
)

// DefaultTitle is the title of sessions started explicitly.
const DefaultTitle = "New Session"

// Session is a chat conversation about one repository.
type Session struct {
	ID           string
	Title        string
	MessageCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store persists sessions.
type Store interface {
	// Create stores a new session.
	Create(ctx context.Context, id, title string) (*Session, error)

	// Get returns the session with id or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// List returns every session in creation order.
	List(ctx context.Context) ([]*Session, error)

	// UpdateTitle renames a session.
	UpdateTitle(ctx context.Context, id, title string) error

	// IncrementMessageCount bumps the message counter of a session.
	IncrementMessageCount(ctx context.Context, id string) error
}
