package message

import "context"

// Store persists messages.
type Store interface {
	// Append stores msg at the end of its session, assigning ID, Seq and
	// CreatedAt.
	Append(ctx context.Context, msg *Message) error

	// List returns the messages of a session in append order.
	List(ctx context.Context, sessionID string) ([]*Message, error)

	// Count returns the number of messages in a session.
	Count(ctx context.Context, sessionID string) (int, error)
}
