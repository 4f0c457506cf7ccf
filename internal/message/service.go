package message

import (
	"context"

	"github.com/guilhermegouw/archlens/internal/analyze"
	"github.com/guilhermegouw/archlens/internal/events"
	"github.com/guilhermegouw/archlens/internal/pubsub"
)

// Service appends messages and publishes message events.
type Service struct {
	store  Store
	broker *pubsub.Broker[events.SessionEvent]
}

// NewService creates a service. broker may be nil.
func NewService(store Store, broker *pubsub.Broker[events.SessionEvent]) *Service {
	return &Service{store: store, broker: broker}
}

// Add appends msg to its session.
func (s *Service) Add(ctx context.Context, msg *Message) error {
	if err := s.store.Append(ctx, msg); err != nil {
		return err
	}
	if s.broker != nil {
		s.broker.Publish(events.NewMessageAddedEvent(msg.SessionID, string(msg.Role), msg.Content))
	}
	return nil
}

// List returns the messages of a session.
func (s *Service) List(ctx context.Context, sessionID string) ([]*Message, error) {
	return s.store.List(ctx, sessionID)
}

// Count returns the number of messages of a session.
func (s *Service) Count(ctx context.Context, sessionID string) (int, error) {
	return s.store.Count(ctx, sessionID)
}

// History converts messages to the backend history format.
func History(msgs []*Message) []analyze.HistoryMessage {
	out := make([]analyze.HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, analyze.HistoryMessage{
			Role:    string(m.Role),
			Content: m.Content,
			SVG:     m.SVG,
		})
	}
	return out
}
