package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/guilhermegouw/archlens/internal/events"
	"github.com/guilhermegouw/archlens/internal/pubsub"
)

// Service tracks the current session and publishes session events.
type Service struct {
	store  Store
	broker *pubsub.Broker[events.SessionEvent]

	mu      sync.RWMutex
	current string
}

// NewService creates a service. broker may be nil.
func NewService(store Store, broker *pubsub.Broker[events.SessionEvent]) *Service {
	return &Service{store: store, broker: broker}
}

// Create stores a new session titled title and makes it current.
func (s *Service) Create(ctx context.Context, title string) (*Session, error) {
	sess, err := s.store.Create(ctx, uuid.New().String(), title)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = sess.ID
	s.mu.Unlock()

	s.publish(events.NewSessionCreatedEvent(sess.ID, sess.Title))
	return sess, nil
}

// Get returns a session by id.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.store.Get(ctx, id)
}

// List returns every session.
func (s *Service) List(ctx context.Context) ([]*Session, error) {
	return s.store.List(ctx)
}

// Switch makes an existing session current.
func (s *Service) Switch(ctx context.Context, id string) (*Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = id
	s.mu.Unlock()

	s.publish(events.NewSessionSwitchedEvent(sess.ID, sess.Title))
	return sess, nil
}

// CurrentID returns the current session id, empty when none.
func (s *Service) CurrentID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// UpdateTitle renames a session.
func (s *Service) UpdateTitle(ctx context.Context, id, title string) error {
	if err := s.store.UpdateTitle(ctx, id, title); err != nil {
		return err
	}
	s.publish(events.NewSessionRenamedEvent(id, title))
	return nil
}

// IncrementMessageCount bumps the message counter of a session.
func (s *Service) IncrementMessageCount(ctx context.Context, id string) error {
	return s.store.IncrementMessageCount(ctx, id)
}

func (s *Service) publish(ev events.SessionEvent) {
	if s.broker != nil {
		s.broker.Publish(ev)
	}
}
