// Package pubsub provides typed fan-out brokers used to move domain events
// from background goroutines to the UI loop.
package pubsub

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultBufferSize is the subscriber channel buffer.
const DefaultBufferSize = 64

// Event wraps a payload with its publish time.
type Event[T any] struct {
	Payload   T
	Timestamp time.Time
}

// BrokerOption configures a Broker.
type BrokerOption[T any] func(*Broker[T])

// WithBufferSize sets the subscriber channel buffer size.
func WithBufferSize[T any](size int) BrokerOption[T] {
	return func(b *Broker[T]) {
		b.bufferSize = size
	}
}

// WithBlocking makes Publish wait for slow subscribers instead of dropping.
func WithBlocking[T any]() BrokerOption[T] {
	return func(b *Broker[T]) {
		b.dropOnFull = false
	}
}

// Broker fans out events of one type to any number of subscribers. It is
// safe for concurrent use.
type Broker[T any] struct { //nolint:govet // fieldalignment: preserving logical field order
	name       string
	mu         sync.RWMutex
	subs       map[chan Event[T]]struct{}
	done       chan struct{}
	bufferSize int
	dropOnFull bool

	published atomic.Int64
	dropped   atomic.Int64
}

// NewBroker creates a broker. By default slow subscribers lose events
// rather than blocking publishers.
func NewBroker[T any](name string, opts ...BrokerOption[T]) *Broker[T] {
	b := &Broker[T]{
		name:       name,
		subs:       make(map[chan Event[T]]struct{}),
		done:       make(chan struct{}),
		bufferSize: DefaultBufferSize,
		dropOnFull: true,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the broker name.
func (b *Broker[T]) Name() string {
	return b.name
}

// Subscribe returns a channel of events that is closed when ctx is done or
// the broker shuts down.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed() {
		ch := make(chan Event[T])
		close(ch)
		return ch
	}

	sub := make(chan Event[T], b.bufferSize)
	b.subs[sub] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[sub]; ok {
			delete(b.subs, sub)
			close(sub)
		}
	}()

	return sub
}

// Publish delivers payload to every current subscriber.
func (b *Broker[T]) Publish(payload T) {
	b.mu.RLock()
	if b.closed() {
		b.mu.RUnlock()
		return
	}
	subs := make([]chan Event[T], 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	b.published.Add(1)
	if len(subs) == 0 {
		return
	}

	ev := Event[T]{Payload: payload, Timestamp: time.Now()}
	for _, sub := range subs {
		b.send(sub, ev)
	}
}

func (b *Broker[T]) send(sub chan Event[T], ev Event[T]) {
	// A subscriber may be closed between the snapshot and the send.
	defer func() {
		if recover() != nil {
			b.dropped.Add(1)
		}
	}()
	if !b.dropOnFull {
		sub <- ev
		return
	}
	select {
	case sub <- ev:
	default:
		b.dropped.Add(1)
	}
}

// Shutdown closes every subscriber channel. Later publishes are ignored.
func (b *Broker[T]) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed() {
		return
	}
	close(b.done)
	for sub := range b.subs {
		delete(b.subs, sub)
		close(sub)
	}
}

func (b *Broker[T]) closed() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

// IsShutdown reports whether Shutdown has been called.
func (b *Broker[T]) IsShutdown() bool {
	return b.closed()
}

// SubscriberCount returns the number of live subscribers.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Metrics returns counters for debugging.
func (b *Broker[T]) Metrics() Metrics {
	return Metrics{
		Name:        b.name,
		Published:   b.published.Load(),
		Dropped:     b.dropped.Load(),
		Subscribers: b.SubscriberCount(),
	}
}

// Metrics are broker counters.
type Metrics struct {
	Name        string
	Published   int64
	Dropped     int64
	Subscribers int
}
