package pubsub

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func receive[T any](t *testing.T, ch <-chan Event[T]) Event[T] {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
	return Event[T]{}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBroker_PublishSubscribe(t *testing.T) {
	t.Run("every subscriber receives the event", func(t *testing.T) {
		b := NewBroker[string]("test")
		defer b.Shutdown()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		a, c := b.Subscribe(ctx), b.Subscribe(ctx)
		b.Publish("hello")

		for _, sub := range []<-chan Event[string]{a, c} {
			if ev := receive(t, sub); ev.Payload != "hello" || ev.Timestamp.IsZero() {
				t.Errorf("event = %+v", ev)
			}
		}
	})

	t.Run("publish without subscribers is counted", func(t *testing.T) {
		b := NewBroker[int]("test")
		defer b.Shutdown()
		b.Publish(1)
		if m := b.Metrics(); m.Published != 1 || m.Subscribers != 0 {
			t.Errorf("metrics = %+v", m)
		}
	})

	t.Run("cancel unsubscribes and closes", func(t *testing.T) {
		b := NewBroker[string]("test")
		defer b.Shutdown()
		ctx, cancel := context.WithCancel(context.Background())
		ch := b.Subscribe(ctx)

		cancel()
		waitFor(t, func() bool { return b.SubscriberCount() == 0 })
		if _, ok := <-ch; ok {
			t.Error("channel should be closed")
		}
	})

	t.Run("full subscriber drops", func(t *testing.T) {
		b := NewBroker("test", WithBufferSize[int](1))
		defer b.Shutdown()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		_ = b.Subscribe(ctx)

		b.Publish(1)
		b.Publish(2)
		if m := b.Metrics(); m.Dropped != 1 {
			t.Errorf("Dropped = %d, want 1", m.Dropped)
		}
	})

	t.Run("blocking broker waits for reader", func(t *testing.T) {
		b := NewBroker("test", WithBufferSize[int](0), WithBlocking[int]())
		defer b.Shutdown()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		ch := b.Subscribe(ctx)

		done := make(chan struct{})
		go func() {
			b.Publish(7)
			close(done)
		}()
		if ev := receive(t, ch); ev.Payload != 7 {
			t.Errorf("Payload = %d", ev.Payload)
		}
		<-done
	})
}

func TestBroker_Shutdown(t *testing.T) {
	b := NewBroker[string]("test")
	ch := b.Subscribe(context.Background())

	b.Shutdown()
	b.Shutdown()

	if !b.IsShutdown() {
		t.Error("IsShutdown() = false")
	}
	if _, ok := <-ch; ok {
		t.Error("subscriber channel should be closed")
	}
	if _, ok := <-b.Subscribe(context.Background()); ok {
		t.Error("subscribe after shutdown should return closed channel")
	}
	b.Publish("ignored")
	if m := b.Metrics(); m.Published != 0 {
		t.Errorf("Published = %d after shutdown", m.Published)
	}
}

func TestBroker_Concurrent(t *testing.T) {
	b := NewBroker("test", WithBufferSize[int](1000))
	defer b.Shutdown()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := b.Subscribe(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				b.Publish(j)
			}
		}()
	}
	wg.Wait()

	if got := len(ch); got != 500 {
		t.Errorf("buffered events = %d, want 500", got)
	}
}
