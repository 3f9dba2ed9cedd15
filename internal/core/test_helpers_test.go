package core

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// newTestHub builds a running hub with in-memory stores. mutate, when
// non-nil, runs before the hub goroutine starts (e.g. to freeze the clock).
func newTestHub(t testing.TB, ttl time.Duration, mutate func(*Hub)) *Hub {
	t.Helper()

	logger := zerolog.Nop()
	hub := NewHub(NewIdentityRegistry(), NewBadgeDirectory(nil, &logger), NewWindow(ttl), &logger)
	if mutate != nil {
		mutate(hub)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		hub.dedup.Stop()
	})
	return hub
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustNoEvent(t *testing.T, ch <-chan *Event, kind EventKind, wait time.Duration) {
	t.Helper()

	deadline := time.After(wait)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event kind %v: %+v", kind, ev)
			}
		case <-deadline:
			return
		}
	}
}
