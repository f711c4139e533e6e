// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package eventbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/chiku524/motionloop/internal/config"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	b, err := Open(&config.NATSConfig{Enabled: false})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestPublishSubscribeDeliversOverGoChannel(t *testing.T) {
	b := newTestBus(t)

	var mu sync.Mutex
	var received []byte
	done := make(chan struct{})

	b.Subscribe(TopicDiscoveryCommitted, func(msg *message.Message) error {
		mu.Lock()
		received = msg.Payload
		mu.Unlock()
		close(done)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- b.Run(ctx) }()

	// Wait for the router to report running before publishing, same pattern
	// watermill's own examples use for gochannel-backed routers.
	<-b.router.Running()

	if err := b.Publish(ctx, TopicDiscoveryCommitted, []byte(`{"count":3}`)); err != nil {
		t.Fatalf("Publish returned an error (should always be nil, best-effort): %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("handler was not invoked within timeout")
	}

	mu.Lock()
	got := string(received)
	mu.Unlock()
	if got != `{"count":3}` {
		t.Fatalf("expected payload round-trip, got %q", got)
	}

	cancel()
	select {
	case <-runErr:
	case <-time.After(2 * time.Second):
		t.Fatalf("router did not stop after context cancellation")
	}
}

func TestPublishNeverReturnsErrorEvenAfterClose(t *testing.T) {
	b, err := Open(&config.NATSConfig{Enabled: false})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Publish is additive instrumentation and must never surface an error to
	// the caller, even once the underlying publisher is unusable.
	if err := b.Publish(context.Background(), TopicJobCompleted, []byte("x")); err != nil {
		t.Fatalf("expected Publish to swallow errors, got %v", err)
	}
}
