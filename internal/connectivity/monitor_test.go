package connectivity

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the probe goroutine to write to.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestMonitorPublishesTransitions(t *testing.T) {
	m := NewMonitor(true)
	events, cancel := m.Subscribe(4)
	defer cancel()

	if m.Set(true) {
		t.Error("Set(true) on an online monitor reported a change")
	}
	if !m.Set(false) {
		t.Error("Set(false) did not report a change")
	}
	m.Set(true)

	for _, want := range []bool{false, true} {
		select {
		case s := <-events:
			if s.Online != want {
				t.Errorf("got Online=%v, want %v", s.Online, want)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}

	select {
	case s := <-events:
		t.Errorf("unexpected extra event %+v", s)
	default:
	}
}

func TestMonitorUnsubscribe(t *testing.T) {
	m := NewMonitor(false)
	events, cancel := m.Subscribe(1)
	if m.Subscribers() != 1 {
		t.Fatalf("Subscribers = %d, want 1", m.Subscribers())
	}

	cancel()
	cancel()

	if m.Subscribers() != 0 {
		t.Errorf("Subscribers after cancel = %d, want 0", m.Subscribers())
	}
	if _, ok := <-events; ok {
		t.Error("channel not closed after cancel")
	}

	// Publishing after unsubscribe must not panic on the closed channel.
	m.Set(true)
}

func TestMonitorSlowSubscriberDoesNotBlock(t *testing.T) {
	m := NewMonitor(false)
	_, cancel := m.Subscribe(1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			m.Set(i%2 == 0)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Set blocked on a full subscriber")
	}
}

func TestMonitorClose(t *testing.T) {
	m := NewMonitor(true)
	events, cancel := m.Subscribe(1)
	m.Close()

	if _, ok := <-events; ok {
		t.Error("channel not closed by Close")
	}
	cancel()

	if m.Set(false) {
		t.Error("Set after Close reported a change")
	}

	late, _ := m.Subscribe(1)
	if _, ok := <-late; ok {
		t.Error("subscription after Close should be closed")
	}
}

func TestProbe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	m := NewMonitor(false)
	events, unsubscribe := m.Subscribe(4)
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var logs syncBuffer
	go Probe(ctx, server.Client(), server.URL, 20*time.Millisecond, m, slog.New(slog.NewTextHandler(&logs, nil)))

	select {
	case s := <-events:
		if !s.Online {
			t.Fatalf("expected online, got %+v", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("probe never reported online")
	}

	server.Close()

	select {
	case s := <-events:
		if s.Online {
			t.Fatalf("expected offline, got %+v", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("probe never reported offline")
	}

	// The offline event is published before its log line is written.
	deadline := time.Now().Add(time.Second)
	for strings.Count(logs.String(), "Connectivity changed") < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("transitions not logged to the given logger:\n%s", logs.String())
		}
		time.Sleep(5 * time.Millisecond)
	}
}
