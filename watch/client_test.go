package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/avisowatch/logger"
)

func quietLogger() *logger.Logger {
	return logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"}, "test")
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

// streamServer is a fake watch endpoint that serves fixed SSE frames
// and then holds the stream open until released.
type streamServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []SubscriptionRequest
	times    []time.Time

	failures int32 // requests to reject with 500 before streaming
	frames   string
	release  chan struct{}
}

func newStreamServer(t *testing.T, frames string) *streamServer {
	s := &streamServer{
		frames:  frames,
		release: make(chan struct{}),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/watch" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if accept := r.Header.Get("Accept"); accept != "text/event-stream" {
			t.Errorf("Accept = %q, want text/event-stream", accept)
		}

		var req SubscriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode subscription: %v", err)
		}
		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.times = append(s.times, time.Now())
		s.mu.Unlock()

		if atomic.AddInt32(&s.failures, -1) >= 0 {
			http.Error(w, "unavailable", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, s.frames)
		w.(http.Flusher).Flush()
		<-s.release
	}))
	t.Cleanup(func() {
		close(s.release)
		s.Server.Close()
	})
	return s
}

func (s *streamServer) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *streamServer) connectGap() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.times) < 2 {
		return 0
	}
	return s.times[1].Sub(s.times[0])
}

func newTestClient(t *testing.T, serverURL string, rec *recorder, retry time.Duration) *Client {
	t.Helper()
	client, err := New(Config{
		ServerURL:     serverURL,
		RetryInterval: retry,
		Registry:      rec.registry(),
		Logger:        quietLogger(),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return client
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error for missing server URL")
	}
	if _, err := New(Config{ServerURL: "not a url"}); err == nil {
		t.Error("expected error for malformed server URL")
	}
}

func TestConnect_InvalidSubscription(t *testing.T) {
	rec := &recorder{}
	client := newTestClient(t, "http://localhost:0", rec, time.Millisecond)

	if err := client.Connect(context.Background(), SubscriptionRequest{}); err == nil {
		t.Error("expected error for subscription without event_type")
	}
}

func TestConnect_HeartbeatDelivered(t *testing.T) {
	server := newStreamServer(t, "event: heartbeat\ndata: {\"timestamp\": 42}\n\n")
	rec := &recorder{}
	client := newTestClient(t, server.URL, rec, 10*time.Millisecond)

	done := make(chan error, 1)
	go func() {
		done <- client.Connect(context.Background(), SubscriptionRequest{EventType: "test_polygon"})
	}()

	waitFor(t, func() bool { return len(rec.recorded()) == 1 }, "heartbeat dispatch")
	client.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Connect returned %v, want nil after Stop", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Connect did not return after Stop")
	}

	got := rec.recorded()
	if got[0] != KindHeartbeat {
		t.Errorf("kind = %q, want heartbeat", got[0])
	}
	rec.mu.Lock()
	payload := rec.data[0]
	rec.mu.Unlock()
	if payload["timestamp"] != float64(42) {
		t.Errorf("payload = %v, want timestamp 42", payload)
	}
}

func TestConnect_UnknownKindFallsThrough(t *testing.T) {
	frames := "event: live-notification\ndata: {\"id\": \"abc\"}\n\n" +
		"event: bogus\ndata: {}\n\n"
	server := newStreamServer(t, frames)
	rec := &recorder{}
	client := newTestClient(t, server.URL, rec, 10*time.Millisecond)

	done := make(chan error, 1)
	go func() {
		done <- client.Connect(context.Background(), SubscriptionRequest{EventType: "test_polygon"})
	}()

	waitFor(t, func() bool { return len(rec.recorded()) == 2 }, "both dispatches")
	client.Stop()
	<-done

	got := rec.recorded()
	if got[0] != KindLiveNotification {
		t.Errorf("first kind = %q, want live-notification", got[0])
	}
	if got[1] != KindUnknown {
		t.Errorf("second kind = %q, want unknown", got[1])
	}
	rec.mu.Lock()
	first := rec.data[0]
	rec.mu.Unlock()
	if first["id"] != "abc" {
		t.Errorf("first payload = %v, want id abc", first)
	}
}

func TestConnect_RetriesAfterConnectError(t *testing.T) {
	const retryInterval = 25 * time.Millisecond

	server := newStreamServer(t, "event: live-notification\ndata: {\"id\": \"abc\"}\n\n")
	atomic.StoreInt32(&server.failures, 1)

	rec := &recorder{}
	client := newTestClient(t, server.URL, rec, retryInterval)

	done := make(chan error, 1)
	go func() {
		done <- client.Connect(context.Background(), SubscriptionRequest{EventType: "test_polygon"})
	}()

	waitFor(t, func() bool { return len(rec.recorded()) == 1 }, "dispatch after reconnect")
	client.Stop()
	<-done

	if n := server.requestCount(); n != 2 {
		t.Errorf("connect attempts = %d, want 2", n)
	}
	if gap := server.connectGap(); gap < retryInterval {
		t.Errorf("gap between attempts = %v, want >= %v", gap, retryInterval)
	}
}

func TestConnect_RetriesIndefinitelyUntilStopped(t *testing.T) {
	server := newStreamServer(t, "")
	atomic.StoreInt32(&server.failures, 1000)

	rec := &recorder{}
	client := newTestClient(t, server.URL, rec, 5*time.Millisecond)

	done := make(chan error, 1)
	go func() {
		done <- client.Connect(context.Background(), SubscriptionRequest{EventType: "test_polygon"})
	}()

	waitFor(t, func() bool { return server.requestCount() >= 3 }, "3 failed attempts")
	client.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Connect returned %v, want nil after Stop", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Connect did not return after Stop")
	}
	if len(rec.recorded()) != 0 {
		t.Errorf("no events should have been dispatched, got %d", len(rec.recorded()))
	}
}

func TestConnect_StopWhileBlockedOnRead(t *testing.T) {
	// One event, then the stream stays open with nothing to read.
	server := newStreamServer(t, "event: heartbeat\ndata: {}\n\n")
	rec := &recorder{}
	client := newTestClient(t, server.URL, rec, 10*time.Millisecond)

	done := make(chan error, 1)
	go func() {
		done <- client.Connect(context.Background(), SubscriptionRequest{EventType: "test_polygon"})
	}()

	waitFor(t, func() bool { return len(rec.recorded()) == 1 }, "first dispatch")

	// The loop is now blocked waiting for the next event.
	client.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Connect returned %v, want nil after Stop", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Connect did not unblock after Stop")
	}
}

func TestStop_Idempotent(t *testing.T) {
	rec := &recorder{}
	client := newTestClient(t, "http://localhost:1", rec, time.Millisecond)

	client.Stop()
	client.Stop()

	if !client.Stopped() {
		t.Error("Stopped() = false after Stop")
	}

	// Connect after Stop returns immediately without dialing.
	err := client.Connect(context.Background(), SubscriptionRequest{EventType: "x"})
	if err != nil {
		t.Errorf("Connect after Stop returned %v, want nil", err)
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	server := newStreamServer(t, "event: heartbeat\ndata: {}\n\n")
	rec := &recorder{}

	comp := NewComponent(Config{
		ServerURL:     server.URL,
		RetryInterval: 10 * time.Millisecond,
		Registry:      rec.registry(),
		Logger:        quietLogger(),
	}, SubscriptionRequest{EventType: "test_polygon"})

	if comp.Name() != "watch" {
		t.Errorf("Name = %q", comp.Name())
	}

	ctx := context.Background()
	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	waitFor(t, func() bool { return len(rec.recorded()) == 1 }, "dispatch via component")

	if h := comp.Health(ctx); h.Status != "healthy" {
		t.Errorf("health = %q, want healthy", h.Status)
	}

	stopCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := comp.Stop(stopCtx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}

	if h := comp.Health(ctx); h.Status != "unhealthy" {
		t.Errorf("health after stop = %q, want unhealthy", h.Status)
	}
}
