package watch

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kbukum/avisowatch/httpclient/sse"
	"github.com/kbukum/avisowatch/logger"
)

// fakeReader serves a fixed slice of events, then returns finalErr
// (io.EOF by default).
type fakeReader struct {
	events   []*sse.Event
	idx      int
	finalErr error
	closed   bool
}

func (f *fakeReader) Next() (*sse.Event, error) {
	if f.idx < len(f.events) {
		ev := f.events[f.idx]
		f.idx++
		return ev, nil
	}
	if f.finalErr != nil {
		return nil, f.finalErr
	}
	return nil, io.EOF
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

// recorder is a test handler that records dispatches in order.
type recorder struct {
	mu    sync.Mutex
	kinds []EventKind
	data  []map[string]any
}

func (r *recorder) handler(kind EventKind) Handler {
	return func(payload map[string]any) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.kinds = append(r.kinds, kind)
		r.data = append(r.data, payload)
		return nil
	}
}

func (r *recorder) registry() *Registry {
	handlers := make(map[EventKind]Handler)
	for _, kind := range Kinds() {
		handlers[kind] = r.handler(kind)
	}
	return NewRegistry(handlers)
}

func (r *recorder) recorded() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]EventKind(nil), r.kinds...)
}

func newTestSession(reg *Registry, stopped *atomic.Bool) *session {
	return &session{
		id:       "test-session",
		registry: reg,
		log:      logger.NewDefault("test").WithComponent("watch"),
		stopped:  stopped,
	}
}

func TestSessionRun_DispatchesInOrder(t *testing.T) {
	rec := &recorder{}
	var stopped atomic.Bool
	sess := newTestSession(rec.registry(), &stopped)

	reader := &fakeReader{events: []*sse.Event{
		{Event: "live-notification", Data: `{"id":"a"}`},
		{Event: "replay", Data: `{"id":"b"}`},
		{Event: "heartbeat", Data: `{"timestamp":1}`},
		{Event: "replay-control", Data: `{"type":"end"}`},
	}}

	result, err := sess.run(reader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != resultDisconnected {
		t.Errorf("result = %v, want disconnected", result)
	}

	want := []EventKind{KindLiveNotification, KindReplay, KindHeartbeat, KindReplayControl}
	got := rec.recorded()
	if len(got) != len(want) {
		t.Fatalf("dispatched %d events, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("dispatch[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSessionRun_SkipsMalformedPayloads(t *testing.T) {
	rec := &recorder{}
	var stopped atomic.Bool
	sess := newTestSession(rec.registry(), &stopped)

	reader := &fakeReader{events: []*sse.Event{
		{Event: "live-notification", Data: `{"id":"a"}`},
		{Event: "live-notification", Data: `{not json`},
		{Event: "live-notification", Data: `also not json]`},
		{Event: "live-notification", Data: `{"id":"b"}`},
	}}

	if _, err := sess.run(reader); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := rec.recorded()
	if len(got) != 2 {
		t.Fatalf("dispatched %d events, want 2 (malformed skipped)", len(got))
	}
}

func TestSessionRun_HandlerErrorDoesNotTerminate(t *testing.T) {
	calls := 0
	handlers := map[EventKind]Handler{
		KindReplay: func(payload map[string]any) error {
			calls++
			return errors.New("handler failure")
		},
	}
	var stopped atomic.Bool
	sess := newTestSession(NewRegistry(handlers), &stopped)

	reader := &fakeReader{events: []*sse.Event{
		{Event: "replay", Data: `{}`},
		{Event: "replay", Data: `{}`},
	}}

	result, err := sess.run(reader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != resultDisconnected {
		t.Errorf("result = %v, want disconnected", result)
	}
	if calls != 2 {
		t.Errorf("handler called %d times, want 2", calls)
	}
}

func TestSessionRun_StopBetweenEvents(t *testing.T) {
	var stopped atomic.Bool
	rec := &recorder{}

	// The first dispatch raises the stop flag; the loop must observe it
	// before dispatching the second event.
	handlers := map[EventKind]Handler{
		KindUnknown: func(payload map[string]any) error {
			rec.handler(KindUnknown)(payload)
			stopped.Store(true)
			return nil
		},
	}
	sess := newTestSession(NewRegistry(handlers), &stopped)

	reader := &fakeReader{events: []*sse.Event{
		{Event: "first", Data: `{}`},
		{Event: "second", Data: `{}`},
	}}

	result, err := sess.run(reader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != resultStopped {
		t.Errorf("result = %v, want stopped", result)
	}
	if len(rec.recorded()) != 1 {
		t.Errorf("dispatched %d events after stop, want 1", len(rec.recorded()))
	}
}

func TestSessionRun_ReadError(t *testing.T) {
	readErr := errors.New("connection reset")
	var stopped atomic.Bool
	rec := &recorder{}
	sess := newTestSession(rec.registry(), &stopped)

	reader := &fakeReader{
		events:   []*sse.Event{{Event: "heartbeat", Data: `{}`}},
		finalErr: readErr,
	}

	result, err := sess.run(reader)
	if result != resultDisconnected {
		t.Errorf("result = %v, want disconnected", result)
	}
	if !errors.Is(err, readErr) {
		t.Errorf("err = %v, want %v", err, readErr)
	}
	if len(rec.recorded()) != 1 {
		t.Errorf("dispatched %d events before error, want 1", len(rec.recorded()))
	}
}

func TestSessionHandle_LabelOnlyEvent(t *testing.T) {
	rec := &recorder{}
	var stopped atomic.Bool
	sess := newTestSession(rec.registry(), &stopped)

	sess.handle(&sse.Event{Event: "heartbeat"})

	got := rec.recorded()
	if len(got) != 1 || got[0] != KindHeartbeat {
		t.Fatalf("recorded = %v, want one heartbeat", got)
	}
	rec.mu.Lock()
	payload := rec.data[0]
	rec.mu.Unlock()
	if len(payload) != 0 {
		t.Errorf("payload = %v, want empty map", payload)
	}
}

func TestSessionHandle_EmptyEventSkipped(t *testing.T) {
	rec := &recorder{}
	var stopped atomic.Bool
	sess := newTestSession(rec.registry(), &stopped)

	sess.handle(&sse.Event{})

	if len(rec.recorded()) != 0 {
		t.Errorf("empty event should not dispatch, got %v", rec.recorded())
	}
}
