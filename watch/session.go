package watch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/kbukum/avisowatch/httpclient"
	"github.com/kbukum/avisowatch/httpclient/sse"
	"github.com/kbukum/avisowatch/logger"
)

// ErrStreamClosed is returned when the server ends the stream; the
// client treats it as a recoverable disconnect.
var ErrStreamClosed = errors.New("watch: event stream closed by server")

// sessionResult is the terminal outcome of one consume loop.
type sessionResult int

const (
	// resultDisconnected means the stream ended or errored; the caller
	// decides whether to reconnect.
	resultDisconnected sessionResult = iota
	// resultStopped means the stop flag was observed; no reconnect.
	resultStopped
)

// session runs exactly one connect-and-consume cycle. Events are
// processed sequentially in arrival order by a single goroutine.
type session struct {
	id       string
	client   *httpclient.Client
	registry *Registry
	log      *logger.Logger
	stopped  *atomic.Bool
}

// open issues the subscription call and returns the streaming response.
// Any transport failure or non-2xx status surfaces as an error without
// producing events.
func (s *session) open(ctx context.Context, req SubscriptionRequest) (*httpclient.StreamResponse, error) {
	resp, err := s.client.DoStream(ctx, httpclient.Request{
		Method:  http.MethodPost,
		Path:    watchPath,
		Headers: map[string]string{"Accept": "text/event-stream"},
		Body:    req,
	})
	if err != nil {
		return nil, err
	}
	if resp.SSE == nil {
		_ = resp.Close()
		return nil, httpclient.NewValidationError("response is not an event stream")
	}
	return resp, nil
}

// run consumes the event stream until it ends, errors, or the stop flag
// is raised. The returned error is only meaningful for
// resultDisconnected and may be nil on clean end-of-stream.
func (s *session) run(reader sse.Reader) (sessionResult, error) {
	for {
		if s.stopped.Load() {
			return resultStopped, nil
		}
		event, err := reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return resultDisconnected, nil
			}
			return resultDisconnected, err
		}
		// A stop raised while blocked on Next cancels the request
		// context, but a racing event can still arrive first.
		if s.stopped.Load() {
			return resultStopped, nil
		}
		s.handle(event)
	}
}

// handle decodes, classifies, and dispatches one raw event. Decode and
// handler failures are logged and never escalate past the event.
func (s *session) handle(event *sse.Event) {
	if event.Event == "" && event.Data == "" {
		return
	}

	payload := make(map[string]any)
	if event.Data != "" {
		if err := json.Unmarshal([]byte(event.Data), &payload); err != nil {
			s.log.WithError(err).Warn("dropping event with malformed payload",
				logger.Fields("event", event.Event))
			return
		}
	}

	kind := ClassifyLabel(event.Event)
	if err := s.registry.Dispatch(kind, payload); err != nil {
		s.log.WithError(err).Warn("event handler failed",
			logger.Fields("event", event.Event, "kind", string(kind)))
	}
}
