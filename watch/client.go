package watch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/avisowatch/httpclient"
	"github.com/kbukum/avisowatch/logger"
	"github.com/kbukum/avisowatch/resilience"
)

// Client is a reconnecting watch client. At most one streaming
// connection is active per Client at any time. Connect and Stop may be
// called from different goroutines; everything else is single-threaded.
type Client struct {
	config   Config
	http     *httpclient.Client
	registry *Registry
	log      *logger.Logger

	stopped atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New creates a watch client from the given configuration.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	hc, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.ServerURL,
		Timeout: cfg.ConnectTimeout,
		Auth:    cfg.Auth,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		config:   cfg,
		http:     hc,
		registry: cfg.Registry,
		log:      cfg.Logger,
	}, nil
}

// Connect subscribes to the feed and blocks, processing events and
// reconnecting after any failure with the configured fixed interval,
// until Stop is called or ctx is cancelled. Returns nil when stopped.
func (c *Client) Connect(ctx context.Context, req SubscriptionRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	err := resilience.Forever(ctx, resilience.LoopConfig{
		Interval: c.config.RetryInterval,
		OnRetry: func(attempt int, cause error, wait time.Duration) {
			c.log.WithError(cause).Warn("stream lost, reconnecting", logger.Fields(
				"attempt", attempt,
				"retry_in", wait.String(),
			))
		},
	}, func() error {
		return c.runSession(ctx, req)
	})

	// A stop request cancels the context mid-wait or mid-read; that is
	// a clean shutdown, not a failure.
	if c.stopped.Load() {
		return nil
	}
	return err
}

// Stop requests a cooperative shutdown. It is non-blocking, idempotent,
// and safe to call from any goroutine (e.g. a signal handler). The loop
// observes it within one event or one retry wait.
func (c *Client) Stop() {
	c.stopped.Store(true)
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()
}

// Stopped reports whether a stop has been requested.
func (c *Client) Stopped() bool {
	return c.stopped.Load()
}

// runSession performs one connect-and-consume cycle. A nil return ends
// the reconnect loop (stop observed); any error triggers a retry wait.
func (c *Client) runSession(ctx context.Context, req SubscriptionRequest) error {
	if c.stopped.Load() {
		return nil
	}

	sessionID := uuid.NewString()
	sess := &session{
		id:       sessionID,
		client:   c.http,
		registry: c.registry,
		log:      c.log.WithFields(logger.Fields(logger.FieldSessionID, sessionID)),
		stopped:  &c.stopped,
	}

	sess.log.Info("connecting", logger.Fields(
		"server", c.config.ServerURL,
		"event_type", req.EventType,
	))

	resp, err := sess.open(ctx, req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Close() }()

	sess.log.Info("connected, listening for events")

	result, err := sess.run(resp.SSE)
	if result == resultStopped {
		sess.log.Info("stopped by caller")
		return nil
	}
	if err != nil {
		return err
	}
	return ErrStreamClosed
}
