package watch

import (
	"context"
	"fmt"

	"github.com/kbukum/avisowatch/component"
)

// Component wraps a Client with lifecycle management so the watcher can
// be run like any other managed infrastructure component. Start launches
// Connect in a background goroutine; Stop requests shutdown and waits
// for the loop to return.
type Component struct {
	config Config
	req    SubscriptionRequest

	client *Client
	done   chan struct{}
	runErr error
}

// compile-time assertions
var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent creates a watch component. The client is created lazily
// in Start().
func NewComponent(cfg Config, req SubscriptionRequest) *Component {
	cfg.ApplyDefaults()
	return &Component{config: cfg, req: req}
}

// Name returns the component name.
func (c *Component) Name() string { return "watch" }

// Start creates the client and launches the connect loop.
func (c *Component) Start(ctx context.Context) error {
	if err := c.req.Validate(); err != nil {
		return err
	}
	client, err := New(c.config)
	if err != nil {
		return err
	}
	c.client = client
	c.done = make(chan struct{})

	// Connect blocks until stopped; the component context only covers
	// startup, so the loop runs on the background context.
	go func() {
		defer close(c.done)
		c.runErr = client.Connect(context.Background(), c.req)
	}()
	return nil
}

// Stop requests shutdown and waits for the connect loop to exit, or for
// ctx to expire.
func (c *Component) Stop(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	c.client.Stop()
	select {
	case <-c.done:
		return c.runErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Health reports whether the connect loop is still running.
func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if c.client == nil {
		h.Status = component.StatusUnhealthy
		h.Message = "not started"
		return h
	}
	if c.client.Stopped() {
		h.Status = component.StatusUnhealthy
		h.Message = "stopped"
		return h
	}
	select {
	case <-c.done:
		h.Status = component.StatusUnhealthy
		h.Message = "connect loop exited"
	default:
	}
	return h
}

// Describe returns summary information for startup display.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Aviso Watch",
		Type:    "stream",
		Details: fmt.Sprintf("%s event_type=%s retry=%s", c.config.ServerURL, c.req.EventType, c.config.RetryInterval),
	}
}
