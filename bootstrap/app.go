package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/avisowatch/component"
	"github.com/kbukum/avisowatch/logger"
)

// App runs a set of lifecycle-managed components as a long-lived process:
// start all, block on a shutdown signal, stop all in reverse order.
type App struct {
	Name       string
	Version    string
	Logger     *logger.Logger
	Components *component.Registry

	gracefulTimeout time.Duration
	onReady         []Hook
	onStop          []Hook
}

// NewApp creates an application runner.
func NewApp(name, version string, log *logger.Logger, opts ...Option) *App {
	app := &App{
		Name:            name,
		Version:         version,
		Logger:          log,
		Components:      component.NewRegistry(),
		gracefulTimeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// Register adds a component to the application's registry.
func (a *App) Register(c component.Component) error {
	return a.Components.Register(c)
}

// ReadyCheck verifies that all registered components are healthy.
func (a *App) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Run executes the application lifecycle: start components, run OnReady
// hooks, block until SIGINT/SIGTERM or ctx cancellation, then shut down
// gracefully.
func (a *App) Run(ctx context.Context) error {
	start := time.Now()

	a.Logger.Info("starting", logger.Fields("name", a.Name, "version", a.Version))

	if err := a.Components.StartAll(ctx); err != nil {
		_ = a.stop()
		return fmt.Errorf("startup failed: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("ready check reported issues", logger.ErrorFields("ready", err))
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		_ = a.stop()
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.printSummary(time.Since(start))
	a.waitForSignal(ctx)

	if err := runHooks(context.Background(), a.onStop); err != nil {
		a.Logger.Error("onStop hook failed", logger.ErrorFields("shutdown", err))
	}
	return a.stop()
}

// waitForSignal blocks until SIGINT/SIGTERM or context cancellation.
func (a *App) waitForSignal(ctx context.Context) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("received signal, shutting down", logger.Fields("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.Info("context cancelled, shutting down")
	}
}

// stop shuts down all components within the graceful timeout.
func (a *App) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	if err := a.Components.StopAll(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.Logger.Info("shutdown complete")
	return nil
}
