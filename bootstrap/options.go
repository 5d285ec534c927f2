package bootstrap

import "time"

// Option configures the App during creation.
type Option func(*App)

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(a *App) {
		a.gracefulTimeout = d
	}
}
