package resilience

import (
	"context"
	"errors"
	"time"
)

const defaultInterval = 5 * time.Second

// LoopConfig configures a Forever loop.
type LoopConfig struct {
	// Interval is the fixed wait between attempts. Defaults to 5s.
	// No backoff, no jitter: the loop is meant for long-lived watchers
	// where a steady reconnect cadence is preferred over ramp-down.
	Interval time.Duration
	// RetryIf determines if an error should be retried. Defaults to
	// DefaultRetryIf.
	RetryIf func(error) bool
	// OnRetry is called before each wait with the attempt number (1-based),
	// the error that caused it, and the upcoming wait duration.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// DefaultRetryIf retries all errors except context cancellation.
func DefaultRetryIf(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Forever executes fn repeatedly until it returns nil, returns a
// non-retryable error, or ctx is cancelled. After each retryable error
// it waits the fixed interval; the wait is interruptible by ctx, so
// cancellation latency is bounded by at most one interval.
func Forever(ctx context.Context, cfg LoopConfig, fn func() error) error {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.RetryIf == nil {
		cfg.RetryIf = DefaultRetryIf
	}

	for attempt := 1; ; attempt++ {
		// Check context before each attempt
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := fn()
		if err == nil {
			return nil
		}
		if !cfg.RetryIf(err) {
			return err
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, cfg.Interval)
		}

		if waitErr := Wait(ctx, cfg.Interval); waitErr != nil {
			return waitErr
		}
	}
}

// Wait blocks for d or until ctx is cancelled, whichever comes first.
// Returns the context error on cancellation, nil otherwise.
func Wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
