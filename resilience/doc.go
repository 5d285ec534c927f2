// Package resilience provides the retry primitives used by the watch
// client: an interruptible wait, and a fixed-interval loop that keeps a
// failing operation alive indefinitely until it succeeds, hits a
// non-retryable error, or its context is cancelled.
package resilience
