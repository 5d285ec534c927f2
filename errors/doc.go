// Package errors provides structured application errors with
// machine-readable codes and retryable classification.
package errors
