// Package bootstrap runs lifecycle-managed components as a long-lived
// process with signal handling and graceful shutdown.
package bootstrap
