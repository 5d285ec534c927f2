// Package component defines the lifecycle interface implemented by
// managed parts of the application (the watch client, and anything
// that joins it later): Start, Stop, and a health probe.
package component
