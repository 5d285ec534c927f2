// Package config loads the avisowatch application configuration from a
// YAML file, an optional .env file, and AVISOWATCH_* environment
// variables (in increasing precedence).
package config
