// Package logger provides structured logging for avisowatch, built on
// zerolog. It supports console and JSON output, component tagging, and
// a package-level global logger for convenience.
//
//	log := logger.NewDefault("avisowatch").WithComponent("watch")
//	log.Info("connected", logger.Fields("server", url))
package logger
