package bootstrap

import (
	"time"

	"github.com/kbukum/avisowatch/component"
	"github.com/kbukum/avisowatch/logger"
)

// printSummary logs a one-line-per-component startup summary. Components
// implementing component.Describable contribute their display details.
func (a *App) printSummary(startupDuration time.Duration) {
	a.Logger.Info("ready", logger.Fields(
		"name", a.Name,
		"version", a.Version,
		"components", len(a.Components.All()),
		"startup_ms", startupDuration.Milliseconds(),
	))

	for _, c := range a.Components.All() {
		d, ok := c.(component.Describable)
		if !ok {
			a.Logger.Info("component", logger.Fields("name", c.Name()))
			continue
		}
		desc := d.Describe()
		name := desc.Name
		if name == "" {
			name = c.Name()
		}
		a.Logger.Info("component", logger.Fields(
			"name", name,
			"type", desc.Type,
			"details", desc.Details,
		))
	}
}
