package watch

import "github.com/kbukum/avisowatch/logger"

// DefaultRegistry returns a registry with the stock handlers, which
// log each event at a kind-appropriate level.
func DefaultRegistry(log *logger.Logger) *Registry {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return NewRegistry(map[EventKind]Handler{
		KindLiveNotification: handleLiveNotification(log),
		KindReplay:           handleReplay(log),
		KindReplayControl:    handleReplayControl(log),
		KindHeartbeat:        handleHeartbeat(log),
		KindUnknown:          handleUnknown(log),
	})
}

func handleLiveNotification(log *logger.Logger) Handler {
	return func(payload map[string]any) error {
		log.Info("live notification", logger.Fields(
			"id", payloadString(payload, "id"),
			"payload", payload,
		))
		return nil
	}
}

func handleReplay(log *logger.Logger) Handler {
	return func(payload map[string]any) error {
		log.Info("replay", logger.Fields("id", payloadString(payload, "id")))
		return nil
	}
}

func handleReplayControl(log *logger.Logger) Handler {
	return func(payload map[string]any) error {
		log.Info("replay control", logger.Fields("control", payloadString(payload, "type")))
		return nil
	}
}

func handleHeartbeat(log *logger.Logger) Handler {
	return func(payload map[string]any) error {
		log.Debug("heartbeat", logger.Fields("timestamp", payload["timestamp"]))
		return nil
	}
}

func handleUnknown(log *logger.Logger) Handler {
	return func(payload map[string]any) error {
		log.Warn("unknown event", logger.Fields("payload", payload))
		return nil
	}
}

// payloadString extracts a string field from a payload, with a
// placeholder for absent or non-string values.
func payloadString(payload map[string]any, key string) string {
	if v, ok := payload[key].(string); ok && v != "" {
		return v
	}
	return "n/a"
}
