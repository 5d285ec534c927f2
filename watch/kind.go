package watch

// EventKind classifies a feed event by its SSE type label.
type EventKind string

const (
	// KindLiveNotification is a notification delivered as it happens.
	KindLiveNotification EventKind = "live-notification"
	// KindReplay is a historical notification re-delivered from the
	// server's store (requested via the subscription's from_id).
	KindReplay EventKind = "replay"
	// KindReplayControl marks the boundaries of a replay phase.
	KindReplayControl EventKind = "replay-control"
	// KindHeartbeat is a periodic keep-alive from the server.
	KindHeartbeat EventKind = "heartbeat"
	// KindUnknown is any label the client does not recognize.
	KindUnknown EventKind = "unknown"
)

// Kinds returns the closed set of event kinds.
func Kinds() []EventKind {
	return []EventKind{
		KindLiveNotification,
		KindReplay,
		KindReplayControl,
		KindHeartbeat,
		KindUnknown,
	}
}

// ClassifyLabel maps a raw SSE type label to an EventKind. Unrecognized
// or empty labels map to KindUnknown; classification never fails.
func ClassifyLabel(label string) EventKind {
	switch EventKind(label) {
	case KindLiveNotification:
		return KindLiveNotification
	case KindReplay:
		return KindReplay
	case KindReplayControl:
		return KindReplayControl
	case KindHeartbeat:
		return KindHeartbeat
	default:
		return KindUnknown
	}
}
