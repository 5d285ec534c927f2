package watch

import "github.com/kbukum/avisowatch/validation"

// SubscriptionRequest describes what the client watches. It is sent as
// the JSON body of the subscribe call and is not mutated afterwards.
type SubscriptionRequest struct {
	// EventType is the server-side event type to watch (e.g. "test_polygon").
	EventType string `json:"event_type" validate:"required"`
	// Identifier narrows the subscription (opaque to the client).
	Identifier map[string]any `json:"identifier,omitempty"`
	// FromID is an opaque resume token; delivery (re)starts after it.
	FromID string `json:"from_id,omitempty"`
}

// Validate checks that the request is well-formed.
func (r SubscriptionRequest) Validate() error {
	return validation.Validate(r)
}
