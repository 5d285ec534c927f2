// Package validation provides struct tag validation for avisowatch
// configuration and subscription requests, built on the validator
// library.
//
//	type SubscriptionRequest struct {
//	    EventType string `json:"event_type" validate:"required"`
//	}
//	err := validation.Validate(req)
package validation
