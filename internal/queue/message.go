package queue

import (
	"errors"
	"fmt"
)

// NotificationEvent is the payload carried on the notification queue. The API
// server publishes one event per created contact request; the worker consumes
// them. Phone and Message default to empty strings when absent.
type NotificationEvent struct {
	ContactRequestID int64  `json:"contact_request_id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Message          string `json:"message"`
}

// Predefined validation errors.
var (
	ErrMissingContactRequestID = errors.New("contact_request_id is required")
	ErrMissingName             = errors.New("name is required")
	ErrMissingEmail            = errors.New("email is required")
)

// Validate checks that the event carries the fields required to process it.
// A failing event is a content error: the consumer drops it without requeue.
func (e *NotificationEvent) Validate() error {
	if e.ContactRequestID <= 0 {
		return fmt.Errorf("event for %q: %w", e.Email, ErrMissingContactRequestID)
	}
	if e.Name == "" {
		return ErrMissingName
	}
	if e.Email == "" {
		return ErrMissingEmail
	}
	return nil
}
