package models

import (
	"fmt"

	"github.com/google/uuid"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateEventEnvelope(env *EventEnvelope) error {
	if env == nil {
		return &ValidationError{
			Field:   "envelope",
			Message: "event envelope cannot be nil",
		}
	}

	if env.ID == "" {
		return &ValidationError{
			Field:   "id",
			Message: "event ID is required",
		}
	}

	if env.Type == "" {
		return &ValidationError{
			Field:   "type",
			Message: "event type is required",
		}
	}

	if env.Timestamp.IsZero() {
		return &ValidationError{
			Field:   "timestamp",
			Message: "event timestamp is required",
		}
	}

	if len(env.Payload) == 0 {
		return &ValidationError{
			Field:   "payload",
			Message: "event payload cannot be empty",
		}
	}

	return nil
}

func ValidateMessageCreated(event *MessageCreated) error {
	if event.MessageID == "" {
		return &ValidationError{Field: "messageId", Message: "message ID is required"}
	}
	if _, err := uuid.Parse(event.MessageID); err != nil {
		return &ValidationError{Field: "messageId", Message: "message ID must be a UUID"}
	}
	if event.AuthorID == "" {
		return &ValidationError{Field: "authorId", Message: "author ID is required"}
	}
	if _, err := uuid.Parse(event.AuthorID); err != nil {
		return &ValidationError{Field: "authorId", Message: "author ID must be a UUID"}
	}
	if event.CreatedAt.IsZero() {
		return &ValidationError{Field: "createdAt", Message: "creation time is required"}
	}
	return nil
}
