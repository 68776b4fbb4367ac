package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EventEnvelopeBuilder struct {
	envelope *EventEnvelope
	payload  interface{}
}

func NewEventEnvelopeBuilder(eventType string, version int) *EventEnvelopeBuilder {
	return &EventEnvelopeBuilder{
		envelope: &EventEnvelope{
			Type:    eventType,
			Version: version,
		},
	}
}

func (b *EventEnvelopeBuilder) WithID(id string) *EventEnvelopeBuilder {
	b.envelope.ID = id
	return b
}

func (b *EventEnvelopeBuilder) WithKey(key string) *EventEnvelopeBuilder {
	b.envelope.Key = key
	return b
}

func (b *EventEnvelopeBuilder) WithSource(source string) *EventEnvelopeBuilder {
	b.envelope.Metadata.Source = source
	return b
}

func (b *EventEnvelopeBuilder) WithTimestamp(timestamp time.Time) *EventEnvelopeBuilder {
	b.envelope.Timestamp = timestamp
	return b
}

func (b *EventEnvelopeBuilder) WithPayload(payload interface{}) *EventEnvelopeBuilder {
	b.payload = payload
	return b
}

func (b *EventEnvelopeBuilder) WithTraceID(traceID string) *EventEnvelopeBuilder {
	b.envelope.Metadata.TraceID = traceID
	return b
}

func (b *EventEnvelopeBuilder) Build() (*EventEnvelope, error) {
	if b.envelope.ID == "" {
		b.envelope.ID = uuid.NewString()
	}
	if b.envelope.Timestamp.IsZero() {
		b.envelope.Timestamp = time.Now().UTC()
	}

	body, err := json.Marshal(b.payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", b.envelope.Type, err)
	}
	b.envelope.Payload = body

	if err := ValidateEventEnvelope(b.envelope); err != nil {
		return nil, err
	}

	return b.envelope, nil
}

// NewMessageCreatedEnvelope builds the envelope for a MessageCreated event,
// keyed by author so one author's events stay ordered.
func NewMessageCreatedEnvelope(event MessageCreated, traceID string) (*EventEnvelope, error) {
	if err := ValidateMessageCreated(&event); err != nil {
		return nil, err
	}
	return NewEventEnvelopeBuilder(EventTypeMessageCreated, MessageCreatedVersion).
		WithKey(event.AuthorID).
		WithSource("api-service").
		WithTraceID(traceID).
		WithPayload(event).
		Build()
}
