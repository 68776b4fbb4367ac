package models

import (
	"encoding/json"
	"time"
)

const (
	EventTypeMessageCreated = "message.created"
	EventTypeUndecodable    = "undecodable"

	// MessageCreatedVersion is the payload schema version this build writes and reads.
	MessageCreatedVersion = 1
)

// EventEnvelope is the versioned wrapper every event travels in. Key is the
// partition key, the broker keeps events with the same key in order.
type EventEnvelope struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Version   int             `json:"version"`
	Key       string          `json:"key"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
	Metadata  Metadata        `json:"metadata"`
}

type Metadata struct {
	TraceID string   `json:"trace_id,omitempty"`
	Source  string   `json:"source,omitempty"`
	DLQ     *DLQInfo `json:"dlq,omitempty"`
}

type DLQInfo struct {
	Reason      string    `json:"reason"`
	SourceTopic string    `json:"source_topic"`
	FailedAt    time.Time `json:"failed_at"`
}

// MessageCreated is emitted once per persisted message and drives the
// timeline fan-out.
type MessageCreated struct {
	MessageID string    `json:"messageId"`
	AuthorID  string    `json:"authorId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// DecodeMessageCreated extracts the payload of a message.created envelope.
func (e *EventEnvelope) DecodeMessageCreated() (*MessageCreated, error) {
	if err := ValidateEventEnvelope(e); err != nil {
		return nil, err
	}
	if e.Type != EventTypeMessageCreated {
		return nil, &ValidationError{Field: "type", Message: "expected " + EventTypeMessageCreated + ", got " + e.Type}
	}
	if e.Version > MessageCreatedVersion {
		return nil, &ValidationError{Field: "version", Message: "unsupported payload version"}
	}

	var event MessageCreated
	if err := json.Unmarshal(e.Payload, &event); err != nil {
		return nil, &ValidationError{Field: "payload", Message: err.Error()}
	}

	if err := ValidateMessageCreated(&event); err != nil {
		return nil, err
	}

	return &event, nil
}

// UndecodableEnvelope wraps raw bytes that could not be parsed as an
// envelope so they can still be parked on the dead letter destination.
func UndecodableEnvelope(id string, raw []byte) EventEnvelope {
	payload, _ := json.Marshal(string(raw))
	return EventEnvelope{
		ID:        id,
		Type:      EventTypeUndecodable,
		Version:   0,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}
