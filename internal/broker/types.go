package broker

import (
	"context"

	"flock/pkg/models"
)

//go:generate go run go.uber.org/mock/mockgen -source=types.go -destination=../mocks/broker_mock.go -package=mocks -mock_names=Producer=MockProducer,Consumer=MockConsumer

// Producer publishes envelopes. Publish returns only after the broker acknowledged the write.
type Producer interface {
	Publish(ctx context.Context, topic string, env models.EventEnvelope) error
	Close() error
}

// Consumer delivers envelopes at least once. Consume blocks until ctx is
// cancelled or the consumer is closed. A message is acknowledged only after
// handler returned nil or the message was parked on the dead letter
// destination because handler returned a fatal error.
type Consumer interface {
	Consume(ctx context.Context, topic string, handler HandlerFunc) error
	Close() error
	SetServiceName(name string)
}

type HandlerFunc func(ctx context.Context, env models.EventEnvelope) error
