package messages

import (
	"context"
	"fmt"
	"time"

	"flock/internal/broker"
	"flock/internal/constants"
	"flock/internal/logger"
	pkgerrors "flock/pkg/errors"
	"flock/pkg/metrics"
	"flock/pkg/models"
	"flock/pkg/retry"
	"flock/pkg/tracing"
)

//go:generate go run go.uber.org/mock/mockgen -source=publisher.go -destination=../mocks/messages_publisher_mock.go -package=mocks -mock_names=Publisher=MockPublisher

// Publisher emits MessageCreated for a message that is already stored.
type Publisher interface {
	PublishMessageCreated(ctx context.Context, msg *Message) error
}

type EventPublisher struct {
	producer broker.Producer
	topic    string
	policy   retry.Policy
	logger   logger.Logger
}

func NewEventPublisher(producer broker.Producer, topic string, policy retry.Policy, log logger.Logger) *EventPublisher {
	return &EventPublisher{
		producer: producer,
		topic:    topic,
		policy:   policy,
		logger:   log,
	}
}

// PublishMessageCreated builds the envelope once so every retry carries the same event id.
func (p *EventPublisher) PublishMessageCreated(ctx context.Context, msg *Message) error {
	env, err := models.NewMessageCreatedEnvelope(models.MessageCreated{
		MessageID: msg.ID,
		AuthorID:  msg.AuthorID,
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt,
	}, tracing.TraceIDFromContext(ctx))
	if err != nil {
		return pkgerrors.ErrInternal.WithCause(fmt.Errorf("failed to build event: %w", err))
	}

	err = retry.RetryWithCallback(ctx, p.policy, func() error {
		return p.producer.Publish(ctx, p.topic, *env)
	}, func(attempt int, err error, nextDelay time.Duration) {
		metrics.RetryAttemptsTotal.WithLabelValues(constants.ServiceNameAPI, p.topic).Inc()
		p.logger.WarnwCtx(ctx, "Retrying event publish",
			"attempt", attempt,
			"max_attempts", p.policy.MaxAttempts,
			"next_delay", nextDelay,
			"error", err,
			"message_id", msg.ID,
		)
	})
	if err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(p.topic, "error").Inc()
		return pkgerrors.ErrServiceUnavailable.
			WithCause(err).
			WithMessage("message was stored but its event could not be published").
			WithDetail("message_id", msg.ID)
	}

	metrics.EventsPublishedTotal.WithLabelValues(p.topic, "success").Inc()
	p.logger.DebugwCtx(ctx, "Event published", "event_id", env.ID, "message_id", msg.ID, "topic", p.topic)
	return nil
}
