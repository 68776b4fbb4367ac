package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"flock/internal/config"
	"flock/internal/constants"
	"flock/internal/logger"
	"flock/pkg/logging"
	"flock/pkg/metrics"
	"flock/pkg/models"
	"flock/pkg/retry"
	"flock/pkg/tracing"
)

const eventTypeHeader = "event-type"

type KafkaProducer struct {
	writer *kafka.Writer
	logger logger.Logger
}

func NewKafkaProducer(cfg config.KafkaConfig, log logger.Logger) *KafkaProducer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           constants.KafkaBatchTimeout,
		WriteTimeout:           constants.KafkaWriteTimeout,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		Async:                  false,
	}
	return &KafkaProducer{writer: w, logger: log}
}

// Publish writes env keyed by env.Key so one author's events land on one partition.
func (p *KafkaProducer) Publish(ctx context.Context, topic string, env models.EventEnvelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	key := env.Key
	if key == "" {
		key = env.ID
	}

	ctx, span := tracing.StartPublishSpan(ctx, "kafka", topic, env.ID)
	defer span.End()

	headers := tracing.InjectKafkaHeaders(ctx, []kafka.Header{{Key: eventTypeHeader, Value: []byte(env.Type)}})

	start := time.Now()
	err = p.writer.WriteMessages(ctx,
		kafka.Message{
			Topic:   topic,
			Key:     []byte(key),
			Value:   body,
			Headers: headers,
			Time:    time.Now(),
		},
	)
	metrics.ObserveBrokerWriteDuration(topic, time.Since(start))

	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type outcome int

const (
	outcomeCommit outcome = iota
	outcomeRedeliver
	outcomeAbort
)

type KafkaConsumer struct {
	cfg         config.KafkaConfig
	policy      retry.Policy
	logger      logger.Logger
	dlqProducer Producer
	serviceName string
	observer    DeliveryObserver

	newReader       func(topic string) messageReader
	redeliveryPause time.Duration
	drainTimeout    time.Duration

	mu     sync.Mutex
	reader messageReader
	closed atomic.Bool
}

func NewKafkaConsumer(cfg config.KafkaConfig, policy retry.Policy, log logger.Logger) *KafkaConsumer {
	consumer := &KafkaConsumer{
		cfg:             cfg,
		policy:          policy,
		logger:          log,
		serviceName:     "unknown",
		redeliveryPause: constants.RedeliveryPause,
		drainTimeout:    constants.InFlightDrainTimeout,
	}

	consumer.newReader = func(topic string) messageReader {
		return kafka.NewReader(kafka.ReaderConfig{
			Brokers:     cfg.Brokers,
			GroupID:     cfg.GroupID,
			Topic:       topic,
			MinBytes:    1,
			MaxBytes:    10e6,
			StartOffset: kafka.FirstOffset,
		})
	}

	if cfg.DLQTopic != "" {
		consumer.dlqProducer = NewKafkaProducer(cfg, log)
	}

	return consumer
}

func (c *KafkaConsumer) SetServiceName(name string) {
	c.serviceName = name
}

// ObserveDeliveries must be called before Consume.
func (c *KafkaConsumer) ObserveDeliveries(observer DeliveryObserver) {
	c.observer = observer
}

// Consume runs the fetch loop until ctx is cancelled or Close is called.
// Offsets are committed one message at a time after the outcome is known.
func (c *KafkaConsumer) Consume(ctx context.Context, topic string, handler HandlerFunc) error {
	c.logger.Infow("Creating Kafka reader",
		"topic", topic,
		"brokers", c.cfg.Brokers,
		"group_id", c.cfg.GroupID,
		"service_name", c.serviceName,
	)

	reader := c.newReader(topic)
	c.mu.Lock()
	c.reader = reader
	c.mu.Unlock()

	consumeCtx := logging.WithServiceName(ctx, c.serviceName)
	c.logger.InfowCtx(consumeCtx, "Started consuming", "topic", topic)

	for {
		m, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || c.closed.Load() {
				c.logger.InfowCtx(consumeCtx, "Stopped consuming",
					"topic", topic,
					"reason", "shutdown",
				)
				return nil
			}
			c.logger.ErrorwCtx(consumeCtx, "Error fetching kafka message",
				"error", err,
				"topic", topic,
			)
			if !sleepCtx(ctx, time.Second) {
				return nil
			}
			continue
		}

		metrics.IncBrokerMessagesRead(c.serviceName, topic)

		for {
			switch c.handleMessage(ctx, m, handler, topic) {
			case outcomeCommit:
				c.commit(consumeCtx, reader, m, topic)
			case outcomeRedeliver:
				metrics.RedeliveriesTotal.WithLabelValues(c.serviceName, topic).Inc()
				if sleepCtx(ctx, c.redeliveryPause) {
					continue
				}
				return nil
			case outcomeAbort:
				c.logger.InfowCtx(consumeCtx, "Stopped consuming with message in flight, leaving it uncommitted",
					"topic", topic,
					"partition", m.Partition,
					"offset", m.Offset,
				)
				return nil
			}
			break
		}
	}
}

func (c *KafkaConsumer) handleMessage(ctx context.Context, m kafka.Message, handler HandlerFunc, topic string) outcome {
	var envelope models.EventEnvelope
	if err := json.Unmarshal(m.Value, &envelope); err != nil {
		c.logger.ErrorwCtx(ctx, "Failed to unmarshal envelope",
			"error", err,
			"topic", topic,
			"partition", m.Partition,
			"offset", m.Offset,
		)
		raw := models.UndecodableEnvelope(fmt.Sprintf("%s-%d-%d", topic, m.Partition, m.Offset), m.Value)
		return c.park(ctx, raw, fmt.Errorf("undecodable envelope: %w", err), topic, "undecodable")
	}

	msgCtx, span := tracing.StartKafkaConsumeSpan(ctx, m)
	if envelope.Metadata.TraceID != "" {
		msgCtx = logging.WithTraceID(msgCtx, envelope.Metadata.TraceID)
	}
	msgCtx = logging.WithMessageID(msgCtx, envelope.ID)
	msgCtx = logging.WithServiceName(msgCtx, c.serviceName)

	err := runHandler(msgCtx, c.policy, c.drainTimeout, envelope, handler, c.logger, func() {
		metrics.RetryAttemptsTotal.WithLabelValues(c.serviceName, topic).Inc()
	})
	span.End()
	notifyDelivery(ctx, c.observer, envelope, err)

	switch {
	case err == nil:
		return outcomeCommit
	case retry.IsFatal(err):
		c.logger.ErrorwCtx(msgCtx, "Message rejected as fatal", "error", err, "topic", topic)
		return c.park(msgCtx, envelope, err, topic, "fatal")
	case ctx.Err() != nil:
		return outcomeAbort
	default:
		c.logger.ErrorwCtx(msgCtx, "Failed to process message after retries, redelivering",
			"error", err,
			"topic", topic,
		)
		return outcomeRedeliver
	}
}

// park sends env to the DLQ. The source message may only be committed once the DLQ write succeeded.
func (c *KafkaConsumer) park(ctx context.Context, env models.EventEnvelope, reason error, topic, label string) outcome {
	if c.dlqProducer == nil || c.cfg.DLQTopic == "" {
		c.logger.WarnwCtx(ctx, "No DLQ configured, committing message to avoid blocking",
			"topic", topic,
			"reason", reason.Error(),
		)
		return outcomeCommit
	}

	dlqCtx, cancel := drainContext(ctx, c.drainTimeout)
	defer cancel()

	if err := c.dlqProducer.Publish(dlqCtx, c.cfg.DLQTopic, dlqEnvelope(env, reason, topic)); err != nil {
		c.logger.ErrorwCtx(ctx, "Failed to send message to DLQ",
			"error", err,
			"topic", topic,
		)
		if ctx.Err() != nil {
			return outcomeAbort
		}
		return outcomeRedeliver
	}

	metrics.DLQMessagesTotal.WithLabelValues(c.serviceName, topic, label).Inc()
	c.logger.InfowCtx(ctx, "Message sent to DLQ",
		"source_topic", topic,
		"dlq_topic", c.cfg.DLQTopic,
		"reason", reason.Error(),
	)
	return outcomeCommit
}

func (c *KafkaConsumer) commit(ctx context.Context, reader messageReader, m kafka.Message, topic string) {
	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.CommitTimeout)
	defer cancel()

	if err := reader.CommitMessages(commitCtx, m); err != nil {
		c.logger.ErrorwCtx(ctx, "Failed to commit message",
			"error", err,
			"topic", topic,
			"partition", m.Partition,
			"offset", m.Offset,
		)
	}
}

// Close stops the reader and the DLQ producer. A running Consume returns
// shortly after. Calling Close again is a no-op.
func (c *KafkaConsumer) Close() error {
	if c.closed.Swap(true) {
		return nil
	}

	var err error
	c.mu.Lock()
	if c.reader != nil {
		err = c.reader.Close()
		c.reader = nil
	}
	c.mu.Unlock()

	if c.dlqProducer != nil {
		if closeErr := c.dlqProducer.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
