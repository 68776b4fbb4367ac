package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"flock/internal/config"
	"flock/internal/constants"
	"flock/internal/logger"
	"flock/pkg/logging"
	"flock/pkg/metrics"
	"flock/pkg/models"
	"flock/pkg/retry"
	"flock/pkg/tracing"
)

const (
	defaultAckWait        = 30 * time.Second
	defaultStreamMaxAge   = 7 * 24 * time.Hour
	streamSetupTimeout    = 10 * time.Second
	dlqStreamSuffix       = "_DLQ"
	defaultNATSDLQSubject = "message-created-dlq"
)

type natsClient struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	cfg    config.NATSConfig
	logger logger.Logger

	mu      sync.Mutex
	streams map[string]bool
}

func connectNATS(cfg config.NATSConfig, log logger.Logger) (*natsClient, error) {
	url := cfg.URL
	if url == "" {
		url = nats.DefaultURL
	}

	nc, err := nats.Connect(url,
		nats.Name("flock"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warnw("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(conn *nats.Conn) {
			log.Infow("NATS reconnected", "url", conn.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create jetstream context: %w", err)
	}

	return &natsClient{
		nc:      nc,
		js:      js,
		cfg:     cfg,
		logger:  log,
		streams: make(map[string]bool),
	}, nil
}

func (c *natsClient) streamName(prefix string) string {
	base := c.cfg.Stream
	if base == "" {
		base = constants.DefaultNATSStream
	}
	if prefix == c.dlqSubject() {
		return base + dlqStreamSuffix
	}
	return base
}

func (c *natsClient) dlqSubject() string {
	if c.cfg.DLQSubject != "" {
		return c.cfg.DLQSubject
	}
	return defaultNATSDLQSubject
}

// ensureStream creates or updates the stream capturing prefix.> once per process.
func (c *natsClient) ensureStream(ctx context.Context, prefix string) (string, error) {
	name := c.streamName(prefix)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.streams[prefix] {
		return name, nil
	}

	maxAge := defaultStreamMaxAge
	if c.cfg.StreamMaxAgeHours > 0 {
		maxAge = time.Duration(c.cfg.StreamMaxAgeHours) * time.Hour
	}

	ctx, cancel := context.WithTimeout(ctx, streamSetupTimeout)
	defer cancel()

	_, err := c.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        name,
		Description: "flock events for " + prefix,
		Subjects:    []string{prefix + ".>"},
		MaxAge:      maxAge,
		Storage:     jetstream.FileStorage,
		Duplicates:  2 * time.Minute,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create stream '%s': %w", name, err)
	}

	c.streams[prefix] = true
	c.logger.Infow("JetStream stream ready", "stream", name, "subjects", prefix+".>")
	return name, nil
}

func (c *natsClient) publish(ctx context.Context, prefix string, env models.EventEnvelope) error {
	if _, err := c.ensureStream(ctx, prefix); err != nil {
		return err
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	key := env.Key
	if key == "" {
		key = env.ID
	}

	ctx, span := tracing.StartPublishSpan(ctx, "nats", prefix, env.ID)
	defer span.End()

	msg := &nats.Msg{
		Subject: subjectFor(prefix, key),
		Data:    body,
		Header:  tracing.InjectNATSHeaders(ctx, nats.Header{eventTypeHeader: []string{env.Type}}),
	}

	start := time.Now()
	_, err = c.js.PublishMsg(ctx, msg, jetstream.WithMsgID(env.ID))
	metrics.ObserveBrokerWriteDuration(prefix, time.Since(start))
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to publish to subject '%s': %w", msg.Subject, err)
	}
	return nil
}

// subjectFor keeps subject tokens free of wildcard and separator characters.
func subjectFor(prefix, key string) string {
	key = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_").Replace(key)
	return prefix + "." + key
}

type NATSProducer struct {
	client *natsClient
}

func NewNATSProducer(_ context.Context, cfg config.NATSConfig, log logger.Logger) (*NATSProducer, error) {
	client, err := connectNATS(cfg, log)
	if err != nil {
		return nil, err
	}
	return &NATSProducer{client: client}, nil
}

// Publish writes env to topic.<key>. The envelope id is the JetStream dedup id.
func (p *NATSProducer) Publish(ctx context.Context, topic string, env models.EventEnvelope) error {
	return p.client.publish(ctx, topic, env)
}

func (p *NATSProducer) Close() error {
	return p.client.nc.Drain()
}

// Conn exposes the connection for health checks.
func (p *NATSProducer) Conn() *nats.Conn {
	return p.client.nc
}

type NATSConsumer struct {
	client      *natsClient
	policy      retry.Policy
	logger      logger.Logger
	serviceName string
	observer    DeliveryObserver

	// dlqProducer shares the consumer's connection and is not closed separately.
	dlqProducer     Producer
	redeliveryPause time.Duration
	drainTimeout    time.Duration

	mu         sync.Mutex
	consumeCtx jetstream.ConsumeContext
	closed     chan struct{}
	closeOnce  sync.Once
}

func NewNATSConsumer(_ context.Context, cfg config.NATSConfig, policy retry.Policy, log logger.Logger) (*NATSConsumer, error) {
	client, err := connectNATS(cfg, log)
	if err != nil {
		return nil, err
	}
	return &NATSConsumer{
		client:          client,
		policy:          policy,
		logger:          log,
		serviceName:     "unknown",
		dlqProducer:     &NATSProducer{client: client},
		redeliveryPause: constants.RedeliveryPause,
		drainTimeout:    constants.InFlightDrainTimeout,
		closed:          make(chan struct{}),
	}, nil
}

func (c *NATSConsumer) SetServiceName(name string) {
	c.serviceName = name
}

// ObserveDeliveries must be called before Consume.
func (c *NATSConsumer) ObserveDeliveries(observer DeliveryObserver) {
	c.observer = observer
}

func (c *NATSConsumer) Conn() *nats.Conn {
	return c.client.nc
}

// Consume attaches a durable explicit-ack consumer to topic.> and blocks
// until ctx is cancelled or Close is called. In-flight handlers are given
// a drain window before Consume returns.
func (c *NATSConsumer) Consume(ctx context.Context, topic string, handler HandlerFunc) error {
	stream, err := c.client.ensureStream(ctx, topic)
	if err != nil {
		return err
	}

	cfg := c.client.cfg
	durable := cfg.Durable
	if durable == "" {
		durable = constants.DefaultFanoutGroupID
	}
	ackWait := defaultAckWait
	if cfg.AckWaitSeconds > 0 {
		ackWait = time.Duration(cfg.AckWaitSeconds) * time.Second
	}
	maxAckPending := cfg.MaxAckPending
	if maxAckPending <= 0 {
		maxAckPending = 1
	}

	cons, err := c.client.js.CreateOrUpdateConsumer(ctx, stream, jetstream.ConsumerConfig{
		Durable:       durable,
		FilterSubject: topic + ".>",
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       ackWait,
		MaxAckPending: maxAckPending,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer '%s': %w", durable, err)
	}

	consumeLogCtx := logging.WithServiceName(ctx, c.serviceName)
	c.logger.InfowCtx(consumeLogCtx, "Started consuming",
		"stream", stream,
		"durable", durable,
		"subject", topic+".>",
	)

	var inFlight sync.WaitGroup
	consumeCtx, err := cons.Consume(func(msg jetstream.Msg) {
		inFlight.Add(1)
		defer inFlight.Done()
		c.handleMessage(ctx, msg, handler, topic)
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming from '%s': %w", topic, err)
	}

	c.mu.Lock()
	c.consumeCtx = consumeCtx
	c.mu.Unlock()

	select {
	case <-ctx.Done():
	case <-c.closed:
	}

	consumeCtx.Stop()
	inFlight.Wait()
	c.logger.InfowCtx(consumeLogCtx, "Stopped consuming", "subject", topic+".>")
	return nil
}

func (c *NATSConsumer) handleMessage(ctx context.Context, msg jetstream.Msg, handler HandlerFunc, topic string) {
	metrics.IncBrokerMessagesRead(c.serviceName, topic)

	var envelope models.EventEnvelope
	if err := json.Unmarshal(msg.Data(), &envelope); err != nil {
		c.logger.ErrorwCtx(ctx, "Failed to unmarshal envelope", "error", err, "subject", msg.Subject())
		id := msg.Subject()
		if meta, metaErr := msg.Metadata(); metaErr == nil {
			id = fmt.Sprintf("%s-%d", meta.Stream, meta.Sequence.Stream)
		}
		c.terminate(ctx, msg, models.UndecodableEnvelope(id, msg.Data()), fmt.Errorf("undecodable envelope: %w", err), topic, "undecodable")
		return
	}

	msgCtx, span := tracing.StartNATSConsumeSpan(ctx, msg.Subject(), msg.Headers())
	defer span.End()
	if envelope.Metadata.TraceID != "" {
		msgCtx = logging.WithTraceID(msgCtx, envelope.Metadata.TraceID)
	}
	msgCtx = logging.WithMessageID(msgCtx, envelope.ID)
	msgCtx = logging.WithServiceName(msgCtx, c.serviceName)

	err := runHandler(msgCtx, c.policy, c.drainTimeout, envelope, handler, c.logger, func() {
		metrics.RetryAttemptsTotal.WithLabelValues(c.serviceName, topic).Inc()
	})
	notifyDelivery(ctx, c.observer, envelope, err)

	switch {
	case err == nil:
		if ackErr := msg.Ack(); ackErr != nil {
			c.logger.ErrorwCtx(msgCtx, "Failed to ack message", "error", ackErr)
		}
	case retry.IsFatal(err):
		c.terminate(msgCtx, msg, envelope, err, topic, "fatal")
	case ctx.Err() != nil:
		// left unacknowledged, redelivered after AckWait
	default:
		metrics.RedeliveriesTotal.WithLabelValues(c.serviceName, topic).Inc()
		c.logger.ErrorwCtx(msgCtx, "Failed to process message after retries, redelivering",
			"error", err,
			"subject", msg.Subject(),
		)
		if nakErr := msg.NakWithDelay(c.redeliveryPause); nakErr != nil {
			c.logger.ErrorwCtx(msgCtx, "Failed to nak message", "error", nakErr)
		}
	}
}

// terminate parks env on the DLQ subject and stops redelivery of msg.
func (c *NATSConsumer) terminate(ctx context.Context, msg jetstream.Msg, env models.EventEnvelope, reason error, topic, label string) {
	dlqCtx, cancel := drainContext(ctx, c.drainTimeout)
	defer cancel()

	if err := c.dlqProducer.Publish(dlqCtx, c.client.dlqSubject(), dlqEnvelope(env, reason, topic)); err != nil {
		c.logger.ErrorwCtx(ctx, "Failed to send message to DLQ", "error", err)
		if nakErr := msg.NakWithDelay(c.redeliveryPause); nakErr != nil {
			c.logger.ErrorwCtx(ctx, "Failed to nak message", "error", nakErr)
		}
		return
	}

	metrics.DLQMessagesTotal.WithLabelValues(c.serviceName, topic, label).Inc()
	c.logger.InfowCtx(ctx, "Message sent to DLQ",
		"source_topic", topic,
		"dlq_subject", c.client.dlqSubject(),
		"reason", reason.Error(),
	)
	if err := msg.Term(); err != nil {
		c.logger.ErrorwCtx(ctx, "Failed to terminate message", "error", err)
	}
}

func (c *NATSConsumer) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })

	c.mu.Lock()
	if c.consumeCtx != nil {
		c.consumeCtx.Stop()
	}
	c.mu.Unlock()

	if err := c.client.nc.Drain(); err != nil &&
		!errors.Is(err, nats.ErrConnectionClosed) && !errors.Is(err, nats.ErrConnectionDraining) {
		return err
	}
	return nil
}
