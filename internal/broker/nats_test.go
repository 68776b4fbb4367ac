package broker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flock/internal/config"
	"flock/internal/logger"
	"flock/pkg/models"
	"flock/pkg/retry"
)

func TestSubjectFor(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"uuid key", "4f1c2a9e-0000-4000-8000-000000000001", "message-created.4f1c2a9e-0000-4000-8000-000000000001"},
		{"dots", "a.b", "message-created.a_b"},
		{"wildcards", "a*b>c", "message-created.a_b_c"},
		{"spaces", "a b", "message-created.a_b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, subjectFor("message-created", tt.key))
		})
	}
}

func TestNATSClient_StreamNames(t *testing.T) {
	c := &natsClient{cfg: config.NATSConfig{}}
	assert.Equal(t, "MESSAGES", c.streamName("message-created"))
	assert.Equal(t, "message-created-dlq", c.dlqSubject())
	assert.Equal(t, "MESSAGES_DLQ", c.streamName("message-created-dlq"))

	c = &natsClient{cfg: config.NATSConfig{Stream: "FEED", DLQSubject: "parked"}}
	assert.Equal(t, "FEED", c.streamName("message-created"))
	assert.Equal(t, "FEED_DLQ", c.streamName("parked"))
}

func TestFactory_UnknownBrokerType(t *testing.T) {
	_, err := NewProducer(context.Background(), config.BrokerConfig{Type: "rabbitmq"}, logger.NopLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown broker type")

	_, err = NewConsumer(context.Background(), config.BrokerConfig{Type: "rabbitmq"}, logger.NopLogger())
	require.Error(t, err)
}

func TestFactory_Kafka(t *testing.T) {
	cfg := config.BrokerConfig{Type: "kafka", Kafka: config.KafkaConfig{Brokers: []string{"localhost:9092"}}}

	producer, err := NewProducer(context.Background(), cfg, logger.NopLogger())
	require.NoError(t, err)
	assert.IsType(t, &KafkaProducer{}, producer)

	consumer, err := NewConsumer(context.Background(), cfg, logger.NopLogger())
	require.NoError(t, err)
	assert.IsType(t, &KafkaConsumer{}, consumer)
	assert.NoError(t, consumer.Close())
	assert.NoError(t, consumer.Close(), "closing twice is a no-op")
}

func TestDLQEnvelope(t *testing.T) {
	env := models.EventEnvelope{ID: "evt-1", Type: models.EventTypeMessageCreated}

	parked := dlqEnvelope(env, errors.New("bad payload"), "message-created")

	require.NotNil(t, parked.Metadata.DLQ)
	assert.Equal(t, "bad payload", parked.Metadata.DLQ.Reason)
	assert.Equal(t, "message-created", parked.Metadata.DLQ.SourceTopic)
	assert.False(t, parked.Metadata.DLQ.FailedAt.IsZero())
	assert.Equal(t, "evt-1", parked.ID)
	assert.Nil(t, env.Metadata.DLQ, "the source envelope is left untouched")
}

// fakeMsg records how a delivery was settled.
type fakeMsg struct {
	jetstream.Msg

	mu       sync.Mutex
	data     []byte
	acks     int
	naks     []time.Duration
	terms    int
	sequence uint64
}

func (m *fakeMsg) Data() []byte         { return m.data }
func (m *fakeMsg) Subject() string      { return "message-created.author" }
func (m *fakeMsg) Headers() nats.Header { return nil }

func (m *fakeMsg) Metadata() (*jetstream.MsgMetadata, error) {
	return &jetstream.MsgMetadata{
		Stream:   "MESSAGES",
		Sequence: jetstream.SequencePair{Stream: m.sequence, Consumer: m.sequence},
	}, nil
}

func (m *fakeMsg) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acks++
	return nil
}

func (m *fakeMsg) Nak() error { return m.NakWithDelay(0) }

func (m *fakeMsg) NakWithDelay(delay time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.naks = append(m.naks, delay)
	return nil
}

func (m *fakeMsg) Term() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.terms++
	return nil
}

func (m *fakeMsg) InProgress() error { return nil }

func (m *fakeMsg) settled() (acks, naks, terms int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acks, len(m.naks), m.terms
}

func newTestNATSConsumer(dlq Producer) *NATSConsumer {
	return &NATSConsumer{
		client:          &natsClient{cfg: config.NATSConfig{}},
		policy:          testPolicy(),
		logger:          logger.NopLogger(),
		serviceName:     "fanout-service",
		dlqProducer:     dlq,
		redeliveryPause: 5 * time.Millisecond,
		drainTimeout:    time.Second,
		closed:          make(chan struct{}),
	}
}

func natsMessage(t *testing.T) *fakeMsg {
	t.Helper()
	return &fakeMsg{data: envelopeMessage(t, 0).Value, sequence: 42}
}

func TestNATSConsumer_AcksAfterSuccess(t *testing.T) {
	c := newTestNATSConsumer(&fakeProducer{})
	msg := natsMessage(t)

	var handled int
	c.handleMessage(context.Background(), msg, func(context.Context, models.EventEnvelope) error {
		handled++
		return nil
	}, "message-created")

	acks, naks, terms := msg.settled()
	assert.Equal(t, 1, handled)
	assert.Equal(t, 1, acks)
	assert.Zero(t, naks)
	assert.Zero(t, terms)
}

func TestNATSConsumer_TransientFailureNaksWithDelay(t *testing.T) {
	c := newTestNATSConsumer(&fakeProducer{})
	msg := natsMessage(t)

	var calls int
	c.handleMessage(context.Background(), msg, func(context.Context, models.EventEnvelope) error {
		calls++
		return errors.New("mongo unavailable")
	}, "message-created")

	assert.Equal(t, testPolicy().MaxAttempts, calls)
	acks, _, terms := msg.settled()
	assert.Zero(t, acks)
	assert.Zero(t, terms)
	assert.Equal(t, []time.Duration{5 * time.Millisecond}, msg.naks, "redelivery waits the configured pause")
}

func TestNATSConsumer_FatalGoesToDLQThenTerminates(t *testing.T) {
	dlq := &fakeProducer{}
	c := newTestNATSConsumer(dlq)
	msg := natsMessage(t)

	var calls int
	c.handleMessage(context.Background(), msg, func(context.Context, models.EventEnvelope) error {
		calls++
		return retry.NewFatalError(errors.New("bad payload"))
	}, "message-created")

	assert.Equal(t, 1, calls, "fatal errors are not retried")
	require.Len(t, dlq.published, 1)
	require.NotNil(t, dlq.published[0].Metadata.DLQ)
	assert.Equal(t, "message-created", dlq.published[0].Metadata.DLQ.SourceTopic)

	acks, naks, terms := msg.settled()
	assert.Equal(t, 1, terms)
	assert.Zero(t, acks)
	assert.Zero(t, naks)
}

func TestNATSConsumer_UndecodableGoesToDLQ(t *testing.T) {
	dlq := &fakeProducer{}
	c := newTestNATSConsumer(dlq)
	msg := &fakeMsg{data: []byte("{not json"), sequence: 42}

	c.handleMessage(context.Background(), msg, func(context.Context, models.EventEnvelope) error {
		t.Fatal("handler must not see undecodable messages")
		return nil
	}, "message-created")

	require.Len(t, dlq.published, 1)
	assert.Equal(t, models.EventTypeUndecodable, dlq.published[0].Type)
	assert.Equal(t, "MESSAGES-42", dlq.published[0].ID)
	_, _, terms := msg.settled()
	assert.Equal(t, 1, terms)
}

func TestNATSConsumer_DLQFailureNaks(t *testing.T) {
	c := newTestNATSConsumer(&fakeProducer{err: errors.New("dlq down")})
	msg := natsMessage(t)

	c.handleMessage(context.Background(), msg, func(context.Context, models.EventEnvelope) error {
		return retry.NewFatalError(errors.New("bad payload"))
	}, "message-created")

	acks, naks, terms := msg.settled()
	assert.Zero(t, acks)
	assert.Zero(t, terms, "a message that never reached the DLQ must stay redeliverable")
	assert.Equal(t, 1, naks)
}

func TestNATSConsumer_ShutdownLeavesMessageUnacked(t *testing.T) {
	c := newTestNATSConsumer(&fakeProducer{})
	msg := natsMessage(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c.handleMessage(ctx, msg, func(context.Context, models.EventEnvelope) error {
		cancel()
		return errors.New("store down")
	}, "message-created")

	acks, naks, terms := msg.settled()
	assert.Zero(t, acks)
	assert.Zero(t, naks)
	assert.Zero(t, terms)
}

func TestNATSConsumer_ObserverSkipsShutdown(t *testing.T) {
	c := newTestNATSConsumer(&fakeProducer{})
	var outcomes []error
	c.ObserveDeliveries(func(_ models.EventEnvelope, err error) {
		outcomes = append(outcomes, err)
	})

	c.handleMessage(context.Background(), natsMessage(t), func(context.Context, models.EventEnvelope) error {
		return errors.New("mongo unavailable")
	}, "message-created")
	require.Len(t, outcomes, 1)
	assert.Error(t, outcomes[0])

	ctx, cancel := context.WithCancel(context.Background())
	c.handleMessage(ctx, natsMessage(t), func(context.Context, models.EventEnvelope) error {
		cancel()
		return errors.New("store down")
	}, "message-created")
	assert.Len(t, outcomes, 1, "failures caused by shutdown are not reported")
}
