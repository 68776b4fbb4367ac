package bootstrap_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"flock/internal/config"
	"flock/internal/logger"
	"flock/internal/mocks"
	"flock/pkg/bootstrap"
)

func TestBase_ShutdownOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	producer := mocks.NewMockProducer(ctrl)
	consumer := mocks.NewMockConsumer(ctrl)

	var order []string
	producer.EXPECT().Close().DoAndReturn(func() error {
		order = append(order, "producer")
		return nil
	})
	consumer.EXPECT().Close().DoAndReturn(func() error {
		order = append(order, "consumer")
		return nil
	})

	base := bootstrap.NewBase(&config.Config{}, logger.NopLogger(), "fanout-service")
	base.Producer = producer
	base.Consumer = consumer

	err := base.Shutdown(context.Background(), func(context.Context) []error {
		order = append(order, "worker")
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"worker", "producer", "consumer"}, order)
}

func TestBase_ShutdownJoinsErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	consumer := mocks.NewMockConsumer(ctrl)
	closeErr := errors.New("connection reset")
	consumer.EXPECT().Close().Return(closeErr)

	base := bootstrap.NewBase(&config.Config{}, logger.NopLogger(), "fanout-service")
	base.Consumer = consumer

	stopErr := errors.New("worker did not drain")
	err := base.Shutdown(context.Background(), func(context.Context) []error {
		return []error{stopErr}
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, stopErr)
	assert.ErrorIs(t, err, closeErr)
}

func TestBase_InitTracingDisabled(t *testing.T) {
	base := bootstrap.NewBase(&config.Config{}, logger.NopLogger(), "api-service")
	require.NoError(t, base.InitTracing())
	assert.NoError(t, base.Shutdown(context.Background(), nil))
}

func TestBase_InitProducerUnknownBroker(t *testing.T) {
	base := bootstrap.NewBase(&config.Config{Broker: config.BrokerConfig{Type: "carrier-pigeon"}}, logger.NopLogger(), "api-service")
	err := base.InitProducer(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown broker type")
}
