// Package bootstrap holds the process wiring both services share: tracing,
// broker clients, the health registry and the shutdown order.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"

	"flock/internal/broker"
	"flock/internal/config"
	"flock/internal/logger"
	"flock/pkg/health"
	"flock/pkg/tracing"
)

type Base struct {
	Config      *config.Config
	Logger      logger.Logger
	ServiceName string
	Health      *health.CheckerRegistry
	Producer    broker.Producer
	Consumer    broker.Consumer

	tracer *tracing.TracerProvider
}

// NewBase tags every log line of log with serviceName unless the context
// carries its own.
func NewBase(cfg *config.Config, log logger.Logger, serviceName string) *Base {
	if sugared, ok := log.(*logger.SugaredLogger); ok {
		sugared.SetServiceName(serviceName)
	}
	return &Base{
		Config:      cfg,
		Logger:      log,
		ServiceName: serviceName,
		Health:      health.NewCheckerRegistry(),
	}
}

func (b *Base) InitTracing() error {
	tp, err := tracing.Init(b.Config.Tracing, b.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	b.tracer = tp
	return nil
}

func (b *Base) InitProducer(ctx context.Context) error {
	producer, err := broker.NewProducer(ctx, b.Config.Broker, b.Logger)
	if err != nil {
		return fmt.Errorf("failed to create producer: %w", err)
	}
	b.Producer = producer
	b.registerBrokerHealth(producer)
	return nil
}

func (b *Base) InitConsumer(ctx context.Context) error {
	consumer, err := broker.NewConsumer(ctx, b.Config.Broker, b.Logger)
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}
	consumer.SetServiceName(b.ServiceName)
	b.Consumer = consumer
	b.registerBrokerHealth(consumer)
	return nil
}

// registerBrokerHealth adds a connection check for clients that hold a
// long-lived connection. Kafka dials per request and has none.
func (b *Base) registerBrokerHealth(client any) {
	if c, ok := client.(interface{ Conn() *nats.Conn }); ok {
		b.Health.Register(health.NewNATSChecker(c.Conn()))
	}
}

func (b *Base) ShutdownBroker() []error {
	var errs []error

	if b.Producer != nil {
		if err := b.Producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("producer close error: %w", err))
		}
	}

	if b.Consumer != nil {
		if err := b.Consumer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("consumer close error: %w", err))
		}
	}

	return errs
}

// Shutdown runs stop, then closes the broker clients, then flushes spans.
// stop must halt everything that still publishes or consumes.
func (b *Base) Shutdown(ctx context.Context, stop func(ctx context.Context) []error) error {
	b.Logger.InfowCtx(ctx, "Shutting down", "service", b.ServiceName)

	var errs []error
	if stop != nil {
		errs = append(errs, stop(ctx)...)
	}
	errs = append(errs, b.ShutdownBroker()...)

	if err := b.tracer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	b.Logger.InfowCtx(ctx, "Shutdown complete", "service", b.ServiceName)
	return nil
}
