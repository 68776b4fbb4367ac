package broker

import (
	"context"
	"fmt"

	"flock/internal/config"
	"flock/internal/constants"
	"flock/internal/logger"
	"flock/pkg/retry"
)

func NewProducer(ctx context.Context, cfg config.BrokerConfig, log logger.Logger) (Producer, error) {
	switch cfg.Type {
	case constants.BrokerTypeKafka:
		return NewKafkaProducer(cfg.Kafka, log), nil
	case constants.BrokerTypeNATS:
		return NewNATSProducer(ctx, cfg.NATS, log)
	default:
		return nil, fmt.Errorf("unknown broker type: %s", cfg.Type)
	}
}

func NewConsumer(ctx context.Context, cfg config.BrokerConfig, log logger.Logger) (Consumer, error) {
	policy := cfg.Retry.Policy(retry.DefaultPolicy())
	switch cfg.Type {
	case constants.BrokerTypeKafka:
		return NewKafkaConsumer(cfg.Kafka, policy, log), nil
	case constants.BrokerTypeNATS:
		return NewNATSConsumer(ctx, cfg.NATS, policy, log)
	default:
		return nil, fmt.Errorf("unknown broker type: %s", cfg.Type)
	}
}
