package config

import (
	"errors"
	"fmt"
	"strings"

	"flock/internal/constants"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errs []error

	if err := validateServer(cfg.Server); err != nil {
		errs = append(errs, err)
	}

	if err := validateBroker(cfg.Broker); err != nil {
		errs = append(errs, err)
	}

	if err := validateDatabase(cfg.Database); err != nil {
		errs = append(errs, err)
	}

	if err := validateTimeline(cfg.Timeline); err != nil {
		errs = append(errs, err)
	}

	if err := validateFanout(cfg.Fanout); err != nil {
		errs = append(errs, err)
	}

	if err := validateRateLimit(cfg.RateLimit); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.ReadTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.read_timeout_seconds",
			Message: "read timeout must be positive",
		}
	}

	if cfg.WriteTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.write_timeout_seconds",
			Message: "write timeout must be positive",
		}
	}

	return nil
}

func validateBroker(cfg BrokerConfig) error {
	if cfg.Type == "" {
		return &ValidationError{
			Field:   "broker.type",
			Message: "broker type is required",
		}
	}

	var err error
	switch cfg.Type {
	case constants.BrokerTypeKafka:
		err = validateKafka(cfg.Kafka)
	case constants.BrokerTypeNATS:
		err = validateNATS(cfg.NATS)
	default:
		return &ValidationError{
			Field:   "broker.type",
			Message: fmt.Sprintf("unknown broker type: %s (supported: kafka, nats)", cfg.Type),
		}
	}
	if err != nil {
		return err
	}

	return validateRetry("broker.retry", cfg.Retry)
}

func validateKafka(cfg KafkaConfig) error {
	if len(cfg.Brokers) == 0 {
		return &ValidationError{
			Field:   "broker.kafka.brokers",
			Message: "at least one Kafka broker is required",
		}
	}

	for i, broker := range cfg.Brokers {
		if broker == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("broker.kafka.brokers[%d]", i),
				Message: "broker address cannot be empty",
			}
		}
	}

	if cfg.GroupID == "" {
		return &ValidationError{
			Field:   "broker.kafka.group_id",
			Message: "Kafka consumer group ID is required",
		}
	}

	if cfg.DLQTopic != "" && cfg.DLQTopic == cfg.Topic {
		return &ValidationError{
			Field:   "broker.kafka.dlq_topic",
			Message: "dead letter topic must differ from the source topic",
		}
	}

	return nil
}

func validateNATS(cfg NATSConfig) error {
	if cfg.URL == "" {
		return &ValidationError{
			Field:   "broker.nats.url",
			Message: "NATS URL is required",
		}
	}

	if !strings.HasPrefix(cfg.URL, "nats://") && !strings.HasPrefix(cfg.URL, "tls://") {
		return &ValidationError{
			Field:   "broker.nats.url",
			Message: "NATS URL must start with nats:// or tls://",
		}
	}

	if cfg.Stream == "" {
		return &ValidationError{
			Field:   "broker.nats.stream",
			Message: "JetStream stream name is required",
		}
	}

	if cfg.Durable == "" {
		return &ValidationError{
			Field:   "broker.nats.durable",
			Message: "durable consumer name is required",
		}
	}

	if cfg.AckWaitSeconds < 0 || cfg.MaxAckPending < 0 {
		return &ValidationError{
			Field:   "broker.nats",
			Message: "ack_wait_seconds and max_ack_pending must be non-negative",
		}
	}

	return nil
}

func validateRetry(prefix string, cfg RetryConfig) error {
	if cfg.MaxAttempts < 0 {
		return &ValidationError{
			Field:   prefix + ".max_attempts",
			Message: "max_attempts must be non-negative",
		}
	}

	if cfg.InitialInterval < 0 {
		return &ValidationError{
			Field:   prefix + ".initial_interval",
			Message: "initial_interval must be non-negative",
		}
	}

	if cfg.MaxInterval < 0 {
		return &ValidationError{
			Field:   prefix + ".max_interval",
			Message: "max_interval must be non-negative",
		}
	}

	if cfg.MaxInterval > 0 && cfg.InitialInterval > 0 && cfg.MaxInterval < cfg.InitialInterval {
		return &ValidationError{
			Field:   prefix + ".max_interval",
			Message: "max_interval must be greater than or equal to initial_interval",
		}
	}

	if cfg.Multiplier < 0 {
		return &ValidationError{
			Field:   prefix + ".multiplier",
			Message: "multiplier must be non-negative",
		}
	}

	return nil
}

func validateDatabase(cfg DatabaseConfig) error {
	if cfg.Postgres.Host != "" || cfg.Postgres.Port > 0 {
		if err := validatePostgres(cfg.Postgres); err != nil {
			return err
		}
	}

	if cfg.Redis.Host != "" || cfg.Redis.Port > 0 {
		if err := validateRedis(cfg.Redis); err != nil {
			return err
		}
	}

	if cfg.MongoDB.URI != "" {
		if err := validateMongoDB(cfg.MongoDB); err != nil {
			return err
		}
	}

	return nil
}

func validatePostgres(cfg PostgresConfig) error {
	if cfg.Host == "" {
		return &ValidationError{
			Field:   "database.postgres.host",
			Message: "PostgreSQL host is required",
		}
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "database.postgres.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.User == "" {
		return &ValidationError{
			Field:   "database.postgres.user",
			Message: "PostgreSQL user is required",
		}
	}

	if cfg.DBName == "" {
		return &ValidationError{
			Field:   "database.postgres.dbname",
			Message: "PostgreSQL database name is required",
		}
	}

	validSSLModes := map[string]bool{
		"disable": true, "allow": true, "prefer": true,
		"require": true, "verify-ca": true, "verify-full": true,
	}
	if cfg.SSLMode != "" && !validSSLModes[strings.ToLower(cfg.SSLMode)] {
		return &ValidationError{
			Field:   "database.postgres.sslmode",
			Message: fmt.Sprintf("invalid SSL mode: %s (valid: disable, allow, prefer, require, verify-ca, verify-full)", cfg.SSLMode),
		}
	}

	return nil
}

func validateRedis(cfg RedisConfig) error {
	if cfg.Host == "" {
		return &ValidationError{
			Field:   "database.redis.host",
			Message: "Redis host is required",
		}
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "database.redis.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	return nil
}

func validateMongoDB(cfg MongoDBConfig) error {
	if !strings.HasPrefix(cfg.URI, "mongodb://") && !strings.HasPrefix(cfg.URI, "mongodb+srv://") {
		return &ValidationError{
			Field:   "database.mongodb.uri",
			Message: "MongoDB URI must start with mongodb:// or mongodb+srv://",
		}
	}

	return nil
}

func validateTimeline(cfg TimelineConfig) error {
	switch cfg.Invalidation {
	case "", constants.InvalidationPattern, constants.InvalidationNone:
	default:
		return &ValidationError{
			Field:   "timeline.invalidation",
			Message: fmt.Sprintf("invalid invalidation mode: %s (valid: pattern, none)", cfg.Invalidation),
		}
	}

	if cfg.CacheTTLSeconds < 0 {
		return &ValidationError{
			Field:   "timeline.cache_ttl_seconds",
			Message: "TTL must be non-negative",
		}
	}

	if cfg.DefaultPageSize < 0 || cfg.MaxPageSize < 0 {
		return &ValidationError{
			Field:   "timeline.default_page_size",
			Message: "page sizes must be non-negative",
		}
	}

	if cfg.MaxPageSize > 0 && cfg.DefaultPageSize > cfg.MaxPageSize {
		return &ValidationError{
			Field:   "timeline.default_page_size",
			Message: "default_page_size cannot exceed max_page_size",
		}
	}

	if cfg.StoreRetryAttempts < 0 {
		return &ValidationError{
			Field:   "timeline.store_retry_attempts",
			Message: "store_retry_attempts must be non-negative",
		}
	}

	return nil
}

func validateFanout(cfg FanoutConfig) error {
	if cfg.UnhealthyAfterFailures < 0 {
		return &ValidationError{
			Field:   "fanout.unhealthy_after_failures",
			Message: "must be non-negative",
		}
	}

	if cfg.InvalidationConcurrency < 0 {
		return &ValidationError{
			Field:   "fanout.invalidation_concurrency",
			Message: "must be non-negative",
		}
	}

	return nil
}

func validateRateLimit(cfg RateLimitConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.RPS <= 0 || cfg.Burst <= 0 {
		return &ValidationError{
			Field:   "rate_limit",
			Message: "rps and burst must be positive when rate limiting is enabled",
		}
	}

	return nil
}
