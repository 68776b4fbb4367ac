package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"flock/internal/constants"
)

func LoadConfig(configFile string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	viper.Reset()

	viper.SetConfigType("yaml")
	viper.SetConfigFile(configFile)

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv reads a .env file from the working directory when present.
// Variables already set in the environment win.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout_seconds", 15)
	viper.SetDefault("server.write_timeout_seconds", 15)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	viper.SetDefault("broker.type", constants.BrokerTypeKafka)
	viper.SetDefault("broker.kafka.group_id", constants.DefaultFanoutGroupID)
	viper.SetDefault("broker.kafka.topic", constants.DefaultMessageCreatedTopic)
	viper.SetDefault("broker.nats.stream", constants.DefaultNATSStream)
	viper.SetDefault("broker.nats.subject", constants.DefaultMessageCreatedTopic)
	viper.SetDefault("broker.nats.durable", constants.DefaultFanoutGroupID)
	viper.SetDefault("broker.nats.ack_wait_seconds", 30)
	viper.SetDefault("broker.nats.max_ack_pending", 1)
	viper.SetDefault("broker.retry.multiplier", 2.0)

	viper.SetDefault("timeline.cache_ttl_seconds", int(constants.DefaultTimelineCacheTTL.Seconds()))
	viper.SetDefault("timeline.invalidation", constants.InvalidationPattern)
	viper.SetDefault("timeline.default_page_size", constants.DefaultTimelinePageSize)
	viper.SetDefault("timeline.max_page_size", constants.DefaultTimelineMaxPageSize)
	viper.SetDefault("timeline.store_retry_attempts", 1)

	viper.SetDefault("fanout.unhealthy_after_failures", constants.DefaultUnhealthyAfterFailures)
	viper.SetDefault("fanout.invalidation_concurrency", constants.DefaultInvalidationConcurrency)
}

func bindEnvVariables() {
	viper.BindEnv("broker.type", "BROKER_TYPE")
	viper.BindEnv("broker.kafka.brokers", "BROKER_KAFKA_BROKERS")
	viper.BindEnv("broker.kafka.group_id", "BROKER_KAFKA_GROUP_ID")
	viper.BindEnv("broker.kafka.topic", "BROKER_KAFKA_TOPIC")
	viper.BindEnv("broker.kafka.dlq_topic", "BROKER_KAFKA_DLQ_TOPIC")
	viper.BindEnv("broker.nats.url", "BROKER_NATS_URL")
	viper.BindEnv("broker.nats.stream", "BROKER_NATS_STREAM")
	viper.BindEnv("broker.nats.durable", "BROKER_NATS_DURABLE")
	viper.BindEnv("broker.nats.dlq_subject", "BROKER_NATS_DLQ_SUBJECT")

	viper.BindEnv("database.postgres.host", "DATABASE_POSTGRES_HOST")
	viper.BindEnv("database.postgres.port", "DATABASE_POSTGRES_PORT")
	viper.BindEnv("database.postgres.user", "DATABASE_POSTGRES_USER")
	viper.BindEnv("database.postgres.password", "DATABASE_POSTGRES_PASSWORD")
	viper.BindEnv("database.postgres.dbname", "DATABASE_POSTGRES_DBNAME")
	viper.BindEnv("database.postgres.sslmode", "DATABASE_POSTGRES_SSLMODE")

	viper.BindEnv("database.redis.host", "DATABASE_REDIS_HOST")
	viper.BindEnv("database.redis.port", "DATABASE_REDIS_PORT")
	viper.BindEnv("database.redis.password", "DATABASE_REDIS_PASSWORD")
	viper.BindEnv("database.redis.db", "DATABASE_REDIS_DB")

	viper.BindEnv("database.mongodb.uri", "DATABASE_MONGODB_URI")
	viper.BindEnv("database.mongodb.database", "DATABASE_MONGODB_DATABASE")
	viper.BindEnv("database.run_migrations", "DATABASE_RUN_MIGRATIONS")

	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.read_timeout_seconds", "SERVER_READ_TIMEOUT_SECONDS")
	viper.BindEnv("server.write_timeout_seconds", "SERVER_WRITE_TIMEOUT_SECONDS")

	viper.BindEnv("logging.level", "LOGGING_LEVEL")
	viper.BindEnv("logging.format", "LOGGING_FORMAT")

	viper.BindEnv("timeline.cache_ttl_seconds", "TIMELINE_CACHE_TTL_SECONDS")
	viper.BindEnv("timeline.invalidation", "TIMELINE_INVALIDATION")

	viper.BindEnv("tracing.otlp.endpoint", "TRACING_OTLP_ENDPOINT")
	viper.BindEnv("tracing.otlp.insecure", "TRACING_OTLP_INSECURE")
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.service_name", "TRACING_SERVICE_NAME")
}

func applyEnvOverrides(cfg *Config) error {
	if brokersEnv := viper.GetString("BROKER_KAFKA_BROKERS"); brokersEnv != "" {
		brokers := strings.Split(brokersEnv, ",")
		for i := range brokers {
			brokers[i] = strings.TrimSpace(brokers[i])
		}
		if len(brokers) > 0 && brokers[0] != "" {
			cfg.Broker.Kafka.Brokers = brokers
		}
	}

	if otlpEndpoint := viper.GetString("TRACING_OTLP_ENDPOINT"); otlpEndpoint != "" {
		cfg.Tracing.OTLP.Endpoint = otlpEndpoint
	}

	cfg.Timeline.Invalidation = strings.ToLower(strings.TrimSpace(cfg.Timeline.Invalidation))

	return nil
}
