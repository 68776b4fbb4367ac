package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flock/internal/constants"
	"flock/pkg/retry"
)

const baseYAML = `
server:
  port: 8080
  read_timeout_seconds: 10
  write_timeout_seconds: 10
database:
  postgres:
    host: localhost
    port: 5432
    user: flock
    password: flock
    dbname: flock
    sslmode: disable
  redis:
    host: localhost
    port: 6379
  mongodb:
    uri: mongodb://localhost:27017
    database: flock
broker:
  type: kafka
  kafka:
    brokers: ["localhost:9092"]
    group_id: timeline-fanout
    topic: message-created
    dlq_topic: message-created-dlq
timeline:
  cache_ttl_seconds: 120
  invalidation: pattern
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_FileAndDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout())
	assert.Equal(t, []string{"localhost:9092"}, cfg.Broker.Kafka.Brokers)
	assert.Equal(t, "message-created", cfg.Broker.Topic())
	assert.Equal(t, 2*time.Minute, cfg.Timeline.CacheTTL())
	assert.Equal(t, constants.InvalidationPattern, cfg.Timeline.InvalidationMode())
	assert.Equal(t, constants.DefaultTimelinePageSize, cfg.Timeline.DefaultPageSize)
	assert.Equal(t, 1, cfg.Timeline.StoreRetryAttempts)
	assert.Equal(t, "flock", cfg.Database.MongoDB.DatabaseName())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("BROKER_KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("TIMELINE_INVALIDATION", "NONE")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := LoadConfig(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Broker.Kafka.Brokers)
	assert.Equal(t, constants.InvalidationNone, cfg.Timeline.Invalidation)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, ReadTimeoutSeconds: 5, WriteTimeoutSeconds: 5},
		Broker: BrokerConfig{
			Type:  constants.BrokerTypeKafka,
			Kafka: KafkaConfig{Brokers: []string{"localhost:9092"}, GroupID: "g", Topic: "t"},
		},
	}
}

func TestValidateStatic(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, field: "server.port"},
		{name: "unknown broker", mutate: func(c *Config) { c.Broker.Type = "rabbitmq" }, field: "broker.type"},
		{name: "no kafka brokers", mutate: func(c *Config) { c.Broker.Kafka.Brokers = nil }, field: "broker.kafka.brokers"},
		{name: "dlq equals topic", mutate: func(c *Config) { c.Broker.Kafka.DLQTopic = "t" }, field: "broker.kafka.dlq_topic"},
		{
			name: "nats without url",
			mutate: func(c *Config) {
				c.Broker.Type = constants.BrokerTypeNATS
				c.Broker.NATS = NATSConfig{Stream: "S", Durable: "d"}
			},
			field: "broker.nats.url",
		},
		{name: "bad invalidation", mutate: func(c *Config) { c.Timeline.Invalidation = "sometimes" }, field: "timeline.invalidation"},
		{
			name: "default above max",
			mutate: func(c *Config) {
				c.Timeline.DefaultPageSize = 50
				c.Timeline.MaxPageSize = 20
			},
			field: "timeline.default_page_size",
		},
		{name: "bad mongo uri", mutate: func(c *Config) { c.Database.MongoDB.URI = "http://nope" }, field: "database.mongodb.uri"},
		{name: "rate limit without rps", mutate: func(c *Config) { c.RateLimit.Enabled = true }, field: "rate_limit"},
		{name: "negative invalidation concurrency", mutate: func(c *Config) { c.Fanout.InvalidationConcurrency = -1 }, field: "fanout.invalidation_concurrency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := ValidateStatic(cfg)
			if tt.field == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestRetryConfig_Policy(t *testing.T) {
	p := RetryConfig{MaxAttempts: 5, InitialInterval: 50 * time.Millisecond}.Policy(retry.DefaultPolicy())

	assert.Equal(t, 5, p.MaxAttempts)
	assert.Equal(t, 50*time.Millisecond, p.InitialInterval)
	assert.Equal(t, retry.DefaultPolicy().MaxInterval, p.MaxInterval)
}

func TestBrokerConfig_TopicFallback(t *testing.T) {
	assert.Equal(t, constants.DefaultMessageCreatedTopic, BrokerConfig{Type: constants.BrokerTypeKafka}.Topic())
	assert.Equal(t, "feed", BrokerConfig{Type: constants.BrokerTypeNATS, NATS: NATSConfig{Subject: "feed"}}.Topic())
}
