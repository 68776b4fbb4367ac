package config

import (
	"time"

	"flock/internal/constants"
	"flock/pkg/retry"
)

type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Broker         BrokerConfig         `mapstructure:"broker"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Timeline       TimelineConfig       `mapstructure:"timeline"`
	Fanout         FanoutConfig         `mapstructure:"fanout"`
	Publisher      PublisherConfig      `mapstructure:"publisher"`
	RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Tracing        TracingConfig        `mapstructure:"tracing"`
}

type ServerConfig struct {
	Port                int `mapstructure:"port"`
	ReadTimeoutSeconds  int `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int `mapstructure:"write_timeout_seconds"`
}

func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

func (c ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

type DatabaseConfig struct {
	Postgres      PostgresConfig `mapstructure:"postgres"`
	Redis         RedisConfig    `mapstructure:"redis"`
	MongoDB       MongoDBConfig  `mapstructure:"mongodb"`
	RunMigrations bool           `mapstructure:"run_migrations"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MongoDBConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

func (c MongoDBConfig) DatabaseName() string {
	if c.Database == "" {
		return constants.DefaultMongoDBName
	}
	return c.Database
}

type BrokerConfig struct {
	Type  string      `mapstructure:"type"`
	Kafka KafkaConfig `mapstructure:"kafka"`
	NATS  NATSConfig  `mapstructure:"nats"`
	Retry RetryConfig `mapstructure:"retry"`
}

// Topic is the MessageCreated topic (Kafka) or subject prefix (NATS).
func (c BrokerConfig) Topic() string {
	switch c.Type {
	case constants.BrokerTypeNATS:
		if c.NATS.Subject != "" {
			return c.NATS.Subject
		}
	default:
		if c.Kafka.Topic != "" {
			return c.Kafka.Topic
		}
	}
	return constants.DefaultMessageCreatedTopic
}

type KafkaConfig struct {
	Brokers  []string `mapstructure:"brokers"`
	GroupID  string   `mapstructure:"group_id"`
	Topic    string   `mapstructure:"topic"`
	DLQTopic string   `mapstructure:"dlq_topic"`
}

type NATSConfig struct {
	URL               string `mapstructure:"url"`
	Stream            string `mapstructure:"stream"`
	Subject           string `mapstructure:"subject"`
	Durable           string `mapstructure:"durable"`
	DLQSubject        string `mapstructure:"dlq_subject"`
	AckWaitSeconds    int    `mapstructure:"ack_wait_seconds"`
	MaxAckPending     int    `mapstructure:"max_ack_pending"`
	StreamMaxAgeHours int    `mapstructure:"stream_max_age_hours"`
}

type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`
}

// Policy converts the config into a retry policy, zero fields fall back to defaults.
func (c RetryConfig) Policy(defaults retry.Policy) retry.Policy {
	return retry.Policy{
		MaxAttempts:     c.MaxAttempts,
		InitialInterval: c.InitialInterval,
		MaxInterval:     c.MaxInterval,
		Multiplier:      c.Multiplier,
		MaxElapsedTime:  c.MaxElapsedTime,
	}.Merge(defaults)
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TimelineConfig struct {
	CacheTTLSeconds    int    `mapstructure:"cache_ttl_seconds"`
	Invalidation       string `mapstructure:"invalidation"`
	DefaultPageSize    int    `mapstructure:"default_page_size"`
	MaxPageSize        int    `mapstructure:"max_page_size"`
	StoreRetryAttempts int    `mapstructure:"store_retry_attempts"`
}

func (c TimelineConfig) CacheTTL() time.Duration {
	if c.CacheTTLSeconds <= 0 {
		return constants.DefaultTimelineCacheTTL
	}
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func (c TimelineConfig) InvalidationMode() string {
	if c.Invalidation == "" {
		return constants.InvalidationPattern
	}
	return c.Invalidation
}

type FanoutConfig struct {
	UnhealthyAfterFailures  int `mapstructure:"unhealthy_after_failures"`
	InvalidationConcurrency int `mapstructure:"invalidation_concurrency"`
}

type PublisherConfig struct {
	Retry RetryConfig `mapstructure:"retry"`
}

type RateLimitConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	RPS             float64 `mapstructure:"rps"`
	Burst           int     `mapstructure:"burst"`
	CleanupInterval int     `mapstructure:"cleanup_interval"`
	MaxAge          int     `mapstructure:"max_age"`
}

type CircuitBreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

type TracingConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	ServiceName string        `mapstructure:"service_name"`
	OTLP        OTLPConfig    `mapstructure:"otlp"`
	Sampler     SamplerConfig `mapstructure:"sampler"`
}

type OTLPConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

type SamplerConfig struct {
	Type  string  `mapstructure:"type"`
	Param float64 `mapstructure:"param"`
}

func Load(configFile string) (*Config, error) {
	return LoadConfig(configFile)
}
