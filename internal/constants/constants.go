package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	BrokerTypeKafka = "kafka"
	BrokerTypeNATS  = "nats"
)

const (
	DefaultMessageCreatedTopic = "message-created"
	DefaultFanoutGroupID       = "timeline-fanout"
	DefaultNATSStream          = "MESSAGES"
)

const (
	DefaultMongoDBName  = "flock"
	MessagesCollection  = "messages"
	TimelinesCollection = "timelines"
)

const (
	TimelineCacheKeyPrefix     = "timeline:"
	DefaultTimelineCacheTTL    = 5 * time.Minute
	DefaultTimelinePageNumber  = 1
	DefaultTimelinePageSize    = 10
	DefaultTimelineMaxPageSize = 100
	UnknownUsername            = "Unknown"
)

const (
	InvalidationPattern = "pattern"
	InvalidationNone    = "none"
)

const (
	ShutdownTimeout      = 5 * time.Second
	InFlightDrainTimeout = 10 * time.Second
	CommitTimeout        = 5 * time.Second
)

const (
	DefaultUnhealthyAfterFailures  = 5
	DefaultInvalidationConcurrency = 8
	RedeliveryPause                = time.Second
)

const (
	ServiceNameAPI    = "api-service"
	ServiceNameFanout = "fanout-service"
)
