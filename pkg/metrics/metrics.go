package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	FanoutEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanout_events_total",
			Help: "Total number of MessageCreated events handled by the fan-out consumer (count)",
		},
		[]string{"status"},
	)

	FanoutEntriesWrittenTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fanout_entries_written_total",
			Help: "Total number of timeline entries upserted by the fan-out consumer (count)",
		},
	)

	FanoutRecipients = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fanout_recipients",
			Help:    "Number of timelines an event was written to, author included (count)",
			Buckets: []float64{1, 2, 5, 10, 50, 100, 500, 1000, 5000, 10000},
		},
	)

	FanoutProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fanout_processing_duration_ms",
			Help:    "Processing duration of one fan-out event in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"status"},
	)

	FanoutWorkerHealthy = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fanout_worker_healthy",
			Help: "Whether the fan-out worker reports healthy (1) or not (0)",
		},
	)

	TimelineCacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timeline_cache_requests_total",
			Help: "Timeline page cache lookups by result (count)",
		},
		[]string{"result"},
	)

	TimelineCacheInvalidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timeline_cache_invalidations_total",
			Help: "Timeline cache invalidations by mode and status (count)",
		},
		[]string{"mode", "status"},
	)

	TimelineReadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "timeline_read_duration_ms",
			Help:    "Duration of timeline page reads in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		},
		[]string{"source"},
	)

	MessagesCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_created_total",
			Help: "Messages accepted by the write path (count)",
		},
		[]string{"status"},
	)

	EventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Events published to the broker by topic and status (count)",
		},
		[]string{"topic", "status"},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of retry attempts (count)",
		},
		[]string{"service", "topic"},
	)

	RedeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redeliveries_total",
			Help: "Events left unacknowledged for redelivery after exhausting in-process retries (count)",
		},
		[]string{"service", "topic"},
	)

	DLQMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dlq_messages_total",
			Help: "Total number of messages sent to DLQ (count)",
		},
		[]string{"service", "topic", "reason"},
	)

	BrokerMessagesReadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broker_messages_read_total",
			Help: "Total number of messages read from the broker (count)",
		},
		[]string{"service", "topic"},
	)

	BrokerWriteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "broker_write_duration_ms",
			Help:    "Duration of writing messages to the broker in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"topic"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)

	DatabaseQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_queries_total",
			Help: "Total number of database queries (count)",
		},
		[]string{"database", "operation", "status"},
	)

	DatabaseQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_query_duration_ms",
			Help:    "Duration of database queries in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"database", "operation"},
	)
)

var (
	registerAPIOnce            sync.Once
	registerFanoutOnce         sync.Once
	registerBrokerOnce         sync.Once
	registerCircuitBreakerOnce sync.Once
	registerDatabaseOnce       sync.Once
)

func RegisterAPIMetrics() {
	registerAPIOnce.Do(func() {
		prometheus.MustRegister(TimelineCacheRequestsTotal)
		prometheus.MustRegister(TimelineReadDuration)
		prometheus.MustRegister(MessagesCreatedTotal)
		prometheus.MustRegister(EventsPublishedTotal)
		prometheus.MustRegister(RateLimitRequestsTotal)
	})
}

func RegisterFanoutMetrics() {
	registerFanoutOnce.Do(func() {
		prometheus.MustRegister(FanoutEventsTotal)
		prometheus.MustRegister(FanoutEntriesWrittenTotal)
		prometheus.MustRegister(FanoutRecipients)
		prometheus.MustRegister(FanoutProcessingDuration)
		prometheus.MustRegister(FanoutWorkerHealthy)
		prometheus.MustRegister(TimelineCacheInvalidationsTotal)
	})
}

func RegisterBrokerMetrics() {
	registerBrokerOnce.Do(func() {
		prometheus.MustRegister(RetryAttemptsTotal)
		prometheus.MustRegister(RedeliveriesTotal)
		prometheus.MustRegister(DLQMessagesTotal)
		prometheus.MustRegister(BrokerMessagesReadTotal)
		prometheus.MustRegister(BrokerWriteDuration)
	})
}

func RegisterCircuitBreakerMetrics() {
	registerCircuitBreakerOnce.Do(func() {
		prometheus.MustRegister(CircuitBreakerState)
		prometheus.MustRegister(CircuitBreakerRequests)
		prometheus.MustRegister(CircuitBreakerFailures)
	})
}

func RegisterDatabaseMetrics() {
	registerDatabaseOnce.Do(func() {
		prometheus.MustRegister(DatabaseQueriesTotal)
		prometheus.MustRegister(DatabaseQueryDuration)
	})
}

func ObserveFanoutDuration(duration time.Duration, status string) {
	FanoutProcessingDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func ObserveTimelineRead(source string, duration time.Duration) {
	TimelineReadDuration.WithLabelValues(source).Observe(float64(duration.Milliseconds()))
}

func IncCacheResult(result string) {
	TimelineCacheRequestsTotal.WithLabelValues(result).Inc()
}

func IncCacheInvalidation(mode, status string) {
	TimelineCacheInvalidationsTotal.WithLabelValues(mode, status).Inc()
}

func IncBrokerMessagesRead(service, topic string) {
	BrokerMessagesReadTotal.WithLabelValues(service, topic).Inc()
}

func ObserveBrokerWriteDuration(topic string, duration time.Duration) {
	BrokerWriteDuration.WithLabelValues(topic).Observe(float64(duration.Milliseconds()))
}

func SetFanoutWorkerHealthy(healthy bool) {
	if healthy {
		FanoutWorkerHealthy.Set(1)
		return
	}
	FanoutWorkerHealthy.Set(0)
}

// ObserveDatabaseQuery records count and latency for one store call.
func ObserveDatabaseQuery(database, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	DatabaseQueriesTotal.WithLabelValues(database, operation, status).Inc()
	DatabaseQueryDuration.WithLabelValues(database, operation).Observe(float64(time.Since(start).Milliseconds()))
}
