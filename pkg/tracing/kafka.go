package tracing

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// InjectKafkaHeaders appends the span context of ctx to headers.
func InjectKafkaHeaders(ctx context.Context, headers []kafka.Header) []kafka.Header {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for key, value := range carrier {
		headers = append(headers, kafka.Header{Key: key, Value: []byte(value)})
	}
	return headers
}

// StartKafkaConsumeSpan continues the producer's trace for m.
func StartKafkaConsumeSpan(ctx context.Context, m kafka.Message) (context.Context, trace.Span) {
	carrier := make(propagation.MapCarrier, len(m.Headers))
	for _, h := range m.Headers {
		carrier[h.Key] = string(h.Value)
	}
	ctx = otel.GetTextMapPropagator().Extract(ctx, carrier)

	return startConsumeSpan(ctx, "kafka", m.Topic,
		attribute.Int("messaging.kafka.partition", m.Partition),
		attribute.Int64("messaging.kafka.offset", m.Offset),
		attribute.String("messaging.kafka.message.key", string(m.Key)),
	)
}
