package tracing

import (
	"context"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// InjectNATSHeaders writes the span context of ctx into h, allocating it if needed.
func InjectNATSHeaders(ctx context.Context, h nats.Header) nats.Header {
	if h == nil {
		h = nats.Header{}
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(h))
	return h
}

// StartNATSConsumeSpan continues the producer's trace for a message received on subject.
func StartNATSConsumeSpan(ctx context.Context, subject string, h nats.Header) (context.Context, trace.Span) {
	if h != nil {
		ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(h))
	}
	return startConsumeSpan(ctx, "nats", subject)
}
