package broker

import (
	"context"
	"time"

	"flock/internal/logger"
	"flock/pkg/errors"
	"flock/pkg/models"
	"flock/pkg/retry"
)

// drainContext returns a context that survives cancellation of parent for
// at most grace, so an in-flight write can finish during shutdown.
func drainContext(parent context.Context, grace time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	stop := context.AfterFunc(parent, func() {
		timer := time.NewTimer(grace)
		defer timer.Stop()
		select {
		case <-timer.C:
			cancel()
		case <-ctx.Done():
		}
	})
	return ctx, func() {
		stop()
		cancel()
	}
}

// runHandler invokes handler under policy. Backoff waits observe ctx while
// each attempt runs on a drain context.
func runHandler(ctx context.Context, policy retry.Policy, grace time.Duration, env models.EventEnvelope, handler HandlerFunc, log logger.Logger, onRetry func()) error {
	return retry.RetryWithCallback(ctx, policy, func() (err error) {
		attemptCtx, cancel := drainContext(ctx, grace)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				err = errors.RecoverPanic(r)
				log.ErrorwCtx(ctx, "Panic recovered during message processing", "error", err)
			}
		}()
		return handler(attemptCtx, env)
	}, func(attempt int, err error, nextDelay time.Duration) {
		if onRetry != nil {
			onRetry()
		}
		log.WarnwCtx(ctx, "Retrying message processing",
			"attempt", attempt,
			"max_attempts", policy.MaxAttempts,
			"next_delay", nextDelay,
			"error", err,
		)
	})
}

func dlqEnvelope(env models.EventEnvelope, reason error, sourceTopic string) models.EventEnvelope {
	env.Metadata.DLQ = &models.DLQInfo{
		Reason:      reason.Error(),
		SourceTopic: sourceTopic,
		FailedAt:    time.Now().UTC(),
	}
	return env
}
