package retry

import (
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// PublishPolicy bounds how long a write request waits on the broker before
// the caller is told the event could not be published.
func PublishPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Multiplier:      2.0,
		MaxElapsedTime:  5 * time.Second,
	}
}

// ReadPolicy retries a store read the given number of times with short waits.
// Negative values mean no retry.
func ReadPolicy(retries int) Policy {
	return Policy{
		MaxAttempts:     1 + max(retries, 0),
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     500 * time.Millisecond,
		Multiplier:      2.0,
	}
}

// exponential builds the backoff schedule for p. A zero MaxElapsedTime never
// gives up on its own, the attempt cap still applies.
func (p Policy) exponential() *backoff.ExponentialBackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialInterval
	exp.MaxInterval = p.MaxInterval
	exp.Multiplier = p.Multiplier
	exp.MaxElapsedTime = max(p.MaxElapsedTime, 0)
	exp.Reset()
	return exp
}

// CalculateBackoffDuration is the un-jittered delay before retry number attempt+1.
func CalculateBackoffDuration(attempt int, initialInterval time.Duration, multiplier float64, maxInterval time.Duration) time.Duration {
	duration := float64(initialInterval) * math.Pow(multiplier, float64(attempt))
	if maxInterval > 0 && duration > float64(maxInterval) {
		return maxInterval
	}
	return time.Duration(duration)
}
