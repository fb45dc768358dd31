package recordstore

import (
	"context"
	"math"
	"time"
)

// RetryConfig defines retry behavior for store HTTP calls
type RetryConfig struct {
	MaxAttempts   int           // Total attempts, including the first
	BaseDelay     time.Duration // Delay after the first failed attempt
	BackoffFactor float64       // Exponential backoff multiplier
}

// DefaultRetryConfig returns the store client's default retry policy:
// three attempts with 250ms, 500ms backoff between them.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		BaseDelay:     250 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

// delayForAttempt returns the backoff delay after the given zero-based
// failed attempt.
func (c RetryConfig) delayForAttempt(attempt int) time.Duration {
	return time.Duration(float64(c.BaseDelay) * math.Pow(c.BackoffFactor, float64(attempt)))
}

// sleepWithContext waits for d or until the context is cancelled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
