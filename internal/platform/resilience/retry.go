package resilience

import (
	"context"
	"time"
)

// RetryPolicy describes a bounded retry loop with linear backoff: delay is Backoff*(attempt+1).
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

// RetryDecision is returned by an attempt to tell Retry what to do next.
// A positive Wait overrides the linear backoff for the next attempt.
type RetryDecision struct {
	Retry bool
	Wait  time.Duration
}

// Retry runs attempt up to MaxRetries+1 times. It stops on success, on a non-retryable
// error, or when ctx is done; the last error is returned.
func Retry(ctx context.Context, policy RetryPolicy, attempt func(ctx context.Context, n int) (RetryDecision, error)) error {
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}

	var lastErr error
	for n := 0; n <= policy.MaxRetries; n++ {
		decision, err := attempt(ctx, n)
		if err == nil {
			return nil
		}
		lastErr = err
		if !decision.Retry || n == policy.MaxRetries {
			break
		}

		wait := decision.Wait
		if wait <= 0 {
			wait = time.Duration(n+1) * policy.Backoff
		}
		if err := SleepContext(ctx, wait); err != nil {
			return err
		}
	}
	return lastErr
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
