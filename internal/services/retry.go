package services

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RetryPolicy bounds a retry loop.
type RetryPolicy struct {
	// Attempts is the total number of tries, including the first one.
	Attempts int
	// Delay is slept between attempts. Zero retries immediately.
	Delay time.Duration
	// ShouldRetry decides whether an error is worth another attempt.
	// Nil means Retryable.
	ShouldRetry func(error) bool
	// OnRetry is invoked before each retry with the upcoming attempt number
	// (2-based) and the error that triggered it.
	OnRetry func(attempt int, err error)
}

// Retry runs fn until it succeeds, the policy is exhausted, or ctx is done.
// The returned value is only meaningful when err is nil; on failure the last
// error is returned wrapped with the attempt count.
func Retry[T any](ctx context.Context, policy RetryPolicy, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var zero T
	attempts := policy.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	shouldRetry := policy.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = Retryable
	}

	var lastErr error
	made := 0
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		made = attempt
		value, err := fn(ctx, attempt)
		if err == nil {
			return value, nil
		}
		lastErr = err
		if attempt == attempts || !shouldRetry(err) || errors.Is(err, context.Canceled) {
			break
		}
		if policy.OnRetry != nil {
			policy.OnRetry(attempt+1, err)
		}
		if policy.Delay > 0 {
			timer := time.NewTimer(policy.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
	}
	return zero, fmt.Errorf("after %d attempt(s): %w", made, lastErr)
}
