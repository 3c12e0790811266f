package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable marks a cache or store backend that could not be reached.
var ErrUnavailable = errors.New("backend unavailable")

// RetryableError marks a transient failure worth another attempt.
type RetryableError struct{ Err error }

// Retryable wraps err as a [RetryableError]. It returns nil for nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err was wrapped with [Retryable].
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff spaces retries of a store lookup. The delay doubles after each
// failed attempt and is capped at Max.
type Backoff struct {
	Attempts int
	Initial  time.Duration
	Max      time.Duration
}

// DefaultBackoff bounds lookups made while serving a single request.
var DefaultBackoff = Backoff{Attempts: 3, Initial: 100 * time.Millisecond, Max: time.Second}

// Retry calls fn until it succeeds, returns an error not marked retryable,
// runs out of attempts or ctx is done.
func (b Backoff) Retry(ctx context.Context, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Initial
	var lastErr error

	for i := range attempts {
		if lastErr = fn(); lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		if delay *= 2; b.Max > 0 && delay > b.Max {
			delay = b.Max
		}
	}
	return lastErr
}

// RetryWithBackoff runs fn under [DefaultBackoff].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultBackoff.Retry(ctx, fn)
}
