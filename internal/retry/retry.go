// Package retry runs fallible operations with exponential backoff.
// The server uses it to ride out a database that is still coming up.
package retry

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// PermanentError marks an error that retrying cannot fix.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so Do gives up immediately instead of retrying.
func Permanent(err error) error {
	return &PermanentError{Err: err}
}

// Do invokes fn until it succeeds, up to maxAttempts times. Between
// attempts it sleeps baseDelay doubled per attempt with 25% jitter so
// restarting replicas do not hammer a recovering dependency in step.
// A context cancellation or a Permanent error ends the loop early; the
// last error from fn is returned otherwise.
func Do(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func() error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		var perm *PermanentError
		if errors.As(lastErr, &perm) {
			return perm.Err
		}
		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff(baseDelay, attempt)):
		}
	}
	return lastErr
}

// backoff returns baseDelay * 2^(attempt-1) spread across plus or
// minus a quarter of itself.
func backoff(baseDelay time.Duration, attempt int) time.Duration {
	delay := baseDelay << (attempt - 1)
	jitter := int64(delay / 4)
	if jitter <= 0 {
		return delay
	}
	return delay - time.Duration(jitter) + time.Duration(rand.Int64N(2*jitter+1))
}
