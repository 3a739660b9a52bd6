package ai

import (
	"context"
	"errors"
	"time"

	appErrors "github.com/thomas-vilte/debtguard/internal/errors"
	"github.com/thomas-vilte/debtguard/internal/logger"
)

const defaultRetryBaseDelay = time.Second

// TransientError marks a failure worth retrying: rate limits, 5xx answers
// and network errors.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient: " + e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err was marked as retryable.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// RetryWithBackoff calls fn until it succeeds, returns a non-transient error
// or maxRetries retries have been spent. Delays double from baseDelay.
// Exhausted retries become ErrModelUnavailable.
func RetryWithBackoff(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func() error) error {
	if baseDelay <= 0 {
		baseDelay = defaultRetryBaseDelay
	}
	log := logger.FromContext(ctx)

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !IsTransient(lastErr) {
			return lastErr
		}

		if attempt < maxRetries {
			backoff := baseDelay << uint(attempt)
			log.Debug("retrying model request",
				"attempt", attempt+1,
				"backoff", backoff,
				"error", lastErr)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return appErrors.ErrModelUnavailable.
		WithError(errors.Unwrap(lastErr)).
		WithContext("attempts", maxRetries+1)
}
