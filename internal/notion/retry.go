package notion

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// retry.go wraps remote operations with bounded, classified retries.
//
// Retryable failures are HTTP 429, HTTP 5xx, and transport-level errors
// (connection failures, resets). Every other HTTP status is treated as
// fatal and surfaces immediately. Each attempt re-acquires the shared
// Pacer so retries never bypass the outbound rate gate.

// DefaultMaxRetries is the number of retries after the initial attempt.
const DefaultMaxRetries = 3

// DefaultBackoff is the sleep schedule between attempts. When attempts
// outnumber entries, the last entry repeats.
var DefaultBackoff = []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}

// APIError is a non-2xx response from the Notion API, carrying the
// machine-readable code and message from the response body when present.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("notion: status=%d code=%s message=%s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("notion: status=%d message=%s", e.Status, e.Message)
}

// Retryable reports whether the response status warrants another attempt.
func (e *APIError) Retryable() bool {
	return e.Status == 429 || (e.Status >= 500 && e.Status <= 599)
}

// IsRetryable classifies an operation failure. API errors follow their
// status code; anything else is a transport-level failure and retryable.
// Context cancellation is handled by the Retrier before classification.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	return true
}

// Retrier executes operations with bounded retries and a fixed backoff
// schedule. The zero value is not usable; construct with NewRetrier.
type Retrier struct {
	maxRetries int
	backoff    []time.Duration
	pacer      *Pacer
}

// NewRetrier returns a Retrier performing up to maxRetries retries after
// the first attempt, sleeping backoff[i] before retry i+1. Negative
// maxRetries and empty backoff fall back to the defaults. pacer may be
// nil, in which case attempts are not rate-gated.
func NewRetrier(maxRetries int, backoff []time.Duration, pacer *Pacer) *Retrier {
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	if len(backoff) == 0 {
		backoff = DefaultBackoff
	}
	return &Retrier{maxRetries: maxRetries, backoff: backoff, pacer: pacer}
}

// Do runs op, retrying on retryable failures until the attempt budget is
// exhausted. The terminal error of an exhausted budget wraps the last
// observed failure together with the attempt count.
func (r *Retrier) Do(ctx context.Context, op func(context.Context) error) error {
	attempts := r.maxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := sleepContext(ctx, r.delay(attempt-1)); err != nil {
				return err
			}
		}
		if r.pacer != nil {
			if err := r.pacer.Wait(ctx); err != nil {
				return err
			}
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return lastErr
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("giving up after %d attempts: %w", attempts, lastErr)
}

// delay returns the backoff before the given retry (1-based).
func (r *Retrier) delay(retry int) time.Duration {
	i := retry - 1
	if i >= len(r.backoff) {
		i = len(r.backoff) - 1
	}
	return r.backoff[i]
}

// sleepContext sleeps for delay or until ctx is done, whichever is first.
func sleepContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
