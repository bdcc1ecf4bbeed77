package notion

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func fastBackoff() []time.Duration {
	return []time.Duration{time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond}
}

func TestRetrierExhaustsBudgetOnRetryable(t *testing.T) {
	attempts := 0
	op := func(context.Context) error {
		attempts++
		return &APIError{Status: 429, Message: "rate limited"}
	}

	r := NewRetrier(3, fastBackoff(), nil)
	err := r.Do(context.Background(), op)
	if err == nil {
		t.Fatal("Do returned nil for an always-failing operation")
	}
	if attempts != 4 {
		t.Errorf("attempts = %d, want 4 (1 initial + 3 retries)", attempts)
	}
	if !strings.Contains(err.Error(), "giving up after 4 attempts") {
		t.Errorf("terminal error = %q, want attempt count", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 429 {
		t.Errorf("terminal error does not wrap the last failure: %v", err)
	}
}

func TestRetrierStopsOnFatalError(t *testing.T) {
	attempts := 0
	op := func(context.Context) error {
		attempts++
		return &APIError{Status: 400, Code: "validation_error", Message: "bad property"}
	}

	err := NewRetrier(3, fastBackoff(), nil).Do(context.Background(), op)
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 for a fatal status", attempts)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 400 {
		t.Errorf("err = %v, want the 400 APIError unchanged", err)
	}
}

func TestRetrierRecoversAfterTransientFailure(t *testing.T) {
	attempts := 0
	op := func(context.Context) error {
		attempts++
		if attempts < 3 {
			return &APIError{Status: 503, Message: "unavailable"}
		}
		return nil
	}

	if err := NewRetrier(3, fastBackoff(), nil).Do(context.Background(), op); err != nil {
		t.Fatalf("Do returned %v after the operation recovered", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetrierRetriesTransportErrors(t *testing.T) {
	attempts := 0
	op := func(context.Context) error {
		attempts++
		return errors.New("connection reset by peer")
	}

	NewRetrier(2, fastBackoff(), nil).Do(context.Background(), op)
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3 for transport errors", attempts)
	}
}

func TestRetrierHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	op := func(context.Context) error {
		attempts++
		cancel()
		return &APIError{Status: 429, Message: "rate limited"}
	}

	NewRetrier(3, []time.Duration{time.Minute}, nil).Do(ctx, op)
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 after cancellation", attempts)
	}
}

func TestRetrierRepeatsLastBackoffEntry(t *testing.T) {
	r := NewRetrier(5, []time.Duration{time.Millisecond, 2 * time.Millisecond}, nil)
	if got := r.delay(1); got != time.Millisecond {
		t.Errorf("delay(1) = %v, want 1ms", got)
	}
	if got := r.delay(2); got != 2*time.Millisecond {
		t.Errorf("delay(2) = %v, want 2ms", got)
	}
	if got := r.delay(5); got != 2*time.Millisecond {
		t.Errorf("delay(5) = %v, want the last entry repeated", got)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"429", &APIError{Status: 429}, true},
		{"500", &APIError{Status: 500}, true},
		{"599", &APIError{Status: 599}, true},
		{"400", &APIError{Status: 400}, false},
		{"401", &APIError{Status: 401}, false},
		{"404", &APIError{Status: 404}, false},
		{"transport", errors.New("dial tcp: connection refused"), true},
	}
	for _, tt := range tests {
		if got := IsRetryable(tt.err); got != tt.want {
			t.Errorf("IsRetryable(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
