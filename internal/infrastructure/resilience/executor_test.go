package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

func TestRunRetriesTransientFailure(t *testing.T) {
	exec := NewExecutor(Policy{
		MaxAttempts:    3,
		InitialBackoff: 1 * time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		Multiplier:     2,
		BreakerEnabled: false,
	})

	attempts := 0
	errTransient := errors.New("transient")
	err := exec.Run(context.Background(), "op", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errTransient
		}
		return nil
	}, func(err error) Verdict {
		return Verdict{Retryable: errors.Is(err, errTransient), RecordFailure: true}
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRunDoesNotRetryPermanentFailure(t *testing.T) {
	exec := NewExecutor(Policy{
		MaxAttempts:    3,
		InitialBackoff: 1 * time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		Multiplier:     2,
		BreakerEnabled: false,
	})

	attempts := 0
	errPermanent := errors.New("permanent")
	err := exec.Run(context.Background(), "op", func(context.Context) error {
		attempts++
		return errPermanent
	}, func(error) Verdict {
		return Verdict{Retryable: false, RecordFailure: false}
	})
	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestRunOpensCircuitAfterFailures(t *testing.T) {
	exec := NewExecutor(Policy{
		MaxAttempts:         1,
		InitialBackoff:      1 * time.Millisecond,
		MaxBackoff:          1 * time.Millisecond,
		Multiplier:          2,
		BreakerEnabled:      true,
		BreakerMinRequests:  2,
		BreakerFailureRatio: 0.5,
		BreakerOpenTimeout:  50 * time.Millisecond,
		BreakerProbeCalls:   1,
	})

	errTransient := errors.New("transient")
	classify := func(error) Verdict {
		return Verdict{Retryable: false, RecordFailure: true}
	}

	for i := 0; i < 2; i++ {
		err := exec.Run(context.Background(), "op", func(context.Context) error {
			return errTransient
		}, classify)
		if !errors.Is(err, errTransient) {
			t.Fatalf("expected transient error on iteration %d, got %v", i, err)
		}
	}

	err := exec.Run(context.Background(), "op", func(context.Context) error {
		return nil
	}, classify)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if !IsCircuitOpen(err) {
		t.Fatalf("IsCircuitOpen must report open state")
	}
}

func TestRunIsolatesBreakersPerOperation(t *testing.T) {
	exec := NewExecutor(Policy{
		MaxAttempts:         1,
		InitialBackoff:      1 * time.Millisecond,
		MaxBackoff:          1 * time.Millisecond,
		Multiplier:          2,
		BreakerEnabled:      true,
		BreakerMinRequests:  2,
		BreakerFailureRatio: 0.5,
		BreakerOpenTimeout:  time.Minute,
		BreakerProbeCalls:   1,
	})

	errBoom := errors.New("boom")
	classify := func(error) Verdict {
		return Verdict{Retryable: false, RecordFailure: true}
	}

	for i := 0; i < 3; i++ {
		_ = exec.Run(context.Background(), "embed", func(context.Context) error {
			return errBoom
		}, classify)
	}

	if err := exec.Run(context.Background(), "generate", func(context.Context) error {
		return nil
	}, classify); err != nil {
		t.Fatalf("generate breaker must be independent, got %v", err)
	}
}

func TestRunStopsOnCanceledContext(t *testing.T) {
	exec := NewExecutor(Policy{
		MaxAttempts:    5,
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     10 * time.Millisecond,
		Multiplier:     2,
		BreakerEnabled: false,
	})

	ctx, cancel := context.WithCancel(context.Background())
	errTransient := errors.New("transient")
	attempts := 0
	err := exec.Run(ctx, "op", func(context.Context) error {
		attempts++
		cancel()
		return errTransient
	}, func(error) Verdict {
		return Verdict{Retryable: true, RecordFailure: true}
	})
	if !errors.Is(err, errTransient) {
		t.Fatalf("expected last error after cancel, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}
