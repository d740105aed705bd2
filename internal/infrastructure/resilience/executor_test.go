package resilience

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

type statusErr int

func (e statusErr) Error() string   { return http.StatusText(int(e)) }
func (e statusErr) HTTPStatus() int { return int(e) }

func fastRetry(attempts int) Config {
	return Config{
		RetryMaxAttempts:    attempts,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	}
}

func TestExecuteRetriesUpstreamUnavailable(t *testing.T) {
	exec := NewExecutor(fastRetry(3))

	attempts := 0
	err := exec.Execute(context.Background(), "elastic.search", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return statusErr(http.StatusServiceUnavailable)
		}
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteDoesNotRetryBadRequest(t *testing.T) {
	exec := NewExecutor(fastRetry(3))

	attempts := 0
	err := exec.Execute(context.Background(), "elastic.search", func(context.Context) error {
		attempts++
		return statusErr(http.StatusBadRequest)
	}, nil)
	if !errors.Is(err, statusErr(http.StatusBadRequest)) {
		t.Fatalf("expected bad request error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestExecuteSkipsBackoffPastDeadline(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:    5,
		RetryInitialBackoff: time.Second,
		RetryMaxBackoff:     time.Second,
		RetryMultiplier:     2,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	attempts := 0
	start := time.Now()
	err := exec.Execute(ctx, "ollama.generate", func(context.Context) error {
		attempts++
		return statusErr(http.StatusBadGateway)
	}, nil)
	if err == nil || attempts != 1 {
		t.Fatalf("expected a single failed attempt, got attempts=%d err=%v", attempts, err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("expected immediate return, waited %s", elapsed)
	}
}

func TestNilExecutorCallsOnce(t *testing.T) {
	var exec *Executor

	attempts := 0
	errUpstream := statusErr(http.StatusServiceUnavailable)
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		return errUpstream
	}, nil)
	if !errors.Is(err, errUpstream) || attempts != 1 {
		t.Fatalf("expected one call returning upstream error, got attempts=%d err=%v", attempts, err)
	}
	if exec.BreakerState("op") != gobreaker.StateClosed {
		t.Fatalf("nil executor must report a closed breaker")
	}
}

func TestExecuteOpensCircuitAfterFailures(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:        1,
		RetryInitialBackoff:     1 * time.Millisecond,
		RetryMaxBackoff:         1 * time.Millisecond,
		RetryMultiplier:         2,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      50 * time.Millisecond,
		BreakerHalfOpenMaxCalls: 1,
	})

	errUpstream := statusErr(http.StatusInternalServerError)
	for i := 0; i < 2; i++ {
		err := exec.Execute(context.Background(), "elastic.bulk", func(context.Context) error {
			return errUpstream
		}, nil)
		if !errors.Is(err, errUpstream) {
			t.Fatalf("expected upstream error on iteration %d, got %v", i, err)
		}
	}
	if exec.BreakerState("elastic.bulk") != gobreaker.StateOpen {
		t.Fatalf("expected open breaker, got %s", exec.BreakerState("elastic.bulk"))
	}

	err := exec.Execute(context.Background(), "elastic.bulk", func(context.Context) error {
		t.Fatalf("circuit should be open and must not call operation")
		return nil
	}, nil)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open state error, got %v", err)
	}

	if exec.BreakerState("elastic.search") != gobreaker.StateClosed {
		t.Fatalf("breakers must be kept per operation")
	}
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:   1,
		BreakerEnabled:     true,
		BreakerMinRequests: 2,
	})

	for i := 0; i < 5; i++ {
		_ = exec.Execute(context.Background(), "elastic.search", func(context.Context) error {
			return statusErr(http.StatusBadRequest)
		}, nil)
	}
	if exec.BreakerState("elastic.search") != gobreaker.StateClosed {
		t.Fatalf("4xx responses must not open the breaker")
	}
}

func TestWithAttempts(t *testing.T) {
	if got := DefaultConfig().WithAttempts(0).RetryMaxAttempts; got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := DefaultConfig().WithAttempts(4).RetryMaxAttempts; got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
}
