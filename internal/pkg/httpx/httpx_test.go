package httpx

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

type statusErr struct {
	code int
}

func (e *statusErr) Error() string       { return "upstream error" }
func (e *statusErr) HTTPStatusCode() int { return e.code }

func TestIsRetryableHTTPStatus(t *testing.T) {
	cases := map[int]bool{
		200: false,
		400: false,
		404: false,
		429: true,
		500: true,
		503: true,
		599: true,
	}
	for code, want := range cases {
		if got := IsRetryableHTTPStatus(code); got != want {
			t.Fatalf("IsRetryableHTTPStatus(%d): want=%v got=%v", code, want, got)
		}
	}
}

func TestIsRetryableErrorTransportFailureIsPermanent(t *testing.T) {
	if IsRetryableError(errors.New("dial tcp: connection refused")) {
		t.Fatalf("transport error should not be retryable")
	}
	if IsRetryableError(nil) {
		t.Fatalf("nil error should not be retryable")
	}
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 3, BaseDelay: 5 * time.Millisecond, Timeout: time.Second}

	attempts := 0
	err := Do(context.Background(), nil, "test", policy, func(ctx context.Context) error {
		attempts++
		if attempts <= 2 {
			return &statusErr{code: http.StatusServiceUnavailable}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts: want=3 got=%d", attempts)
	}
}

func TestDoBackoffDoubles(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 3, BaseDelay: 20 * time.Millisecond, Timeout: time.Second}

	var stamps []time.Time
	attempts := 0
	err := Do(context.Background(), nil, "test", policy, func(ctx context.Context) error {
		stamps = append(stamps, time.Now())
		attempts++
		if attempts <= 2 {
			return &statusErr{code: http.StatusServiceUnavailable}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if len(stamps) != 3 {
		t.Fatalf("attempts: want=3 got=%d", len(stamps))
	}
	first := stamps[1].Sub(stamps[0])
	second := stamps[2].Sub(stamps[1])
	if first < 20*time.Millisecond {
		t.Fatalf("first delay too short: %v", first)
	}
	if second < 40*time.Millisecond {
		t.Fatalf("second delay did not double: first=%v second=%v", first, second)
	}
}

func TestDoPermanentErrorNotRetried(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 3, BaseDelay: 5 * time.Millisecond, Timeout: time.Second}

	attempts := 0
	wantErr := &statusErr{code: http.StatusNotFound}
	err := Do(context.Background(), nil, "test", policy, func(ctx context.Context) error {
		attempts++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("error: want=%v got=%v", wantErr, err)
	}
	if attempts != 1 {
		t.Fatalf("attempts: want=1 got=%d", attempts)
	}
}

func TestDoExhaustionSurfacesLastError(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 2, BaseDelay: time.Millisecond, Timeout: time.Second}

	attempts := 0
	err := Do(context.Background(), nil, "test", policy, func(ctx context.Context) error {
		attempts++
		return &statusErr{code: http.StatusTooManyRequests}
	})
	var sc HTTPStatusCoder
	if !errors.As(err, &sc) || sc.HTTPStatusCode() != http.StatusTooManyRequests {
		t.Fatalf("exhaustion should surface last error unchanged, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts: want=3 got=%d", attempts)
	}
}

func TestDoTimeoutIsTerminal(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 10, BaseDelay: 30 * time.Millisecond, Timeout: 50 * time.Millisecond}

	attempts := 0
	err := Do(context.Background(), nil, "test", policy, func(ctx context.Context) error {
		attempts++
		return &statusErr{code: http.StatusServiceUnavailable}
	})
	if err == nil {
		t.Fatalf("expected error after timeout")
	}
	if attempts > 3 {
		t.Fatalf("timeout should bound attempts, got %d", attempts)
	}
}

func TestDefaultRetryPolicy(t *testing.T) {
	p := DefaultRetryPolicy()
	if p.MaxRetries != 3 {
		t.Fatalf("MaxRetries: want=3 got=%d", p.MaxRetries)
	}
	if p.BaseDelay != 2*time.Second {
		t.Fatalf("BaseDelay: want=2s got=%v", p.BaseDelay)
	}
	if p.Timeout != 60*time.Second {
		t.Fatalf("Timeout: want=60s got=%v", p.Timeout)
	}
}
