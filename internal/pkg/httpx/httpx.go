package httpx

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/scenelingo/scenelingo-backend/internal/logger"
)

// HTTPStatusCoder is implemented by errors that carry an upstream HTTP
// status, so the retry policy can classify them without string matching.
type HTTPStatusCoder interface {
	HTTPStatusCode() int
}

// RetryAfterHinter is implemented by errors that carry a server-provided
// Retry-After duration.
type RetryAfterHinter interface {
	RetryAfterHint() time.Duration
}

func IsRetryableHTTPStatus(code int) bool {
	if code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

// IsRetryableError reports whether err represents a transient upstream
// failure (HTTP 429 or 5xx). Transport-level failures and every other 4xx
// are permanent.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	var sc HTTPStatusCoder
	if errors.As(err, &sc) {
		return IsRetryableHTTPStatus(sc.HTTPStatusCode())
	}
	return false
}

// RetryAfterDuration resolves the sleep before the next attempt, preferring
// an upstream Retry-After header when present.
func RetryAfterDuration(resp *http.Response, fallback, max time.Duration) time.Duration {
	sleepFor := fallback
	if resp != nil {
		if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
				sleepFor = time.Duration(secs) * time.Second
			}
		}
	}
	if max > 0 && sleepFor > max {
		sleepFor = max
	}
	return sleepFor
}

// RetryPolicy bounds one external call: MaxRetries retries on top of the
// first attempt, exponential backoff from BaseDelay, and a total wall-clock
// Timeout covering the whole sequence.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Timeout    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  2 * time.Second,
		MaxDelay:   30 * time.Second,
		Timeout:    60 * time.Second,
	}
}

// Do runs fn under policy. Retries happen only for errors classified by
// IsRetryableError; everything else, and retry-budget exhaustion, surfaces
// the last error unchanged. Exceeding Timeout is terminal.
func Do(ctx context.Context, log *logger.Logger, op string, policy RetryPolicy, fn func(ctx context.Context) error) error {
	if policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, policy.Timeout)
		defer cancel()
	}

	backoff := policy.BaseDelay
	var last error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			if last != nil {
				return last
			}
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		last = err

		if !IsRetryableError(err) || attempt == policy.MaxRetries {
			return err
		}

		sleepFor := backoff
		var ra RetryAfterHinter
		if errors.As(err, &ra) && ra.RetryAfterHint() > 0 {
			sleepFor = ra.RetryAfterHint()
		}
		if policy.MaxDelay > 0 && sleepFor > policy.MaxDelay {
			sleepFor = policy.MaxDelay
		}

		if log != nil {
			log.Warn("External call retrying",
				"op", op,
				"attempt", attempt+1,
				"max_retries", policy.MaxRetries,
				"sleep", sleepFor.String(),
				"error", err.Error(),
			)
		}

		timer := time.NewTimer(sleepFor)
		select {
		case <-ctx.Done():
			timer.Stop()
			return last
		case <-timer.C:
		}
		backoff *= 2
	}
	return last
}
