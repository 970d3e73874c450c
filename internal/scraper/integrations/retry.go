package integrations

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/Vodeneev/exerciser/internal/pkg/metrics"
)

// RetryConfig configures Retry. Attempts = MaxRetries + 1; the wait before retry n is
// BaseDelay * 2^(n-1).
type RetryConfig struct {
	MaxRetries  int
	BaseDelay   time.Duration
	IsRetryable func(error) bool // nil means DefaultIsRetryable
}

// DefaultIsRetryable treats network errors, unexpected EOFs and transient status codes
// as retryable. Context cancellation never is.
func DefaultIsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrMissingCredentials) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Transient()
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}

// Retry calls fn until it succeeds, a non-retryable error is returned, retries run out,
// or ctx is done. The last error from fn is returned.
func Retry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	_, err := RetryValue(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// RetryValue is Retry for functions that return a value.
func RetryValue[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	isRetryable := cfg.IsRetryable
	if isRetryable == nil {
		isRetryable = DefaultIsRetryable
	}
	delay := cfg.BaseDelay

	for attempt := 0; ; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if attempt >= cfg.MaxRetries || !isRetryable(err) {
			return v, err
		}

		slog.Debug("Retrying after error", "attempt", attempt+1, "max_retries", cfg.MaxRetries, "delay", delay, "error", err)
		metrics.RetryAttemptsTotal.Inc()

		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return v, err
			case <-timer.C:
			}
		} else if ctx.Err() != nil {
			return v, err
		}
		delay *= 2
	}
}
