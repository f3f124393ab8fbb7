package client

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for retry operations.
var (
	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "employee_client_retries_total",
		Help: "Total number of retry attempts by operation",
	}, []string{"operation"})

	retryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "employee_client_retry_exhausted_total",
		Help: "Total number of reads that exhausted their retry attempts by operation",
	}, []string{"operation"})
)

// RetryConfig holds the configuration for read retries.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the initial request).
	MaxAttempts int

	// Delay is the fixed wait between attempts.
	Delay time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		Delay:       3 * time.Second,
	}
}

// Retrier applies a bounded, fixed-delay retry policy to read operations.
// Every failure is retried the same way, whatever its class.
type Retrier struct {
	config RetryConfig
	logger zerolog.Logger

	// after is swapped in tests to observe delays without waiting.
	after func(time.Duration) <-chan time.Time
}

// NewRetrier creates a retrier. Non-positive values fall back to the defaults.
func NewRetrier(cfg RetryConfig, logger zerolog.Logger) *Retrier {
	defaults := DefaultRetryConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.Delay < 0 {
		cfg.Delay = defaults.Delay
	}
	return &Retrier{
		config: cfg,
		logger: logger,
		after:  time.After,
	}
}

// Config returns the retry configuration in use.
func (r *Retrier) Config() RetryConfig {
	return r.config
}

// Retry runs fn until it succeeds or the attempt budget is spent. The wait
// between attempts is timer based and ends early if ctx is done. On failure
// the last error is returned in its normalized form.
func Retry[T any](ctx context.Context, r *Retrier, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr *APIError

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				r.logger.Info().
					Str("operation", op).
					Int("attempt", attempt).
					Msg("Request succeeded after retry")
			}
			return result, nil
		}

		lastErr = normalizeErr(err, "")

		if attempt >= r.config.MaxAttempts {
			break
		}

		retriesTotal.WithLabelValues(op).Inc()
		r.logger.Warn().
			Str("operation", op).
			Int("attempt", attempt).
			Int("status", lastErr.Status).
			Str("error_class", string(lastErr.Class)).
			Dur("delay", r.config.Delay).
			Msg("Retrying request after delay")

		select {
		case <-ctx.Done():
			r.logger.Warn().
				Str("operation", op).
				Int("attempt", attempt).
				Msg("Context cancelled during retry delay")
			return zero, lastErr
		case <-r.after(r.config.Delay):
		}
	}

	retryExhaustedTotal.WithLabelValues(op).Inc()
	r.logger.Warn().
		Str("operation", op).
		Int("max_attempts", r.config.MaxAttempts).
		Str("error_class", string(lastErr.Class)).
		Msg("Retry attempts exhausted")

	return zero, lastErr
}
