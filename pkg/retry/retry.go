package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"igprofile/pkg/config"
	errs "igprofile/pkg/errors"
	"igprofile/pkg/logger"
)

// Operation is a unit of work that may be retried.
type Operation func(ctx context.Context) error

// Config holds retry configuration
type Config struct {
	// MaxAttempts is the total number of attempts; values below 1 mean one.
	MaxAttempts int
	// Backoff is used for every retryable error without a specific strategy.
	Backoff BackoffStrategy
	// RateLimitBackoff, when set, is used for rate_limit errors.
	RateLimitBackoff BackoffStrategy
	// RetryIf determines if an error should be retried
	RetryIf func(error) bool
	// OnRetry is called before sleeping for a retry
	OnRetry func(attempt int, err error, delay time.Duration)
	Logger  logger.Logger
}

// DefaultConfig returns a retry configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts:      3,
		Backoff:          DefaultExponentialBackoff(),
		RateLimitBackoff: ThrottleBackoff(),
		RetryIf:          DefaultRetryIf,
		Logger:           logger.NewNopLogger(),
	}
}

// FromSettings builds a Config from the retry section of the configuration.
// A disabled section yields a single-attempt Config.
func FromSettings(s config.RetryConfig, log logger.Logger) *Config {
	cfg := DefaultConfig()
	if log != nil {
		cfg.Logger = log
	}
	if !s.Enabled {
		cfg.MaxAttempts = 1
		return cfg
	}
	cfg.MaxAttempts = s.MaxAttempts
	cfg.Backoff = &ExponentialBackoff{
		BaseDelay:    s.BaseDelay,
		MaxDelay:     s.MaxDelay,
		Multiplier:   s.Multiplier,
		JitterFactor: s.JitterFactor,
	}
	return cfg
}

// DefaultRetryIf retries network, rate limit and server errors. Context
// errors are never retried; untyped errors are.
func DefaultRetryIf(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *errs.Error
	if errors.As(err, &apiErr) {
		return errs.IsRetryable(apiErr.Type)
	}
	return true
}

func (c *Config) backoffFor(err error) BackoffStrategy {
	if c.RateLimitBackoff != nil && errs.Is(err, errs.ErrorTypeRateLimit) {
		return c.RateLimitBackoff
	}
	if c.Backoff == nil {
		return DefaultExponentialBackoff()
	}
	return c.Backoff
}

// Do runs op until it succeeds, returns a non-retryable error, exhausts
// MaxAttempts or ctx is done.
func Do(ctx context.Context, cfg *Config, op Operation) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	retryIf := cfg.RetryIf
	if retryIf == nil {
		retryIf = DefaultRetryIf
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; ; attempt++ {
		err := op(ctx)
		if err == nil {
			if attempt > 1 {
				log.DebugWithFields("operation succeeded after retry", map[string]interface{}{
					"attempt": attempt,
				})
			}
			return nil
		}

		if !retryIf(err) {
			return err
		}
		if attempt >= maxAttempts {
			if maxAttempts > 1 {
				log.WithError(err).WarnWithFields("max retry attempts exceeded", map[string]interface{}{
					"attempts": attempt,
				})
				return fmt.Errorf("max retry attempts (%d) exceeded: %w", maxAttempts, err)
			}
			return err
		}

		delay := cfg.backoffFor(err).NextDelay(attempt)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, delay)
		}
		log.WithError(err).WarnWithFields("retrying operation", map[string]interface{}{
			"attempt":      attempt,
			"delay_ms":     delay.Milliseconds(),
			"max_attempts": maxAttempts,
		})

		if waitErr := Wait(ctx, delay); waitErr != nil {
			return fmt.Errorf("retry cancelled: %w", waitErr)
		}
	}
}

// DoWithResult is Do for operations that produce a value.
func DoWithResult[T any](ctx context.Context, cfg *Config, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := Do(ctx, cfg, func(ctx context.Context) error {
		var opErr error
		result, opErr = op(ctx)
		return opErr
	})
	return result, err
}
