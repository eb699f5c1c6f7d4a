package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	defaultMaxAttempts   = 3
	defaultInitialDelay  = 500 * time.Millisecond
	defaultRetryAfterCap = 30 * time.Second
	delayMultiplier      = 2
)

// RetryConfig configures retry behavior for transient lookup failures.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	RetryAfterCap time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   defaultMaxAttempts,
		InitialDelay:  defaultInitialDelay,
		RetryAfterCap: defaultRetryAfterCap,
	}
}

// LookupWithRetry performs a lookup, retrying transient failures with
// exponential backoff up to the configured bound. ErrNotFound and other
// non-transient errors are returned immediately. Rate-limit responses
// honor the provider's Retry-After delay, capped.
func LookupWithRetry(ctx context.Context, s Searcher, title string, year int, cfg RetryConfig) (*Match, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}

	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = defaultInitialDelay
	}

	if cfg.RetryAfterCap <= 0 {
		cfg.RetryAfterCap = defaultRetryAfterCap
	}

	var lastErr error

	delay := cfg.InitialDelay

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			wait := delay

			var rae *RetryAfterError
			if errors.As(lastErr, &rae) && rae.Delay > wait {
				wait = min(rae.Delay, cfg.RetryAfterCap)
			}

			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("lookup retry interrupted: %w", ctx.Err())
			case <-time.After(wait):
				delay *= delayMultiplier
			}
		}

		match, err := s.Lookup(ctx, title, year)
		if err == nil {
			return match, nil
		}

		if !errors.Is(err, ErrTransient) {
			return nil, err
		}

		lastErr = err
	}

	return nil, lastErr
}
