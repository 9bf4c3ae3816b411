// Package retry implements the exponential-backoff retry loop the demo
// binary wraps around its initial dial to a Loco endpoint, so a transient
// refusal doesn't fail check-in outright.
package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Config holds retry configuration
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// Observer is notified after each dial attempt, whether it succeeded or
// failed, so a caller can record per-attempt outcomes (e.g. a Prometheus
// counter) without having to wrap fn itself.
type Observer func(attempt int, err error)

func notify(observers []Observer, attempt int, err error) {
	for _, obs := range observers {
		obs(attempt, err)
	}
}

// Do retries fn — a single dial attempt — with exponential backoff.
func Do(ctx context.Context, cfg Config, fn func() error, observers ...Observer) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = 1 * time.Second
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 30 * time.Second
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 2.0
	}

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		// Check context before attempting
		select {
		case <-ctx.Done():
			return fmt.Errorf("dial retry cancelled: %w", ctx.Err())
		default:
		}

		// Try the dial
		err := fn()
		notify(observers, attempt+1, err)
		if err == nil {
			return nil
		}

		lastErr = err

		// If this was the last attempt, don't wait
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		// Wait before retry
		select {
		case <-time.After(delay):
			// Continue
		case <-ctx.Done():
			return fmt.Errorf("dial retry cancelled: %w", ctx.Err())
		}

		// Calculate next delay with exponential backoff
		nextDelay := time.Duration(float64(delay) * cfg.Multiplier)
		if nextDelay > cfg.MaxDelay {
			nextDelay = cfg.MaxDelay
		}
		delay = nextDelay
	}

	return fmt.Errorf("dial failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}

// DoWithJitter retries fn — a single dial attempt — with exponential
// backoff and jitter, so a fleet of clients reconnecting to the same
// endpoint doesn't retry in lockstep.
func DoWithJitter(ctx context.Context, cfg Config, jitterFraction float64, fn func() error, observers ...Observer) error {
	if jitterFraction < 0 || jitterFraction > 1 {
		jitterFraction = 0.1
	}

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("dial retry cancelled: %w", ctx.Err())
		default:
		}

		err := fn()
		notify(observers, attempt+1, err)
		if err == nil {
			return nil
		}

		lastErr = err

		if attempt == cfg.MaxAttempts-1 {
			break
		}

		// Add jitter
		jitter := time.Duration(float64(delay) * jitterFraction)
		jitterAmount := time.Duration(rand.Float64()*float64(jitter*2) - float64(jitter))
		actualDelay := delay + jitterAmount
		if actualDelay < 0 {
			actualDelay = delay
		}

		select {
		case <-time.After(actualDelay):
		case <-ctx.Done():
			return fmt.Errorf("dial retry cancelled: %w", ctx.Err())
		}

		nextDelay := time.Duration(float64(delay) * cfg.Multiplier)
		if nextDelay > cfg.MaxDelay {
			nextDelay = cfg.MaxDelay
		}
		delay = nextDelay
	}

	return fmt.Errorf("dial failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}
