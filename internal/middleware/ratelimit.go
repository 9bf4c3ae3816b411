package middleware

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter throttles outgoing session requests using a token bucket
// per command method, so that one noisy method (e.g. repeated WRITE calls)
// cannot starve the session's write side.
type RateLimiter struct {
	mu            sync.Mutex
	limiters      map[string]*rate.Limiter
	accessed      map[string]time.Time
	reqPerSec     float64
	burst         int
	cleanupTicker *time.Ticker
	done          chan struct{}
}

// NewRateLimiter creates a new rate limiter.
// reqPerSec: requests per second allowed per method.
// burst: maximum burst size.
func NewRateLimiter(reqPerSec float64, burst int) *RateLimiter {
	if reqPerSec <= 0 {
		reqPerSec = 10
	}
	if burst <= 0 {
		burst = 20
	}

	rl := &RateLimiter{
		limiters:  make(map[string]*rate.Limiter),
		accessed:  make(map[string]time.Time),
		reqPerSec: reqPerSec,
		burst:     burst,
		done:      make(chan struct{}),
	}

	rl.cleanupTicker = time.NewTicker(5 * time.Minute)
	go rl.cleanupLoop()

	return rl
}

// Allow checks whether a request for the given method is allowed right now.
// Returns nil if allowed, an error if the method's rate limit is exceeded.
func (r *RateLimiter) Allow(method string) error {
	r.mu.Lock()
	limiter, exists := r.limiters[method]
	if !exists {
		limiter = rate.NewLimiter(rate.Limit(r.reqPerSec), r.burst)
		r.limiters[method] = limiter
	}
	r.accessed[method] = time.Now()
	r.mu.Unlock()

	if !limiter.Allow() {
		return fmt.Errorf("rate limit exceeded for method %s", method)
	}

	return nil
}

// GetLimiter returns the limiter for a method (for testing/stats).
func (r *RateLimiter) GetLimiter(method string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.limiters[method]
}

// cleanupLoop periodically removes stale rate limiters to prevent memory leaks.
func (r *RateLimiter) cleanupLoop() {
	for {
		select {
		case <-r.done:
			r.cleanupTicker.Stop()
			return
		case <-r.cleanupTicker.C:
			r.cleanup()
		}
	}
}

// cleanup removes limiters that haven't been used recently.
func (r *RateLimiter) cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoffTime := time.Now().Add(-30 * time.Minute)
	for method, lastAccess := range r.accessed {
		if lastAccess.Before(cutoffTime) {
			delete(r.limiters, method)
			delete(r.accessed, method)
		}
	}
}

// Stop stops the cleanup goroutine.
func (r *RateLimiter) Stop() {
	close(r.done)
}

// Stats returns statistics about current limiters (for monitoring).
func (r *RateLimiter) Stats() map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	return map[string]interface{}{
		"active_methods":   len(r.limiters),
		"requests_per_sec": r.reqPerSec,
		"burst_size":       r.burst,
	}
}
