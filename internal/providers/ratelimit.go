package providers

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter wraps a token bucket limiter for controlling request rates to
// external catalog APIs. Safe for concurrent use.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a rate limiter sustaining ratePerSecond with the
// given burst.
//
// Example configurations:
//   - OpenLibrary: NewRateLimiter(5, 5)
//   - Google Books (unauthenticated): NewRateLimiter(1, 2)
func NewRateLimiter(ratePerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}
}

// FromConfig derives a rate limiter from a provider's RateLimitConfig.
// A zero config yields a permissive limiter (10 rps, burst 10).
func FromConfig(cfg RateLimitConfig) *RateLimiter {
	if cfg.MaxRequests <= 0 || cfg.Window <= 0 {
		return NewRateLimiter(10, 10)
	}
	perSecond := float64(cfg.MaxRequests) / cfg.Window.Seconds()
	burst := cfg.MaxRequests
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Wait blocks until a request is allowed or the context is canceled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// Allow returns true and consumes a token if a request is allowed without
// waiting.
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// SetRate updates the sustained rate while preserving the burst size. Used
// to adjust dynamically when an API returns rate-limit headers.
func (r *RateLimiter) SetRate(ratePerSecond float64) {
	r.limiter.SetLimit(rate.Limit(ratePerSecond))
}

// Tokens returns the current number of available tokens, for monitoring.
func (r *RateLimiter) Tokens() float64 {
	return r.limiter.Tokens()
}
