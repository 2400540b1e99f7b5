package chain

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per key, so distinct endpoints or
// actions throttle independently.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

// NewRateLimiter creates a limiter allowing perSecond requests with the
// given burst per key.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*rate.Limiter),
		limit:   rate.Limit(perSecond),
		burst:   burst,
	}
}

// Allow reports whether a request for the key may proceed now.
func (r *RateLimiter) Allow(key string) bool {
	return r.bucket(key).Allow()
}

// Wait blocks until a request for the key may proceed or ctx is canceled.
func (r *RateLimiter) Wait(ctx context.Context, key string) error {
	return r.bucket(key).Wait(ctx)
}

func (r *RateLimiter) bucket(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[key]
	if !ok {
		b = rate.NewLimiter(r.limit, r.burst)
		r.buckets[key] = b
	}
	return b
}
