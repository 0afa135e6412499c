package memory

import (
	"context"
	"sync"
	"time"

	"github.com/arix/server/internal/port/outbound"
	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter implements outbound.RateLimiterPort with token buckets.
// Each key refills at limit/window and bursts up to limit.
type rateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	idleTTL  time.Duration
}

// NewRateLimiter creates an in-memory rate limiter.
func NewRateLimiter() outbound.RateLimiterPort {
	return &rateLimiter{
		limiters: make(map[string]*limiterEntry),
		idleTTL:  10 * time.Minute,
	}
}

func (r *rateLimiter) get(key string, limit int, window time.Duration) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	e, ok := r.limiters[key]
	if !ok {
		every := rate.Every(window / time.Duration(max(limit, 1)))
		e = &limiterEntry{limiter: rate.NewLimiter(every, limit)}
		r.limiters[key] = e
		r.evictLocked(now)
	}
	e.lastSeen = now
	return e.limiter
}

// evictLocked drops limiters that have been idle long enough to be full again.
func (r *rateLimiter) evictLocked(now time.Time) {
	for k, e := range r.limiters {
		if now.Sub(e.lastSeen) > r.idleTTL {
			delete(r.limiters, k)
		}
	}
}

func (r *rateLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	return r.get(key, limit, window).Allow(), nil
}

func (r *rateLimiter) GetRemaining(_ context.Context, key string, limit int, window time.Duration) (int, error) {
	tokens := int(r.get(key, limit, window).Tokens())
	if tokens < 0 {
		tokens = 0
	}
	return tokens, nil
}

// Compile-time check
var _ outbound.RateLimiterPort = (*rateLimiter)(nil)
