// Package ratelimit implements per-client token bucket rate limiting.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config holds rate limiter configuration.
type Config struct {
	RequestsPerMinute int
	Burst             int
}

// Limiter manages per-client rate limits keyed by client IP.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	limit    rate.Limit
	burst    int
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New creates a new Limiter.
func New(cfg Config) *Limiter {
	limit := rate.Limit(float64(cfg.RequestsPerMinute) / 60.0)
	if cfg.RequestsPerMinute <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.RequestsPerMinute
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limiters: make(map[string]*clientLimiter),
		limit:    limit,
		burst:    burst,
	}
}

// Allow reports whether the client identified by key may proceed.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	cl, ok := l.limiters[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter.Allow()
}

// Sweep drops limiters idle for longer than maxIdle. Call periodically so
// the per-client map does not grow without bound.
func (l *Limiter) Sweep(maxIdle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := time.Now().Add(-maxIdle)
	removed := 0
	for key, cl := range l.limiters {
		if cl.lastSeen.Before(cutoff) {
			delete(l.limiters, key)
			removed++
		}
	}
	return removed
}
