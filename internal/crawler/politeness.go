package crawler

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// Politeness throttles fetches per target domain with token buckets.
type Politeness struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

// NewPoliteness builds a Politeness limiter. rps <= 0 disables throttling.
func NewPoliteness(rps float64, burst int) *Politeness {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &Politeness{
		limiters: make(map[string]*rate.Limiter),
		rps:      limit,
		burst:    burst,
	}
}

// Wait blocks until a token is available for the URL's domain.
func (p *Politeness) Wait(ctx context.Context, rawURL string) error {
	domain := "unknown"
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		domain = u.Hostname()
	}

	p.mu.Lock()
	limiter, ok := p.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(p.rps, p.burst)
		p.limiters[domain] = limiter
	}
	p.mu.Unlock()

	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("politeness wait: %w", err)
	}
	return nil
}
