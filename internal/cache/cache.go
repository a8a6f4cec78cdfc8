// Package cache provides an expiring LRU cache for finished reports.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/resodo/contact-crawler/internal/report"
)

// Config controls cache capacity and entry lifetime.
type Config struct {
	MaxEntries int
	TTL        time.Duration
}

// ReportCache caches finished reports keyed by website and resolution text.
// PDF bytes are not cached; a hit replays the stored report as JSON.
type ReportCache struct {
	lru *expirable.LRU[string, report.Report]
}

// New builds a ReportCache.
func New(cfg Config) *ReportCache {
	size := cfg.MaxEntries
	if size <= 0 {
		size = 256
	}
	return &ReportCache{
		lru: expirable.NewLRU[string, report.Report](size, nil, cfg.TTL),
	}
}

// Key derives the cache key for a request.
func Key(website, resolution string) string {
	return website + "|" + resolution
}

// Get returns a cached report.
func (c *ReportCache) Get(key string) (report.Report, bool) {
	return c.lru.Get(key)
}

// Put stores a finished report.
func (c *ReportCache) Put(key string, r report.Report) {
	c.lru.Add(key, r)
}

// Len returns the number of live entries.
func (c *ReportCache) Len() int {
	return c.lru.Len()
}

// Purge drops every entry.
func (c *ReportCache) Purge() {
	c.lru.Purge()
}
