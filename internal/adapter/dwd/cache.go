package dwd

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/couchcryptid/dwd-warncodes/internal/domain"
	"github.com/couchcryptid/dwd-warncodes/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Fetcher returns the current set of alerts from a feed.
type Fetcher interface {
	FetchAlerts(ctx context.Context) ([]domain.Alert, error)
}

// CachedFeed wraps a Fetcher and reuses its last successful result for ttl.
type CachedFeed struct {
	inner   Fetcher
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics

	mu        sync.Mutex
	alerts    []domain.Alert
	fetchedAt time.Time
	valid     bool
}

// NewCachedFeed creates a cache decorator around a feed. A nil clock uses
// real time.
func NewCachedFeed(inner Fetcher, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedFeed {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CachedFeed{
		inner:   inner,
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
	}
}

// FetchAlerts returns the cached alerts while they are fresh and refetches
// otherwise. Errors are returned as-is and leave the cache untouched.
func (c *CachedFeed) FetchAlerts(ctx context.Context) ([]domain.Alert, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if c.valid && now.Sub(c.fetchedAt) < c.ttl {
		c.metrics.FeedCache.WithLabelValues("hit").Inc()
		return slices.Clone(c.alerts), nil
	}
	c.metrics.FeedCache.WithLabelValues("miss").Inc()

	alerts, err := c.inner.FetchAlerts(ctx)
	if err != nil {
		return nil, err
	}
	c.alerts = alerts
	c.fetchedAt = now
	c.valid = true
	return slices.Clone(alerts), nil
}
