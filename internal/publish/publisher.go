package publish

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/dwd-warncodes/internal/domain"
	"github.com/couchcryptid/dwd-warncodes/internal/observability"
)

// BatchLoader writes multiple catalog entries to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, entries []domain.WarningEntry) error
}

// Publisher ships a catalog snapshot to a BatchLoader.
type Publisher struct {
	loader    BatchLoader
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
	batchSize int

	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// New creates a Publisher writing batchSize entries per batch.
func New(l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Publisher {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Publisher{
		loader:         l,
		logger:         logger,
		metrics:        metrics,
		batchSize:      batchSize,
		initialBackoff: 200 * time.Millisecond,
		maxBackoff:     5 * time.Second,
	}
}

// CheckReadiness returns nil once a full snapshot has been published.
func (p *Publisher) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("catalog snapshot has not been published yet")
	}
	return nil
}

// Publish writes every entry of the catalog in category and document order.
// A failed batch is retried with exponential backoff until it succeeds or ctx
// ends, in which case the context error is returned.
func (p *Publisher) Publish(ctx context.Context, cat *domain.Catalog) error {
	entries := flatten(cat)
	p.logger.Info("publishing catalog", "entries", len(entries), "batch_size", p.batchSize)
	p.metrics.PublisherRunning.Set(1)
	defer p.metrics.PublisherRunning.Set(0)

	backoff := p.initialBackoff
	for start := 0; start < len(entries); {
		end := min(start+p.batchSize, len(entries))
		batch := entries[start:end]

		if err := p.loader.LoadBatch(ctx, batch); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.metrics.PublishErrors.Inc()
			p.logger.Error("load batch failed", "error", err, "batch_size", len(batch), "offset", start)
			if !sleepWithContext(ctx, backoff) {
				return ctx.Err()
			}
			backoff = nextBackoff(backoff, p.maxBackoff)
			continue
		}

		p.metrics.MessagesProduced.Add(float64(len(batch)))
		p.metrics.BatchSize.Observe(float64(len(batch)))
		backoff = p.initialBackoff
		start = end
	}

	p.ready.Store(true)
	p.logger.Info("catalog published", "entries", len(entries))
	return nil
}

func flatten(cat *domain.Catalog) []domain.WarningEntry {
	out := make([]domain.WarningEntry, 0, cat.Len())
	for _, c := range domain.Categories() {
		out = append(out, cat.Entries(c)...)
	}
	return out
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
