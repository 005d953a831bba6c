package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the catalog service.
type Metrics struct {
	CatalogEntries *prometheus.GaugeVec   // labels: category
	Lookups        *prometheus.CounterVec // labels: endpoint, result={hit,miss,error}

	// Catalog publishing.
	MessagesProduced prometheus.Counter
	PublishErrors    prometheus.Counter
	PublisherRunning prometheus.Gauge
	BatchSize        prometheus.Histogram

	// DWD CAP feed.
	FeedRequests    *prometheus.CounterVec // labels: outcome={success,error}
	FeedCache       *prometheus.CounterVec // labels: result={hit,miss}
	FeedAPIDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.CatalogEntries,
		m.Lookups,
		m.MessagesProduced,
		m.PublishErrors,
		m.PublisherRunning,
		m.BatchSize,
		m.FeedRequests,
		m.FeedCache,
		m.FeedAPIDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CatalogEntries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "warncodes",
			Name:      "catalog_entries",
			Help:      "Number of warning codes loaded per category.",
		}, []string{"category"}),
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "warncodes",
			Name:      "lookups_total",
			Help:      "Catalog lookups by endpoint and result.",
		}, []string{"endpoint", "result"}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "warncodes",
			Name:      "messages_produced_total",
			Help:      "Total catalog entries written to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "warncodes",
			Name:      "publish_errors_total",
			Help:      "Total failed batch writes to the sink topic.",
		}),
		PublisherRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "warncodes",
			Name:      "publisher_running",
			Help:      "1 while a catalog snapshot is being published, 0 otherwise.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "warncodes",
			Name:      "batch_size",
			Help:      "Number of catalog entries per published batch.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		FeedRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "warncodes",
			Name:      "feed_requests_total",
			Help:      "DWD CAP feed downloads by outcome.",
		}, []string{"outcome"}),
		FeedCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "warncodes",
			Name:      "feed_cache_total",
			Help:      "DWD CAP feed cache lookups by result.",
		}, []string{"result"}),
		FeedAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "warncodes",
			Name:      "feed_api_duration_seconds",
			Help:      "DWD CAP feed download and decode duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// SetCatalogEntries publishes per-category entry counts.
func (m *Metrics) SetCatalogEntries(counts map[string]int) {
	for category, n := range counts {
		m.CatalogEntries.WithLabelValues(category).Set(float64(n))
	}
}
