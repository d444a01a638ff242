package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// extraction pipeline and batch driver.
type Metrics struct {
	MessagesConsumed  prometheus.Counter
	MessagesExtracted prometheus.Counter
	RowsWritten       prometheus.Counter
	ImagesWritten     prometheus.Counter
	BagsProcessed     prometheus.Counter
	BagFailures       prometheus.Counter
	BagDuration       prometheus.Histogram
	ExtractRunning    prometheus.Gauge
}

// NewMetrics creates and registers all extraction metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.MessagesConsumed,
		m.MessagesExtracted,
		m.RowsWritten,
		m.ImagesWritten,
		m.BagsProcessed,
		m.BagFailures,
		m.BagDuration,
		m.ExtractRunning,
	)

	return m
}

// NewMetricsForTesting creates Metrics without touching the default registry
// to avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bagextract",
			Name:      "messages_consumed_total",
			Help:      "Total messages streamed out of bags, configured topics or not.",
		}),
		MessagesExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bagextract",
			Name:      "messages_extracted_total",
			Help:      "Total messages accepted by the sampling policy and extracted.",
		}),
		RowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bagextract",
			Name:      "rows_written_total",
			Help:      "Total CSV rows written across all tabular sinks.",
		}),
		ImagesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bagextract",
			Name:      "images_written_total",
			Help:      "Total image frames written across all image sinks.",
		}),
		BagsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bagextract",
			Name:      "bags_processed_total",
			Help:      "Total bags fully processed, successfully or not.",
		}),
		BagFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bagextract",
			Name:      "bag_failures_total",
			Help:      "Total bags that aborted with an error.",
		}),
		BagDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bagextract",
			Name:      "bag_duration_seconds",
			Help:      "Wall-clock duration of one bag's extraction.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 600},
		}),
		ExtractRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bagextract",
			Name:      "extract_running",
			Help:      "1 while a bag is being extracted, 0 otherwise.",
		}),
	}
}
