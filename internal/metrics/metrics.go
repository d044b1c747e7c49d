// Package metrics exposes pipeline counters over a private Prometheus
// registry so embedding applications never collide on the default one.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records pipeline activity. A nil *Metrics is a valid no-op
// recorder, so components can take one without wiring conditionals.
type Metrics struct {
	registry *prometheus.Registry

	documentsScored    *prometheus.CounterVec
	fastPathResults    *prometheus.CounterVec
	aiClassifications  *prometheus.CounterVec
	stageDuration      *prometheus.HistogramVec
	patternsRegistered prometheus.Gauge
}

// New creates a Metrics backed by its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	documentsScored := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bidsift",
			Subsystem: "pipeline",
			Name:      "documents_scored_total",
			Help:      "Documents scored, per trade.",
		},
		[]string{"trade"},
	)
	fastPathResults := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bidsift",
			Subsystem: "pipeline",
			Name:      "fastpath_results_total",
			Help:      "Fast-path extraction results by source type and quality.",
		},
		[]string{"source_type", "quality"},
	)
	aiClassifications := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bidsift",
			Subsystem: "pipeline",
			Name:      "ai_classifications_total",
			Help:      "AI classification outcomes by provider and status.",
		},
		[]string{"provider", "status"},
	)
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bidsift",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)
	patternsRegistered := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "bidsift",
			Subsystem: "pipeline",
			Name:      "patterns_registered",
			Help:      "Trades currently registered in the pattern registry.",
		},
	)

	registry.MustRegister(
		documentsScored,
		fastPathResults,
		aiClassifications,
		stageDuration,
		patternsRegistered,
	)

	return &Metrics{
		registry:           registry,
		documentsScored:    documentsScored,
		fastPathResults:    fastPathResults,
		aiClassifications:  aiClassifications,
		stageDuration:      stageDuration,
		patternsRegistered: patternsRegistered,
	}
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordScored counts n documents scored for a trade.
func (m *Metrics) RecordScored(trade string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.documentsScored.WithLabelValues(trade).Add(float64(n))
}

// RecordFastPath counts one fast-path result.
func (m *Metrics) RecordFastPath(sourceType, quality string) {
	if m == nil {
		return
	}
	m.fastPathResults.WithLabelValues(sourceType, quality).Inc()
}

// RecordClassification counts one classifier invocation outcome.
// status is ok, error, or skipped.
func (m *Metrics) RecordClassification(provider, status string) {
	if m == nil {
		return
	}
	if provider == "" {
		provider = "unknown"
	}
	m.aiClassifications.WithLabelValues(provider, status).Inc()
}

// ObserveStage records how long a pipeline stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// SetPatternsRegistered tracks the registered trade count.
func (m *Metrics) SetPatternsRegistered(n int) {
	if m == nil {
		return
	}
	m.patternsRegistered.Set(float64(n))
}
