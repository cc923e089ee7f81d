// Package metrics exposes import counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics implements core.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	Rows           *prometheus.CounterVec
	Writes         *prometheus.CounterVec
	Vocabulary     *prometheus.CounterVec
	ImportDuration *prometheus.HistogramVec
}

// New registers the importer metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Rows: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vetimport_rows_total",
			Help: "Extract rows processed, by outcome (imported, skipped, failed)",
		}, []string{"outcome"}),
		Writes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vetimport_entity_writes_total",
			Help: "Entity writes, by entity and operation (created, updated)",
		}, []string{"entity", "op"}),
		Vocabulary: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vetimport_vocabulary_created_total",
			Help: "Rank, branch and war values created",
		}, []string{"vocabulary"}),
		ImportDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vetimport_import_duration_seconds",
			Help:    "Wall time of finished imports, by final status",
			Buckets: prometheus.ExponentialBuckets(0.05, 4, 8),
		}, []string{"status"}),
	}
}

func (m *Metrics) RecordRow(outcome string) {
	if m == nil {
		return
	}
	m.Rows.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordWrite(entity, op string) {
	if m == nil {
		return
	}
	m.Writes.WithLabelValues(entity, op).Inc()
}

func (m *Metrics) RecordVocabulary(vocab string, created int) {
	if m == nil || created <= 0 {
		return
	}
	m.Vocabulary.WithLabelValues(vocab).Add(float64(created))
}

func (m *Metrics) ObserveImport(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.ImportDuration.WithLabelValues(status).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
