// Package telemetry records per-run retrieval counters in a private
// Prometheus registry, written out as a node-exporter textfile at the end
// of a run.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "bibstats"

// Retrieval stages.
const (
	StagePublications = "publications"
	StageCitations    = "citations"
	StageUsage        = "usage"
)

// Recorder collects counters for one run. A nil *Recorder is a no-op.
type Recorder struct {
	reg      *prometheus.Registry
	fetches  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	vectors  prometheus.Gauge
}

// NewRecorder creates a recorder backed by its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "fetches_total",
				Help:      "Collaborator fetches by retrieval stage and status",
			},
			[]string{"stage", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "fetch_duration_seconds",
				Help:      "Collaborator fetch latency in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"stage"},
		),
		vectors: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "attribute_vectors",
				Help:      "Number of attribute vectors built in the last run",
			},
		),
	}
	r.reg.MustRegister(r.fetches, r.duration, r.vectors)
	return r
}

// ObserveFetch records one fetch of a stage.
func (r *Recorder) ObserveFetch(stage string, err error, d time.Duration) {
	if r == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.fetches.WithLabelValues(stage, status).Inc()
	r.duration.WithLabelValues(stage).Observe(d.Seconds())
}

// SetVectors records the number of vectors built.
func (r *Recorder) SetVectors(n int) {
	if r == nil {
		return
	}
	r.vectors.Set(float64(n))
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// WriteTextfile writes all metrics to path in the Prometheus text format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
