// Package metric defines the Prometheus metrics published by the upload
// pipeline.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all pipeline-level metrics, labeled per destination
type Metrics struct {
	PostsTotal   *prometheus.CounterVec
	SkippedTotal *prometheus.CounterVec
	DroppedTotal *prometheus.CounterVec
	QueueDepth   *prometheus.GaugeVec
	PostDuration *prometheus.HistogramVec
	WorkerState  *prometheus.GaugeVec
}

// Post status label values
const (
	StatusSuccess  = "success"
	StatusFailed   = "failed"
	StatusBadLogin = "bad_login"
)

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		PostsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "weewx",
				Subsystem: "upload",
				Name:      "posts_total",
				Help:      "Total delivery attempts by outcome",
			},
			[]string{"destination", "status"},
		),

		SkippedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "weewx",
				Subsystem: "upload",
				Name:      "skipped_total",
				Help:      "Records skipped by the admission gate",
			},
			[]string{"destination", "reason"},
		),

		DroppedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "weewx",
				Subsystem: "upload",
				Name:      "dropped_total",
				Help:      "Tasks dropped by backlog trimming",
			},
			[]string{"destination"},
		),

		QueueDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "weewx",
				Subsystem: "upload",
				Name:      "queue_depth",
				Help:      "Queued-but-undelivered tasks",
			},
			[]string{"destination"},
		),

		PostDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "weewx",
				Subsystem: "upload",
				Name:      "post_duration_seconds",
				Help:      "Time spent delivering one task, retries included",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"destination"},
		),

		WorkerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "weewx",
				Subsystem: "upload",
				Name:      "worker_state",
				Help:      "Worker state (0=running, 1=stopped on shutdown, 2=stopped fatal)",
			},
			[]string{"destination"},
		),
	}
}

// Register registers all metrics with a Prometheus registry
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.PostsTotal,
		m.SkippedTotal,
		m.DroppedTotal,
		m.QueueDepth,
		m.PostDuration,
		m.WorkerState,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
