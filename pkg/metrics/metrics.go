// Package metrics exposes prometheus instrumentation for the batch
// collector on a dedicated registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type Config struct {
	// Addr serves the /metrics endpoint; empty disables the listener.
	Addr string `env:"METRICS_ADDR,default="`
}

type Metrics struct {
	Registry *prometheus.Registry

	usersProcessedTotal prometheus.Counter
	usersSkippedTotal   *prometheus.CounterVec
	rowsWrittenTotal    prometheus.Counter
	runDuration         prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,

		usersProcessedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "collector_users_processed_total",
			Help: "Users whose collection pass completed",
		}),

		usersSkippedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "collector_users_skipped_total",
			Help: "Users skipped during collection runs",
		}, []string{"reason"}),

		rowsWrittenTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "collector_feature_rows_written_total",
			Help: "Feature rows written across all runs",
		}),

		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "collector_run_duration_seconds",
			Help:    "Duration of full collection runs in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}

	reg.MustRegister(
		m.usersProcessedTotal,
		m.usersSkippedTotal,
		m.rowsWrittenTotal,
		m.runDuration,
	)

	return m
}

func (m *Metrics) RecordUserProcessed() {
	m.usersProcessedTotal.Inc()
}

func (m *Metrics) RecordUserSkipped(reason string) {
	m.usersSkippedTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordRowsWritten(n int) {
	m.rowsWrittenTotal.Add(float64(n))
}

func (m *Metrics) ObserveRunDuration(d time.Duration) {
	m.runDuration.Observe(d.Seconds())
}
