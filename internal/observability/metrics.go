package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects intake metrics. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	// Terminal codes by name
	FileOutcome *prometheus.CounterVec

	// End-to-end processing latency per file
	ProcessLatency prometheus.Histogram

	// Stage latencies: extract, duplicate, validate, persist
	StageLatency *prometheus.HistogramVec

	// Notifications by kind and result: queued, written, failed, dropped
	Notifications *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance registered with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		FileOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ciw_intake_files_processed_total",
			Help: "Processed worksheet files by terminal code",
		}, []string{"code"}),

		ProcessLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ciw_intake_process_duration_seconds",
			Help:    "Duration of processing one worksheet file end to end",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		StageLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ciw_intake_stage_duration_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"stage"}),

		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ciw_intake_notifications_total",
			Help: "Notifications by kind and result",
		}, []string{"kind", "result"}),
	}
}

// IncrementOutcome records the terminal code of one file.
func (m *Metrics) IncrementOutcome(code string) {
	if m != nil {
		m.FileOutcome.WithLabelValues(code).Inc()
	}
}

// ObserveProcessLatency records the duration of one file.
func (m *Metrics) ObserveProcessLatency(d time.Duration) {
	if m != nil {
		m.ProcessLatency.Observe(d.Seconds())
	}
}

// ObserveStage records the duration of one pipeline stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m != nil {
		m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// IncrementNotification records a notification result.
func (m *Metrics) IncrementNotification(kind, result string) {
	if m != nil {
		m.Notifications.WithLabelValues(kind, result).Inc()
	}
}
