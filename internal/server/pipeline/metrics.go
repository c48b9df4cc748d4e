package pipeline

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsObserver exports pipeline outcomes and stage timings to Prometheus.
type MetricsObserver struct {
	outcomes *prometheus.CounterVec
	stages   *prometheus.HistogramVec
}

// NewMetricsObserver creates the collectors and registers them with reg.
func NewMetricsObserver(reg prometheus.Registerer) *MetricsObserver {
	m := &MetricsObserver{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "diary",
			Subsystem: "pipeline",
			Name:      "outcomes_total",
			Help:      "Entries that reached a terminal status, by status.",
		}, []string{"status"}),
		stages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "diary",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Wall time spent in a pipeline stage.",
			Buckets:   []float64{.01, .05, .1, .5, 1, 5, 15, 30, 60, 120, 300},
		}, []string{"stage"}),
	}
	reg.MustRegister(m.outcomes, m.stages)
	return m
}

func (m *MetricsObserver) ObserveOutcome(_ context.Context, o Outcome) {
	m.outcomes.WithLabelValues(string(o.Status)).Inc()
}

func (m *MetricsObserver) ObserveStage(_ context.Context, stage Stage, d time.Duration) {
	m.stages.WithLabelValues(string(stage)).Observe(d.Seconds())
}
