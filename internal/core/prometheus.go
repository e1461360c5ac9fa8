package core

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsRecorder records operation outcomes to a Prometheus
// registry. The /metrics endpoint serves the registry via promhttp.
type PrometheusMetricsRecorder struct {
	registry  *prometheus.Registry
	durations *prometheus.HistogramVec
	results   *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder constructs a recorder with its own registry.
func NewPrometheusMetricsRecorder() *PrometheusMetricsRecorder {
	registry := prometheus.NewRegistry()
	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "medghor",
		Subsystem: "inventory",
		Name:      "operation_duration_seconds",
		Help:      "Duration of inventory service operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	results := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "medghor",
		Subsystem: "inventory",
		Name:      "operation_results_total",
		Help:      "Count of inventory service operation outcomes.",
	}, []string{"operation", "status"})
	registry.MustRegister(durations, results)
	return &PrometheusMetricsRecorder{
		registry:  registry,
		durations: durations,
		results:   results,
	}
}

// Registry exposes the underlying registry for the metrics HTTP handler.
func (r *PrometheusMetricsRecorder) Registry() *prometheus.Registry { return r.registry }

// Observe records a service operation outcome.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
	r.results.WithLabelValues(operation, status).Inc()
}
