package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the process-wide instruments.
type Metrics struct {
	ImportsTotal        *prometheus.CounterVec
	ImportRowsTotal     *prometheus.CounterVec
	ImportRowFailures   *prometheus.CounterVec
	OperationDuration   *prometheus.HistogramVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics registers the instruments on the given registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		ImportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "results_imports_total",
			Help: "Number of results files imported, by outcome.",
		}, []string{"outcome"}),
		ImportRowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "results_import_rows_total",
			Help: "Number of result rows stored, by race.",
		}, []string{"race"}),
		ImportRowFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "results_import_row_failures_total",
			Help: "Number of rows dropped in strict mode, by race.",
		}, []string{"race"}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "results_operation_duration_seconds",
			Help:    "Duration of service operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Number of HTTP requests, by route and status.",
		}, []string{"route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests, by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	registry.MustRegister(
		m.ImportsTotal,
		m.ImportRowsTotal,
		m.ImportRowFailures,
		m.OperationDuration,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)

	return m
}

// RecordOperationDuration observes one service operation.
func (m *Metrics) RecordOperationDuration(operation string, d time.Duration) {
	m.OperationDuration.WithLabelValues(operation).Observe(d.Seconds())
}
