// Package metrics provides Prometheus metrics for sysproxy.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for sysproxy.
type Metrics struct {
	// OperationsTotal counts manager calls by operation and result.
	OperationsTotal *prometheus.CounterVec
	// OperationDuration observes how long each manager call blocked.
	OperationDuration *prometheus.HistogramVec
	// Mode is the proxy mode last written by this process.
	Mode prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a new Metrics instance with all metrics registered on a
// private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sysproxy_operations_total",
			Help: "Total number of proxy settings operations",
		},
		[]string{"operation", "result"},
	)

	m.OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sysproxy_operation_duration_seconds",
			Help:    "Duration of proxy settings operations",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		[]string{"operation"},
	)

	m.Mode = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sysproxy_mode",
			Help: "Proxy mode last applied by this process (0 = direct, 1 = manual, 2 = auto)",
		},
	)

	m.registry.MustRegister(
		m.OperationsTotal,
		m.OperationDuration,
		m.Mode,
	)

	m.registry.MustRegister(prometheus.NewGoCollector())
	m.registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	return m
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
