package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Leasing holds the counters the leasing engine reports.
type Leasing struct {
	Registry        *prometheus.Registry
	Operations      *prometheus.CounterVec
	Conflicts       *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

func NewLeasing(namespace string) *Leasing {
	registry := prometheus.NewRegistry()

	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "leasing_operations_total",
		Help:      "Leasing operations by operation and outcome.",
	}, []string{"operation", "outcome"})

	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "leasing_version_conflicts_total",
		Help:      "Optimistic concurrency conflicts by operation.",
	}, []string{"operation"})

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	registry.MustRegister(
		operations,
		conflicts,
		requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Leasing{
		Registry:        registry,
		Operations:      operations,
		Conflicts:       conflicts,
		RequestDuration: requestDuration,
	}
}

func (m *Leasing) ObserveOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, outcome).Inc()
}

func (m *Leasing) ObserveConflict(operation string) {
	if m == nil {
		return
	}
	m.Conflicts.WithLabelValues(operation).Inc()
}

func (m *Leasing) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
