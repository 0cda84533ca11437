// Package metrics exports chatkeep operation metrics in Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chatkeep"

// Operation results.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultInvalid  = "invalid"
	ResultError    = "error"
)

// Title strategies.
const (
	StrategyFirstMessage = "first_message"
	StrategyExchange     = "exchange"
)

// Metrics holds the chatkeep collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	operations  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	titles      *prometheus.CounterVec
	httpRequest *prometheus.CounterVec
}

// Config configures the collectors.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns default buckets suited to local database calls.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}
}

// New creates and registers the collectors.
func New(cfg Config) *Metrics {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{registry: registry}

	m.operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Lifecycle operations by operation and result",
		},
		[]string{"operation", "result"},
	)
	m.duration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Lifecycle operation latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"operation"},
	)
	m.titles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "titles_total",
			Help:      "Chat titles derived, by heuristic",
		},
		[]string{"strategy"},
	)
	m.httpRequest = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route, and status",
		},
		[]string{"method", "route", "status"},
	)

	registry.MustRegister(m.operations, m.duration, m.titles, m.httpRequest)
	return m
}

// NewNop returns metrics backed by a private registry that nothing
// exposes.
func NewNop() *Metrics {
	return New(DefaultConfig())
}

// ObserveOperation records one lifecycle operation.
func (m *Metrics) ObserveOperation(operation, result string, took time.Duration) {
	m.operations.WithLabelValues(operation, result).Inc()
	m.duration.WithLabelValues(operation).Observe(took.Seconds())
}

// TitleDerived counts a title produced by strategy.
func (m *Metrics) TitleDerived(strategy string) {
	m.titles.WithLabelValues(strategy).Inc()
}

// ObserveHTTP counts one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int) {
	m.httpRequest.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
