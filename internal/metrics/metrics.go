// Package metrics exposes Prometheus counters for the dependency service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tasktrack"

// Metrics holds every collector on its own registry. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Deliveries counts per-channel delivery attempts.
	// Labels: channel (email, inApp, push), status (delivered, failed, skipped)
	Deliveries *prometheus.CounterVec

	// Notifications counts notifications reaching a final state.
	// Labels: type, status (delivered, failed, retried)
	Notifications *prometheus.CounterVec

	// Mutations counts committed dependency writes.
	// Labels: action (create, update, remove, reactivate)
	Mutations *prometheus.CounterVec

	// CacheLookups counts read-through lookups.
	// Labels: result (hit, miss, error)
	CacheLookups *prometheus.CounterVec

	// HookFailures counts post-commit side effects that failed.
	// Labels: hook
	HookFailures *prometheus.CounterVec

	// HTTPRequests measures request latency.
	// Labels: method, status
	HTTPRequests *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notification",
			Name:      "deliveries_total",
			Help:      "Delivery attempts by channel and outcome.",
		}, []string{"channel", "status"}),
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notification",
			Name:      "processed_total",
			Help:      "Notifications processed by type and resulting status.",
		}, []string{"type", "status"}),
		Mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dependency",
			Name:      "mutations_total",
			Help:      "Committed dependency mutations by action.",
		}, []string{"action"}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Read-through cache lookups by result.",
		}, []string{"result"}),
		HookFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dependency",
			Name:      "hook_failures_total",
			Help:      "Post-commit side effects that failed, by hook.",
		}, []string{"hook"}),
		HTTPRequests: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Delivery(channel, status string) {
	if m != nil {
		m.Deliveries.WithLabelValues(channel, status).Inc()
	}
}

func (m *Metrics) Processed(notificationType, status string) {
	if m != nil {
		m.Notifications.WithLabelValues(notificationType, status).Inc()
	}
}

func (m *Metrics) Mutation(action string) {
	if m != nil {
		m.Mutations.WithLabelValues(action).Inc()
	}
}

func (m *Metrics) CacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) HookFailed(hook string) {
	if m != nil {
		m.HookFailures.WithLabelValues(hook).Inc()
	}
}

func (m *Metrics) ObserveHTTP(method, status string, seconds float64) {
	if m != nil {
		m.HTTPRequests.WithLabelValues(method, status).Observe(seconds)
	}
}
