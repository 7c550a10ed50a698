package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for change notifications.
type Metrics struct {
	Published           prometheus.Counter
	Failures            prometheus.Counter
	FallbackUsed        prometheus.Counter
	CircuitBreakerState prometheus.Gauge
}

// NewMetrics registers notification metrics with the default registry.
func NewMetrics() *Metrics {
	return newMetrics(promauto.With(prometheus.DefaultRegisterer))
}

// NewMetricsWith registers notification metrics with reg. Tests pass a fresh
// registry to avoid duplicate registration.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	return newMetrics(promauto.With(reg))
}

func newMetrics(f promauto.Factory) *Metrics {
	return &Metrics{
		Published: f.NewCounter(prometheus.CounterOpts{
			Name: "orgatlas_notifications_published_total",
			Help: "Total number of change notifications delivered by the primary publisher",
		}),
		Failures: f.NewCounter(prometheus.CounterOpts{
			Name: "orgatlas_notifications_failures_total",
			Help: "Total number of change notifications the primary publisher failed to deliver",
		}),
		FallbackUsed: f.NewCounter(prometheus.CounterOpts{
			Name: "orgatlas_notifications_fallback_total",
			Help: "Total number of change notifications routed to the fallback publisher",
		}),
		CircuitBreakerState: f.NewGauge(prometheus.GaugeOpts{
			Name: "orgatlas_notifications_circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed/healthy, 1=open/unhealthy)",
		}),
	}
}

func (m *Metrics) IncPublished() {
	if m != nil {
		m.Published.Inc()
	}
}

func (m *Metrics) IncFailures() {
	if m != nil {
		m.Failures.Inc()
	}
}

func (m *Metrics) IncFallbackUsed() {
	if m != nil {
		m.FallbackUsed.Inc()
	}
}

func (m *Metrics) SetCircuitBreakerState(open bool) {
	if m == nil {
		return
	}
	if open {
		m.CircuitBreakerState.Set(1)
	} else {
		m.CircuitBreakerState.Set(0)
	}
}
