package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds process-wide Prometheus metrics: transaction retries and HTTP
// latency. Methods are no-ops on a nil receiver.
type Metrics struct {
	TxAttempts   *prometheus.CounterVec
	TxRetries    *prometheus.CounterVec
	TxExhausted  *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New creates and registers all platform metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers on reg. Tests pass prometheus.NewRegistry().
func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TxAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "orgatlas_tx_attempts_total",
			Help: "Total number of write transaction attempts",
		}, []string{"backend"}),
		TxRetries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "orgatlas_tx_retries_total",
			Help: "Total number of write transactions retried after serialization conflicts",
		}, []string{"backend"}),
		TxExhausted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "orgatlas_tx_exhausted_total",
			Help: "Total number of write transactions that failed after all retries",
		}, []string{"backend"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "orgatlas_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route pattern",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) IncTxAttempt(backend string) {
	if m != nil {
		m.TxAttempts.WithLabelValues(backend).Inc()
	}
}

func (m *Metrics) IncTxRetry(backend string) {
	if m != nil {
		m.TxRetries.WithLabelValues(backend).Inc()
	}
}

func (m *Metrics) IncTxExhausted(backend string) {
	if m != nil {
		m.TxExhausted.WithLabelValues(backend).Inc()
	}
}

// ObserveHTTP records a finished request. Call with time.Now() taken before
// the handler ran.
func (m *Metrics) ObserveHTTP(method, route string, status int, start time.Time) {
	if m == nil {
		return
	}
	m.HTTPDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}
