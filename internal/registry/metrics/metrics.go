package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registry module: committed writes
// per entity, import outcomes and operation latency.
type Metrics struct {
	EntityWrites      *prometheus.CounterVec
	Imports           *prometheus.CounterVec
	ImportedEntries   prometheus.Counter
	OperationDuration *prometheus.HistogramVec
}

// New creates a new Metrics instance registered on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers on reg.
func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		EntityWrites: f.NewCounterVec(prometheus.CounterOpts{
			Name: "orgatlas_entity_writes_total",
			Help: "Total number of committed entity writes",
		}, []string{"entity", "action"}),
		Imports: f.NewCounterVec(prometheus.CounterOpts{
			Name: "orgatlas_imports_total",
			Help: "Total number of bulk imports by outcome",
		}, []string{"status"}),
		ImportedEntries: f.NewCounter(prometheus.CounterOpts{
			Name: "orgatlas_imported_organizations_total",
			Help: "Total number of organizations created by successful imports",
		}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "orgatlas_operation_duration_seconds",
			Help:    "Duration of registry write operations including retries",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),
	}
}

// IncEntityWrite records a committed write.
func (m *Metrics) IncEntityWrite(entity, action string) {
	if m != nil {
		m.EntityWrites.WithLabelValues(entity, action).Inc()
	}
}

// IncImport records an import outcome; entries counts created organizations.
func (m *Metrics) IncImport(status string, entries int) {
	if m == nil {
		return
	}
	m.Imports.WithLabelValues(status).Inc()
	if entries > 0 {
		m.ImportedEntries.Add(float64(entries))
	}
}

// ObserveOperation records the duration of a write operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	if m != nil {
		m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
