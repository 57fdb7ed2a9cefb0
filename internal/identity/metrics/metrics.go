package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for identity graph mutations.
// All methods are safe on a nil receiver.
type Metrics struct {
	Operations        *prometheus.CounterVec
	ConflictRetries   *prometheus.CounterVec
	IdentitiesCreated prometheus.Counter
	MappingsWritten   *prometheus.CounterVec
}

// New registers identity metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rosterid_identity_operations_total",
			Help: "Identity graph operations by operation and outcome",
		}, []string{"operation", "outcome"}),
		ConflictRetries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rosterid_identity_conflict_retries_total",
			Help: "Transactions retried after a concurrent modification, by operation",
		}, []string{"operation"}),
		IdentitiesCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "rosterid_identities_created_total",
			Help: "Total number of master identities created",
		}),
		MappingsWritten: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rosterid_identity_mappings_written_total",
			Help: "Identity mappings created or updated, by match method",
		}, []string{"method"}),
	}
}

// ObserveOperation records the outcome of one operation ("ok" or an error code).
func (m *Metrics) ObserveOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) IncConflictRetry(operation string) {
	if m == nil {
		return
	}
	m.ConflictRetries.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncIdentitiesCreated() {
	if m == nil {
		return
	}
	m.IdentitiesCreated.Inc()
}

func (m *Metrics) IncMappingsWritten(method string) {
	if m == nil {
		return
	}
	m.MappingsWritten.WithLabelValues(method).Inc()
}
