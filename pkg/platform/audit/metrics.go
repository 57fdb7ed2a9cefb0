package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for audit writes and the event stream.
// All methods are safe on a nil receiver.
type Metrics struct {
	EntriesWritten   *prometheus.CounterVec
	WriteFailures    prometheus.Counter
	EventsPublished  prometheus.Counter
	EventsDropped    prometheus.Counter
	SinkCircuitState prometheus.Gauge
}

// NewMetrics registers audit metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		EntriesWritten: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rosterid_audit_entries_written_total",
			Help: "Total number of audit entries persisted, by action",
		}, []string{"action"}),
		WriteFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "rosterid_audit_write_failures_total",
			Help: "Total number of audit entries that could not be persisted",
		}),
		EventsPublished: f.NewCounter(prometheus.CounterOpts{
			Name: "rosterid_audit_events_published_total",
			Help: "Total number of audit events delivered to the event sink",
		}),
		EventsDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "rosterid_audit_events_dropped_total",
			Help: "Total number of audit events dropped by the async publisher",
		}),
		SinkCircuitState: f.NewGauge(prometheus.GaugeOpts{
			Name: "rosterid_audit_sink_circuit_state",
			Help: "Event sink circuit breaker state (0=closed/healthy, 1=open/unhealthy)",
		}),
	}
}

func (m *Metrics) IncEntriesWritten(action Action) {
	if m == nil {
		return
	}
	m.EntriesWritten.WithLabelValues(string(action)).Inc()
}

func (m *Metrics) IncWriteFailures() {
	if m == nil {
		return
	}
	m.WriteFailures.Inc()
}

func (m *Metrics) AddEventsPublished(n int) {
	if m == nil {
		return
	}
	m.EventsPublished.Add(float64(n))
}

func (m *Metrics) AddEventsDropped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.EventsDropped.Add(float64(n))
}

// SetSinkCircuitState sets the circuit breaker state gauge.
func (m *Metrics) SetSinkCircuitState(open bool) {
	if m == nil {
		return
	}
	if open {
		m.SinkCircuitState.Set(1)
	} else {
		m.SinkCircuitState.Set(0)
	}
}
