package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for resolution runs.
// All methods are safe on a nil receiver.
type Metrics struct {
	RecordsRead   *prometheus.CounterVec
	PairsCompared *prometheus.CounterVec
	PairErrors    *prometheus.CounterVec
	Decisions     *prometheus.CounterVec
	ApplyLatency  prometheus.Histogram
	RunDuration   *prometheus.HistogramVec
}

// New registers resolver metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RecordsRead: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rosterid_resolver_records_total",
			Help: "Records read from the feed by kind and outcome (accepted, invalid, filtered)",
		}, []string{"kind", "outcome"}),
		PairsCompared: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rosterid_resolver_pairs_compared_total",
			Help: "Cross-season record pairs scored, by kind",
		}, []string{"kind"}),
		PairErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rosterid_resolver_pair_errors_total",
			Help: "Pairs whose decision could not be carried out, by error code",
		}, []string{"code"}),
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rosterid_resolver_decisions_total",
			Help: "Scored pairs by kind and recommended action",
		}, []string{"kind", "action"}),
		ApplyLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "rosterid_resolver_apply_duration_seconds",
			Help:    "Time to bind one auto-approved pair in the identity graph",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		RunDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rosterid_resolver_run_duration_seconds",
			Help:    "Wall time of a resolution run, by kind",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"kind"}),
	}
}

func (m *Metrics) IncRecords(kind, outcome string) {
	if m == nil {
		return
	}
	m.RecordsRead.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) IncPairsCompared(kind string) {
	if m == nil {
		return
	}
	m.PairsCompared.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncPairError(code string) {
	if m == nil {
		return
	}
	m.PairErrors.WithLabelValues(code).Inc()
}

func (m *Metrics) IncDecision(kind, action string) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(kind, action).Inc()
}

func (m *Metrics) ObserveApply(d time.Duration) {
	if m == nil {
		return
	}
	m.ApplyLatency.Observe(d.Seconds())
}

func (m *Metrics) ObserveRun(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.RunDuration.WithLabelValues(kind).Observe(d.Seconds())
}
