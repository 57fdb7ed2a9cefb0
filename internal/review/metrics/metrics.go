package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks the review queue. All methods are safe on a nil receiver.
type Metrics struct {
	CandidatesQueued  *prometheus.CounterVec
	Decisions         *prometheus.CounterVec
	CandidatesExpired prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CandidatesQueued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rosterid_review_candidates_queued_total",
			Help: "Match candidates added to the review queue, by kind",
		}, []string{"kind"}),
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rosterid_review_decisions_total",
			Help: "Review decisions recorded, by decision",
		}, []string{"decision"}),
		CandidatesExpired: f.NewCounter(prometheus.CounterOpts{
			Name: "rosterid_review_candidates_expired_total",
			Help: "Match candidates dropped after their retention window",
		}),
	}
}

func (m *Metrics) IncQueued(kind string) {
	if m == nil {
		return
	}
	m.CandidatesQueued.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncDecision(decision string) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(decision).Inc()
}

func (m *Metrics) AddExpired(n int) {
	if m == nil {
		return
	}
	m.CandidatesExpired.Add(float64(n))
}
