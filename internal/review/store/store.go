// Package store holds match candidates awaiting review.
//
// Candidates are soft state: each carries an ExpiresAt after which it may be
// dropped, since a later resolution run recomputes the same pair.
package store

import (
	"context"
	"time"

	"rosterid/internal/identity/models"
	id "rosterid/pkg/domain"
)

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks PendingMatchStore

// PendingMatchStore persists match candidates keyed by candidate id.
//
// Put overwrites any candidate with the same id. Get returns a candidate
// until it is removed, expired or not; List skips candidates expired at
// Filter.Now. Expire removes every candidate expired at now and reports how
// many were removed.
type PendingMatchStore interface {
	Put(ctx context.Context, candidate *models.MatchCandidate) error
	Get(ctx context.Context, candidateID id.CandidateID) (*models.MatchCandidate, error)
	List(ctx context.Context, filter Filter) ([]*models.MatchCandidate, error)
	Expire(ctx context.Context, now time.Time) (int, error)
}

// Filter narrows List. Zero-valued fields do not filter. Results are ordered
// by descending confidence, then creation time.
type Filter struct {
	Kind   id.EntityKind
	Status models.CandidateStatus
	Limit  int
	// Now is the expiry reference; zero means wall-clock time.
	Now time.Time
}

func (f Filter) matches(c *models.MatchCandidate) bool {
	if f.Kind != "" && c.Kind != f.Kind {
		return false
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	return !c.IsExpired(f.now())
}

func (f Filter) now() time.Time {
	if f.Now.IsZero() {
		return time.Now()
	}
	return f.Now
}
