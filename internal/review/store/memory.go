package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"rosterid/internal/identity/models"
	id "rosterid/pkg/domain"
	"rosterid/pkg/platform/sentinel"
)

// InMemoryStore is a PendingMatchStore for tests and single-process runs.
type InMemoryStore struct {
	mu         sync.RWMutex
	candidates map[id.CandidateID]*models.MatchCandidate
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		candidates: make(map[id.CandidateID]*models.MatchCandidate),
	}
}

func (s *InMemoryStore) Put(_ context.Context, candidate *models.MatchCandidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[candidate.ID] = candidate.Clone()
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, candidateID id.CandidateID) (*models.MatchCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.candidates[candidateID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return c.Clone(), nil
}

func (s *InMemoryStore) List(_ context.Context, filter Filter) ([]*models.MatchCandidate, error) {
	s.mu.RLock()
	out := make([]*models.MatchCandidate, 0, len(s.candidates))
	for _, c := range s.candidates {
		if filter.matches(c) {
			out = append(out, c.Clone())
		}
	}
	s.mu.RUnlock()
	return limit(sortCandidates(out), filter.Limit), nil
}

func (s *InMemoryStore) Expire(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for candidateID, c := range s.candidates {
		if c.IsExpired(now) {
			delete(s.candidates, candidateID)
			removed++
		}
	}
	return removed, nil
}

func sortCandidates(cs []*models.MatchCandidate) []*models.MatchCandidate {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Confidence != cs[j].Confidence {
			return cs[i].Confidence > cs[j].Confidence
		}
		if !cs[i].CreatedAt.Equal(cs[j].CreatedAt) {
			return cs[i].CreatedAt.Before(cs[j].CreatedAt)
		}
		return cs[i].ID.String() < cs[j].ID.String()
	})
	return cs
}

func limit(cs []*models.MatchCandidate, n int) []*models.MatchCandidate {
	if n > 0 && len(cs) > n {
		return cs[:n]
	}
	return cs
}
