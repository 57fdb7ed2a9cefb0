package memory

import (
	"context"
	"sort"
	"sync"

	id "rosterid/pkg/domain"
	audit "rosterid/pkg/platform/audit"
	"rosterid/pkg/platform/sentinel"
)

// InMemoryStore keeps audit entries in insertion order.
type InMemoryStore struct {
	mu         sync.RWMutex
	entries    []audit.Entry
	byID       map[id.AuditID]int
	rolledBack map[id.AuditID]bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:       make(map[id.AuditID]int),
		rolledBack: make(map[id.AuditID]bool),
	}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.byID = make(map[id.AuditID]int)
	s.rolledBack = make(map[id.AuditID]bool)
}

// Append stores entry. Re-appending an existing id is a no-op.
func (s *InMemoryStore) Append(_ context.Context, entry audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[entry.ID]; exists {
		return nil
	}
	s.byID[entry.ID] = len(s.entries)
	s.entries = append(s.entries, cloneEntry(entry))
	if entry.RollbackOf != nil {
		s.rolledBack[*entry.RollbackOf] = true
	}
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, entryID id.AuditID) (*audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[entryID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	e := cloneEntry(s.entries[idx])
	return &e, nil
}

// List returns matching entries newest first; ties keep reverse insertion order.
func (s *InMemoryStore) List(_ context.Context, filter audit.Filter) ([]audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]audit.Entry, 0)
	for i := len(s.entries) - 1; i >= 0; i-- {
		if filter.Matches(s.entries[i]) {
			result = append(result, cloneEntry(s.entries[i]))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (s *InMemoryStore) HasRollback(_ context.Context, entryID id.AuditID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rolledBack[entryID], nil
}

func cloneEntry(e audit.Entry) audit.Entry {
	out := e
	if e.BeforeState != nil {
		out.BeforeState = append([]byte(nil), e.BeforeState...)
	}
	if e.AfterState != nil {
		out.AfterState = append([]byte(nil), e.AfterState...)
	}
	if e.RollbackOf != nil {
		r := *e.RollbackOf
		out.RollbackOf = &r
	}
	return out
}
