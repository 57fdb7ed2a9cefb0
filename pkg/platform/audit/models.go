package audit

import (
	"context"
	"encoding/json"
	"time"

	id "rosterid/pkg/domain"
)

// EntityType names the kind of graph object an entry describes.
type EntityType string

const (
	EntityIdentity  EntityType = "master_identity"
	EntityMapping   EntityType = "identity_mapping"
	EntityCandidate EntityType = "match_candidate"
)

func (t EntityType) IsValid() bool {
	switch t {
	case EntityIdentity, EntityMapping, EntityCandidate:
		return true
	}
	return false
}

// Action is the mutation an entry records.
type Action string

const (
	ActionCreate   Action = "CREATE"
	ActionMerge    Action = "MERGE"
	ActionSplit    Action = "SPLIT"
	ActionUpdate   Action = "UPDATE"
	ActionDelete   Action = "DELETE"
	ActionRollback Action = "ROLLBACK"
)

// Actions lists every action in a fixed order; stats are reported in this order.
var Actions = []Action{ActionCreate, ActionMerge, ActionSplit, ActionUpdate, ActionDelete, ActionRollback}

func (a Action) IsValid() bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

// Entry is an append-only record of one identity-graph mutation.
//
// Invariants:
//   - entries are never updated or deleted once appended
//   - BeforeState/AfterState are JSON snapshots owned by the writer; readers
//     must not assume a shape other than what the writer's Action implies
//   - RollbackOf is set only on ActionRollback entries
type Entry struct {
	ID          id.AuditID
	EntityType  EntityType
	EntityID    string
	Action      Action
	BeforeState json.RawMessage
	AfterState  json.RawMessage
	Reason      string
	PerformedBy string
	// GroupID is a league-like grouping used to query team activity together.
	GroupID    string
	RollbackOf *id.AuditID
	Timestamp  time.Time
}

// Filter narrows List. Zero-valued fields do not filter.
type Filter struct {
	EntityType  EntityType
	EntityID    string
	PerformedBy string
	GroupID     string
	Action      Action
	Since       time.Time
	Until       time.Time
	Limit       int
}

// Matches reports whether e satisfies every populated field of f.
func (f Filter) Matches(e Entry) bool {
	if f.EntityType != "" && e.EntityType != f.EntityType {
		return false
	}
	if f.EntityID != "" && e.EntityID != f.EntityID {
		return false
	}
	if f.PerformedBy != "" && e.PerformedBy != f.PerformedBy {
		return false
	}
	if f.GroupID != "" && e.GroupID != f.GroupID {
		return false
	}
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && !e.Timestamp.Before(f.Until) {
		return false
	}
	return true
}

//go:generate mockgen -source=models.go -destination=mocks/mocks.go -package=mocks Store

// Store persists audit entries. Implementations never modify an appended entry.
// List returns entries newest first.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	Get(ctx context.Context, entryID id.AuditID) (*Entry, error)
	List(ctx context.Context, filter Filter) ([]Entry, error)
	HasRollback(ctx context.Context, entryID id.AuditID) (bool, error)
}

// Snapshot marshals v for use as a before/after state. A nil v yields nil.
func Snapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}
