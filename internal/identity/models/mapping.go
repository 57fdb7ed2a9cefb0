package models

import (
	"time"

	id "rosterid/pkg/domain"
	dErrors "rosterid/pkg/domain-errors"
)

// MatchMethod records how a mapping was produced.
type MatchMethod string

const (
	MethodExact  MatchMethod = "exact"
	MethodFuzzy  MatchMethod = "fuzzy"
	MethodManual MatchMethod = "manual"
)

func (m MatchMethod) IsValid() bool {
	return m == MethodExact || m == MethodFuzzy || m == MethodManual
}

// IdentityMapping binds one season record to one MasterIdentity.
//
// Invariant: at most one mapping exists per RecordKey.
type IdentityMapping struct {
	ID          id.MappingID  `json:"id"`
	IdentityID  id.IdentityID `json:"identity_id"`
	Record      RecordKey     `json:"record"`
	DisplayName string        `json:"display_name"`
	Confidence  float64       `json:"confidence"`
	Method      MatchMethod   `json:"method"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func NewIdentityMapping(mappingID id.MappingID, identityID id.IdentityID, r RawRecord, confidence float64, method MatchMethod, now time.Time) (*IdentityMapping, error) {
	if identityID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "mapping requires an identity")
	}
	if !method.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown match method")
	}
	if confidence < 0 || confidence > 1 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "mapping confidence must be within [0,1]")
	}
	return &IdentityMapping{
		ID:          mappingID,
		IdentityID:  identityID,
		Record:      r.Key(),
		DisplayName: r.DisplayName,
		Confidence:  confidence,
		Method:      method,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Clone returns a copy safe to mutate.
func (m *IdentityMapping) Clone() *IdentityMapping {
	if m == nil {
		return nil
	}
	out := *m
	return &out
}

// MappingIDs lists the ids of mappings in order.
func MappingIDs(mappings []*IdentityMapping) []id.MappingID {
	out := make([]id.MappingID, 0, len(mappings))
	for _, m := range mappings {
		out = append(out, m.ID)
	}
	return out
}
