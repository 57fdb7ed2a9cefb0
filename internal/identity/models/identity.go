// Package models defines the identity graph: raw season records, master
// identities, their per-season mappings and pending match candidates.
package models

import (
	"strings"
	"time"

	id "rosterid/pkg/domain"
	dErrors "rosterid/pkg/domain-errors"
)

type IdentityStatus string

const (
	IdentityStatusActive  IdentityStatus = "active"
	IdentityStatusDeleted IdentityStatus = "deleted"
)

// MasterIdentity is the canonical, season-spanning entity.
//
// Invariants:
//   - CanonicalName is non-empty
//   - Metadata kind matches Kind
//   - Status moves active -> deleted (merge or delete) and back only via rollback
//   - Version increases by one on every stored update
//
// Applying a match never changes an identity; only its mapping set grows.
// Merge, split, rename and owner-history continuity do change it.
type MasterIdentity struct {
	ID             id.IdentityID  `json:"id"`
	Kind           id.EntityKind  `json:"kind"`
	CanonicalName  string         `json:"canonical_name"`
	NameConfidence float64        `json:"name_confidence"`
	Metadata       Metadata       `json:"metadata"`
	Status         IdentityStatus `json:"status"`
	Version        int64          `json:"version"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      *time.Time     `json:"deleted_at,omitempty"`
}

// NewMasterIdentity seeds an identity from a record.
func NewMasterIdentity(identityID id.IdentityID, r RawRecord, confidence float64, now time.Time) (*MasterIdentity, error) {
	name := strings.TrimSpace(r.DisplayName)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "identity name cannot be empty")
	}
	if !r.Kind.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "identity kind is invalid")
	}
	return &MasterIdentity{
		ID:             identityID,
		Kind:           r.Kind,
		CanonicalName:  name,
		NameConfidence: confidence,
		Metadata:       MetadataFromRecord(r),
		Status:         IdentityStatusActive,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (m *MasterIdentity) IsActive() bool {
	return m.Status == IdentityStatusActive
}

// Clone returns a deep copy safe to mutate.
func (m *MasterIdentity) Clone() *MasterIdentity {
	if m == nil {
		return nil
	}
	out := *m
	out.Metadata = m.Metadata.Clone()
	if m.DeletedAt != nil {
		t := *m.DeletedAt
		out.DeletedAt = &t
	}
	return &out
}

// MarkDeleted soft-deletes the identity.
func (m *MasterIdentity) MarkDeleted(now time.Time) error {
	if !m.IsActive() {
		return dErrors.New(dErrors.CodeInvariantViolation, "identity is already deleted")
	}
	m.Status = IdentityStatusDeleted
	m.DeletedAt = &now
	m.UpdatedAt = now
	return nil
}

// Restore reactivates a soft-deleted identity.
func (m *MasterIdentity) Restore(now time.Time) {
	m.Status = IdentityStatusActive
	m.DeletedAt = nil
	m.UpdatedAt = now
}

// Rename changes the canonical name and keeps the old one as an alternate.
func (m *MasterIdentity) Rename(name string, confidence float64, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return dErrors.New(dErrors.CodeValidation, "canonical name cannot be empty")
	}
	m.Metadata.AddAlternateName(m.CanonicalName, name)
	m.CanonicalName = name
	m.NameConfidence = confidence
	m.UpdatedAt = now
	return nil
}
