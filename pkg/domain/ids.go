// Package domain holds typed identifiers shared across modules.
//
// Typed IDs keep identity, mapping and candidate references from being mixed
// up at compile time. Construct them with the Parse functions at trust
// boundaries (HTTP handlers, CLI flags) and with New* inside services.
package domain

import (
	"github.com/google/uuid"

	dErrors "rosterid/pkg/domain-errors"
)

type (
	// IdentityID names a MasterIdentity.
	IdentityID uuid.UUID
	// MappingID names one IdentityMapping row.
	MappingID uuid.UUID
	// CandidateID names a pending MatchCandidate. Derived from the record pair.
	CandidateID uuid.UUID
	// AuditID names an append-only audit entry.
	AuditID uuid.UUID
)

func NewIdentityID() IdentityID { return IdentityID(uuid.New()) }
func NewMappingID() MappingID   { return MappingID(uuid.New()) }
func NewAuditID() AuditID       { return AuditID(uuid.New()) }

// candidateNamespace scopes deterministic candidate ids.
var candidateNamespace = uuid.MustParse("5b0c8f3e-4a39-4c61-9d2a-7f1e03b6c2aa")

// CandidateIDFor derives a stable id from an order-independent pair key, so
// re-running resolution over the same records addresses the same candidate.
func CandidateIDFor(pairKey string) CandidateID {
	return CandidateID(uuid.NewSHA1(candidateNamespace, []byte(pairKey)))
}

func (id IdentityID) String() string  { return uuid.UUID(id).String() }
func (id MappingID) String() string   { return uuid.UUID(id).String() }
func (id CandidateID) String() string { return uuid.UUID(id).String() }
func (id AuditID) String() string     { return uuid.UUID(id).String() }

func (id IdentityID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id MappingID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id CandidateID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id AuditID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }

// ParseIdentityID parses external input into an IdentityID.
//
// Errors: CodeInvalidInput when the value is empty, malformed or the nil UUID.
func ParseIdentityID(s string) (IdentityID, error) {
	u, err := parseUUID(s, "identity ID")
	return IdentityID(u), err
}

func ParseMappingID(s string) (MappingID, error) {
	u, err := parseUUID(s, "mapping ID")
	return MappingID(u), err
}

func ParseCandidateID(s string) (CandidateID, error) {
	u, err := parseUUID(s, "candidate ID")
	return CandidateID(u), err
}

func ParseAuditID(s string) (AuditID, error) {
	u, err := parseUUID(s, "audit ID")
	return AuditID(u), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return u, nil
}

// Text encoding keeps ids as canonical UUID strings in JSON and snapshots.

func (id IdentityID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id MappingID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id CandidateID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id AuditID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }

func (id *IdentityID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *MappingID) UnmarshalText(b []byte) error   { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *CandidateID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *AuditID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
