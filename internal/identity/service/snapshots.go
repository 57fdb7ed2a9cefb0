package service

import (
	"encoding/json"

	"rosterid/internal/identity/models"
	id "rosterid/pkg/domain"
	dErrors "rosterid/pkg/domain-errors"
)

// Audit before/after states. Rollback decodes the same shapes, so field
// names are part of the stored audit format.

// IdentityState is an identity and, where the action removed or restored
// them, its mappings.
type IdentityState struct {
	Identity *models.MasterIdentity   `json:"identity"`
	Mappings []*models.IdentityMapping `json:"mappings,omitempty"`
}

type MergeBefore struct {
	Primary           *models.MasterIdentity `json:"primary"`
	Secondary         *models.MasterIdentity `json:"secondary"`
	SecondaryMappings []id.MappingID         `json:"secondary_mappings"`
}

type MergeAfter struct {
	Merged *models.MasterIdentity `json:"merged"`
}

type SplitAfter struct {
	Original      *models.MasterIdentity `json:"original"`
	Split         *models.MasterIdentity `json:"split"`
	MappingsSplit []id.MappingID         `json:"mappings_split"`
}

func decodeState(raw json.RawMessage, into any) error {
	if len(raw) == 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "audit entry has no state to restore")
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvariantViolation, "audit entry state is unreadable")
	}
	return nil
}
