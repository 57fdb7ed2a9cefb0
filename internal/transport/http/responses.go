package httptransport

import (
	"encoding/json"
	"time"

	"rosterid/internal/identity/models"
	identityservice "rosterid/internal/identity/service"
	reviewservice "rosterid/internal/review/service"
	audit "rosterid/pkg/platform/audit"
)

type MatchListResponse struct {
	Matches []*models.MatchCandidate `json:"matches"`
	Count   int                      `json:"count"`
}

type DecisionResponse struct {
	Match    *models.MatchCandidate    `json:"match"`
	Identity *models.MasterIdentity    `json:"identity,omitempty"`
	Mappings []*models.IdentityMapping `json:"mappings,omitempty"`
	// MergedFrom is the identity folded in when approval joined two identities.
	MergedFrom string `json:"merged_from,omitempty"`
}

func toDecisionResponse(d *reviewservice.Decision) DecisionResponse {
	resp := DecisionResponse{Match: d.Candidate}
	if d.Applied != nil {
		resp.Identity = d.Applied.Identity
		resp.Mappings = d.Applied.Mappings
	}
	if !d.MergedFrom.IsNil() {
		resp.MergedFrom = d.MergedFrom.String()
	}
	return resp
}

type MappingListResponse struct {
	Mappings []*models.IdentityMapping `json:"mappings"`
	Count    int                       `json:"count"`
}

type SplitResponse struct {
	Original      *models.MasterIdentity `json:"original"`
	Split         *models.MasterIdentity `json:"split"`
	MappingsSplit []string               `json:"mappings_split"`
}

func toSplitResponse(res *identityservice.SplitResult) SplitResponse {
	moved := make([]string, 0, len(res.MappingsSplit))
	for _, mappingID := range res.MappingsSplit {
		moved = append(moved, mappingID.String())
	}
	return SplitResponse{Original: res.Original, Split: res.Split, MappingsSplit: moved}
}

// AuditEntryResponse is the wire form of an audit entry.
type AuditEntryResponse struct {
	ID          string          `json:"id"`
	EntityType  string          `json:"entity_type"`
	EntityID    string          `json:"entity_id"`
	Action      string          `json:"action"`
	BeforeState json.RawMessage `json:"before_state,omitempty"`
	AfterState  json.RawMessage `json:"after_state,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	PerformedBy string          `json:"performed_by"`
	GroupID     string          `json:"group_id,omitempty"`
	RollbackOf  string          `json:"rollback_of,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
}

func toAuditEntryResponse(e audit.Entry) AuditEntryResponse {
	resp := AuditEntryResponse{
		ID:          e.ID.String(),
		EntityType:  string(e.EntityType),
		EntityID:    e.EntityID,
		Action:      string(e.Action),
		BeforeState: e.BeforeState,
		AfterState:  e.AfterState,
		Reason:      e.Reason,
		PerformedBy: e.PerformedBy,
		GroupID:     e.GroupID,
		Timestamp:   e.Timestamp,
	}
	if e.RollbackOf != nil {
		resp.RollbackOf = e.RollbackOf.String()
	}
	return resp
}

type AuditListResponse struct {
	Entries []AuditEntryResponse `json:"entries"`
	Count   int                  `json:"count"`
}
