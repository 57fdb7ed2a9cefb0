package service

import (
	"context"
	"strings"

	"rosterid/internal/identity/models"
	id "rosterid/pkg/domain"
	dErrors "rosterid/pkg/domain-errors"
)

// MappingView resolves a season record to its identity.
type MappingView struct {
	Mapping  *models.IdentityMapping `json:"mapping"`
	Identity *models.MasterIdentity  `json:"identity"`
}

// IdentityView is an identity with every season mapped to it.
type IdentityView struct {
	Identity *models.MasterIdentity   `json:"identity"`
	Mappings []*models.IdentityMapping `json:"mappings"`
}

// IdentitySummary pairs an active identity with its most recent mapped season.
type IdentitySummary struct {
	Identity     *models.MasterIdentity
	LatestSeason int
}

// LookupMapping resolves (kind, external id, season) to its identity.
func (s *Service) LookupMapping(ctx context.Context, kind id.EntityKind, externalID string, season int) (*MappingView, error) {
	if err := validateLookup(kind, externalID); err != nil {
		return nil, err
	}
	if season <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "season is required")
	}
	m, err := s.store.FindMappingByRecord(ctx, models.RecordKey{Kind: kind, ExternalID: externalID, Season: season})
	if err != nil {
		return nil, translate(err)
	}
	identity, err := s.store.FindIdentity(ctx, m.IdentityID)
	if err != nil {
		return nil, translate(err)
	}
	return &MappingView{Mapping: m, Identity: identity}, nil
}

// LookupExternalID returns every season mapping of an external id.
func (s *Service) LookupExternalID(ctx context.Context, kind id.EntityKind, externalID string) ([]*models.IdentityMapping, error) {
	if err := validateLookup(kind, externalID); err != nil {
		return nil, err
	}
	mappings, err := s.store.ListMappingsByExternalID(ctx, kind, externalID)
	if err != nil {
		return nil, translate(err)
	}
	return mappings, nil
}

func validateLookup(kind id.EntityKind, externalID string) error {
	if !kind.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "kind must be player or team")
	}
	if strings.TrimSpace(externalID) == "" {
		return dErrors.New(dErrors.CodeValidation, "external_id is required")
	}
	return nil
}

// GetIdentity returns an identity, deleted or not, with its mappings.
func (s *Service) GetIdentity(ctx context.Context, identityID id.IdentityID) (*IdentityView, error) {
	identity, err := s.store.FindIdentity(ctx, identityID)
	if err != nil {
		return nil, translate(err)
	}
	mappings, err := s.store.ListMappings(ctx, identityID)
	if err != nil {
		return nil, translate(err)
	}
	return &IdentityView{Identity: identity, Mappings: mappings}, nil
}

// ListIdentities returns the active identities of kind with their latest season.
func (s *Service) ListIdentities(ctx context.Context, kind id.EntityKind) ([]IdentitySummary, error) {
	identities, err := s.store.ListIdentities(ctx, kind)
	if err != nil {
		return nil, translate(err)
	}
	out := make([]IdentitySummary, 0, len(identities))
	for _, identity := range identities {
		latest, err := s.store.LatestSeason(ctx, identity.ID)
		if err != nil {
			return nil, translate(err)
		}
		out = append(out, IdentitySummary{Identity: identity, LatestSeason: latest})
	}
	return out, nil
}
