package service

import (
	"context"
	"reflect"

	"rosterid/internal/identity/models"
	"rosterid/internal/identity/store"
	id "rosterid/pkg/domain"
	dErrors "rosterid/pkg/domain-errors"
	audit "rosterid/pkg/platform/audit"
	"rosterid/pkg/requestcontext"
)

// Merge folds secondary into primary: every mapping of secondary moves to
// primary, metadata is unioned and secondary is deleted. Any failure leaves
// both identities untouched.
func (s *Service) Merge(ctx context.Context, primaryID, secondaryID id.IdentityID, reason string) (*models.MasterIdentity, error) {
	if primaryID.IsNil() || secondaryID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "both identity ids are required")
	}
	if primaryID == secondaryID {
		return nil, dErrors.New(dErrors.CodeValidation, "cannot merge an identity into itself")
	}

	var merged *models.MasterIdentity
	lockKeys := []string{identityLockKey(primaryID), identityLockKey(secondaryID)}
	_, err := s.mutate(ctx, "merge", lockKeys, func(ctx context.Context, tx store.Store, changes *changeSet) error {
		now := requestcontext.Now(ctx)
		primary, err := findActiveIdentity(ctx, tx, primaryID)
		if err != nil {
			return err
		}
		secondary, err := findActiveIdentity(ctx, tx, secondaryID)
		if err != nil {
			return err
		}
		if primary.Kind != secondary.Kind {
			return dErrors.New(dErrors.CodeInvariantViolation, "cannot merge identities of different kinds")
		}

		mappings, err := tx.ListMappings(ctx, secondaryID)
		if err != nil {
			return err
		}
		mappingIDs := models.MappingIDs(mappings)
		if len(mappingIDs) > 0 {
			if err := tx.ReassignMappings(ctx, mappingIDs, primaryID, now); err != nil {
				return err
			}
		}

		metadata, err := models.MergeMetadata(primary.Metadata, secondary.Metadata)
		if err != nil {
			return err
		}
		next := primary.Clone()
		next.Metadata = metadata
		next.Metadata.AddAlternateName(secondary.CanonicalName, next.CanonicalName)
		next.UpdatedAt = now
		if err := tx.UpdateIdentity(ctx, next); err != nil {
			return err
		}
		if err := tx.DeleteIdentity(ctx, secondaryID, now); err != nil {
			return err
		}

		merged = next
		return changes.record(audit.EntityIdentity, primaryID.String(), audit.ActionMerge,
			MergeBefore{Primary: primary, Secondary: secondary, SecondaryMappings: mappingIDs},
			MergeAfter{Merged: next},
			reason, groupOf(next))
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

// SplitResult is the identity left behind, the identity split off and the
// mappings that moved.
type SplitResult struct {
	Original      *models.MasterIdentity
	Split         *models.MasterIdentity
	MappingsSplit []id.MappingID
}

// Split moves the named mappings of identityID to a new identity seeded
// from the first mapping's display name. Every mapping must belong to
// identityID, and at least one mapping must stay behind.
func (s *Service) Split(ctx context.Context, identityID id.IdentityID, mappingIDs []id.MappingID, reason string) (*SplitResult, error) {
	if identityID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "identity id is required")
	}
	mappingIDs = dedupeMappingIDs(mappingIDs)
	if len(mappingIDs) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one mapping is required to split")
	}

	var result *SplitResult
	_, err := s.mutate(ctx, "split", []string{identityLockKey(identityID)}, func(ctx context.Context, tx store.Store, changes *changeSet) error {
		now := requestcontext.Now(ctx)
		original, err := findActiveIdentity(ctx, tx, identityID)
		if err != nil {
			return err
		}

		moving := make([]*models.IdentityMapping, 0, len(mappingIDs))
		for _, mappingID := range mappingIDs {
			m, err := findMapping(ctx, tx, mappingID)
			if err != nil {
				return err
			}
			if m.IdentityID != identityID {
				return dErrors.New(dErrors.CodeValidation, "mapping "+mappingID.String()+" does not belong to identity")
			}
			moving = append(moving, m)
		}
		all, err := tx.ListMappings(ctx, identityID)
		if err != nil {
			return err
		}
		if len(all) == len(moving) {
			return dErrors.New(dErrors.CodeInvariantViolation, "cannot split every mapping away from an identity")
		}

		split, err := models.NewMasterIdentity(id.NewIdentityID(), seedFromMapping(original, moving[0]), moving[0].Confidence, now)
		if err != nil {
			return err
		}
		if original.Metadata.Team != nil {
			split.Metadata.Team = splitTeamMetadata(original.Metadata.Team, moving)
		}
		if err := tx.CreateIdentity(ctx, split); err != nil {
			return err
		}
		changes.created++
		if err := tx.ReassignMappings(ctx, mappingIDs, split.ID, now); err != nil {
			return err
		}

		result = &SplitResult{Original: original, Split: split, MappingsSplit: mappingIDs}
		return changes.record(audit.EntityIdentity, identityID.String(), audit.ActionSplit,
			IdentityState{Identity: original, Mappings: moving},
			SplitAfter{Original: original, Split: split, MappingsSplit: mappingIDs},
			reason, groupOf(original))
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func seedFromMapping(original *models.MasterIdentity, m *models.IdentityMapping) models.RawRecord {
	return models.RawRecord{
		Kind:        original.Kind,
		ExternalID:  m.Record.ExternalID,
		Season:      m.Record.Season,
		DisplayName: m.DisplayName,
	}
}

// splitTeamMetadata keeps the league and the owners of the seasons that move.
func splitTeamMetadata(team *models.TeamMetadata, moving []*models.IdentityMapping) *models.TeamMetadata {
	out := &models.TeamMetadata{LeagueID: team.LeagueID}
	for _, m := range moving {
		if owner := models.OwnerAt(team.OwnerHistory, m.Record.Season); owner != "" {
			out.OwnerHistory = models.MergeOwnerHistory(out.OwnerHistory, []models.OwnerSegment{singleSeason(owner, m.Record.Season)})
		}
	}
	return out
}

func singleSeason(owner string, season int) models.OwnerSegment {
	end := season
	return models.OwnerSegment{Owner: owner, StartSeason: season, EndSeason: &end}
}

func dedupeMappingIDs(ids []id.MappingID) []id.MappingID {
	seen := make(map[id.MappingID]struct{}, len(ids))
	out := make([]id.MappingID, 0, len(ids))
	for _, mappingID := range ids {
		if mappingID.IsNil() {
			continue
		}
		if _, ok := seen[mappingID]; ok {
			continue
		}
		seen[mappingID] = struct{}{}
		out = append(out, mappingID)
	}
	return out
}

// UpdateCanonicalName renames an identity; the old name is kept as an
// alternate. A manual rename carries full naming confidence.
func (s *Service) UpdateCanonicalName(ctx context.Context, identityID id.IdentityID, name, reason string) (*models.MasterIdentity, error) {
	return s.updateIdentity(ctx, "rename", identityID, reason, func(identity *models.MasterIdentity) (bool, error) {
		if identity.CanonicalName == name {
			return false, nil
		}
		return true, identity.Rename(name, 1.0, requestcontext.Now(ctx))
	})
}

// ExtendOwnerHistory records owner for season on a team identity.
func (s *Service) ExtendOwnerHistory(ctx context.Context, identityID id.IdentityID, owner string, season int, reason string) (*models.MasterIdentity, error) {
	if owner == "" || season <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "owner and season are required")
	}
	return s.updateIdentity(ctx, "extend_owner_history", identityID, reason, func(identity *models.MasterIdentity) (bool, error) {
		if identity.Metadata.Team == nil {
			return false, dErrors.New(dErrors.CodeValidation, "owner history applies to team identities only")
		}
		history := models.ExtendOwnerHistory(identity.Metadata.Team.OwnerHistory, owner, season)
		if reflect.DeepEqual(history, identity.Metadata.Team.OwnerHistory) {
			return false, nil
		}
		identity.Metadata.Team.OwnerHistory = history
		identity.UpdatedAt = requestcontext.Now(ctx)
		return true, nil
	})
}

// updateIdentity applies change to a copy of an active identity and stores
// it with an UPDATE entry. change reports false to leave it as is.
func (s *Service) updateIdentity(ctx context.Context, op string, identityID id.IdentityID, reason string, change func(*models.MasterIdentity) (bool, error)) (*models.MasterIdentity, error) {
	if identityID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "identity id is required")
	}

	var updated *models.MasterIdentity
	_, err := s.mutate(ctx, op, []string{identityLockKey(identityID)}, func(ctx context.Context, tx store.Store, changes *changeSet) error {
		current, err := findActiveIdentity(ctx, tx, identityID)
		if err != nil {
			return err
		}
		next := current.Clone()
		changed, err := change(next)
		if err != nil {
			return err
		}
		if !changed {
			updated = current
			return nil
		}
		if err := next.Metadata.Validate(); err != nil {
			return err
		}
		if err := tx.UpdateIdentity(ctx, next); err != nil {
			return err
		}
		updated = next
		return changes.record(audit.EntityIdentity, identityID.String(), audit.ActionUpdate,
			IdentityState{Identity: current}, IdentityState{Identity: next},
			reason, groupOf(next))
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteIdentity soft-deletes an identity and removes its mappings. The
// mappings are kept in the audit entry so a rollback can restore them.
func (s *Service) DeleteIdentity(ctx context.Context, identityID id.IdentityID, reason string) error {
	if identityID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "identity id is required")
	}
	_, err := s.mutate(ctx, "delete", []string{identityLockKey(identityID)}, func(ctx context.Context, tx store.Store, changes *changeSet) error {
		identity, err := findActiveIdentity(ctx, tx, identityID)
		if err != nil {
			return err
		}
		deleted, mappings, err := removeIdentity(ctx, tx, identity)
		if err != nil {
			return err
		}
		return changes.record(audit.EntityIdentity, identityID.String(), audit.ActionDelete,
			IdentityState{Identity: identity, Mappings: mappings}, IdentityState{Identity: deleted},
			reason, groupOf(identity))
	})
	return err
}

// removeIdentity deletes identity's mappings and soft-deletes it.
func removeIdentity(ctx context.Context, tx store.Store, identity *models.MasterIdentity) (*models.MasterIdentity, []*models.IdentityMapping, error) {
	mappings, err := tx.ListMappings(ctx, identity.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(mappings) > 0 {
		if err := tx.DeleteMappings(ctx, models.MappingIDs(mappings)); err != nil {
			return nil, nil, err
		}
	}
	if err := tx.DeleteIdentity(ctx, identity.ID, requestcontext.Now(ctx)); err != nil {
		return nil, nil, err
	}
	deleted, err := tx.FindIdentity(ctx, identity.ID)
	if err != nil {
		return nil, nil, err
	}
	return deleted, mappings, nil
}
