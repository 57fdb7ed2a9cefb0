package service

import (
	"context"
	"errors"
	"time"

	"rosterid/internal/identity/models"
	"rosterid/internal/identity/store"
	id "rosterid/pkg/domain"
	dErrors "rosterid/pkg/domain-errors"
	audit "rosterid/pkg/platform/audit"
	"rosterid/pkg/requestcontext"
)

// ErrDistinctIdentities marks a pair whose records already belong to
// different identities. Only a merge may join them.
var ErrDistinctIdentities = errors.New("records are mapped to different identities")

// Match is a scored pair to bind to one identity.
type Match struct {
	Left       models.RawRecord
	Right      models.RawRecord
	Confidence float64
	Method     models.MatchMethod
	Reason     string
	// LockKeys serialize find-or-create with other writers that share a
	// blocking key. The record keys are always locked.
	LockKeys []string
}

// ApplyResult is the identity a match resolved to and the mappings of the
// records involved.
type ApplyResult struct {
	Identity *models.MasterIdentity
	Mappings []*models.IdentityMapping
	Created  bool
}

func (m Match) validate() error {
	if err := m.Left.Validate(); err != nil {
		return err
	}
	if err := m.Right.Validate(); err != nil {
		return err
	}
	if m.Left.Kind != m.Right.Kind {
		return dErrors.New(dErrors.CodeValidation, "cannot match a player with a team")
	}
	if m.Left.Key() == m.Right.Key() {
		return dErrors.New(dErrors.CodeValidation, "cannot match a record with itself")
	}
	return validateBinding(m.Confidence, m.Method)
}

func validateBinding(confidence float64, method models.MatchMethod) error {
	if confidence < 0 || confidence > 1 {
		return dErrors.New(dErrors.CodeValidation, "confidence must be within [0,1]")
	}
	if !method.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown match method")
	}
	return nil
}

// ApplyMatch binds both records of the pair to one identity. An identity
// already mapped to either side is reused; otherwise one is created from the
// earlier-season record. Re-applying a pair never duplicates mappings, and a
// mapping is only rewritten for a higher confidence or a manual decision.
// When the two records already belong to different identities the call
// fails with CodeConflict; only an explicit merge may join them.
func (s *Service) ApplyMatch(ctx context.Context, match Match) (*ApplyResult, error) {
	if err := match.validate(); err != nil {
		return nil, err
	}

	var result *ApplyResult
	lockKeys := recordLockKeys(match.LockKeys, match.Left, match.Right)
	_, err := s.mutate(ctx, "apply_match", lockKeys, func(ctx context.Context, tx store.Store, changes *changeSet) error {
		now := requestcontext.Now(ctx)
		left, err := mappingForRecord(ctx, tx, match.Left.Key())
		if err != nil {
			return err
		}
		right, err := mappingForRecord(ctx, tx, match.Right.Key())
		if err != nil {
			return err
		}
		if left != nil && right != nil && left.IdentityID != right.IdentityID {
			return dErrors.Wrap(ErrDistinctIdentities, dErrors.CodeConflict, "cannot apply match")
		}

		identity, created, err := s.resolveIdentity(ctx, tx, changes, match, left, right, now)
		if err != nil {
			return err
		}

		result = &ApplyResult{Identity: identity, Created: created}
		for _, side := range []struct {
			record   models.RawRecord
			existing *models.IdentityMapping
		}{{match.Left, left}, {match.Right, right}} {
			m, err := bindRecord(ctx, tx, changes, identity, side.record, side.existing, match.Confidence, match.Method, match.Reason, now)
			if err != nil {
				return err
			}
			result.Mappings = append(result.Mappings, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) resolveIdentity(ctx context.Context, tx store.Store, changes *changeSet, match Match, left, right *models.IdentityMapping, now time.Time) (*models.MasterIdentity, bool, error) {
	switch {
	case left != nil:
		identity, err := findActiveIdentity(ctx, tx, left.IdentityID)
		return identity, false, err
	case right != nil:
		identity, err := findActiveIdentity(ctx, tx, right.IdentityID)
		return identity, false, err
	}

	seed := match.Left
	if match.Right.Season < seed.Season {
		seed = match.Right
	}
	identity, err := createIdentity(ctx, tx, changes, seed, match.Confidence, match.Reason, now)
	return identity, err == nil, err
}

func createIdentity(ctx context.Context, tx store.Store, changes *changeSet, seed models.RawRecord, confidence float64, reason string, now time.Time) (*models.MasterIdentity, error) {
	identity, err := models.NewMasterIdentity(id.NewIdentityID(), seed, confidence, now)
	if err != nil {
		return nil, err
	}
	if err := tx.CreateIdentity(ctx, identity); err != nil {
		return nil, err
	}
	changes.created++
	if err := changes.record(audit.EntityIdentity, identity.ID.String(), audit.ActionCreate,
		nil, IdentityState{Identity: identity}, reason, groupOf(identity)); err != nil {
		return nil, err
	}
	return identity, nil
}

// bindRecord creates or upgrades the mapping of r to identity. existing is
// the record's current mapping, or nil.
func bindRecord(ctx context.Context, tx store.Store, changes *changeSet, identity *models.MasterIdentity, r models.RawRecord, existing *models.IdentityMapping, confidence float64, method models.MatchMethod, reason string, now time.Time) (*models.IdentityMapping, error) {
	if existing == nil {
		m, err := models.NewIdentityMapping(id.NewMappingID(), identity.ID, r, confidence, method, now)
		if err != nil {
			return nil, err
		}
		stored, err := tx.UpsertMapping(ctx, m)
		if err != nil {
			return nil, err
		}
		changes.mappingsWritten = append(changes.mappingsWritten, method)
		if err := changes.record(audit.EntityMapping, stored.ID.String(), audit.ActionCreate,
			nil, stored, reason, groupOf(identity)); err != nil {
			return nil, err
		}
		return stored, nil
	}

	if existing.IdentityID != identity.ID {
		return nil, dErrors.New(dErrors.CodeConflict, "record is mapped to a different identity")
	}
	upgrade := confidence > existing.Confidence ||
		(method == models.MethodManual && existing.Method != models.MethodManual)
	if !upgrade {
		return existing, nil
	}

	updated := existing.Clone()
	if confidence > updated.Confidence {
		updated.Confidence = confidence
	}
	updated.Method = method
	updated.DisplayName = r.DisplayName
	updated.UpdatedAt = now
	stored, err := tx.UpsertMapping(ctx, updated)
	if err != nil {
		return nil, err
	}
	changes.mappingsWritten = append(changes.mappingsWritten, method)
	if err := changes.record(audit.EntityMapping, stored.ID.String(), audit.ActionUpdate,
		existing, stored, reason, groupOf(identity)); err != nil {
		return nil, err
	}
	return stored, nil
}

// EnsureIdentity maps a single record, creating an identity seeded from it
// when the record is unmapped. A mapped record is returned unchanged.
func (s *Service) EnsureIdentity(ctx context.Context, r models.RawRecord, reason string) (*ApplyResult, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var result *ApplyResult
	_, err := s.mutate(ctx, "ensure_identity", recordLockKeys(nil, r), func(ctx context.Context, tx store.Store, changes *changeSet) error {
		now := requestcontext.Now(ctx)
		existing, err := mappingForRecord(ctx, tx, r.Key())
		if err != nil {
			return err
		}
		if existing != nil {
			identity, err := findIdentity(ctx, tx, existing.IdentityID)
			if err != nil {
				return err
			}
			result = &ApplyResult{Identity: identity, Mappings: []*models.IdentityMapping{existing}}
			return nil
		}

		identity, err := createIdentity(ctx, tx, changes, r, 1.0, reason, now)
		if err != nil {
			return err
		}
		m, err := bindRecord(ctx, tx, changes, identity, r, nil, 1.0, models.MethodExact, reason, now)
		if err != nil {
			return err
		}
		result = &ApplyResult{Identity: identity, Mappings: []*models.IdentityMapping{m}, Created: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Assign maps r to an existing identity. Assigning a record already mapped
// to that identity upgrades the mapping under the same rules as ApplyMatch;
// a record mapped elsewhere fails with CodeConflict.
func (s *Service) Assign(ctx context.Context, identityID id.IdentityID, r models.RawRecord, confidence float64, method models.MatchMethod, reason string) (*models.IdentityMapping, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := validateBinding(confidence, method); err != nil {
		return nil, err
	}

	var mapping *models.IdentityMapping
	lockKeys := recordLockKeys([]string{identityLockKey(identityID)}, r)
	_, err := s.mutate(ctx, "assign", lockKeys, func(ctx context.Context, tx store.Store, changes *changeSet) error {
		identity, err := findActiveIdentity(ctx, tx, identityID)
		if err != nil {
			return err
		}
		if identity.Kind != r.Kind {
			return dErrors.New(dErrors.CodeValidation, "record kind does not match identity kind")
		}
		existing, err := mappingForRecord(ctx, tx, r.Key())
		if err != nil {
			return err
		}
		mapping, err = bindRecord(ctx, tx, changes, identity, r, existing, confidence, method, reason, requestcontext.Now(ctx))
		return err
	})
	if err != nil {
		return nil, err
	}
	return mapping, nil
}
