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
	"rosterid/pkg/platform/sentinel"
	"rosterid/pkg/requestcontext"
)

// undoFunc replays the inverse of an entry inside a transaction and returns
// the states recorded on the ROLLBACK entry.
type undoFunc func(ctx context.Context, tx store.Store, now time.Time) (before, after any, group string, err error)

// Rollback replays the structural inverse of an audit entry and records a
// ROLLBACK entry pointing at it. ROLLBACK entries and entries that were
// already rolled back are rejected. Rollback is best effort: state that has
// moved on since the entry was written (a mapping since deleted, a record
// since mapped elsewhere) is left alone.
func (s *Service) Rollback(ctx context.Context, auditID id.AuditID, reason string) (*audit.Entry, error) {
	if auditID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "audit entry id is required")
	}
	entry, err := s.audits.Get(ctx, auditID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "audit entry not found")
		}
		return nil, translate(err)
	}
	if entry.Action == audit.ActionRollback {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "a rollback cannot be rolled back")
	}
	if reason == "" {
		reason = "rollback of " + auditID.String()
	}

	if entry.EntityType == audit.EntityCandidate {
		return s.rollbackCandidate(ctx, entry, reason)
	}

	undo, lockKeys, err := s.inverse(entry)
	if err != nil {
		return nil, err
	}
	lockKeys = append(lockKeys, "audit:"+auditID.String())

	recorded, err := s.mutate(ctx, "rollback", lockKeys, func(ctx context.Context, tx store.Store, changes *changeSet) error {
		if err := s.requireNotRolledBack(ctx, auditID); err != nil {
			return err
		}
		before, after, group, err := undo(ctx, tx, requestcontext.Now(ctx))
		if err != nil {
			return err
		}
		if err := changes.record(entry.EntityType, entry.EntityID, audit.ActionRollback, before, after, reason, group); err != nil {
			return err
		}
		changes.entries[len(changes.entries)-1].RollbackOf = &entry.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &recorded[len(recorded)-1], nil
}

func (s *Service) requireNotRolledBack(ctx context.Context, auditID id.AuditID) error {
	done, err := s.audits.HasRollback(ctx, auditID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read audit trail")
	}
	if done {
		return dErrors.New(dErrors.CodeConflict, "audit entry was already rolled back")
	}
	return nil
}

// inverse selects the undo for entry and the keys it must hold.
func (s *Service) inverse(entry *audit.Entry) (undoFunc, []string, error) {
	switch entry.EntityType {
	case audit.EntityIdentity:
		identityID, err := id.ParseIdentityID(entry.EntityID)
		if err != nil {
			return nil, nil, dErrors.Wrap(err, dErrors.CodeInvariantViolation, "audit entry has an invalid identity id")
		}
		keys := []string{identityLockKey(identityID)}
		switch entry.Action {
		case audit.ActionCreate:
			return undoCreateIdentity(entry), keys, nil
		case audit.ActionMerge:
			var before MergeBefore
			if err := decodeState(entry.BeforeState, &before); err != nil {
				return nil, nil, err
			}
			if before.Primary == nil || before.Secondary == nil {
				return nil, nil, dErrors.New(dErrors.CodeInvariantViolation, "merge entry is missing an identity")
			}
			return undoMerge(before), append(keys, identityLockKey(before.Secondary.ID)), nil
		case audit.ActionSplit:
			var after SplitAfter
			if err := decodeState(entry.AfterState, &after); err != nil {
				return nil, nil, err
			}
			if after.Original == nil || after.Split == nil {
				return nil, nil, dErrors.New(dErrors.CodeInvariantViolation, "split entry is missing an identity")
			}
			return undoSplit(after), append(keys, identityLockKey(after.Split.ID)), nil
		case audit.ActionUpdate:
			var before IdentityState
			if err := decodeIdentityState(entry.BeforeState, &before); err != nil {
				return nil, nil, err
			}
			return undoUpdateIdentity(before), keys, nil
		case audit.ActionDelete:
			var before IdentityState
			if err := decodeIdentityState(entry.BeforeState, &before); err != nil {
				return nil, nil, err
			}
			return undoDeleteIdentity(before), keys, nil
		}
	case audit.EntityMapping:
		keys := []string{"mapping:" + entry.EntityID}
		switch entry.Action {
		case audit.ActionCreate:
			var after models.IdentityMapping
			if err := decodeState(entry.AfterState, &after); err != nil {
				return nil, nil, err
			}
			return undoCreateMapping(&after), keys, nil
		case audit.ActionUpdate:
			var before models.IdentityMapping
			if err := decodeState(entry.BeforeState, &before); err != nil {
				return nil, nil, err
			}
			return undoUpdateMapping(&before), keys, nil
		}
	}
	return nil, nil, dErrors.Newf(dErrors.CodeInvariantViolation, "rollback of %s on %s is not supported", entry.Action, entry.EntityType)
}

func decodeIdentityState(raw []byte, into *IdentityState) error {
	if err := decodeState(raw, into); err != nil {
		return err
	}
	if into.Identity == nil {
		return dErrors.New(dErrors.CodeInvariantViolation, "audit entry is missing the identity")
	}
	return nil
}

// restoreIdentity overwrites the stored identity with snapshot, keeping the
// stored version so the write is still version-checked.
func restoreIdentity(ctx context.Context, tx store.Store, snapshot *models.MasterIdentity, now time.Time) (current, restored *models.MasterIdentity, err error) {
	current, err = findIdentity(ctx, tx, snapshot.ID)
	if err != nil {
		return nil, nil, err
	}
	restored = snapshot.Clone()
	restored.Version = current.Version
	restored.UpdatedAt = now
	if err := tx.UpdateIdentity(ctx, restored); err != nil {
		return nil, nil, err
	}
	return current, restored, nil
}

// CREATE: delete the identity and the mappings it has gathered since.
func undoCreateIdentity(entry *audit.Entry) undoFunc {
	return func(ctx context.Context, tx store.Store, _ time.Time) (any, any, string, error) {
		identityID, _ := id.ParseIdentityID(entry.EntityID)
		identity, err := findActiveIdentity(ctx, tx, identityID)
		if err != nil {
			return nil, nil, "", err
		}
		deleted, mappings, err := removeIdentity(ctx, tx, identity)
		if err != nil {
			return nil, nil, "", err
		}
		return IdentityState{Identity: identity, Mappings: mappings}, IdentityState{Identity: deleted}, groupOf(identity), nil
	}
}

// MERGE: recreate the secondary, move its original mappings back and
// restore the primary's metadata.
func undoMerge(before MergeBefore) undoFunc {
	return func(ctx context.Context, tx store.Store, now time.Time) (any, any, string, error) {
		primary, err := findActiveIdentity(ctx, tx, before.Primary.ID)
		if err != nil {
			return nil, nil, "", err
		}
		secondary, err := findIdentity(ctx, tx, before.Secondary.ID)
		if err != nil {
			return nil, nil, "", err
		}
		if secondary.IsActive() {
			return nil, nil, "", dErrors.New(dErrors.CodeInvariantViolation, "merged identity is already active")
		}

		restoredSecondary := before.Secondary.Clone()
		restoredSecondary.Restore(now)
		if _, restoredSecondary, err = restoreIdentity(ctx, tx, restoredSecondary, now); err != nil {
			return nil, nil, "", err
		}

		moveBack, err := ownedBy(ctx, tx, before.SecondaryMappings, primary.ID)
		if err != nil {
			return nil, nil, "", err
		}
		if len(moveBack) > 0 {
			if err := tx.ReassignMappings(ctx, moveBack, secondary.ID, now); err != nil {
				return nil, nil, "", err
			}
		}

		restoredPrimary := primary.Clone()
		restoredPrimary.Metadata = before.Primary.Metadata.Clone()
		restoredPrimary.UpdatedAt = now
		if err := tx.UpdateIdentity(ctx, restoredPrimary); err != nil {
			return nil, nil, "", err
		}

		return MergeAfter{Merged: primary},
			MergeBefore{Primary: restoredPrimary, Secondary: restoredSecondary, SecondaryMappings: moveBack},
			groupOf(primary), nil
	}
}

// SPLIT: move the split mappings back and delete the split identity.
func undoSplit(after SplitAfter) undoFunc {
	return func(ctx context.Context, tx store.Store, now time.Time) (any, any, string, error) {
		original, err := findActiveIdentity(ctx, tx, after.Original.ID)
		if err != nil {
			return nil, nil, "", err
		}
		split, err := findActiveIdentity(ctx, tx, after.Split.ID)
		if err != nil {
			return nil, nil, "", err
		}
		moveBack, err := ownedBy(ctx, tx, after.MappingsSplit, split.ID)
		if err != nil {
			return nil, nil, "", err
		}
		if len(moveBack) > 0 {
			if err := tx.ReassignMappings(ctx, moveBack, original.ID, now); err != nil {
				return nil, nil, "", err
			}
		}
		deleted, leftover, err := removeIdentity(ctx, tx, split)
		if err != nil {
			return nil, nil, "", err
		}
		return SplitAfter{Original: original, Split: split, MappingsSplit: after.MappingsSplit},
			IdentityState{Identity: deleted, Mappings: leftover},
			groupOf(original), nil
	}
}

// UPDATE: reapply the before state.
func undoUpdateIdentity(before IdentityState) undoFunc {
	return func(ctx context.Context, tx store.Store, now time.Time) (any, any, string, error) {
		current, restored, err := restoreIdentity(ctx, tx, before.Identity, now)
		if err != nil {
			return nil, nil, "", err
		}
		return IdentityState{Identity: current}, IdentityState{Identity: restored}, groupOf(restored), nil
	}
}

// DELETE: recreate the identity and every mapping whose record is still free.
func undoDeleteIdentity(before IdentityState) undoFunc {
	return func(ctx context.Context, tx store.Store, now time.Time) (any, any, string, error) {
		current, err := findIdentity(ctx, tx, before.Identity.ID)
		if err != nil {
			return nil, nil, "", err
		}
		if current.IsActive() {
			return nil, nil, "", dErrors.New(dErrors.CodeInvariantViolation, "identity is not deleted")
		}
		snapshot := before.Identity.Clone()
		snapshot.Restore(now)
		_, restored, err := restoreIdentity(ctx, tx, snapshot, now)
		if err != nil {
			return nil, nil, "", err
		}

		mappings := make([]*models.IdentityMapping, 0, len(before.Mappings))
		for _, m := range before.Mappings {
			existing, err := mappingForRecord(ctx, tx, m.Record)
			if err != nil {
				return nil, nil, "", err
			}
			if existing != nil {
				continue
			}
			stored, err := tx.UpsertMapping(ctx, m)
			if err != nil {
				return nil, nil, "", err
			}
			mappings = append(mappings, stored)
		}
		return IdentityState{Identity: current}, IdentityState{Identity: restored, Mappings: mappings}, groupOf(restored), nil
	}
}

// CREATE on a mapping: remove it.
func undoCreateMapping(after *models.IdentityMapping) undoFunc {
	return func(ctx context.Context, tx store.Store, _ time.Time) (any, any, string, error) {
		current, err := findMapping(ctx, tx, after.ID)
		if err != nil {
			return nil, nil, "", err
		}
		if err := tx.DeleteMappings(ctx, []id.MappingID{current.ID}); err != nil {
			return nil, nil, "", err
		}
		return current, nil, mappingGroup(ctx, tx, current.IdentityID), nil
	}
}

// UPDATE on a mapping: rewrite the before state for the same record.
func undoUpdateMapping(before *models.IdentityMapping) undoFunc {
	return func(ctx context.Context, tx store.Store, now time.Time) (any, any, string, error) {
		current, err := findMapping(ctx, tx, before.ID)
		if err != nil {
			return nil, nil, "", err
		}
		if _, err := findActiveIdentity(ctx, tx, before.IdentityID); err != nil {
			return nil, nil, "", err
		}
		restored := before.Clone()
		restored.UpdatedAt = now
		stored, err := tx.UpsertMapping(ctx, restored)
		if err != nil {
			return nil, nil, "", err
		}
		return current, stored, mappingGroup(ctx, tx, stored.IdentityID), nil
	}
}

func mappingGroup(ctx context.Context, tx store.Store, identityID id.IdentityID) string {
	identity, err := tx.FindIdentity(ctx, identityID)
	if err != nil {
		return ""
	}
	return groupOf(identity)
}

// ownedBy filters mappingIDs to those that still exist and belong to identityID.
func ownedBy(ctx context.Context, tx store.Store, mappingIDs []id.MappingID, identityID id.IdentityID) ([]id.MappingID, error) {
	out := make([]id.MappingID, 0, len(mappingIDs))
	for _, mappingID := range mappingIDs {
		m, err := tx.FindMapping(ctx, mappingID)
		if errors.Is(err, sentinel.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if m.IdentityID == identityID {
			out = append(out, mappingID)
		}
	}
	return out, nil
}

// rollbackCandidate restores a reviewed candidate to its before state.
func (s *Service) rollbackCandidate(ctx context.Context, entry *audit.Entry, reason string) (*audit.Entry, error) {
	if entry.Action != audit.ActionUpdate {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "rollback of %s on %s is not supported", entry.Action, entry.EntityType)
	}
	if s.candidates == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "candidate rollback is not configured")
	}
	var before, after models.MatchCandidate
	if err := decodeState(entry.BeforeState, &before); err != nil {
		return nil, err
	}
	if err := decodeState(entry.AfterState, &after); err != nil {
		return nil, err
	}

	var result *audit.Entry
	err := s.locker.Do(ctx, []string{"audit:" + entry.ID.String()}, func(ctx context.Context) error {
		if err := s.requireNotRolledBack(ctx, entry.ID); err != nil {
			return err
		}
		if err := s.candidates.Put(ctx, &before); err != nil {
			return translate(err)
		}
		changes := &changeSet{}
		if err := changes.record(entry.EntityType, entry.EntityID, audit.ActionRollback, &after, &before, reason, entry.GroupID); err != nil {
			return err
		}
		rollback := changes.entries[0]
		rollback.RollbackOf = &entry.ID
		stored, _ := s.recorder.Record(ctx, rollback)
		result = &stored
		return nil
	})
	if err != nil {
		s.metrics.ObserveOperation("rollback", string(dErrors.CodeOf(err)))
		return nil, err
	}
	s.metrics.ObserveOperation("rollback", "ok")
	return result, nil
}
