package service

import (
	"context"

	"rosterid/internal/identity/models"
	"rosterid/internal/scoring"
	id "rosterid/pkg/domain"
	dErrors "rosterid/pkg/domain-errors"
	audit "rosterid/pkg/platform/audit"
	"rosterid/pkg/platform/sentinel"
)

// =============================================================================
// Rollback
// =============================================================================
// Justification: rollback decodes stored snapshots and replays inverses
// against the live graph; each supported action is exercised end to end.

func (s *ServiceSuite) onlyEntry(filter audit.Filter) audit.Entry {
	entries := s.entries(filter)
	s.Require().Len(entries, 1)
	return entries[0]
}

func (s *ServiceSuite) TestRollbackMerge() {
	primary := s.apply(player("a", 2019, "Pat Mahomes"), player("a", 2020, "Pat Mahomes"), 0.95)
	secondary := s.apply(player("b", 2021, "Patrick Mahomes"), player("b", 2022, "Patrick Mahomes"), 0.95)
	secondaryMappings := models.MappingIDs(s.mappingsOf(secondary.Identity.ID))

	_, err := s.service.Merge(s.ctx, primary.Identity.ID, secondary.Identity.ID, "")
	s.Require().NoError(err)
	merge := s.onlyEntry(audit.Filter{Action: audit.ActionMerge})

	rollback, err := s.service.Rollback(s.ctx, merge.ID, "wrong merge")
	s.Require().NoError(err)
	s.Equal(audit.ActionRollback, rollback.Action)
	s.Require().NotNil(rollback.RollbackOf)
	s.Equal(merge.ID, *rollback.RollbackOf)

	restored, err := s.graph.FindIdentity(s.ctx, secondary.Identity.ID)
	s.Require().NoError(err)
	s.True(restored.IsActive())
	s.ElementsMatch(secondaryMappings, models.MappingIDs(s.mappingsOf(secondary.Identity.ID)))
	s.Len(s.mappingsOf(primary.Identity.ID), 2)

	p, err := s.graph.FindIdentity(s.ctx, primary.Identity.ID)
	s.Require().NoError(err)
	s.Empty(p.Metadata.Player.AlternateNames, "primary metadata restored")
}

func (s *ServiceSuite) TestRollbackSplit() {
	base := s.apply(player("a", 2019, "Mike Williams"), player("a", 2020, "Mike Williams"), 0.9)
	extra := s.apply(player("a", 2020, "Mike Williams"), player("b", 2021, "Michael Williams"), 0.86)
	result, err := s.service.Split(s.ctx, base.Identity.ID, []id.MappingID{extra.Mappings[1].ID}, "")
	s.Require().NoError(err)
	split := s.onlyEntry(audit.Filter{Action: audit.ActionSplit})

	_, err = s.service.Rollback(s.ctx, split.ID, "")
	s.Require().NoError(err)

	s.Len(s.mappingsOf(base.Identity.ID), 3)
	gone, err := s.graph.FindIdentity(s.ctx, result.Split.ID)
	s.Require().NoError(err)
	s.False(gone.IsActive())
}

func (s *ServiceSuite) TestRollbackCreateIdentity() {
	created := s.apply(player("a", 2019, "A Player"), player("a", 2020, "A Player"), 0.95)
	create := s.onlyEntry(audit.Filter{EntityType: audit.EntityIdentity, Action: audit.ActionCreate})

	_, err := s.service.Rollback(s.ctx, create.ID, "")
	s.Require().NoError(err)

	s.Empty(s.mappingsOf(created.Identity.ID))
	_, err = s.service.LookupMapping(s.ctx, id.KindPlayer, "a", 2019)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestRollbackUpdateAndDelete() {
	a := s.apply(player("a", 2019, "Pat Mahomes"), player("a", 2020, "Pat Mahomes"), 0.95)

	_, err := s.service.UpdateCanonicalName(s.ctx, a.Identity.ID, "Patrick Mahomes", "")
	s.Require().NoError(err)
	update := s.onlyEntry(audit.Filter{EntityType: audit.EntityIdentity, Action: audit.ActionUpdate})
	_, err = s.service.Rollback(s.ctx, update.ID, "")
	s.Require().NoError(err)

	view, err := s.service.GetIdentity(s.ctx, a.Identity.ID)
	s.Require().NoError(err)
	s.Equal("Pat Mahomes", view.Identity.CanonicalName)

	s.Require().NoError(s.service.DeleteIdentity(s.ctx, a.Identity.ID, ""))
	del := s.onlyEntry(audit.Filter{Action: audit.ActionDelete})
	_, err = s.service.Rollback(s.ctx, del.ID, "")
	s.Require().NoError(err)

	view, err = s.service.GetIdentity(s.ctx, a.Identity.ID)
	s.Require().NoError(err)
	s.True(view.Identity.IsActive())
	s.Len(view.Mappings, 2)
}

func (s *ServiceSuite) TestRollbackMappingEntries() {
	left, right := player("a", 2019, "Pat Mahomes"), player("a", 2020, "Pat Mahomes")
	s.apply(left, right, 0.86)
	s.apply(left, right, 0.97)

	updates := s.entries(audit.Filter{EntityType: audit.EntityMapping, Action: audit.ActionUpdate})
	s.Require().Len(updates, 2)
	_, err := s.service.Rollback(s.ctx, updates[0].ID, "")
	s.Require().NoError(err)

	m, err := s.graph.FindMapping(s.ctx, mustParseMappingID(s, updates[0].EntityID))
	s.Require().NoError(err)
	s.InDelta(0.86, m.Confidence, 1e-9)

	creates := s.entries(audit.Filter{EntityType: audit.EntityMapping, Action: audit.ActionCreate})
	s.Require().Len(creates, 2)
	_, err = s.service.Rollback(s.ctx, creates[0].ID, "")
	s.Require().NoError(err)
	_, err = s.graph.FindMapping(s.ctx, mustParseMappingID(s, creates[0].EntityID))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func mustParseMappingID(s *ServiceSuite, raw string) id.MappingID {
	mappingID, err := id.ParseMappingID(raw)
	s.Require().NoError(err)
	return mappingID
}

func (s *ServiceSuite) TestRollbackRejects() {
	a := s.apply(player("a", 2019, "Pat Mahomes"), player("a", 2020, "Pat Mahomes"), 0.95)
	_, err := s.service.UpdateCanonicalName(s.ctx, a.Identity.ID, "Patrick Mahomes", "")
	s.Require().NoError(err)
	update := s.onlyEntry(audit.Filter{EntityType: audit.EntityIdentity, Action: audit.ActionUpdate})
	rollback, err := s.service.Rollback(s.ctx, update.ID, "")
	s.Require().NoError(err)

	s.Run("already rolled back", func() {
		_, err := s.service.Rollback(s.ctx, update.ID, "")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
	s.Run("rollback of a rollback", func() {
		_, err := s.service.Rollback(s.ctx, rollback.ID, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
	s.Run("unknown entry", func() {
		_, err := s.service.Rollback(s.ctx, id.NewAuditID(), "")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
	s.Run("candidate rollback without a candidate store", func() {
		entry := audit.Entry{
			ID: id.NewAuditID(), EntityType: audit.EntityCandidate, EntityID: "c", Action: audit.ActionUpdate,
			BeforeState: []byte(`{}`), AfterState: []byte(`{}`), Timestamp: s.now,
		}
		s.Require().NoError(s.audits.Append(s.ctx, entry))
		_, err := s.service.Rollback(s.ctx, entry.ID, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

type candidateRecorder struct {
	restored []*models.MatchCandidate
}

func (c *candidateRecorder) Put(_ context.Context, candidate *models.MatchCandidate) error {
	c.restored = append(c.restored, candidate.Clone())
	return nil
}

func (s *ServiceSuite) TestRollbackCandidateReview() {
	candidates := &candidateRecorder{}
	svc, err := New(s.graph, s.audits, WithCandidateStore(candidates))
	s.Require().NoError(err)

	pending := models.NewMatchCandidate(player("a", 2019, "Mike Williams"), player("b", 2020, "Mike Williams"),
		scoring.Factors{}, 0.75, scoring.ActionReview, nil, s.now, 0)
	rejected := pending.Clone()
	rejected.ApplyReview(models.CandidateStatusRejected, "admin", "different players", s.now)
	before, err := audit.Snapshot(pending)
	s.Require().NoError(err)
	after, err := audit.Snapshot(rejected)
	s.Require().NoError(err)
	entry := audit.Entry{
		ID: id.NewAuditID(), EntityType: audit.EntityCandidate, EntityID: pending.ID.String(),
		Action: audit.ActionUpdate, BeforeState: before, AfterState: after, Timestamp: s.now,
	}
	s.Require().NoError(s.audits.Append(s.ctx, entry))

	rollback, err := svc.Rollback(s.ctx, entry.ID, "reopen")
	s.Require().NoError(err)
	s.Equal(audit.ActionRollback, rollback.Action)
	s.Require().Len(candidates.restored, 1)
	s.True(candidates.restored[0].IsPending())

	has, err := s.audits.HasRollback(s.ctx, entry.ID)
	s.Require().NoError(err)
	s.True(has)
}
