package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	identitymetrics "rosterid/internal/identity/metrics"
	"rosterid/internal/identity/models"
	"rosterid/internal/identity/store"
	storemocks "rosterid/internal/identity/store/mocks"
	id "rosterid/pkg/domain"
	dErrors "rosterid/pkg/domain-errors"
	audit "rosterid/pkg/platform/audit"
	auditmocks "rosterid/pkg/platform/audit/mocks"
	auditmemory "rosterid/pkg/platform/audit/store/memory"
	"rosterid/pkg/platform/retry"
	"rosterid/pkg/platform/sentinel"
	"rosterid/pkg/requestcontext"
)

// =============================================================================
// Identity Service Test Suite
// =============================================================================
// Justification for unit tests: the service owns the transactional rules of
// the identity graph (find-or-create, idempotent apply, merge, split and
// rollback). The in-memory store gives the same transaction semantics as
// Postgres, so the rules are verified here without a database.

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	now     time.Time
	graph   *store.InMemoryStore
	audits  *auditmemory.InMemoryStore
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.now = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithActor(requestcontext.WithTime(context.Background(), s.now), "resolver")
	s.graph = store.NewInMemory()
	s.audits = auditmemory.NewInMemoryStore()
	svc, err := New(s.graph, s.audits, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(err)
	s.service = svc
}

func player(externalID string, season int, name string) models.RawRecord {
	return models.RawRecord{
		Kind:        id.KindPlayer,
		ExternalID:  externalID,
		Season:      season,
		DisplayName: name,
		Position:    "QB",
		Team:        "KC",
		Stats:       models.Stats{GamesPlayed: 16, TotalPoints: 350},
	}
}

func team(externalID string, season int, name, owner string) models.RawRecord {
	return models.RawRecord{
		Kind:        id.KindTeam,
		ExternalID:  externalID,
		Season:      season,
		DisplayName: name,
		OwnerName:   owner,
		LeagueID:    "league-1",
	}
}

func (s *ServiceSuite) apply(left, right models.RawRecord, confidence float64) *ApplyResult {
	result, err := s.service.ApplyMatch(s.ctx, Match{
		Left: left, Right: right, Confidence: confidence, Method: models.MethodFuzzy, Reason: "resolver run",
	})
	s.Require().NoError(err)
	return result
}

func (s *ServiceSuite) mappingsOf(identityID id.IdentityID) []*models.IdentityMapping {
	mappings, err := s.graph.ListMappings(s.ctx, identityID)
	s.Require().NoError(err)
	return mappings
}

func (s *ServiceSuite) entries(filter audit.Filter) []audit.Entry {
	entries, err := s.audits.List(s.ctx, filter)
	s.Require().NoError(err)
	return entries
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *ServiceSuite) TestNew() {
	s.Run("nil identity store returns error", func() {
		_, err := New(nil, s.audits)
		s.Require().Error(err)
		s.Contains(err.Error(), "identity store is required")
	})

	s.Run("nil audit store returns error", func() {
		_, err := New(s.graph, nil)
		s.Require().Error(err)
		s.Contains(err.Error(), "audit store is required")
	})

	s.Run("options are applied", func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		cfg := retry.Config{MaxAttempts: 2}
		svc, err := New(s.graph, s.audits, WithLogger(logger), WithRetry(cfg))
		s.Require().NoError(err)
		s.Equal(logger, svc.logger)
		s.Equal(cfg, svc.retry)
		s.NotNil(svc.recorder)
	})
}

// =============================================================================
// ApplyMatch
// =============================================================================
// Justification: applying a pair must be idempotent and must never join two
// existing identities implicitly.

func (s *ServiceSuite) TestApplyMatchCreatesIdentityFromEarliestSeason() {
	result := s.apply(player("p-2021", 2021, "Patrick Mahomes"), player("p-2020", 2020, "Pat Mahomes"), 0.9)

	s.True(result.Created)
	s.Equal("Pat Mahomes", result.Identity.CanonicalName)
	s.Len(result.Mappings, 2)
	s.Len(s.mappingsOf(result.Identity.ID), 2)

	s.Len(s.entries(audit.Filter{EntityType: audit.EntityIdentity, Action: audit.ActionCreate}), 1)
	mappingEntries := s.entries(audit.Filter{EntityType: audit.EntityMapping, Action: audit.ActionCreate})
	s.Len(mappingEntries, 2)
	s.Equal("resolver", mappingEntries[0].PerformedBy)
}

func (s *ServiceSuite) TestApplyMatchIsIdempotent() {
	left, right := player("p1", 2020, "Pat Mahomes"), player("p1", 2021, "Patrick Mahomes")
	first := s.apply(left, right, 0.9)
	second := s.apply(left, right, 0.9)

	s.False(second.Created)
	s.Equal(first.Identity.ID, second.Identity.ID)
	s.Len(s.mappingsOf(first.Identity.ID), 2, "exactly one mapping per side")

	identities, err := s.graph.ListIdentities(s.ctx, id.KindPlayer)
	s.Require().NoError(err)
	s.Len(identities, 1)
	s.Len(s.entries(audit.Filter{EntityType: audit.EntityMapping}), 2, "unchanged mappings are not audited again")
}

func (s *ServiceSuite) TestApplyMatchReusesIdentityOfEitherSide() {
	first := s.apply(player("a", 2019, "Josh Allen"), player("a", 2020, "Josh Allen"), 0.95)
	second := s.apply(player("a", 2020, "Josh Allen"), player("b", 2021, "Joshua Allen"), 0.88)

	s.False(second.Created)
	s.Equal(first.Identity.ID, second.Identity.ID)
	s.Len(s.mappingsOf(first.Identity.ID), 3)
}

func (s *ServiceSuite) TestApplyMatchUpgradesConfidenceOnly() {
	left, right := player("p1", 2020, "Pat Mahomes"), player("p1", 2021, "Patrick Mahomes")
	s.apply(left, right, 0.86)

	s.Run("lower confidence leaves mappings alone", func() {
		result := s.apply(left, right, 0.5)
		for _, m := range result.Mappings {
			s.InDelta(0.86, m.Confidence, 1e-9)
		}
	})

	s.Run("higher confidence rewrites mappings", func() {
		result := s.apply(left, right, 0.97)
		for _, m := range result.Mappings {
			s.InDelta(0.97, m.Confidence, 1e-9)
		}
		s.Len(s.entries(audit.Filter{EntityType: audit.EntityMapping, Action: audit.ActionUpdate}), 2)
	})
}

func (s *ServiceSuite) TestApplyMatchRefusesToJoinDistinctIdentities() {
	s.apply(player("a", 2019, "Mike Williams"), player("a", 2020, "Mike Williams"), 0.95)
	s.apply(player("b", 2019, "Mike Williams"), player("b", 2020, "Mike Williams"), 0.95)

	_, err := s.service.ApplyMatch(s.ctx, Match{
		Left: player("a", 2020, "Mike Williams"), Right: player("b", 2020, "Mike Williams"),
		Confidence: 0.9, Method: models.MethodFuzzy,
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.ErrorIs(err, ErrDistinctIdentities)
}

func (s *ServiceSuite) TestApplyMatchValidation() {
	cases := []struct {
		name  string
		match Match
	}{
		{"invalid record", Match{Left: models.RawRecord{Kind: id.KindPlayer}, Right: player("b", 2020, "B"), Confidence: 0.9, Method: models.MethodFuzzy}},
		{"same record", Match{Left: player("a", 2020, "A"), Right: player("a", 2020, "A"), Confidence: 0.9, Method: models.MethodFuzzy}},
		{"mixed kinds", Match{Left: player("a", 2020, "A"), Right: team("t", 2021, "A", "Owner"), Confidence: 0.9, Method: models.MethodFuzzy}},
		{"confidence out of range", Match{Left: player("a", 2020, "A"), Right: player("a", 2021, "A"), Confidence: 1.2, Method: models.MethodFuzzy}},
		{"unknown method", Match{Left: player("a", 2020, "A"), Right: player("a", 2021, "A"), Confidence: 0.9, Method: "guess"}},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.service.ApplyMatch(s.ctx, tc.match)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func (s *ServiceSuite) TestEnsureIdentityAndAssign() {
	created, err := s.service.EnsureIdentity(s.ctx, team("t1", 2020, "Gridiron Gang", "Alice"), "new team")
	s.Require().NoError(err)
	s.True(created.Created)
	s.Equal("league-1", created.Identity.Metadata.Team.LeagueID)

	again, err := s.service.EnsureIdentity(s.ctx, team("t1", 2020, "Gridiron Gang", "Alice"), "new team")
	s.Require().NoError(err)
	s.False(again.Created)
	s.Equal(created.Identity.ID, again.Identity.ID)

	m, err := s.service.Assign(s.ctx, created.Identity.ID, team("t9", 2021, "Gridiron Gang", "Alice"), 0.8, models.MethodFuzzy, "owner continuity")
	s.Require().NoError(err)
	s.Equal(created.Identity.ID, m.IdentityID)

	_, err = s.service.Assign(s.ctx, created.Identity.ID, player("p", 2021, "Someone"), 0.8, models.MethodFuzzy, "")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

// =============================================================================
// Merge and Split
// =============================================================================
// Justification: merge and split are the only operations that change an
// identity's mapping set wholesale; a partial result corrupts the graph.

func (s *ServiceSuite) TestMerge() {
	primary := s.apply(player("a", 2019, "Pat Mahomes"), player("a", 2020, "Pat Mahomes"), 0.95)
	secondary := s.apply(player("b", 2021, "Patrick Mahomes II"), player("b", 2022, "Patrick Mahomes II"), 0.95)

	merged, err := s.service.Merge(s.ctx, primary.Identity.ID, secondary.Identity.ID, "same player")
	s.Require().NoError(err)

	s.Len(s.mappingsOf(primary.Identity.ID), 4)
	s.Empty(s.mappingsOf(secondary.Identity.ID))
	s.Contains(merged.Metadata.Player.AlternateNames, "Patrick Mahomes II")

	gone, err := s.graph.FindIdentity(s.ctx, secondary.Identity.ID)
	s.Require().NoError(err)
	s.False(gone.IsActive())

	entries := s.entries(audit.Filter{Action: audit.ActionMerge})
	s.Require().Len(entries, 1)
	s.Equal("same player", entries[0].Reason)
	s.Contains(string(entries[0].BeforeState), `"secondary"`)
	s.Contains(string(entries[0].AfterState), `"merged"`)
}

func (s *ServiceSuite) TestMergeRejects() {
	a := s.apply(player("a", 2019, "A Player"), player("a", 2020, "A Player"), 0.95)
	t := s.apply(team("t", 2019, "Team", "Owner"), team("t", 2020, "Team", "Owner"), 0.95)

	s.Run("self merge", func() {
		_, err := s.service.Merge(s.ctx, a.Identity.ID, a.Identity.ID, "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
	s.Run("unknown identity", func() {
		_, err := s.service.Merge(s.ctx, a.Identity.ID, id.NewIdentityID(), "")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
	s.Run("different kinds", func() {
		_, err := s.service.Merge(s.ctx, a.Identity.ID, t.Identity.ID, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func (s *ServiceSuite) TestMergeInterleavesOwnerHistory() {
	first := s.apply(team("t1", 2018, "Gridiron Gang", "Alice"), team("t1", 2019, "Gridiron Gang", "Alice"), 0.95)
	second := s.apply(team("t2", 2020, "Gridiron Gang", "Bob"), team("t2", 2021, "Gridiron Gang", "Bob"), 0.95)

	merged, err := s.service.Merge(s.ctx, first.Identity.ID, second.Identity.ID, "provider re-issued id")
	s.Require().NoError(err)

	history := merged.Metadata.Team.OwnerHistory
	s.Require().Len(history, 2)
	s.Equal("Alice", history[0].Owner)
	s.Require().NotNil(history[0].EndSeason)
	s.Equal(2019, *history[0].EndSeason)
	s.Equal("Bob", history[1].Owner)
	s.NoError(models.ValidateOwnerHistory(history))
}

func (s *ServiceSuite) TestMergeFailureLeavesGraphUntouched() {
	primary := s.apply(player("a", 2019, "Pat Mahomes"), player("a", 2020, "Pat Mahomes"), 0.95)
	secondary := s.apply(player("b", 2021, "Patrick Mahomes"), player("b", 2022, "Patrick Mahomes"), 0.95)

	failing, err := New(failOnDelete{s.graph}, s.audits)
	s.Require().NoError(err)

	_, err = failing.Merge(s.ctx, primary.Identity.ID, secondary.Identity.ID, "")
	s.Require().Error(err)

	s.Len(s.mappingsOf(primary.Identity.ID), 2)
	s.Len(s.mappingsOf(secondary.Identity.ID), 2, "no mapping points at the wrong identity")
	still, err := s.graph.FindIdentity(s.ctx, secondary.Identity.ID)
	s.Require().NoError(err)
	s.True(still.IsActive())
	p, err := s.graph.FindIdentity(s.ctx, primary.Identity.ID)
	s.Require().NoError(err)
	s.Equal(primary.Identity.Version, p.Version)
	s.Empty(s.entries(audit.Filter{Action: audit.ActionMerge}))
}

func (s *ServiceSuite) TestSplit() {
	base := s.apply(player("a", 2019, "Mike Williams"), player("a", 2020, "Mike Williams"), 0.9)
	extra := s.apply(player("a", 2020, "Mike Williams"), player("b", 2021, "Michael Williams"), 0.86)
	s.Require().Equal(base.Identity.ID, extra.Identity.ID)
	moving := extra.Mappings[1]

	result, err := s.service.Split(s.ctx, base.Identity.ID, []id.MappingID{moving.ID}, "different person")
	s.Require().NoError(err)

	s.Equal("Michael Williams", result.Split.CanonicalName)
	s.Len(s.mappingsOf(base.Identity.ID), 2)
	split := s.mappingsOf(result.Split.ID)
	s.Require().Len(split, 1)
	s.Equal(moving.ID, split[0].ID)

	entries := s.entries(audit.Filter{Action: audit.ActionSplit})
	s.Require().Len(entries, 1)
	s.Contains(string(entries[0].AfterState), `"mappings_split"`)
}

func (s *ServiceSuite) TestSplitRejects() {
	a := s.apply(player("a", 2019, "A Player"), player("a", 2020, "A Player"), 0.95)
	b := s.apply(player("b", 2019, "B Player"), player("b", 2020, "B Player"), 0.95)

	s.Run("no mappings", func() {
		_, err := s.service.Split(s.ctx, a.Identity.ID, nil, "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
	s.Run("foreign mapping", func() {
		_, err := s.service.Split(s.ctx, a.Identity.ID, []id.MappingID{b.Mappings[0].ID}, "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
	s.Run("unknown mapping", func() {
		_, err := s.service.Split(s.ctx, a.Identity.ID, []id.MappingID{id.NewMappingID()}, "")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
	s.Run("every mapping", func() {
		_, err := s.service.Split(s.ctx, a.Identity.ID, models.MappingIDs(a.Mappings), "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
	s.Len(s.mappingsOf(a.Identity.ID), 2)
}

func (s *ServiceSuite) TestSplitThenMergeRestoresMappingSet() {
	base := s.apply(player("a", 2019, "Mike Williams"), player("a", 2020, "Mike Williams"), 0.9)
	s.apply(player("a", 2020, "Mike Williams"), player("b", 2021, "Michael Williams"), 0.86)
	original := models.MappingIDs(s.mappingsOf(base.Identity.ID))
	auditBefore := len(s.entries(audit.Filter{}))

	result, err := s.service.Split(s.ctx, base.Identity.ID, original[2:], "")
	s.Require().NoError(err)
	_, err = s.service.Merge(s.ctx, base.Identity.ID, result.Split.ID, "")
	s.Require().NoError(err)

	s.ElementsMatch(original, models.MappingIDs(s.mappingsOf(base.Identity.ID)))
	s.Len(s.entries(audit.Filter{}), auditBefore+2)
}

// =============================================================================
// Updates
// =============================================================================

func (s *ServiceSuite) TestUpdateCanonicalName() {
	a := s.apply(player("a", 2019, "Pat Mahomes"), player("a", 2020, "Pat Mahomes"), 0.95)

	renamed, err := s.service.UpdateCanonicalName(s.ctx, a.Identity.ID, "Patrick Mahomes", "official name")
	s.Require().NoError(err)
	s.Equal("Patrick Mahomes", renamed.CanonicalName)
	s.Contains(renamed.Metadata.Player.AlternateNames, "Pat Mahomes")
	s.Len(s.entries(audit.Filter{EntityType: audit.EntityIdentity, Action: audit.ActionUpdate}), 1)

	_, err = s.service.UpdateCanonicalName(s.ctx, a.Identity.ID, "  ", "")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestExtendOwnerHistory() {
	t := s.apply(team("t", 2019, "Gridiron Gang", "Alice"), team("t", 2020, "Gridiron Gang", "Alice"), 0.95)

	updated, err := s.service.ExtendOwnerHistory(s.ctx, t.Identity.ID, "Bob", 2021, "ownership change")
	s.Require().NoError(err)
	history := updated.Metadata.Team.OwnerHistory
	s.Require().Len(history, 2)
	s.Equal("Bob", models.LatestOwner(history))

	unchanged, err := s.service.ExtendOwnerHistory(s.ctx, t.Identity.ID, "Bob", 2021, "")
	s.Require().NoError(err)
	s.Equal(updated.Version, unchanged.Version)
	s.Len(s.entries(audit.Filter{Action: audit.ActionUpdate}), 1)

	p := s.apply(player("p", 2019, "A Player"), player("p", 2020, "A Player"), 0.95)
	_, err = s.service.ExtendOwnerHistory(s.ctx, p.Identity.ID, "Bob", 2021, "")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestDeleteIdentity() {
	a := s.apply(player("a", 2019, "A Player"), player("a", 2020, "A Player"), 0.95)

	s.Require().NoError(s.service.DeleteIdentity(s.ctx, a.Identity.ID, "duplicate"))
	s.Empty(s.mappingsOf(a.Identity.ID))

	_, err := s.service.LookupMapping(s.ctx, id.KindPlayer, "a", 2019)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	err = s.service.DeleteIdentity(s.ctx, a.Identity.ID, "")
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

// =============================================================================
// Queries
// =============================================================================

func (s *ServiceSuite) TestLookups() {
	a := s.apply(player("a", 2019, "A Player"), player("a", 2020, "A Player"), 0.95)

	view, err := s.service.LookupMapping(s.ctx, id.KindPlayer, "a", 2020)
	s.Require().NoError(err)
	s.Equal(a.Identity.ID, view.Identity.ID)

	mappings, err := s.service.LookupExternalID(s.ctx, id.KindPlayer, "a")
	s.Require().NoError(err)
	s.Len(mappings, 2)

	summaries, err := s.service.ListIdentities(s.ctx, id.KindPlayer)
	s.Require().NoError(err)
	s.Require().Len(summaries, 1)
	s.Equal(2020, summaries[0].LatestSeason)

	_, err = s.service.LookupMapping(s.ctx, "coach", "a", 2020)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

// =============================================================================
// Concurrency and audit failure
// =============================================================================
// Justification: conflicts must be retried with bounded backoff and audit
// failures must never fail the mutation. Both paths need injected faults.

func (s *ServiceSuite) TestConflictIsRetried() {
	ctrl := gomock.NewController(s.T())
	mockStore := storemocks.NewMockStore(ctrl)
	m := identitymetrics.New(prometheus.NewRegistry())
	svc, err := New(mockStore, s.audits,
		WithMetrics(m),
		WithRetry(retry.Config{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}),
	)
	s.Require().NoError(err)
	match := Match{Left: player("a", 2019, "A"), Right: player("a", 2020, "A"), Confidence: 0.9, Method: models.MethodFuzzy}

	s.Run("succeeds after conflicts", func() {
		gomock.InOrder(
			mockStore.EXPECT().RunInTx(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict),
			mockStore.EXPECT().RunInTx(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict),
			mockStore.EXPECT().RunInTx(gomock.Any(), gomock.Any()).DoAndReturn(
				func(ctx context.Context, fn func(context.Context, store.Store) error) error {
					return s.graph.RunInTx(ctx, fn)
				}),
		)
		result, err := svc.ApplyMatch(s.ctx, match)
		s.Require().NoError(err)
		s.True(result.Created)
		s.Equal(2.0, testutil.ToFloat64(m.ConflictRetries.WithLabelValues("apply_match")))
	})

	s.Run("surfaces conflict when attempts run out", func() {
		mockStore.EXPECT().RunInTx(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict).Times(3)
		_, err := svc.ApplyMatch(s.ctx, match)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.True(errors.Is(err, sentinel.ErrConflict))
	})
}

func (s *ServiceSuite) TestAuditFailureDoesNotFailMutation() {
	ctrl := gomock.NewController(s.T())
	failingAudits := auditmocks.NewMockStore(ctrl)
	failingAudits.EXPECT().Append(gomock.Any(), gomock.Any()).Return(errors.New("audit db down")).Times(3)

	svc, err := New(s.graph, failingAudits)
	s.Require().NoError(err)

	result, err := svc.ApplyMatch(s.ctx, Match{
		Left: player("a", 2019, "A"), Right: player("a", 2020, "A"), Confidence: 0.9, Method: models.MethodFuzzy,
	})
	s.Require().NoError(err)
	s.Len(s.mappingsOf(result.Identity.ID), 2)
}

// failOnDelete fails DeleteIdentity inside transactions, after a merge has
// already reassigned mappings.
type failOnDelete struct {
	store.Store
}

func (f failOnDelete) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	return f.Store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		return fn(ctx, failOnDelete{tx})
	})
}

func (f failOnDelete) DeleteIdentity(context.Context, id.IdentityID, time.Time) error {
	return errors.New("injected failure")
}
