package store_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"rosterid/internal/identity/models"
	"rosterid/internal/review/store"
	"rosterid/internal/scoring"
	id "rosterid/pkg/domain"
	"rosterid/pkg/platform/sentinel"
)

// contractSuite runs the same behaviour checks against every
// PendingMatchStore implementation.
type contractSuite struct {
	suite.Suite
	newStore func() store.PendingMatchStore
	now      time.Time
}

func (s *contractSuite) candidate(a, b string, confidence float64, ttl time.Duration) *models.MatchCandidate {
	left := models.RawRecord{Kind: id.KindPlayer, ExternalID: a, Season: 2020, DisplayName: a}
	right := models.RawRecord{Kind: id.KindPlayer, ExternalID: b, Season: 2021, DisplayName: b}
	return models.NewMatchCandidate(left, right, scoring.Factors{NameSimilarity: confidence}, confidence,
		scoring.ActionReview, []string{"name"}, s.now, ttl)
}

func (s *contractSuite) TestPutGetOverwrite() {
	ctx := context.Background()
	st := s.newStore()
	c := s.candidate("a", "b", 0.75, 7*24*time.Hour)

	s.Require().NoError(st.Put(ctx, c))
	got, err := st.Get(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.ID, got.ID)
	s.True(got.IsPending())

	c.ApplyReview(models.CandidateStatusRejected, "admin", "no", s.now)
	s.Require().NoError(st.Put(ctx, c))
	got, err = st.Get(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(models.CandidateStatusRejected, got.Status)

	_, err = st.Get(ctx, id.CandidateIDFor("missing"))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *contractSuite) TestListFiltersAndOrders() {
	ctx := context.Background()
	st := s.newStore()
	low := s.candidate("a", "b", 0.55, 7*24*time.Hour)
	high := s.candidate("c", "d", 0.8, 7*24*time.Hour)
	rejected := s.candidate("e", "f", 0.9, 7*24*time.Hour)
	rejected.ApplyReview(models.CandidateStatusRejected, "admin", "", s.now)
	expired := s.candidate("g", "h", 0.95, time.Hour)
	for _, c := range []*models.MatchCandidate{low, high, rejected, expired} {
		s.Require().NoError(st.Put(ctx, c))
	}
	later := s.now.Add(2 * time.Hour)

	pending, err := st.List(ctx, store.Filter{Status: models.CandidateStatusPending, Now: later})
	s.Require().NoError(err)
	s.Require().Len(pending, 2)
	s.Equal(high.ID, pending[0].ID)
	s.Equal(low.ID, pending[1].ID)

	limited, err := st.List(ctx, store.Filter{Limit: 1, Now: later})
	s.Require().NoError(err)
	s.Require().Len(limited, 1)
	s.Equal(rejected.ID, limited[0].ID)

	teams, err := st.List(ctx, store.Filter{Kind: id.KindTeam, Now: later})
	s.Require().NoError(err)
	s.Empty(teams)
}

func (s *contractSuite) TestExpire() {
	ctx := context.Background()
	st := s.newStore()
	short := s.candidate("a", "b", 0.6, time.Hour)
	long := s.candidate("c", "d", 0.6, 48*time.Hour)
	s.Require().NoError(st.Put(ctx, short))
	s.Require().NoError(st.Put(ctx, long))

	removed, err := st.Expire(ctx, s.now.Add(2*time.Hour))
	s.Require().NoError(err)
	s.Equal(1, removed)

	_, err = st.Get(ctx, short.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = st.Get(ctx, long.ID)
	s.NoError(err)

	removed, err = st.Expire(ctx, s.now.Add(2*time.Hour))
	s.Require().NoError(err)
	s.Zero(removed)
}
