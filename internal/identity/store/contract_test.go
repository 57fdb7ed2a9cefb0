package store_test

import (
	"context"
	"errors"
	"time"

	"github.com/stretchr/testify/suite"

	"rosterid/internal/identity/models"
	"rosterid/internal/identity/store"
	id "rosterid/pkg/domain"
	"rosterid/pkg/platform/sentinel"
)

// contractSuite holds behaviour every Store implementation must share.
// Concrete suites embed it and set newStore.
type contractSuite struct {
	suite.Suite
	newStore func() store.Store
	now      time.Time
}

func (s *contractSuite) record(ext string, season int, name string) models.RawRecord {
	return models.RawRecord{
		Kind:        id.KindPlayer,
		ExternalID:  ext,
		Season:      season,
		DisplayName: name,
		Position:    "WR",
		Team:        "LAC",
		Stats:       models.Stats{GamesPlayed: 15, TotalPoints: 180},
	}
}

func (s *contractSuite) seedIdentity(st store.Store, r models.RawRecord) *models.MasterIdentity {
	identity, err := models.NewMasterIdentity(id.NewIdentityID(), r, 1, s.now)
	s.Require().NoError(err)
	s.Require().NoError(st.CreateIdentity(context.Background(), identity))
	return identity
}

func (s *contractSuite) seedMapping(st store.Store, identityID id.IdentityID, r models.RawRecord) *models.IdentityMapping {
	m, err := models.NewIdentityMapping(id.NewMappingID(), identityID, r, 0.9, models.MethodFuzzy, s.now)
	s.Require().NoError(err)
	stored, err := st.UpsertMapping(context.Background(), m)
	s.Require().NoError(err)
	return stored
}

func (s *contractSuite) TestIdentityLifecycle() {
	ctx := context.Background()
	st := s.newStore()
	identity := s.seedIdentity(st, s.record("p1", 2021, "Mike Williams"))

	s.Run("find returns a stored copy", func() {
		found, err := st.FindIdentity(ctx, identity.ID)
		s.Require().NoError(err)
		s.Equal(identity.CanonicalName, found.CanonicalName)
		s.Equal(int64(1), found.Version)
		s.Require().NotNil(found.Metadata.Player)
	})

	s.Run("duplicate create conflicts", func() {
		err := st.CreateIdentity(ctx, identity)
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("update is version checked", func() {
		current, err := st.FindIdentity(ctx, identity.ID)
		s.Require().NoError(err)
		stale := current.Clone()

		s.Require().NoError(current.Rename("Michael Williams", 0.9, s.now))
		s.Require().NoError(st.UpdateIdentity(ctx, current))
		s.Equal(int64(2), current.Version)

		s.Require().NoError(stale.Rename("Mikey Williams", 0.5, s.now))
		s.ErrorIs(st.UpdateIdentity(ctx, stale), sentinel.ErrConflict)

		found, err := st.FindIdentity(ctx, identity.ID)
		s.Require().NoError(err)
		s.Equal("Michael Williams", found.CanonicalName)
	})

	s.Run("soft delete hides from list", func() {
		s.Require().NoError(st.DeleteIdentity(ctx, identity.ID, s.now))
		found, err := st.FindIdentity(ctx, identity.ID)
		s.Require().NoError(err)
		s.False(found.IsActive())

		list, err := st.ListIdentities(ctx, id.KindPlayer)
		s.Require().NoError(err)
		s.Empty(list)

		s.ErrorIs(st.DeleteIdentity(ctx, identity.ID, s.now), sentinel.ErrInvalidState)
	})

	s.Run("unknown identity", func() {
		_, err := st.FindIdentity(ctx, id.NewIdentityID())
		s.ErrorIs(err, sentinel.ErrNotFound)
		s.ErrorIs(st.DeleteIdentity(ctx, id.NewIdentityID(), s.now), sentinel.ErrNotFound)
	})
}

func (s *contractSuite) TestMappingUniquePerRecord() {
	ctx := context.Background()
	st := s.newStore()
	r := s.record("p1", 2021, "Mike Williams")
	first := s.seedIdentity(st, r)
	second := s.seedIdentity(st, s.record("p9", 2022, "Mike Williams"))

	original := s.seedMapping(st, first.ID, r)

	again, err := models.NewIdentityMapping(id.NewMappingID(), second.ID, r, 0.95, models.MethodManual, s.now)
	s.Require().NoError(err)
	stored, err := st.UpsertMapping(ctx, again)
	s.Require().NoError(err)

	s.Equal(original.ID, stored.ID, "existing row is rewritten in place")
	s.Equal(second.ID, stored.IdentityID)
	s.Equal(models.MethodManual, stored.Method)

	byRecord, err := st.FindMappingByRecord(ctx, r.Key())
	s.Require().NoError(err)
	s.Equal(original.ID, byRecord.ID)

	forFirst, err := st.ListMappings(ctx, first.ID)
	s.Require().NoError(err)
	s.Empty(forFirst)
}

func (s *contractSuite) TestReassignAndDeleteMappings() {
	ctx := context.Background()
	st := s.newStore()
	from := s.seedIdentity(st, s.record("p1", 2020, "Keenan Allen"))
	to := s.seedIdentity(st, s.record("p2", 2021, "Keenan Allen"))
	m1 := s.seedMapping(st, from.ID, s.record("p1", 2020, "Keenan Allen"))
	m2 := s.seedMapping(st, from.ID, s.record("p1", 2021, "Keenan Allen"))

	s.Run("unknown mapping fails the whole reassignment", func() {
		err := st.ReassignMappings(ctx, []id.MappingID{m1.ID, id.NewMappingID()}, to.ID, s.now)
		s.ErrorIs(err, sentinel.ErrNotFound)
		list, err := st.ListMappings(ctx, from.ID)
		s.Require().NoError(err)
		s.Len(list, 2)
	})

	s.Run("reassign moves mappings", func() {
		s.Require().NoError(st.ReassignMappings(ctx, []id.MappingID{m2.ID}, to.ID, s.now))
		moved, err := st.FindMapping(ctx, m2.ID)
		s.Require().NoError(err)
		s.Equal(to.ID, moved.IdentityID)

		latest, err := st.LatestSeason(ctx, from.ID)
		s.Require().NoError(err)
		s.Equal(2020, latest)
	})

	s.Run("by external id spans identities", func() {
		list, err := st.ListMappingsByExternalID(ctx, id.KindPlayer, "p1")
		s.Require().NoError(err)
		s.Require().Len(list, 2)
		s.Equal(2020, list[0].Record.Season)
		s.Equal(2021, list[1].Record.Season)
	})

	s.Run("delete removes mappings and frees the record key", func() {
		s.Require().NoError(st.DeleteMappings(ctx, []id.MappingID{m1.ID}))
		_, err := st.FindMapping(ctx, m1.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)
		_, err = st.FindMappingByRecord(ctx, m1.Record)
		s.ErrorIs(err, sentinel.ErrNotFound)

		latest, err := st.LatestSeason(ctx, from.ID)
		s.Require().NoError(err)
		s.Zero(latest)
	})
}

func (s *contractSuite) TestRunInTxRollsBackOnError() {
	ctx := context.Background()
	st := s.newStore()
	primary := s.seedIdentity(st, s.record("p1", 2020, "Davante Adams"))
	secondary := s.seedIdentity(st, s.record("p2", 2021, "Davante Adams"))
	m := s.seedMapping(st, secondary.ID, s.record("p2", 2021, "Davante Adams"))

	injected := errors.New("injected failure")
	err := st.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.ReassignMappings(ctx, []id.MappingID{m.ID}, primary.ID, s.now); err != nil {
			return err
		}
		return injected
	})
	s.ErrorIs(err, injected)

	found, err := st.FindMapping(ctx, m.ID)
	s.Require().NoError(err)
	s.Equal(secondary.ID, found.IdentityID)
}

func (s *contractSuite) TestRunInTxCommits() {
	ctx := context.Background()
	st := s.newStore()
	r := s.record("p1", 2020, "Cooper Kupp")

	var created *models.MasterIdentity
	err := st.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		identity, err := models.NewMasterIdentity(id.NewIdentityID(), r, 1, s.now)
		if err != nil {
			return err
		}
		if err := tx.CreateIdentity(ctx, identity); err != nil {
			return err
		}
		m, err := models.NewIdentityMapping(id.NewMappingID(), identity.ID, r, 1, models.MethodExact, s.now)
		if err != nil {
			return err
		}
		if _, err := tx.UpsertMapping(ctx, m); err != nil {
			return err
		}
		created = identity
		return nil
	})
	s.Require().NoError(err)

	list, err := st.ListMappings(ctx, created.ID)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *contractSuite) TestTxSeesItsOwnWrites() {
	ctx := context.Background()
	st := s.newStore()
	from := s.seedIdentity(st, s.record("p1", 2020, "Keenan Allen"))
	kept := s.seedMapping(st, from.ID, s.record("p1", 2020, "Keenan Allen"))
	moved := s.seedMapping(st, from.ID, s.record("p1", 2021, "Keenan Allen"))

	boom := errors.New("abort")
	check := func(tx store.Store) {
		to, err := models.NewMasterIdentity(id.NewIdentityID(), s.record("p1", 2022, "Keenan Allen"), 1, s.now)
		s.Require().NoError(err)
		s.Require().NoError(tx.CreateIdentity(ctx, to))
		s.Require().NoError(tx.ReassignMappings(ctx, []id.MappingID{moved.ID}, to.ID, s.now))

		fresh, err := models.NewIdentityMapping(id.NewMappingID(), to.ID, s.record("p1", 2022, "Keenan Allen"), 0.9, models.MethodFuzzy, s.now)
		s.Require().NoError(err)
		_, err = tx.UpsertMapping(ctx, fresh)
		s.Require().NoError(err)
		s.Require().NoError(tx.DeleteMappings(ctx, []id.MappingID{kept.ID}))

		left, err := tx.ListMappings(ctx, from.ID)
		s.Require().NoError(err)
		s.Empty(left)
		right, err := tx.ListMappings(ctx, to.ID)
		s.Require().NoError(err)
		s.Equal([]id.MappingID{moved.ID, fresh.ID}, models.MappingIDs(right))

		latest, err := tx.LatestSeason(ctx, to.ID)
		s.Require().NoError(err)
		s.Equal(2022, latest)

		byExternal, err := tx.ListMappingsByExternalID(ctx, id.KindPlayer, "p1")
		s.Require().NoError(err)
		s.Len(byExternal, 2)

		_, err = tx.FindMappingByRecord(ctx, kept.Record)
		s.ErrorIs(err, sentinel.ErrNotFound)
	}

	s.Run("rolled back", func() {
		err := st.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
			check(tx)
			return boom
		})
		s.ErrorIs(err, boom)

		mappings, err := st.ListMappings(ctx, from.ID)
		s.Require().NoError(err)
		s.Equal([]id.MappingID{kept.ID, moved.ID}, models.MappingIDs(mappings))
		byExternal, err := st.ListMappingsByExternalID(ctx, id.KindPlayer, "p1")
		s.Require().NoError(err)
		s.Len(byExternal, 2)
	})

	s.Run("committed", func() {
		s.Require().NoError(st.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
			check(tx)
			return nil
		}))

		mappings, err := st.ListMappings(ctx, from.ID)
		s.Require().NoError(err)
		s.Empty(mappings)
		_, err = st.FindMappingByRecord(ctx, kept.Record)
		s.ErrorIs(err, sentinel.ErrNotFound)
		byExternal, err := st.ListMappingsByExternalID(ctx, id.KindPlayer, "p1")
		s.Require().NoError(err)
		s.Len(byExternal, 2)
	})
}
