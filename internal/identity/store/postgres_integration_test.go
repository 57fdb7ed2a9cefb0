//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"rosterid/internal/identity/store"
	"rosterid/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	contractSuite
	postgres *containers.PostgresContainer
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	s := &PostgresStoreSuite{}
	// Postgres keeps microseconds; a whole-second clock compares cleanly.
	s.now = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	suite.Run(t, s)
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.newStore = func() store.Store {
		err := s.postgres.TruncateTables(context.Background(), "identity_mappings", "master_identities")
		s.Require().NoError(err)
		return store.NewPostgres(s.postgres.DB)
	}
}
