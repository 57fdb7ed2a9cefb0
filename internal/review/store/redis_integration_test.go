//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"rosterid/internal/review/store"
	"rosterid/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	contractSuite
	redis *containers.RedisContainer
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	s := &RedisStoreSuite{}
	// Candidates must outlive the test so Redis TTLs never race the assertions.
	s.now = time.Now().UTC().Truncate(time.Millisecond)
	suite.Run(t, s)
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.newStore = func() store.PendingMatchStore {
		s.Require().NoError(s.redis.Reset(context.Background()))
		return store.NewRedis(s.redis.Client, store.WithKeyPrefix("test:review:"))
	}
}

func (s *RedisStoreSuite) TestStaleIndexMembersAreDropped() {
	ctx := context.Background()
	st := s.newStore()
	c := s.candidate("x", "y", 0.7, 24*time.Hour)
	s.Require().NoError(st.Put(ctx, c))
	s.Require().NoError(s.redis.Client.Del(ctx, "test:review:candidate:"+c.ID.String()).Err())

	list, err := st.List(ctx, store.Filter{Now: s.now})
	s.Require().NoError(err)
	s.Empty(list)

	members, err := s.redis.Client.ZCard(ctx, "test:review:expiry").Result()
	s.Require().NoError(err)
	s.Zero(members)
}
