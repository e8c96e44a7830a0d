//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"qrpass/internal/token/store"
	"qrpass/pkg/testutil/containers"
)

type RedisIntegrationSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.RedisStore
}

func TestRedisIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisIntegrationSuite))
}

func (s *RedisIntegrationSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = store.NewRedis(s.redis.Client)
}

func (s *RedisIntegrationSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisIntegrationSuite) TestRecordLifecycle() {
	ctx := context.Background()
	fields := map[string]string{"first_name": "Иван", "series": "12", "number": "789"}

	s.Require().NoError(s.store.WriteFields(ctx, "6000000000000001", fields))
	s.Require().NoError(s.store.SetExpiry(ctx, "6000000000000001", time.Minute))

	ttl, err := s.redis.Client.TTL(ctx, store.Key("6000000000000001")).Result()
	s.Require().NoError(err)
	s.Greater(ttl, 50*time.Second)

	got, err := s.store.ReadAll(ctx, "6000000000000001")
	s.Require().NoError(err)
	s.Equal(fields, got)
}

func (s *RedisIntegrationSuite) TestZeroTTLDeletes() {
	ctx := context.Background()
	s.Require().NoError(s.store.WriteFields(ctx, "6000000000000002", map[string]string{"a": "b"}))
	s.Require().NoError(s.store.SetExpiry(ctx, "6000000000000002", 0))

	exists, err := s.store.Exists(ctx, "6000000000000002")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *RedisIntegrationSuite) TestRealExpiry() {
	ctx := context.Background()
	s.Require().NoError(s.store.WriteFields(ctx, "6000000000000003", map[string]string{"a": "b"}))
	s.Require().NoError(s.store.SetExpiry(ctx, "6000000000000003", time.Second))

	s.Eventually(func() bool {
		exists, err := s.store.Exists(ctx, "6000000000000003")
		return err == nil && !exists
	}, 5*time.Second, 100*time.Millisecond)
}
