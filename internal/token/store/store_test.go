package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"qrpass/internal/token/metrics"
	"qrpass/pkg/platform/sentinel"
)

// StoreSuite runs the same behaviour against every backend. advance moves the
// backend's notion of time forward.
type StoreSuite struct {
	suite.Suite
	ctx     context.Context
	newFunc func(t *testing.T) (Store, func(time.Duration))
	store   Store
	advance func(time.Duration)
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store, s.advance = s.newFunc(s.T())
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, &StoreSuite{newFunc: func(t *testing.T) (Store, func(time.Duration)) {
		clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
		return NewInMemory(WithClock(clock.Now)), clock.Advance
	}})
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, &StoreSuite{newFunc: func(t *testing.T) (Store, func(time.Duration)) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		return NewRedis(client), mr.FastForward
	}})
}

var sampleFields = map[string]string{
	"first_name": "Иван",
	"last_name":  "Иванов",
	"b_day":      "2020-01-01",
	"qr":         "aGVsbG8=",
}

func (s *StoreSuite) TestWriteAndRead() {
	s.Run("round trips every field", func() {
		s.Require().NoError(s.store.WriteFields(s.ctx, "1000000000000001", sampleFields))

		got, err := s.store.ReadAll(s.ctx, "1000000000000001")
		s.Require().NoError(err)
		s.Equal(sampleFields, got)

		exists, err := s.store.Exists(s.ctx, "1000000000000001")
		s.Require().NoError(err)
		s.True(exists)
	})

	s.Run("absent record reads as empty", func() {
		got, err := s.store.ReadAll(s.ctx, "9999999999999999")
		s.Require().NoError(err)
		s.NotNil(got)
		s.Empty(got)

		exists, err := s.store.Exists(s.ctx, "9999999999999999")
		s.Require().NoError(err)
		s.False(exists)
	})

	s.Run("empty write creates nothing", func() {
		s.Require().NoError(s.store.WriteFields(s.ctx, "1000000000000002", nil))
		exists, err := s.store.Exists(s.ctx, "1000000000000002")
		s.Require().NoError(err)
		s.False(exists)
	})

	s.Run("second write merges fields", func() {
		s.Require().NoError(s.store.WriteFields(s.ctx, "1000000000000003", map[string]string{"a": "1", "b": "2"}))
		s.Require().NoError(s.store.WriteFields(s.ctx, "1000000000000003", map[string]string{"b": "3"}))

		got, err := s.store.ReadAll(s.ctx, "1000000000000003")
		s.Require().NoError(err)
		s.Equal(map[string]string{"a": "1", "b": "3"}, got)
	})
}

func (s *StoreSuite) TestExpiry() {
	s.Run("record disappears once ttl elapses", func() {
		s.Require().NoError(s.store.WriteFields(s.ctx, "2000000000000001", sampleFields))
		s.Require().NoError(s.store.SetExpiry(s.ctx, "2000000000000001", 10*time.Second))

		s.advance(9 * time.Second)
		exists, err := s.store.Exists(s.ctx, "2000000000000001")
		s.Require().NoError(err)
		s.True(exists)

		s.advance(time.Second)
		exists, err = s.store.Exists(s.ctx, "2000000000000001")
		s.Require().NoError(err)
		s.False(exists)

		got, err := s.store.ReadAll(s.ctx, "2000000000000001")
		s.Require().NoError(err)
		s.Empty(got)
	})

	s.Run("zero ttl removes the record immediately", func() {
		s.Require().NoError(s.store.WriteFields(s.ctx, "2000000000000002", sampleFields))
		s.Require().NoError(s.store.SetExpiry(s.ctx, "2000000000000002", 0))

		exists, err := s.store.Exists(s.ctx, "2000000000000002")
		s.Require().NoError(err)
		s.False(exists)
	})

	s.Run("expiry on a missing key is not an error", func() {
		s.NoError(s.store.SetExpiry(s.ctx, "2000000000000003", time.Minute))
	})
}

func (s *StoreSuite) TestConcurrentReads() {
	s.Require().NoError(s.store.WriteFields(s.ctx, "3000000000000001", sampleFields))
	s.Require().NoError(s.store.SetExpiry(s.ctx, "3000000000000001", time.Hour))

	var wg sync.WaitGroup
	results := make([]map[string]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := s.store.ReadAll(s.ctx, "3000000000000001")
			if err == nil {
				results[i] = got
			}
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		s.Equal(sampleFields, got)
	}
}

func TestRedisStoreKeyLayout(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	st := NewRedis(client)
	ctx := context.Background()

	require.NoError(t, st.WriteFields(ctx, "4000000000000001", map[string]string{"series": "12", "number": "789"}))
	require.NoError(t, st.SetExpiry(ctx, "4000000000000001", time.Hour))

	assert.True(t, mr.Exists("qrpass:token:4000000000000001"))
	assert.Equal(t, "12", mr.HGet("qrpass:token:4000000000000001", "series"))
	assert.Equal(t, time.Hour, mr.TTL("qrpass:token:4000000000000001"))
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	st := NewRedis(client)
	ctx := context.Background()

	mr.Close()

	_, err := st.Exists(ctx, "1")
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	assert.ErrorIs(t, st.WriteFields(ctx, "1", map[string]string{"a": "b"}), sentinel.ErrUnavailable)
	assert.ErrorIs(t, st.SetExpiry(ctx, "1", time.Minute), sentinel.ErrUnavailable)
	_, err = st.ReadAll(ctx, "1")
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
}

func TestRedisStoreMetrics(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	reg := prometheus.NewRegistry()
	st := NewRedis(client, WithRedisMetrics(metrics.New(reg)))
	ctx := context.Background()

	require.NoError(t, st.WriteFields(ctx, "5000000000000001", map[string]string{"a": "b"}))
	_, err := st.ReadAll(ctx, "5000000000000001")
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "qrpass_store_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
