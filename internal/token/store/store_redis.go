package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"qrpass/internal/token/metrics"
	"qrpass/pkg/platform/sentinel"
)

// RedisStore keeps each record in a Redis hash under KeyPrefix+id.
type RedisStore struct {
	client  redis.Cmdable
	metrics *metrics.Metrics
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisMetrics records per-operation latency.
func WithRedisMetrics(m *metrics.Metrics) RedisOption {
	return func(s *RedisStore) {
		s.metrics = m
	}
}

// NewRedis constructs a Redis-backed store. The client lifecycle is managed
// by the caller.
func NewRedis(client redis.Cmdable, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *RedisStore) Exists(ctx context.Context, id string) (bool, error) {
	defer s.observe("exists", time.Now())

	n, err := s.client.Exists(ctx, Key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: exists %s: %v", sentinel.ErrUnavailable, id, err)
	}
	return n > 0, nil
}

// WriteFields issues a single HSET with all pairs in key order.
func (s *RedisStore) WriteFields(ctx context.Context, id string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	defer s.observe("write", time.Now())

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]any, 0, 2*len(names))
	for _, name := range names {
		pairs = append(pairs, name, fields[name])
	}
	if err := s.client.HSet(ctx, Key(id), pairs...).Err(); err != nil {
		return fmt.Errorf("%w: hset %s: %v", sentinel.ErrUnavailable, id, err)
	}
	return nil
}

// SetExpiry passes ttl through to EXPIRE; Redis deletes the key when the
// value is not positive.
func (s *RedisStore) SetExpiry(ctx context.Context, id string, ttl time.Duration) error {
	defer s.observe("expire", time.Now())

	if err := s.client.Expire(ctx, Key(id), ttl).Err(); err != nil {
		return fmt.Errorf("%w: expire %s: %v", sentinel.ErrUnavailable, id, err)
	}
	return nil
}

func (s *RedisStore) ReadAll(ctx context.Context, id string) (map[string]string, error) {
	defer s.observe("read", time.Now())

	fields, err := s.client.HGetAll(ctx, Key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: hgetall %s: %v", sentinel.ErrUnavailable, id, err)
	}
	if fields == nil {
		fields = map[string]string{}
	}
	return fields, nil
}

func (s *RedisStore) observe(op string, start time.Time) {
	s.metrics.ObserveStoreOp(op, time.Since(start))
}
