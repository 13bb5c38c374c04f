package kvsearch

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Store backed by a Redis server. Connection handling,
// pooling, timeouts and retries are all left to the go-redis client.
type RedisStore struct {
	rdb    redis.Cmdable
	closer func() error
}

var (
	_ Store   = (*RedisStore)(nil)
	_ Flusher = (*RedisStore)(nil)
)

// NewRedisStore creates a client from opt; the options are passed to
// go-redis unchanged.
func NewRedisStore(opt *redis.Options) *RedisStore {
	rdb := redis.NewClient(opt)
	return &RedisStore{rdb: rdb, closer: rdb.Close}
}

// NewRedisStoreFromURL parses a redis:// URL and pings the server.
func NewRedisStoreFromURL(ctx context.Context, rawURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("kvsearch: redis: %w", err)
	}
	s := NewRedisStore(opt)
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		s.Close()
		return nil, fmt.Errorf("kvsearch: redis: ping %s: %w", opt.Addr, err)
	}
	return s, nil
}

// WrapRedis uses an existing client (single node, cluster or ring). Closing
// the store does not close the client.
func WrapRedis(rdb redis.Cmdable) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Client returns the underlying go-redis client.
func (s *RedisStore) Client() redis.Cmdable {
	return s.rdb
}

func (s *RedisStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.rdb.Set(ctx, key, value, 0).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	} else if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	return s.rdb.Keys(ctx, pattern).Result()
}

func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}

// FlushAll runs FLUSHALL, wiping every database on the server.
func (s *RedisStore) FlushAll(ctx context.Context) error {
	return s.rdb.FlushAll(ctx).Err()
}
