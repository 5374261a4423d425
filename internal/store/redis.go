package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps browser state in a Redis hash per browser so several
// frontend instances can serve the same browser.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore connects to Redis at addr. The TTL is refreshed on every
// write so active browsers never expire mid-session.
func NewRedisStore(addr string, ttl time.Duration) *RedisStore {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// Ping verifies the connection at startup.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func browserKey(browserID string) string {
	return "tmm:browser:" + browserID
}

func (s *RedisStore) Get(ctx context.Context, browserID, key string) (string, bool, error) {
	v, err := s.rdb.HGet(ctx, browserKey(browserID), key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, browserID, key, value string) error {
	k := browserKey(browserID)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, k, key, value)
	if s.ttl > 0 {
		pipe.Expire(ctx, k, s.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Delete(ctx context.Context, browserID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.HDel(ctx, browserKey(browserID), keys...).Err()
}
