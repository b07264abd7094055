package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a CounterStore backed by a shared Redis instance, for
// deployments where several processes serve the same fleet.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: "rl:"}
}

func (s *RedisStore) redisKey(key string, window time.Time) string {
	return s.prefix + key + ":" + strconv.FormatInt(window.Unix(), 10)
}

func (s *RedisStore) Incr(ctx context.Context, key string, window time.Time, ttl time.Duration) (int64, error) {
	rk := s.redisKey(key, window)
	cnt, err := s.rdb.Incr(ctx, rk).Result()
	if err != nil {
		return 0, err
	}
	if cnt == 1 {
		_ = s.rdb.Expire(ctx, rk, ttl).Err()
	}
	return cnt, nil
}

func (s *RedisStore) Get(ctx context.Context, key string, window time.Time) (int64, error) {
	cnt, err := s.rdb.Get(ctx, s.redisKey(key, window)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return cnt, err
}
