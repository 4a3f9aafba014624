package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window limiter shared by every app instance.
// Each window is one counter key created by INCR and expired with the window.
// EXPIRE NX needs Redis 7.
type RedisLimiter struct {
	client   redis.UniversalClient
	prefix   string
	limit    int64
	duration time.Duration
}

// NewRedis builds a limiter storing counters under prefix.
func NewRedis(client redis.UniversalClient, prefix string, limit int, duration time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, limit: int64(limit), duration: duration}
}

func (l *RedisLimiter) key(key string) string {
	return fmt.Sprintf("%s%s", l.prefix, key)
}

// Allow increments key's counter and reports whether it is within the limit.
// INCR and EXPIRE NX go out in one MULTI/EXEC; any hit re-arms a missing
// expiry.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.key(key)
	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, l.duration)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("ratelimit: redis incr: %w", err)
	}
	return incr.Val() <= l.limit, nil
}

// Reset removes key's counter.
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.key(key)).Err()
}
