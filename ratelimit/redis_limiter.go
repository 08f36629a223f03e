package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const limitKeyPrefix = "enquiry:ratelimit:"

// RedisFixedWindow is the shared-counter swap-in for multi-process
// deployments: INCR per identity, window set on the first hit of each bucket.
type RedisFixedWindow struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisFixedWindow(client *redis.Client, log *zap.Logger) *RedisFixedWindow {
	return &RedisFixedWindow{client: client, log: log}
}

// Allow fails open: if the counter store is unreachable, the request goes
// through rather than the intake going down.
func (l *RedisFixedWindow) Allow(identity string, maxRequests int, window time.Duration) bool {
	if identity == "" {
		identity = FallbackIdentity
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := limitKeyPrefix + identity
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		l.log.Warn("rate limit counter unavailable, allowing", zap.Error(err))
		return true
	}
	if count == 1 {
		if err := l.client.PExpire(ctx, key, window).Err(); err != nil {
			l.log.Warn("rate limit window set failed", zap.Error(err))
		}
	}
	return count <= int64(maxRequests)
}
