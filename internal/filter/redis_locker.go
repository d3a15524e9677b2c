package filter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"chatfilter/internal/constants"
	"chatfilter/internal/logger"
	"chatfilter/pkg/metrics"
)

// ErrLockTimeout is returned when a lock could not be acquired in time.
var ErrLockTimeout = errors.New("timed out waiting for scope lock")

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serializes mutations per key across service instances. The
// lock expires after ttl so a crashed holder cannot block a scope forever.
type RedisLocker struct {
	client      *redis.Client
	ttl         time.Duration
	waitTimeout time.Duration
	logger      logger.Logger
}

func NewRedisLocker(client *redis.Client, ttl, waitTimeout time.Duration, log logger.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = constants.DefaultLockTTL
	}
	if waitTimeout <= 0 {
		waitTimeout = constants.DefaultLockWaitTimeout
	}
	return &RedisLocker{
		client:      client,
		ttl:         ttl,
		waitTimeout: waitTimeout,
		logger:      log,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	start := time.Now()
	redisKey := constants.CacheKeyPrefixBanLock + key
	token := uuid.New().String()

	waitCtx, cancel := context.WithTimeout(ctx, l.waitTimeout)
	defer cancel()

	ticker := time.NewTicker(constants.LockRetryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(waitCtx, redisKey, token, l.ttl).Result()
		if err != nil && waitCtx.Err() == nil {
			return nil, fmt.Errorf("redis SetNX failed: %w", err)
		}
		if ok {
			break
		}

		select {
		case <-ticker.C:
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		}
	}

	metrics.ObserveBanLockWait(constants.LockBackendRedis, time.Since(start))

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.ttl)
			defer cancel()
			if err := unlockScript.Run(releaseCtx, l.client, []string{redisKey}, token).Err(); err != nil {
				l.logger.WarnwCtx(ctx, "Failed to release scope lock",
					"key", redisKey,
					"error", err,
				)
			}
		})
	}, nil
}
