package locker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"rental-engine-backend/internal/logger"
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lease never removes a lock taken over by another instance.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisOptions struct {
	TTL        time.Duration
	Attempts   int
	RetryDelay time.Duration
}

// RedisLocker is a lease lock shared by every server instance.
type RedisLocker struct {
	client *redis.Client
	opts   RedisOptions
}

func NewRedisLocker(client *redis.Client, opts RedisOptions) *RedisLocker {
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Second
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 100 * time.Millisecond
	}
	return &RedisLocker{client: client, opts: opts}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (Release, error) {
	token := uuid.NewString()

	for attempt := 1; attempt <= l.opts.Attempts; attempt++ {
		logger.ExternalServiceCall("redis", "SetNX", "key", key, "attempt", attempt)
		ok, err := l.client.SetNX(ctx, key, token, l.opts.TTL).Result()
		logger.ExternalServiceResult("redis", "SetNX", err, "key", key, "acquired", ok)
		if err == nil && ok {
			return l.release(key, token), nil
		}
		if attempt == l.opts.Attempts {
			break
		}
		select {
		case <-time.After(l.opts.RetryDelay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, ctx.Err())
		}
	}
	return nil, fmt.Errorf("%w: %s after %d attempts", ErrNotAcquired, key, l.opts.Attempts)
}

func (l *RedisLocker) release(key, token string) Release {
	var once sync.Once
	var err error
	return func(ctx context.Context) error {
		once.Do(func() {
			var n int64
			n, err = releaseScript.Run(ctx, l.client, []string{key}, token).Int64()
			logger.ExternalServiceResult("redis", "Release", err, "key", key)
			if err == nil && n == 0 {
				logger.Warn("lock lease expired before release", "key", key)
			}
		})
		return err
	}
}
