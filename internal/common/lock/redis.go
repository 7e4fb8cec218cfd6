package lock

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisConfig holds configuration for Redis-backed locks
type RedisConfig struct {
	// Prefix is prepended to every key (default: "venuehub:lock:")
	Prefix string

	// TTL bounds how long a crashed holder can keep a key (default: 15s)
	TTL time.Duration

	// RetryInterval is the pause between acquisition attempts (default: 25ms)
	RetryInterval time.Duration

	// WaitTimeout caps the time spent waiting for a key when the caller's
	// context has no deadline (default: 5s)
	WaitTimeout time.Duration
}

// DefaultRedisConfig returns sensible defaults
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Prefix:        "venuehub:lock:",
		TTL:           15 * time.Second,
		RetryInterval: 25 * time.Millisecond,
		WaitTimeout:   5 * time.Second,
	}
}

// releaseScript deletes the key only if this holder still owns it.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// RedisLocker locks keys across instances with SET NX PX. Each acquisition
// stores a random token so that a holder whose TTL expired cannot release a
// lock that another instance has since taken.
type RedisLocker struct {
	client redis.UniversalClient
	config RedisConfig
}

// NewRedisLocker creates a Redis-backed locker.
func NewRedisLocker(client redis.UniversalClient, config RedisConfig) *RedisLocker {
	defaults := DefaultRedisConfig()
	if config.Prefix == "" {
		config.Prefix = defaults.Prefix
	}
	if config.TTL <= 0 {
		config.TTL = defaults.TTL
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = defaults.RetryInterval
	}
	if config.WaitTimeout <= 0 {
		config.WaitTimeout = defaults.WaitTimeout
	}
	return &RedisLocker{client: client, config: config}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.config.WaitTimeout)
		defer cancel()
	}

	redisKey := l.config.Prefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.config.RetryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.config.TTL).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return nil, err
		}
		if ok {
			slog.Debug("Acquired entity lock", "key", key)
			return l.releaser(redisKey, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrNotAcquired, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) releaser(redisKey, token string) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		released, err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Int()
		if err != nil {
			slog.Error("Failed to release entity lock", "error", err, "key", redisKey)
			return
		}
		if released == 0 {
			slog.Warn("Entity lock expired before release", "key", redisKey)
		}
	}
}
