package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisLocker(client, RedisConfig{
		TTL:           time.Second,
		RetryInterval: 5 * time.Millisecond,
		WaitTimeout:   100 * time.Millisecond,
	}), mr
}

func TestRedisLocker_AcquireAndRelease(t *testing.T) {
	locker, mr := newTestRedisLocker(t)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, Key("enterprise", "e1"))
	require.NoError(t, err)
	assert.True(t, mr.Exists("venuehub:lock:enterprise:e1"))

	release()
	assert.False(t, mr.Exists("venuehub:lock:enterprise:e1"))
}

func TestRedisLocker_ContendedKeyTimesOut(t *testing.T) {
	locker, _ := newTestRedisLocker(t)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "role:r1")
	require.NoError(t, err)
	defer release()

	_, err = locker.Acquire(ctx, "role:r1")
	assert.True(t, errors.Is(err, ErrNotAcquired), "expected ErrNotAcquired, got %v", err)
}

func TestRedisLocker_WaitsForRelease(t *testing.T) {
	locker, _ := newTestRedisLocker(t)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "role:r1")
	require.NoError(t, err)

	go func() {
		time.Sleep(20 * time.Millisecond)
		release()
	}()

	second, err := locker.Acquire(ctx, "role:r1")
	require.NoError(t, err)
	second()
}

func TestRedisLocker_ExpiredHolderCannotReleaseNewOwner(t *testing.T) {
	locker, mr := newTestRedisLocker(t)
	ctx := context.Background()

	stale, err := locker.Acquire(ctx, "role:r1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	fresh, err := locker.Acquire(ctx, "role:r1")
	require.NoError(t, err)

	stale()
	assert.True(t, mr.Exists("venuehub:lock:role:r1"), "stale release must not drop the new owner's lock")

	fresh()
	assert.False(t, mr.Exists("venuehub:lock:role:r1"))
}
