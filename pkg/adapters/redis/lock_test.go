package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/unparse/pkg/adapters/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker_Exclusive(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "unparse:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "digest", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("unparse:lock:digest"))

	// A second holder waits until its context gives up.
	waitCtx, cancel := context.WithTimeout(ctx, 150*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(waitCtx, "digest", 10*time.Second)
	require.ErrorIs(t, err, redis.ErrLockAcquire)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("unparse:lock:digest"))

	unlock, err = locker.Lock(ctx, "digest", 10*time.Second)
	require.NoError(t, err, "released locks can be taken again")
	require.NoError(t, unlock(ctx))
}

func TestLocker_UnlockKeepsForeignLock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "unparse:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "digest", time.Second)
	require.NoError(t, err)

	// The lock expires and another replica takes it.
	mr.FastForward(2 * time.Second)
	other, err := locker.Lock(ctx, "digest", 10*time.Second)
	require.NoError(t, err)

	require.NoError(t, unlock(ctx))
	assert.True(t, mr.Exists("unparse:lock:digest"), "a stale unlock must not release the new holder")

	require.NoError(t, other(ctx))
	assert.False(t, mr.Exists("unparse:lock:digest"))
}

func TestLocker_WaitsForRelease(t *testing.T) {
	_, client := newClient(t)
	locker := redis.NewLocker(client, "unparse:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "digest", 10*time.Second)
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		second, err := locker.Lock(ctx, "digest", 10*time.Second)
		if assert.NoError(t, err) {
			_ = second(ctx)
		}
		close(acquired)
	}()

	time.Sleep(100 * time.Millisecond)
	select {
	case <-acquired:
		t.Fatal("lock acquired while held")
	default:
	}

	require.NoError(t, unlock(ctx))
	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("lock not acquired after release")
	}
}
