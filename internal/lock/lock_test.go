package lock

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	r "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLock_Exclusive(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	ctx := context.Background()
	rdb := r.NewClient(&r.Options{Addr: addr})
	defer rdb.Close()

	key := "test:sweep:" + uuid.NewString()
	a := NewRedis(rdb, key, time.Minute)
	b := NewRedis(rdb, key, time.Minute)

	release, ok, err := a.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = b.TryLock(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, release(ctx))

	release2, ok, err := b.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, release2(ctx))
}

func TestRedisLock_ReleaseKeepsForeignToken(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	ctx := context.Background()
	rdb := r.NewClient(&r.Options{Addr: addr})
	defer rdb.Close()

	key := "test:sweep:" + uuid.NewString()
	release, ok, err := NewRedis(rdb, key, time.Minute).TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// Simulate expiry and takeover by another holder.
	require.NoError(t, rdb.Set(ctx, key, "someone-else", time.Minute).Err())
	require.NoError(t, release(ctx))

	v, err := rdb.Get(ctx, key).Result()
	require.NoError(t, err)
	assert.Equal(t, "someone-else", v)
	rdb.Del(ctx, key)
}

func TestAdvisoryLock_Exclusive(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	a := NewAdvisory(db, 9042)
	b := NewAdvisory(db, 9042)

	release, ok, err := a.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = b.TryLock(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, release(ctx))
}
