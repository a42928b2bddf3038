// Package lock keeps reminder sweeps from overlapping across processes.
package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	r "github.com/redis/go-redis/v9"
)

// Release gives a held lock back.
type Release func(ctx context.Context) error

// RedisLock is a single-key lease taken with SET NX PX. The TTL bounds how long a
// crashed holder blocks the next sweep.
type RedisLock struct {
	rdb *r.Client
	key string
	ttl time.Duration
}

func NewRedis(rdb *r.Client, key string, ttl time.Duration) *RedisLock {
	return &RedisLock{rdb: rdb, key: key, ttl: ttl}
}

// only delete the key if we still own it
var releaseScript = r.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0`)

func (l *RedisLock) TryLock(ctx context.Context) (Release, bool, error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, false, errors.Wrapf(err, "setnx %s", l.key)
	}
	if !ok {
		return nil, false, nil
	}
	return func(ctx context.Context) error {
		return errors.Wrapf(releaseScript.Run(ctx, l.rdb, []string{l.key}, token).Err(), "release %s", l.key)
	}, true, nil
}
