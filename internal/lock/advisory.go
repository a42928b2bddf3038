package lock

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// SweepLockID is the pg advisory lock key reserved for reminder sweeps.
const SweepLockID int64 = 42

// AdvisoryLock uses a session-level pg_try_advisory_lock. The connection is
// pinned until release because the lock belongs to the session.
type AdvisoryLock struct {
	db  *pgxpool.Pool
	key int64
}

func NewAdvisory(db *pgxpool.Pool, key int64) *AdvisoryLock {
	return &AdvisoryLock{db: db, key: key}
}

func (l *AdvisoryLock) TryLock(ctx context.Context) (Release, bool, error) {
	conn, err := l.db.Acquire(ctx)
	if err != nil {
		return nil, false, errors.Wrap(err, "acquire conn")
	}
	var ok bool
	if err := conn.QueryRow(ctx, "select pg_try_advisory_lock($1)", l.key).Scan(&ok); err != nil {
		conn.Release()
		return nil, false, errors.Wrap(err, "try advisory lock")
	}
	if !ok {
		conn.Release()
		return nil, false, nil
	}
	return func(ctx context.Context) error {
		defer conn.Release()
		_, err := conn.Exec(ctx, "select pg_advisory_unlock($1)", l.key)
		return errors.Wrap(err, "advisory unlock")
	}, true, nil
}
