// Package app builds the process-wide dependencies shared by the binaries.
package app

import (
	"context"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	r "github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/SirClappington/signjobs/internal/config"
	"github.com/SirClappington/signjobs/internal/lock"
	"github.com/SirClappington/signjobs/internal/notify"
	"github.com/SirClappington/signjobs/internal/reminder"
	"github.com/SirClappington/signjobs/internal/storage"
)

const sweepLockKey = "signjobs:reminder-sweep"

type Deps struct {
	Config  config.Config
	Log     *zap.Logger
	DB      *pgxpool.Pool
	Redis   *r.Client // nil when REDIS_ADDR is empty
	Store   *storage.Store
	Gateway notify.Gateway
	Scanner *reminder.Scanner
}

// Open connects to Postgres (and Redis when configured) and wires the scanner.
func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (*Deps, error) {
	db, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, errors.Wrap(err, "postgres pool")
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "postgres ping")
	}
	d := &Deps{Config: cfg, Log: log, DB: db, Store: storage.New(db)}

	var locker reminder.Locker = lock.NewAdvisory(db, lock.SweepLockID)
	if cfg.RedisAddr != "" {
		d.Redis = r.NewClient(&r.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := d.Redis.Ping(ctx).Err(); err != nil {
			return nil, multierr.Append(errors.Wrap(err, "redis ping"), d.Close())
		}
		locker = lock.NewRedis(d.Redis, sweepLockKey, cfg.SweepLockTTL)
	}

	if cfg.LineEnabled() {
		d.Gateway = notify.NewLINE(cfg.LineToken, cfg.LinePushURL)
	} else {
		log.Warn("LINE_ACCESS_TOKEN or LINE_USER_ID not set, reminders will only be logged")
		d.Gateway = notify.Discard{Log: log}
	}

	d.Scanner = &reminder.Scanner{
		Store:     d.Store,
		Gateway:   d.Gateway,
		Recipient: cfg.LineUserID,
		Zone:      cfg.Zone(),
		Lock:      locker,
		Log:       log.Named("reminder"),
	}
	return d, nil
}

func (d *Deps) Close() error {
	var err error
	if d.Redis != nil {
		err = multierr.Append(err, d.Redis.Close())
	}
	d.DB.Close()
	return err
}

// LoadDotEnv loads the nearest .env walking up from the working directory.
// Variables already set in the environment win.
func LoadDotEnv() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}
