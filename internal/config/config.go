package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"

	"github.com/SirClappington/signjobs/internal/shoptime"
)

// MaxSweepInterval is the longest gap between sweeps that still lands once
// inside the five-minute reminder window. Ticks jitter, so the default stays
// a minute under it.
const MaxSweepInterval = 5 * time.Minute

type Config struct {
	AppEnv        string        `env:"APP_ENV" envDefault:"production"`
	APIAddr       string        `env:"API_ADDR" envDefault:":3000"`
	PostgresDSN   string        `env:"POSTGRES_DSN,notEmpty"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	LineToken     string        `env:"LINE_ACCESS_TOKEN"`
	LineUserID    string        `env:"LINE_USER_ID"`
	LinePushURL   string        `env:"LINE_PUSH_URL" envDefault:"https://api.line.me/v2/bot/message/push"`
	ShopName      string        `env:"SHOP_NAME" envDefault:"ดำรงค์อิงค์เจ็ท"`
	ShopOffset    string        `env:"SHOP_UTC_OFFSET" envDefault:"+07:00"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"4m"`
	SweepLockTTL  time.Duration `env:"SWEEP_LOCK_TTL" envDefault:"2m"`
	MigrationsDir string        `env:"MIGRATIONS_DIR" envDefault:"migrations"`

	zone shoptime.Zone
}

func Load() (Config, error) {
	c, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, errors.Wrap(err, "parse env")
	}
	if c.zone, err = shoptime.ParseOffset(c.ShopOffset); err != nil {
		return Config{}, errors.Wrap(err, "SHOP_UTC_OFFSET")
	}
	if c.SweepInterval <= 0 || c.SweepInterval > MaxSweepInterval {
		return Config{}, errors.Errorf("SWEEP_INTERVAL must be in (0, %s], got %s", MaxSweepInterval, c.SweepInterval)
	}
	if c.SweepLockTTL <= 0 {
		return Config{}, errors.Errorf("SWEEP_LOCK_TTL must be positive, got %s", c.SweepLockTTL)
	}
	return c, nil
}

// Zone is the parsed SHOP_UTC_OFFSET.
func (c Config) Zone() shoptime.Zone { return c.zone }

func (c Config) Development() bool { return c.AppEnv == "development" }

// LineEnabled reports whether reminders can actually be delivered.
func (c Config) LineEnabled() bool { return c.LineToken != "" && c.LineUserID != "" }
