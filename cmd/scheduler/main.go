package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/SirClappington/signjobs/internal/app"
	"github.com/SirClappington/signjobs/internal/config"
	"github.com/SirClappington/signjobs/internal/logging"
	"github.com/SirClappington/signjobs/internal/reminder"
)

// The scheduler triggers one reminder sweep per SWEEP_INTERVAL (at most five
// minutes, four by default). Several replicas may run; the sweep lock lets only one through.
func main() {
	app.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(cfg.Development())
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("startup", zap.Error(err))
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Warn("close", zap.Error(err))
		}
	}()

	logger.Info("scheduler started", zap.Duration("interval", cfg.SweepInterval))
	tick := time.NewTicker(cfg.SweepInterval)
	defer tick.Stop()

	sweep(ctx, deps.Scanner, logger, time.Now())
	for {
		select {
		case <-ctx.Done():
			logger.Info("scheduler stopping")
			return
		case at := <-tick.C:
			sweep(ctx, deps.Scanner, logger, at)
		}
	}
}

// sweep evaluates the reminder window at the tick time, so waiting on the
// lock does not shift it.
func sweep(ctx context.Context, sc *reminder.Scanner, logger *zap.Logger, at time.Time) {
	sctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	jobs, err := sc.Scan(sctx, at)
	switch {
	case errors.Is(err, reminder.ErrSweepBusy):
		logger.Debug("sweep skipped, another sweep holds the lock")
	case err != nil:
		logger.Error("sweep failed", zap.Error(err), zap.Int("notified", len(jobs)))
	}
}
