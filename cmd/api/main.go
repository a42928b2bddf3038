package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SirClappington/signjobs/internal/app"
	"github.com/SirClappington/signjobs/internal/config"
	"github.com/SirClappington/signjobs/internal/httpapi"
	"github.com/SirClappington/signjobs/internal/logging"
)

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

	srv, err := httpapi.New(deps.Store, deps.Scanner, cfg.Zone(), logger.Named("http"))
	if err != nil {
		logger.Fatal("templates", zap.Error(err))
	}
	srv.Gateway = deps.Gateway
	srv.Recipient = cfg.LineUserID
	srv.ShopName = cfg.ShopName

	httpSrv := &http.Server{
		Addr:              cfg.APIAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("api listening", zap.String("addr", cfg.APIAddr), zap.String("shop_offset", cfg.Zone().String()))
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("api stopped", zap.Error(err))
	}
}
