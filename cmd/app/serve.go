package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlShabiliBadia/Shorter-links/internal/auth"
	"github.com/AlShabiliBadia/Shorter-links/internal/handler"
	"github.com/AlShabiliBadia/Shorter-links/internal/i18n"
	"github.com/AlShabiliBadia/Shorter-links/internal/repository"
	"github.com/AlShabiliBadia/Shorter-links/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		return serve(ctx, a)
	},
}

func serve(ctx context.Context, a *app) error {
	cfg := a.cfg
	logger := a.logger
	logger.Info("Application started", zap.String("addr", cfg.Server.Addr))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	metrics, err := repository.NewMetrics(reg)
	if err != nil {
		return err
	}
	store := repository.NewStore(a.db, metrics)

	hasher := auth.NewHasher(cfg.Auth.BcryptCost)
	tokens, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		return err
	}

	checks := map[string]handler.HealthCheck{"db": store.Ping}

	var linkOpts []service.LinkOption
	if cfg.Redis.Enabled {
		pool := repository.NewRedisPool(cfg.Redis, logger)
		defer func() {
			if err := pool.Close(); err != nil {
				logger.Warn("Redis pool close failed", zap.Error(err))
			}
		}()
		linkOpts = append(linkOpts, service.WithLinkCache(
			repository.NewRedisLinkCache(pool, cfg.Redis.LinkTTL, logger, metrics)))
		checks["redis"] = func(ctx context.Context) error { return repository.PingRedis(ctx, pool) }
	}

	links := service.NewLinkService(store, logger, linkOpts...)
	accounts := service.NewAccountService(store, hasher, tokens, logger)

	bundle, err := i18n.Load(cfg.I18n.Files, cfg.I18n.DefaultLang)
	if err != nil {
		// messages fall back to English literals
		logger.Warn("Failed to load i18n files", zap.Strings("files", cfg.I18n.Files), zap.Error(err))
		bundle = nil
	}

	statsJob, err := service.NewStatsJob(store, reg, logger)
	if err != nil {
		return err
	}
	if err := statsJob.Refresh(ctx); err != nil {
		logger.Warn("Initial stats refresh failed", zap.Error(err))
	}
	scheduler := cron.New()
	if _, err := statsJob.Schedule(scheduler, cfg.Metrics.RefreshSpec); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	gin.SetMode(gin.ReleaseMode)
	r := handler.NewRouter(handler.RouterDeps{
		Logger:         logger,
		Bundle:         bundle,
		Links:          links,
		Accounts:       accounts,
		Checks:         checks,
		Gatherer:       reg,
		BaseURL:        cfg.Server.BaseURL,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server is running on " + cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Failed to start server", zap.Error(err))
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Info("Server exiting")
	return nil
}
