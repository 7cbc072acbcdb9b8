package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "viral-reward/internal/adapter/http"
	"viral-reward/internal/adapter/memory"
	"viral-reward/internal/adapter/postgres"
	redisfeed "viral-reward/internal/adapter/redis"
	"viral-reward/internal/adapter/usecase"
	"viral-reward/internal/config"
	"viral-reward/internal/core/port"
	"viral-reward/internal/db"
	"viral-reward/internal/metrics"
)

// main is the entry point of the viral-reward service. It loads
// configuration, wires the store, change feed and metrics, optionally runs
// migrations and the demo seed, then starts the HTTP server. On receiving
// a termination signal it gracefully shuts down the server.
func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		return 1
	}
	logger := cfg.Log.New(os.Stdout, slog.String("env", cfg.Env))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var recorder *metrics.Recorder
	if cfg.Metrics.Enabled {
		recorder = metrics.New(cfg.Metrics.Namespace)
	}

	var store port.Store
	switch cfg.StoreDriver {
	case config.StoreMemory:
		logger.Warn("using in-memory store; state is lost on exit")
		store = memory.NewStore()
	default:
		// Optionally run migrations if configured. We use the Psql sub-config.
		if cfg.Psql.RunMigrations {
			if err = db.Migrate(cfg.Psql.Addr.String()); err != nil {
				logger.Error("migration error", slog.Any("error", err))
				return 1
			}
			logger.Info("migrations applied successfully")
		}

		pool, err := db.NewPostgresPool(ctx, cfg.Psql)
		if err != nil {
			logger.Error("database connection error", slog.Any("error", err))
			return 1
		}
		defer pool.Close()

		opts := postgres.Options{
			MaxRetries: cfg.Psql.TxMaxRetries,
			Backoff:    cfg.Psql.TxRetryBackoff,
			OnRetry: func(attempt int, err error) {
				logger.Debug("retrying transaction", slog.Int("attempt", attempt), slog.Any("error", err))
			},
		}
		if recorder != nil {
			opts.OnRetry = func(attempt int, err error) {
				recorder.ObserveRetry(attempt, err)
				logger.Debug("retrying transaction", slog.Int("attempt", attempt), slog.Any("error", err))
			}
		}
		store = postgres.NewStore(pool, opts)
	}

	var feed port.ChangeFeed = memory.NewFeed()
	if cfg.Redis.Enabled {
		client, err := db.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Error("redis connection error", slog.Any("error", err))
			return 1
		}
		defer client.Close()
		feed = redisfeed.NewFeed(client, cfg.Redis.ChannelPrefix)
	}

	if cfg.Market.SeedDemo {
		if err = db.Seed(ctx, store); err != nil {
			logger.Error("seed error", slog.Any("error", err))
			return 1
		}
		logger.Info("demo data seeded",
			slog.String("advertiser_id", db.DemoAdvertiserID),
			slog.String("clipper_id", db.DemoClipperID))
	}

	verifier, err := httpadapter.LoadVerifier(cfg.Auth.PublicKeyPath, cfg.Auth.Issuer, cfg.Auth.Audience)
	if err != nil {
		logger.Error("auth setup error", slog.Any("error", err))
		return 1
	}

	svcOpts := usecase.Options{
		Bonuses: usecase.Bonuses{
			Advertiser: cfg.Market.AdvertiserBonus,
			Clipper:    cfg.Market.ClipperBonus,
		},
		ListLimit: cfg.Market.ListLimit,
	}
	httpOpts := httpadapter.Options{AllowedOrigins: cfg.HTTP.AllowedOrigins}
	if recorder != nil {
		svcOpts.Observer = recorder
		httpOpts.Metrics = recorder.Handler()
		httpOpts.Instrument = recorder.Middleware
	}
	svc := usecase.NewMarketplaceService(store, feed, logger, svcOpts)

	handler := httpadapter.NewHandler(svc, verifier, logger, httpOpts)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)), slog.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	exitCode := 0
	select {
	case err = <-errCh:
		logger.Error("server error", slog.Any("error", err))
		exitCode = 1
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	} else {
		logger.Info("server gracefully stopped")
	}
	return exitCode
}
