package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/pageza/flavr/backend/config"
	"github.com/pageza/flavr/backend/internal/accountsync"
	"github.com/pageza/flavr/backend/internal/api"
	"github.com/pageza/flavr/backend/internal/collector"
	"github.com/pageza/flavr/backend/internal/database"
	"github.com/pageza/flavr/backend/internal/logging"
	"github.com/pageza/flavr/backend/internal/middleware"
	"github.com/pageza/flavr/backend/internal/router"
	"github.com/pageza/flavr/backend/internal/server"
	"github.com/pageza/flavr/backend/internal/service"
	"github.com/pageza/flavr/backend/internal/session"
	"github.com/pageza/flavr/backend/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "flavr api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg, logger)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Redis backs the state store and the collector rate limit. Without it
	// the rate limit is skipped.
	var redisClient *redis.Client
	if cfg.StorageBackend == config.StorageRedis || cfg.CollectorRateLimit > 0 {
		redisClient, err = database.NewRedisClient(ctx, cfg, logger)
		if err != nil {
			if cfg.StorageBackend == config.StorageRedis {
				return err
			}
			logger.Warn("redis unavailable, collector rate limit disabled", slog.String("error", err.Error()))
		} else {
			defer redisClient.Close()
		}
	}

	kv, err := storage.FromConfig(cfg, db, redisClient)
	if err != nil {
		return err
	}
	remote, err := accountsync.FromConfig(ctx, cfg, db)
	if err != nil {
		return err
	}

	sessions := session.NewManager(session.Options{
		KV:            kv,
		Remote:        remote,
		Source:        collector.NewClient(cfg.CollectorURL, cfg.CollectorTimeout, logger),
		Logger:        logger,
		Debounce:      cfg.SearchDebounce,
		DiscoverLimit: cfg.DiscoverLimit,
	})
	defer sessions.CloseAll()

	var limiter *middleware.RateLimiter
	if redisClient != nil && cfg.CollectorRateLimit > 0 {
		limiter = middleware.NewCollectorRateLimiter(redisClient, cfg.CollectorRateLimit, cfg.CollectorRateWindow, logger)
	}

	engine := router.SetupRouter(api.Dependencies{
		Auth:     service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL),
		Sessions: sessions,
		Limiter:  limiter,
		DB:       db,
		Logger:   logger,
	}, cfg.CORSOrigins)

	logger.Info("starting flavr api",
		slog.String("addr", cfg.Addr()),
		slog.String("storage", cfg.StorageBackend),
		slog.String("sync", cfg.SyncBackend),
		slog.String("collector", cfg.CollectorURL),
	)
	return server.New(cfg.Addr(), engine, logger).Run(ctx)
}
