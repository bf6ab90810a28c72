// Package main is the entry point of the article API server.
//
// main only reads configuration, opens the long-lived resources (database,
// image host, rate limiter) and hands them to internal/server. All actual
// logic lives in the internal packages.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sakif/article-hub/internal/config"
	"github.com/sakif/article-hub/internal/database"
	"github.com/sakif/article-hub/internal/logging"
	"github.com/sakif/article-hub/internal/middleware"
	"github.com/sakif/article-hub/internal/server"
	"github.com/sakif/article-hub/internal/upload"
)

func main() {
	// === 1. CONFIGURATION ===
	// .env (optional) and the environment, validated in one pass.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. LOGGING ===
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	startupCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// === 3. DATABASE ===
	// The server owns the store from here on and closes it on shutdown.
	store, err := database.Open(cfg, logger)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 4. IMAGE HOST ===
	uploader, err := upload.New(startupCtx, cfg, logger)
	if err != nil {
		logger.Error("failed to set up image upload", slog.String("error", err.Error()))
		store.Close()
		os.Exit(1)
	}

	// === 5. RATE LIMITER ===
	limiter, closeLimiter := newLimiter(startupCtx, cfg, logger)
	defer closeLimiter()

	// === 6. SERVE ===
	srv := server.New(cfg, server.Deps{
		Store:    store,
		Uploader: uploader,
		Limiter:  limiter,
	}, logger)

	// Start() blocks until SIGINT / SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newLimiter picks the rate limiter backend:
//
//	AUTH_RATE_LIMIT=0    → none
//	REDIS_ADDR set       → Redis, shared by all instances
//	otherwise            → in-process token buckets
//
// An unreachable Redis at startup falls back to the in-process limiter so a
// cache outage does not keep the API down.
func newLimiter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (middleware.Limiter, func()) {
	noop := func() {}

	if cfg.AuthRateLimit == 0 {
		logger.Warn("rate limiting disabled")
		return nil, noop
	}

	if cfg.RedisAddr == "" {
		logger.Info("rate limiting in memory", slog.Int("per_minute", cfg.AuthRateLimit))
		return middleware.NewMemoryLimiter(cfg.AuthRateLimit), noop
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("redis unreachable, rate limiting in memory instead",
			slog.String("addr", cfg.RedisAddr),
			slog.String("error", err.Error()),
		)
		client.Close()
		return middleware.NewMemoryLimiter(cfg.AuthRateLimit), noop
	}

	logger.Info("rate limiting via redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("per_minute", cfg.AuthRateLimit),
	)
	return middleware.NewRedisLimiter(client, cfg.AuthRateLimit), func() { client.Close() }
}
