// Package app wires configuration into a ready-to-use tracker.
package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"crypto-tracker/internal/coingecko"
	"crypto-tracker/internal/config"
	"crypto-tracker/internal/storage"
	"crypto-tracker/internal/storage/file"
	"crypto-tracker/internal/storage/memory"
	"crypto-tracker/internal/storage/migrations"
	pgstore "crypto-tracker/internal/storage/postgres"
	redisstore "crypto-tracker/internal/storage/redis"
	"crypto-tracker/internal/storage/sqlite"
	"crypto-tracker/internal/tracker"
	"crypto-tracker/internal/watchlist"
)

// App holds the wired components. Close releases backend connections.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Tracker *tracker.Tracker

	cleanup func()
}

// New opens the configured watchlist backend and builds the tracker.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store, cleanup, err := OpenStore(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	wl := watchlist.NewService(store, cfg.Storage.Backend, logger)
	t := tracker.New(NewProvider(cfg.API, logger), wl,
		tracker.WithPageSize(cfg.Leaderboard.PageSize),
		tracker.WithLogger(logger),
	)

	return &App{Config: cfg, Logger: logger, Tracker: t, cleanup: cleanup}, nil
}

// Close releases resources held by the watchlist backend.
func (a *App) Close() {
	if a.cleanup != nil {
		a.cleanup()
		a.cleanup = nil
	}
}

// NewProvider builds the CoinGecko client. Transient failures are retried
// when MaxRetries is positive.
func NewProvider(cfg config.APIConfig, logger *zap.Logger) *coingecko.Client {
	var requester coingecko.Requester = coingecko.NewHTTPClient(
		coingecko.WithBaseURL(cfg.BaseURL),
		coingecko.WithRequestInterval(cfg.RequestInterval),
		coingecko.WithTimeout(cfg.Timeout),
		coingecko.WithUserAgent(cfg.UserAgent),
		coingecko.WithLogger(logger.Named("coingecko")),
	)
	if cfg.MaxRetries > 0 {
		requester = coingecko.NewRetrying(requester, cfg.MaxRetries,
			coingecko.WithRetryLogger(logger.Named("coingecko")))
	}
	return coingecko.New(requester)
}

// OpenStore creates the watchlist store for cfg.Backend.
func OpenStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (storage.WatchlistStore, func(), error) {
	noop := func() {}

	switch cfg.Backend {
	case storage.BackendFile, "":
		return file.NewStore(cfg.File.Path), noop, nil

	case storage.BackendMemory:
		return memory.NewWatchlistStore(), noop, nil

	case storage.BackendPostgres:
		pool, err := pgstore.NewPool(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		logger.Debug("postgres watchlist store ready")
		return pgstore.NewWatchlistStore(pool), pool.Close, nil

	case storage.BackendSQLite:
		s, err := sqlite.NewStore(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		return s, func() {
			if err := s.Close(); err != nil {
				logger.Warn("close sqlite", zap.Error(err))
			}
		}, nil

	case storage.BackendRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		return redisstore.NewStore(client, cfg.Redis.Key), func() {
			if err := client.Close(); err != nil {
				logger.Warn("close redis", zap.Error(err))
			}
		}, nil
	}

	return nil, nil, fmt.Errorf("unknown storage backend %q: %w", cfg.Backend, storage.ErrInvalidInput)
}
