package bootstrap

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightsearch/config"
	"github.com/Domenick1991/flightsearch/internal/cache"
	"github.com/Domenick1991/flightsearch/internal/migrations"
	"github.com/Domenick1991/flightsearch/internal/repository"
	"github.com/Domenick1991/flightsearch/internal/service/flights"
	"go.uber.org/zap"
)

const memoryCacheCapacity = 10000

// OpenStore connects the configured flight store and makes sure its schema
// exists. The returned func releases the connection.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (repository.FlightRepository, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := repository.ConnectPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := migrations.RunMigrationsUp(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		return repository.NewFlightRepository(pool, logger), pool.Close, nil

	case config.DriverSQLite:
		db, err := repository.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("sqlite store opened", zap.String("path", cfg.SQLitePath))
		return repository.NewSQLiteFlightRepository(db, logger), func() { _ = db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// OpenCache builds the search cache. An unreachable Redis is only logged:
// the service treats cache failures as misses.
func OpenCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (flights.Cache, func(), error) {
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		redisCache := cache.NewRedisCache(cfg.Redis)
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn("redis is unreachable, searches will bypass the cache",
				zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		return redisCache, func() { _ = redisCache.Close() }, nil

	case config.CacheMemory:
		memCache := cache.NewMemoryCache(memoryCacheCapacity)
		return memCache, func() { _ = memCache.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported cache backend %q", cfg.Cache.Backend)
	}
}
