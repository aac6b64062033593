package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/celtis-pos/internal/platform/cache"
	"github.com/odyssey-erp/celtis-pos/internal/platform/db"
	"github.com/odyssey-erp/celtis-pos/internal/platform/kv"
)

// Storage is the durable key-value backend selected by STORAGE_DRIVER along
// with the connection that backs it, if any.
type Storage struct {
	KV     kv.Store
	Driver string

	redis *redis.Client
	pool  *pgxpool.Pool
}

// OpenStorage connects the configured backend. Test mode always uses memory.
func OpenStorage(ctx context.Context, cfg *Config, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	driver := cfg.EffectiveStorageDriver()

	switch driver {
	case StorageMemory:
		logger.Warn("using in-memory storage; data is lost on exit")
		return &Storage{KV: kv.NewMemory(), Driver: driver}, nil
	case StorageFile:
		store, err := kv.NewFile(cfg.StorageDir)
		if err != nil {
			return nil, fmt.Errorf("app: open file storage: %w", err)
		}
		logger.Info("using file storage", slog.String("dir", cfg.StorageDir))
		return &Storage{KV: store, Driver: driver}, nil
	case StorageRedis:
		client, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("app: open redis storage: %w", err)
		}
		logger.Info("using redis storage", slog.String("addr", cfg.RedisAddr))
		return &Storage{KV: kv.NewRedis(client, cfg.RedisPrefix), Driver: driver, redis: client}, nil
	case StoragePostgres:
		pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
		if err != nil {
			return nil, fmt.Errorf("app: open postgres storage: %w", err)
		}
		store := kv.NewPostgres(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("app: prepare postgres storage: %w", err)
		}
		logger.Info("using postgres storage")
		return &Storage{KV: store, Driver: driver, pool: pool}, nil
	}
	return nil, fmt.Errorf("app: unknown storage driver %q", driver)
}

// Close releases the backing connection.
func (s *Storage) Close() error {
	if s == nil {
		return nil
	}
	if s.pool != nil {
		s.pool.Close()
	}
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}
