package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/admin-console/internal/config"
	"github.com/spec-kit/admin-console/internal/session"
)

// OpenSessionStore opens the session store selected by SESSION_DRIVER. The
// returned cleanup closes the store and any connection it owns.
func OpenSessionStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (session.Store, func(), error) {
	switch cfg.Session.Driver {
	case config.SessionDriverMemory:
		store := session.NewMemoryStore()
		return store, func() { _ = store.Close() }, nil

	case config.SessionDriverRedis:
		rdb, err := NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("session store: %w", err)
		}
		store := session.NewRedisStore(rdb.Client(), cfg.Session.RedisPrefix, logger)
		return store, func() {
			_ = store.Close()
			rdb.Close()
		}, nil

	case config.SessionDriverPostgres:
		pg, err := NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("session store: %w", err)
		}
		if cfg.Postgres.RunMigrations {
			if err := pg.Migrate(ctx, logger); err != nil {
				pg.Close()
				return nil, nil, err
			}
		}
		store := session.NewPostgresStore(pg.Pool(), logger)
		return store, func() {
			_ = store.Close()
			pg.Close()
		}, nil

	default:
		store, err := session.NewSQLiteStore(ctx, cfg.Session.SQLitePath, cfg.Session.PollInterval(), logger)
		if err != nil {
			return nil, nil, fmt.Errorf("session store: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	}
}
