package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/admin-console/internal/config"
)

// ErrDSNRequired is returned when the postgres session driver is selected
// without POSTGRES_DSN.
var ErrDSNRequired = errors.New("POSTGRES_DSN is required for the postgres session driver")

// Postgres owns the pool backing the shared session table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects and pings. A usable pool or an error, never both nil.
func NewPostgres(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*Postgres, error) {
	poolCfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("reach postgres: %w", err)
	}

	logger.Info("session table connected",
		zap.String("host", poolCfg.ConnConfig.Host),
		zap.Int32("max_conns", poolCfg.MaxConns))
	return &Postgres{pool: pool}, nil
}

// poolConfig applies the sizing knobs on top of the DSN. Session traffic is
// a handful of single-row statements, so zero values keep pgx defaults.
func poolConfig(cfg config.PostgresConfig) (*pgxpool.Config, error) {
	if cfg.DSN == "" {
		return nil, ErrDSNRequired
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse POSTGRES_DSN: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}
	return poolCfg, nil
}

// Migrate creates the session table if needed.
func (p *Postgres) Migrate(ctx context.Context, logger *zap.Logger) error {
	return RunMigrations(ctx, p.pool, logger)
}

// Pool is the connection pool the session store runs on.
func (p *Postgres) Pool() *pgxpool.Pool {
	return p.pool
}

// Close releases the pool.
func (p *Postgres) Close() {
	p.pool.Close()
}
