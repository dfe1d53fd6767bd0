package persistence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/admin-console/internal/config"
)

// Redis owns the client the shared session store and its change channel use.
type Redis struct {
	client *redis.Client
}

// NewRedis connects and pings. An unreachable server is an error so the
// console never starts against a store it cannot write.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("reach redis at %s: %w", cfg.Addr, err)
	}

	logger.Info("session store connected", zap.String("redis_addr", cfg.Addr), zap.Int("db", cfg.DB))
	return &Redis{client: client}, nil
}

// Client is the connected go-redis client.
func (r *Redis) Client() *redis.Client {
	return r.client
}

// Close closes the client.
func (r *Redis) Close() {
	_ = r.client.Close()
}
