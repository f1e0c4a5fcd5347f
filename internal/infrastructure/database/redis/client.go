// Package redis provides the Redis client and the generated-document cache
// built on top of it.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/paidup/paidup/internal/config"
	"github.com/paidup/paidup/internal/infrastructure/monitoring/logging"
	"github.com/paidup/paidup/pkg/errors"
)

// Client wraps a standalone go-redis client.
type Client struct {
	rdb    *redis.Client
	logger logging.Logger
}

// NewClient connects to Redis and verifies the connection.
func NewClient(cfg config.RedisConfig, logger logging.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, errors.CodeCache, "redis connection failed")
	}

	logger.Info("connected to Redis",
		logging.String("addr", cfg.Addr))
	return &Client{rdb: rdb, logger: logger}, nil
}

// Underlying exposes the go-redis client.
func (c *Client) Underlying() *redis.Client { return c.rdb }

// Ping checks liveness.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, errors.CodeCache, "redis ping failed")
	}
	return nil
}

// Close releases the connection pool.
func (c *Client) Close() error { return c.rdb.Close() }
