package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/skinfolio/skinfolio/pkg/config"
)

// Client wraps the Redis connection used for the quote cache. When disabled
// it is a no-op and every lookup misses.
type Client struct {
	rdb     *redis.Client
	enabled bool
}

// New creates a Redis client from config. A disabled config returns a
// functioning no-op client rather than an error.
func New(cfg *config.Config) (*Client, error) {
	if !cfg.Redis.Enabled {
		return &Client{enabled: false}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Client{rdb: rdb, enabled: true}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Enabled reports whether the cache is active.
func (c *Client) Enabled() bool {
	return c.enabled
}
