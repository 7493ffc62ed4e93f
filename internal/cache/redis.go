// Package cache keeps sessions in Redis when SESSION_STORE=redis.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces every key this package writes.
const DefaultKeyPrefix = "mywallet:"

// Options tunes the Redis client.
type Options struct {
	// PoolSize caps open connections. Zero uses the go-redis default.
	PoolSize int
	// KeyPrefix is prepended to every key. Empty means DefaultKeyPrefix.
	KeyPrefix string
}

// Cache is a Redis-backed session store.
type Cache struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// New connects to redisURL and verifies the server answers.
func New(ctx context.Context, redisURL string, opts Options) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if opts.PoolSize > 0 {
		opt.PoolSize = opts.PoolSize
		opt.MinIdleConns = min(2, opts.PoolSize)
	}
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return NewWithClient(client, opts.KeyPrefix), nil
}

// NewWithClient wraps an existing client. The cache takes ownership of it.
func NewWithClient(client *redis.Client, keyPrefix string) *Cache {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &Cache{client: client, prefix: keyPrefix, now: time.Now}
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the client's connections.
func (c *Cache) Close() error {
	return c.client.Close()
}
