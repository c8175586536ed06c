// Package cache keeps a read-through copy of link profiles in Redis so the
// public redirect path avoids a database round trip.
package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"QROLY_BACK-END/internal/models"
)

// RedisConfig describes how to reach the Redis server.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	UseTLS   bool
	TTL      time.Duration
}

// ProfileCache stores profiles under "profile:{username}".
type ProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProfileCache builds a cache client from cfg. The connection is lazy.
func NewProfileCache(cfg RedisConfig) *ProfileCache {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}
	return NewProfileCacheWithClient(redis.NewClient(opts), cfg.TTL)
}

// NewProfileCacheWithClient wraps an existing client.
func NewProfileCacheWithClient(client *redis.Client, ttl time.Duration) *ProfileCache {
	return &ProfileCache{client: client, ttl: ttl}
}

func key(username string) string {
	return "profile:" + username
}

// Get returns the cached profile, or nil on a miss.
func (c *ProfileCache) Get(ctx context.Context, username string) (*models.Profile, error) {
	val, err := c.client.Get(ctx, key(username)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var p models.Profile
	if err := json.Unmarshal(val, &p); err != nil {
		return nil, fmt.Errorf("decode cached profile: %w", err)
	}
	return &p, nil
}

// Set stores p with the configured TTL.
func (c *ProfileCache) Set(ctx context.Context, p *models.Profile) error {
	val, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(p.Username), val, c.ttl).Err()
}

// Add stores p only when no entry exists for its username and reports
// whether it was stored. Readers populate the cache with Add so a profile read
// before a concurrent save cannot replace the saved one.
func (c *ProfileCache) Add(ctx context.Context, p *models.Profile) (bool, error) {
	val, err := json.Marshal(p)
	if err != nil {
		return false, err
	}
	return c.client.SetNX(ctx, key(p.Username), val, c.ttl).Result()
}

// Invalidate drops the cached profile for username.
func (c *ProfileCache) Invalidate(ctx context.Context, username string) error {
	return c.client.Del(ctx, key(username)).Err()
}

// Ping checks connectivity to Redis.
func (c *ProfileCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *ProfileCache) Close() error {
	return c.client.Close()
}
