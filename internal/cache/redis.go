package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pranav-un/kortex/internal/config"
	"github.com/redis/go-redis/v9"
)

// Cache is a thin Redis wrapper used for query embeddings and answers.
// A nil *Cache is valid and disables caching, so callers never need to
// branch on whether Redis is configured.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(cfg config.RedisConfig) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, caching disabled", "addr", cfg.Addr, "error", err)
		return nil
	}

	return &Cache{client: client, ttl: time.Hour}
}

// Key builds a namespaced cache key from its parts, hashing the last part so
// arbitrary query text stays within Redis key size limits.
func Key(namespace string, parts ...string) string {
	key := namespace
	for i, p := range parts {
		if i == len(parts)-1 && len(p) > 64 {
			sum := sha256.Sum256([]byte(p))
			p = hex.EncodeToString(sum[:])
		}
		key += ":" + p
	}
	return key
}

func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if c == nil {
		return false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode cached value for %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value any) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value for %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *Cache) InvalidateUser(ctx context.Context, userID string) {
	if c == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, "kortex:*:"+userID+":*", 100).Iterator()
	for iter.Next(ctx) {
		c.client.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.Warn("cache invalidation scan failed", "user_id", userID, "error", err)
	}
}

func (c *Cache) Enabled() bool {
	return c != nil
}

func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
