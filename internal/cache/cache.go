// Package cache stores dashboard payloads in Redis under versioned keys.
// Bumping the version invalidates every cached entry at once.
package cache

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

const versionKey = "escrow:cache:version"

// Cache wraps a Redis client. A nil *Cache is valid and always calls the loader.
type Cache struct {
    client *redis.Client
    ttl    time.Duration
}

// New connects to addr and verifies the connection.
func New(ctx context.Context, addr string, ttl time.Duration) (*Cache, error) {
    client := redis.NewClient(&redis.Options{Addr: addr})
    if err := client.Ping(ctx).Err(); err != nil {
        _ = client.Close()
        return nil, fmt.Errorf("redis ping: %w", err)
    }
    return NewWithClient(client, ttl), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, ttl time.Duration) *Cache {
    return &Cache{client: client, ttl: ttl}
}

// Close releases the client.
func (c *Cache) Close() error {
    if c == nil || c.client == nil {
        return nil
    }
    return c.client.Close()
}

// Ready pings Redis.
func (c *Cache) Ready(ctx context.Context) error {
    if c == nil || c.client == nil {
        return nil
    }
    return c.client.Ping(ctx).Err()
}

// Version returns the current cache version, initialising it when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
    if c == nil || c.client == nil {
        return 0, nil
    }
    ver, err := c.client.Get(ctx, versionKey).Int64()
    if errors.Is(err, redis.Nil) {
        if err := c.client.SetNX(ctx, versionKey, 1, 0).Err(); err != nil {
            return 0, err
        }
        return 1, nil
    }
    if err != nil {
        return 0, err
    }
    if ver <= 0 {
        ver = 1
        if err := c.client.Set(ctx, versionKey, ver, 0).Err(); err != nil {
            return 0, err
        }
    }
    return ver, nil
}

// BuildKey joins parts and appends the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
    joined := strings.Join(append([]string{"escrow"}, parts...), ":")
    if c == nil || c.client == nil {
        return joined, nil
    }
    ver, err := c.Version(ctx)
    if err != nil {
        return "", err
    }
    return fmt.Sprintf("%s:%d", joined, ver), nil
}

// FetchJSON decodes the cached value at key into dest, or runs loader,
// stores its JSON encoding with the configured TTL and decodes that.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
    if loader == nil {
        return errors.New("cache: loader required")
    }
    if c == nil || c.client == nil {
        value, err := loader(ctx)
        if err != nil {
            return err
        }
        raw, err := json.Marshal(value)
        if err != nil {
            return err
        }
        return json.Unmarshal(raw, dest)
    }
    payload, err := c.client.Get(ctx, key).Bytes()
    if err == nil {
        return json.Unmarshal(payload, dest)
    }
    if !errors.Is(err, redis.Nil) {
        return err
    }
    value, err := loader(ctx)
    if err != nil {
        return err
    }
    raw, err := json.Marshal(value)
    if err != nil {
        return err
    }
    if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
        return err
    }
    return json.Unmarshal(raw, dest)
}

// Bump invalidates every cached entry by incrementing the version.
func (c *Cache) Bump(ctx context.Context) (int64, error) {
    if c == nil || c.client == nil {
        return 0, nil
    }
    return c.client.Incr(ctx, versionKey).Result()
}
