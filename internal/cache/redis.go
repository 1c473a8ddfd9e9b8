package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dbsmedya/mongolens/internal/config"
	"github.com/dbsmedya/mongolens/internal/registry"
)

const defaultKeyPrefix = "mongolens"

// RedisCache stores the snapshot as a single JSON value keyed by database
// name, with the configured TTL.
type RedisCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedis builds a Redis-backed cache from configuration. The connection
// is lazy; the first Save or Load dials.
func NewRedis(cfg *config.CacheConfig, database string) *RedisCache {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return &RedisCache{
		client: client,
		key:    fmt.Sprintf("%s:snapshot:%s", prefix, database),
		ttl:    cfg.TTL(),
	}
}

// Save stores the snapshot as JSON, replacing any previous value.
func (c *RedisCache) Save(ctx context.Context, snap *registry.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := c.client.Set(ctx, c.key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

// Load retrieves and decodes the stored snapshot.
func (c *RedisCache) Load(ctx context.Context) (*registry.Snapshot, error) {
	payload, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	var snap registry.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// Close releases the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
