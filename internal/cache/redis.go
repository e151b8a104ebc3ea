package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/picstream/picstream/pkg/config"
	"github.com/picstream/picstream/pkg/logging"
)

var (
	// ErrCacheDisabled is returned when cache operations are attempted but cache is disabled
	ErrCacheDisabled = fmt.Errorf("cache is disabled")
)

// Cache wraps Redis client. All keys share the "picstream:" namespace.
type Cache struct {
	client *redis.Client
}

// New creates a new Redis cache client
func New(cfg *config.RedisConfig) (*Cache, error) {
	if !cfg.Enabled {
		logging.GetLogger().Info("Redis cache disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetLogger().Info("Redis connection established")

	return &Cache{client: client}, nil
}

func (c *Cache) namespaceKey(key string) string {
	return "picstream:" + key
}

// Get retrieves a value from cache
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	if c == nil || c.client == nil {
		return "", ErrCacheDisabled
	}
	return c.client.Get(ctx, c.namespaceKey(key)).Result()
}

// Set sets a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Set(ctx, c.namespaceKey(key), value, ttl).Err()
}

// Delete removes a key from cache
func (c *Cache) Delete(ctx context.Context, key string) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Del(ctx, c.namespaceKey(key)).Err()
}

// DeleteByPattern removes every key matching the glob pattern. Keys are
// collected with SCAN rather than KEYS so a large keyspace does not block
// the server.
func (c *Cache) DeleteByPattern(ctx context.Context, pattern string) (int64, error) {
	if c == nil || c.client == nil {
		return 0, ErrCacheDisabled
	}

	var deleted int64
	iter := c.client.Scan(ctx, 0, c.namespaceKey(pattern), 100).Iterator()
	batch := make([]string, 0, 100)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			n, err := c.client.Del(ctx, batch...).Result()
			deleted += n
			if err != nil {
				return deleted, err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, err
	}
	if len(batch) > 0 {
		n, err := c.client.Del(ctx, batch...).Result()
		deleted += n
		if err != nil {
			return deleted, err
		}
	}
	return deleted, nil
}

// KeysByPrefix lists every key beginning with the prefix, namespace stripped
func (c *Cache) KeysByPrefix(ctx context.Context, prefix string) ([]string, error) {
	if c == nil || c.client == nil {
		return nil, ErrCacheDisabled
	}

	ns := c.namespaceKey("")
	var keys []string
	iter := c.client.Scan(ctx, 0, c.namespaceKey(prefix)+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()[len(ns):])
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// PushToList prepends a value to a list key, trims the list to maxLen, and
// refreshes the key's TTL. Used for the notification inboxes.
func (c *Cache) PushToList(ctx context.Context, key string, value interface{}, maxLen int64, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	nsKey := c.namespaceKey(key)
	pipe := c.client.TxPipeline()
	pipe.LPush(ctx, nsKey, value)
	pipe.LTrim(ctx, nsKey, 0, maxLen-1)
	pipe.Expire(ctx, nsKey, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// ListRange returns up to count values from the head of a list key
func (c *Cache) ListRange(ctx context.Context, key string, count int64) ([]string, error) {
	if c == nil || c.client == nil {
		return nil, ErrCacheDisabled
	}
	return c.client.LRange(ctx, c.namespaceKey(key), 0, count-1).Result()
}

// Exists checks if a key exists
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	if c == nil || c.client == nil {
		return false, ErrCacheDisabled
	}
	count, err := c.client.Exists(ctx, c.namespaceKey(key)).Result()
	return count > 0, err
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Health checks Redis health
func (c *Cache) Health(ctx context.Context) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Ping(ctx).Err()
}
