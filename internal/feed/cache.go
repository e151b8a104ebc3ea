// Package feed implements the timeline assembly subsystem: a TTL-bounded
// page cache with cascading invalidation, and the aggregator that builds a
// user's timeline from the follow graph, the content store, and the
// reaction ledger.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/picstream/picstream/internal/clients"
	"github.com/picstream/picstream/pkg/logging"
)

const keyPrefix = "feed:user:"

// Store is the key/value backend for cached feed pages. internal/cache
// satisfies it with Redis.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) (int64, error)
}

// PageKey builds the cache key for one (user, page, size) feed page
func PageKey(userID uuid.UUID, page, size int) string {
	return fmt.Sprintf("%s%s:%d:%d", keyPrefix, userID, page, size)
}

// UserPattern builds the glob matching every cached page of one user
func UserPattern(userID uuid.UUID) string {
	return keyPrefix + userID.String() + ":*"
}

// Cache is the feed page cache. It is an optimization layer only: every
// read error is a miss, every write error is a no-op, and TTL expiry is the
// freshness backstop when invalidation signals are lost.
type Cache struct {
	store     Store
	ttl       time.Duration
	workers   int
	deadline  time.Duration
	followers FollowerSource
	logger    *zap.Logger
}

// FollowerSource resolves the follower id set for the invalidation cascade
type FollowerSource interface {
	FollowerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// CacheConfig holds the tunables of the feed cache
type CacheConfig struct {
	TTL                 time.Duration
	InvalidationWorkers int
	InvalidationTimeout time.Duration
}

// NewCache creates a new feed cache on top of the given store
func NewCache(store Store, followers FollowerSource, cfg CacheConfig) *Cache {
	return &Cache{
		store:     store,
		ttl:       cfg.TTL,
		workers:   cfg.InvalidationWorkers,
		deadline:  cfg.InvalidationTimeout,
		followers: followers,
		logger:    logging.GetLogger().With(zap.String("component", "feed-cache")),
	}
}

// GetPage returns a cached page and whether it was present. Store errors
// and decode errors are both treated as a miss.
func (c *Cache) GetPage(ctx context.Context, userID uuid.UUID, page, size int) (*clients.PostPage, bool) {
	if c.store == nil {
		return nil, false
	}

	raw, err := c.store.Get(ctx, PageKey(userID, page, size))
	if err != nil {
		return nil, false
	}

	var cached clients.PostPage
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		c.logger.Warn("Discarding undecodable cached feed page",
			zap.String("user_id", userID.String()), zap.Error(err))
		return nil, false
	}
	return &cached, true
}

// SetPage stores an assembled page with the configured TTL. Failure is
// logged and swallowed; the caller returns the page regardless.
func (c *Cache) SetPage(ctx context.Context, userID uuid.UUID, page, size int, result *clients.PostPage) {
	if c.store == nil {
		return
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("Failed to encode feed page for cache", zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, PageKey(userID, page, size), string(encoded), c.ttl); err != nil {
		c.logger.Warn("Feed cache write failed",
			zap.String("user_id", userID.String()), zap.Error(err))
	}
}

// InvalidateUser drops every cached page of one user, across all page and
// size combinations
func (c *Cache) InvalidateUser(ctx context.Context, userID uuid.UUID) {
	if c.store == nil {
		return
	}

	if _, err := c.store.DeleteByPattern(ctx, UserPattern(userID)); err != nil {
		c.logger.Warn("Feed cache invalidation failed",
			zap.String("user_id", userID.String()), zap.Error(err))
	}
}

// InvalidateFollowers drops the cached feed of every follower of userID.
// The fan-out runs on a bounded worker pool under a deadline so a popular
// account's post cannot stall its own write path; followers missed by the
// deadline keep a stale page until TTL expiry.
func (c *Cache) InvalidateFollowers(ctx context.Context, userID uuid.UUID) {
	if c.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.deadline)
	defer cancel()

	followerIDs, err := c.followers.FollowerIDs(ctx, userID)
	if err != nil {
		c.logger.Warn("Skipping follower feed invalidation: follower lookup failed",
			zap.String("user_id", userID.String()), zap.Error(err))
		return
	}
	if len(followerIDs) == 0 {
		return
	}

	ids := make(chan uuid.UUID)
	var wg sync.WaitGroup
	workers := c.workers
	if workers > len(followerIDs) {
		workers = len(followerIDs)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range ids {
				c.InvalidateUser(ctx, id)
			}
		}()
	}

loop:
	for _, id := range followerIDs {
		select {
		case ids <- id:
		case <-ctx.Done():
			c.logger.Warn("Follower feed invalidation deadline exceeded",
				zap.String("user_id", userID.String()),
				zap.Int("followers", len(followerIDs)))
			break loop
		}
	}
	close(ids)
	wg.Wait()
}
