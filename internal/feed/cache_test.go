package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picstream/picstream/internal/clients"
)

// fakeStore is an in-memory Store with injectable failures
type fakeStore struct {
	mu       sync.Mutex
	data     map[string]string
	getErr   error
	setErr   error
	delErr   error
	delay    time.Duration
	patterns []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}}
}

func (s *fakeStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", s.getErr
	}
	v, ok := s.data[key]
	if !ok {
		return "", errors.New("key not found")
	}
	return v, nil
}

func (s *fakeStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = fmt.Sprintf("%v", value)
	return nil
}

func (s *fakeStore) DeleteByPattern(ctx context.Context, pattern string) (int64, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.delErr != nil {
		return 0, s.delErr
	}
	s.patterns = append(s.patterns, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	var deleted int64
	for key := range s.data {
		if strings.HasPrefix(key, prefix) {
			delete(s.data, key)
			deleted++
		}
	}
	return deleted, nil
}

func (s *fakeStore) recordedPatterns() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.patterns...)
}

// fakeFollowers is a canned FollowerSource
type fakeFollowers struct {
	ids []uuid.UUID
	err error
}

func (f *fakeFollowers) FollowerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return f.ids, f.err
}

func testCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:                 time.Minute,
		InvalidationWorkers: 4,
		InvalidationTimeout: time.Second,
	}
}

func TestPageKey(t *testing.T) {
	userID := uuid.MustParse("11111111-2222-3333-4444-555555555555")

	key := PageKey(userID, 2, 20)
	assert.Equal(t, "feed:user:11111111-2222-3333-4444-555555555555:2:20", key)

	pattern := UserPattern(userID)
	assert.Equal(t, "feed:user:11111111-2222-3333-4444-555555555555:*", pattern)
	assert.True(t, strings.HasPrefix(key, strings.TrimSuffix(pattern, "*")))
}

func TestGetPageRoundTrip(t *testing.T) {
	store := newFakeStore()
	cache := NewCache(store, &fakeFollowers{}, testCacheConfig())
	userID := uuid.New()

	page := &clients.PostPage{
		Content:    []clients.FeedPost{{ID: uuid.New(), Caption: "hello"}},
		Page:       0,
		Size:       20,
		TotalCount: 1,
	}
	cache.SetPage(context.Background(), userID, 0, 20, page)

	got, ok := cache.GetPage(context.Background(), userID, 0, 20)
	require.True(t, ok)
	require.Len(t, got.Content, 1)
	assert.Equal(t, page.Content[0].ID, got.Content[0].ID)
	assert.Equal(t, int64(1), got.TotalCount)

	// Different page and size are distinct entries
	_, ok = cache.GetPage(context.Background(), userID, 1, 20)
	assert.False(t, ok)
	_, ok = cache.GetPage(context.Background(), userID, 0, 10)
	assert.False(t, ok)
}

func TestGetPageErrorsAreMisses(t *testing.T) {
	store := newFakeStore()
	cache := NewCache(store, &fakeFollowers{}, testCacheConfig())
	userID := uuid.New()

	// Store error
	store.getErr = errors.New("connection refused")
	_, ok := cache.GetPage(context.Background(), userID, 0, 20)
	assert.False(t, ok)

	// Undecodable payload
	store.getErr = nil
	store.data[PageKey(userID, 0, 20)] = "{not json"
	_, ok = cache.GetPage(context.Background(), userID, 0, 20)
	assert.False(t, ok)
}

func TestSetPageFailureIsSwallowed(t *testing.T) {
	store := newFakeStore()
	store.setErr = errors.New("connection refused")
	cache := NewCache(store, &fakeFollowers{}, testCacheConfig())

	// Must not panic or surface the error
	cache.SetPage(context.Background(), uuid.New(), 0, 20, &clients.PostPage{})
}

func TestInvalidateUser(t *testing.T) {
	store := newFakeStore()
	cache := NewCache(store, &fakeFollowers{}, testCacheConfig())
	userID := uuid.New()
	other := uuid.New()

	for _, p := range []int{0, 1, 2} {
		cache.SetPage(context.Background(), userID, p, 20, &clients.PostPage{Page: p})
	}
	cache.SetPage(context.Background(), other, 0, 20, &clients.PostPage{})

	cache.InvalidateUser(context.Background(), userID)

	for _, p := range []int{0, 1, 2} {
		_, ok := cache.GetPage(context.Background(), userID, p, 20)
		assert.False(t, ok, "page %d should be invalidated", p)
	}

	// Other users' pages survive
	_, ok := cache.GetPage(context.Background(), other, 0, 20)
	assert.True(t, ok)
}

func TestInvalidateFollowers(t *testing.T) {
	store := newFakeStore()
	followerIDs := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	cache := NewCache(store, &fakeFollowers{ids: followerIDs}, testCacheConfig())

	for _, id := range followerIDs {
		cache.SetPage(context.Background(), id, 0, 20, &clients.PostPage{})
	}

	cache.InvalidateFollowers(context.Background(), uuid.New())

	for _, id := range followerIDs {
		_, ok := cache.GetPage(context.Background(), id, 0, 20)
		assert.False(t, ok)
	}
}

func TestInvalidateFollowersLookupFailure(t *testing.T) {
	store := newFakeStore()
	cache := NewCache(store, &fakeFollowers{err: errors.New("service down")}, testCacheConfig())

	// Cascade is skipped entirely, no panic
	cache.InvalidateFollowers(context.Background(), uuid.New())
	assert.Empty(t, store.recordedPatterns())
}

func TestInvalidateFollowersDeadline(t *testing.T) {
	store := newFakeStore()
	store.delay = 50 * time.Millisecond

	followerIDs := make([]uuid.UUID, 100)
	for i := range followerIDs {
		followerIDs[i] = uuid.New()
	}

	cfg := testCacheConfig()
	cfg.InvalidationWorkers = 2
	cfg.InvalidationTimeout = 120 * time.Millisecond
	cache := NewCache(store, &fakeFollowers{ids: followerIDs}, cfg)

	start := time.Now()
	cache.InvalidateFollowers(context.Background(), uuid.New())
	elapsed := time.Since(start)

	// Stops near the deadline instead of draining all 100 followers
	assert.Less(t, elapsed, 500*time.Millisecond)
	assert.Less(t, len(store.recordedPatterns()), len(followerIDs))
}

func TestNilStoreIsNoop(t *testing.T) {
	cache := NewCache(nil, &fakeFollowers{}, testCacheConfig())
	userID := uuid.New()

	_, ok := cache.GetPage(context.Background(), userID, 0, 20)
	assert.False(t, ok)

	cache.SetPage(context.Background(), userID, 0, 20, &clients.PostPage{})
	cache.InvalidateUser(context.Background(), userID)
	cache.InvalidateFollowers(context.Background(), userID)
}

func TestCachedPageDecodes(t *testing.T) {
	// The cached encoding must round-trip the wire shape exactly
	page := clients.PostPage{
		Content: []clients.FeedPost{{
			ID:        uuid.New(),
			AuthorID:  uuid.New(),
			Caption:   "sunset",
			MediaURLs: []string{"https://cdn.example/1.jpg"},
			IsLiked:   true,
		}},
		TotalCount: 1,
	}
	encoded, err := json.Marshal(&page)
	require.NoError(t, err)

	var decoded clients.PostPage
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, page.Content[0].IsLiked, decoded.Content[0].IsLiked)
	assert.Equal(t, page.Content[0].MediaURLs, decoded.Content[0].MediaURLs)
}
