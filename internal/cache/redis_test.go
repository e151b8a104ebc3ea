package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/picstream/picstream/pkg/config"
)

func TestCache_NamespaceKey(t *testing.T) {
	cache := &Cache{}

	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{
			name:     "simple key",
			key:      "test",
			expected: "picstream:test",
		},
		{
			name:     "key with colon",
			key:      "feed:user:abc",
			expected: "picstream:feed:user:abc",
		},
		{
			name:     "empty key",
			key:      "",
			expected: "picstream:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := cache.namespaceKey(tt.key)
			if result != tt.expected {
				t.Errorf("namespaceKey() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestNewDisabled(t *testing.T) {
	cache, err := New(&config.RedisConfig{Enabled: false})
	if err != nil {
		t.Fatalf("Disabled cache should not error: %v", err)
	}
	if cache != nil {
		t.Fatal("Disabled cache should be nil")
	}
}

func TestNilCacheOperations(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	if _, err := cache.Get(ctx, "key"); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("Expected ErrCacheDisabled from Get, got: %v", err)
	}
	if err := cache.Set(ctx, "key", "value", time.Minute); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("Expected ErrCacheDisabled from Set, got: %v", err)
	}
	if err := cache.Delete(ctx, "key"); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("Expected ErrCacheDisabled from Delete, got: %v", err)
	}
	if _, err := cache.DeleteByPattern(ctx, "key:*"); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("Expected ErrCacheDisabled from DeleteByPattern, got: %v", err)
	}
	if err := cache.PushToList(ctx, "key", "value", 10, time.Minute); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("Expected ErrCacheDisabled from PushToList, got: %v", err)
	}
	if _, err := cache.ListRange(ctx, "key", 10); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("Expected ErrCacheDisabled from ListRange, got: %v", err)
	}
}
