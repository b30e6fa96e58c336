package cache

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/logparts/backend/internal/domain"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := NewMemoryCache(16, time.Minute)
	ctx := context.Background()

	tests := []struct {
		name  string
		key   string
		value interface{}
	}{
		{name: "store and retrieve string", key: "k1", value: "v1"},
		{name: "store and retrieve response", key: "k2", value: domain.SuggestResponse{Query: "fil", Total: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := cache.Set(ctx, tt.key, tt.value); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			got, err := cache.Get(ctx, tt.key)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.value) {
				t.Errorf("Get() = %v, want %v", got, tt.value)
			}
		})
	}
}

func TestMemoryCache_Miss(t *testing.T) {
	cache := NewMemoryCache(4, time.Minute)

	_, err := cache.Get(context.Background(), "absent")
	if err != domain.ErrCacheMiss {
		t.Errorf("Get() error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache := NewMemoryCache(4, 5*time.Millisecond)
	ctx := context.Background()

	_ = cache.Set(ctx, "short", "lived")
	time.Sleep(20 * time.Millisecond)

	if _, err := cache.Get(ctx, "short"); err != domain.ErrCacheMiss {
		t.Errorf("expected cache miss after expiration, got %v", err)
	}
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewMemoryCache(2, time.Minute)
	ctx := context.Background()

	_ = cache.Set(ctx, "a", 1)
	_ = cache.Set(ctx, "b", 2)
	_, _ = cache.Get(ctx, "a")
	_ = cache.Set(ctx, "c", 3)

	if _, err := cache.Get(ctx, "b"); err != domain.ErrCacheMiss {
		t.Errorf("expected b to be evicted, got %v", err)
	}
	if _, err := cache.Get(ctx, "a"); err != nil {
		t.Errorf("expected a to survive, got %v", err)
	}
	if cache.Size() != 2 {
		t.Errorf("Size() = %d, want 2", cache.Size())
	}
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	cache := NewMemoryCache(0, 0)
	ctx := context.Background()

	_ = cache.Set(ctx, "a", 1)
	_ = cache.Set(ctx, "b", 2)
	_ = cache.Delete(ctx, "a")

	if _, err := cache.Get(ctx, "a"); err != domain.ErrCacheMiss {
		t.Errorf("expected miss after Delete, got %v", err)
	}

	cache.Clear()
	if cache.Size() != 0 {
		t.Errorf("Size() after Clear = %d, want 0", cache.Size())
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := NewMemoryCache(64, time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i%5)
			_ = cache.Set(ctx, key, i)
			_, _ = cache.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	if cache.Size() != 5 {
		t.Errorf("Size() = %d, want 5", cache.Size())
	}
}
