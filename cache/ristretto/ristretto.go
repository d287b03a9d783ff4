package ristretto

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/easyfin/easyfin/cache"
)

// levels map a configured size to ristretto parameters. NumCounters is
// kept at ten times the expected number of items.
var levels = map[string]*ristretto.Config[string, any]{
	"small": {
		NumCounters: 1e4,
		MaxCost:     1 << 20, // 1MB
		BufferItems: 64,
	},
	"medium": {
		NumCounters: 1e5,
		MaxCost:     1 << 24, // 16MB
		BufferItems: 64,
	},
	"large": {
		NumCounters: 1e6,
		MaxCost:     1 << 27, // 128MB
		BufferItems: 64,
	},
	"very-large": {
		NumCounters: 1e7,
		MaxCost:     1 << 30, // 1GB
		BufferItems: 64,
	},
}

// Levels returns the accepted size names.
func Levels() []string {
	return []string{"small", "medium", "large", "very-large"}
}

type Cache[V any] struct {
	cache *ristretto.Cache[string, V]
}

var _ cache.Cache[any] = (*Cache[any])(nil)

// New creates a cache sized by level.
func New[V any](level string) (*Cache[V], error) {
	params, ok := levels[level]
	if !ok {
		return nil, fmt.Errorf("unknown cache level %q", level)
	}

	c, err := ristretto.NewCache(&ristretto.Config[string, V]{
		NumCounters: params.NumCounters,
		MaxCost:     params.MaxCost,
		BufferItems: params.BufferItems,
	})
	if err != nil {
		return nil, err
	}
	return &Cache[V]{cache: c}, nil
}

func (rc *Cache[V]) Get(key string) (V, bool) {
	return rc.cache.Get(key)
}

// Set waits for the write buffer so the value is visible to the next Get.
func (rc *Cache[V]) Set(key string, value V, cost int64) bool {
	ok := rc.cache.Set(key, value, cost)
	rc.cache.Wait()
	return ok
}

func (rc *Cache[V]) SetWithTTL(key string, value V, cost int64, ttl time.Duration) bool {
	ok := rc.cache.SetWithTTL(key, value, cost, ttl)
	rc.cache.Wait()
	return ok
}

func (rc *Cache[V]) Del(key string) {
	rc.cache.Del(key)
}

func (rc *Cache[V]) Close() {
	rc.cache.Close()
}
