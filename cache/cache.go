package cache

import "time"

// Cache is a string keyed cache with cost based eviction.
type Cache[V any] interface {
	Get(key string) (V, bool)

	// Set stores a value with cost, returning false if the write was dropped
	Set(key string, value V, cost int64) bool

	SetWithTTL(key string, value V, cost int64, ttl time.Duration) bool

	Del(key string)
}
