// Package cache provides a typed TTL cache backed by Ristretto.
package cache

import "time"

// Cache is a typed key-value cache with a per-entry TTL.
type Cache[V any] interface {
	// Get returns (value, true) if found and not expired.
	Get(key string) (V, bool)

	// Set stores a value with a TTL. Writes are applied asynchronously and may be dropped.
	Set(key string, value V, ttl time.Duration) bool

	// Delete removes a value.
	Delete(key string)

	// Close releases resources.
	Close()
}
