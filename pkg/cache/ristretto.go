package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"go.uber.org/zap"
)

// RistrettoCache is a Cache backed by Ristretto. Every entry costs 1, so MaxCost is an item count.
type RistrettoCache[V any] struct {
	name   string
	cache  *ristretto.Cache
	logger *zap.Logger
}

// RistrettoConfig holds configuration for Ristretto cache.
type RistrettoConfig struct {
	Name        string // metrics label
	NumCounters int64  // Number of keys to track frequency (10x max items)
	MaxCost     int64  // Maximum number of items
	BufferItems int64  // Number of keys per Get buffer
	Logger      *zap.Logger
}

// NewRistrettoCache creates a new Ristretto-backed cache holding values of type V.
func NewRistrettoCache[V any](cfg *RistrettoConfig) (*RistrettoCache[V], error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RistrettoCache[V]{
		name:   cfg.Name,
		cache:  cache,
		logger: logger,
	}, nil
}

// Get retrieves a value from the cache.
func (r *RistrettoCache[V]) Get(key string) (V, bool) {
	var zero V

	raw, found := r.cache.Get(key)
	if !found {
		LookupsTotal.WithLabelValues(r.name, "miss").Inc()
		return zero, false
	}

	value, ok := raw.(V)
	if !ok {
		r.logger.Warn("cache-type-mismatch", zap.String("cache", r.name), zap.String("key", key))
		LookupsTotal.WithLabelValues(r.name, "miss").Inc()
		return zero, false
	}

	LookupsTotal.WithLabelValues(r.name, "hit").Inc()
	return value, true
}

// Set stores a value in the cache with a TTL.
func (r *RistrettoCache[V]) Set(key string, value V, ttl time.Duration) bool {
	stored := r.cache.SetWithTTL(key, value, 1, ttl)
	if !stored {
		WritesTotal.WithLabelValues(r.name, "dropped").Inc()
		r.logger.Debug("cache-write-dropped",
			zap.String("cache", r.name),
			zap.String("key", key))
		return false
	}

	WritesTotal.WithLabelValues(r.name, "stored").Inc()
	return true
}

// Delete removes a value from the cache.
func (r *RistrettoCache[V]) Delete(key string) {
	r.cache.Del(key)
}

// Close closes the cache and releases resources.
func (r *RistrettoCache[V]) Close() {
	r.cache.Close()
}

// Wait blocks until all pending writes have been applied.
func (r *RistrettoCache[V]) Wait() {
	r.cache.Wait()
}
