package markets

import (
	"context"
	"time"

	"github.com/mselser95/polymarket-mirror/pkg/cache"
	"github.com/mselser95/polymarket-mirror/pkg/types"
)

// CachedResolver wraps a Resolver with a TTL cache. Fallback results are never cached so the
// next event retries the lookup.
type CachedResolver struct {
	resolver Resolver
	cache    cache.Cache[types.MarketMetadata]
	ttl      time.Duration
}

// NewCachedResolver creates a cached resolver. A nil cache disables caching.
func NewCachedResolver(resolver Resolver, c cache.Cache[types.MarketMetadata], ttl time.Duration) *CachedResolver {
	return &CachedResolver{
		resolver: resolver,
		cache:    c,
		ttl:      ttl,
	}
}

// Resolve returns cached metadata or resolves and caches it.
func (c *CachedResolver) Resolve(ctx context.Context, marketID string) types.MarketMetadata {
	if c.cache == nil || c.ttl <= 0 {
		return c.resolver.Resolve(ctx, marketID)
	}

	key := "metadata:" + marketID
	if meta, ok := c.cache.Get(key); ok {
		CacheLookupsTotal.WithLabelValues("hit").Inc()
		return meta
	}
	CacheLookupsTotal.WithLabelValues("miss").Inc()

	meta := c.resolver.Resolve(ctx, marketID)
	if !meta.Fallback {
		c.cache.Set(key, meta, c.ttl)
	}

	return meta
}
