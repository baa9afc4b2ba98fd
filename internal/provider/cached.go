package provider

import (
	"context"
	"time"

	"github.com/skinfolio/skinfolio/internal/contracts"
	"github.com/skinfolio/skinfolio/pkg/redis"
)

// Cached wraps a provider with the Redis quote cache so repeated
// current-price lookups within the TTL skip the upstream entirely. History
// fetches always pass through: backfills are rare and want fresh data.
type Cached struct {
	inner Provider
	cache *redis.Client
	ttl   time.Duration
}

// NewCached wraps inner with the cache.
func NewCached(inner Provider, cache *redis.Client, ttl time.Duration) *Cached {
	return &Cached{inner: inner, cache: cache, ttl: ttl}
}

// Source implements Provider.
func (c *Cached) Source() contracts.Source { return c.inner.Source() }

// FetchCurrent implements Provider with cache-aside semantics.
func (c *Cached) FetchCurrent(ctx context.Context, item contracts.Item) (Quote, error) {
	if cached, ok := c.cache.GetQuote(ctx, item.Name); ok {
		return Quote{
			PriceUSD:  cached.PriceUSD,
			Volume24h: cached.Volume24h,
			SourceRef: cached.SourceRef,
		}, nil
	}

	quote, err := c.inner.FetchCurrent(ctx, item)
	if err != nil {
		return Quote{}, err
	}

	c.cache.SetQuote(ctx, item.Name, redis.CachedQuote{
		PriceUSD:  quote.PriceUSD,
		Volume24h: quote.Volume24h,
		SourceRef: quote.SourceRef,
	}, c.ttl)
	return quote, nil
}

// FetchHistory implements Provider, passing through uncached.
func (c *Cached) FetchHistory(ctx context.Context, item contracts.Item, days int) ([]PricePoint, error) {
	return c.inner.FetchHistory(ctx, item, days)
}
