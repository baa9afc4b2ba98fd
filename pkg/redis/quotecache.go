package redis

import (
	"context"
	"encoding/json"
	"time"
)

// CachedQuote is the serialized form of one current-price observation.
type CachedQuote struct {
	PriceUSD  float64 `json:"price_usd"`
	Volume24h int64   `json:"volume_24h"`
	SourceRef string  `json:"source_ref,omitempty"`
}

const quoteKeyPrefix = "skinfolio:quote:"

// GetQuote returns the cached quote for an item name, or (nil, false) on a
// miss. Cache errors degrade to misses so a broken Redis never blocks
// ingestion.
func (c *Client) GetQuote(ctx context.Context, itemName string) (*CachedQuote, bool) {
	if !c.enabled {
		return nil, false
	}

	// Absent keys and transport errors both read as misses.
	raw, err := c.rdb.Get(ctx, quoteKeyPrefix+itemName).Bytes()
	if err != nil {
		return nil, false
	}

	var q CachedQuote
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil, false
	}
	return &q, true
}

// SetQuote stores a quote with the given TTL. Errors are swallowed for the
// same reason GetQuote degrades to misses.
func (c *Client) SetQuote(ctx context.Context, itemName string, q CachedQuote, ttl time.Duration) {
	if !c.enabled {
		return
	}

	raw, err := json.Marshal(q)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, quoteKeyPrefix+itemName, raw, ttl).Err()
}
