// Package provider abstracts where market prices come from. The concrete
// variant is a configuration-time choice; the ingestion pipeline only sees
// this interface.
package provider

import (
	"context"
	"math"
	"time"

	"github.com/skinfolio/skinfolio/internal/contracts"
)

// Quote is one current-price observation for one item.
type Quote struct {
	PriceUSD  float64
	Volume24h int64
	SourceRef string
}

// PricePoint is one historical observation returned by FetchHistory.
type PricePoint struct {
	Date      time.Time
	PriceUSD  float64
	Volume24h int64
}

// Provider fetches market data for a single item. Implementations signal
// per-item failures as *contracts.FetchError so a batch can skip and
// continue.
type Provider interface {
	// Source is the snapshot tag rows fetched from this provider carry.
	Source() contracts.Source

	// FetchCurrent returns the item's current price and 24h volume.
	FetchCurrent(ctx context.Context, item contracts.Item) (Quote, error)

	// FetchHistory returns up to days of daily observations ascending by
	// date. Providers without history return an empty slice.
	FetchHistory(ctx context.Context, item contracts.Item, days int) ([]PricePoint, error)
}

// MediaResolver is implemented by providers that can enrich item media.
type MediaResolver interface {
	// ResolveImageURL returns an icon URL for the item, or "" when
	// unavailable.
	ResolveImageURL(ctx context.Context, itemName string) (string, error)

	// ListingURL builds the public market listing URL for the item.
	ListingURL(itemName string) string
}

// MaxPlausiblePriceUSD bounds the backfill sanity check. Nothing in the
// tracked basket has ever cleared this; prices beyond it are treated as
// malformed provider data and stored unverified.
const MaxPlausiblePriceUSD = 100000.0

// SanePrice reports whether a price passes the provider-boundary sanity
// check: positive, finite, within documented bounds.
func SanePrice(price float64) bool {
	return price > 0 &&
		!math.IsNaN(price) &&
		!math.IsInf(price, 0) &&
		price <= MaxPlausiblePriceUSD
}
