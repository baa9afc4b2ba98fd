package store

import (
	"math"
	"time"

	"github.com/skinfolio/skinfolio/internal/contracts"
)

// validateSnapshot enforces the store write contract shared by both
// implementations: positive finite price, no future dates, known source.
func validateSnapshot(snap contracts.Snapshot, now time.Time) error {
	if snap.PriceUSD <= 0 {
		return &contracts.ValidationError{Field: "price_usd", Reason: "must be positive"}
	}
	if math.IsNaN(snap.PriceUSD) || math.IsInf(snap.PriceUSD, 0) {
		return &contracts.ValidationError{Field: "price_usd", Reason: "must be finite"}
	}
	if snap.Volume24h < 0 {
		return &contracts.ValidationError{Field: "volume_24h", Reason: "must not be negative"}
	}
	if contracts.Day(snap.Date).After(contracts.Day(now)) {
		return &contracts.ValidationError{Field: "snapshot_date", Reason: "must not be in the future"}
	}

	switch snap.Source {
	case contracts.SourceSteam, contracts.SourceMock, contracts.SourceHTTP, contracts.SourceBackfill:
	default:
		return &contracts.ValidationError{Field: "source", Reason: "unknown source class"}
	}

	return nil
}
