package contracts

import (
	"context"
	"time"
)

// ItemRepository persists the tracked universe.
type ItemRepository interface {
	// Upsert inserts the item by name or backfills missing optional fields
	// on the existing row. Rarity and thesis are never overwritten once set.
	Upsert(ctx context.Context, item Item) (Item, error)

	GetByID(ctx context.Context, id int64) (*Item, error)
	GetByName(ctx context.Context, name string) (*Item, error)

	// List returns the universe ordered by name.
	List(ctx context.Context) ([]Item, error)

	// UpdateMedia fills image/listing URLs for lazily enriched items.
	UpdateMedia(ctx context.Context, id int64, imageURL, listingURL string) error
}

// SnapshotRepository is the single owner of persisted observations.
type SnapshotRepository interface {
	// Upsert writes one snapshot, overwriting any existing row for the same
	// (item, date). Returns a ValidationError for non-positive prices or
	// future dates.
	Upsert(ctx context.Context, snap Snapshot) (Snapshot, error)

	// History returns the item's snapshots ascending by date. Empty, not an
	// error, when the item is untracked or has no data.
	History(ctx context.Context, itemID int64) ([]Snapshot, error)

	// Latest returns the most recent snapshot, or nil when none exists.
	Latest(ctx context.Context, itemID int64) (*Snapshot, error)

	// AllAscending returns every snapshot ordered by date then item.
	AllAscending(ctx context.Context) ([]Snapshot, error)

	// DeleteBySource removes all rows tagged with the given source classes
	// in one transaction: a failed delete leaves the store untouched.
	DeleteBySource(ctx context.Context, sources []Source) (int64, error)

	// AuditSummary aggregates counts and the covered date span.
	AuditSummary(ctx context.Context) (AuditSummary, error)

	// Recent returns the newest rows for audit inspection, newest first.
	Recent(ctx context.Context, limit int) ([]Snapshot, error)

	// DistinctDays counts the distinct snapshot dates in the store.
	DistinctDays(ctx context.Context) (int, error)
}

// SourceCount is one row of the audit source breakdown.
type SourceCount struct {
	Source Source `json:"source"`
	Count  int64  `json:"count"`
}

// AuditSummary describes the stored dataset.
type AuditSummary struct {
	TotalSnapshots  int64         `json:"total_snapshots"`
	DistinctDays    int           `json:"distinct_days"`
	FirstDate       *time.Time    `json:"first_snapshot_date"`
	LastDate        *time.Time    `json:"last_snapshot_date"`
	Verified        int64         `json:"verified_snapshots"`
	Unverified      int64         `json:"unverified_snapshots"`
	SourceBreakdown []SourceCount `json:"source_breakdown"`
}
