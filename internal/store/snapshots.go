package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skinfolio/skinfolio/internal/contracts"
)

// SnapshotStore implements contracts.SnapshotRepository on PostgreSQL. The
// (item_id, snapshot_date) primary key enforces the one-row-per-day
// invariant; upserts overwrite in place.
type SnapshotStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewSnapshotStore creates a snapshot repository.
func NewSnapshotStore(pool *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool, now: time.Now}
}

const snapshotColumns = `item_id, snapshot_date, price_usd, volume_24h, source, source_ref, verified`

// Upsert writes one snapshot, overwriting any existing row for the same
// (item, date) with the latest source and verification state.
func (s *SnapshotStore) Upsert(ctx context.Context, snap contracts.Snapshot) (contracts.Snapshot, error) {
	if err := validateSnapshot(snap, s.now()); err != nil {
		return contracts.Snapshot{}, err
	}
	snap.Date = contracts.Day(snap.Date)

	query := `
		INSERT INTO price_snapshots (` + snapshotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (item_id, snapshot_date) DO UPDATE SET
			price_usd  = EXCLUDED.price_usd,
			volume_24h = EXCLUDED.volume_24h,
			source     = EXCLUDED.source,
			source_ref = EXCLUDED.source_ref,
			verified   = EXCLUDED.verified
	`

	_, err := s.pool.Exec(ctx, query,
		snap.ItemID, snap.Date, snap.PriceUSD, snap.Volume24h,
		string(snap.Source), snap.SourceRef, snap.Verified,
	)
	if err != nil {
		return contracts.Snapshot{}, fmt.Errorf("upsert snapshot: %w", err)
	}
	return snap, nil
}

// History returns the item's snapshots ascending by date.
func (s *SnapshotStore) History(ctx context.Context, itemID int64) ([]contracts.Snapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM price_snapshots
		WHERE item_id = $1
		ORDER BY snapshot_date ASC
	`
	return s.query(ctx, query, itemID)
}

// Latest returns the most recent snapshot, or nil when none exists.
func (s *SnapshotStore) Latest(ctx context.Context, itemID int64) (*contracts.Snapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM price_snapshots
		WHERE item_id = $1
		ORDER BY snapshot_date DESC
		LIMIT 1
	`

	var snap contracts.Snapshot
	var source string
	err := s.pool.QueryRow(ctx, query, itemID).Scan(
		&snap.ItemID, &snap.Date, &snap.PriceUSD, &snap.Volume24h,
		&source, &snap.SourceRef, &snap.Verified,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}
	snap.Source = contracts.Source(source)
	return &snap, nil
}

// AllAscending returns every snapshot ordered by date then item.
func (s *SnapshotStore) AllAscending(ctx context.Context) ([]contracts.Snapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM price_snapshots
		ORDER BY snapshot_date ASC, item_id ASC
	`
	return s.query(ctx, query)
}

// Recent returns the newest rows for audit inspection.
func (s *SnapshotStore) Recent(ctx context.Context, limit int) ([]contracts.Snapshot, error) {
	if limit < 1 {
		limit = 1
	}
	query := `
		SELECT ` + snapshotColumns + `
		FROM price_snapshots
		ORDER BY snapshot_date DESC, item_id DESC
		LIMIT $1
	`
	return s.query(ctx, query, limit)
}

// DeleteBySource removes every row tagged with the given source classes in
// one transaction. A rebuild never observes a half-deleted store.
func (s *SnapshotStore) DeleteBySource(ctx context.Context, sources []contracts.Source) (int64, error) {
	if len(sources) == 0 {
		return 0, nil
	}

	tags := make([]string, len(sources))
	for i, src := range sources {
		tags[i] = string(src)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx, `DELETE FROM price_snapshots WHERE source = ANY($1)`, tags)
	if err != nil {
		return 0, fmt.Errorf("delete snapshots: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit delete: %w", err)
	}
	return res.RowsAffected(), nil
}

// DistinctDays counts the distinct snapshot dates in the store.
func (s *SnapshotStore) DistinctDays(ctx context.Context) (int, error) {
	var days int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT snapshot_date) FROM price_snapshots`,
	).Scan(&days)
	if err != nil {
		return 0, fmt.Errorf("distinct days: %w", err)
	}
	return days, nil
}

// AuditSummary aggregates counts and the covered date span. Indexed
// aggregates, no row scans in Go.
func (s *SnapshotStore) AuditSummary(ctx context.Context) (contracts.AuditSummary, error) {
	var summary contracts.AuditSummary

	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(DISTINCT snapshot_date),
		       COUNT(*) FILTER (WHERE verified),
		       MIN(snapshot_date),
		       MAX(snapshot_date)
		FROM price_snapshots
	`).Scan(&summary.TotalSnapshots, &summary.DistinctDays, &summary.Verified,
		&summary.FirstDate, &summary.LastDate)
	if err != nil {
		return contracts.AuditSummary{}, fmt.Errorf("audit summary: %w", err)
	}
	summary.Unverified = summary.TotalSnapshots - summary.Verified

	rows, err := s.pool.Query(ctx, `
		SELECT source, COUNT(*)
		FROM price_snapshots
		GROUP BY source
		ORDER BY COUNT(*) DESC, source ASC
	`)
	if err != nil {
		return contracts.AuditSummary{}, fmt.Errorf("audit source breakdown: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sc contracts.SourceCount
		var source string
		if err := rows.Scan(&source, &sc.Count); err != nil {
			return contracts.AuditSummary{}, fmt.Errorf("scan source count: %w", err)
		}
		sc.Source = contracts.Source(source)
		summary.SourceBreakdown = append(summary.SourceBreakdown, sc)
	}
	return summary, rows.Err()
}

func (s *SnapshotStore) query(ctx context.Context, query string, args ...interface{}) ([]contracts.Snapshot, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []contracts.Snapshot
	for rows.Next() {
		var snap contracts.Snapshot
		var source string
		if err := rows.Scan(
			&snap.ItemID, &snap.Date, &snap.PriceUSD, &snap.Volume24h,
			&source, &snap.SourceRef, &snap.Verified,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snap.Source = contracts.Source(source)
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}
