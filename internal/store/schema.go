// Package store owns all persisted state: the tracked universe and the
// append-style snapshot log. Everything else in the system is a transient
// view computed from it.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS skins (
		id          BIGSERIAL PRIMARY KEY,
		name        TEXT NOT NULL UNIQUE,
		rarity      TEXT NOT NULL,
		category    TEXT NOT NULL,
		image_url   TEXT NOT NULL DEFAULT '',
		listing_url TEXT NOT NULL DEFAULT '',
		thesis      TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS price_snapshots (
		item_id       BIGINT NOT NULL REFERENCES skins(id),
		snapshot_date DATE NOT NULL,
		price_usd     DOUBLE PRECISION NOT NULL,
		volume_24h    BIGINT NOT NULL DEFAULT 0,
		source        TEXT NOT NULL,
		source_ref    TEXT NOT NULL DEFAULT '',
		verified      BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (item_id, snapshot_date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_price_snapshots_date
		ON price_snapshots (snapshot_date)`,
	`CREATE INDEX IF NOT EXISTS idx_price_snapshots_source
		ON price_snapshots (source)`,
}

// EnsureSchema creates the tables and indexes if they do not exist. Safe to
// run on every startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
