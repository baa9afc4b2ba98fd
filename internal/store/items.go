package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skinfolio/skinfolio/internal/contracts"
)

// ItemStore implements contracts.ItemRepository on PostgreSQL.
type ItemStore struct {
	pool *pgxpool.Pool
}

// NewItemStore creates an item repository.
func NewItemStore(pool *pgxpool.Pool) *ItemStore {
	return &ItemStore{pool: pool}
}

// Upsert inserts the item by name, or backfills missing optional fields on
// the existing row. Rarity and thesis set at seed time are never replaced.
func (s *ItemStore) Upsert(ctx context.Context, item contracts.Item) (contracts.Item, error) {
	query := `
		INSERT INTO skins (name, rarity, category, image_url, listing_url, thesis)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO UPDATE SET
			rarity      = CASE WHEN skins.rarity = ''      THEN EXCLUDED.rarity      ELSE skins.rarity END,
			category    = CASE WHEN skins.category = ''    THEN EXCLUDED.category    ELSE skins.category END,
			image_url   = CASE WHEN skins.image_url = ''   THEN EXCLUDED.image_url   ELSE skins.image_url END,
			listing_url = CASE WHEN skins.listing_url = '' THEN EXCLUDED.listing_url ELSE skins.listing_url END,
			thesis      = CASE WHEN skins.thesis = ''      THEN EXCLUDED.thesis      ELSE skins.thesis END
		RETURNING id, name, rarity, category, image_url, listing_url, thesis
	`

	var out contracts.Item
	err := s.pool.QueryRow(ctx, query,
		item.Name, item.Rarity, item.Category, item.ImageURL, item.ListingURL, item.Thesis,
	).Scan(&out.ID, &out.Name, &out.Rarity, &out.Category, &out.ImageURL, &out.ListingURL, &out.Thesis)
	if err != nil {
		return contracts.Item{}, fmt.Errorf("upsert item: %w", err)
	}
	return out, nil
}

// GetByID retrieves one item.
func (s *ItemStore) GetByID(ctx context.Context, id int64) (*contracts.Item, error) {
	return s.get(ctx, `WHERE id = $1`, id)
}

// GetByName retrieves one item by its market hash name.
func (s *ItemStore) GetByName(ctx context.Context, name string) (*contracts.Item, error) {
	return s.get(ctx, `WHERE name = $1`, name)
}

func (s *ItemStore) get(ctx context.Context, where string, arg interface{}) (*contracts.Item, error) {
	query := `
		SELECT id, name, rarity, category, image_url, listing_url, thesis
		FROM skins ` + where

	var item contracts.Item
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&item.ID, &item.Name, &item.Rarity, &item.Category,
		&item.ImageURL, &item.ListingURL, &item.Thesis,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contracts.ErrNotFound
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &item, nil
}

// List returns the universe ordered by name.
func (s *ItemStore) List(ctx context.Context) ([]contracts.Item, error) {
	query := `
		SELECT id, name, rarity, category, image_url, listing_url, thesis
		FROM skins
		ORDER BY name ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []contracts.Item
	for rows.Next() {
		var item contracts.Item
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Rarity, &item.Category,
			&item.ImageURL, &item.ListingURL, &item.Thesis,
		); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateMedia fills image/listing URLs without touching anything else.
func (s *ItemStore) UpdateMedia(ctx context.Context, id int64, imageURL, listingURL string) error {
	query := `
		UPDATE skins SET
			image_url   = CASE WHEN $2 <> '' THEN $2 ELSE image_url END,
			listing_url = CASE WHEN $3 <> '' THEN $3 ELSE listing_url END
		WHERE id = $1
	`

	tag, err := s.pool.Exec(ctx, query, id, imageURL, listingURL)
	if err != nil {
		return fmt.Errorf("update media: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return contracts.ErrNotFound
	}
	return nil
}
