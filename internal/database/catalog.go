package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/honeycombo/combo-service/internal/catalog"
)

const catalogSchema = `
	CREATE TABLE IF NOT EXISTS catalog_items (
		name       TEXT NOT NULL,
		brand      TEXT NOT NULL,
		promotion  TEXT NOT NULL,
		category   TEXT NOT NULL,
		price      BIGINT NOT NULL CHECK (price >= 0),
		image_url  TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (name, brand, promotion)
	);

	CREATE INDEX IF NOT EXISTS idx_catalog_items_category ON catalog_items (category);
`

// CatalogRepository stores normalized catalog items.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository creates a repository over pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// EnsureSchema creates the catalog tables if they do not exist.
func (r *CatalogRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, catalogSchema); err != nil {
		return fmt.Errorf("failed to create catalog schema: %w", err)
	}
	return nil
}

// ListItems returns every stored item with derived fields recomputed.
func (r *CatalogRepository) ListItems(ctx context.Context) ([]catalog.Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT name, brand, promotion, category, price, image_url
		FROM catalog_items
		ORDER BY brand, name, promotion
	`)
	if err != nil {
		return nil, fmt.Errorf("error querying catalog items: %w", err)
	}
	defer rows.Close()

	items := make([]catalog.Item, 0)
	for rows.Next() {
		var name, brand, promotion, category string
		var price int64
		var imageURL *string
		if err := rows.Scan(&name, &brand, &promotion, &category, &price, &imageURL); err != nil {
			return nil, fmt.Errorf("error scanning catalog item: %w", err)
		}

		cat, ok := catalog.ParseCategory(category)
		if !ok {
			cat = catalog.Categorize(name)
		}
		it := catalog.NewItem(name, brand, catalog.ParsePromotion(promotion), cat, price)
		if imageURL != nil {
			it.ImageURL = *imageURL
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog items: %w", err)
	}

	return items, nil
}

// UpsertItems inserts or updates items keyed by (name, brand, promotion) in
// a single transaction. When replace is set, items not in the batch are
// removed so the table mirrors the imported snapshot.
func (r *CatalogRepository) UpsertItems(ctx context.Context, items []catalog.Item, replace bool) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	if replace {
		if _, err := tx.Exec(ctx, `DELETE FROM catalog_items`); err != nil {
			return 0, fmt.Errorf("failed to clear catalog items: %w", err)
		}
	}

	if len(items) > 0 {
		batch := &pgx.Batch{}
		for _, it := range items {
			var imageURL *string
			if it.ImageURL != "" {
				imageURL = &it.ImageURL
			}
			batch.Queue(`
				INSERT INTO catalog_items (
					name, brand, promotion, category, price, image_url, created_at, updated_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
				ON CONFLICT (name, brand, promotion) DO UPDATE SET
					category = EXCLUDED.category,
					price = EXCLUDED.price,
					image_url = EXCLUDED.image_url,
					updated_at = EXCLUDED.updated_at
			`, it.Name, it.Brand, string(it.Promotion), string(it.Category), it.Price, imageURL, now)
		}

		br := tx.SendBatch(ctx, batch)
		for i := range items {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return 0, fmt.Errorf("failed to upsert catalog item %d (%s): %w", i, items[i].Name, err)
			}
		}
		if err := br.Close(); err != nil {
			return 0, fmt.Errorf("failed to close batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(items), nil
}

// CountItems returns the number of stored items.
func (r *CatalogRepository) CountItems(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM catalog_items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting catalog items: %w", err)
	}
	return n, nil
}
