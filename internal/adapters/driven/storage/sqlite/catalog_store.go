package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/storefront-labs/channelsync/internal/core/domain"
	"github.com/storefront-labs/channelsync/internal/core/ports/driven"
)

// SaveCatalogItem stores or updates a catalog item. The sync path
// never writes the catalog; this exists for import tooling and tests.
func (s *Store) SaveCatalogItem(ctx context.Context, merchantID string, item domain.CatalogItem) error {
	return (&catalogStore{store: s}).Save(ctx, merchantID, item)
}

// catalogStore implements driven.CatalogStore.
type catalogStore struct {
	store *Store
}

var _ driven.CatalogStore = (*catalogStore)(nil)

const catalogColumns = `id, name, description, price_minor, currency, stock, image_urls, tags, category, link, status`

// ListActive returns a snapshot of the merchant's active products.
func (s *catalogStore) ListActive(ctx context.Context, merchantID string) ([]domain.CatalogItem, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+catalogColumns+`
		FROM catalog_items
		WHERE merchant_id = ? AND status = ?
		ORDER BY id
	`, merchantID, domain.ItemStatusActive)
	if err != nil {
		return nil, fmt.Errorf("querying catalog items: %w", err)
	}
	defer rows.Close()

	var items []domain.CatalogItem
	for rows.Next() {
		item, err := scanCatalogItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating catalog items: %w", err)
	}
	return items, nil
}

// Get retrieves a single product by ID.
func (s *catalogStore) Get(ctx context.Context, merchantID, productID string) (*domain.CatalogItem, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+catalogColumns+`
		FROM catalog_items
		WHERE merchant_id = ? AND id = ?
	`, merchantID, productID)

	item, err := scanCatalogItem(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

// Save stores or updates a catalog item. Outside the sync path; used
// by seeding and tests.
func (s *catalogStore) Save(ctx context.Context, merchantID string, item domain.CatalogItem) error {
	imageJSON, err := json.Marshal(item.ImageURLs)
	if err != nil {
		return fmt.Errorf("marshalling image urls: %w", err)
	}
	tagsJSON, err := json.Marshal(item.Tags)
	if err != nil {
		return fmt.Errorf("marshalling tags: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO catalog_items (merchant_id, id, name, description, price_minor, currency, stock, image_urls, tags, category, link, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(merchant_id, id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			price_minor = excluded.price_minor,
			currency = excluded.currency,
			stock = excluded.stock,
			image_urls = excluded.image_urls,
			tags = excluded.tags,
			category = excluded.category,
			link = excluded.link,
			status = excluded.status
	`, merchantID, item.ID, item.Name, item.Description, item.PriceMinor, item.Currency,
		item.Stock, string(imageJSON), string(tagsJSON), item.Category, item.Link, item.Status)

	if err != nil {
		return fmt.Errorf("saving catalog item: %w", err)
	}
	return nil
}

// scanCatalogItem reads one catalog row via the given scan function.
func scanCatalogItem(scan func(...any) error) (*domain.CatalogItem, error) {
	var item domain.CatalogItem
	var imageJSON, tagsJSON string
	if err := scan(&item.ID, &item.Name, &item.Description, &item.PriceMinor, &item.Currency,
		&item.Stock, &imageJSON, &tagsJSON, &item.Category, &item.Link, &item.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("scanning catalog item: %w", err)
	}

	if err := json.Unmarshal([]byte(imageJSON), &item.ImageURLs); err != nil {
		return nil, fmt.Errorf("unmarshaling image urls: %w", err)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &item.Tags); err != nil {
		return nil, fmt.Errorf("unmarshaling tags: %w", err)
	}
	return &item, nil
}
