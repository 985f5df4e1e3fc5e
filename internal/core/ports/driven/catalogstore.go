package driven

import (
	"context"

	"github.com/storefront-labs/channelsync/internal/core/domain"
)

// CatalogStore reads the merchant product catalog.
// The engine never writes catalog records; the catalog is owned by the
// merchant-facing application.
type CatalogStore interface {
	// ListActive returns a snapshot of the merchant's active products.
	// The slice is the sync run's working set: catalog writes that land
	// after this call do not affect the run.
	ListActive(ctx context.Context, merchantID string) ([]domain.CatalogItem, error)

	// Get retrieves a single product by ID.
	Get(ctx context.Context, merchantID, productID string) (*domain.CatalogItem, error)
}
