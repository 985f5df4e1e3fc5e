package driving

import (
	"context"

	"github.com/storefront-labs/channelsync/internal/core/domain"
)

// SyncStatus describes a sync run in flight.
type SyncStatus struct {
	// MerchantID identifies the merchant being synced.
	MerchantID string
	// Platform is the target platform.
	Platform domain.Platform
	// Running is true while the run is active.
	Running bool
	// ItemsResolved counts items whose outcome has been recorded.
	ItemsResolved int
	// ItemsFailed counts failed items so far.
	ItemsFailed int
	// TotalItems is the snapshot size for the run.
	TotalItems int
}

// SyncCoordinator is the engine's sole entry point: it pushes one
// merchant's active catalog to one platform and reports the result.
type SyncCoordinator interface {
	// SyncCatalog runs a full catalog push. The returned report always
	// carries counts, even on partial failure; run-level failures are
	// reported in the report's Error field and as the returned error.
	SyncCatalog(ctx context.Context, merchantID string, platform domain.Platform) (*domain.SyncReport, error)

	// Status returns the status of an active run, or an idle status if
	// no run is in flight for the pair.
	Status(ctx context.Context, merchantID string, platform domain.Platform) (*SyncStatus, error)
}
