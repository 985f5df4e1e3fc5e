package driven

import (
	"context"

	"github.com/storefront-labs/channelsync/internal/core/domain"
)

// PublishLedger is the append-only record of per-item sync outcomes.
// Rows are never updated or deleted: a later outcome for the same
// (product, platform) pair supersedes the earlier one by recency.
// Append must be a single atomic write so that concurrent sync runs
// targeting overlapping item sets cannot interleave partial rows.
type PublishLedger interface {
	// Append records one resolved outcome. Called once per attempted
	// item, as the outcome resolves, not batched at the end of a run.
	Append(ctx context.Context, outcome domain.SyncOutcome) error

	// Latest returns the most recent outcome for a product on a
	// platform. Returns domain.ErrNotFound if the item was never
	// attempted.
	Latest(ctx context.Context, productID string, platform domain.Platform) (*domain.SyncOutcome, error)

	// History returns outcomes for a product on a platform, most
	// recent first, capped at limit.
	History(ctx context.Context, productID string, platform domain.Platform, limit int) ([]domain.SyncOutcome, error)
}
