package driven

import (
	"context"

	"github.com/storefront-labs/channelsync/internal/core/domain"
)

// AdapterLimits declares a platform's request-shaping constraints.
// The batch orchestrator sizes chunks and its worker pool from these.
type AdapterLimits struct {
	// ChunkSize is the maximum number of items per push request.
	ChunkSize int

	// Parallelism is the maximum number of concurrent push requests
	// the platform tolerates per merchant.
	Parallelism int
}

// PlatformAdapter pushes catalog items to one external platform.
// Each platform (facebook, pinterest, tiktok) implements this interface.
//
// Adapters own translation only: how a product maps onto the platform's
// wire shape and how the platform's responses map back onto outcomes.
// Retry, backoff and rate limiting are shared and live in the request
// executor; adapters must not re-implement them.
type PlatformAdapter interface {
	// Platform returns the platform identifier.
	Platform() domain.Platform

	// Limits returns the platform's chunking and concurrency limits.
	Limits() AdapterLimits

	// EnsurePrerequisites idempotently finds or creates the
	// platform-side container (catalog, board, shop) items are pushed
	// into. Safe to call every run: an existing container is found by
	// name or stored identifier, never duplicated.
	EnsurePrerequisites(ctx context.Context) (*domain.PlatformContext, error)

	// PushChunk pushes up to Limits().ChunkSize items and returns one
	// outcome per item, in no particular order.
	//
	// Item-level rejections (platform validation, duplicate SKU) are
	// reported inside the outcomes, not as an error. The error return
	// is reserved for chunk-level conditions: domain.ErrAuthExpired
	// when credentials died, or a transport failure that survived the
	// executor's retries and applies to the whole chunk.
	PushChunk(ctx context.Context, pctx *domain.PlatformContext, items []domain.CatalogItem) ([]domain.SyncOutcome, error)

	// Close releases resources.
	Close() error
}
