package domain

import "time"

// OutcomeStatus classifies the result of pushing one item once.
type OutcomeStatus string

const (
	// OutcomePublished means the platform accepted the item.
	OutcomePublished OutcomeStatus = "published"
	// OutcomeFailed means the platform rejected the item or the push
	// gave up after retries.
	OutcomeFailed OutcomeStatus = "failed"
	// OutcomeSkipped means the item was never attempted.
	OutcomeSkipped OutcomeStatus = "skipped"
)

// SyncOutcome records the result of one sync attempt for one item.
// Outcomes are immutable once created and appended to the publishing
// ledger; the current state of an item is its most recent row.
type SyncOutcome struct {
	// ProductID is the merchant's product identifier.
	ProductID string

	// Platform is the platform the item was pushed to.
	Platform Platform

	// Status classifies the attempt.
	Status OutcomeStatus

	// ExternalID is the platform-assigned identifier for published items.
	ExternalID string

	// Reason explains failures and skips.
	Reason string

	// Retryable indicates a failed item may succeed on a later run.
	Retryable bool

	// Timestamp is when the outcome resolved.
	Timestamp time.Time
}

// Published builds a successful outcome.
func Published(productID string, platform Platform, externalID string) SyncOutcome {
	return SyncOutcome{
		ProductID:  productID,
		Platform:   platform,
		Status:     OutcomePublished,
		ExternalID: externalID,
		Timestamp:  time.Now().UTC(),
	}
}

// Failed builds a failed outcome.
func Failed(productID string, platform Platform, reason string, retryable bool) SyncOutcome {
	return SyncOutcome{
		ProductID: productID,
		Platform:  platform,
		Status:    OutcomeFailed,
		Reason:    reason,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// Skipped builds a skipped outcome.
func Skipped(productID string, platform Platform, reason string) SyncOutcome {
	return SyncOutcome{
		ProductID: productID,
		Platform:  platform,
		Status:    OutcomeSkipped,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	}
}

// PlatformContext identifies the platform-side container (catalog,
// board, shop) items are pushed into. Produced by an adapter's
// prerequisite check; stable across runs for the same merchant.
type PlatformContext struct {
	// Platform is the platform this context belongs to.
	Platform Platform
	// ContainerID is the platform-assigned container identifier.
	ContainerID string
	// ContainerName is the display name of the container.
	ContainerName string
}

// BatchResult aggregates chunk outcomes for one orchestrated batch.
type BatchResult struct {
	// Published counts items the platform accepted.
	Published int
	// Failed counts items rejected or given up on.
	Failed int
	// AuthExpired is set when the batch stopped early because the
	// platform signalled expired credentials.
	AuthExpired bool
}

// Total returns the number of items that resolved.
func (r *BatchResult) Total() int {
	return r.Published + r.Failed
}

// SyncReport is the user-visible result of one sync run.
type SyncReport struct {
	// RunID uniquely identifies the sync run.
	RunID string

	// MerchantID identifies the merchant whose catalog was pushed.
	MerchantID string

	// Platform is the target platform.
	Platform Platform

	// Success is true when every attempted item published.
	Success bool

	// Synced counts published items.
	Synced int

	// Failed counts failed items.
	Failed int

	// AuthRequired is set when the run halted on expired credentials.
	// Items already published remain published; the merchant must
	// reconnect the platform before the next run.
	AuthRequired bool

	// Error carries the run-level failure, if any.
	Error string

	// StartedAt is when the run began.
	StartedAt time.Time
	// FinishedAt is when the run completed or halted.
	FinishedAt time.Time
}
