package services

import (
	"context"
	"errors"
	"sync"

	"github.com/storefront-labs/channelsync/internal/core/domain"
	"github.com/storefront-labs/channelsync/internal/core/ports/driven"
	"github.com/storefront-labs/channelsync/internal/logger"
)

// BatchOrchestrator pushes a catalog snapshot through a platform
// adapter: it splits items into adapter-sized chunks and runs the
// pushes on a worker pool bounded by the adapter's parallelism limit.
//
// Auth expiry latches the run: no further chunks are dispatched, the
// chunks already in flight drain, and the batch reports how far it
// got. Items in never-dispatched chunks resolve no outcome at all, so
// a later run retries them from scratch.
type BatchOrchestrator struct{}

// NewBatchOrchestrator creates a batch orchestrator.
func NewBatchOrchestrator() *BatchOrchestrator {
	return &BatchOrchestrator{}
}

// Push pushes items through the adapter. onOutcome is called once per
// resolved item, from worker goroutines, as outcomes arrive; callers
// use it to stream rows into the ledger rather than waiting for the
// batch to finish.
//
// The returned error is the run-level halt condition
// (domain.ErrAuthExpired or the context's error), nil otherwise.
// Item-level failures are counted in the result, not returned.
func (o *BatchOrchestrator) Push(
	ctx context.Context,
	adapter driven.PlatformAdapter,
	pctx *domain.PlatformContext,
	items []domain.CatalogItem,
	onOutcome func(domain.SyncOutcome),
) (*domain.BatchResult, error) {
	limits := adapter.Limits()
	chunkSize := limits.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 1
	}
	parallelism := limits.Parallelism
	if parallelism <= 0 {
		parallelism = 1
	}

	chunks := chunkItems(items, chunkSize)
	logger.Debug("orchestrator: %d items in %d chunks for %s", len(items), len(chunks), adapter.Platform())

	var (
		mu      sync.Mutex
		result  domain.BatchResult
		haltErr error
	)
	halted := make(chan struct{})
	var haltOnce sync.Once

	halt := func(err error) {
		haltOnce.Do(func() {
			mu.Lock()
			haltErr = err
			mu.Unlock()
			close(halted)
		})
	}

	record := func(outcome domain.SyncOutcome) {
		mu.Lock()
		switch outcome.Status {
		case domain.OutcomePublished:
			result.Published++
		case domain.OutcomeFailed:
			result.Failed++
		}
		mu.Unlock()
		if onOutcome != nil {
			onOutcome(outcome)
		}
	}

	sem := make(chan struct{}, parallelism)
	var wg sync.WaitGroup

dispatch:
	for _, chunk := range chunks {
		select {
		case <-halted:
			break dispatch
		case <-ctx.Done():
			halt(ctx.Err())
			break dispatch
		case sem <- struct{}{}:
		}

		// Re-check after acquiring the slot: a worker may have halted
		// the run while we were blocked on the semaphore.
		select {
		case <-halted:
			<-sem
			break dispatch
		default:
		}

		wg.Add(1)
		go func(chunk []domain.CatalogItem) {
			defer wg.Done()
			defer func() { <-sem }()

			outcomes, err := adapter.PushChunk(ctx, pctx, chunk)

			// Partial outcomes from an aborted chunk still count: the
			// platform accepted those items.
			resolved := make(map[string]bool, len(outcomes))
			for _, outcome := range outcomes {
				resolved[outcome.ProductID] = true
				record(outcome)
			}

			if err == nil {
				return
			}
			if errors.Is(err, domain.ErrAuthExpired) || ctx.Err() != nil {
				halt(err)
				return
			}

			// A chunk-level transport failure that survived retries:
			// every unresolved item in the chunk failed, retryably.
			logger.Warn("orchestrator: chunk push failed on %s: %v", adapter.Platform(), err)
			for _, item := range chunk {
				if !resolved[item.ID] {
					record(domain.Failed(item.ID, adapter.Platform(), err.Error(), true))
				}
			}
		}(chunk)
	}

	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	result.AuthExpired = errors.Is(haltErr, domain.ErrAuthExpired)
	return &result, haltErr
}

// chunkItems splits items into slices of at most size elements.
func chunkItems(items []domain.CatalogItem, size int) [][]domain.CatalogItem {
	var chunks [][]domain.CatalogItem
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
