package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/storefront-labs/channelsync/internal/core/domain"
	"github.com/storefront-labs/channelsync/internal/core/ports/driven"
	"github.com/storefront-labs/channelsync/internal/core/ports/driving"
	"github.com/storefront-labs/channelsync/internal/logger"
)

// Ensure Coordinator implements the interface.
var _ driving.SyncCoordinator = (*Coordinator)(nil)

// Coordinator runs catalog sync runs end to end: resolve the adapter,
// ensure the platform prerequisite, snapshot the catalog, push it
// through the batch orchestrator, and record every outcome in the
// publishing ledger as it resolves.
type Coordinator struct {
	catalog      driven.CatalogStore
	ledger       driven.PublishLedger
	factory      driven.AdapterFactory
	orchestrator *BatchOrchestrator

	mu     sync.RWMutex
	active map[string]*driving.SyncStatus
}

// NewCoordinator creates a sync coordinator.
func NewCoordinator(
	catalog driven.CatalogStore,
	ledger driven.PublishLedger,
	factory driven.AdapterFactory,
) *Coordinator {
	return &Coordinator{
		catalog:      catalog,
		ledger:       ledger,
		factory:      factory,
		orchestrator: NewBatchOrchestrator(),
		active:       make(map[string]*driving.SyncStatus),
	}
}

// SyncCatalog pushes the merchant's active catalog to the platform.
//
// Prerequisite failures abort before any item is attempted. Auth
// expiry mid-run halts dispatch, keeps everything already published,
// and marks the report AuthRequired. Item-level failures never fail
// the run; they are counted and recorded in the ledger.
func (c *Coordinator) SyncCatalog(ctx context.Context, merchantID string, platform domain.Platform) (*domain.SyncReport, error) {
	report := &domain.SyncReport{
		RunID:      uuid.NewString(),
		MerchantID: merchantID,
		Platform:   platform,
		StartedAt:  time.Now().UTC(),
	}

	if !c.begin(merchantID, platform) {
		report.Error = domain.ErrSyncInProgress.Error()
		report.FinishedAt = time.Now().UTC()
		return report, domain.ErrSyncInProgress
	}
	defer c.end(merchantID, platform)

	logger.Info("sync %s: starting %s push for merchant %s", report.RunID, platform, merchantID)

	adapter, err := c.factory.Create(ctx, merchantID, platform)
	if err != nil {
		return c.fail(report, err)
	}
	defer adapter.Close()

	pctx, err := adapter.EnsurePrerequisites(ctx)
	if err != nil {
		return c.fail(report, fmt.Errorf("ensure prerequisites: %w", err))
	}
	logger.Debug("sync %s: pushing into %s %q", report.RunID, platform.Info().ContainerNoun, pctx.ContainerName)

	items, err := c.catalog.ListActive(ctx, merchantID)
	if err != nil {
		return c.fail(report, fmt.Errorf("list catalog: %w", err))
	}
	c.setTotal(merchantID, platform, len(items))

	if len(items) == 0 {
		report.Success = true
		report.FinishedAt = time.Now().UTC()
		logger.Info("sync %s: catalog empty, nothing to push", report.RunID)
		return report, nil
	}

	result, runErr := c.orchestrator.Push(ctx, adapter, pctx, items, func(outcome domain.SyncOutcome) {
		if err := c.ledger.Append(ctx, outcome); err != nil {
			logger.Error("sync %s: ledger append for %s failed: %v", report.RunID, outcome.ProductID, err)
		}
		c.progress(merchantID, platform, outcome)
	})

	report.Synced = result.Published
	report.Failed = result.Failed
	report.AuthRequired = result.AuthExpired
	report.FinishedAt = time.Now().UTC()

	switch {
	case result.AuthExpired:
		report.Error = domain.ErrAuthExpired.Error()
		logger.Warn("sync %s: halted on expired credentials after %d items", report.RunID, result.Total())
		return report, domain.ErrAuthExpired
	case runErr != nil:
		report.Error = runErr.Error()
		return report, runErr
	}

	report.Success = result.Failed == 0
	logger.Info("sync %s: %d published, %d failed", report.RunID, report.Synced, report.Failed)
	return report, nil
}

// Status returns the status of an active run, or an idle status.
func (c *Coordinator) Status(_ context.Context, merchantID string, platform domain.Platform) (*driving.SyncStatus, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if status, ok := c.active[statusKey(merchantID, platform)]; ok {
		copied := *status
		return &copied, nil
	}
	return &driving.SyncStatus{
		MerchantID: merchantID,
		Platform:   platform,
		Running:    false,
	}, nil
}

// fail finalises a report for a run-level failure before any item
// resolved.
func (c *Coordinator) fail(report *domain.SyncReport, err error) (*domain.SyncReport, error) {
	report.Error = err.Error()
	report.AuthRequired = errors.Is(err, domain.ErrAuthExpired) || errors.Is(err, domain.ErrAuthRequired)
	report.FinishedAt = time.Now().UTC()
	logger.Error("sync %s: %v", report.RunID, err)
	return report, err
}

func statusKey(merchantID string, platform domain.Platform) string {
	return fmt.Sprintf("%s/%s", merchantID, platform)
}

// begin claims the (merchant, platform) pair. Returns false when a run
// is already in flight.
func (c *Coordinator) begin(merchantID string, platform domain.Platform) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := statusKey(merchantID, platform)
	if _, running := c.active[key]; running {
		return false
	}
	c.active[key] = &driving.SyncStatus{
		MerchantID: merchantID,
		Platform:   platform,
		Running:    true,
	}
	return true
}

func (c *Coordinator) end(merchantID string, platform domain.Platform) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.active, statusKey(merchantID, platform))
}

func (c *Coordinator) setTotal(merchantID string, platform domain.Platform, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if status, ok := c.active[statusKey(merchantID, platform)]; ok {
		status.TotalItems = total
	}
}

func (c *Coordinator) progress(merchantID string, platform domain.Platform, outcome domain.SyncOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if status, ok := c.active[statusKey(merchantID, platform)]; ok {
		status.ItemsResolved++
		if outcome.Status == domain.OutcomeFailed {
			status.ItemsFailed++
		}
	}
}
