package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/storefront-labs/channelsync/internal/core/domain"
	"github.com/storefront-labs/channelsync/internal/core/ports/driven"
)

// Ledger is an in-memory implementation of driven.PublishLedger.
// Rows are append-only, matching the durable backend's contract.
type Ledger struct {
	mu   sync.RWMutex
	rows map[string][]domain.SyncOutcome // productID/platform -> outcomes, oldest first
}

var _ driven.PublishLedger = (*Ledger)(nil)

// NewLedger creates an empty in-memory ledger.
func NewLedger() *Ledger {
	return &Ledger{
		rows: make(map[string][]domain.SyncOutcome),
	}
}

func ledgerKey(productID string, platform domain.Platform) string {
	return fmt.Sprintf("%s/%s", productID, platform)
}

// Append records one resolved outcome.
func (l *Ledger) Append(_ context.Context, outcome domain.SyncOutcome) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if outcome.Timestamp.IsZero() {
		outcome.Timestamp = time.Now().UTC()
	}

	key := ledgerKey(outcome.ProductID, outcome.Platform)
	l.rows[key] = append(l.rows[key], outcome)
	return nil
}

// Latest returns the most recent outcome for a product on a platform.
func (l *Ledger) Latest(_ context.Context, productID string, platform domain.Platform) (*domain.SyncOutcome, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rows := l.rows[ledgerKey(productID, platform)]
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	latest := rows[len(rows)-1]
	return &latest, nil
}

// History returns outcomes most recent first, capped at limit.
func (l *Ledger) History(_ context.Context, productID string, platform domain.Platform, limit int) ([]domain.SyncOutcome, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rows := l.rows[ledgerKey(productID, platform)]
	if limit <= 0 || limit > len(rows) {
		limit = len(rows)
	}

	history := make([]domain.SyncOutcome, 0, limit)
	for i := len(rows) - 1; i >= len(rows)-limit; i-- {
		history = append(history, rows[i])
	}
	return history, nil
}

// Count returns the total number of appended rows.
func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := 0
	for _, rows := range l.rows {
		total += len(rows)
	}
	return total
}
