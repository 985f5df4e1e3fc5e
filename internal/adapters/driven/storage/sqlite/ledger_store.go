package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/storefront-labs/channelsync/internal/core/domain"
	"github.com/storefront-labs/channelsync/internal/core/ports/driven"
)

// ledgerStore implements driven.PublishLedger.
type ledgerStore struct {
	store *Store
}

var _ driven.PublishLedger = (*ledgerStore)(nil)

// Append records one resolved outcome. A single INSERT, so concurrent
// sync runs cannot interleave partial rows.
func (s *ledgerStore) Append(ctx context.Context, outcome domain.SyncOutcome) error {
	if outcome.Timestamp.IsZero() {
		outcome.Timestamp = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO publish_ledger (product_id, platform, status, external_id, reason, retryable, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, outcome.ProductID, outcome.Platform, outcome.Status, outcome.ExternalID,
		outcome.Reason, outcome.Retryable, outcome.Timestamp)

	if err != nil {
		return fmt.Errorf("appending ledger outcome: %w", err)
	}
	return nil
}

// Latest returns the most recent outcome for a product on a platform.
func (s *ledgerStore) Latest(ctx context.Context, productID string, platform domain.Platform) (*domain.SyncOutcome, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT product_id, platform, status, external_id, reason, retryable, timestamp
		FROM publish_ledger
		WHERE product_id = ? AND platform = ?
		ORDER BY seq DESC
		LIMIT 1
	`, productID, platform)

	outcome, err := scanOutcome(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return outcome, nil
}

// History returns outcomes for a product on a platform, most recent
// first, capped at limit.
func (s *ledgerStore) History(ctx context.Context, productID string, platform domain.Platform, limit int) ([]domain.SyncOutcome, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT product_id, platform, status, external_id, reason, retryable, timestamp
		FROM publish_ledger
		WHERE product_id = ? AND platform = ?
		ORDER BY seq DESC
		LIMIT ?
	`, productID, platform, limit)
	if err != nil {
		return nil, fmt.Errorf("querying ledger history: %w", err)
	}
	defer rows.Close()

	var outcomes []domain.SyncOutcome
	for rows.Next() {
		outcome, err := scanOutcome(rows.Scan)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, *outcome)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ledger history: %w", err)
	}
	return outcomes, nil
}

func scanOutcome(scan func(...any) error) (*domain.SyncOutcome, error) {
	var outcome domain.SyncOutcome
	var timestamp sql.NullTime
	if err := scan(&outcome.ProductID, &outcome.Platform, &outcome.Status,
		&outcome.ExternalID, &outcome.Reason, &outcome.Retryable, &timestamp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("scanning ledger outcome: %w", err)
	}
	if timestamp.Valid {
		outcome.Timestamp = timestamp.Time
	}
	return &outcome, nil
}
