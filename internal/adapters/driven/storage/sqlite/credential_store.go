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

// credentialStore implements driven.CredentialStore.
type credentialStore struct {
	store *Store
}

var _ driven.CredentialStore = (*credentialStore)(nil)

// Get retrieves the credential for a merchant and platform.
func (s *credentialStore) Get(ctx context.Context, merchantID string, platform domain.Platform) (*domain.PlatformCredential, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, merchant_id, platform, access_token, refresh_token, expiry,
		       shop_id, catalog_id, page_id, board_id, created_at, updated_at
		FROM platform_credentials
		WHERE merchant_id = ? AND platform = ?
	`, merchantID, platform)

	var cred domain.PlatformCredential
	var expiry, createdAt, updatedAt sql.NullTime
	if err := row.Scan(&cred.ID, &cred.MerchantID, &cred.Platform, &cred.AccessToken,
		&cred.RefreshToken, &expiry, &cred.ShopID, &cred.CatalogID, &cred.PageID,
		&cred.BoardID, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning credential: %w", err)
	}

	if expiry.Valid {
		cred.Expiry = expiry.Time
	}
	if createdAt.Valid {
		cred.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		cred.UpdatedAt = updatedAt.Time
	}
	return &cred, nil
}

// Save stores or updates a credential, keyed by merchant and platform.
func (s *credentialStore) Save(ctx context.Context, cred domain.PlatformCredential) error {
	now := time.Now().UTC()
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = now
	}
	cred.UpdatedAt = now

	var expiry any
	if !cred.Expiry.IsZero() {
		expiry = cred.Expiry
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO platform_credentials (id, merchant_id, platform, access_token, refresh_token, expiry,
			shop_id, catalog_id, page_id, board_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(merchant_id, platform) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expiry = excluded.expiry,
			shop_id = excluded.shop_id,
			catalog_id = excluded.catalog_id,
			page_id = excluded.page_id,
			board_id = excluded.board_id,
			updated_at = excluded.updated_at
	`, cred.ID, cred.MerchantID, cred.Platform, cred.AccessToken, cred.RefreshToken, expiry,
		cred.ShopID, cred.CatalogID, cred.PageID, cred.BoardID, cred.CreatedAt, cred.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving credential: %w", err)
	}
	return nil
}

// Delete removes the credential for a merchant and platform.
func (s *credentialStore) Delete(ctx context.Context, merchantID string, platform domain.Platform) error {
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM platform_credentials WHERE merchant_id = ? AND platform = ?
	`, merchantID, platform)
	if err != nil {
		return fmt.Errorf("deleting credential: %w", err)
	}
	return nil
}
