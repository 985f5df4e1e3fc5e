package driven

import (
	"context"

	"github.com/storefront-labs/channelsync/internal/core/domain"
)

// CredentialStore persists merchant platform credentials.
type CredentialStore interface {
	// Get retrieves the credential for a merchant and platform.
	// Returns domain.ErrNotFound if the merchant never connected the
	// platform.
	Get(ctx context.Context, merchantID string, platform domain.Platform) (*domain.PlatformCredential, error)

	// Save stores or updates a credential. The updated access token
	// after a refresh is persisted through this method so later runs
	// do not repeat the refresh.
	Save(ctx context.Context, cred domain.PlatformCredential) error

	// Delete removes the credential for a merchant and platform.
	Delete(ctx context.Context, merchantID string, platform domain.Platform) error
}
