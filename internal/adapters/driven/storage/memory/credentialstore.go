package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/storefront-labs/channelsync/internal/core/domain"
	"github.com/storefront-labs/channelsync/internal/core/ports/driven"
)

// CredentialStore is an in-memory implementation of driven.CredentialStore.
type CredentialStore struct {
	mu    sync.RWMutex
	creds map[string]domain.PlatformCredential // merchantID/platform -> credential
}

var _ driven.CredentialStore = (*CredentialStore)(nil)

// NewCredentialStore creates an empty in-memory credential store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		creds: make(map[string]domain.PlatformCredential),
	}
}

func credKey(merchantID string, platform domain.Platform) string {
	return fmt.Sprintf("%s/%s", merchantID, platform)
}

// Get retrieves the credential for a merchant and platform.
func (s *CredentialStore) Get(_ context.Context, merchantID string, platform domain.Platform) (*domain.PlatformCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.creds[credKey(merchantID, platform)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &cred, nil
}

// Save stores or updates a credential.
func (s *CredentialStore) Save(_ context.Context, cred domain.PlatformCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = now
	}
	cred.UpdatedAt = now

	s.creds[credKey(cred.MerchantID, cred.Platform)] = cred
	return nil
}

// Delete removes the credential for a merchant and platform.
func (s *CredentialStore) Delete(_ context.Context, merchantID string, platform domain.Platform) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.creds, credKey(merchantID, platform))
	return nil
}
