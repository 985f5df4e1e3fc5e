package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/storefront-labs/channelsync/internal/core/domain"
	"github.com/storefront-labs/channelsync/internal/core/ports/driven"
)

var _ driven.AdapterFactory = (*Factory)(nil)

// TokenProviderFunc builds a token provider for a merchant/platform
// pair. Injected at wiring time so the core stays free of OAuth
// concerns.
type TokenProviderFunc func(merchantID string, platform domain.Platform) driven.TokenProvider

// Factory creates platform adapters from stored credentials.
type Factory struct {
	creds     driven.CredentialStore
	providers TokenProviderFunc

	mu       sync.RWMutex
	builders map[domain.Platform]driven.AdapterBuilder
}

// NewFactory creates an adapter factory. Builders are registered
// per platform via Register.
func NewFactory(creds driven.CredentialStore, providers TokenProviderFunc) *Factory {
	return &Factory{
		creds:     creds,
		providers: providers,
		builders:  make(map[domain.Platform]driven.AdapterBuilder),
	}
}

// Register adds an adapter builder for the given platform.
func (f *Factory) Register(platform domain.Platform, builder driven.AdapterBuilder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[platform] = builder
}

// Create returns an adapter for the merchant and platform.
func (f *Factory) Create(ctx context.Context, merchantID string, platform domain.Platform) (driven.PlatformAdapter, error) {
	f.mu.RLock()
	builder, ok := f.builders[platform]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedPlatform, platform)
	}

	cred, err := f.creds.Get(ctx, merchantID, platform)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s not connected for merchant %s", domain.ErrAuthRequired, platform, merchantID)
		}
		return nil, fmt.Errorf("load credential: %w", err)
	}

	return builder(cred, f.providers(merchantID, platform))
}

// SupportedPlatforms returns all registered platform identifiers,
// sorted for stable output.
func (f *Factory) SupportedPlatforms() []domain.Platform {
	f.mu.RLock()
	defer f.mu.RUnlock()

	platforms := make([]domain.Platform, 0, len(f.builders))
	for p := range f.builders {
		platforms = append(platforms, p)
	}
	sort.Slice(platforms, func(i, j int) bool { return platforms[i] < platforms[j] })
	return platforms
}
