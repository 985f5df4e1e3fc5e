package driven

import (
	"context"

	"github.com/storefront-labs/channelsync/internal/core/domain"
)

// AdapterBuilder creates a PlatformAdapter from a credential.
// The TokenProvider handles refresh; the credential supplies the
// platform identifiers captured at onboarding.
type AdapterBuilder func(cred *domain.PlatformCredential, tokens TokenProvider) (PlatformAdapter, error)

// AdapterFactory creates platform adapters from stored credentials.
// It maintains a registry of platform types and their builders.
type AdapterFactory interface {
	// Create returns an adapter for the merchant and platform.
	// Resolves the credential and token provider internally.
	// Returns domain.ErrUnsupportedPlatform for unknown platforms and
	// domain.ErrAuthRequired when no credential is stored.
	Create(ctx context.Context, merchantID string, platform domain.Platform) (PlatformAdapter, error)

	// Register adds an adapter builder for the given platform.
	Register(platform domain.Platform, builder AdapterBuilder)

	// SupportedPlatforms returns all registered platform identifiers.
	SupportedPlatforms() []domain.Platform
}
