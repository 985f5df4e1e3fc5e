// Package auth provides token providers that hand platform connectors
// a valid access token, refreshing through OAuth2 when the platform
// supports it and persisting refreshed credentials so later runs do
// not repeat the exchange.
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/storefront-labs/channelsync/internal/core/domain"
	"github.com/storefront-labs/channelsync/internal/core/ports/driven"
	"github.com/storefront-labs/channelsync/internal/logger"
)

// refreshBuffer is how long before expiry a token is refreshed
// proactively, so a token does not die mid-chunk.
const refreshBuffer = 5 * time.Minute

var _ driven.TokenProvider = (*RefreshingProvider)(nil)

// RefreshingProvider provides access tokens with automatic OAuth2
// refresh. Refreshed tokens are written back to the credential store.
// Safe for concurrent use by parallel chunk workers.
type RefreshingProvider struct {
	merchantID string
	platform   domain.Platform
	creds      driven.CredentialStore
	oauth      *oauth2.Config

	mu           sync.RWMutex
	cachedToken  string
	cacheExpiry  time.Time
	forceRefresh bool
}

// NewRefreshingProvider creates a provider for one merchant and
// platform. A nil oauth config disables refresh; the stored access
// token is served as-is.
func NewRefreshingProvider(merchantID string, platform domain.Platform, creds driven.CredentialStore, oauth *oauth2.Config) *RefreshingProvider {
	return &RefreshingProvider{
		merchantID: merchantID,
		platform:   platform,
		creds:      creds,
		oauth:      oauth,
	}
}

// GetToken returns a valid access token, refreshing if necessary.
func (p *RefreshingProvider) GetToken(ctx context.Context) (string, error) {
	// Fast path: cached and not near expiry.
	p.mu.RLock()
	if p.cachedToken != "" && (p.cacheExpiry.IsZero() || time.Now().Before(p.cacheExpiry)) {
		token := p.cachedToken
		p.mu.RUnlock()
		return token, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check after acquiring the write lock.
	if p.cachedToken != "" && (p.cacheExpiry.IsZero() || time.Now().Before(p.cacheExpiry)) {
		return p.cachedToken, nil
	}

	cred, err := p.creds.Get(ctx, p.merchantID, p.platform)
	if err != nil {
		return "", fmt.Errorf("get credential: %w", err)
	}
	if !cred.IsAuthenticated() {
		return "", domain.ErrAuthRequired
	}

	needsRefresh := cred.IsExpired() || p.forceRefresh
	if !cred.Expiry.IsZero() && time.Until(cred.Expiry) < refreshBuffer {
		needsRefresh = true
	}
	p.forceRefresh = false

	if needsRefresh {
		if p.oauth == nil || !cred.HasRefreshToken() {
			// Nothing to refresh with. Serve the stored token and let
			// the platform response decide; an expiry heuristic must
			// not block a token that may still work.
			p.cache(cred)
			return cred.AccessToken, nil
		}
		if err := p.refresh(ctx, cred); err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrTokenRefreshFailed, err)
		}
	}

	p.cache(cred)
	return cred.AccessToken, nil
}

// Invalidate drops the cached token and forces a refresh on the next
// GetToken. Called by connectors when the platform rejects the token
// regardless of its recorded expiry.
func (p *RefreshingProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cachedToken = ""
	p.cacheExpiry = time.Time{}
	p.forceRefresh = true
}

// refresh exchanges the refresh token, updates cred in place and
// persists it. Caller holds the write lock.
func (p *RefreshingProvider) refresh(ctx context.Context, cred *domain.PlatformCredential) error {
	source := p.oauth.TokenSource(ctx, &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		Expiry:       time.Now().Add(-time.Minute), // force the exchange
	})

	token, err := source.Token()
	if err != nil {
		return err
	}

	cred.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		cred.RefreshToken = token.RefreshToken
	}
	cred.Expiry = token.Expiry

	if err := p.creds.Save(ctx, *cred); err != nil {
		return fmt.Errorf("save refreshed credential: %w", err)
	}

	logger.Debug("auth: refreshed %s token for merchant %s", p.platform, p.merchantID)
	return nil
}

// cache stores the token under the read-fast path. Caller holds the
// write lock.
func (p *RefreshingProvider) cache(cred *domain.PlatformCredential) {
	p.cachedToken = cred.AccessToken
	if !cred.Expiry.IsZero() {
		p.cacheExpiry = cred.Expiry.Add(-refreshBuffer)
	} else {
		p.cacheExpiry = time.Now().Add(time.Hour)
	}
}

// StaticProvider serves a fixed token. Used for platforms with
// long-lived tokens and in tests.
type StaticProvider struct {
	token string
}

var _ driven.TokenProvider = (*StaticProvider)(nil)

// NewStaticProvider creates a provider that always returns token.
func NewStaticProvider(token string) *StaticProvider {
	return &StaticProvider{token: token}
}

// GetToken returns the fixed token.
func (p *StaticProvider) GetToken(_ context.Context) (string, error) {
	if p.token == "" {
		return "", domain.ErrAuthRequired
	}
	return p.token, nil
}

// Invalidate is a no-op; there is nothing to refresh.
func (p *StaticProvider) Invalidate() {}
