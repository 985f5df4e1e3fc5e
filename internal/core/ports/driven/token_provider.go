package driven

import "context"

// TokenProvider provides access tokens for authenticated API calls.
// Implementations handle token refresh transparently: an expired access
// token with a usable refresh token is exchanged before the token is
// handed out, and the refreshed credential is persisted.
//
// GetToken returns domain.ErrAuthExpired when no valid token can be
// produced; the caller surfaces that as a run-level condition rather
// than retrying.
type TokenProvider interface {
	// GetToken returns a valid access token.
	GetToken(ctx context.Context) (string, error)

	// Invalidate marks the current access token as dead, forcing the
	// next GetToken to refresh. Called when the platform rejects a
	// token the provider still believed valid.
	Invalidate()
}
