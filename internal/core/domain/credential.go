package domain

import "time"

// PlatformCredential stores a merchant's tokens and identifiers for one
// platform. The access token is replaced on refresh; the platform
// identifiers are set once during onboarding. The credential store owns
// the record; the engine holds it for the duration of one sync run.
type PlatformCredential struct {
	// ID is the unique identifier (UUID).
	ID string `json:"id"`

	// MerchantID identifies the merchant this credential belongs to.
	MerchantID string `json:"merchant_id"`

	// Platform identifies which platform these tokens are for.
	Platform Platform `json:"platform"`

	// AccessToken is the bearer token for API access.
	AccessToken string `json:"access_token"`

	// RefreshToken is used to obtain new access tokens.
	// Empty for platforms that issue long-lived tokens.
	RefreshToken string `json:"refresh_token,omitempty"`

	// Expiry is when the access token expires. Zero means unknown.
	Expiry time.Time `json:"expiry,omitempty"`

	// ShopID is the platform-side shop identifier (TikTok).
	ShopID string `json:"shop_id,omitempty"`

	// CatalogID is the platform-side catalog identifier (Facebook).
	CatalogID string `json:"catalog_id,omitempty"`

	// PageID is the platform-side business page identifier (Facebook).
	PageID string `json:"page_id,omitempty"`

	// BoardID is the platform-side board identifier (Pinterest).
	BoardID string `json:"board_id,omitempty"`

	// CreatedAt is when the credential was created.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the credential was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// IsExpired returns true if the access token is past its expiry.
// A zero expiry is treated as not expired; the platform response is
// authoritative in that case.
func (c *PlatformCredential) IsExpired() bool {
	if c.Expiry.IsZero() {
		return false
	}
	return time.Now().After(c.Expiry)
}

// HasRefreshToken returns true if a refresh token is available.
func (c *PlatformCredential) HasRefreshToken() bool {
	return c.RefreshToken != ""
}

// IsAuthenticated returns true if the credential carries a usable token.
func (c *PlatformCredential) IsAuthenticated() bool {
	return c.AccessToken != ""
}
