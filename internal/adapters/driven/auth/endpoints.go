package auth

import (
	"golang.org/x/oauth2"

	"github.com/storefront-labs/channelsync/internal/core/domain"
)

// tokenURLs are the OAuth2 token endpoints per platform.
var tokenURLs = map[domain.Platform]string{
	domain.PlatformFacebook:  "https://graph.facebook.com/v19.0/oauth/access_token",
	domain.PlatformPinterest: "https://api.pinterest.com/v5/oauth/token",
	domain.PlatformTikTok:    "https://auth.tiktok-shops.com/api/v2/token/refresh",
}

// OAuthConfig builds the oauth2 client configuration for a platform.
// Returns nil when the platform has no refresh flow or no client
// credentials are configured, which disables refresh.
func OAuthConfig(platform domain.Platform, clientID, clientSecret string) *oauth2.Config {
	info := platform.Info()
	if !info.SupportsRefresh {
		return nil
	}
	if clientID == "" {
		return nil
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  tokenURLs[platform],
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}
