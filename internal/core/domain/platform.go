package domain

import (
	"fmt"
	"strings"
)

// Platform identifies a supported commerce platform.
type Platform string

const (
	// PlatformFacebook is the social-shopping network (product catalogs).
	PlatformFacebook Platform = "facebook"
	// PlatformPinterest is the pin-based discovery network (boards and pins).
	PlatformPinterest Platform = "pinterest"
	// PlatformTikTok is the short-video shop network (shop products).
	PlatformTikTok Platform = "tiktok"
)

// PlatformInfo describes a supported platform for display and onboarding.
type PlatformInfo struct {
	// ID is the platform identifier used in config and storage.
	ID Platform
	// Name is the human-readable display name.
	Name string
	// Description provides a brief explanation of the platform.
	Description string
	// ContainerNoun names the platform-side prerequisite container
	// (catalog, board, shop) that must exist before items can be pushed.
	ContainerNoun string
	// SupportsRefresh indicates the platform issues refresh tokens.
	SupportsRefresh bool
}

// SupportedPlatforms returns all platforms this engine can push to.
func SupportedPlatforms() []PlatformInfo {
	return []PlatformInfo{
		{
			ID:              PlatformFacebook,
			Name:            "Facebook Shops",
			Description:     "Pushes products into a Facebook commerce catalog",
			ContainerNoun:   "catalog",
			SupportsRefresh: false,
		},
		{
			ID:              PlatformPinterest,
			Name:            "Pinterest",
			Description:     "Pushes products as pins on a merchant board",
			ContainerNoun:   "board",
			SupportsRefresh: true,
		},
		{
			ID:              PlatformTikTok,
			Name:            "TikTok Shop",
			Description:     "Pushes products into a TikTok Shop",
			ContainerNoun:   "shop",
			SupportsRefresh: true,
		},
	}
}

// ParsePlatform converts a string into a Platform.
// Returns ErrUnsupportedPlatform for unknown values.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	for _, info := range SupportedPlatforms() {
		if info.ID == p {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedPlatform, s)
}

// Info returns the PlatformInfo for this platform.
// Returns a zero PlatformInfo for unknown platforms.
func (p Platform) Info() PlatformInfo {
	for _, info := range SupportedPlatforms() {
		if info.ID == p {
			return info
		}
	}
	return PlatformInfo{}
}

// String implements fmt.Stringer.
func (p Platform) String() string {
	return string(p)
}
