package pinterest

import (
	"fmt"

	"github.com/storefront-labs/channelsync/internal/core/domain"
)

// Pinterest field limits. Overruns are truncated, never rejected.
const (
	maxTitleLen       = 100
	maxDescriptionLen = 500
)

// pinRequest is the POST /pins payload for one catalog item.
type pinRequest struct {
	BoardID     string      `json:"board_id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Link        string      `json:"link,omitempty"`
	AltText     string      `json:"alt_text,omitempty"`
	MediaSource mediaSource `json:"media_source"`
}

type mediaSource struct {
	SourceType string `json:"source_type"`
	URL        string `json:"url"`
}

// formatPin maps a catalog item onto a pin creation payload. The
// price is folded into the description since pins carry no structured
// price field.
func formatPin(boardID string, item domain.CatalogItem) pinRequest {
	description := item.Description
	if item.PriceMinor > 0 {
		price := fmt.Sprintf("%d.%02d %s", item.PriceMinor/100, item.PriceMinor%100, currencyOrDefault(item.Currency))
		if description == "" {
			description = price
		} else {
			description = description + " - " + price
		}
	}

	return pinRequest{
		BoardID:     boardID,
		Title:       truncate(item.Name, maxTitleLen),
		Description: truncate(description, maxDescriptionLen),
		Link:        item.Link,
		AltText:     truncate(item.Name, maxTitleLen),
		MediaSource: mediaSource{
			SourceType: "image_url",
			URL:        item.PrimaryImage(),
		},
	}
}

func currencyOrDefault(currency string) string {
	if currency == "" {
		return "USD"
	}
	return currency
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
