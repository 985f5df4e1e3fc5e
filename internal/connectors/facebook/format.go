package facebook

import (
	"fmt"

	"github.com/storefront-labs/channelsync/internal/core/domain"
)

// Graph catalog field limits. Overruns are truncated, never rejected.
const (
	maxTitleLen       = 200
	maxDescriptionLen = 9999
)

// batchItem is one entry in an items_batch request.
type batchItem struct {
	Method string    `json:"method"`
	Data   *itemData `json:"data"`
}

// itemData is the Graph product shape for a catalog item.
type itemData struct {
	RetailerID   string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Price        string `json:"price"`
	Availability string `json:"availability"`
	Inventory    int    `json:"inventory"`
	ImageLink    string `json:"image_link,omitempty"`
	Link         string `json:"link,omitempty"`
	CustomLabel0 string `json:"custom_label_0,omitempty"`
	Condition    string `json:"condition"`
}

// formatItem maps a catalog item onto the Graph product shape.
func formatItem(item domain.CatalogItem) batchItem {
	availability := "out of stock"
	if item.InStock() {
		availability = "in stock"
	}

	data := &itemData{
		RetailerID:   item.ID,
		Title:        truncate(item.Name, maxTitleLen),
		Description:  truncate(item.Description, maxDescriptionLen),
		Price:        formatPrice(item.PriceMinor, item.Currency),
		Availability: availability,
		Inventory:    item.Stock,
		ImageLink:    item.PrimaryImage(),
		Link:         item.Link,
		CustomLabel0: item.Category,
		Condition:    "new",
	}

	return batchItem{Method: "UPDATE", Data: data}
}

// formatPrice renders minor units as the Graph "12.99 USD" form.
func formatPrice(minor int64, currency string) string {
	if currency == "" {
		currency = "USD"
	}
	return fmt.Sprintf("%d.%02d %s", minor/100, minor%100, currency)
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
