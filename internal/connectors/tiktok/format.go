package tiktok

import (
	"fmt"

	"github.com/storefront-labs/channelsync/internal/core/domain"
)

// Shop API field limits. Overruns are truncated, never rejected.
const (
	maxTitleLen       = 255
	maxDescriptionLen = 10000
)

// productRequest is one product in a batch upload.
type productRequest struct {
	OuterProductID string         `json:"outer_product_id"`
	Title          string         `json:"title"`
	Description    string         `json:"description,omitempty"`
	CategoryName   string         `json:"category_name,omitempty"`
	Images         []productImage `json:"images,omitempty"`
	SKUs           []productSKU   `json:"skus"`
}

type productImage struct {
	URL string `json:"url"`
}

type productSKU struct {
	SellerSKU string `json:"seller_sku"`
	Price     string `json:"price"`
	Currency  string `json:"currency"`
	Quantity  int    `json:"quantity"`
}

// formatProduct maps a catalog item onto the Shop product shape. The
// item becomes a single-SKU product keyed by its own ID.
func formatProduct(item domain.CatalogItem) productRequest {
	currency := item.Currency
	if currency == "" {
		currency = "USD"
	}

	images := make([]productImage, 0, len(item.ImageURLs))
	for _, url := range item.ImageURLs {
		images = append(images, productImage{URL: url})
	}

	return productRequest{
		OuterProductID: item.ID,
		Title:          truncate(item.Name, maxTitleLen),
		Description:    truncate(item.Description, maxDescriptionLen),
		CategoryName:   item.Category,
		Images:         images,
		SKUs: []productSKU{{
			SellerSKU: item.ID,
			Price:     fmt.Sprintf("%d.%02d", item.PriceMinor/100, item.PriceMinor%100),
			Currency:  currency,
			Quantity:  item.Stock,
		}},
	}
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
