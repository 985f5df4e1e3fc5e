package domain

// ItemStatus describes the merchant-side lifecycle state of a product.
type ItemStatus string

const (
	// ItemStatusActive products are included in sync runs.
	ItemStatusActive ItemStatus = "active"
	// ItemStatusArchived products are excluded from sync runs.
	ItemStatusArchived ItemStatus = "archived"
)

// CatalogItem is an immutable snapshot of a product at sync time.
// The catalog store owns the record; the engine only reads it. Status
// changes after the snapshot is taken do not affect an in-flight run.
type CatalogItem struct {
	// ID is the merchant's product identifier.
	ID string

	// Name is the product title.
	Name string

	// Description is the product description.
	Description string

	// PriceMinor is the price in minor currency units (e.g. cents).
	// Integer to avoid floating point drift across currencies.
	PriceMinor int64

	// Currency is the ISO 4217 currency code (e.g. "USD").
	Currency string

	// Stock is the available quantity.
	Stock int

	// ImageURLs lists product image locations, primary first.
	ImageURLs []string

	// Tags are free-form merchant labels.
	Tags []string

	// Category references the merchant's category for this product.
	Category string

	// Link is the merchant's product page URL, if any.
	Link string

	// Status is the lifecycle state at snapshot time.
	Status ItemStatus
}

// PrimaryImage returns the first image URL, or empty string.
func (i *CatalogItem) PrimaryImage() string {
	if len(i.ImageURLs) == 0 {
		return ""
	}
	return i.ImageURLs[0]
}

// InStock returns true if the item has available quantity.
func (i *CatalogItem) InStock() bool {
	return i.Stock > 0
}
