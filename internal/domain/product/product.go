package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. Artworks
// sold in several formats carry one Variant per format; the
// product-level price then acts as the base price.
type Product struct {
	ID              string
	Name            string
	Price           decimal.Decimal
	CategorySlug    string
	SubCategorySlug string
	FormatID        string
	Image           Image
	Variants        []Variant
}

// Variant is one purchasable configuration of a product (format,
// dimensions, edition).
type Variant struct {
	ID       string
	SKU      string
	Price    decimal.Decimal
	FormatID string
}

// Image holds responsive image URLs for a product.
type Image struct {
	Thumbnail string
	Mobile    string
	Tablet    string
	Desktop   string
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
}
