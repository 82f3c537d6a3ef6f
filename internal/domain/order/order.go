package order

import (
	"context"

	"github.com/shopspring/decimal"
)

// OrderItem is one line of a placed order.
type OrderItem struct {
	ProductID string
	VariantID string
	Quantity  int
}

// Order is a persisted checkout result.
type Order struct {
	ID           string
	Items        []OrderItem
	Subtotal     decimal.Decimal
	Total        decimal.Decimal
	Discounts    decimal.Decimal
	PromoCode    string
	FreeShipping bool
}

// Repository persists orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
}
