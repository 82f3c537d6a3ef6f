package promotion

import (
	"slices"

	"github.com/shopspring/decimal"
)

// bestPromotionForProduct evaluates every candidate promotion against
// a single product price and returns the one yielding the strictly
// largest discount, or nil when none applies or all compute zero.
// Ties keep the first candidate seen.
func bestPromotionForProduct(productID string, price decimal.Decimal, promos []Promotion) *Promotion {
	var best *Promotion
	bestDiscount := zero

	for i := range promos {
		promo := &promos[i]
		if !promoCoversProduct(promo, productID) {
			continue
		}
		d := discountFor(promo, price)
		if d.GreaterThan(bestDiscount) {
			best = promo
			bestDiscount = d
		}
	}
	return best
}

// bestPromotionForVariant is the variant equivalent: it additionally
// matches the variant scope by variant ID or SKU.
func bestPromotionForVariant(productID, variantID, sku string, price decimal.Decimal, promos []Promotion) *Promotion {
	var best *Promotion
	bestDiscount := zero

	for i := range promos {
		promo := &promos[i]
		if !promoCoversProduct(promo, productID) && !promoCoversVariant(promo, variantID, sku) {
			continue
		}
		d := discountFor(promo, price)
		if d.GreaterThan(bestDiscount) {
			best = promo
			bestDiscount = d
		}
	}
	return best
}

// promoCoversProduct reports whether the promotion's scope reaches the
// given product in a standalone pricing context (no cart).
func promoCoversProduct(promo *Promotion, productID string) bool {
	switch promo.Scope {
	case ScopeSiteWide, ScopeCart:
		return true
	case ScopeProduct:
		return slices.Contains(promo.ProductIDs, productID)
	default:
		return false
	}
}

func promoCoversVariant(promo *Promotion, variantID, sku string) bool {
	if promo.Scope != ScopeVariant {
		return false
	}
	if variantID != "" && slices.Contains(promo.VariantIDs, variantID) {
		return true
	}
	return sku != "" && slices.Contains(promo.VariantSKUs, sku)
}
