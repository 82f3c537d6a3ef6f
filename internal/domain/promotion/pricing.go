package promotion

import (
	"context"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// ProductPriceInput identifies a product to quote. Products with
// variants are quoted per-variant; the product-level price is then
// ignored.
type ProductPriceInput struct {
	ProductID     string
	OriginalPrice decimal.Decimal
	Quantity      int
	Variants      []VariantPriceInput
}

// VariantPriceInput identifies one variant of a product to quote.
type VariantPriceInput struct {
	VariantID     string
	SKU           string
	OriginalPrice decimal.Decimal
	Quantity      int
}

// ProductPriceOutput is the quoted price for one input product. Every
// input product appears in the output exactly once, in input order,
// with HasPromotion=false and ReducedPrice=OriginalPrice when nothing
// applies.
type ProductPriceOutput struct {
	ProductID     string
	OriginalPrice decimal.Decimal
	ReducedPrice  decimal.Decimal
	HasPromotion  bool
	Variants      []VariantPriceOutput
}

// VariantPriceOutput is the quoted price for one variant.
type VariantPriceOutput struct {
	VariantID          string
	SKU                string
	OriginalPrice      decimal.Decimal
	ReducedPrice       decimal.Decimal
	Saved              decimal.Decimal
	DiscountPercentage decimal.Decimal
	HasPromotion       bool
	AppliedPromoCodes  []string
}

// PricingResult is the outcome of a batch price calculation.
type PricingResult struct {
	Products          []ProductPriceOutput
	TotalSaved        decimal.Decimal
	AppliedPromoCodes []string
}

// CalculatePrices quotes every product (or its variants) against the
// supplied promotions, picking the best promotion per product/variant.
// Promotions outside their validity window are ignored. Supplying a
// promo code narrows the candidate set to that single code: automatic
// promotions are deliberately suppressed, and an unknown code yields
// no discounts at all.
func (e *Engine) CalculatePrices(ctx context.Context, promos []Promotion, products []ProductPriceInput, promoCode string) PricingResult {
	now := e.now()
	candidates := make([]Promotion, 0, len(promos))
	for _, promo := range promos {
		if ok, _ := checkValidity(&promo, now); !ok {
			continue
		}
		if promoCode != "" && !strings.EqualFold(promo.Code, promoCode) {
			continue
		}
		candidates = append(candidates, promo)
	}

	result := PricingResult{
		Products:          make([]ProductPriceOutput, 0, len(products)),
		TotalSaved:        zero,
		AppliedPromoCodes: []string{},
	}

	for _, p := range products {
		out := ProductPriceOutput{
			ProductID:     p.ProductID,
			OriginalPrice: p.OriginalPrice,
			ReducedPrice:  p.OriginalPrice,
		}

		if len(p.Variants) == 0 {
			if best := bestPromotionForProduct(p.ProductID, p.OriginalPrice, candidates); best != nil {
				saved := discountFor(best, p.OriginalPrice).Round(2)
				out.ReducedPrice = clampTotal(p.OriginalPrice, saved)
				out.HasPromotion = true
				result.TotalSaved = result.TotalSaved.Add(saved)
				recordCode(&result, best)
			}
			result.Products = append(result.Products, out)
			continue
		}

		out.Variants = make([]VariantPriceOutput, 0, len(p.Variants))
		for _, v := range p.Variants {
			vOut := VariantPriceOutput{
				VariantID:          v.VariantID,
				SKU:                v.SKU,
				OriginalPrice:      v.OriginalPrice,
				ReducedPrice:       v.OriginalPrice,
				Saved:              zero,
				DiscountPercentage: zero,
				AppliedPromoCodes:  []string{},
			}
			if best := bestPromotionForVariant(p.ProductID, v.VariantID, v.SKU, v.OriginalPrice, candidates); best != nil {
				saved := discountFor(best, v.OriginalPrice).Round(2)
				vOut.ReducedPrice = clampTotal(v.OriginalPrice, saved)
				vOut.Saved = saved
				vOut.HasPromotion = true
				if v.OriginalPrice.IsPositive() {
					vOut.DiscountPercentage = saved.Mul(hundred).Div(v.OriginalPrice).Round(2)
				}
				if best.Code != "" {
					vOut.AppliedPromoCodes = append(vOut.AppliedPromoCodes, best.Code)
				}
				out.HasPromotion = true
				result.TotalSaved = result.TotalSaved.Add(saved)
				recordCode(&result, best)
			}
			out.Variants = append(out.Variants, vOut)
		}
		result.Products = append(result.Products, out)
	}

	result.TotalSaved = result.TotalSaved.Round(2)
	return result
}

// recordCode appends the promotion's code to the result's applied set,
// once, in order of first contribution.
func recordCode(result *PricingResult, promo *Promotion) {
	if promo.Code == "" {
		return
	}
	if !slices.Contains(result.AppliedPromoCodes, promo.Code) {
		result.AppliedPromoCodes = append(result.AppliedPromoCodes, promo.Code)
	}
}
