package promotion

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// validity reasons, surfaced verbatim as the user-facing Message on an
// invalid ApplicationResult.
const (
	msgInvalidCode = "Code promo invalide"
	msgNotStarted  = "Cette promotion n'est pas encore active"
	msgExpired     = "Cette promotion a expiré"
	msgUsageLimit  = "Cette promotion n'est plus disponible"
	msgSegmentOnly = "Cette promotion est réservée à certains clients"
)

// checkValidity verifies the promotion's lifecycle window: active flag,
// date window, and total usage cap. It returns ok=false with a reason
// on the first failing check, in the fixed order usage cap, start date,
// end date.
func checkValidity(promo *Promotion, now time.Time) (ok bool, reason string) {
	if !promo.IsActive {
		return false, msgInvalidCode
	}
	if promo.Conditions.MaxUsageTotal > 0 && promo.CurrentUsage >= promo.Conditions.MaxUsageTotal {
		return false, msgUsageLimit
	}
	if now.Before(promo.StartDate) {
		return false, msgNotStarted
	}
	if promo.EndDate != nil && now.After(*promo.EndDate) {
		return false, msgExpired
	}
	return true, ""
}

// checkConditions verifies the promotion's global cart-level
// conditions against the supplied snapshot, short-circuiting on the
// first failure. Segment restrictions are resolved through the
// injected Segmenter; an anonymous user or a missing Segmenter never
// matches a restricted promotion.
func (e *Engine) checkConditions(ctx context.Context, promo *Promotion, cart Cart, userID string) (ok bool, reason string) {
	cond := promo.Conditions

	if cond.MinAmount.IsPositive() && cart.Subtotal.LessThan(cond.MinAmount) {
		return false, fmt.Sprintf("Montant minimum requis : %s€", cond.MinAmount)
	}
	if cond.MinQuantity > 0 && totalQuantity(cart.Items) < cond.MinQuantity {
		return false, fmt.Sprintf("Quantité minimum requise : %d articles", cond.MinQuantity)
	}
	if cond.UserSegment != "" {
		if e.segmenter == nil || userID == "" {
			return false, msgSegmentOnly
		}
		segment, err := e.segmenter.Classify(ctx, userID)
		if err != nil || segment != cond.UserSegment {
			return false, msgSegmentOnly
		}
	}
	return true, ""
}

// eligibleItems narrows the cart to the line items matching the
// promotion's scope-specific target list. Site-wide, cart, user-segment
// and buy-x-get-y scopes take every item; shipping takes none (the
// waiver is item-independent); subscription targets plans, which cart
// line items do not carry, so it resolves to no items here. When
// ExcludePromotedProducts is set, items already carrying a promotion
// are dropped regardless of scope.
func eligibleItems(items []CartItem, promo *Promotion) []CartItem {
	var out []CartItem
	for _, item := range items {
		if promo.Conditions.ExcludePromotedProducts && item.Promoted {
			continue
		}
		if itemMatchesScope(item, promo) {
			out = append(out, item)
		}
	}
	return out
}

func itemMatchesScope(item CartItem, promo *Promotion) bool {
	switch promo.Scope {
	case ScopeSiteWide, ScopeCart, ScopeUserSegment, ScopeBuyXGetY:
		return true
	case ScopeProduct:
		return slices.Contains(promo.ProductIDs, item.ProductID)
	case ScopeCategory:
		return item.CategorySlug != "" && slices.Contains(promo.CategorySlugs, item.CategorySlug)
	case ScopeSubCategory:
		return item.SubCategorySlug != "" && slices.Contains(promo.SubCategorySlugs, item.SubCategorySlug)
	case ScopeFormat:
		return item.FormatID != "" && slices.Contains(promo.FormatIDs, item.FormatID)
	case ScopeVariant:
		return item.VariantID != "" && slices.Contains(promo.VariantIDs, item.VariantID)
	default:
		return false
	}
}

// lineTotal returns unitPrice * quantity for a single item.
func lineTotal(item CartItem) decimal.Decimal {
	return item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// itemsTotal returns the sum of line totals across items.
func itemsTotal(items []CartItem) decimal.Decimal {
	sum := zero
	for _, item := range items {
		sum = sum.Add(lineTotal(item))
	}
	return sum
}

// totalQuantity returns the sum of quantities across items.
func totalQuantity(items []CartItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

// productIDs returns the distinct product IDs of items, in input order.
func productIDs(items []CartItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !slices.Contains(out, item.ProductID) {
			out = append(out, item.ProductID)
		}
	}
	return out
}
