package promotion

import "github.com/shopspring/decimal"

// applyStrategy computes the discount for the given eligible items
// under the promotion's distribution policy. The caller has already
// filtered to eligible items; an empty slice yields zero.
//
// StrategyAll and StrategyProportional discount the full eligible
// total. StrategyCheapest and StrategyMostExpensive discount a single
// line item, ties broken by input order. StrategyNonPromoOnly
// restricts the base to items not already carrying a promotion.
func applyStrategy(promo *Promotion, items []CartItem) decimal.Decimal {
	if len(items) == 0 {
		return zero
	}

	var base decimal.Decimal
	switch promo.Strategy {
	case StrategyCheapest:
		base = lineTotal(pickByUnitPrice(items, false))
	case StrategyMostExpensive:
		base = lineTotal(pickByUnitPrice(items, true))
	case StrategyNonPromoOnly:
		base = zero
		for _, item := range items {
			if !item.Promoted {
				base = base.Add(lineTotal(item))
			}
		}
	default:
		// StrategyAll, StrategyProportional and the empty strategy all
		// discount the full eligible total.
		base = itemsTotal(items)
	}

	return discountFor(promo, base)
}

// pickByUnitPrice returns the item with the extreme unit price. The
// first item encountered wins ties.
func pickByUnitPrice(items []CartItem, highest bool) CartItem {
	best := items[0]
	for _, item := range items[1:] {
		if highest {
			if item.UnitPrice.GreaterThan(best.UnitPrice) {
				best = item
			}
		} else if item.UnitPrice.LessThan(best.UnitPrice) {
			best = item
		}
	}
	return best
}
