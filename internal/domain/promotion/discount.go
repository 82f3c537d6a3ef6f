package promotion

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)
	zero    = decimal.Zero
)

// computeDiscount returns the monetary discount for the given base
// amount. Percentage discounts are base*value/100; fixed discounts are
// capped at the base amount; free-shipping and unknown types yield
// zero (the shipping waiver is signalled separately). Negative values
// clamp to zero. The result is NOT rounded: per-item partial sums stay
// unrounded so rounding error does not compound, callers round once at
// the result boundary.
func computeDiscount(base decimal.Decimal, discountType DiscountType, value decimal.Decimal) decimal.Decimal {
	if base.IsNegative() {
		return zero
	}

	switch discountType {
	case DiscountPercentage:
		return floorAtZero(base.Mul(value).Div(hundred))
	case DiscountFixed:
		return floorAtZero(decimal.Min(value, base))
	default:
		// Free shipping and unrecognized types carry no monetary discount.
		return zero
	}
}

// discountValueFor returns the effective discount value for the given
// eligible base amount. When the promotion carries progressive tiers,
// the tier with the highest MinAmount not exceeding the base wins,
// overriding the flat DiscountValue. Without tiers the flat value is
// used as-is.
func discountValueFor(promo *Promotion, base decimal.Decimal) decimal.Decimal {
	value := promo.DiscountValue
	best := decimal.NewFromInt(-1)
	for _, tier := range promo.Tiers {
		if base.GreaterThanOrEqual(tier.MinAmount) && tier.MinAmount.GreaterThan(best) {
			best = tier.MinAmount
			value = tier.DiscountValue
		}
	}
	return value
}

// discountFor computes the discount for a base amount, resolving
// progressive tiers first.
func discountFor(promo *Promotion, base decimal.Decimal) decimal.Decimal {
	return computeDiscount(base, promo.DiscountType, discountValueFor(promo, base))
}

// floorAtZero clamps negative values to zero.
func floorAtZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return zero
	}
	return d
}
