package promotion

import (
	"sort"

	"github.com/shopspring/decimal"
)

// buyXGetYOutcome is the result of a buy-x-get-y allocation.
type buyXGetYOutcome struct {
	Discount      decimal.Decimal
	AffectedItems []string
}

// calculateBuyXGetY computes how many gift units the cart has earned
// and which units receive them. Complete sets of buy+get units earn
// getQuantity gifts each; gift units are consumed from the cheapest or
// most expensive items first, per the config. A nil or degenerate
// config (quantities < 1) yields a zero-discount no-op rather than an
// error: configuration validation belongs to promotion creation.
func calculateBuyXGetY(items []CartItem, cfg *BuyXGetYConfig) buyXGetYOutcome {
	out := buyXGetYOutcome{Discount: zero, AffectedItems: []string{}}
	if cfg == nil || cfg.BuyQuantity < 1 || cfg.GetQuantity < 1 {
		return out
	}

	totalQty := totalQuantity(items)
	sets := totalQty / (cfg.BuyQuantity + cfg.GetQuantity)
	if sets == 0 {
		return out
	}
	giftQty := sets * cfg.GetQuantity

	sorted := make([]CartItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if cfg.ApplyOn == ApplyOnMostExpensive {
			return sorted[i].UnitPrice.GreaterThan(sorted[j].UnitPrice)
		}
		return sorted[i].UnitPrice.LessThan(sorted[j].UnitPrice)
	})

	for _, item := range sorted {
		if giftQty == 0 {
			break
		}
		take := item.Quantity
		if take > giftQty {
			take = giftQty
		}
		out.Discount = out.Discount.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(take))))
		out.AffectedItems = append(out.AffectedItems, item.ProductID)
		giftQty -= take
	}

	return out
}
