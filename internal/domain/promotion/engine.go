package promotion

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Engine evaluates promotions against cart snapshots and price lists.
// It is pure computation over its arguments: no I/O, no mutation of
// the promotions it is given. Business-rule failures are reported in
// the returned results, never as errors.
type Engine struct {
	segmenter Segmenter
	now       func() time.Time
}

// NewEngine creates an Engine. The segmenter may be nil, in which case
// segment-restricted promotions never match.
func NewEngine(segmenter Segmenter) *Engine {
	return &Engine{segmenter: segmenter, now: time.Now}
}

// Apply evaluates a single promotion against a cart snapshot. The
// sequence is fixed: lifecycle validity, global conditions, scope
// dispatch, application strategy, rounding. Evaluating the same inputs
// twice yields identical results; usage accounting is the caller's
// concern after checkout.
func (e *Engine) Apply(ctx context.Context, promo *Promotion, cart Cart, userID string) ApplicationResult {
	if promo == nil {
		return invalidResult(nil, msgInvalidCode)
	}
	if ok, reason := checkValidity(promo, e.now()); !ok {
		return invalidResult(promo, reason)
	}
	if ok, reason := e.checkConditions(ctx, promo, cart, userID); !ok {
		return invalidResult(promo, reason)
	}

	result := ApplicationResult{
		Valid:          true,
		Promotion:      promo,
		DiscountAmount: zero,
		AffectedItems:  []string{},
	}

	eligible := eligibleItems(cart.Items, promo)

	switch promo.Scope {
	case ScopeShipping:
		result.FreeShipping = promo.DiscountType == DiscountFreeShipping
	case ScopeBuyXGetY:
		outcome := calculateBuyXGetY(eligible, promo.BuyXGetY)
		result.DiscountAmount = outcome.Discount
		result.AffectedItems = outcome.AffectedItems
	case ScopeSiteWide, ScopeCart:
		// The raw subtotal is the discount base; the item filter only
		// supplies the affected id list.
		result.DiscountAmount = discountFor(promo, cart.Subtotal)
		result.AffectedItems = productIDs(eligible)
		result.FreeShipping = promo.DiscountType == DiscountFreeShipping
	default:
		result.DiscountAmount = discountFor(promo, itemsTotal(eligible))
		result.AffectedItems = productIDs(eligible)
	}

	// A non-default strategy recomputes the discount restricted to the
	// eligible items, overwriting the scope-level amount.
	if promo.Strategy != "" && promo.Strategy != StrategyAll && len(eligible) > 0 {
		result.DiscountAmount = applyStrategy(promo, eligible)
	}

	result.DiscountAmount = result.DiscountAmount.Round(2)
	result.Message = successMessage(promo, result)
	return result
}

// ApplyStack folds an ordered list of promotions over a cart: sorted
// by priority descending, stackable promotions accumulate against the
// remaining discountable base, and the first applicable non-stackable
// promotion ends the fold. Promotions that fail validity or conditions
// are skipped silently; only applied promotions appear in Results.
func (e *Engine) ApplyStack(ctx context.Context, promos []Promotion, cart Cart, userID string) StackResult {
	ordered := make([]Promotion, len(promos))
	copy(ordered, promos)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	stack := StackResult{TotalDiscount: zero}
	remaining := cart.Subtotal

	for i := range ordered {
		promo := &ordered[i]
		scoped := cart
		scoped.Subtotal = remaining

		res := e.Apply(ctx, promo, scoped, userID)
		if !res.Valid {
			continue
		}
		if res.DiscountAmount.IsZero() && !res.FreeShipping {
			continue
		}

		// Never discount below zero across the stack.
		if res.DiscountAmount.GreaterThan(remaining) {
			res.DiscountAmount = remaining
		}
		remaining = remaining.Sub(res.DiscountAmount)

		stack.Results = append(stack.Results, res)
		stack.TotalDiscount = stack.TotalDiscount.Add(res.DiscountAmount)
		stack.FreeShipping = stack.FreeShipping || res.FreeShipping

		if !promo.IsStackable {
			break
		}
	}

	stack.TotalDiscount = stack.TotalDiscount.Round(2)
	return stack
}

func invalidResult(promo *Promotion, reason string) ApplicationResult {
	return ApplicationResult{
		Valid:          false,
		Promotion:      promo,
		DiscountAmount: zero,
		AffectedItems:  []string{},
		Message:        reason,
	}
}

// successMessage builds the user-facing confirmation for an applied
// promotion. Code promotions name the code; automatic promotions get
// the generic phrasing.
func successMessage(promo *Promotion, result ApplicationResult) string {
	label := "Promotion appliquée"
	if promo.Code != "" {
		label = fmt.Sprintf("Code %s appliqué", promo.Code)
	}

	switch {
	case result.FreeShipping && promo.DiscountType == DiscountFreeShipping:
		return label + " : livraison offerte"
	case promo.Scope == ScopeBuyXGetY:
		return fmt.Sprintf("%s : -%s€", label, result.DiscountAmount)
	case promo.DiscountType == DiscountPercentage:
		return fmt.Sprintf("%s : -%s%%", label, promo.DiscountValue)
	case promo.DiscountType == DiscountFixed:
		return fmt.Sprintf("%s : -%s€", label, promo.DiscountValue.Round(2))
	default:
		return label
	}
}

// clampTotal subtracts a discount from a subtotal, floored at zero and
// rounded to 2 decimal places.
func clampTotal(subtotal, discount decimal.Decimal) decimal.Decimal {
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = zero
	}
	return total.Round(2)
}
