package promotion

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Type distinguishes promotions applied automatically from those
// requiring a code at checkout.
type Type string

const (
	// TypeAutomatic promotions apply without any code.
	TypeAutomatic Type = "automatic"
	// TypeCode promotions require the customer to enter a code.
	TypeCode Type = "code"
)

// Scope is the dimension a promotion's discount is restricted to.
type Scope string

const (
	ScopeProduct      Scope = "product"
	ScopeCategory     Scope = "category"
	ScopeSubCategory  Scope = "subcategory"
	ScopeSiteWide     Scope = "site-wide"
	ScopeFormat       Scope = "format"
	ScopeCart         Scope = "cart"
	ScopeShipping     Scope = "shipping"
	ScopeUserSegment  Scope = "user-segment"
	ScopeBuyXGetY     Scope = "buy-x-get-y"
	ScopeSubscription Scope = "subscription"
	ScopeVariant      Scope = "variant"
)

// DiscountType enumerates the supported discount algorithms.
type DiscountType string

const (
	// DiscountPercentage applies a percentage-based discount to the eligible amount.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed applies a fixed monetary discount capped at the eligible amount.
	DiscountFixed DiscountType = "fixed"
	// DiscountFreeShipping waives shipping. It carries no monetary discount;
	// the waiver is signalled via ApplicationResult.FreeShipping.
	DiscountFreeShipping DiscountType = "free_shipping"
)

// Strategy is the policy for distributing a computed discount across
// multiple eligible line items.
type Strategy string

const (
	// StrategyAll discounts the full eligible amount. This is the default.
	StrategyAll Strategy = "all"
	// StrategyCheapest discounts only the cheapest eligible line item.
	StrategyCheapest Strategy = "cheapest"
	// StrategyMostExpensive discounts only the most expensive eligible line item.
	StrategyMostExpensive Strategy = "most-expensive"
	// StrategyProportional distributes the discount across the full eligible
	// amount. Numerically identical to StrategyAll; kept as a distinct name
	// for API clarity.
	StrategyProportional Strategy = "proportional"
	// StrategyNonPromoOnly discounts only items that do not already carry
	// another promotion.
	StrategyNonPromoOnly Strategy = "non-promo-only"
)

// ApplyOn selects which units receive a buy-x-get-y gift discount.
type ApplyOn string

const (
	ApplyOnCheapest      ApplyOn = "cheapest"
	ApplyOnMostExpensive ApplyOn = "most-expensive"
)

// Segment classifies a customer for segment-restricted promotions.
// Classification is an external concern, see Segmenter.
type Segment string

const (
	SegmentFirstPurchase Segment = "first-purchase"
	SegmentReturning     Segment = "returning"
	SegmentVIP           Segment = "vip"
)

// BuyXGetYConfig configures a buy-x-get-y promotion. Both quantities
// must be at least 1 for the promotion to have any effect.
type BuyXGetYConfig struct {
	BuyQuantity int
	GetQuantity int
	ApplyOn     ApplyOn
}

// Tier is one step of a progressive, amount-based discount scale.
// The tier with the highest MinAmount not exceeding the eligible
// amount supplies the effective discount value.
type Tier struct {
	MinAmount     decimal.Decimal
	DiscountValue decimal.Decimal
}

// Conditions are optional global constraints checked before any
// discount computation. Zero values mean "no constraint".
type Conditions struct {
	MinQuantity             int
	MinAmount               decimal.Decimal
	MaxUsagePerUser         int
	MaxUsageTotal           int
	UserSegment             Segment
	ExcludePromotedProducts bool
}

// Promotion is a discount rule. The target list matching the active
// Scope is the only one consulted during eligibility filtering.
type Promotion struct {
	ID   string
	Code string
	Type Type

	Scope               Scope
	ProductIDs          []string
	CategorySlugs       []string
	SubCategorySlugs    []string
	FormatIDs           []string
	SubscriptionPlanIDs []string
	VariantIDs          []string
	VariantSKUs         []string

	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	Strategy      Strategy
	BuyXGetY      *BuyXGetYConfig
	Tiers         []Tier

	Conditions Conditions

	IsStackable bool
	Priority    int

	StartDate time.Time
	EndDate   *time.Time

	IsActive     bool
	CurrentUsage int
}

// CartItem is a snapshot of one cart line item, supplied by the cart
// service. Promoted marks items already carrying another promotion.
type CartItem struct {
	ProductID       string
	VariantID       string
	Quantity        int
	UnitPrice       decimal.Decimal
	CategorySlug    string
	SubCategorySlug string
	FormatID        string
	Promoted        bool
}

// Cart is the snapshot a promotion is evaluated against.
type Cart struct {
	Items    []CartItem
	Subtotal decimal.Decimal
}

// ApplicationResult is the outcome of evaluating one promotion against
// a cart. Business-rule failures are reported with Valid=false and a
// user-facing Message; the engine never returns them as errors.
type ApplicationResult struct {
	Valid          bool
	Promotion      *Promotion
	DiscountAmount decimal.Decimal
	AffectedItems  []string
	Message        string
	FreeShipping   bool
}

// StackResult is the outcome of folding an ordered list of promotions
// over a cart. Results holds one entry per applied promotion.
type StackResult struct {
	Results       []ApplicationResult
	TotalDiscount decimal.Decimal
	FreeShipping  bool
}

var (
	// ErrPromotionNotFound is returned by repositories when no active
	// promotion matches the requested code.
	ErrPromotionNotFound = errors.New("promotion not found")
	// ErrUsageLimitReached is returned by IncrementUsage when the
	// conditional increment matched no rows, i.e. the usage cap was
	// reached by a concurrent redemption.
	ErrUsageLimitReached = errors.New("promotion usage limit reached")
)

// Repository provides lookup and usage accounting for promotions.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Promotion, error)
	ListActive(ctx context.Context, now time.Time) ([]Promotion, error)
	// IncrementUsage atomically increments the usage counter, failing
	// with ErrUsageLimitReached when the cap would be exceeded. Called
	// by the order service after a successful checkout, never during
	// evaluation.
	IncrementUsage(ctx context.Context, id string) error
}

// Segmenter classifies a customer into a Segment. The engine never
// computes segments itself; segment-restricted promotions do not match
// when no Segmenter is configured or the user is anonymous.
type Segmenter interface {
	Classify(ctx context.Context, userID string) (Segment, error)
}
