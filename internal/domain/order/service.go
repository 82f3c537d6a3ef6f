package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/artshop/promotions-api/internal/domain/product"
	"github.com/artshop/promotions-api/internal/domain/promotion"
)

// Sentinel errors for order validation.
var (
	ErrEmptyItems = fmt.Errorf("items required")
)

// ProductNotFoundError indicates a requested product does not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// PlaceOrderRequest holds the input for placing an order.
type PlaceOrderRequest struct {
	Items     []OrderItem
	PromoCode string
	UserID    string
}

// PlaceOrderResult holds the output of a successfully placed order.
// Promo carries the promotion evaluation outcome; a rejected code does
// not fail the order, it is reported here with Valid=false.
type PlaceOrderResult struct {
	Order    *Order
	Products []product.Product
	Promo    *promotion.ApplicationResult
}

// Service encapsulates checkout business logic: item validation, batch
// product lookup, promotion application, usage redemption, and order
// persistence.
type Service struct {
	products   product.Repository
	promotions *promotion.Service
	orders     Repository
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	products product.Repository,
	promotions *promotion.Service,
	orders Repository,
) *Service {
	return &Service{
		products:   products,
		promotions: promotions,
		orders:     orders,
	}
}

// PlaceOrder validates items, fetches products in a single batch,
// applies the promo code if any, redeems its usage, persists the order,
// and returns the result.
//
// Redemption runs between evaluation and persistence: the store's
// conditional increment is the authoritative usage gate, so a cap
// exhausted by a concurrent checkout downgrades the promotion to a
// rejected result instead of over-redeeming.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	// Validate quantities and collect product IDs.
	ids := make([]string, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
		ids[i] = item.ProductID
	}

	// Batch fetch all products in a single query.
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}

	productMap := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		productMap[p.ID] = p
	}

	// Verify every requested product was found.
	products := make([]product.Product, 0, len(req.Items))
	for _, item := range req.Items {
		p, ok := productMap[item.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: item.ProductID}
		}
		products = append(products, p)
	}

	// Build the cart snapshot the promotion engine evaluates.
	cartItems := make([]promotion.CartItem, len(req.Items))
	subtotal := decimal.Zero
	for i, item := range req.Items {
		p := products[i]
		price := variantPrice(p, item.VariantID)

		cartItems[i] = promotion.CartItem{
			ProductID:       item.ProductID,
			VariantID:       item.VariantID,
			Quantity:        item.Quantity,
			UnitPrice:       price,
			CategorySlug:    p.CategorySlug,
			SubCategorySlug: p.SubCategorySlug,
			FormatID:        p.FormatID,
		}
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	cart := promotion.Cart{Items: cartItems, Subtotal: subtotal}

	// Apply the promo code when one is provided.
	discountAmount := decimal.Zero
	freeShipping := false
	var promoResult *promotion.ApplicationResult
	if req.PromoCode != "" {
		res, err := s.promotions.ApplyCode(ctx, req.PromoCode, cart, req.UserID)
		if err != nil {
			return nil, errors.Wrap(err, "apply promotion")
		}
		if res.Valid {
			if err := s.redeem(ctx, &res); err != nil {
				return nil, err
			}
		}
		if res.Valid {
			discountAmount = res.DiscountAmount
			freeShipping = res.FreeShipping
		}
		promoResult = &res
	}

	// Total = subtotal - discount, floored at zero and rounded to 2 decimal places.
	total := subtotal.Sub(discountAmount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	total = total.Round(2)
	discountAmount = discountAmount.Round(2)

	o := &Order{
		ID:           uuid.New().String(),
		Items:        req.Items,
		Subtotal:     subtotal.Round(2),
		Total:        total,
		Discounts:    discountAmount,
		PromoCode:    appliedCode(promoResult),
		FreeShipping: freeShipping,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	return &PlaceOrderResult{
		Order:    o,
		Products: products,
		Promo:    promoResult,
	}, nil
}

// redeem records one use of the applied promotion. Losing the usage
// race downgrades the result to a rejection; other storage failures
// abort the checkout.
func (s *Service) redeem(ctx context.Context, res *promotion.ApplicationResult) error {
	err := s.promotions.Redeem(ctx, res.Promotion.ID)
	if err == nil {
		return nil
	}
	if errors.Is(err, promotion.ErrUsageLimitReached) {
		*res = promotion.ApplicationResult{
			Valid:          false,
			Promotion:      res.Promotion,
			DiscountAmount: decimal.Zero,
			AffectedItems:  []string{},
			Message:        "Cette promotion n'est plus disponible",
		}
		return nil
	}
	return errors.Wrap(err, "redeem promotion")
}

// variantPrice returns the price of the requested variant, or the
// product base price when no variant is requested or found.
func variantPrice(p product.Product, variantID string) decimal.Decimal {
	if variantID == "" {
		return p.Price
	}
	for _, v := range p.Variants {
		if v.ID == variantID {
			return v.Price
		}
	}
	return p.Price
}

func appliedCode(res *promotion.ApplicationResult) string {
	if res == nil || !res.Valid || res.Promotion == nil {
		return ""
	}
	return res.Promotion.Code
}
