package order

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artshop/promotions-api/internal/domain/product"
	"github.com/artshop/promotions-api/internal/domain/promotion"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

type stubProducts struct {
	products map[string]product.Product
	err      error
}

func (s *stubProducts) List(context.Context) ([]product.Product, error) {
	return nil, errors.New("not implemented")
}

func (s *stubProducts) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (s *stubProducts) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []product.Product
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type stubPromoRepo struct {
	promo        *promotion.Promotion
	findErr      error
	incrementErr error
	increments   int
}

func (s *stubPromoRepo) FindByCode(context.Context, string) (*promotion.Promotion, error) {
	return s.promo, s.findErr
}

func (s *stubPromoRepo) ListActive(context.Context, time.Time) ([]promotion.Promotion, error) {
	return nil, nil
}

func (s *stubPromoRepo) IncrementUsage(context.Context, string) error {
	s.increments++
	return s.incrementErr
}

type stubOrders struct {
	created *Order
	err     error
}

func (s *stubOrders) Create(_ context.Context, o *Order) error {
	s.created = o
	return s.err
}

func catalog() *stubProducts {
	return &stubProducts{products: map[string]product.Product{
		"p1": {ID: "p1", Name: "Sunset", Price: d("60"), CategorySlug: "paintings"},
		"p2": {ID: "p2", Name: "Dawn", Price: d("40"), CategorySlug: "prints", Variants: []product.Variant{
			{ID: "v1", SKU: "DAWN-A3", Price: d("25")},
		}},
	}}
}

func sitewidePromo() *promotion.Promotion {
	return &promotion.Promotion{
		ID:            "promo-1",
		Code:          "TENOFF",
		Scope:         promotion.ScopeSiteWide,
		DiscountType:  promotion.DiscountPercentage,
		DiscountValue: d("10"),
		StartDate:     time.Now().Add(-time.Hour),
		IsActive:      true,
	}
}

func TestPlaceOrder(t *testing.T) {
	promoRepo := &stubPromoRepo{promo: sitewidePromo()}
	orders := &stubOrders{}
	svc := NewService(catalog(), promotion.NewService(promoRepo, nil), orders)

	result, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items: []OrderItem{
			{ProductID: "p1", Quantity: 1},
			{ProductID: "p2", Quantity: 1},
		},
		PromoCode: "TENOFF",
	})

	require.NoError(t, err)
	require.NotNil(t, result.Order)
	assert.True(t, d("100").Equal(result.Order.Subtotal), "got %s", result.Order.Subtotal)
	assert.True(t, d("10").Equal(result.Order.Discounts), "got %s", result.Order.Discounts)
	assert.True(t, d("90").Equal(result.Order.Total), "got %s", result.Order.Total)
	assert.Equal(t, "TENOFF", result.Order.PromoCode)
	assert.NotEmpty(t, result.Order.ID)
	assert.Len(t, result.Products, 2)
	require.NotNil(t, result.Promo)
	assert.True(t, result.Promo.Valid)
	assert.Equal(t, 1, promoRepo.increments)
	assert.Equal(t, result.Order, orders.created)
}

func TestPlaceOrder_VariantPrice(t *testing.T) {
	orders := &stubOrders{}
	svc := NewService(catalog(), promotion.NewService(&stubPromoRepo{}, nil), orders)

	result, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items: []OrderItem{{ProductID: "p2", VariantID: "v1", Quantity: 2}},
	})

	require.NoError(t, err)
	assert.True(t, d("50").Equal(result.Order.Total), "got %s", result.Order.Total)
}

func TestPlaceOrder_Validation(t *testing.T) {
	svc := NewService(catalog(), promotion.NewService(&stubPromoRepo{}, nil), &stubOrders{})

	t.Run("empty items", func(t *testing.T) {
		_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{})
		require.ErrorIs(t, err, ErrEmptyItems)
	})

	t.Run("invalid quantity", func(t *testing.T) {
		_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
			Items: []OrderItem{{ProductID: "p1", Quantity: 0}},
		})
		var iq *InvalidQuantityError
		require.ErrorAs(t, err, &iq)
		assert.Equal(t, "p1", iq.ProductID)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
			Items: []OrderItem{{ProductID: "ghost", Quantity: 1}},
		})
		var pnf *ProductNotFoundError
		require.ErrorAs(t, err, &pnf)
		assert.Equal(t, "ghost", pnf.ProductID)
	})
}

func TestPlaceOrder_RejectedCodeDoesNotFailOrder(t *testing.T) {
	promoRepo := &stubPromoRepo{findErr: promotion.ErrPromotionNotFound}
	orders := &stubOrders{}
	svc := NewService(catalog(), promotion.NewService(promoRepo, nil), orders)

	result, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items:     []OrderItem{{ProductID: "p1", Quantity: 1}},
		PromoCode: "BOGUS",
	})

	require.NoError(t, err)
	require.NotNil(t, result.Promo)
	assert.False(t, result.Promo.Valid)
	assert.True(t, d("60").Equal(result.Order.Total))
	assert.True(t, result.Order.Discounts.IsZero())
	assert.Empty(t, result.Order.PromoCode)
	assert.Equal(t, 0, promoRepo.increments)
}

func TestPlaceOrder_LostUsageRaceDowngradesPromotion(t *testing.T) {
	promoRepo := &stubPromoRepo{
		promo:        sitewidePromo(),
		incrementErr: promotion.ErrUsageLimitReached,
	}
	orders := &stubOrders{}
	svc := NewService(catalog(), promotion.NewService(promoRepo, nil), orders)

	result, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items:     []OrderItem{{ProductID: "p1", Quantity: 1}},
		PromoCode: "TENOFF",
	})

	require.NoError(t, err)
	require.NotNil(t, result.Promo)
	assert.False(t, result.Promo.Valid)
	assert.True(t, result.Order.Discounts.IsZero())
	assert.True(t, d("60").Equal(result.Order.Total), "got %s", result.Order.Total)
}

func TestPlaceOrder_PersistFailure(t *testing.T) {
	svc := NewService(catalog(), promotion.NewService(&stubPromoRepo{}, nil), &stubOrders{err: errors.New("db down")})

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items: []OrderItem{{ProductID: "p1", Quantity: 1}},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create order")
}
