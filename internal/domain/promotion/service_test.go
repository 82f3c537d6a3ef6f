package promotion

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	promo        *Promotion
	findErr      error
	active       []Promotion
	listErr      error
	incrementErr error
	incrementID  string
}

func (m *mockRepo) FindByCode(_ context.Context, _ string) (*Promotion, error) {
	return m.promo, m.findErr
}

func (m *mockRepo) ListActive(_ context.Context, _ time.Time) ([]Promotion, error) {
	return m.active, m.listErr
}

func (m *mockRepo) IncrementUsage(_ context.Context, id string) error {
	m.incrementID = id
	return m.incrementErr
}

func serviceWith(repo Repository, segmenter Segmenter) *Service {
	s := NewService(repo, segmenter)
	s.engine.now = func() time.Time { return fixedNow }
	return s
}

func TestServiceApplyCode(t *testing.T) {
	cart := cartOf(CartItem{ProductID: "a", UnitPrice: d("100"), Quantity: 1})

	t.Run("valid code applies", func(t *testing.T) {
		promo := activePromo()
		s := serviceWith(&mockRepo{promo: &promo}, nil)

		res, err := s.ApplyCode(context.Background(), "SUMMER20", cart, "")

		require.NoError(t, err)
		require.True(t, res.Valid)
		assert.True(t, d("20").Equal(res.DiscountAmount))
	})

	t.Run("unknown code is a business outcome, not an error", func(t *testing.T) {
		s := serviceWith(&mockRepo{findErr: ErrPromotionNotFound}, nil)

		res, err := s.ApplyCode(context.Background(), "BOGUS", cart, "")

		require.NoError(t, err)
		assert.False(t, res.Valid)
		assert.True(t, res.DiscountAmount.IsZero())
		assert.Equal(t, msgInvalidCode, res.Message)
	})

	t.Run("storage failure surfaces as error", func(t *testing.T) {
		s := serviceWith(&mockRepo{findErr: errors.New("connection refused")}, nil)

		_, err := s.ApplyCode(context.Background(), "SUMMER20", cart, "")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "lookup promotion")
	})
}

func TestServiceQuote(t *testing.T) {
	s := serviceWith(&mockRepo{active: []Promotion{sitewideTenPercent()}}, nil)

	res, err := s.Quote(context.Background(), []ProductPriceInput{
		{ProductID: "prod-1", OriginalPrice: d("40")},
	}, "")

	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	assert.True(t, d("36").Equal(res.Products[0].ReducedPrice))
	assert.True(t, d("4").Equal(res.TotalSaved))
}

func TestServiceQuote_ListError(t *testing.T) {
	s := serviceWith(&mockRepo{listErr: errors.New("boom")}, nil)

	_, err := s.Quote(context.Background(), nil, "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "list active promotions")
}

func TestServiceEvaluateStack(t *testing.T) {
	stackable := activePromo()
	stackable.IsStackable = true

	s := serviceWith(&mockRepo{active: []Promotion{stackable}}, nil)
	cart := cartOf(CartItem{ProductID: "a", UnitPrice: d("50"), Quantity: 1})

	res, err := s.EvaluateStack(context.Background(), cart, "")

	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.True(t, d("10").Equal(res.TotalDiscount))
}

func TestServiceRedeem(t *testing.T) {
	t.Run("forwards to the repository", func(t *testing.T) {
		repo := &mockRepo{}
		s := serviceWith(repo, nil)

		require.NoError(t, s.Redeem(context.Background(), "promo-1"))
		assert.Equal(t, "promo-1", repo.incrementID)
	})

	t.Run("lost usage race is reported as ErrUsageLimitReached", func(t *testing.T) {
		s := serviceWith(&mockRepo{incrementErr: ErrUsageLimitReached}, nil)

		err := s.Redeem(context.Background(), "promo-1")
		require.ErrorIs(t, err, ErrUsageLimitReached)
	})

	t.Run("storage failure is wrapped", func(t *testing.T) {
		s := serviceWith(&mockRepo{incrementErr: errors.New("boom")}, nil)

		err := s.Redeem(context.Background(), "promo-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "increment promotion usage")
	})
}
