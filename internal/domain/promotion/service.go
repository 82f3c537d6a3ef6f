package promotion

import (
	"context"

	"github.com/go-faster/errors"
)

// Service ties the Engine to a promotion store. It resolves codes,
// feeds the active promotion list into batch pricing, and forwards
// usage accounting. Evaluation itself stays pure; the only mutation is
// the explicit Redeem call made by the order flow after checkout.
type Service struct {
	repo   Repository
	engine *Engine
}

// NewService creates a Service backed by the given repository. The
// segmenter may be nil.
func NewService(repo Repository, segmenter Segmenter) *Service {
	return &Service{
		repo:   repo,
		engine: NewEngine(segmenter),
	}
}

// Engine exposes the underlying evaluation engine, mainly for stack
// evaluation over an externally assembled promotion list.
func (s *Service) Engine() *Engine {
	return s.engine
}

// ApplyCode resolves a promotion code and evaluates it against the
// cart. An unknown or inactive code is a business outcome, returned as
// an invalid ApplicationResult; only storage failures surface as
// errors.
func (s *Service) ApplyCode(ctx context.Context, code string, cart Cart, userID string) (ApplicationResult, error) {
	promo, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrPromotionNotFound) {
			return invalidResult(nil, msgInvalidCode), nil
		}
		return ApplicationResult{}, errors.Wrap(err, "lookup promotion")
	}

	return s.engine.Apply(ctx, promo, cart, userID), nil
}

// Quote runs a batch price calculation over all currently active
// promotions. A supplied promo code suppresses automatic promotions,
// per the pricing contract.
func (s *Service) Quote(ctx context.Context, products []ProductPriceInput, promoCode string) (PricingResult, error) {
	active, err := s.repo.ListActive(ctx, s.engine.now())
	if err != nil {
		return PricingResult{}, errors.Wrap(err, "list active promotions")
	}

	return s.engine.CalculatePrices(ctx, active, products, promoCode), nil
}

// EvaluateStack evaluates every currently active promotion as a
// priority-ordered stack against the cart.
func (s *Service) EvaluateStack(ctx context.Context, cart Cart, userID string) (StackResult, error) {
	active, err := s.repo.ListActive(ctx, s.engine.now())
	if err != nil {
		return StackResult{}, errors.Wrap(err, "list active promotions")
	}

	return s.engine.ApplyStack(ctx, active, cart, userID), nil
}

// Redeem records one use of a promotion. The store performs the
// increment conditionally so concurrent checkouts cannot exceed the
// usage cap; ErrUsageLimitReached reports a lost race.
func (s *Service) Redeem(ctx context.Context, promotionID string) error {
	if err := s.repo.IncrementUsage(ctx, promotionID); err != nil {
		if errors.Is(err, ErrUsageLimitReached) {
			return ErrUsageLimitReached
		}
		return errors.Wrap(err, "increment promotion usage")
	}
	return nil
}
