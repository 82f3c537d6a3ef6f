package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/artshop/promotions-api/internal/domain/promotion"
)

const promotionColumns = `id, code, type, scope,
	product_ids, category_slugs, sub_category_slugs, format_ids,
	subscription_plan_ids, variant_ids, variant_skus,
	discount_type, discount_value, strategy,
	buy_quantity, get_quantity, apply_on, tiers,
	min_quantity, min_amount, max_usage_per_user, max_usage_total,
	user_segment, exclude_promoted,
	is_stackable, priority, start_date, end_date, is_active, current_usage`

const (
	findPromotionByCodeSQL = `SELECT ` + promotionColumns + `
		FROM promotions WHERE UPPER(code) = UPPER($1) AND is_active = TRUE`

	listActivePromotionsSQL = `SELECT ` + promotionColumns + `
		FROM promotions
		WHERE is_active = TRUE
		  AND start_date <= $1
		  AND (end_date IS NULL OR end_date >= $1)
		ORDER BY priority DESC, id`

	// The conditional increment is the authoritative usage gate: two
	// concurrent checkouts cannot both pass a nearly exhausted cap.
	incrementPromotionUsageSQL = `UPDATE promotions
		SET current_usage = current_usage + 1
		WHERE id = $1 AND (max_usage_total = 0 OR current_usage < max_usage_total)`
)

var _ promotion.Repository = (*PromotionRepository)(nil)

// PromotionRepository implements promotion.Repository backed by PostgreSQL.
type PromotionRepository struct {
	pool *pgxpool.Pool
}

// NewPromotionRepository returns a PromotionRepository that uses the given pool.
func NewPromotionRepository(pool *pgxpool.Pool) *PromotionRepository {
	return &PromotionRepository{pool: pool}
}

// FindByCode looks up an active promotion by its code (case-insensitive).
// Returns promotion.ErrPromotionNotFound when no matching active promotion
// exists.
func (r *PromotionRepository) FindByCode(ctx context.Context, code string) (*promotion.Promotion, error) {
	rows, err := r.pool.Query(ctx, findPromotionByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding promotion by code %q: %w", code, err)
	}

	promo, err := pgx.CollectExactlyOneRow(rows, scanPromotion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, promotion.ErrPromotionNotFound
		}
		return nil, fmt.Errorf("finding promotion by code %q: %w", code, err)
	}
	return &promo, nil
}

// ListActive returns every promotion active at the given instant,
// highest priority first.
func (r *PromotionRepository) ListActive(ctx context.Context, now time.Time) ([]promotion.Promotion, error) {
	rows, err := r.pool.Query(ctx, listActivePromotionsSQL, now)
	if err != nil {
		return nil, fmt.Errorf("listing active promotions: %w", err)
	}

	promos, err := pgx.CollectRows(rows, scanPromotion)
	if err != nil {
		return nil, fmt.Errorf("listing active promotions: %w", err)
	}
	return promos, nil
}

// IncrementUsage atomically increments the usage counter, guarded by
// the usage cap. Zero rows affected means the cap was reached (or the
// promotion vanished), reported as promotion.ErrUsageLimitReached.
func (r *PromotionRepository) IncrementUsage(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, incrementPromotionUsageSQL, id)
	if err != nil {
		return fmt.Errorf("incrementing usage for promotion %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return promotion.ErrUsageLimitReached
	}
	return nil
}

// tierRow is the JSONB representation of one progressive tier.
type tierRow struct {
	MinAmount     decimal.Decimal `json:"minAmount"`
	DiscountValue decimal.Decimal `json:"discountValue"`
}

func scanPromotion(row pgx.CollectableRow) (promotion.Promotion, error) {
	var (
		promo       promotion.Promotion
		code        *string
		buyQty      *int32
		getQty      *int32
		applyOn     *string
		tiersJSON   []byte
		userSegment string
	)

	err := row.Scan(
		&promo.ID, &code, &promo.Type, &promo.Scope,
		&promo.ProductIDs, &promo.CategorySlugs, &promo.SubCategorySlugs, &promo.FormatIDs,
		&promo.SubscriptionPlanIDs, &promo.VariantIDs, &promo.VariantSKUs,
		&promo.DiscountType, &promo.DiscountValue, &promo.Strategy,
		&buyQty, &getQty, &applyOn, &tiersJSON,
		&promo.Conditions.MinQuantity, &promo.Conditions.MinAmount,
		&promo.Conditions.MaxUsagePerUser, &promo.Conditions.MaxUsageTotal,
		&userSegment, &promo.Conditions.ExcludePromotedProducts,
		&promo.IsStackable, &promo.Priority, &promo.StartDate, &promo.EndDate,
		&promo.IsActive, &promo.CurrentUsage,
	)
	if err != nil {
		return promotion.Promotion{}, err
	}

	if code != nil {
		promo.Code = *code
	}
	promo.Conditions.UserSegment = promotion.Segment(userSegment)

	if buyQty != nil && getQty != nil {
		cfg := &promotion.BuyXGetYConfig{
			BuyQuantity: int(*buyQty),
			GetQuantity: int(*getQty),
		}
		if applyOn != nil {
			cfg.ApplyOn = promotion.ApplyOn(*applyOn)
		}
		promo.BuyXGetY = cfg
	}

	if len(tiersJSON) > 0 {
		var rows []tierRow
		if err := json.Unmarshal(tiersJSON, &rows); err != nil {
			return promotion.Promotion{}, fmt.Errorf("decoding tiers for promotion %q: %w", promo.ID, err)
		}
		for _, t := range rows {
			promo.Tiers = append(promo.Tiers, promotion.Tier{
				MinAmount:     t.MinAmount,
				DiscountValue: t.DiscountValue,
			})
		}
	}

	return promo, nil
}
