// Command seed-db loads the catalog, a starter promotion set, and a
// default API key into the database.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/artshop/promotions-api/internal/storage/postgres"
)

type productJSON struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	CategorySlug    string          `json:"categorySlug"`
	SubCategorySlug string          `json:"subCategorySlug"`
	FormatID        string          `json:"formatId"`
	Image           struct {
		Thumbnail string `json:"thumbnail"`
		Mobile    string `json:"mobile"`
		Tablet    string `json:"tablet"`
		Desktop   string `json:"desktop"`
	} `json:"image"`
	Variants []struct {
		ID       string          `json:"id"`
		SKU      string          `json:"sku"`
		Price    decimal.Decimal `json:"price"`
		FormatID string          `json:"formatId"`
	} `json:"variants"`
}

type promotionJSON struct {
	ID               string          `json:"id"`
	Code             string          `json:"code"`
	Type             string          `json:"type"`
	Scope            string          `json:"scope"`
	ProductIDs       []string        `json:"productIds"`
	CategorySlugs    []string        `json:"categorySlugs"`
	SubCategorySlugs []string        `json:"subCategorySlugs"`
	FormatIDs        []string        `json:"formatIds"`
	VariantIDs       []string        `json:"variantIds"`
	VariantSKUs      []string        `json:"variantSkus"`
	DiscountType     string          `json:"discountType"`
	DiscountValue    decimal.Decimal `json:"discountValue"`
	Strategy         string          `json:"strategy"`
	BuyQuantity      *int            `json:"buyQuantity"`
	GetQuantity      *int            `json:"getQuantity"`
	ApplyOn          *string         `json:"applyOn"`
	Tiers            json.RawMessage `json:"tiers"`
	MinQuantity      int             `json:"minQuantity"`
	MinAmount        decimal.Decimal `json:"minAmount"`
	MaxUsageTotal    int             `json:"maxUsageTotal"`
	UserSegment      string          `json:"userSegment"`
	IsStackable      bool            `json:"isStackable"`
	Priority         int             `json:"priority"`
}

func main() {
	var (
		databaseURL    string
		productsFile   string
		promotionsFile string
		apiKey         string
		apiKeyPepper   string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&promotionsFile, "promotions-file", "db/seed/promotions.json", "path to promotions JSON file")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed (or ARTSHOP_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or ARTSHOP_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("ARTSHOP_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or ARTSHOP_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("ARTSHOP_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, promotionsFile, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, promotionsFile, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedPromotions(ctx, pool, promotionsFile); err != nil {
		return errors.Wrap(err, "seed promotions")
	}

	if err := seedAPIKey(ctx, pool, apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	return nil
}

const (
	upsertProductSQL = `INSERT INTO products
		(id, name, price, category_slug, sub_category_slug, format_id,
		 image_thumbnail, image_mobile, image_tablet, image_desktop)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name              = EXCLUDED.name,
			price             = EXCLUDED.price,
			category_slug     = EXCLUDED.category_slug,
			sub_category_slug = EXCLUDED.sub_category_slug,
			format_id         = EXCLUDED.format_id,
			image_thumbnail   = EXCLUDED.image_thumbnail,
			image_mobile      = EXCLUDED.image_mobile,
			image_tablet      = EXCLUDED.image_tablet,
			image_desktop     = EXCLUDED.image_desktop`

	upsertVariantSQL = `INSERT INTO product_variants (id, product_id, sku, price, format_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			sku       = EXCLUDED.sku,
			price     = EXCLUDED.price,
			format_id = EXCLUDED.format_id`

	upsertSeedPromotionSQL = `INSERT INTO promotions
		(id, code, type, scope,
		 product_ids, category_slugs, sub_category_slugs, format_ids, variant_ids, variant_skus,
		 discount_type, discount_value, strategy,
		 buy_quantity, get_quantity, apply_on, tiers,
		 min_quantity, min_amount, max_usage_total, user_segment,
		 is_stackable, priority, start_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		        $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, now(), TRUE)
		ON CONFLICT (id) DO UPDATE SET
			code           = EXCLUDED.code,
			scope          = EXCLUDED.scope,
			discount_type  = EXCLUDED.discount_type,
			discount_value = EXCLUDED.discount_value,
			strategy       = EXCLUDED.strategy,
			tiers          = EXCLUDED.tiers,
			min_quantity   = EXCLUDED.min_quantity,
			min_amount     = EXCLUDED.min_amount,
			is_stackable   = EXCLUDED.is_stackable,
			priority       = EXCLUDED.priority,
			is_active      = TRUE`

	upsertAPIKeySQL = `INSERT INTO api_keys (id, key_hash, name, scopes, active)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (id) DO UPDATE SET
			key_hash = EXCLUDED.key_hash,
			name     = EXCLUDED.name,
			scopes   = EXCLUDED.scopes,
			active   = TRUE`
)

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		_, err := pool.Exec(ctx, upsertProductSQL,
			p.ID, p.Name, p.Price, p.CategorySlug, p.SubCategorySlug, p.FormatID,
			p.Image.Thumbnail, p.Image.Mobile, p.Image.Tablet, p.Image.Desktop,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		for _, v := range p.Variants {
			_, err := pool.Exec(ctx, upsertVariantSQL, v.ID, p.ID, v.SKU, v.Price, v.FormatID)
			if err != nil {
				return errors.Wrapf(err, "upsert variant %s", v.ID)
			}
		}

		slog.Info("upserted product",
			slog.String("id", p.ID),
			slog.String("name", p.Name),
			slog.Int("variants", len(p.Variants)),
		)
	}

	return nil
}

func seedPromotions(ctx context.Context, pool *pgxpool.Pool, promotionsFile string) error {
	slog.Info("reading promotions file", slog.String("path", promotionsFile))

	data, err := os.ReadFile(promotionsFile)
	if err != nil {
		return errors.Wrap(err, "read promotions file")
	}

	var promos []promotionJSON
	if err := json.Unmarshal(data, &promos); err != nil {
		return errors.Wrap(err, "parse promotions JSON")
	}

	slog.Info("upserting promotions", slog.Int("count", len(promos)))

	for _, p := range promos {
		var code *string
		if p.Code != "" {
			code = &p.Code
		}
		var tiers []byte
		if len(p.Tiers) > 0 {
			tiers = p.Tiers
		}
		if p.Type == "" {
			p.Type = "code"
		}
		if p.Strategy == "" {
			p.Strategy = "all"
		}

		_, err := pool.Exec(ctx, upsertSeedPromotionSQL,
			p.ID, code, p.Type, p.Scope,
			orEmpty(p.ProductIDs), orEmpty(p.CategorySlugs), orEmpty(p.SubCategorySlugs),
			orEmpty(p.FormatIDs), orEmpty(p.VariantIDs), orEmpty(p.VariantSKUs),
			p.DiscountType, p.DiscountValue, p.Strategy,
			p.BuyQuantity, p.GetQuantity, p.ApplyOn, tiers,
			p.MinQuantity, p.MinAmount, p.MaxUsageTotal, p.UserSegment,
			p.IsStackable, p.Priority,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert promotion %s", p.ID)
		}

		slog.Info("upserted promotion", slog.String("id", p.ID), slog.String("code", p.Code))
	}

	return nil
}

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, apiKey, pepper string) error {
	slog.Info("seeding default API key")

	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(apiKey))
	keyHash := hex.EncodeToString(mac.Sum(nil))

	_, err := pool.Exec(ctx, upsertAPIKeySQL,
		"default", keyHash, "Default admin key", []string{"orders:write"},
	)
	if err != nil {
		return errors.Wrap(err, "upsert default API key")
	}

	slog.Info("upserted API key", slog.String("id", "default"))

	return nil
}

// orEmpty keeps TEXT[] columns non-null when the JSON omits a list.
func orEmpty(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
