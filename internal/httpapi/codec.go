package httpapi

import (
	"strings"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/artshop/promotions-api/internal/domain/promotion"
)

// encDecimal writes a decimal as an exact JSON number.
func encDecimal(e *jx.Encoder, d decimal.Decimal) {
	e.Raw([]byte(d.String()))
}

// encStrings writes a string slice as a JSON array, never null.
func encStrings(e *jx.Encoder, ss []string) {
	e.Arr(func(e *jx.Encoder) {
		for _, s := range ss {
			e.Str(s)
		}
	})
}

// decDecimal reads a JSON number (or number string) as a decimal.
func decDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	n, err := d.Num()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(strings.Trim(string(n), `"`))
}

// encApplicationResult writes the uniform promotion evaluation outcome.
func encApplicationResult(e *jx.Encoder, res promotion.ApplicationResult) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("valid", func(e *jx.Encoder) { e.Bool(res.Valid) })
		e.Field("discountAmount", func(e *jx.Encoder) { encDecimal(e, res.DiscountAmount) })
		e.Field("affectedItems", func(e *jx.Encoder) { encStrings(e, res.AffectedItems) })
		e.Field("message", func(e *jx.Encoder) { e.Str(res.Message) })
		e.Field("freeShipping", func(e *jx.Encoder) { e.Bool(res.FreeShipping) })
		if res.Promotion != nil && res.Promotion.Code != "" {
			e.Field("promoCode", func(e *jx.Encoder) { e.Str(res.Promotion.Code) })
		}
	})
}

// decCartItem reads one cart line item. Unknown keys are skipped so the
// request schema can grow without breaking old clients.
func decCartItem(d *jx.Decoder) (promotion.CartItem, error) {
	var item promotion.CartItem
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "productId":
			item.ProductID, err = d.Str()
		case "variantId":
			item.VariantID, err = d.Str()
		case "quantity":
			item.Quantity, err = d.Int()
		case "unitPrice":
			item.UnitPrice, err = decDecimal(d)
		case "categorySlug":
			item.CategorySlug, err = d.Str()
		case "subCategorySlug":
			item.SubCategorySlug, err = d.Str()
		case "formatId":
			item.FormatID, err = d.Str()
		case "promoted":
			item.Promoted, err = d.Bool()
		default:
			err = d.Skip()
		}
		return err
	})
	return item, err
}

// decCart reads a cart snapshot: items plus an optional subtotal. When
// the subtotal is absent it is computed from the items.
type cartRequest struct {
	Cart        promotion.Cart
	Code        string
	UserID      string
	hasSubtotal bool
}

func decCartRequest(data []byte) (cartRequest, error) {
	var req cartRequest
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "code":
			req.Code, err = d.Str()
		case "userId":
			req.UserID, err = d.Str()
		case "subtotal":
			req.Cart.Subtotal, err = decDecimal(d)
			req.hasSubtotal = true
		case "items":
			err = d.Arr(func(d *jx.Decoder) error {
				item, err := decCartItem(d)
				if err != nil {
					return err
				}
				req.Cart.Items = append(req.Cart.Items, item)
				return nil
			})
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return cartRequest{}, err
	}

	if !req.hasSubtotal {
		subtotal := decimal.Zero
		for _, item := range req.Cart.Items {
			subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		req.Cart.Subtotal = subtotal
	}
	return req, nil
}
