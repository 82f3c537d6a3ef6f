package httpapi

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/artshop/promotions-api/internal/domain/promotion"
)

// Quote runs a batch price calculation over the supplied products
// against all currently active promotions.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	inputs, promoCode, err := decQuoteRequest(body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}

	result, err := h.promotions.Quote(r.Context(), inputs, promoCode)
	if err != nil {
		writeInternalError(w, r, err, "quote prices")
		return
	}

	var e jx.Encoder
	encPricingResult(&e, result)
	writeJSON(w, http.StatusOK, &e)
}

func decQuoteRequest(data []byte) ([]promotion.ProductPriceInput, string, error) {
	var (
		inputs    []promotion.ProductPriceInput
		promoCode string
	)
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "promoCode":
			promoCode, err = d.Str()
		case "products":
			err = d.Arr(func(d *jx.Decoder) error {
				in, err := decProductPriceInput(d)
				if err != nil {
					return err
				}
				inputs = append(inputs, in)
				return nil
			})
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return nil, "", err
	}
	return inputs, promoCode, nil
}

func decProductPriceInput(d *jx.Decoder) (promotion.ProductPriceInput, error) {
	var in promotion.ProductPriceInput
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "productId":
			in.ProductID, err = d.Str()
		case "originalPrice":
			in.OriginalPrice, err = decDecimal(d)
		case "quantity":
			in.Quantity, err = d.Int()
		case "variants":
			err = d.Arr(func(d *jx.Decoder) error {
				v, err := decVariantPriceInput(d)
				if err != nil {
					return err
				}
				in.Variants = append(in.Variants, v)
				return nil
			})
		default:
			err = d.Skip()
		}
		return err
	})
	return in, err
}

func decVariantPriceInput(d *jx.Decoder) (promotion.VariantPriceInput, error) {
	var v promotion.VariantPriceInput
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "variantId":
			v.VariantID, err = d.Str()
		case "sku":
			v.SKU, err = d.Str()
		case "originalPrice":
			v.OriginalPrice, err = decDecimal(d)
		case "quantity":
			v.Quantity, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	})
	return v, err
}

func encPricingResult(e *jx.Encoder, result promotion.PricingResult) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("products", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, p := range result.Products {
					encProductPriceOutput(e, p)
				}
			})
		})
		e.Field("totalSaved", func(e *jx.Encoder) { encDecimal(e, result.TotalSaved) })
		e.Field("appliedPromoCodes", func(e *jx.Encoder) { encStrings(e, result.AppliedPromoCodes) })
	})
}

func encProductPriceOutput(e *jx.Encoder, p promotion.ProductPriceOutput) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("productId", func(e *jx.Encoder) { e.Str(p.ProductID) })
		e.Field("originalPrice", func(e *jx.Encoder) { encDecimal(e, p.OriginalPrice) })
		e.Field("reducedPrice", func(e *jx.Encoder) { encDecimal(e, p.ReducedPrice) })
		e.Field("hasPromotion", func(e *jx.Encoder) { e.Bool(p.HasPromotion) })
		e.Field("variants", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, v := range p.Variants {
					encVariantPriceOutput(e, v)
				}
			})
		})
	})
}

func encVariantPriceOutput(e *jx.Encoder, v promotion.VariantPriceOutput) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("variantId", func(e *jx.Encoder) { e.Str(v.VariantID) })
		e.Field("sku", func(e *jx.Encoder) { e.Str(v.SKU) })
		e.Field("originalPrice", func(e *jx.Encoder) { encDecimal(e, v.OriginalPrice) })
		e.Field("reducedPrice", func(e *jx.Encoder) { encDecimal(e, v.ReducedPrice) })
		e.Field("saved", func(e *jx.Encoder) { encDecimal(e, v.Saved) })
		e.Field("discountPercentage", func(e *jx.Encoder) { encDecimal(e, v.DiscountPercentage) })
		e.Field("hasPromotion", func(e *jx.Encoder) { e.Bool(v.HasPromotion) })
		e.Field("appliedPromoCodes", func(e *jx.Encoder) { encStrings(e, v.AppliedPromoCodes) })
	})
}
