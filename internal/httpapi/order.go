package httpapi

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/artshop/promotions-api/internal/domain/order"
)

// PlaceOrder places an order with an optional promo code. A rejected
// code does not fail the order; its outcome is folded into the
// response. Unknown products and invalid quantities are 422.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	req, err := decOrderRequest(body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}

	result, err := h.orders.PlaceOrder(r.Context(), req)
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	var e jx.Encoder
	h.encOrderResult(&e, result)
	writeJSON(w, http.StatusOK, &e)
}

// writeOrderError maps checkout domain errors onto HTTP statuses.
func (h *Handler) writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, order.ErrEmptyItems) {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var iqErr *order.InvalidQuantityError
	if errors.As(err, &iqErr) {
		writeError(w, r, http.StatusUnprocessableEntity, iqErr.Error())
		return
	}

	var pnfErr *order.ProductNotFoundError
	if errors.As(err, &pnfErr) {
		writeError(w, r, http.StatusUnprocessableEntity, pnfErr.Error())
		return
	}

	writeInternalError(w, r, err, "place order")
}

func decOrderRequest(data []byte) (order.PlaceOrderRequest, error) {
	var req order.PlaceOrderRequest
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "promoCode":
			req.PromoCode, err = d.Str()
		case "userId":
			req.UserID, err = d.Str()
		case "items":
			err = d.Arr(func(d *jx.Decoder) error {
				var item order.OrderItem
				err := d.Obj(func(d *jx.Decoder, key string) error {
					var err error
					switch key {
					case "productId":
						item.ProductID, err = d.Str()
					case "variantId":
						item.VariantID, err = d.Str()
					case "quantity":
						item.Quantity, err = d.Int()
					default:
						err = d.Skip()
					}
					return err
				})
				if err != nil {
					return err
				}
				req.Items = append(req.Items, item)
				return nil
			})
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return order.PlaceOrderRequest{}, err
	}
	return req, nil
}

func (h *Handler) encOrderResult(e *jx.Encoder, result *order.PlaceOrderResult) {
	o := result.Order
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, item := range o.Items {
					e.Obj(func(e *jx.Encoder) {
						e.Field("productId", func(e *jx.Encoder) { e.Str(item.ProductID) })
						if item.VariantID != "" {
							e.Field("variantId", func(e *jx.Encoder) { e.Str(item.VariantID) })
						}
						e.Field("quantity", func(e *jx.Encoder) { e.Int(item.Quantity) })
					})
				}
			})
		})
		e.Field("subtotal", func(e *jx.Encoder) { encDecimal(e, o.Subtotal) })
		e.Field("total", func(e *jx.Encoder) { encDecimal(e, o.Total) })
		e.Field("discounts", func(e *jx.Encoder) { encDecimal(e, o.Discounts) })
		if o.PromoCode != "" {
			e.Field("promoCode", func(e *jx.Encoder) { e.Str(o.PromoCode) })
		}
		e.Field("freeShipping", func(e *jx.Encoder) { e.Bool(o.FreeShipping) })
		e.Field("products", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, p := range result.Products {
					h.encProduct(e, p)
				}
			})
		})
		if result.Promo != nil {
			e.Field("promotion", func(e *jx.Encoder) { encApplicationResult(e, *result.Promo) })
		}
	})
}
