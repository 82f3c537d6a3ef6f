package httpapi

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/artshop/promotions-api/internal/domain/product"
)

// ListProducts returns every product in the catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeInternalError(w, r, err, "list products")
		return
	}

	var e jx.Encoder
	e.Arr(func(e *jx.Encoder) {
		for _, p := range products {
			h.encProduct(e, p)
		}
	})
	writeJSON(w, http.StatusOK, &e)
}

// GetProduct returns a single product by ID.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), r.PathValue("productId"))
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "product not found")
			return
		}
		writeInternalError(w, r, err, "get product")
		return
	}

	var e jx.Encoder
	h.encProduct(&e, *p)
	writeJSON(w, http.StatusOK, &e)
}

// encProduct writes a catalog product with its variants. Image paths
// are prefixed with the configured imageBaseURL.
func (h *Handler) encProduct(e *jx.Encoder, p product.Product) {
	base := h.imageBaseURL
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(p.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("price", func(e *jx.Encoder) { encDecimal(e, p.Price) })
		e.Field("categorySlug", func(e *jx.Encoder) { e.Str(p.CategorySlug) })
		e.Field("subCategorySlug", func(e *jx.Encoder) { e.Str(p.SubCategorySlug) })
		e.Field("formatId", func(e *jx.Encoder) { e.Str(p.FormatID) })
		e.Field("image", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("thumbnail", func(e *jx.Encoder) { e.Str(base + p.Image.Thumbnail) })
				e.Field("mobile", func(e *jx.Encoder) { e.Str(base + p.Image.Mobile) })
				e.Field("tablet", func(e *jx.Encoder) { e.Str(base + p.Image.Tablet) })
				e.Field("desktop", func(e *jx.Encoder) { e.Str(base + p.Image.Desktop) })
			})
		})
		e.Field("variants", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, v := range p.Variants {
					e.Obj(func(e *jx.Encoder) {
						e.Field("id", func(e *jx.Encoder) { e.Str(v.ID) })
						e.Field("sku", func(e *jx.Encoder) { e.Str(v.SKU) })
						e.Field("price", func(e *jx.Encoder) { encDecimal(e, v.Price) })
						e.Field("formatId", func(e *jx.Encoder) { e.Str(v.FormatID) })
					})
				}
			})
		})
	})
}
