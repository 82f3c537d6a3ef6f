// Package httpapi exposes the promotion engine over HTTP. Handlers are
// hand-written on net/http with jx for JSON encoding; every response
// body is built through an explicit encoder so money values round-trip
// as exact decimal numbers.
package httpapi

import (
	"io"
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/artshop/promotions-api/internal/domain/order"
	"github.com/artshop/promotions-api/internal/domain/product"
	"github.com/artshop/promotions-api/internal/domain/promotion"
)

// maxBodyBytes caps request body reads.
const maxBodyBytes = 1 << 20

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product responses.
	// When empty, image paths are returned as stored in the database.
	ImageBaseURL string
}

// Handler serves the public API: catalog, promotion application, batch
// pricing, and order placement.
type Handler struct {
	products     product.Repository
	promotions   *promotion.Service
	orders       *order.Service
	imageBaseURL string
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg Config,
	products product.Repository,
	promotions *promotion.Service,
	orders *order.Service,
) *Handler {
	return &Handler{
		products:     products,
		promotions:   promotions,
		orders:       orders,
		imageBaseURL: cfg.ImageBaseURL,
	}
}

// Routes registers every API route on a fresh mux. Order placement
// mutates state and sits behind API key authentication.
func (h *Handler) Routes(auth *APIKeyAuth) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/{productId}", h.GetProduct)
	mux.HandleFunc("POST /api/promotions/apply", h.ApplyPromotion)
	mux.HandleFunc("POST /api/pricing/quote", h.Quote)
	mux.Handle("POST /api/orders", auth.Require(http.HandlerFunc(h.PlaceOrder)))
	return mux
}

// readBody reads and returns the request body, bounded by maxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "unable to read request body")
		return nil, false
	}
	return body, true
}

// writeJSON writes the encoder's buffer as an application/json response.
func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError writes the uniform {code, message} error body.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Int(status) })
		e.Field("message", func(e *jx.Encoder) { e.Str(message) })
	})
	writeJSON(w, status, &e)
}

// writeInternalError logs the failure with the request-scoped logger
// and responds 500 without leaking details.
func writeInternalError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	zctx.From(r.Context()).Error(msg, zap.Error(err))
	writeError(w, r, http.StatusInternalServerError, "internal error")
}
