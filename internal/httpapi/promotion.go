package httpapi

import (
	"net/http"

	"github.com/go-faster/jx"
)

// ApplyPromotion evaluates a promotion code against a cart snapshot.
// The response is always 200 with an evaluation outcome body; rejected
// codes are a business result, not an HTTP error.
func (h *Handler) ApplyPromotion(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	req, err := decCartRequest(body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Code == "" {
		writeError(w, r, http.StatusBadRequest, "code required")
		return
	}

	res, err := h.promotions.ApplyCode(r.Context(), req.Code, req.Cart, req.UserID)
	if err != nil {
		writeInternalError(w, r, err, "apply promotion")
		return
	}

	var e jx.Encoder
	encApplicationResult(&e, res)
	writeJSON(w, http.StatusOK, &e)
}
