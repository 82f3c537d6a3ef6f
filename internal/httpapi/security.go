package httpapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/artshop/promotions-api/internal/domain/auth"
)

// apiKeyHeader carries the client's API key.
const apiKeyHeader = "api_key"

// APIKeyAuth authenticates requests via HMAC-SHA256 hashed API keys.
type APIKeyAuth struct {
	apikeys auth.Repository
	pepper  []byte
}

// NewAPIKeyAuth creates an APIKeyAuth with the given API key repository
// and HMAC pepper.
func NewAPIKeyAuth(apikeys auth.Repository, pepper []byte) *APIKeyAuth {
	return &APIKeyAuth{
		apikeys: apikeys,
		pepper:  pepper,
	}
}

// Require wraps a handler with API key authentication. The key is HMAC
// hashed with the server pepper, looked up, and compared in constant
// time to prevent timing attacks.
func (a *APIKeyAuth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(apiKeyHeader)
		if key == "" || !a.authenticate(r, key) {
			writeError(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *APIKeyAuth) authenticate(r *http.Request, key string) bool {
	mac := hmac.New(sha256.New, a.pepper)
	mac.Write([]byte(key))
	hash := mac.Sum(nil)

	info, err := a.apikeys.FindByHash(r.Context(), hex.EncodeToString(hash))
	if err != nil {
		return false
	}

	// The lookup already matched, but the stored hash could differ from
	// what we computed if the repository returns a stale row.
	stored, err := hex.DecodeString(info.KeyHash)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(hash, stored) == 1
}
