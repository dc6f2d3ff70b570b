package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"

	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/api/response"
)

// APIKeyMiddleware guards internal endpoints with a shared API key.
// The expected key comes from the INTERNAL_API_KEY environment variable and
// clients supply it in the X-API-Key header. Returns 401 Unauthorized when the
// key is missing or does not match. When no key is configured, all requests
// are rejected rather than letting the guard silently disappear.
func APIKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expected := os.Getenv("INTERNAL_API_KEY")
		if expected == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "API key not configured")
			return
		}

		provided := r.Header.Get("X-API-Key")
		if provided == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing API key")
			return
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}
