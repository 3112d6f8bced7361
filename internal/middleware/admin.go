package middleware

import (
	"crypto/subtle"
	"net/http"

	"POOLSHARE_BACK-END/internal/config"
	"POOLSHARE_BACK-END/internal/utils"
)

// AdminSecretHeader carries the shared secret for administrative endpoints
const AdminSecretHeader = "X-Admin-Secret"

// AdminSecretMiddleware guards administrative operations with a static
// shared secret. The comparison is constant-time over both length and
// content. With no secret configured the gate fails closed with a 500.
func AdminSecretMiddleware(next http.HandlerFunc, cfg *config.AdminConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Secret == "" {
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Server misconfigured", "Admin secret is not configured")
			return
		}

		provided := r.Header.Get(AdminSecretHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(cfg.Secret)) != 1 {
			utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid admin secret")
			return
		}

		next.ServeHTTP(w, r)
	}
}
