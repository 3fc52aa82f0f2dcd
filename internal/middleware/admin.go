package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/AnshRaj112/luna-backend/internal/apperr"
	"github.com/AnshRaj112/luna-backend/pkg/utils"
)

// HeaderAdminKey carries the raw admin key.
const HeaderAdminKey = "X-Admin-Key"

// TokenValidator checks admin bearer tokens. *services.AdminSessions satisfies it.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (bool, error)
}

// RequireAdmin admits requests carrying either the admin key (verified against
// keyHash) or a bearer token from an admin login. An empty keyHash disables
// every admin route.
func RequireAdmin(keyHash string, tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if keyHash == "" {
				writeError(w, http.StatusForbidden, apperr.AuthPermissionDenied, "admin routes are disabled")
				return
			}

			if key := r.Header.Get(HeaderAdminKey); key != "" {
				ok, err := utils.VerifySecret(key, keyHash)
				if err != nil {
					log.Printf("⚠️ ADMIN_KEY_HASH is not a valid argon2id hash: %v", err)
				}
				if ok {
					next.ServeHTTP(w, r)
					return
				}
				writeError(w, http.StatusUnauthorized, apperr.AuthUnauthorized, "invalid admin key")
				return
			}

			if token := BearerToken(r); token != "" && tokens != nil {
				ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
				ok, err := tokens.Validate(ctx, token)
				cancel()
				if err != nil {
					log.Printf("⚠️ Admin session lookup failed: %v", err)
				}
				if ok {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusUnauthorized, apperr.AuthUnauthorized, "admin credentials required")
		})
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(auth[7:])
}
