package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/AnshRaj112/luna-backend/internal/apperr"
	"github.com/AnshRaj112/luna-backend/internal/middleware"
	"github.com/AnshRaj112/luna-backend/internal/services"
	"github.com/AnshRaj112/luna-backend/pkg/utils"
)

// Cache resources flushed by DELETE /api/admin/cache.
var adminCachePrefixes = []string{"summary", "translate", "search"}

type AdminLoginRequest struct {
	Key string `json:"key"`
}

type AdminLoginResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AdminLogin exchanges the admin key for a bearer token valid for 24h.
func AdminLogin(w http.ResponseWriter, r *http.Request) {
	if appConfig == nil || appConfig.AdminKeyHash == "" {
		writeErrorMessage(w, http.StatusForbidden, apperr.AuthPermissionDenied, "admin routes are disabled")
		return
	}

	var req AdminLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Key == "" {
		writeErrorMessage(w, http.StatusBadRequest, apperr.InputRequiredMissing, "key is required")
		return
	}

	ok, err := utils.VerifySecret(req.Key, appConfig.AdminKeyHash)
	if err != nil {
		log.Printf("⚠️ ADMIN_KEY_HASH is not a valid argon2id hash: %v", err)
	}
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, apperr.AuthUnauthorized, "invalid admin key")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	token, err := adminSessions.Create(ctx)
	if err != nil {
		writeError(w, err, "failed to create admin session")
		return
	}

	log.Println("✅ Admin logged in")
	writeJSON(w, http.StatusOK, AdminLoginResponse{
		Success:   true,
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(services.AdminSessionDuration),
	})
}

// AdminLogout drops the bearer token of the request, if any.
func AdminLogout(w http.ResponseWriter, r *http.Request) {
	if err := adminSessions.Invalidate(r.Context(), middleware.BearerToken(r)); err != nil {
		writeError(w, err, "failed to end admin session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ResetDatabase restores the seed records.
func ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := responseStore.Reset(r.Context()); err != nil {
		writeError(w, err, "데이터베이스를 초기화하는 중 오류가 발생했습니다.")
		return
	}
	log.Println("🧹 Response store reset to seed records")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Database reset to seed records",
	})
}

// FlushCache clears the summarizer, translator and search caches.
func FlushCache(w http.ResponseWriter, r *http.Request) {
	flushed := map[string]int{}
	total := 0
	for _, prefix := range adminCachePrefixes {
		n, err := cacheService.FlushPrefix(r.Context(), prefix)
		if err != nil {
			writeError(w, err, "failed to flush cache")
			return
		}
		flushed[prefix] = n
		total += n
	}
	log.Printf("🧹 Flushed %d cached entries", total)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"flushed": flushed,
		"total":   total,
	})
}
