package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/AnshRaj112/luna-backend/internal/apperr"
	"github.com/AnshRaj112/luna-backend/pkg/clientip"
	"golang.org/x/time/rate"
)

// Chat history is polled when the UI switches sessions: 30 req/min per IP,
// burst 20.
const (
	chatHistoryRPS   = 0.5
	chatHistoryBurst = 20
)

var chatHistoryLimiter = NewIPRateLimiter(rate.Limit(chatHistoryRPS), chatHistoryBurst)

// ChatHistoryRateLimit applies rate limiting only to GET /api/chat/history.
func ChatHistoryRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || !strings.HasPrefix(r.URL.Path, "/api/chat/history") {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(chatHistoryBurst))
		if !chatHistoryLimiter.Allow(clientip.RealClientIP(r)) {
			w.Header().Set("X-RateLimit-Remaining", "0")
			writeError(w, http.StatusTooManyRequests, apperr.ResourceExhausted, "Too many chat history requests. Please slow down.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
