package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/AnshRaj112/luna-backend/internal/apperr"
	"github.com/AnshRaj112/luna-backend/internal/database"
	"github.com/AnshRaj112/luna-backend/pkg/clientip"
)

// RateLimitKeyPrefix is the Redis key prefix for rate limiting
const RateLimitKeyPrefix = "ratelimit:"

// RedisRateLimit is a fixed-window limiter shared by every instance through
// Redis. Each (scope, IP) pair may make max requests per window. Without Redis,
// or when Redis errors, requests pass (fail open).
func RedisRateLimit(scope string, max int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := database.RedisClient
			if client == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), time.Second)
			defer cancel()

			key := fmt.Sprintf("%s%s:%s", RateLimitKeyPrefix, scope, clientip.RealClientIP(r))
			pipe := client.TxPipeline()
			incr := pipe.Incr(ctx, key)
			pipe.ExpireNX(ctx, key, window)
			if _, err := pipe.Exec(ctx); err != nil {
				log.Printf("⚠️ Rate limit check failed, allowing request: %v", err)
				next.ServeHTTP(w, r)
				return
			}

			count := int(incr.Val())
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(max))
			remaining := max - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if count > max {
				if ttl, err := client.TTL(ctx, key).Result(); err == nil && ttl > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(ttl.Seconds())+1))
				}
				writeError(w, http.StatusTooManyRequests, apperr.ResourceExhausted, "Rate limit exceeded. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
