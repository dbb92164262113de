package middleware

import (
	"net/http"
	"strconv"

	"github.com/shareit/shareit-api/internal/pkg/logger"
	"github.com/shareit/shareit-api/internal/pkg/metrics"
	"github.com/shareit/shareit-api/internal/pkg/params"
	"github.com/shareit/shareit-api/internal/pkg/ratelimit"
	"github.com/shareit/shareit-api/internal/pkg/response"
)

// RateLimit rejects callers over the limiter's budget with 429. Callers are keyed
// by the parsed X-Sharer-User-Id, falling back to client IP. Limiter failures let the request through.
func RateLimit(limiter ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ip:" + ClientIP(r)
			if id, err := params.ID(r.Header.Get(UserIDHeader)); err == nil {
				key = "user:" + strconv.FormatInt(id, 10)
			}

			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.LogWarn(r.Context(), "Rate limiter unavailable", "error", err.Error(), "key", key)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				metrics.IncRateLimited()
				response.TooManyRequests(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
