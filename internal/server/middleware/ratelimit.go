package middleware

import (
	"math"
	"net/http"

	"go.uber.org/zap"

	"freshbonds/backend/internal/api"
	"freshbonds/backend/internal/ratelimit"
)

// RateLimit throttles by client address using the given limiter. Each
// endpoint class passes its own limiter so the counters stay independent.
// Limiter failures fail open: an unavailable counter store must not take
// login down with it.
func RateLimit(l ratelimit.Limiter, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientIP(r.Context())
			d, err := l.Allow(r.Context(), key)
			if err != nil {
				log.Warn("rate limiter unavailable", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !d.Allowed {
				api.TooManyRequests(w, int(math.Ceil(d.RetryAfter.Seconds())))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
