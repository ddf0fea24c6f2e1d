package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/Rrens/movie-catalog/internal/api/response"
	"github.com/Rrens/movie-catalog/internal/metrics"
	"github.com/Rrens/movie-catalog/internal/repository/redis"
	"github.com/rs/zerolog/log"
)

// RateLimiter decides whether a keyed request fits its window
type RateLimiter interface {
	Allow(ctx context.Context, key string) (redis.Decision, error)
}

// RateLimitMiddleware handles rate limiting
type RateLimitMiddleware struct {
	limiter RateLimiter
	metrics *metrics.Metrics
}

// NewRateLimitMiddleware creates a new rate limit middleware. A nil limiter
// disables limiting.
func NewRateLimitMiddleware(limiter RateLimiter, m *metrics.Metrics) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter, metrics: m}
}

// Limit applies rate limiting keyed by client address. It runs ahead of the
// auth gate so rejected tokens still count. Limiter failures let the request
// through.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	if m == nil || m.limiter == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision, err := m.limiter.Allow(r.Context(), rateLimitKey(r))
		if err != nil {
			log.Warn().Err(err).Msg("rate limiter unavailable")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			m.metrics.RateLimited(routePattern(r))
			response.TooManyRequests(w, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func rateLimitKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
