package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Rrens/movie-catalog/internal/api/response"
	"github.com/Rrens/movie-catalog/internal/domain"
	"github.com/Rrens/movie-catalog/internal/metrics"
	"github.com/Rrens/movie-catalog/internal/security"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type contextKey string

const userKey contextKey = "user"

const unauthorizedMessage = "unauthorized"

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	tokens  *security.TokenManager
	users   domain.UserRepository
	metrics *metrics.Metrics
}

// NewAuthMiddleware creates a new auth middleware. m may be nil.
func NewAuthMiddleware(tokens *security.TokenManager, users domain.UserRepository, m *metrics.Metrics) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, metrics: m}
}

// Authenticate validates the bearer token and attaches the account to the
// request context. The next handler only runs for a verified, existing account.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			m.metrics.AuthRejected(metrics.AuthMissing)
			response.Unauthorized(w, unauthorizedMessage)
			return
		}

		userID, err := m.tokens.Verify(token)
		if err != nil {
			event := log.Debug().Str("request_id", chimw.GetReqID(r.Context()))
			if errors.Is(err, security.ErrTokenExpired) {
				m.metrics.AuthRejected(metrics.AuthExpired)
				event.Msg("token expired")
			} else {
				m.metrics.AuthRejected(metrics.AuthInvalid)
				event.Err(err).Msg("token invalid")
			}
			response.Unauthorized(w, unauthorizedMessage)
			return
		}

		user, err := m.users.FindByID(r.Context(), userID)
		if err != nil {
			log.Error().Err(err).Str("request_id", chimw.GetReqID(r.Context())).Msg("failed to load authenticated user")
			response.InternalError(w, "internal server error")
			return
		}
		if user == nil {
			m.metrics.AuthRejected(metrics.AuthUnknownAccount)
			response.Unauthorized(w, unauthorizedMessage)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// WithUser returns a context carrying the authenticated user
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext gets the authenticated user from context
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userKey).(*domain.User)
	return user, ok && user != nil
}
