package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Rrens/movie-catalog/internal/domain"
	"github.com/Rrens/movie-catalog/internal/metrics"
	"github.com/Rrens/movie-catalog/internal/repository/memory"
	"github.com/Rrens/movie-catalog/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingUsers struct {
	domain.UserRepository
}

func (failingUsers) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return nil, errors.New("connection reset")
}

func setupAuth(t *testing.T) (*AuthMiddleware, *security.TokenManager, *domain.User) {
	t.Helper()
	return setupAuthWithMetrics(t, nil)
}

func setupAuthWithMetrics(t *testing.T, m *metrics.Metrics) (*AuthMiddleware, *security.TokenManager, *domain.User) {
	t.Helper()

	users := memory.NewUserRepository()
	user := &domain.User{Email: "a@x.com", Name: "Ann"}
	require.NoError(t, users.Create(context.Background(), user))

	tokens := security.NewTokenManager("secret")
	return NewAuthMiddleware(tokens, users, m), tokens, user
}

func serve(mw func(http.Handler) http.Handler, header string) (*httptest.ResponseRecorder, *domain.User, bool) {
	var (
		seen   *domain.User
		called bool
	)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		seen, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, req)
	return rec, seen, called
}

func TestAuthenticate_Success(t *testing.T) {
	auth, tokens, user := setupAuth(t)
	token, err := tokens.Issue(user.ID, "1h")
	require.NoError(t, err)

	for _, scheme := range []string{"Bearer", "bearer", "BEARER"} {
		rec, seen, called := serve(auth.Authenticate, scheme+" "+token)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
		require.NotNil(t, seen)
		assert.Equal(t, user.ID, seen.ID)
	}
}

func TestAuthenticate_Rejected(t *testing.T) {
	auth, tokens, user := setupAuth(t)

	past := time.Now().Add(-48 * time.Hour)
	expired, err := security.NewTokenManager("secret", security.WithClock(func() time.Time { return past })).Issue(user.ID, "1d")
	require.NoError(t, err)

	foreign, err := security.NewTokenManager("other-secret").Issue(user.ID, "1h")
	require.NoError(t, err)

	ghost, err := tokens.Issue("000000000000000000000000", "1h")
	require.NoError(t, err)

	valid, err := tokens.Issue(user.ID, "1h")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic " + valid},
		{"no token", "Bearer "},
		{"garbage", "Bearer not-a-jwt"},
		{"expired", "Bearer " + expired},
		{"wrong secret", "Bearer " + foreign},
		{"unknown account", "Bearer " + ghost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _, called := serve(auth.Authenticate, tt.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, called)
			assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
		})
	}
}

func TestAuthenticate_StoreFailure(t *testing.T) {
	tokens := security.NewTokenManager("secret")
	auth := NewAuthMiddleware(tokens, failingUsers{}, nil)

	token, err := tokens.Issue("user-1", "1h")
	require.NoError(t, err)

	rec, _, called := serve(auth.Authenticate, "Bearer "+token)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, called)
}

func TestUserFromContext_Empty(t *testing.T) {
	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)
}

func TestAuthenticate_CountsRejections(t *testing.T) {
	m := metrics.New()
	auth, _, user := setupAuthWithMetrics(t, m)

	past := time.Now().Add(-48 * time.Hour)
	expired, err := security.NewTokenManager("secret", security.WithClock(func() time.Time { return past })).Issue(user.ID, "1d")
	require.NoError(t, err)

	serve(auth.Authenticate, "")
	serve(auth.Authenticate, "Bearer "+expired)
	serve(auth.Authenticate, "Bearer garbage")

	body := scrape(t, m)
	assert.Contains(t, body, `movie_catalog_auth_rejections_total{reason="missing"} 1`)
	assert.Contains(t, body, `movie_catalog_auth_rejections_total{reason="expired"} 1`)
	assert.Contains(t, body, `movie_catalog_auth_rejections_total{reason="invalid"} 1`)
}

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}
