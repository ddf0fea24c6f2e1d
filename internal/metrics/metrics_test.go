package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := New()

	m.ObserveRequest(http.MethodGet, "/movies", http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/movies", http.StatusOK, 30*time.Millisecond)
	m.AuthRejected(AuthExpired)
	m.AuthRejected(AuthInvalid)
	m.AuthRejected(AuthInvalid)
	m.RateLimited("/movies")
	m.ExternalLookup("tmdb", "search", "error")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestTotal.WithLabelValues("GET", "/movies", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authRejections.WithLabelValues(AuthExpired)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.authRejections.WithLabelValues(AuthInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimitHits.WithLabelValues("/movies")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.externalLookups.WithLabelValues("tmdb", "search", "error")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
		m.AuthRejected(AuthMissing)
		m.RateLimited("/")
		m.ExternalLookup("tmdb", "detail", "ok")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.AuthRejected(AuthMissing)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `movie_catalog_auth_rejections_total{reason="missing"} 1`)
}
