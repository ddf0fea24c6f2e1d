package handler

import (
	"context"
	"net/http"

	"github.com/Rrens/movie-catalog/internal/api/response"
	"github.com/rs/zerolog/log"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadinessCheck names a backing store for the readiness endpoint
type ReadinessCheck struct {
	Name   string
	Pinger Pinger
}

// ReadyCheck returns readiness status including store connectivity. With no
// checks the service is always ready.
func ReadyCheck(checks ...ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if check.Pinger == nil {
				continue
			}
			if err := check.Pinger.Ping(r.Context()); err != nil {
				log.Warn().Err(err).Str("dependency", check.Name).Msg("readiness check failed")
				response.ServiceUnavailable(w, check.Name+" not ready")
				return
			}
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}
