package api

import (
	"net/http"

	"github.com/Rrens/movie-catalog/internal/api/handler"
	customMiddleware "github.com/Rrens/movie-catalog/internal/api/middleware"
	"github.com/Rrens/movie-catalog/internal/config"
	"github.com/Rrens/movie-catalog/internal/domain"
	"github.com/Rrens/movie-catalog/internal/external"
	"github.com/Rrens/movie-catalog/internal/metrics"
	"github.com/Rrens/movie-catalog/internal/security"
	"github.com/Rrens/movie-catalog/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// Dependencies are the stores and clients the router wires into handlers
type Dependencies struct {
	Users  domain.UserRepository
	Movies domain.MovieRepository
	Lookup external.Client

	// RateLimiter may be nil to disable rate limiting
	RateLimiter customMiddleware.RateLimiter
	// Ready lists the stores /ready pings; empty means always ready
	Ready []handler.ReadinessCheck
	// Metrics may be nil to disable instrumentation and the /metrics route
	Metrics *metrics.Metrics
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(customMiddleware.Metrics(deps.Metrics))
	r.Use(middleware.Recoverer)
	if cfg.Server.MiddlewareTimeout > 0 {
		r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))
	}

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.Origins(),
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         300,
	}))

	tokens := security.NewTokenManager(cfg.Auth.JWTSecret)

	lookup := deps.Lookup
	if lookup == nil {
		lookup = external.NewNoop()
	}
	if deps.Metrics != nil {
		lookup = external.WithObserver(lookup, deps.Metrics.ExternalLookup)
	}
	log.Info().Str("provider", lookup.Name()).Msg("External movie lookup configured")

	// Initialize services
	authService := service.NewAuthService(deps.Users, tokens, cfg.Auth.TokenTTL)
	movieService := service.NewMovieService(deps.Movies, lookup)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	movieHandler := handler.NewMovieHandler(movieService)

	authMiddleware := customMiddleware.NewAuthMiddleware(tokens, deps.Users, deps.Metrics)
	rateLimitMiddleware := customMiddleware.NewRateLimitMiddleware(deps.RateLimiter, deps.Metrics)

	// Health check
	r.Get("/health", handler.HealthCheck)
	r.Get("/ready", handler.ReadyCheck(deps.Ready...))
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	// Public routes
	r.Group(func(r chi.Router) {
		r.Use(rateLimitMiddleware.Limit)

		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Get("/movies", movieHandler.List)
		r.Get("/movies/{id}", movieHandler.Get)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(rateLimitMiddleware.Limit)
		r.Use(authMiddleware.Authenticate)

		r.Get("/auth/me", authHandler.Me)

		r.Post("/movies", movieHandler.Create)
		r.Put("/movies/{id}", movieHandler.Update)
		r.Delete("/movies/{id}", movieHandler.Delete)
	})

	return r
}
