package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rrens/movie-catalog/internal/api"
	"github.com/Rrens/movie-catalog/internal/api/handler"
	"github.com/Rrens/movie-catalog/internal/config"
	"github.com/Rrens/movie-catalog/internal/external"
	"github.com/Rrens/movie-catalog/internal/external/tmdb"
	"github.com/Rrens/movie-catalog/internal/logger"
	"github.com/Rrens/movie-catalog/internal/metrics"
	"github.com/Rrens/movie-catalog/internal/repository/memory"
	"github.com/Rrens/movie-catalog/internal/repository/mongo"
	"github.com/Rrens/movie-catalog/internal/repository/redis"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file - try multiple locations
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logFile, err := logger.Setup(cfg.Logging)
	if err != nil {
		log.Error().Err(err).Msg("Log file unavailable, logging to stderr only")
	}
	defer logFile.Close()

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("driver", cfg.Database.Driver).
		Msg("Starting movie catalog API server")

	if cfg.Auth.UsesDefaultSecret() {
		log.Warn().Msg("JWT_SECRET is not set, using the built-in default secret")
	}

	deps, cleanup := buildDependencies(cfg)
	defer cleanup()

	router := api.NewRouter(cfg, deps)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func buildDependencies(cfg *config.Config) (api.Dependencies, func()) {
	var (
		deps    api.Dependencies
		closers []func()
	)

	switch cfg.Database.Driver {
	case config.DriverMemory:
		log.Warn().Msg("Using in-memory store, data is lost on restart")
		deps.Users = memory.NewUserRepository()
		deps.Movies = memory.NewMovieRepository()
	default:
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
		db, err := mongo.NewDB(ctx, cfg.Database)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		closers = append(closers, func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := db.Close(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to close database")
			}
		})

		if err := ensureIndexes(cfg.Database.ConnectTimeout, func(ctx context.Context) ([]string, error) {
			return mongo.EnsureIndexes(ctx, db)
		}); err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare database")
		}

		deps.Users = mongo.NewUserRepository(db)
		deps.Movies = mongo.NewMovieRepository(db)
		deps.Ready = append(deps.Ready, handler.ReadinessCheck{Name: "database", Pinger: db})
	}

	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(context.Background(), cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		deps.Ready = append(deps.Ready, handler.ReadinessCheck{Name: "redis", Pinger: redisClient})

		deps.RateLimiter = redis.NewRateLimiter(
			redisClient,
			cfg.Security.RateLimit.RequestsPerMinute,
			cfg.Security.RateLimit.Burst,
		)
	}

	if cfg.Metrics.Enabled {
		deps.Metrics = metrics.New()
	}

	if cfg.TMDB.Enabled() {
		deps.Lookup = tmdb.NewClient(tmdb.Config{
			APIKey:       cfg.TMDB.APIKey,
			BaseURL:      cfg.TMDB.BaseURL,
			ImageBaseURL: cfg.TMDB.ImageBaseURL,
			Timeout:      cfg.TMDB.Timeout,
		}, nil)
	} else {
		log.Info().Msg("TMDB_API_KEY is not set, external enrichment disabled")
		deps.Lookup = external.NewNoop()
	}

	return deps, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
}

// ensureIndexes runs the index bootstrap under its own deadline so search and
// the unique email constraint work on a fresh database.
func ensureIndexes(timeout time.Duration, ensure func(ctx context.Context) ([]string, error)) error {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	created, err := ensure(ctx)
	for _, name := range created {
		log.Info().Str("index", name).Msg("Index ready")
	}
	if err != nil {
		return fmt.Errorf("failed to ensure indexes: %w", err)
	}
	return nil
}
