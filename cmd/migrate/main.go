package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Rrens/movie-catalog/internal/config"
	"github.com/Rrens/movie-catalog/internal/repository/mongo"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Database.Driver != config.DriverMongo {
		fmt.Printf("Database driver %q needs no indexes, nothing to do\n", cfg.Database.Driver)
		return nil
	}

	fmt.Printf("Connecting to database %s...\n", cfg.Database.Name)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	db, err := mongo.NewDB(ctx, cfg.Database)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close(context.Background())

	created, err := mongo.EnsureIndexes(context.Background(), db)
	for _, name := range created {
		fmt.Printf("Index ready: %s\n", name)
	}
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
