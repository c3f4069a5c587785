// Package main is the entry point for the book catalogue API server.
// It wires together configuration, the database connection, and the HTTP router.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"github.com/aoideee/livros-api/internal/config"
	"github.com/aoideee/livros-api/internal/data"

	_ "github.com/lib/pq" // Register the PostgreSQL driver with database/sql.
)

// appVersion is the current version of the API, shown in logs and the healthcheck.
const appVersion = "1.0.0"

// applicationDependencies bundles every shared resource that HTTP handlers need.
// A pointer to this struct is passed as the receiver on all handler and route methods.
type applicationDependencies struct {
	config *config.Config // Settings read once at startup
	logger *slog.Logger   // Structured logger that writes to stdout
	models data.Models    // Database model layer for all tables
	db     *sql.DB        // Pool behind models, pinged by the healthcheck
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Global)
	slog.SetDefault(logger)

	db, err := openDB(cfg.Database)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("database connection pool established")

	if cfg.Database.AutoMigrate {
		if err := data.EnsureSchema(context.Background(), db); err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		logger.Info("books schema ready")
	}

	app := &applicationDependencies{
		config: cfg,
		logger: logger,
		models: data.NewModels(db),
		db:     db,
	}

	if err := app.serve(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

// newLogger writes human-readable text in development and JSON elsewhere.
// Unknown levels fall back to info.
func newLogger(settings config.Global) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(settings.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if settings.Environment == "development" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// openDB opens a PostgreSQL connection pool using the configured URL,
// then pings the database with a 5-second timeout to confirm it is reachable.
func openDB(settings config.Database) (*sql.DB, error) {
	// sql.Open only validates the DSN format; it does not actually connect yet.
	db, err := sql.Open("postgres", settings.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(settings.MaxOpenConns)
	db.SetMaxIdleConns(settings.MaxIdleConns)
	db.SetConnMaxIdleTime(settings.MaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// PingContext performs a real round-trip to verify the database is reachable.
	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
