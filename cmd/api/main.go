// Command api is the Courtside Data API server.
//
// Usage:
//
//	courtside-api
//	API_PORT=8080 courtside-api

// @title Courtside Data API
// @version 1.0.0
// @description Single-team NBA statistics API: roster, season and last-10 averages, recent games, per-game box scores, and a token-gated ingestion trigger.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/courtside/courtside-data/docs" // swagger docs
	"github.com/courtside/courtside-data/internal/api"
	"github.com/courtside/courtside-data/internal/cache"
	"github.com/courtside/courtside-data/internal/config"
	"github.com/courtside/courtside-data/internal/db"
	"github.com/courtside/courtside-data/internal/ingest"
	"github.com/courtside/courtside-data/internal/provider"
	"github.com/courtside/courtside-data/internal/provider/bdl"
	"github.com/courtside/courtside-data/internal/provider/nbastats"
	"github.com/courtside/courtside-data/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to database
	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	// Initialize cache
	appCache := cache.New(cfg.CacheEnabled)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Providers and ingestion runners
	st := store.NewPostgres(pool.Pool)
	bdlAdapter, nbaAdapter := buildProviders(cfg, logger)
	runners := map[string]*ingest.Runner{
		"bdl":      ingest.NewRunner(st, bdlAdapter, cfg, logger),
		"nbastats": ingest.NewRunner(st, nbaAdapter, cfg, logger),
	}

	// Create router
	router := api.NewRouter(api.Deps{
		Store:   st,
		Cache:   appCache,
		Config:  cfg,
		DB:      pool,
		Live:    bdlAdapter,
		Runners: runners,
		Logger:  logger,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Courtside Data API",
			"addr", addr,
			"environment", cfg.Environment,
			"team", cfg.TeamAbbr,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}

// buildProviders constructs both upstream adapters on a shared paced client
// each, configured from the environment.
func buildProviders(cfg *config.Config, logger *slog.Logger) (*bdl.Adapter, *nbastats.Adapter) {
	clientOpts := provider.ClientOptions{
		BaseDelay:         cfg.FetchBaseDelay,
		MaxAttempts:       cfg.FetchMaxAttempts,
		MaxPagedAttempts:  cfg.FetchMaxPaged,
		RequestsPerMinute: cfg.UpstreamPerMin,
	}

	bdlAdapter := bdl.New(provider.NewClient(clientOpts, logger), bdl.Options{
		BaseURL:         cfg.BDLBaseURL,
		APIKey:          cfg.BDLAPIKey,
		PerPage:         cfg.PerPage,
		TeamsPages:      cfg.TeamsPages,
		RosterPages:     cfg.RosterPages,
		GamesPages:      cfg.GamesPages,
		GamesCollectCap: cfg.GamesCollectCap,
		BoxscorePages:   cfg.BoxscorePages,
		SeasonAvgBatch:  cfg.SeasonAvgBatch,
	}, logger)

	nbaAdapter := nbastats.New(provider.NewClient(clientOpts, logger), nbastats.Options{
		BaseURL:   cfg.NBAStatsBaseURL,
		UserAgent: cfg.NBAStatsUserAgent,
		Referer:   cfg.NBAStatsReferer,
		Origin:    cfg.NBAStatsOrigin,
		TeamAbbr:  cfg.TeamAbbr,
	}, logger)

	return bdlAdapter, nbaAdapter
}
