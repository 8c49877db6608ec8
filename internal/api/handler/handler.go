// Package handler provides HTTP handlers for all API endpoints. Read
// endpoints serve from the store through the in-memory cache; the ingest
// endpoint triggers a full pipeline run.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/courtside/courtside-data/internal/api/respond"
	"github.com/courtside/courtside-data/internal/cache"
	"github.com/courtside/courtside-data/internal/config"
	"github.com/courtside/courtside-data/internal/ingest"
	"github.com/courtside/courtside-data/internal/provider"
	"github.com/courtside/courtside-data/internal/store"
)

// DBPinger reports database reachability. Nil when the store is not backed
// by Postgres (tests, local in-memory mode).
type DBPinger interface {
	HealthCheck(ctx context.Context) error
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	store   store.Store
	cache   *cache.Cache
	cfg     *config.Config
	db      DBPinger
	live    provider.Provider
	runners map[string]*ingest.Runner
	logger  *slog.Logger
}

// New creates a Handler with shared dependencies. live is the provider used
// for on-demand box-score fetches when the store has no rows; runners are
// keyed by the provider name accepted by the ingest endpoint.
func New(st store.Store, c *cache.Cache, cfg *config.Config, db DBPinger,
	live provider.Provider, runners map[string]*ingest.Runner, logger *slog.Logger) *Handler {
	return &Handler{
		store:   st,
		cache:   c,
		cfg:     cfg,
		db:      db,
		live:    live,
		runners: runners,
		logger:  logger,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version and status.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Courtside Data API",
		"version": "1.0.0",
		"status":  "running",
		"team":    h.cfg.TeamAbbr,
		"docs":    "/docs",
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"database":  "in-memory",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	if err := h.db.HealthCheck(r.Context()); err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns in-memory cache statistics (active keys, expired keys).
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
