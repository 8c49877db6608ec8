// Package api wires the chi router: middleware stack, read endpoints, and
// the token-gated ingestion trigger.
package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/courtside/courtside-data/internal/api/handler"
	"github.com/courtside/courtside-data/internal/cache"
	"github.com/courtside/courtside-data/internal/config"
	"github.com/courtside/courtside-data/internal/ingest"
	"github.com/courtside/courtside-data/internal/provider"
	"github.com/courtside/courtside-data/internal/store"
)

// Deps carries everything the router needs. DB may be nil when the store is
// in-memory; Live may be nil to disable the on-demand box-score fallback.
type Deps struct {
	Store   store.Store
	Cache   *cache.Cache
	Config  *config.Config
	DB      handler.DBPinger
	Live    provider.Provider
	Runners map[string]*ingest.Runner
	Logger  *slog.Logger
}

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   d.Config.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control", "Authorization", "X-Ingest-Token"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "Link", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if d.Config.RateLimitEnabled {
		r.Use(RateLimitMiddleware(d.Config.RateLimitRequests, d.Config.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(d.Store, d.Cache, d.Config, d.DB, d.Live, d.Runners, d.Logger)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Players
		r.Get("/players", h.GetPlayers)
		r.Get("/players/last10", h.GetLast10)
		r.Get("/players/leaderboard", h.GetLeaderboard)

		// Games
		r.Get("/team/recent-games", h.GetRecentGames)
		r.Get("/games/{id}/player-stats", h.GetGamePlayerStats)

		// Admin
		r.Post("/admin/ingest", h.TriggerIngest)
	})

	return r
}
