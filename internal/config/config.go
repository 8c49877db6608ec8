// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/ingest.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Table names — single source of truth, matches the store schema.
const (
	PlayersTable     = "players"
	SeasonStatsTable = "player_season_stats"
	Last10StatsTable = "player_last10_stats"
	RecentGamesTable = "team_recent_games"
	GameStatsTable   = "game_player_stats"
	RunsTable        = "ingestion_runs"
)

// Upstream tiers. The free tier forbids deep pagination and the season
// averages endpoint; the pipeline degrades instead of burning the budget.
const (
	TierFree = "free"
	TierPro  = "pro"
)

// Config is populated once at process start and passed down explicitly.
// Nothing below the entrypoints reads the environment.
type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production

	// CORS
	CORSAllowOrigins []string

	// API rate limiting (inbound)
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Ingestion trigger shared secret
	IngestToken string

	// Team scope and default season
	TeamAbbr      string
	DefaultSeason int

	// BallDontLie (Provider B)
	BDLBaseURL string
	BDLAPIKey  string
	BDLTier    string // free | pro

	// NBA Stats (Provider A)
	NBAStatsBaseURL   string
	NBAStatsUserAgent string
	NBAStatsReferer   string
	NBAStatsOrigin    string

	// Upstream fetch behavior. These cap every retry and pagination loop;
	// they are configuration points, not hardcoded limits.
	FetchBaseDelay   time.Duration
	FetchMaxAttempts int // simple calls
	FetchMaxPaged    int // paginated loops
	PerPage          int
	TeamsPages       int // team-ID resolution page cap
	RosterPages      int // full-roster runaway guard
	GamesPages       int
	GamesCollectCap  int
	BoxscorePages    int
	SeasonAvgBatch   int // player ids per season-averages request
	RecentWindow     int
	UpstreamPerMin   int // token-bucket pacing for upstream calls

	// Cache
	CacheEnabled bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", envOr("POSTGRES_URL", ""))
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL or POSTGRES_URL must be set")
	}

	return &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		IngestToken: strings.TrimSpace(envOr("INGEST_TOKEN", "")),

		TeamAbbr:      strings.ToUpper(envOr("TEAM_ABBR", "CHA")),
		DefaultSeason: envInt("DEFAULT_SEASON", 2024),

		BDLBaseURL: envOr("NBA_API_BASE_URL", "https://api.balldontlie.io/v1"),
		BDLAPIKey:  strings.TrimSpace(envOr("NBA_API_KEY", "")),
		BDLTier:    strings.ToLower(envOr("NBA_API_TIER", TierFree)),

		NBAStatsBaseURL: envOr("NBA_STATS_BASE_URL", "https://stats.nba.com/stats"),
		NBAStatsUserAgent: envOr("NBA_STATS_USER_AGENT",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"),
		NBAStatsReferer: envOr("NBA_STATS_REFERER", "https://www.nba.com/"),
		NBAStatsOrigin:  envOr("NBA_STATS_ORIGIN", "https://www.nba.com"),

		FetchBaseDelay:   time.Duration(envInt("FETCH_BASE_DELAY_MS", 1000)) * time.Millisecond,
		FetchMaxAttempts: envInt("FETCH_MAX_ATTEMPTS", 3),
		FetchMaxPaged:    envInt("FETCH_MAX_PAGED_ATTEMPTS", 10),
		PerPage:          envInt("UPSTREAM_PER_PAGE", 100),
		TeamsPages:       envInt("TEAMS_PAGE_CAP", 5),
		RosterPages:      envInt("ROSTER_PAGE_CAP", 50),
		GamesPages:       envInt("GAMES_PAGE_CAP", 5),
		GamesCollectCap:  envInt("GAMES_COLLECT_CAP", 40),
		BoxscorePages:    envInt("BOXSCORE_PAGE_CAP", 10),
		SeasonAvgBatch:   envInt("SEASON_AVG_BATCH", 25),
		RecentWindow:     envInt("RECENT_WINDOW", 10),
		UpstreamPerMin:   envInt("UPSTREAM_REQUESTS_PER_MINUTE", 60),

		CacheEnabled: envBool("CACHE_ENABLED", true),
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
