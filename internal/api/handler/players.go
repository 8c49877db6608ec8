package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/courtside/courtside-data/internal/api/respond"
	"github.com/courtside/courtside-data/internal/cache"
	"github.com/courtside/courtside-data/internal/model"
	"github.com/courtside/courtside-data/internal/normalize"
	"github.com/courtside/courtside-data/internal/query"
)

// playersResponse is the envelope every player-list endpoint returns.
// LastUpdated is the RFC3339 time the payload was built; cached responses
// keep the timestamp of the build that filled the cache.
type playersResponse struct {
	Players     []model.PlayerStats `json:"players"`
	LastUpdated string              `json:"lastUpdated"`
}

// leaderboardResponse wraps the per-metric leaderboard.
type leaderboardResponse struct {
	Metric      string                   `json:"metric"`
	Leaders     []query.LeaderboardEntry `json:"leaders"`
	LastUpdated string                   `json:"lastUpdated"`
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// GetPlayers returns the roster joined with season averages.
// @Summary Roster with season stats
// @Description Returns every rostered player with their season per-game averages. Players without a stat line (e.g. free-tier ingestion skipped season averages) appear with zeroed stats.
// @Tags players
// @Produce json
// @Param season query int false "Season year (defaults to configured season)"
// @Success 200 {object} handler.playersResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /api/v1/players [get]
func (h *Handler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	h.servePlayerStats(w, r, "players", h.store.SeasonStats)
}

// GetLast10 returns the roster joined with trailing-10-game averages.
// @Summary Roster with last-10 stats
// @Description Returns per-game averages over each player's trailing 10-game window.
// @Tags players
// @Produce json
// @Param season query int false "Season year (defaults to configured season)"
// @Success 200 {object} handler.playersResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /api/v1/players/last10 [get]
func (h *Handler) GetLast10(w http.ResponseWriter, r *http.Request) {
	h.servePlayerStats(w, r, "last10", h.store.Last10Stats)
}

func (h *Handler) servePlayerStats(w http.ResponseWriter, r *http.Request, kind string,
	fetch func(ctx context.Context, season int) ([]model.SeasonStatLine, error)) {

	season := h.season(r)
	cacheKey := fmt.Sprintf("%s:%d", kind, season)
	ttl := cache.TTLStats

	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	stats, err := h.playerStats(r, season, fetch)
	if err != nil {
		h.logger.Error("player stats read failed", "kind", kind, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "STORE_ERROR", "Failed to read player stats")
		return
	}

	data, err := json.Marshal(playersResponse{
		Players:     stats,
		LastUpdated: nowRFC3339(),
	})
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODE_ERROR", "Failed to encode response")
		return
	}
	etag := h.cache.Set(cacheKey, data, ttl)
	respond.WriteJSON(w, data, etag, ttl, false)
}

// playerStats joins the roster with a stat-line table. Every rostered player
// appears; missing lines join as zeros so degraded ingestion stays visible.
func (h *Handler) playerStats(r *http.Request, season int,
	fetch func(ctx context.Context, season int) ([]model.SeasonStatLine, error)) ([]model.PlayerStats, error) {

	ctx := r.Context()
	players, err := h.store.Players(ctx)
	if err != nil {
		return nil, err
	}
	lines, err := fetch(ctx, season)
	if err != nil {
		return nil, err
	}

	byPlayer := make(map[int]model.SeasonStatLine, len(lines))
	for _, l := range lines {
		byPlayer[l.PlayerID] = l
	}

	out := make([]model.PlayerStats, 0, len(players))
	for _, p := range players {
		line := byPlayer[p.ID]
		line.PlayerID = p.ID
		line.Season = season
		out = append(out, normalize.PlayerStatsView(line, p))
	}
	return out, nil
}

// GetLeaderboard returns the top players by one metric.
// @Summary Leaderboard
// @Description Returns the top N players by a single metric, computed from season averages. Ties keep roster order.
// @Tags players
// @Produce json
// @Param metric query string false "Metric key (default pointsPerGame)"
// @Param n query int false "Number of entries (default 5)"
// @Param season query int false "Season year (defaults to configured season)"
// @Success 200 {object} handler.leaderboardResponse
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/v1/players/leaderboard [get]
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		metric = query.MetricPoints
	}
	if !validMetric(metric) {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_METRIC",
			"Unknown metric "+strconv.Quote(metric))
		return
	}
	n := 5
	if s := r.URL.Query().Get("n"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > 50 {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_N", "n must be between 1 and 50")
			return
		}
		n = v
	}

	season := h.season(r)
	stats, err := h.playerStats(r, season, h.store.SeasonStats)
	if err != nil {
		h.logger.Error("leaderboard read failed", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "STORE_ERROR", "Failed to read player stats")
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, leaderboardResponse{
		Metric:      metric,
		Leaders:     query.Leaderboard(stats, metric, n),
		LastUpdated: nowRFC3339(),
	})
}

func validMetric(metric string) bool {
	switch metric {
	case query.MetricPoints, query.MetricRebounds, query.MetricAssists,
		query.MetricMinutes, query.MetricGames, query.MetricFGPct,
		query.MetricThreePct, query.MetricFTPct, query.MetricSteals,
		query.MetricBlocks, query.MetricTurnovers:
		return true
	}
	return false
}

func (h *Handler) season(r *http.Request) int {
	if s := r.URL.Query().Get("season"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return h.cfg.DefaultSeason
}
