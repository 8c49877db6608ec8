package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/courtside/courtside-data/internal/api/respond"
	"github.com/courtside/courtside-data/internal/cache"
	"github.com/courtside/courtside-data/internal/model"
	"github.com/courtside/courtside-data/internal/normalize"
	"github.com/courtside/courtside-data/internal/query"
)

// recentGamesResponse pairs the game list with its aggregate summary.
type recentGamesResponse struct {
	Team        string             `json:"team"`
	Games       []model.RecentGame `json:"games"`
	Summary     model.GamesSummary `json:"summary"`
	LastUpdated string             `json:"lastUpdated"`
}

// GetRecentGames returns the trailing game window with a summary block.
// @Summary Recent games
// @Description Returns the most recent games, newest first, with a win-loss record and scoring averages over the window.
// @Tags games
// @Produce json
// @Param limit query int false "Max games (default 10)"
// @Param season query int false "Season year (defaults to configured season)"
// @Success 200 {object} handler.recentGamesResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /api/v1/team/recent-games [get]
func (h *Handler) GetRecentGames(w http.ResponseWriter, r *http.Request) {
	season := h.season(r)
	limit := h.cfg.RecentWindow
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > 82 {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be between 1 and 82")
			return
		}
		limit = v
	}

	cacheKey := fmt.Sprintf("recent-games:%s:%d:%d", h.cfg.TeamAbbr, season, limit)
	ttl := cache.TTLRecentGames

	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	games, err := h.store.RecentGames(r.Context(), h.cfg.TeamAbbr, season, limit)
	if err != nil {
		h.logger.Error("recent games read failed", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "STORE_ERROR", "Failed to read recent games")
		return
	}
	if games == nil {
		games = []model.RecentGame{}
	}

	data, err := json.Marshal(recentGamesResponse{
		Team:        h.cfg.TeamAbbr,
		Games:       games,
		Summary:     query.Summarize(games),
		LastUpdated: nowRFC3339(),
	})
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODE_ERROR", "Failed to encode response")
		return
	}
	etag := h.cache.Set(cacheKey, data, ttl)
	respond.WriteJSON(w, data, etag, ttl, false)
}

// GetGamePlayerStats returns per-player lines for one game. The store is
// consulted first; on a miss the box score is fetched live. A live-fetch
// failure degrades to an empty list rather than an error, so a cold store
// never turns into a client-visible outage.
// @Summary Game player stats
// @Description Returns per-player box-score lines for one game, store-first with a live upstream fallback.
// @Tags games
// @Produce json
// @Param id path int true "Game ID"
// @Success 200 {object} handler.playersResponse
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/v1/games/{id}/player-stats [get]
func (h *Handler) GetGamePlayerStats(w http.ResponseWriter, r *http.Request) {
	gameID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || gameID <= 0 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "Game ID must be a positive integer")
		return
	}

	cacheKey := fmt.Sprintf("game-stats:%d", gameID)
	ttl := cache.TTLBoxscore

	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	stats, err := h.gamePlayerStats(r, gameID)
	if err != nil {
		h.logger.Error("game stats read failed", "game_id", gameID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "STORE_ERROR", "Failed to read game stats")
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

func (h *Handler) gamePlayerStats(r *http.Request, gameID int) ([]model.PlayerStats, error) {
	ctx := r.Context()

	lines, err := h.store.GameStats(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if len(lines) > 0 {
		players, err := h.store.Players(ctx)
		if err != nil {
			return nil, err
		}
		byID := make(map[int]model.Player, len(players))
		for _, p := range players {
			byID[p.ID] = p
		}
		out := make([]model.PlayerStats, 0, len(lines))
		for _, l := range lines {
			out = append(out, gameLineView(l, byID[l.PlayerID]))
		}
		return out, nil
	}

	if h.live == nil {
		return []model.PlayerStats{}, nil
	}
	raw, err := h.live.FetchGameBoxscore(ctx, gameID, h.cfg.TeamAbbr)
	if err != nil {
		h.logger.Warn("live boxscore fetch failed", "game_id", gameID, "error", err)
		return []model.PlayerStats{}, nil
	}
	out := make([]model.PlayerStats, 0, len(raw))
	for _, rl := range raw {
		out = append(out, normalize.BoxLineStats(rl, h.season(r)))
	}
	return out, nil
}

// gameLineView builds the presentation shape for one stored box-score line,
// deriving shooting percentages from makes and attempts.
func gameLineView(l model.GamePlayerStatLine, p model.Player) model.PlayerStats {
	return model.PlayerStats{
		PlayerID: l.PlayerID,
		Player: model.PlayerDetail{
			ID:           l.PlayerID,
			FirstName:    p.FirstName,
			LastName:     p.LastName,
			Position:     p.Position,
			JerseyNumber: p.JerseyNumber,
		},
		Season:               l.Season,
		GamesPlayed:          1,
		PointsPerGame:        float64(l.Points),
		Rebounds:             float64(l.Rebounds),
		Assists:              float64(l.Assists),
		FieldGoalPercentage:  normalize.Pct(float64(l.FGM), float64(l.FGA)),
		ThreePointPercentage: normalize.Pct(float64(l.FG3M), float64(l.FG3A)),
		FreeThrowPercentage:  normalize.Pct(float64(l.FTM), float64(l.FTA)),
		MinutesPlayed:        l.Minutes,
		Steals:               float64(l.Steals),
		Blocks:               float64(l.Blocks),
		Turnovers:            float64(l.Turnovers),
	}
}
