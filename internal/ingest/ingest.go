// Package ingest orchestrates one full ingestion run: roster, season
// averages, recent games, per-game box scores, and the trailing-window
// aggregates, written through the store with an audit row per invocation.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/courtside/courtside-data/internal/config"
	"github.com/courtside/courtside-data/internal/model"
	"github.com/courtside/courtside-data/internal/normalize"
	"github.com/courtside/courtside-data/internal/provider"
	"github.com/courtside/courtside-data/internal/query"
	"github.com/courtside/courtside-data/internal/store"
)

// Runner drives the stage pipeline for a single provider. It is safe to
// reuse across runs; each Run opens and finishes its own audit row.
type Runner struct {
	store    store.Store
	provider provider.Provider
	cfg      *config.Config
	logger   *slog.Logger
}

// NewRunner wires an orchestrator for one provider.
func NewRunner(st store.Store, p provider.Provider, cfg *config.Config, logger *slog.Logger) *Runner {
	return &Runner{store: st, provider: p, cfg: cfg, logger: logger}
}

// Run executes the full pipeline for one (team, season). Every invocation
// writes exactly one terminal ingestion-run row: success when the pipeline
// completed (possibly degraded), error when a required stage failed.
// Mode ModeMini forces the degraded path regardless of tier; any other
// value leaves the tier policy in charge.
func (r *Runner) Run(ctx context.Context, season int, mode string) (result *Result, err error) {
	team := r.cfg.TeamAbbr
	start := time.Now()

	runID, err := r.store.CreateRun(ctx, r.provider.Name(), season)
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	result = &Result{
		RunID:  runID,
		Source: r.provider.Name(),
		Season: season,
		Team:   team,
		Tier:   r.cfg.BDLTier,
		Mode:   mode,
	}
	degraded := r.cfg.BDLTier == config.TierFree || mode == ModeMini

	// The audit row must reach a terminal state no matter how we leave.
	defer func() {
		result.Duration = time.Since(start)
		status := model.RunStatusSuccess
		errMsg := ""
		if err != nil {
			status = model.RunStatusError
			errMsg = err.Error()
		}
		if finishErr := r.store.FinishRun(context.WithoutCancel(ctx), runID, status, errMsg); finishErr != nil {
			r.logger.Error("finish ingestion run", "run_id", runID, "error", finishErr)
		}
		r.logger.Info("ingestion run finished",
			"run_id", runID,
			"source", result.Source,
			"season", season,
			"status", status,
			"players", result.Players,
			"games", result.Games,
			"duration_ms", result.Duration.Milliseconds(),
		)
	}()

	players, err := r.ingestRoster(ctx, team, season, degraded, result)
	if err != nil {
		return result, fmt.Errorf("roster stage: %w", err)
	}

	r.ingestSeasonAverages(ctx, players, season, degraded, result)

	games, err := r.ingestRecentGames(ctx, team, season, result)
	if err != nil {
		return result, fmt.Errorf("recent games stage: %w", err)
	}

	boxLines := r.ingestBoxscores(ctx, games, team, season, result)

	if err := r.ingestLast10(ctx, team, season, boxLines, result); err != nil {
		return result, fmt.Errorf("trailing window stage: %w", err)
	}

	return result, nil
}

// ingestRoster fetches and writes the roster. Degraded runs (free tier or
// mini mode) only get page one; the degradation is recorded on the result.
func (r *Runner) ingestRoster(ctx context.Context, team string, season int, degraded bool, result *Result) ([]model.Player, error) {
	full := !degraded
	result.RosterSource = RosterFull
	if !full {
		result.RosterSource = RosterFirstPage
	}

	raw, err := r.provider.FetchRoster(ctx, team, season, full)
	if err != nil {
		return nil, err
	}

	players := make([]model.Player, 0, len(raw))
	for _, rp := range raw {
		players = append(players, normalize.Player(rp, team))
	}
	if err := r.store.UpsertPlayers(ctx, players); err != nil {
		return nil, err
	}
	result.Players = len(players)
	r.logger.Info("roster ingested", "players", len(players), "source", result.RosterSource)
	return players, nil
}

// ingestSeasonAverages is best effort: degraded runs skip it outright, and
// an upstream failure is recorded on the result without failing the run.
func (r *Runner) ingestSeasonAverages(ctx context.Context, players []model.Player, season int, degraded bool, result *Result) {
	if degraded {
		result.skip("season-averages: skipped (free tier or mini mode)")
		return
	}
	result.SeasonAveragesAttempted = true

	ids := make([]int, 0, len(players))
	for _, p := range players {
		ids = append(ids, p.ID)
	}

	averages, err := r.provider.FetchSeasonAverages(ctx, ids, season)
	if err != nil {
		result.SeasonAveragesError = err.Error()
		r.logger.Warn("season averages fetch failed", "error", err)
		return
	}

	lines := make([]model.SeasonStatLine, 0, len(averages))
	for _, avg := range averages {
		lines = append(lines, normalize.SeasonStats(avg, season))
	}
	if err := r.store.UpsertSeasonStats(ctx, lines); err != nil {
		result.SeasonAveragesError = err.Error()
		r.logger.Warn("season averages upsert failed", "error", err)
		return
	}
	result.SeasonStats = len(lines)
	r.logger.Info("season averages ingested", "lines", len(lines))
}

// ingestRecentGames fetches the trailing game window. Fewer than the
// requested count is fine; an empty season is not an error.
func (r *Runner) ingestRecentGames(ctx context.Context, team string, season int, result *Result) ([]model.RecentGame, error) {
	raw, err := r.provider.FetchRecentGames(ctx, team, season, r.cfg.RecentWindow)
	if err != nil {
		return nil, err
	}

	games := make([]model.RecentGame, 0, len(raw))
	for _, rg := range raw {
		games = append(games, normalize.Game(rg, team, season))
	}
	if err := r.store.UpsertRecentGames(ctx, games); err != nil {
		return nil, err
	}
	result.Games = len(games)
	r.logger.Info("recent games ingested", "games", len(games))
	return games, nil
}

// ingestBoxscores walks the fetched games and ingests each box score.
// Partial ingestion is the contract: a single game failing is recorded,
// never fatal. Returns the canonical lines written this run.
func (r *Runner) ingestBoxscores(ctx context.Context, games []model.RecentGame, team string, season int, result *Result) []model.GamePlayerStatLine {
	var all []model.GamePlayerStatLine
	for _, g := range games {
		raw, err := r.provider.FetchGameBoxscore(ctx, g.ID, team)
		if err != nil {
			result.BoxscoreErrors = append(result.BoxscoreErrors,
				fmt.Sprintf("game %d: %v", g.ID, err))
			r.logger.Warn("boxscore fetch failed", "game_id", g.ID, "error", err)
			continue
		}
		lines := make([]model.GamePlayerStatLine, 0, len(raw))
		for _, rl := range raw {
			lines = append(lines, normalize.BoxLine(rl, season))
		}
		if err := r.store.UpsertGameStats(ctx, lines); err != nil {
			result.BoxscoreErrors = append(result.BoxscoreErrors,
				fmt.Sprintf("game %d: %v", g.ID, err))
			r.logger.Warn("boxscore upsert failed", "game_id", g.ID, "error", err)
			continue
		}
		result.GameStats += len(lines)
		all = append(all, lines...)
	}
	r.logger.Info("boxscores ingested", "games", len(games), "lines", result.GameStats,
		"failed", len(result.BoxscoreErrors))
	return all
}

// ingestLast10 writes the trailing-window stat lines. Providers that can
// serve window averages directly are asked; everyone else gets the rows
// derived from the box scores ingested this run.
func (r *Runner) ingestLast10(ctx context.Context, team string, season int, boxLines []model.GamePlayerStatLine, result *Result) error {
	if w, ok := r.provider.(provider.Windowed); ok {
		averages, err := w.FetchWindowAverages(ctx, team, season, r.cfg.RecentWindow)
		if err != nil {
			return err
		}
		lines := make([]model.SeasonStatLine, 0, len(averages))
		for _, avg := range averages {
			lines = append(lines, normalize.SeasonStats(avg, season))
		}
		if err := r.store.UpsertLast10Stats(ctx, lines); err != nil {
			return err
		}
		result.Last10Stats = len(lines)
		result.Last10Source = Last10FromProvider
		r.logger.Info("trailing window ingested", "lines", len(lines), "source", result.Last10Source)
		return nil
	}

	if len(boxLines) == 0 {
		result.skip("last10: no box scores to derive from")
		return nil
	}
	lines := query.Last10Lines(boxLines, season)
	if err := r.store.UpsertLast10Stats(ctx, lines); err != nil {
		return err
	}
	result.Last10Stats = len(lines)
	result.Last10Source = Last10FromBoxscores
	r.logger.Info("trailing window derived", "lines", len(lines), "source", result.Last10Source)
	return nil
}
