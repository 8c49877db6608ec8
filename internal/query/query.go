// Package query holds the read-side aggregation: leaderboards, trailing
// window averages, and the recent-games summary. Pure functions over
// already-normalized records.
package query

import (
	"fmt"
	"sort"

	"github.com/courtside/courtside-data/internal/model"
	"github.com/courtside/courtside-data/internal/normalize"
)

// Metric keys accepted by TopN. These match the presentation contract's
// JSON field names.
const (
	MetricPoints    = "pointsPerGame"
	MetricRebounds  = "rebounds"
	MetricAssists   = "assists"
	MetricMinutes   = "minutesPlayed"
	MetricGames     = "gamesPlayed"
	MetricFGPct     = "fieldGoalPercentage"
	MetricThreePct  = "threePointPercentage"
	MetricFTPct     = "freeThrowPercentage"
	MetricSteals    = "steals"
	MetricBlocks    = "blocks"
	MetricTurnovers = "turnovers"
)

// MetricValue returns the named numeric metric of a stat row; unknown keys
// read as 0.
func MetricValue(p model.PlayerStats, metric string) float64 {
	switch metric {
	case MetricPoints:
		return p.PointsPerGame
	case MetricRebounds:
		return p.Rebounds
	case MetricAssists:
		return p.Assists
	case MetricMinutes:
		return p.MinutesPlayed
	case MetricGames:
		return float64(p.GamesPlayed)
	case MetricFGPct:
		return p.FieldGoalPercentage
	case MetricThreePct:
		return p.ThreePointPercentage
	case MetricFTPct:
		return p.FreeThrowPercentage
	case MetricSteals:
		return p.Steals
	case MetricBlocks:
		return p.Blocks
	case MetricTurnovers:
		return p.Turnovers
	}
	return 0
}

// TopN returns the first n records sorted descending by the named metric.
// The sort is stable: ties keep their original relative order. The input
// slice is not modified.
func TopN(players []model.PlayerStats, metric string, n int) []model.PlayerStats {
	out := make([]model.PlayerStats, len(players))
	copy(out, players)
	sort.SliceStable(out, func(i, j int) bool {
		return MetricValue(out[i], metric) > MetricValue(out[j], metric)
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}

// LeaderboardEntry is one row of a per-metric leaderboard.
type LeaderboardEntry struct {
	PlayerID int     `json:"playerId"`
	Name     string  `json:"name"`
	Position string  `json:"position"`
	Value    float64 `json:"value"`
}

// Leaderboard returns the top n per metric as compact entries.
func Leaderboard(players []model.PlayerStats, metric string, n int) []LeaderboardEntry {
	top := TopN(players, metric, n)
	out := make([]LeaderboardEntry, len(top))
	for i, p := range top {
		out[i] = LeaderboardEntry{
			PlayerID: p.PlayerID,
			Name:     p.Player.FirstName + " " + p.Player.LastName,
			Position: p.Player.Position,
			Value:    MetricValue(p, metric),
		}
	}
	return out
}

// last10Totals accumulates one player's counting stats across grouped rows.
type last10Totals struct {
	playerID                          int
	gp                                int
	pts, reb, ast, stl, blk, tov, min float64
	fgm, fga, fg3m, fg3a, ftm, fta    float64
}

// Last10Aggregate groups box-score lines by player and produces per-game
// averages over the group. Shooting percentages are recomputed from summed
// makes and attempts — averaging per-game percentages would weight every
// game equally regardless of attempts.
func Last10Aggregate(lines []model.GamePlayerStatLine, players map[int]model.Player, season int) []model.PlayerStats {
	totals, order := sumByPlayer(lines)

	out := make([]model.PlayerStats, 0, len(order))
	for _, id := range order {
		t := totals[id]
		gp := t.gp
		if gp < 1 {
			gp = 1
		}
		fgp := float64(gp)

		detail := model.PlayerDetail{ID: id}
		if p, ok := players[id]; ok {
			detail.FirstName = p.FirstName
			detail.LastName = p.LastName
			detail.Position = p.Position
			detail.JerseyNumber = p.JerseyNumber
		}

		out = append(out, model.PlayerStats{
			PlayerID:             id,
			Player:               detail,
			Season:               season,
			GamesPlayed:          gp,
			PointsPerGame:        t.pts / fgp,
			Rebounds:             t.reb / fgp,
			Assists:              t.ast / fgp,
			FieldGoalPercentage:  normalize.Pct(t.fgm, t.fga),
			ThreePointPercentage: normalize.Pct(t.fg3m, t.fg3a),
			FreeThrowPercentage:  normalize.Pct(t.ftm, t.fta),
			MinutesPlayed:        t.min / fgp,
			Steals:               t.stl / fgp,
			Blocks:               t.blk / fgp,
			Turnovers:            t.tov / fgp,
		})
	}
	return out
}

// Last10Lines is Last10Aggregate in canonical stat-line form, used when the
// trailing-window table is derived from ingested box scores.
func Last10Lines(lines []model.GamePlayerStatLine, season int) []model.SeasonStatLine {
	stats := Last10Aggregate(lines, nil, season)
	out := make([]model.SeasonStatLine, len(stats))
	for i, p := range stats {
		out[i] = model.SeasonStatLine{
			PlayerID:       p.PlayerID,
			Season:         season,
			GamesPlayed:    p.GamesPlayed,
			PointsPerGame:  p.PointsPerGame,
			Rebounds:       p.Rebounds,
			Assists:        p.Assists,
			Steals:         p.Steals,
			Blocks:         p.Blocks,
			Turnovers:      p.Turnovers,
			MinutesPerGame: p.MinutesPlayed,
			FieldGoalPct:   p.FieldGoalPercentage,
			ThreePointPct:  p.ThreePointPercentage,
			FreeThrowPct:   p.FreeThrowPercentage,
		}
	}
	return out
}

func sumByPlayer(lines []model.GamePlayerStatLine) (map[int]*last10Totals, []int) {
	totals := make(map[int]*last10Totals)
	var order []int
	for _, l := range lines {
		t, ok := totals[l.PlayerID]
		if !ok {
			t = &last10Totals{playerID: l.PlayerID}
			totals[l.PlayerID] = t
			order = append(order, l.PlayerID)
		}
		t.gp++
		t.pts += float64(l.Points)
		t.reb += float64(l.Rebounds)
		t.ast += float64(l.Assists)
		t.stl += float64(l.Steals)
		t.blk += float64(l.Blocks)
		t.tov += float64(l.Turnovers)
		t.min += l.Minutes
		t.fgm += float64(l.FGM)
		t.fga += float64(l.FGA)
		t.fg3m += float64(l.FG3M)
		t.fg3a += float64(l.FG3A)
		t.ftm += float64(l.FTM)
		t.fta += float64(l.FTA)
	}
	return totals, order
}

// Summarize computes the record and scoring averages over a set of games.
// Empty input yields a "0-0" record with zero averages.
func Summarize(games []model.RecentGame) model.GamesSummary {
	wins := 0
	var sumFor, sumAgainst, sumDiff float64
	for _, g := range games {
		if g.Result == "W" {
			wins++
		}
		sumFor += float64(g.Us)
		sumAgainst += float64(g.Them)
		sumDiff += float64(g.Diff)
	}
	n := float64(len(games))
	summary := model.GamesSummary{
		Record: fmt.Sprintf("%d-%d", wins, len(games)-wins),
	}
	if n > 0 {
		summary.AvgFor = sumFor / n
		summary.AvgAgainst = sumAgainst / n
		summary.AvgDiff = sumDiff / n
	}
	return summary
}
