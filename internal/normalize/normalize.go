// Package normalize converts provider raw records into canonical model rows.
// Every function is pure and total: missing numerics become 0, missing
// strings become "", and no input panics.
package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/courtside/courtside-data/internal/model"
	"github.com/courtside/courtside-data/internal/provider"
)

// ParseMinutes converts a minutes value to decimal minutes rounded to one
// place. Accepts "MM:SS" clock strings, plain decimals ("34.8"), and
// empty/absent values (0). Garbage parses to 0 rather than failing.
func ParseMinutes(min string) float64 {
	min = strings.TrimSpace(min)
	if min == "" {
		return 0
	}
	if strings.Contains(min, ":") {
		parts := strings.SplitN(min, ":", 2)
		m, _ := strconv.Atoi(parts[0])
		s := 0
		if len(parts) > 1 {
			s, _ = strconv.Atoi(parts[1])
		}
		return Round1(float64(m) + float64(s)/60)
	}
	f, err := strconv.ParseFloat(min, 64)
	if err != nil {
		return 0
	}
	return f
}

// Pct returns makes/attempts, or 0 when attempts is 0. Never NaN or Inf.
func Pct(makes, attempts float64) float64 {
	if attempts <= 0 {
		return 0
	}
	return makes / attempts
}

// SplitName splits a full name on the first space: first token, then the
// rest joined. Empty input yields two empty strings.
func SplitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	parts := strings.SplitN(full, " ", 2)
	first = parts[0]
	if len(parts) > 1 {
		last = parts[1]
	}
	return first, last
}

// Round1 rounds to one decimal place.
func Round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// Player maps a raw roster entry to the canonical player row. fallbackTeam
// fills in when the provider omitted the team abbreviation.
func Player(raw provider.RawPlayer, fallbackTeam string) model.Player {
	team := raw.TeamAbbr
	if team == "" {
		team = fallbackTeam
	}
	return model.Player{
		ID:           raw.ID,
		FirstName:    raw.FirstName,
		LastName:     raw.LastName,
		Position:     raw.Position,
		TeamAbbr:     team,
		Height:       raw.Height,
		Weight:       raw.Weight,
		JerseyNumber: raw.JerseyNumber,
	}
}

// SeasonStats maps a raw season aggregate to a canonical stat line.
func SeasonStats(raw provider.RawSeasonAverage, season int) model.SeasonStatLine {
	return model.SeasonStatLine{
		PlayerID:       raw.PlayerID,
		Season:         season,
		GamesPlayed:    raw.GamesPlayed,
		PointsPerGame:  raw.Points,
		Rebounds:       raw.Rebounds,
		Assists:        raw.Assists,
		Steals:         raw.Steals,
		Blocks:         raw.Blocks,
		Turnovers:      raw.Turnovers,
		MinutesPerGame: ParseMinutes(raw.Minutes),
		FieldGoalPct:   raw.FieldGoalPct,
		ThreePointPct:  raw.ThreePointPct,
		FreeThrowPct:   raw.FreeThrowPct,
	}
}

// Game maps a raw game to the canonical recent-game row, deriving the point
// differential and W/L result. diff = us - them; W iff diff >= 0.
func Game(raw provider.RawGame, team string, season int) model.RecentGame {
	diff := raw.Us - raw.Them
	result := "L"
	if diff >= 0 {
		result = "W"
	}
	return model.RecentGame{
		ID:       raw.ID,
		TeamAbbr: team,
		Season:   season,
		Date:     raw.Date,
		Opponent: raw.Opponent,
		IsHome:   raw.IsHome,
		Us:       raw.Us,
		Them:     raw.Them,
		Diff:     diff,
		Result:   result,
	}
}

// BoxLine maps a raw box-score line to the canonical per-game row.
func BoxLine(raw provider.RawBoxscoreLine, season int) model.GamePlayerStatLine {
	return model.GamePlayerStatLine{
		GameID:    raw.GameID,
		PlayerID:  raw.PlayerID,
		Season:    season,
		Minutes:   ParseMinutes(raw.Minutes),
		Points:    raw.Points,
		Rebounds:  raw.Rebounds,
		Assists:   raw.Assists,
		Steals:    raw.Steals,
		Blocks:    raw.Blocks,
		Turnovers: raw.Turnovers,
		FGM:       raw.FGM,
		FGA:       raw.FGA,
		FG3M:      raw.FG3M,
		FG3A:      raw.FG3A,
		FTM:       raw.FTM,
		FTA:       raw.FTA,
	}
}

// BoxLineStats builds the presentation shape for a single game's line,
// deriving shooting percentages from makes/attempts.
func BoxLineStats(raw provider.RawBoxscoreLine, season int) model.PlayerStats {
	return model.PlayerStats{
		PlayerID: raw.PlayerID,
		Player: model.PlayerDetail{
			ID:        raw.PlayerID,
			FirstName: raw.FirstName,
			LastName:  raw.LastName,
			Position:  raw.Position,
		},
		Season:               season,
		GamesPlayed:          1,
		PointsPerGame:        float64(raw.Points),
		Rebounds:             float64(raw.Rebounds),
		Assists:              float64(raw.Assists),
		FieldGoalPercentage:  Pct(float64(raw.FGM), float64(raw.FGA)),
		ThreePointPercentage: Pct(float64(raw.FG3M), float64(raw.FG3A)),
		FreeThrowPercentage:  Pct(float64(raw.FTM), float64(raw.FTA)),
		MinutesPlayed:        ParseMinutes(raw.Minutes),
		Steals:               float64(raw.Steals),
		Blocks:               float64(raw.Blocks),
		Turnovers:            float64(raw.Turnovers),
	}
}

// PlayerStatsView joins a canonical stat line with player identity into the
// presentation shape.
func PlayerStatsView(line model.SeasonStatLine, p model.Player) model.PlayerStats {
	return model.PlayerStats{
		PlayerID: line.PlayerID,
		Player: model.PlayerDetail{
			ID:           p.ID,
			FirstName:    p.FirstName,
			LastName:     p.LastName,
			Position:     p.Position,
			JerseyNumber: p.JerseyNumber,
			Height:       p.Height,
			Weight:       p.Weight,
		},
		Season:               line.Season,
		GamesPlayed:          line.GamesPlayed,
		PointsPerGame:        line.PointsPerGame,
		Rebounds:             line.Rebounds,
		Assists:              line.Assists,
		FieldGoalPercentage:  line.FieldGoalPct,
		ThreePointPercentage: line.ThreePointPct,
		FreeThrowPercentage:  line.FreeThrowPct,
		MinutesPlayed:        line.MinutesPerGame,
		Steals:               line.Steals,
		Blocks:               line.Blocks,
		Turnovers:            line.Turnovers,
	}
}
