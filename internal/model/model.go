// Package model defines the canonical row shapes shared by the ingestion
// pipeline, the store, and the API layer. All percentages are 0-1 fractions
// and minutes are decimal (e.g. 34.8), regardless of provider.
package model

import "time"

// Player is one roster entry, keyed by the league-assigned player ID.
// Rows are upserted on every ingestion run and never deleted.
type Player struct {
	ID           int     `json:"id"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Position     string  `json:"position"`
	TeamAbbr     string  `json:"team_abbr"`
	Height       *string `json:"height,omitempty"`
	Weight       *string `json:"weight,omitempty"`
	JerseyNumber *string `json:"jersey_number,omitempty"`
}

// SeasonStatLine is one row per (player, season). The same shape also backs
// the trailing-10-game window table; only the target table differs.
type SeasonStatLine struct {
	PlayerID       int     `json:"player_id"`
	Season         int     `json:"season"`
	GamesPlayed    int     `json:"games_played"`
	PointsPerGame  float64 `json:"points_per_game"`
	Rebounds       float64 `json:"rebounds"`
	Assists        float64 `json:"assists"`
	Steals         float64 `json:"steals"`
	Blocks         float64 `json:"blocks"`
	Turnovers      float64 `json:"turnovers"`
	MinutesPerGame float64 `json:"minutes_per_game"`
	FieldGoalPct   float64 `json:"fg_pct"`
	ThreePointPct  float64 `json:"three_pt_pct"`
	FreeThrowPct   float64 `json:"ft_pct"`
}

// RecentGame is one row per (team, game), ordered date-descending.
// Diff is always Us-Them and Result is "W" iff Diff >= 0. TeamAbbr and
// Season are storage keys only; the presentation contract does not
// include them.
type RecentGame struct {
	ID       int    `json:"id"`
	TeamAbbr string `json:"-"`
	Season   int    `json:"-"`
	Date     string `json:"date"` // ISO-8601
	Opponent string `json:"opponent"`
	IsHome   bool   `json:"isHome"`
	Us       int    `json:"us"`
	Them     int    `json:"them"`
	Diff     int    `json:"diff"`
	Result   string `json:"result"` // "W" or "L"
}

// GamePlayerStatLine is one box-score row per (game, player).
type GamePlayerStatLine struct {
	GameID    int     `json:"game_id"`
	PlayerID  int     `json:"player_id"`
	Season    int     `json:"season"`
	Minutes   float64 `json:"minutes"`
	Points    int     `json:"points"`
	Rebounds  int     `json:"rebounds"`
	Assists   int     `json:"assists"`
	Steals    int     `json:"steals"`
	Blocks    int     `json:"blocks"`
	Turnovers int     `json:"turnovers"`
	FGM       int     `json:"fgm"`
	FGA       int     `json:"fga"`
	FG3M      int     `json:"fg3m"`
	FG3A      int     `json:"fg3a"`
	FTM       int     `json:"ftm"`
	FTA       int     `json:"fta"`
}

// Ingestion run statuses. Running is the only non-terminal state.
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusError   = "error"
)

// IngestionRun is the audit row for one orchestrated ingestion invocation.
// Exactly one terminal row must exist per invocation, success or failure.
type IngestionRun struct {
	ID         int64      `json:"id"`
	Source     string     `json:"source"`
	Season     int        `json:"season"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
