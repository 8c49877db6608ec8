package ingest

import "time"

// Roster and trailing-window provenance markers, recorded on every result so
// callers can see which degradation paths fired.
const (
	RosterFull      = "full"
	RosterFirstPage = "first-page"

	Last10FromProvider  = "provider-window"
	Last10FromBoxscores = "derived-boxscores"
)

// ModeMini forces the degraded path regardless of tier: page-one roster and
// no season-averages stage. Useful for cheap smoke runs on a paid key.
const ModeMini = "mini"

// Result summarizes one ingestion run: row counts per stage plus the
// degradation and provenance signals. It is returned to CLI and API callers
// and logged at the end of every run.
type Result struct {
	RunID  int64  `json:"runId"`
	Source string `json:"source"`
	Season int    `json:"season"`
	Team   string `json:"team"`
	Tier   string `json:"tier"`
	Mode   string `json:"mode,omitempty"`

	Players     int `json:"players"`
	SeasonStats int `json:"seasonStats"`
	Last10Stats int `json:"last10Stats"`
	Games       int `json:"games"`
	GameStats   int `json:"gameStats"`

	// RosterSource is "full" when every roster page was walked, or
	// "first-page" when the free tier or mini mode limited the fetch to
	// page one.
	RosterSource string `json:"rosterSource"`

	// SeasonAveragesAttempted is false when the stage was skipped outright
	// (free tier). SeasonAveragesError carries a non-fatal stage failure.
	SeasonAveragesAttempted bool   `json:"seasonAveragesAttempted"`
	SeasonAveragesError     string `json:"seasonAveragesError,omitempty"`

	// Last10Source records where the trailing-window rows came from:
	// the provider's own window endpoint or aggregation over ingested
	// box scores. Empty when no window rows were written.
	Last10Source string `json:"last10Source,omitempty"`

	// Skipped lists stages that did not run, with the reason.
	Skipped []string `json:"skipped,omitempty"`

	// BoxscoreErrors lists per-game fetch failures. Box-score ingestion is
	// best effort; individual game failures never fail the run.
	BoxscoreErrors []string `json:"boxscoreErrors,omitempty"`

	Duration time.Duration `json:"duration"`
}

func (r *Result) skip(reason string) {
	r.Skipped = append(r.Skipped, reason)
}
