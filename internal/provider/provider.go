// Package provider defines the upstream adapter contract and the shared HTTP
// fetch client. Each adapter translates one provider's response shape into
// the raw record types below; nothing untyped crosses this boundary.
package provider

import "context"

// Provider is implemented once per upstream API. Both implementations expose
// the same semantics and are interchangeable from the orchestrator's view.
type Provider interface {
	// Name identifies the provider in ingestion run records.
	Name() string

	// ResolveTeamID returns the provider's numeric team identifier for a
	// 3-letter abbreviation. found=false (with nil error) on miss.
	ResolveTeamID(ctx context.Context, abbr string) (id int, found bool, err error)

	// FetchRoster returns the team's players for a season. full=false
	// fetches only page 1, used when tier or rate constraints forbid
	// deep pagination.
	FetchRoster(ctx context.Context, abbr string, season int, full bool) ([]RawPlayer, error)

	// FetchSeasonAverages returns one aggregate per player, keyed by
	// player id. Players absent upstream are simply absent from the map.
	FetchSeasonAverages(ctx context.Context, playerIDs []int, season int) (map[int]RawSeasonAverage, error)

	// FetchRecentGames returns the n most recent games sorted date
	// descending. Upstream order is not trusted; adapters sort client-side.
	FetchRecentGames(ctx context.Context, abbr string, season, n int) ([]RawGame, error)

	// FetchGameBoxscore returns box-score lines for one game, filtered to
	// the given team.
	FetchGameBoxscore(ctx context.Context, gameID int, abbr string) ([]RawBoxscoreLine, error)
}

// Windowed is implemented by providers whose upstream can serve
// trailing-window per-game averages directly (e.g. a LastNGames filter).
// Providers without it get their window stats derived from ingested
// box scores instead.
type Windowed interface {
	FetchWindowAverages(ctx context.Context, abbr string, season, lastN int) (map[int]RawSeasonAverage, error)
}

// RawPlayer is a roster entry as the adapter saw it, before normalization.
type RawPlayer struct {
	ID           int
	FirstName    string
	LastName     string
	Position     string
	TeamAbbr     string
	Height       *string
	Weight       *string
	JerseyNumber *string
}

// RawSeasonAverage is one per-player season aggregate. Minutes keeps the
// provider's representation ("34:49" clock or "34.8" decimal); the
// normalizer resolves the ambiguity.
type RawSeasonAverage struct {
	PlayerID      int
	GamesPlayed   int
	Minutes       string
	Points        float64
	Rebounds      float64
	Assists       float64
	Steals        float64
	Blocks        float64
	Turnovers     float64
	FieldGoalPct  float64
	ThreePointPct float64
	FreeThrowPct  float64
}

// RawGame is one game from the team's perspective. Us/Them are already
// resolved to this team's score and the opponent's.
type RawGame struct {
	ID       int
	Date     string // ISO-8601
	Opponent string
	IsHome   bool
	Us       int
	Them     int
}

// RawBoxscoreLine is one per-player line of a single game's box score.
type RawBoxscoreLine struct {
	GameID    int
	PlayerID  int
	FirstName string
	LastName  string
	Position  string
	Minutes   string // "MM:SS" or decimal, empty when DNP
	Points    int
	Rebounds  int
	Assists   int
	Steals    int
	Blocks    int
	Turnovers int
	FGM       int
	FGA       int
	FG3M      int
	FG3A      int
	FTM       int
	FTA       int
}
