// Package bdl adapts the BallDontLie API (list-shaped responses with
// next_page/total_pages metadata) to the provider contract.
package bdl

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/courtside/courtside-data/internal/provider"
)

// SourceName identifies this adapter in ingestion run records.
const SourceName = "balldontlie"

// TeamIDs is the static abbreviation → team id lookup. Known teams skip a
// network round-trip during resolution.
var TeamIDs = map[string]int{
	"CHA": 4,
}

// Options carries the per-adapter knobs; zero values get defaults.
type Options struct {
	BaseURL         string
	APIKey          string
	PerPage         int
	TeamsPages      int // page cap while resolving a team id
	RosterPages     int // runaway guard for full-roster pagination
	GamesPages      int
	GamesCollectCap int
	BoxscorePages   int
	SeasonAvgBatch  int // player ids per season-averages request
}

// Adapter implements provider.Provider against BallDontLie.
type Adapter struct {
	client *provider.Client
	opts   Options
	logger *slog.Logger
}

// New creates a BallDontLie adapter sharing the given fetch client.
func New(client *provider.Client, opts Options, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.balldontlie.io/v1"
	}
	if opts.PerPage <= 0 {
		opts.PerPage = 100
	}
	if opts.TeamsPages <= 0 {
		opts.TeamsPages = 5
	}
	if opts.RosterPages <= 0 {
		opts.RosterPages = 50
	}
	if opts.GamesPages <= 0 {
		opts.GamesPages = 5
	}
	if opts.GamesCollectCap <= 0 {
		opts.GamesCollectCap = 40
	}
	if opts.BoxscorePages <= 0 {
		opts.BoxscorePages = 10
	}
	if opts.SeasonAvgBatch <= 0 {
		opts.SeasonAvgBatch = 25
	}
	return &Adapter{client: client, opts: opts, logger: logger}
}

// Name implements provider.Provider.
func (a *Adapter) Name() string { return SourceName }

func (a *Adapter) headers() http.Header {
	h := http.Header{}
	if a.opts.APIKey != "" {
		h.Set("Authorization", "Bearer "+a.opts.APIKey)
	}
	return h
}

// --------------------------------------------------------------------------
// Response shapes
// --------------------------------------------------------------------------

type pageMeta struct {
	NextPage   *int `json:"next_page"`
	TotalPages *int `json:"total_pages"`
}

// nextPage decides whether a pagination loop continues. Explicit metadata
// is authoritative: a next-page cursor (stopping when it repeats the current
// page), then total-pages. The full-page heuristic applies only when the
// response carries no metadata at all; a short page always stops.
func (m pageMeta) nextPage(page, pageLen, perPage int) (int, bool) {
	if m.NextPage != nil {
		if *m.NextPage == page {
			return 0, false
		}
		return *m.NextPage, true
	}
	if m.TotalPages != nil {
		if page < *m.TotalPages {
			return page + 1, true
		}
		return 0, false
	}
	if pageLen >= perPage {
		return page + 1, true
	}
	return 0, false
}

type teamRow struct {
	ID           int    `json:"id"`
	Abbreviation string `json:"abbreviation"`
}

type teamsResponse struct {
	Data []teamRow `json:"data"`
	Meta pageMeta  `json:"meta"`
}

type playerRow struct {
	ID           int      `json:"id"`
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	Position     string   `json:"position"`
	Height       *string  `json:"height"`
	Weight       *string  `json:"weight"`
	JerseyNumber *string  `json:"jersey_number"`
	Team         *teamRow `json:"team"`
}

type playersResponse struct {
	Data []playerRow `json:"data"`
	Meta pageMeta    `json:"meta"`
}

type seasonAverageRow struct {
	PlayerID    int     `json:"player_id"`
	GamesPlayed int     `json:"games_played"`
	Min         *string `json:"min"`
	Pts         float64 `json:"pts"`
	Reb         float64 `json:"reb"`
	Ast         float64 `json:"ast"`
	Stl         float64 `json:"stl"`
	Blk         float64 `json:"blk"`
	Turnover    float64 `json:"turnover"`
	FgPct       float64 `json:"fg_pct"`
	Fg3Pct      float64 `json:"fg3_pct"`
	FtPct       float64 `json:"ft_pct"`
}

type seasonAveragesResponse struct {
	Data []seasonAverageRow `json:"data"`
}

type gameRow struct {
	ID           int     `json:"id"`
	Date         string  `json:"date"`
	Postseason   bool    `json:"postseason"`
	HomeTeam     teamRow `json:"home_team"`
	VisitorTeam  teamRow `json:"visitor_team"`
	HomeScore    int     `json:"home_team_score"`
	VisitorScore int     `json:"visitor_team_score"`
}

type gamesResponse struct {
	Data []gameRow `json:"data"`
	Meta pageMeta  `json:"meta"`
}

type statRow struct {
	Game struct {
		ID int `json:"id"`
	} `json:"game"`
	Team   teamRow `json:"team"`
	Player struct {
		ID        int    `json:"id"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Position  string `json:"position"`
	} `json:"player"`
	Min      *string `json:"min"`
	Pts      int     `json:"pts"`
	Reb      int     `json:"reb"`
	Ast      int     `json:"ast"`
	Stl      int     `json:"stl"`
	Blk      int     `json:"blk"`
	Turnover int     `json:"turnover"`
	Fgm      int     `json:"fgm"`
	Fga      int     `json:"fga"`
	Fg3m     int     `json:"fg3m"`
	Fg3a     int     `json:"fg3a"`
	Ftm      int     `json:"ftm"`
	Fta      int     `json:"fta"`
}

type statsResponse struct {
	Data []statRow `json:"data"`
	Meta pageMeta  `json:"meta"`
}

// --------------------------------------------------------------------------
// Provider implementation
// --------------------------------------------------------------------------

// ResolveTeamID checks the static lookup first, then pages through the teams
// listing. Exhausting the page cap is a miss, not an error.
func (a *Adapter) ResolveTeamID(ctx context.Context, abbr string) (int, bool, error) {
	if id, ok := TeamIDs[abbr]; ok {
		return id, true, nil
	}

	page := 1
	for i := 0; i < a.opts.TeamsPages; i++ {
		u := fmt.Sprintf("%s/teams?per_page=%d&page=%d", a.opts.BaseURL, a.opts.PerPage, page)
		var resp teamsResponse
		if err := a.client.GetJSONPaged(ctx, u, a.headers(), &resp); err != nil {
			return 0, false, fmt.Errorf("fetch teams page %d: %w", page, err)
		}
		for _, t := range resp.Data {
			if t.Abbreviation == abbr {
				return t.ID, true, nil
			}
		}
		// Metadata-only continuation here; the teams listing is small and
		// a full last page should not trigger another request.
		if resp.Meta.NextPage != nil && *resp.Meta.NextPage != page {
			page = *resp.Meta.NextPage
			continue
		}
		if resp.Meta.TotalPages != nil && page < *resp.Meta.TotalPages {
			page++
			continue
		}
		break
	}
	return 0, false, nil
}

// FetchRoster returns the team's players. With full=false only page 1 is
// fetched (tier-restricted mode). When the team id resolves, the request is
// narrowed server-side; otherwise pages are filtered client-side.
func (a *Adapter) FetchRoster(ctx context.Context, abbr string, season int, full bool) ([]provider.RawPlayer, error) {
	teamID, found, err := a.ResolveTeamID(ctx, abbr)
	if err != nil {
		return nil, err
	}

	var out []provider.RawPlayer
	page := 1
	for i := 0; i < a.opts.RosterPages; i++ {
		u := a.playersURL(page, teamID, found)
		var resp playersResponse
		if err := a.client.GetJSONPaged(ctx, u, a.headers(), &resp); err != nil {
			return nil, fmt.Errorf("fetch players page %d: %w", page, err)
		}
		for _, p := range resp.Data {
			if !found && (p.Team == nil || p.Team.Abbreviation != abbr) {
				continue
			}
			out = append(out, rawPlayer(p, abbr))
		}
		if !full {
			break
		}
		next, more := resp.Meta.nextPage(page, len(resp.Data), a.opts.PerPage)
		if !more {
			break
		}
		page = next
	}
	return out, nil
}

func (a *Adapter) playersURL(page, teamID int, narrow bool) string {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(a.opts.PerPage))
	q.Set("page", strconv.Itoa(page))
	if narrow {
		q.Set("team_ids[]", strconv.Itoa(teamID))
	}
	return a.opts.BaseURL + "/players?" + q.Encode()
}

func rawPlayer(p playerRow, fallbackTeam string) provider.RawPlayer {
	team := fallbackTeam
	if p.Team != nil && p.Team.Abbreviation != "" {
		team = p.Team.Abbreviation
	}
	return provider.RawPlayer{
		ID:           p.ID,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Position:     p.Position,
		TeamAbbr:     team,
		Height:       p.Height,
		Weight:       p.Weight,
		JerseyNumber: p.JerseyNumber,
	}
}

// FetchSeasonAverages batches player ids to keep the query string within
// safe limits and merges the results keyed by player id.
func (a *Adapter) FetchSeasonAverages(ctx context.Context, playerIDs []int, season int) (map[int]provider.RawSeasonAverage, error) {
	result := make(map[int]provider.RawSeasonAverage)
	for _, ids := range chunk(playerIDs, a.opts.SeasonAvgBatch) {
		q := url.Values{}
		q.Set("season", strconv.Itoa(season))
		for _, id := range ids {
			q.Add("player_ids[]", strconv.Itoa(id))
		}
		u := a.opts.BaseURL + "/season_averages?" + q.Encode()
		var resp seasonAveragesResponse
		if err := a.client.GetJSON(ctx, u, a.headers(), &resp); err != nil {
			return nil, fmt.Errorf("fetch season averages: %w", err)
		}
		for _, row := range resp.Data {
			result[row.PlayerID] = provider.RawSeasonAverage{
				PlayerID:      row.PlayerID,
				GamesPlayed:   row.GamesPlayed,
				Minutes:       deref(row.Min),
				Points:        row.Pts,
				Rebounds:      row.Reb,
				Assists:       row.Ast,
				Steals:        row.Stl,
				Blocks:        row.Blk,
				Turnovers:     row.Turnover,
				FieldGoalPct:  row.FgPct,
				ThreePointPct: row.Fg3Pct,
				FreeThrowPct:  row.FtPct,
			}
		}
	}
	return result, nil
}

// FetchRecentGames collects regular-season games over a bounded page count,
// sorts date descending client-side, and returns the first n. Upstream does
// not guarantee order.
func (a *Adapter) FetchRecentGames(ctx context.Context, abbr string, season, n int) ([]provider.RawGame, error) {
	teamID, found, err := a.ResolveTeamID(ctx, abbr)
	if err != nil {
		return nil, err
	}

	var collected []gameRow
	page := 1
	for i := 0; i < a.opts.GamesPages && len(collected) < a.opts.GamesCollectCap; i++ {
		u := a.gamesURL(page, season, teamID, found)
		var resp gamesResponse
		if err := a.client.GetJSONPaged(ctx, u, a.headers(), &resp); err != nil {
			return nil, fmt.Errorf("fetch games page %d: %w", page, err)
		}
		for _, g := range resp.Data {
			if !found && g.HomeTeam.Abbreviation != abbr && g.VisitorTeam.Abbreviation != abbr {
				continue
			}
			collected = append(collected, g)
		}
		next, more := resp.Meta.nextPage(page, len(resp.Data), a.opts.PerPage)
		if !more {
			break
		}
		page = next
	}

	sort.SliceStable(collected, func(i, j int) bool {
		return parseGameDate(collected[i].Date).After(parseGameDate(collected[j].Date))
	})
	if len(collected) > n {
		collected = collected[:n]
	}

	games := make([]provider.RawGame, len(collected))
	for i, g := range collected {
		isHome := g.HomeTeam.Abbreviation == abbr
		us, them := g.HomeScore, g.VisitorScore
		opponent := g.VisitorTeam.Abbreviation
		if !isHome {
			us, them = g.VisitorScore, g.HomeScore
			opponent = g.HomeTeam.Abbreviation
		}
		games[i] = provider.RawGame{
			ID:       g.ID,
			Date:     g.Date,
			Opponent: opponent,
			IsHome:   isHome,
			Us:       us,
			Them:     them,
		}
	}
	return games, nil
}

func (a *Adapter) gamesURL(page, season, teamID int, narrow bool) string {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(a.opts.PerPage))
	q.Set("page", strconv.Itoa(page))
	q.Set("postseason", "false")
	q.Add("seasons[]", strconv.Itoa(season))
	if narrow {
		q.Add("team_ids[]", strconv.Itoa(teamID))
	}
	return a.opts.BaseURL + "/games?" + q.Encode()
}

// FetchGameBoxscore pages through the stats endpoint for one game and keeps
// only the given team's lines.
func (a *Adapter) FetchGameBoxscore(ctx context.Context, gameID int, abbr string) ([]provider.RawBoxscoreLine, error) {
	var out []provider.RawBoxscoreLine
	page := 1
	for i := 0; i < a.opts.BoxscorePages; i++ {
		q := url.Values{}
		q.Set("per_page", strconv.Itoa(a.opts.PerPage))
		q.Set("page", strconv.Itoa(page))
		q.Add("game_ids[]", strconv.Itoa(gameID))
		u := a.opts.BaseURL + "/stats?" + q.Encode()

		var resp statsResponse
		if err := a.client.GetJSONPaged(ctx, u, a.headers(), &resp); err != nil {
			return nil, fmt.Errorf("fetch game %d stats page %d: %w", gameID, page, err)
		}
		for _, s := range resp.Data {
			if s.Team.Abbreviation != abbr {
				continue
			}
			out = append(out, provider.RawBoxscoreLine{
				GameID:    gameID,
				PlayerID:  s.Player.ID,
				FirstName: s.Player.FirstName,
				LastName:  s.Player.LastName,
				Position:  s.Player.Position,
				Minutes:   deref(s.Min),
				Points:    s.Pts,
				Rebounds:  s.Reb,
				Assists:   s.Ast,
				Steals:    s.Stl,
				Blocks:    s.Blk,
				Turnovers: s.Turnover,
				FGM:       s.Fgm,
				FGA:       s.Fga,
				FG3M:      s.Fg3m,
				FG3A:      s.Fg3a,
				FTM:       s.Ftm,
				FTA:       s.Fta,
			})
		}
		next, more := resp.Meta.nextPage(page, len(resp.Data), a.opts.PerPage)
		if !more {
			break
		}
		page = next
	}
	return out, nil
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

func chunk(ids []int, size int) [][]int {
	if size <= 0 {
		size = len(ids)
	}
	var out [][]int
	for i := 0; i < len(ids); i += size {
		end := i + size
		if end > len(ids) {
			end = len(ids)
		}
		out = append(out, ids[i:end])
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// parseGameDate accepts the date formats BDL has been seen to return.
func parseGameDate(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
