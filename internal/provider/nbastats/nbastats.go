// Package nbastats adapts stats.nba.com (tabular resultSets responses) to
// the provider contract. The endpoint expects browser-like headers and a
// large flat filter query string, most of it blank for "no filter".
package nbastats

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/courtside/courtside-data/internal/normalize"
	"github.com/courtside/courtside-data/internal/provider"
)

// SourceName identifies this adapter in ingestion run records.
const SourceName = "nba-stats"

// TeamIDs maps abbreviations to the league's team identifiers. stats.nba.com
// has no teams listing to page through, so an unknown abbreviation cannot be
// resolved at runtime.
var TeamIDs = map[string]int{
	"CHA": 1610612766,
}

// Options carries header overrides and the base URL. TeamAbbr scopes the
// operations whose upstream query is team-wide (season and window averages).
type Options struct {
	BaseURL   string
	UserAgent string
	Referer   string
	Origin    string
	TeamAbbr  string
}

// Adapter implements provider.Provider against stats.nba.com.
type Adapter struct {
	client *provider.Client
	opts   Options
	logger *slog.Logger
}

// New creates an NBA Stats adapter sharing the given fetch client.
func New(client *provider.Client, opts Options, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://stats.nba.com/stats"
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"
	}
	if opts.Referer == "" {
		opts.Referer = "https://www.nba.com/"
	}
	if opts.Origin == "" {
		opts.Origin = "https://www.nba.com"
	}
	if opts.TeamAbbr == "" {
		opts.TeamAbbr = "CHA"
	}
	return &Adapter{client: client, opts: opts, logger: logger}
}

// Name implements provider.Provider.
func (a *Adapter) Name() string { return SourceName }

// headers builds the header set stats.nba.com expects from browsers.
func (a *Adapter) headers() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json, text/plain, */*")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Origin", a.opts.Origin)
	h.Set("Referer", a.opts.Referer)
	h.Set("User-Agent", a.opts.UserAgent)
	h.Set("x-nba-stats-origin", "stats")
	h.Set("x-nba-stats-token", "true")
	return h
}

// seasonParam formats a season start year the way the API wants ("2024-25").
func seasonParam(startYear int) string {
	return fmt.Sprintf("%d-%02d", startYear, (startYear+1)%100)
}

// formatGameID zero-pads a game id to the 10 digits the API requires
// (e.g. 0022400001).
func formatGameID(id int) string {
	s := strconv.Itoa(id)
	if len(s) >= 10 {
		return s
	}
	return strings.Repeat("0", 10-len(s)) + s
}

// ResolveTeamID only consults the static table: there is no listing
// endpoint to page through on this provider.
func (a *Adapter) ResolveTeamID(ctx context.Context, abbr string) (int, bool, error) {
	id, ok := TeamIDs[abbr]
	return id, ok, nil
}

// FetchRoster derives the roster from the season player-stats table: every
// player with a row played for the team this season. full is irrelevant
// here — the endpoint returns the whole team in one response.
func (a *Adapter) FetchRoster(ctx context.Context, abbr string, season int, full bool) ([]provider.RawPlayer, error) {
	rows, err := a.leagueDashPlayerStats(ctx, abbr, season, 0)
	if err != nil {
		return nil, err
	}
	out := make([]provider.RawPlayer, 0, len(rows))
	for _, r := range rows {
		first, last := normalize.SplitName(r.str("PLAYER_NAME"))
		out = append(out, provider.RawPlayer{
			ID:        r.int("PLAYER_ID"),
			FirstName: first,
			LastName:  last,
			TeamAbbr:  abbr,
		})
	}
	return out, nil
}

// FetchSeasonAverages returns per-player season aggregates. The endpoint is
// team-scoped, so one request covers every id; results are filtered to the
// requested set.
func (a *Adapter) FetchSeasonAverages(ctx context.Context, playerIDs []int, season int) (map[int]provider.RawSeasonAverage, error) {
	return a.windowAverages(ctx, playerIDs, season, 0)
}

// FetchWindowAverages serves trailing-window per-game averages directly via
// the LastNGames filter. Satisfies provider-side last-10 ingestion.
func (a *Adapter) FetchWindowAverages(ctx context.Context, abbr string, season, lastN int) (map[int]provider.RawSeasonAverage, error) {
	rows, err := a.leagueDashPlayerStats(ctx, abbr, season, lastN)
	if err != nil {
		return nil, err
	}
	out := make(map[int]provider.RawSeasonAverage, len(rows))
	for _, r := range rows {
		avg := rowToAverage(r)
		out[avg.PlayerID] = avg
	}
	return out, nil
}

func (a *Adapter) windowAverages(ctx context.Context, playerIDs []int, season, lastN int) (map[int]provider.RawSeasonAverage, error) {
	// Single team-wide request; the id set only filters the result.
	rows, err := a.leagueDashPlayerStats(ctx, a.opts.TeamAbbr, season, lastN)
	if err != nil {
		return nil, err
	}
	want := make(map[int]bool, len(playerIDs))
	for _, id := range playerIDs {
		want[id] = true
	}
	out := make(map[int]provider.RawSeasonAverage)
	for _, r := range rows {
		avg := rowToAverage(r)
		if len(want) == 0 || want[avg.PlayerID] {
			out[avg.PlayerID] = avg
		}
	}
	return out, nil
}

func rowToAverage(r record) provider.RawSeasonAverage {
	return provider.RawSeasonAverage{
		PlayerID:      r.int("PLAYER_ID"),
		GamesPlayed:   r.int("GP"),
		Minutes:       r.str("MIN"), // decimal on this endpoint
		Points:        r.float("PTS"),
		Rebounds:      r.float("REB"),
		Assists:       r.float("AST"),
		Steals:        r.float("STL"),
		Blocks:        r.float("BLK"),
		Turnovers:     r.float("TOV"),
		FieldGoalPct:  r.float("FG_PCT"),
		ThreePointPct: r.float("FG3_PCT"),
		FreeThrowPct:  r.float("FT_PCT"),
	}
}

// FetchRecentGames reads the team game log, derives opponent points from
// PLUS_MINUS, sorts date descending, and returns the first n.
func (a *Adapter) FetchRecentGames(ctx context.Context, abbr string, season, n int) ([]provider.RawGame, error) {
	teamID, ok := TeamIDs[abbr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", provider.ErrTeamNotFound, abbr)
	}

	params := url.Values{}
	params.Set("TeamID", strconv.Itoa(teamID))
	params.Set("Season", seasonParam(season))
	params.Set("SeasonType", "Regular Season")

	var resp statsResponse
	u := a.opts.BaseURL + "/teamgamelogs?" + params.Encode()
	if err := a.client.GetJSON(ctx, u, a.headers(), &resp); err != nil {
		return nil, fmt.Errorf("fetch team game logs: %w", err)
	}

	rows := resp.rows("TeamGameLogs")
	games := make([]provider.RawGame, 0, len(rows))
	for _, r := range rows {
		matchup := r.str("MATCHUP")
		isHome := strings.Contains(matchup, " vs")
		opponent := opponentFromMatchup(matchup)
		us := r.int("PTS")
		them := us - r.int("PLUS_MINUS")
		games = append(games, provider.RawGame{
			ID:       r.int("GAME_ID"),
			Date:     r.str("GAME_DATE"),
			Opponent: opponent,
			IsHome:   isHome,
			Us:       us,
			Them:     them,
		})
	}

	sort.SliceStable(games, func(i, j int) bool {
		return parseGameDate(games[i].Date).After(parseGameDate(games[j].Date))
	})
	if len(games) > n {
		games = games[:n]
	}
	return games, nil
}

// opponentFromMatchup extracts the opponent abbreviation from strings like
// "CHA vs. BOS" or "CHA @ BOS".
func opponentFromMatchup(matchup string) string {
	for _, sep := range []string{" vs. ", " vs ", " @ "} {
		if _, after, ok := strings.Cut(matchup, sep); ok {
			return strings.TrimSpace(after)
		}
	}
	return ""
}

// FetchGameBoxscore reads the traditional box score and keeps only the
// given team's player lines.
func (a *Adapter) FetchGameBoxscore(ctx context.Context, gameID int, abbr string) ([]provider.RawBoxscoreLine, error) {
	params := url.Values{}
	params.Set("GameID", formatGameID(gameID))

	var resp statsResponse
	u := a.opts.BaseURL + "/boxscoretraditionalv2?" + params.Encode()
	if err := a.client.GetJSON(ctx, u, a.headers(), &resp); err != nil {
		return nil, fmt.Errorf("fetch boxscore %d: %w", gameID, err)
	}

	var out []provider.RawBoxscoreLine
	for _, r := range resp.rows("PlayerStats") {
		if r.str("TEAM_ABBREVIATION") != abbr {
			continue
		}
		first, last := normalize.SplitName(r.str("PLAYER_NAME"))
		tov := r.int("TO")
		if _, ok := r["TOV"]; ok {
			tov = r.int("TOV")
		}
		out = append(out, provider.RawBoxscoreLine{
			GameID:    gameID,
			PlayerID:  r.int("PLAYER_ID"),
			FirstName: first,
			LastName:  last,
			Minutes:   r.str("MIN"),
			Points:    r.int("PTS"),
			Rebounds:  r.int("REB"),
			Assists:   r.int("AST"),
			Steals:    r.int("STL"),
			Blocks:    r.int("BLK"),
			Turnovers: tov,
			FGM:       r.int("FGM"),
			FGA:       r.int("FGA"),
			FG3M:      r.int("FG3M"),
			FG3A:      r.int("FG3A"),
			FTM:       r.int("FTM"),
			FTA:       r.int("FTA"),
		})
	}
	return out, nil
}

// leagueDashPlayerStats issues the per-game player stats query for one team.
// lastN=0 means the full season.
func (a *Adapter) leagueDashPlayerStats(ctx context.Context, abbr string, season, lastN int) ([]record, error) {
	teamID, ok := TeamIDs[abbr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", provider.ErrTeamNotFound, abbr)
	}

	params := leagueDashParams(seasonParam(season), teamID, lastN)
	var resp statsResponse
	u := a.opts.BaseURL + "/leaguedashplayerstats?" + params.Encode()
	if err := a.client.GetJSON(ctx, u, a.headers(), &resp); err != nil {
		return nil, fmt.Errorf("fetch player stats: %w", err)
	}
	return resp.rows("LeagueDashPlayerStats"), nil
}

// leagueDashParams is the full filter set the endpoint insists on receiving,
// blank/zero meaning "no filter".
func leagueDashParams(season string, teamID, lastN int) url.Values {
	p := url.Values{}
	for _, k := range []string{
		"College", "Conference", "Country", "DateFrom", "DateTo", "Division",
		"DraftPick", "DraftYear", "GameScope", "GameSegment", "Height",
		"Location", "Outcome", "PlayerExperience", "PlayerPosition",
		"SeasonSegment", "ShotClockRange", "StarterBench", "VsConference",
		"VsDivision", "Weight",
	} {
		p.Set(k, "")
	}
	p.Set("LastNGames", strconv.Itoa(lastN))
	p.Set("LeagueID", "00")
	p.Set("MeasureType", "Base")
	p.Set("Month", "0")
	p.Set("OpponentTeamID", "0")
	p.Set("PaceAdjust", "N")
	p.Set("PerMode", "PerGame")
	p.Set("Period", "0")
	p.Set("PlusMinus", "N")
	p.Set("PORound", "0")
	p.Set("Rank", "N")
	p.Set("Season", season)
	p.Set("SeasonType", "Regular Season")
	p.Set("TeamID", strconv.Itoa(teamID))
	p.Set("TwoWay", "0")
	return p
}

func parseGameDate(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
