package nbastats

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/courtside-data/internal/provider"
)

func newTestAdapter(t *testing.T, handler http.Handler) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := provider.NewClient(provider.ClientOptions{RequestsPerMinute: 6000}, nil)
	return New(client, Options{BaseURL: srv.URL}, nil)
}

func TestSeasonParam(t *testing.T) {
	assert.Equal(t, "2024-25", seasonParam(2024))
	assert.Equal(t, "1999-00", seasonParam(1999))
	assert.Equal(t, "2009-10", seasonParam(2009))
}

func TestFormatGameID(t *testing.T) {
	assert.Equal(t, "0022400001", formatGameID(22400001))
	assert.Equal(t, "0000000042", formatGameID(42))
	assert.Equal(t, "1234567890", formatGameID(1234567890))
}

func TestOpponentFromMatchup(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CHA vs. BOS", "BOS"},
		{"CHA vs MIA", "MIA"},
		{"CHA @ NYK", "NYK"},
		{"garbage", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, opponentFromMatchup(tt.in), tt.in)
	}
}

func TestRowsZipsHeadersWithRowSet(t *testing.T) {
	resp := statsResponse{ResultSets: []resultSet{
		{
			Name:    "Other",
			Headers: []string{"X"},
			RowSet:  [][]interface{}{{1.0}},
		},
		{
			Name:    "PlayerStats",
			Headers: []string{"PLAYER_ID", "PLAYER_NAME", "PTS", "MIN"},
			RowSet: [][]interface{}{
				{7.0, "LaMelo Ball", 28.0, "34:49"},
				{12.0, "Mark Williams", nil, nil},
			},
		},
	}}

	rows := resp.rows("PlayerStats")
	require.Len(t, rows, 2)
	assert.Equal(t, 7, rows[0].int("PLAYER_ID"))
	assert.Equal(t, "LaMelo Ball", rows[0].str("PLAYER_NAME"))
	assert.InDelta(t, 28.0, rows[0].float("PTS"), 1e-9)
	assert.Equal(t, "34:49", rows[0].str("MIN"))

	// Nulls and missing keys default instead of panicking.
	assert.Zero(t, rows[1].float("PTS"))
	assert.Equal(t, "", rows[1].str("MIN"))
	assert.Zero(t, rows[1].int("NO_SUCH_COLUMN"))
}

func TestRowsFallsBackToSingularResultSet(t *testing.T) {
	resp := statsResponse{ResultSet: &resultSet{
		Headers: []string{"A"},
		RowSet:  [][]interface{}{{"x"}},
	}}
	rows := resp.rows("anything")
	require.Len(t, rows, 1)
	assert.Equal(t, "x", rows[0].str("A"))
}

func TestRowsEmptyResponse(t *testing.T) {
	assert.Empty(t, statsResponse{}.rows("PlayerStats"))
}

func TestFetchRecentGamesDerivesOpponentScore(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/teamgamelogs", r.URL.Path)
		require.Equal(t, "1610612766", r.URL.Query().Get("TeamID"))
		require.Equal(t, "2024-25", r.URL.Query().Get("Season"))
		w.Write([]byte(`{
			"resultSets": [{
				"name": "TeamGameLogs",
				"headers": ["GAME_ID", "GAME_DATE", "MATCHUP", "PTS", "PLUS_MINUS"],
				"rowSet": [
					["0022400010", "2025-01-02T00:00:00", "CHA vs. BOS", 110, 8],
					["0022400020", "2025-01-05T00:00:00", "CHA @ NYK", 95, -12]
				]
			}]
		}`))
	})

	a := newTestAdapter(t, handler)
	games, err := a.FetchRecentGames(context.Background(), "CHA", 2024, 10)

	require.NoError(t, err)
	require.Len(t, games, 2)

	// Newest first.
	assert.Equal(t, 22400020, games[0].ID)
	assert.Equal(t, "NYK", games[0].Opponent)
	assert.False(t, games[0].IsHome)
	assert.Equal(t, 95, games[0].Us)
	assert.Equal(t, 107, games[0].Them) // us - plus_minus

	assert.Equal(t, "BOS", games[1].Opponent)
	assert.True(t, games[1].IsHome)
	assert.Equal(t, 102, games[1].Them)
}

func TestFetchRecentGamesUnknownTeam(t *testing.T) {
	a := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))
	_, err := a.FetchRecentGames(context.Background(), "ZZZ", 2024, 10)
	assert.ErrorIs(t, err, provider.ErrTeamNotFound)
}

func TestFetchGameBoxscorePadsIDAndFiltersTeam(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/boxscoretraditionalv2", r.URL.Path)
		require.Equal(t, "0022400010", r.URL.Query().Get("GameID"))
		w.Write([]byte(`{
			"resultSets": [{
				"name": "PlayerStats",
				"headers": ["PLAYER_ID", "PLAYER_NAME", "TEAM_ABBREVIATION", "MIN", "PTS", "TO"],
				"rowSet": [
					[7, "LaMelo Ball", "CHA", "34:49", 28, 4],
					[99, "Jayson Tatum", "BOS", "36:00", 30, 2]
				]
			}]
		}`))
	})

	a := newTestAdapter(t, handler)
	lines, err := a.FetchGameBoxscore(context.Background(), 22400010, "CHA")

	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 7, lines[0].PlayerID)
	assert.Equal(t, "LaMelo", lines[0].FirstName)
	assert.Equal(t, "Ball", lines[0].LastName)
	assert.Equal(t, "34:49", lines[0].Minutes)
	assert.Equal(t, 4, lines[0].Turnovers)
}

func TestFetchRosterFromLeagueDash(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/leaguedashplayerstats", r.URL.Path)
		require.Equal(t, "0", r.URL.Query().Get("LastNGames"))
		require.Equal(t, "PerGame", r.URL.Query().Get("PerMode"))
		w.Write([]byte(`{
			"resultSets": [{
				"name": "LeagueDashPlayerStats",
				"headers": ["PLAYER_ID", "PLAYER_NAME"],
				"rowSet": [[7, "LaMelo Ball"], [24, "Brandon Miller"]]
			}]
		}`))
	})

	a := newTestAdapter(t, handler)
	players, err := a.FetchRoster(context.Background(), "CHA", 2024, true)

	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "LaMelo", players[0].FirstName)
	assert.Equal(t, "CHA", players[0].TeamAbbr)
}

func TestFetchWindowAveragesSetsLastN(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "10", r.URL.Query().Get("LastNGames"))
		w.Write([]byte(`{
			"resultSets": [{
				"name": "LeagueDashPlayerStats",
				"headers": ["PLAYER_ID", "GP", "MIN", "PTS", "FG_PCT"],
				"rowSet": [[7, 10, "33.5", 25.1, 0.462]]
			}]
		}`))
	})

	a := newTestAdapter(t, handler)
	averages, err := a.FetchWindowAverages(context.Background(), "CHA", 2024, 10)

	require.NoError(t, err)
	require.Len(t, averages, 1)
	avg := averages[7]
	assert.Equal(t, 10, avg.GamesPlayed)
	assert.Equal(t, "33.5", avg.Minutes)
	assert.InDelta(t, 0.462, avg.FieldGoalPct, 1e-9)
}
