package bdl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/courtside-data/internal/provider"
)

func newTestAdapter(t *testing.T, handler http.Handler, opts Options) (*Adapter, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts.BaseURL = srv.URL
	client := provider.NewClient(provider.ClientOptions{RequestsPerMinute: 6000}, nil)
	return New(client, opts, nil), srv
}

func intp(n int) *int { return &n }

func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNextPage(t *testing.T) {
	tests := []struct {
		name     string
		meta     pageMeta
		page     int
		pageLen  int
		wantNext int
		wantMore bool
	}{
		{"cursor", pageMeta{NextPage: intp(3)}, 2, 100, 3, true},
		{"cursor equals current stops", pageMeta{NextPage: intp(2)}, 2, 100, 0, false},
		{"total pages", pageMeta{TotalPages: intp(4)}, 2, 100, 3, true},
		{"total pages reached", pageMeta{TotalPages: intp(2)}, 2, 100, 0, false},
		{"full page heuristic", pageMeta{}, 1, 100, 2, true},
		{"short page stops", pageMeta{}, 1, 37, 0, false},
		{"empty page stops", pageMeta{}, 1, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, more := tt.meta.nextPage(tt.page, tt.pageLen, 100)
			assert.Equal(t, tt.wantMore, more)
			if more {
				assert.Equal(t, tt.wantNext, next)
			}
		})
	}
}

func TestFetchRosterFullPaginates(t *testing.T) {
	var requests []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Path+"?page="+r.URL.Query().Get("page"))
		require.Equal(t, "/players", r.URL.Path)
		require.Equal(t, "4", r.URL.Query().Get("team_ids[]"))
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		count := 100
		meta := pageMeta{NextPage: intp(2)}
		if page == 2 {
			count = 37
			meta = pageMeta{}
		}
		rows := make([]playerRow, count)
		for i := range rows {
			rows[i] = playerRow{
				ID:        (page-1)*100 + i + 1,
				FirstName: "Player",
				LastName:  fmt.Sprintf("%d", (page-1)*100+i+1),
				Team:      &teamRow{ID: 4, Abbreviation: "CHA"},
			}
		}
		writeJSON(t, w, playersResponse{Data: rows, Meta: meta})
	})

	a, _ := newTestAdapter(t, handler, Options{APIKey: "test-key"})
	players, err := a.FetchRoster(context.Background(), "CHA", 2024, true)

	require.NoError(t, err)
	assert.Len(t, players, 137)
	assert.Len(t, requests, 2)
	assert.Equal(t, "CHA", players[0].TeamAbbr)
}

func TestFetchRosterFirstPageOnly(t *testing.T) {
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		rows := make([]playerRow, 100)
		for i := range rows {
			rows[i] = playerRow{ID: i + 1, Team: &teamRow{Abbreviation: "CHA"}}
		}
		// Metadata says there is more; the call must not follow it.
		writeJSON(t, w, playersResponse{Data: rows, Meta: pageMeta{NextPage: intp(2)}})
	})

	a, _ := newTestAdapter(t, handler, Options{})
	players, err := a.FetchRoster(context.Background(), "CHA", 2024, false)

	require.NoError(t, err)
	assert.Len(t, players, 100)
	assert.Equal(t, 1, calls)
}

func TestFetchRosterUnknownTeamFiltersClientSide(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/teams":
			// No matching team anywhere.
			writeJSON(t, w, teamsResponse{Data: []teamRow{{ID: 1, Abbreviation: "ATL"}}})
		case "/players":
			require.Empty(t, r.URL.Query().Get("team_ids[]"))
			writeJSON(t, w, playersResponse{Data: []playerRow{
				{ID: 1, Team: &teamRow{Abbreviation: "XYZ"}},
				{ID: 2, Team: &teamRow{Abbreviation: "ATL"}},
			}})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	a, _ := newTestAdapter(t, handler, Options{})
	players, err := a.FetchRoster(context.Background(), "XYZ", 2024, true)

	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, 1, players[0].ID)
}

func TestFetchSeasonAveragesBatches(t *testing.T) {
	var batches [][]string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/season_averages", r.URL.Path)
		ids := r.URL.Query()["player_ids[]"]
		batches = append(batches, ids)

		rows := make([]seasonAverageRow, 0, len(ids))
		for _, s := range ids {
			id, _ := strconv.Atoi(s)
			min := "30:15"
			rows = append(rows, seasonAverageRow{PlayerID: id, GamesPlayed: 50, Min: &min, Pts: 10})
		}
		writeJSON(t, w, seasonAveragesResponse{Data: rows})
	})

	a, _ := newTestAdapter(t, handler, Options{SeasonAvgBatch: 25})
	ids := make([]int, 60)
	for i := range ids {
		ids[i] = i + 1
	}
	averages, err := a.FetchSeasonAverages(context.Background(), ids, 2024)

	require.NoError(t, err)
	assert.Len(t, averages, 60)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 25)
	assert.Len(t, batches[1], 25)
	assert.Len(t, batches[2], 10)
	assert.Equal(t, "30:15", averages[1].Minutes)
}

func TestFetchRecentGamesSortsAndMapsSides(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/games", r.URL.Path)
		require.Equal(t, "false", r.URL.Query().Get("postseason"))
		writeJSON(t, w, gamesResponse{Data: []gameRow{
			{
				ID: 1, Date: "2025-01-02",
				HomeTeam: teamRow{Abbreviation: "CHA"}, VisitorTeam: teamRow{Abbreviation: "BOS"},
				HomeScore: 110, VisitorScore: 100,
			},
			{
				ID: 2, Date: "2025-01-10",
				HomeTeam: teamRow{Abbreviation: "NYK"}, VisitorTeam: teamRow{Abbreviation: "CHA"},
				HomeScore: 120, VisitorScore: 95,
			},
			{
				ID: 3, Date: "2025-01-06",
				HomeTeam: teamRow{Abbreviation: "CHA"}, VisitorTeam: teamRow{Abbreviation: "MIA"},
				HomeScore: 99, VisitorScore: 98,
			},
		}})
	})

	a, _ := newTestAdapter(t, handler, Options{})
	games, err := a.FetchRecentGames(context.Background(), "CHA", 2024, 2)

	require.NoError(t, err)
	require.Len(t, games, 2)

	// Newest first.
	assert.Equal(t, 2, games[0].ID)
	assert.Equal(t, 3, games[1].ID)

	// Away game: us/them swapped, opponent is the home side.
	assert.False(t, games[0].IsHome)
	assert.Equal(t, "NYK", games[0].Opponent)
	assert.Equal(t, 95, games[0].Us)
	assert.Equal(t, 120, games[0].Them)

	// Home game.
	assert.True(t, games[1].IsHome)
	assert.Equal(t, "MIA", games[1].Opponent)
	assert.Equal(t, 99, games[1].Us)
	assert.Equal(t, 98, games[1].Them)
}

func TestFetchGameBoxscoreFiltersTeam(t *testing.T) {
	min := "28:42"
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/stats", r.URL.Path)
		require.Equal(t, "15908525", r.URL.Query().Get("game_ids[]"))

		resp := statsResponse{}
		us := statRow{Team: teamRow{Abbreviation: "CHA"}, Min: &min, Pts: 25, Fgm: 9, Fga: 18}
		us.Game.ID = 15908525
		us.Player.ID = 7
		them := statRow{Team: teamRow{Abbreviation: "BOS"}, Pts: 30}
		them.Game.ID = 15908525
		them.Player.ID = 8
		resp.Data = []statRow{us, them}
		writeJSON(t, w, resp)
	})

	a, _ := newTestAdapter(t, handler, Options{})
	lines, err := a.FetchGameBoxscore(context.Background(), 15908525, "CHA")

	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 7, lines[0].PlayerID)
	assert.Equal(t, "28:42", lines[0].Minutes)
	assert.Equal(t, 25, lines[0].Points)
}

func TestChunk(t *testing.T) {
	assert.Len(t, chunk([]int{1, 2, 3, 4, 5}, 2), 3)
	assert.Nil(t, chunk(nil, 2))
	assert.Equal(t, [][]int{{1, 2, 3}}, chunk([]int{1, 2, 3}, 0))
}
