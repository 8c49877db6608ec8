package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/courtside-data/internal/config"
	"github.com/courtside/courtside-data/internal/model"
	"github.com/courtside/courtside-data/internal/provider"
	"github.com/courtside/courtside-data/internal/store"
)

// fakeProvider scripts every upstream call. Zero-value fields mean "succeed
// with nothing".
type fakeProvider struct {
	roster       []provider.RawPlayer
	rosterErr    error
	rosterFull   *bool // records the full flag of the last roster call
	averages     map[int]provider.RawSeasonAverage
	averagesErr  error
	averageCalls int
	games        []provider.RawGame
	gamesErr     error
	box          map[int][]provider.RawBoxscoreLine
	boxErr       map[int]error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) ResolveTeamID(ctx context.Context, abbr string) (int, bool, error) {
	return 4, true, nil
}

func (f *fakeProvider) FetchRoster(ctx context.Context, abbr string, season int, full bool) ([]provider.RawPlayer, error) {
	if f.rosterFull != nil {
		*f.rosterFull = full
	}
	return f.roster, f.rosterErr
}

func (f *fakeProvider) FetchSeasonAverages(ctx context.Context, ids []int, season int) (map[int]provider.RawSeasonAverage, error) {
	f.averageCalls++
	return f.averages, f.averagesErr
}

func (f *fakeProvider) FetchRecentGames(ctx context.Context, abbr string, season, n int) ([]provider.RawGame, error) {
	return f.games, f.gamesErr
}

func (f *fakeProvider) FetchGameBoxscore(ctx context.Context, gameID int, abbr string) ([]provider.RawBoxscoreLine, error) {
	if err, ok := f.boxErr[gameID]; ok {
		return nil, err
	}
	return f.box[gameID], nil
}

// windowedProvider adds the direct trailing-window endpoint.
type windowedProvider struct {
	fakeProvider
	window    map[int]provider.RawSeasonAverage
	windowErr error
	lastN     int
}

func (f *windowedProvider) FetchWindowAverages(ctx context.Context, abbr string, season, lastN int) (map[int]provider.RawSeasonAverage, error) {
	f.lastN = lastN
	return f.window, f.windowErr
}

func testConfig(tier string) *config.Config {
	return &config.Config{
		TeamAbbr:     "CHA",
		BDLTier:      tier,
		RecentWindow: 10,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fullFixture() *fakeProvider {
	return &fakeProvider{
		roster: []provider.RawPlayer{
			{ID: 7, FirstName: "LaMelo", LastName: "Ball"},
			{ID: 24, FirstName: "Brandon", LastName: "Miller"},
		},
		averages: map[int]provider.RawSeasonAverage{
			7:  {PlayerID: 7, GamesPlayed: 50, Minutes: "32:30", Points: 25},
			24: {PlayerID: 24, GamesPlayed: 60, Minutes: "33.1", Points: 21},
		},
		games: []provider.RawGame{
			{ID: 101, Date: "2025-01-10", Opponent: "BOS", IsHome: true, Us: 110, Them: 100},
			{ID: 102, Date: "2025-01-08", Opponent: "NYK", IsHome: false, Us: 95, Them: 99},
		},
		box: map[int][]provider.RawBoxscoreLine{
			101: {{GameID: 101, PlayerID: 7, Points: 28, FGM: 10, FGA: 20, Minutes: "34:00"}},
			102: {{GameID: 102, PlayerID: 7, Points: 22, FGM: 8, FGA: 10, Minutes: "31:00"}},
		},
	}
}

func TestRunSuccessWritesOneTerminalRow(t *testing.T) {
	mem := store.NewMemory()
	fake := fullFixture()
	r := NewRunner(mem, fake, testConfig(config.TierPro), testLogger())

	result, err := r.Run(context.Background(), 2024, "")
	require.NoError(t, err)

	runs := mem.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusSuccess, runs[0].Status)
	assert.Empty(t, runs[0].Error)
	require.NotNil(t, runs[0].FinishedAt)

	assert.Equal(t, 2, result.Players)
	assert.Equal(t, 2, result.SeasonStats)
	assert.Equal(t, 2, result.Games)
	assert.Equal(t, 2, result.GameStats)
	assert.Equal(t, RosterFull, result.RosterSource)
	assert.True(t, result.SeasonAveragesAttempted)
	assert.Empty(t, result.SeasonAveragesError)
	assert.Empty(t, result.BoxscoreErrors)
}

func TestRunRosterFailureWritesErrorRow(t *testing.T) {
	mem := store.NewMemory()
	fake := &fakeProvider{rosterErr: errors.New("boom")}
	r := NewRunner(mem, fake, testConfig(config.TierPro), testLogger())

	_, err := r.Run(context.Background(), 2024, "")
	require.Error(t, err)

	runs := mem.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusError, runs[0].Status)
	assert.Contains(t, runs[0].Error, "boom")
	require.NotNil(t, runs[0].FinishedAt)
}

func TestRunFreeTierDegrades(t *testing.T) {
	mem := store.NewMemory()
	fake := fullFixture()
	var full bool
	fake.rosterFull = &full

	r := NewRunner(mem, fake, testConfig(config.TierFree), testLogger())
	result, err := r.Run(context.Background(), 2024, "")
	require.NoError(t, err)

	// Page-one roster, season averages skipped entirely.
	assert.False(t, full)
	assert.Equal(t, RosterFirstPage, result.RosterSource)
	assert.False(t, result.SeasonAveragesAttempted)
	assert.Zero(t, fake.averageCalls)
	assert.NotEmpty(t, result.Skipped)
	assert.Zero(t, result.SeasonStats)

	// The degraded run still terminates successfully.
	runs := mem.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusSuccess, runs[0].Status)
}

func TestRunMiniModeDegradesOnAnyTier(t *testing.T) {
	mem := store.NewMemory()
	fake := fullFixture()
	var full bool
	fake.rosterFull = &full

	r := NewRunner(mem, fake, testConfig(config.TierPro), testLogger())
	result, err := r.Run(context.Background(), 2024, ModeMini)
	require.NoError(t, err)

	// Same degradation as the free tier, even on a paid key.
	assert.False(t, full)
	assert.Equal(t, RosterFirstPage, result.RosterSource)
	assert.False(t, result.SeasonAveragesAttempted)
	assert.Zero(t, fake.averageCalls)
	assert.Equal(t, ModeMini, result.Mode)
	assert.Equal(t, model.RunStatusSuccess, mem.Runs()[0].Status)
}

func TestRunSeasonAveragesFailureIsNonFatal(t *testing.T) {
	mem := store.NewMemory()
	fake := fullFixture()
	fake.averagesErr = &provider.UpstreamError{StatusCode: 500, URL: "x"}

	r := NewRunner(mem, fake, testConfig(config.TierPro), testLogger())
	result, err := r.Run(context.Background(), 2024, "")

	require.NoError(t, err)
	assert.True(t, result.SeasonAveragesAttempted)
	assert.NotEmpty(t, result.SeasonAveragesError)
	assert.Zero(t, result.SeasonStats)
	assert.Equal(t, model.RunStatusSuccess, mem.Runs()[0].Status)
}

func TestRunBoxscoreFailureIsPartial(t *testing.T) {
	mem := store.NewMemory()
	fake := fullFixture()
	fake.boxErr = map[int]error{102: errors.New("upstream hiccup")}

	r := NewRunner(mem, fake, testConfig(config.TierPro), testLogger())
	result, err := r.Run(context.Background(), 2024, "")

	require.NoError(t, err)
	assert.Equal(t, 1, result.GameStats)
	require.Len(t, result.BoxscoreErrors, 1)
	assert.Contains(t, result.BoxscoreErrors[0], "game 102")
	assert.Equal(t, model.RunStatusSuccess, mem.Runs()[0].Status)
}

func TestRunDerivesLast10FromBoxscores(t *testing.T) {
	mem := store.NewMemory()
	r := NewRunner(mem, fullFixture(), testConfig(config.TierPro), testLogger())

	result, err := r.Run(context.Background(), 2024, "")
	require.NoError(t, err)

	assert.Equal(t, Last10FromBoxscores, result.Last10Source)
	assert.Equal(t, 1, result.Last10Stats)

	lines, err := mem.Last10Stats(context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 7, lines[0].PlayerID)
	assert.Equal(t, 2, lines[0].GamesPlayed)
	// Totals-based shooting percentage: 18/30, not the mean of 0.5 and 0.8.
	assert.InDelta(t, 0.6, lines[0].FieldGoalPct, 1e-9)
	assert.InDelta(t, 25, lines[0].PointsPerGame, 1e-9)
}

func TestRunPrefersProviderWindow(t *testing.T) {
	mem := store.NewMemory()
	fake := &windowedProvider{
		fakeProvider: *fullFixture(),
		window: map[int]provider.RawSeasonAverage{
			7: {PlayerID: 7, GamesPlayed: 10, Minutes: "33.5", Points: 26.2},
		},
	}

	r := NewRunner(mem, fake, testConfig(config.TierPro), testLogger())
	result, err := r.Run(context.Background(), 2024, "")

	require.NoError(t, err)
	assert.Equal(t, Last10FromProvider, result.Last10Source)
	assert.Equal(t, 10, fake.lastN)

	lines, err := mem.Last10Stats(context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.InDelta(t, 26.2, lines[0].PointsPerGame, 1e-9)
}

func TestRunIsIdempotent(t *testing.T) {
	mem := store.NewMemory()
	r := NewRunner(mem, fullFixture(), testConfig(config.TierPro), testLogger())

	_, err := r.Run(context.Background(), 2024, "")
	require.NoError(t, err)
	_, err = r.Run(context.Background(), 2024, "")
	require.NoError(t, err)

	players, err := mem.Players(context.Background())
	require.NoError(t, err)
	assert.Len(t, players, 2)

	stats, err := mem.SeasonStats(context.Background(), 2024)
	require.NoError(t, err)
	assert.Len(t, stats, 2)

	// One audit row per invocation.
	assert.Len(t, mem.Runs(), 2)
}
