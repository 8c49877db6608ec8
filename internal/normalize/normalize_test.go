package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/courtside/courtside-data/internal/provider"
)

func TestParseMinutes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"clock form", "34:49", 34.8},
		{"clock form zero seconds", "12:00", 12},
		{"clock form rounds", "10:30", 10.5},
		{"decimal form", "34.8", 34.8},
		{"integer form", "36", 36},
		{"empty", "", 0},
		{"whitespace", "  ", 0},
		{"garbage", "DNP", 0},
		{"clock missing seconds", "34:", 34},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseMinutes(tt.in), 1e-9)
		})
	}
}

func TestPct(t *testing.T) {
	assert.InDelta(t, 0.5, Pct(5, 10), 1e-9)
	assert.Zero(t, Pct(3, 0))
	assert.Zero(t, Pct(0, 0))
	assert.Zero(t, Pct(1, -2))
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		in          string
		first, last string
	}{
		{"LaMelo Ball", "LaMelo", "Ball"},
		{"Gary Trent Jr.", "Gary", "Trent Jr."},
		{"Nene", "Nene", ""},
		{"", "", ""},
		{"  Miles Bridges  ", "Miles", "Bridges"},
	}
	for _, tt := range tests {
		first, last := SplitName(tt.in)
		assert.Equal(t, tt.first, first)
		assert.Equal(t, tt.last, last)
	}
}

func TestGameDerivesDiffAndResult(t *testing.T) {
	tests := []struct {
		name     string
		us, them int
		wantDiff int
		wantRes  string
	}{
		{"win", 110, 102, 8, "W"},
		{"loss", 95, 101, -6, "L"},
		{"tie counts as win", 100, 100, 0, "W"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Game(provider.RawGame{ID: 1, Us: tt.us, Them: tt.them}, "CHA", 2024)
			assert.Equal(t, tt.wantDiff, g.Diff)
			assert.Equal(t, tt.wantRes, g.Result)
			assert.Equal(t, "CHA", g.TeamAbbr)
			assert.Equal(t, 2024, g.Season)
		})
	}
}

func TestPlayerFallbackTeam(t *testing.T) {
	p := Player(provider.RawPlayer{ID: 7, FirstName: "Brandon", LastName: "Miller"}, "CHA")
	assert.Equal(t, "CHA", p.TeamAbbr)

	p = Player(provider.RawPlayer{ID: 7, TeamAbbr: "BOS"}, "CHA")
	assert.Equal(t, "BOS", p.TeamAbbr)
}

func TestSeasonStatsParsesClockMinutes(t *testing.T) {
	line := SeasonStats(provider.RawSeasonAverage{
		PlayerID:    15,
		GamesPlayed: 60,
		Minutes:     "32:30",
		Points:      23.4,
	}, 2024)
	assert.Equal(t, 15, line.PlayerID)
	assert.Equal(t, 2024, line.Season)
	assert.InDelta(t, 32.5, line.MinutesPerGame, 1e-9)
	assert.InDelta(t, 23.4, line.PointsPerGame, 1e-9)
}

func TestBoxLineStatsDerivesPercentages(t *testing.T) {
	stats := BoxLineStats(provider.RawBoxscoreLine{
		PlayerID: 3,
		Minutes:  "30:00",
		Points:   20,
		FGM:      8, FGA: 16,
		FG3M: 2, FG3A: 8,
		FTM: 2, FTA: 2,
	}, 2024)
	assert.InDelta(t, 0.5, stats.FieldGoalPercentage, 1e-9)
	assert.InDelta(t, 0.25, stats.ThreePointPercentage, 1e-9)
	assert.InDelta(t, 1.0, stats.FreeThrowPercentage, 1e-9)
	assert.InDelta(t, 30.0, stats.MinutesPlayed, 1e-9)
	assert.Equal(t, 1, stats.GamesPlayed)
}
