package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/courtside/courtside-data/internal/model"
)

// Memory is an in-process Store used by tests and local development. It
// mirrors the Postgres conflict-key semantics: one row per natural key,
// last writer wins.
type Memory struct {
	mu          sync.Mutex
	players     map[int]model.Player
	seasonStats map[statKey]model.SeasonStatLine
	last10Stats map[statKey]model.SeasonStatLine
	games       map[int]model.RecentGame
	gameStats   map[gameStatKey]model.GamePlayerStatLine
	runs        map[int64]*model.IngestionRun
	nextRunID   int64
}

type statKey struct {
	PlayerID int
	Season   int
}

type gameStatKey struct {
	GameID   int
	PlayerID int
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		players:     make(map[int]model.Player),
		seasonStats: make(map[statKey]model.SeasonStatLine),
		last10Stats: make(map[statKey]model.SeasonStatLine),
		games:       make(map[int]model.RecentGame),
		gameStats:   make(map[gameStatKey]model.GamePlayerStatLine),
		runs:        make(map[int64]*model.IngestionRun),
	}
}

func (m *Memory) UpsertPlayers(_ context.Context, players []model.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range players {
		m.players[p.ID] = p
	}
	return nil
}

func (m *Memory) UpsertSeasonStats(_ context.Context, lines []model.SeasonStatLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range lines {
		m.seasonStats[statKey{l.PlayerID, l.Season}] = l
	}
	return nil
}

func (m *Memory) UpsertLast10Stats(_ context.Context, lines []model.SeasonStatLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range lines {
		m.last10Stats[statKey{l.PlayerID, l.Season}] = l
	}
	return nil
}

func (m *Memory) UpsertRecentGames(_ context.Context, games []model.RecentGame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range games {
		m.games[g.ID] = g
	}
	return nil
}

func (m *Memory) UpsertGameStats(_ context.Context, lines []model.GamePlayerStatLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range lines {
		m.gameStats[gameStatKey{l.GameID, l.PlayerID}] = l
	}
	return nil
}

func (m *Memory) CreateRun(_ context.Context, source string, season int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextRunID++
	id := m.nextRunID
	m.runs[id] = &model.IngestionRun{
		ID:        id,
		Source:    source,
		Season:    season,
		Status:    model.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	return id, nil
}

func (m *Memory) FinishRun(_ context.Context, runID int64, status, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if run, ok := m.runs[runID]; ok {
		now := time.Now().UTC()
		run.Status = status
		run.Error = errMsg
		run.FinishedAt = &now
	}
	return nil
}

// Runs returns a copy of all run rows, ordered by id. Test helper.
func (m *Memory) Runs() []model.IngestionRun {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.IngestionRun, 0, len(m.runs))
	for _, r := range m.runs {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *Memory) Players(_ context.Context) ([]model.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Player, 0, len(m.players))
	for _, p := range m.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SeasonStats(_ context.Context, season int) ([]model.SeasonStatLine, error) {
	return m.lines(m.seasonStats, season), nil
}

func (m *Memory) Last10Stats(_ context.Context, season int) ([]model.SeasonStatLine, error) {
	return m.lines(m.last10Stats, season), nil
}

func (m *Memory) lines(src map[statKey]model.SeasonStatLine, season int) []model.SeasonStatLine {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.SeasonStatLine
	for k, l := range src {
		if k.Season == season {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}

func (m *Memory) RecentGames(_ context.Context, team string, season, limit int) ([]model.RecentGame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.RecentGame
	for _, g := range m.games {
		if g.TeamAbbr == team && g.Season == season {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) GameStats(_ context.Context, gameID int) ([]model.GamePlayerStatLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.GamePlayerStatLine
	for k, l := range m.gameStats {
		if k.GameID == gameID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}

// AllGameStats returns every box-score line. Used to derive trailing-window
// aggregates and by tests.
func (m *Memory) AllGameStats() []model.GamePlayerStatLine {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.GamePlayerStatLine, 0, len(m.gameStats))
	for _, l := range m.gameStats {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GameID != out[j].GameID {
			return out[i].GameID < out[j].GameID
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}
