// Package store defines the persistence contract the ingestion core needs:
// idempotent upserts keyed by natural keys, simple filtered reads, and the
// ingestion-run audit trail. The core never performs schema changes.
package store

import (
	"context"

	"github.com/courtside/courtside-data/internal/model"
)

// Store is the persistence collaborator. Upserts overwrite on conflict with
// the row's natural key, so re-running an ingestion stage never duplicates.
type Store interface {
	// Writes (all upsert-on-conflict)
	UpsertPlayers(ctx context.Context, players []model.Player) error
	UpsertSeasonStats(ctx context.Context, lines []model.SeasonStatLine) error
	UpsertLast10Stats(ctx context.Context, lines []model.SeasonStatLine) error
	UpsertRecentGames(ctx context.Context, games []model.RecentGame) error
	UpsertGameStats(ctx context.Context, lines []model.GamePlayerStatLine) error

	// Ingestion run audit trail
	CreateRun(ctx context.Context, source string, season int) (int64, error)
	FinishRun(ctx context.Context, runID int64, status, errMsg string) error

	// Reads
	Players(ctx context.Context) ([]model.Player, error)
	SeasonStats(ctx context.Context, season int) ([]model.SeasonStatLine, error)
	Last10Stats(ctx context.Context, season int) ([]model.SeasonStatLine, error)
	RecentGames(ctx context.Context, team string, season, limit int) ([]model.RecentGame, error)
	GameStats(ctx context.Context, gameID int) ([]model.GamePlayerStatLine, error)
}
