// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/courtside/courtside-data/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers the read-side queries. Upsert
// statements stay inline in the store — they run once per ingestion, not
// once per request.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Players
		"players_all": `SELECT id, first_name, last_name, position, team_abbr,
			height, weight, jersey_number FROM ` + config.PlayersTable,

		// Season and last-10 stat lines
		"season_stats_by_season": `SELECT player_id, season, games_played,
			points_per_game, rebounds, assists, steals, blocks, turnovers,
			minutes_per_game, fg_pct, three_pt_pct, ft_pct
			FROM ` + config.SeasonStatsTable + ` WHERE season = $1`,
		"last10_stats_by_season": `SELECT player_id, season, games_played,
			points_per_game, rebounds, assists, steals, blocks, turnovers,
			minutes_per_game, fg_pct, three_pt_pct, ft_pct
			FROM ` + config.Last10StatsTable + ` WHERE season = $1`,

		// Recent games, date descending
		"recent_games": `SELECT id, team_abbr, season, game_date, opponent,
			is_home, us, them, diff, result
			FROM ` + config.RecentGamesTable + `
			WHERE team_abbr = $1 AND season = $2
			ORDER BY game_date DESC LIMIT $3`,

		// Per-game box score lines
		"game_stats": `SELECT game_id, player_id, season, minutes, points,
			rebounds, assists, steals, blocks, turnovers,
			fgm, fga, fg3m, fg3a, ftm, fta
			FROM ` + config.GameStatsTable + ` WHERE game_id = $1`,
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
