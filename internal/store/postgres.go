package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/courtside/courtside-data/internal/config"
	"github.com/courtside/courtside-data/internal/model"
)

// Postgres implements Store on a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an existing pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// --------------------------------------------------------------------------
// Upserts
// --------------------------------------------------------------------------

// UpsertPlayers writes roster rows, overwriting identity fields on conflict.
func (s *Postgres) UpsertPlayers(ctx context.Context, players []model.Player) error {
	for _, p := range players {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO `+config.PlayersTable+` (
				id, first_name, last_name, position, team_abbr,
				height, weight, jersey_number
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			ON CONFLICT (id) DO UPDATE SET
				first_name = EXCLUDED.first_name,
				last_name = EXCLUDED.last_name,
				position = EXCLUDED.position,
				team_abbr = EXCLUDED.team_abbr,
				height = COALESCE(EXCLUDED.height, `+config.PlayersTable+`.height),
				weight = COALESCE(EXCLUDED.weight, `+config.PlayersTable+`.weight),
				jersey_number = COALESCE(EXCLUDED.jersey_number, `+config.PlayersTable+`.jersey_number),
				updated_at = NOW()`,
			p.ID, p.FirstName, p.LastName, nilEmpty(p.Position), p.TeamAbbr,
			p.Height, p.Weight, p.JerseyNumber,
		)
		if err != nil {
			return fmt.Errorf("upsert player %d: %w", p.ID, err)
		}
	}
	return nil
}

// UpsertSeasonStats overwrites the (player_id, season) row wholesale.
func (s *Postgres) UpsertSeasonStats(ctx context.Context, lines []model.SeasonStatLine) error {
	return s.upsertStatLines(ctx, config.SeasonStatsTable, lines)
}

// UpsertLast10Stats overwrites the trailing-window row wholesale.
func (s *Postgres) UpsertLast10Stats(ctx context.Context, lines []model.SeasonStatLine) error {
	return s.upsertStatLines(ctx, config.Last10StatsTable, lines)
}

func (s *Postgres) upsertStatLines(ctx context.Context, table string, lines []model.SeasonStatLine) error {
	for _, l := range lines {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO `+table+` (
				player_id, season, games_played, points_per_game, rebounds,
				assists, steals, blocks, turnovers, minutes_per_game,
				fg_pct, three_pt_pct, ft_pct
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
			ON CONFLICT (player_id, season) DO UPDATE SET
				games_played = EXCLUDED.games_played,
				points_per_game = EXCLUDED.points_per_game,
				rebounds = EXCLUDED.rebounds,
				assists = EXCLUDED.assists,
				steals = EXCLUDED.steals,
				blocks = EXCLUDED.blocks,
				turnovers = EXCLUDED.turnovers,
				minutes_per_game = EXCLUDED.minutes_per_game,
				fg_pct = EXCLUDED.fg_pct,
				three_pt_pct = EXCLUDED.three_pt_pct,
				ft_pct = EXCLUDED.ft_pct,
				updated_at = NOW()`,
			l.PlayerID, l.Season, l.GamesPlayed, l.PointsPerGame, l.Rebounds,
			l.Assists, l.Steals, l.Blocks, l.Turnovers, l.MinutesPerGame,
			l.FieldGoalPct, l.ThreePointPct, l.FreeThrowPct,
		)
		if err != nil {
			return fmt.Errorf("upsert %s player %d season %d: %w", table, l.PlayerID, l.Season, err)
		}
	}
	return nil
}

// UpsertRecentGames writes game rows keyed by game id.
func (s *Postgres) UpsertRecentGames(ctx context.Context, games []model.RecentGame) error {
	for _, g := range games {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO `+config.RecentGamesTable+` (
				id, team_abbr, season, game_date, opponent,
				is_home, us, them, diff, result
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			ON CONFLICT (id) DO UPDATE SET
				team_abbr = EXCLUDED.team_abbr,
				season = EXCLUDED.season,
				game_date = EXCLUDED.game_date,
				opponent = EXCLUDED.opponent,
				is_home = EXCLUDED.is_home,
				us = EXCLUDED.us,
				them = EXCLUDED.them,
				diff = EXCLUDED.diff,
				result = EXCLUDED.result,
				updated_at = NOW()`,
			g.ID, g.TeamAbbr, g.Season, g.Date, g.Opponent,
			g.IsHome, g.Us, g.Them, g.Diff, g.Result,
		)
		if err != nil {
			return fmt.Errorf("upsert game %d: %w", g.ID, err)
		}
	}
	return nil
}

// UpsertGameStats writes box-score rows keyed by (game_id, player_id).
func (s *Postgres) UpsertGameStats(ctx context.Context, lines []model.GamePlayerStatLine) error {
	for _, l := range lines {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO `+config.GameStatsTable+` (
				game_id, player_id, season, minutes, points, rebounds,
				assists, steals, blocks, turnovers,
				fgm, fga, fg3m, fg3a, ftm, fta
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
			ON CONFLICT (game_id, player_id) DO UPDATE SET
				season = EXCLUDED.season,
				minutes = EXCLUDED.minutes,
				points = EXCLUDED.points,
				rebounds = EXCLUDED.rebounds,
				assists = EXCLUDED.assists,
				steals = EXCLUDED.steals,
				blocks = EXCLUDED.blocks,
				turnovers = EXCLUDED.turnovers,
				fgm = EXCLUDED.fgm,
				fga = EXCLUDED.fga,
				fg3m = EXCLUDED.fg3m,
				fg3a = EXCLUDED.fg3a,
				ftm = EXCLUDED.ftm,
				fta = EXCLUDED.fta,
				updated_at = NOW()`,
			l.GameID, l.PlayerID, l.Season, l.Minutes, l.Points, l.Rebounds,
			l.Assists, l.Steals, l.Blocks, l.Turnovers,
			l.FGM, l.FGA, l.FG3M, l.FG3A, l.FTM, l.FTA,
		)
		if err != nil {
			return fmt.Errorf("upsert game %d player %d: %w", l.GameID, l.PlayerID, err)
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Ingestion runs
// --------------------------------------------------------------------------

// CreateRun opens the audit row for one ingestion invocation.
func (s *Postgres) CreateRun(ctx context.Context, source string, season int) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO `+config.RunsTable+` (source, season, status, started_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id`,
		source, season, model.RunStatusRunning,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create ingestion run: %w", err)
	}
	return id, nil
}

// FinishRun records the terminal status. The status update is the only
// mutation an ingestion run row ever receives.
func (s *Postgres) FinishRun(ctx context.Context, runID int64, status, errMsg string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE `+config.RunsTable+`
		SET status = $2, error = $3, finished_at = $4
		WHERE id = $1`,
		runID, status, nilEmpty(errMsg), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("finish ingestion run %d: %w", runID, err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Reads (prepared statements, registered in internal/db)
// --------------------------------------------------------------------------

func (s *Postgres) Players(ctx context.Context) ([]model.Player, error) {
	rows, err := s.pool.Query(ctx, "players_all")
	if err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}
	defer rows.Close()

	var out []model.Player
	for rows.Next() {
		var p model.Player
		var position *string
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &position,
			&p.TeamAbbr, &p.Height, &p.Weight, &p.JerseyNumber); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		if position != nil {
			p.Position = *position
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Postgres) SeasonStats(ctx context.Context, season int) ([]model.SeasonStatLine, error) {
	return s.statLines(ctx, "season_stats_by_season", season)
}

func (s *Postgres) Last10Stats(ctx context.Context, season int) ([]model.SeasonStatLine, error) {
	return s.statLines(ctx, "last10_stats_by_season", season)
}

func (s *Postgres) statLines(ctx context.Context, stmt string, season int) ([]model.SeasonStatLine, error) {
	rows, err := s.pool.Query(ctx, stmt, season)
	if err != nil {
		return nil, fmt.Errorf("select stat lines: %w", err)
	}
	defer rows.Close()

	var out []model.SeasonStatLine
	for rows.Next() {
		var l model.SeasonStatLine
		if err := rows.Scan(&l.PlayerID, &l.Season, &l.GamesPlayed,
			&l.PointsPerGame, &l.Rebounds, &l.Assists, &l.Steals, &l.Blocks,
			&l.Turnovers, &l.MinutesPerGame, &l.FieldGoalPct,
			&l.ThreePointPct, &l.FreeThrowPct); err != nil {
			return nil, fmt.Errorf("scan stat line: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Postgres) RecentGames(ctx context.Context, team string, season, limit int) ([]model.RecentGame, error) {
	rows, err := s.pool.Query(ctx, "recent_games", team, season, limit)
	if err != nil {
		return nil, fmt.Errorf("select recent games: %w", err)
	}
	defer rows.Close()

	var out []model.RecentGame
	for rows.Next() {
		var g model.RecentGame
		if err := rows.Scan(&g.ID, &g.TeamAbbr, &g.Season, &g.Date,
			&g.Opponent, &g.IsHome, &g.Us, &g.Them, &g.Diff, &g.Result); err != nil {
			return nil, fmt.Errorf("scan recent game: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Postgres) GameStats(ctx context.Context, gameID int) ([]model.GamePlayerStatLine, error) {
	rows, err := s.pool.Query(ctx, "game_stats", gameID)
	if err != nil {
		return nil, fmt.Errorf("select game stats: %w", err)
	}
	defer rows.Close()

	var out []model.GamePlayerStatLine
	for rows.Next() {
		var l model.GamePlayerStatLine
		if err := rows.Scan(&l.GameID, &l.PlayerID, &l.Season, &l.Minutes,
			&l.Points, &l.Rebounds, &l.Assists, &l.Steals, &l.Blocks,
			&l.Turnovers, &l.FGM, &l.FGA, &l.FG3M, &l.FG3A, &l.FTM, &l.FTA); err != nil {
			return nil, fmt.Errorf("scan game stat line: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// nilEmpty returns nil for empty strings (maps to SQL NULL).
func nilEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
