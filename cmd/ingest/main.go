// Command ingest is the Courtside data ingestion CLI.
//
// Usage:
//
//	courtside-ingest run bdl --season 2024
//	courtside-ingest run bdl 2024 CHA
//	courtside-ingest run nbastats --season 2024 --team CHA
//
// Season and team may be given positionally; flags win when both are set.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/courtside/courtside-data/internal/config"
	"github.com/courtside/courtside-data/internal/db"
	"github.com/courtside/courtside-data/internal/ingest"
	"github.com/courtside/courtside-data/internal/provider"
	"github.com/courtside/courtside-data/internal/provider/bdl"
	"github.com/courtside/courtside-data/internal/provider/nbastats"
	"github.com/courtside/courtside-data/internal/store"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "courtside-ingest",
		Short: "Courtside data ingestion CLI",
	}

	root.AddCommand(runCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// run command
// --------------------------------------------------------------------------

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full ingestion pipeline for one provider",
	}
	cmd.AddCommand(runBDLCmd())
	cmd.AddCommand(runNBAStatsCmd())
	return cmd
}

func runBDLCmd() *cobra.Command {
	var season int
	var team, mode string
	cmd := &cobra.Command{
		Use:   "bdl [season] [team]",
		Short: "Ingest from BallDontLie",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			season, team, err := applyArgs(args, season, team)
			if err != nil {
				return err
			}
			return runIngest(season, team, func(ctx context.Context, cfg *config.Config, st *store.Postgres, season int) (*ingest.Result, error) {
				if cfg.BDLAPIKey == "" {
					return nil, fmt.Errorf("NBA_API_KEY is required")
				}
				adapter := bdl.New(newFetchClient(cfg), bdl.Options{
					BaseURL:         cfg.BDLBaseURL,
					APIKey:          cfg.BDLAPIKey,
					PerPage:         cfg.PerPage,
					TeamsPages:      cfg.TeamsPages,
					RosterPages:     cfg.RosterPages,
					GamesPages:      cfg.GamesPages,
					GamesCollectCap: cfg.GamesCollectCap,
					BoxscorePages:   cfg.BoxscorePages,
					SeasonAvgBatch:  cfg.SeasonAvgBatch,
				}, logger)
				return ingest.NewRunner(st, adapter, cfg, logger).Run(ctx, season, mode)
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "Season year (defaults to DEFAULT_SEASON)")
	cmd.Flags().StringVar(&team, "team", "", "Team abbreviation (defaults to TEAM_ABBR)")
	cmd.Flags().StringVar(&mode, "mode", "", "Ingestion mode (mini forces the degraded path)")
	return cmd
}

func runNBAStatsCmd() *cobra.Command {
	var season int
	var team, mode string
	cmd := &cobra.Command{
		Use:   "nbastats [season] [team]",
		Short: "Ingest from stats.nba.com",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			season, team, err := applyArgs(args, season, team)
			if err != nil {
				return err
			}
			return runIngest(season, team, func(ctx context.Context, cfg *config.Config, st *store.Postgres, season int) (*ingest.Result, error) {
				adapter := nbastats.New(newFetchClient(cfg), nbastats.Options{
					BaseURL:   cfg.NBAStatsBaseURL,
					UserAgent: cfg.NBAStatsUserAgent,
					Referer:   cfg.NBAStatsReferer,
					Origin:    cfg.NBAStatsOrigin,
					TeamAbbr:  cfg.TeamAbbr,
				}, logger)
				return ingest.NewRunner(st, adapter, cfg, logger).Run(ctx, season, mode)
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "Season year (defaults to DEFAULT_SEASON)")
	cmd.Flags().StringVar(&team, "team", "", "Team abbreviation (defaults to TEAM_ABBR)")
	cmd.Flags().StringVar(&mode, "mode", "", "Ingestion mode (mini forces the degraded path)")
	return cmd
}

// applyArgs fills season and team from positional arguments; flags win when
// both are given.
func applyArgs(args []string, season int, team string) (int, string, error) {
	if len(args) > 0 && season == 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return 0, "", fmt.Errorf("season argument %q is not a year", args[0])
		}
		season = v
	}
	if len(args) > 1 && team == "" {
		team = strings.ToUpper(args[1])
	}
	return season, team, nil
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

func newFetchClient(cfg *config.Config) *provider.Client {
	return provider.NewClient(provider.ClientOptions{
		BaseDelay:         cfg.FetchBaseDelay,
		MaxAttempts:       cfg.FetchMaxAttempts,
		MaxPagedAttempts:  cfg.FetchMaxPaged,
		RequestsPerMinute: cfg.UpstreamPerMin,
	}, logger)
}

// runIngest handles config loading, DB connection, context cancellation,
// and result reporting around one pipeline invocation.
func runIngest(season int, team string,
	fn func(ctx context.Context, cfg *config.Config, st *store.Postgres, season int) (*ingest.Result, error)) error {

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if season == 0 {
		season = cfg.DefaultSeason
	}
	if team != "" {
		cfg.TeamAbbr = team
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	start := time.Now()
	result, err := fn(ctx, cfg, store.NewPostgres(pool.Pool), season)
	if result != nil {
		out, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(out))
	}
	if err != nil {
		logger.Error("Ingestion failed", "error", err,
			"duration", time.Since(start).Round(time.Second))
		return err
	}
	logger.Info("Ingestion finished",
		"source", result.Source,
		"season", result.Season,
		"duration", time.Since(start).Round(time.Second))
	return nil
}
