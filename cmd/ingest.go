package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/nicklittle905/football-team-season-tracker/internal/ingest"
	"github.com/nicklittle905/football-team-season-tracker/pkg/footballdata"
)

var (
	ingestFullRefresh bool
	ingestCompetition string
	ingestSeason      int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch teams and matches from football-data.org into the raw store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Fail before any network call when no token is configured.
		if err := cfg.ValidateToken(); err != nil {
			return err
		}

		comp := ingestCompetition
		if comp == "" {
			comp = cfg.API.CompetitionCode
		}
		season := ingestSeason
		if season == 0 {
			season = cfg.API.Season
		}

		st, err := openStore(ctx)
		if err != nil {
			return eris.Wrap(err, "ingest: open store")
		}
		defer st.Close() //nolint:errcheck

		client := footballdata.NewClient(cfg.API.Token,
			footballdata.WithBaseURL(cfg.API.BaseURL),
			footballdata.WithRateLimit(cfg.API.RatePerMinute),
		)

		mode := ingest.ModeMerge
		if ingestFullRefresh {
			mode = ingest.ModeFullRefresh
		}

		result, err := ingest.NewRunner(st, client).Run(ctx, comp, season, mode)
		if err != nil {
			return err
		}

		fmt.Printf("run %s: loaded teams=%d, matches=%d\n", result.RunID, result.TeamsLoaded, result.MatchesLoaded)
		return nil
	},
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestFullRefresh, "full-refresh", false, "truncate raw tables before loading")
	ingestCmd.Flags().StringVar(&ingestCompetition, "competition", "", "competition code (default from config)")
	ingestCmd.Flags().IntVar(&ingestSeason, "season", 0, "season start year (default from config)")
	rootCmd.AddCommand(ingestCmd)
}
