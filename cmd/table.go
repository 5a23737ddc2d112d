package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/nicklittle905/football-team-season-tracker/internal/model"
	"github.com/nicklittle905/football-team-season-tracker/internal/query"
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Show the current league table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openReadOnlyStore(ctx)
		if err != nil {
			return eris.Wrap(err, "table: open store")
		}
		defer st.Close() //nolint:errcheck

		f := query.NewFacade(st, cfg.API.CompetitionCode, cfg.API.Season)
		rows := f.LeagueTable(ctx)
		if len(rows) == 0 {
			fmt.Fprintln(os.Stderr, "No results yet. Run ingest first.")
			return nil
		}

		formatTable(os.Stdout, rows)
		return nil
	},
}

func formatTable(w io.Writer, rows []model.StandingsSnapshot) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "POS\tTEAM\tP\tW\tD\tL\tGF\tGA\tGD\tPTS")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%+d\t%d\n",
			r.Position, r.TeamName, r.Played, r.Won, r.Drawn, r.Lost,
			r.GoalsFor, r.GoalsAgainst, r.GoalDifference, r.Points)
	}
	tw.Flush() //nolint:errcheck
}

func init() {
	rootCmd.AddCommand(tableCmd)
}
