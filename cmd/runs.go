package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/nicklittle905/football-team-season-tracker/internal/model"
	"github.com/nicklittle905/football-team-season-tracker/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List ingest run history",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return eris.Wrap(err, "runs: open store")
		}
		defer st.Close() //nolint:errcheck

		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status: model.RunStatus(status),
			Limit:  limit,
		})
		if err != nil {
			return eris.Wrap(err, "runs: list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

func formatRunsList(w io.Writer, runs []model.IngestRun) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tTIME\tCOMP\tSEASON\tSTATUS\tDETAILS")
	for _, r := range runs {
		details := r.Details
		if len(details) > 60 {
			details = details[:57] + "..."
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			r.ID, r.RunTS.Format("2006-01-02 15:04:05"), r.CompCode, r.Season, r.Status, details)
	}
	tw.Flush() //nolint:errcheck
}

func init() {
	runsCmd.Flags().String("status", "", "filter by status (STARTED, SUCCESS, FAILED)")
	runsCmd.Flags().Int("limit", 20, "maximum runs to list")
	rootCmd.AddCommand(runsCmd)
}
