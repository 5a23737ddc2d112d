package main

import (
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/nicklittle905/football-team-season-tracker/internal/model"
	"github.com/nicklittle905/football-team-season-tracker/internal/query"
)

var predictCmd = &cobra.Command{
	Use:   "predict <home-team-id> <away-team-id>",
	Short: "Predict a fixture outcome from current table positions",
	Long:  "A naive position-gap heuristic: teams within one place of each other draw, otherwise the better-placed team wins. Not a statistical model.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		homeID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return eris.Wrapf(err, "invalid home team id %q", args[0])
		}
		awayID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return eris.Wrapf(err, "invalid away team id %q", args[1])
		}

		st, err := openReadOnlyStore(ctx)
		if err != nil {
			return eris.Wrap(err, "predict: open store")
		}
		defer st.Close() //nolint:errcheck

		f := query.NewFacade(st, cfg.API.CompetitionCode, cfg.API.Season)
		p := f.Predict(ctx, homeID, awayID)

		switch p.Outcome {
		case model.OutcomeDraw:
			fmt.Printf("DRAW (home position %d, away position %d)\n", p.HomePosition, p.AwayPosition)
		default:
			fmt.Printf("%s: team %d (position %d vs %d)\n", p.Outcome, p.WinnerTeamID, p.HomePosition, p.AwayPosition)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(predictCmd)
}
