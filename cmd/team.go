package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/nicklittle905/football-team-season-tracker/internal/query"
)

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Team-level views: match history and recent form",
}

// teamIDArg resolves the team id from the optional positional argument,
// falling back to the configured team.
func teamIDArg(args []string) (int64, error) {
	if len(args) == 0 {
		return cfg.API.TeamID, nil
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "invalid team id %q", args[0])
	}
	return id, nil
}

var teamMatchesCmd = &cobra.Command{
	Use:   "matches [team-id]",
	Short: "List a team's completed matches, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		teamID, err := teamIDArg(args)
		if err != nil {
			return err
		}

		st, err := openReadOnlyStore(ctx)
		if err != nil {
			return eris.Wrap(err, "team matches: open store")
		}
		defer st.Close() //nolint:errcheck

		f := query.NewFacade(st, cfg.API.CompetitionCode, cfg.API.Season)
		matches := f.TeamMatches(ctx, teamID)
		if len(matches) == 0 {
			fmt.Fprintln(os.Stderr, "No completed matches for this team yet.")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "DATE\tMD\tH/A\tOPPONENT\tGF\tGA\tRES\tPTS")
		for _, m := range matches {
			homeAway := "A"
			if m.IsHome {
				homeAway = "H"
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%d\t%d\t%s\t%d\n",
				m.MatchDate.Format("2006-01-02"), m.Matchday, homeAway,
				m.OpponentTeamID, m.GoalsFor, m.GoalsAgainst, m.Result, m.Points)
		}
		tw.Flush() //nolint:errcheck
		return nil
	},
}

var teamFormCmd = &cobra.Command{
	Use:   "form [team-id]",
	Short: "Show a team's recent form strip",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		teamID, err := teamIDArg(args)
		if err != nil {
			return err
		}
		window, _ := cmd.Flags().GetInt("last")

		st, err := openReadOnlyStore(ctx)
		if err != nil {
			return eris.Wrap(err, "team form: open store")
		}
		defer st.Close() //nolint:errcheck

		f := query.NewFacade(st, cfg.API.CompetitionCode, cfg.API.Season)
		form := f.FormStrip(ctx, teamID, window)
		if len(form) == 0 {
			fmt.Fprintln(os.Stderr, "No completed matches for this team yet.")
			return nil
		}

		for i, r := range form {
			if i > 0 {
				fmt.Print(" ")
			}
			fmt.Print(string(r))
		}
		fmt.Println()
		return nil
	},
}

func init() {
	teamFormCmd.Flags().Int("last", 5, "number of matches in the form window")
	teamCmd.AddCommand(teamMatchesCmd)
	teamCmd.AddCommand(teamFormCmd)
	rootCmd.AddCommand(teamCmd)
}
