// Package derive computes the derived views from raw store contents:
// team-perspective match facts, cumulative standings snapshots, the current
// league table, recent-form windows, and the fixture-outcome heuristic.
//
// Everything here is a pure function over in-memory input. Derivation is
// recomputed in full on each read; given the same raw rows it produces
// byte-identical output. Empty input yields empty output, never an error.
package derive

import (
	"sort"

	"github.com/nicklittle905/football-team-season-tracker/internal/model"
)

// DefaultFormWindow is the number of matches in a recent-form strip.
const DefaultFormWindow = 5

// TeamMatches projects every match with a determinate result into two
// mirrored team-perspective rows. Matches without both full-time scores and
// a complete status are excluded entirely. A completed match missing a team
// id is malformed upstream data; it is skipped rather than aborting the
// batch.
func TeamMatches(matches []model.Match) []model.TeamMatch {
	var out []model.TeamMatch
	for _, m := range matches {
		if !m.HasResult() {
			continue
		}
		if m.HomeTeamID == nil || m.AwayTeamID == nil {
			continue
		}

		homeGoals, awayGoals := *m.HomeScoreFull, *m.AwayScoreFull
		homeResult, awayResult := model.ResultDraw, model.ResultDraw
		switch {
		case homeGoals > awayGoals:
			homeResult, awayResult = model.ResultWin, model.ResultLoss
		case homeGoals < awayGoals:
			homeResult, awayResult = model.ResultLoss, model.ResultWin
		}

		matchday := 0
		if m.Matchday != nil {
			matchday = *m.Matchday
		}

		out = append(out,
			model.TeamMatch{
				TeamID:         *m.HomeTeamID,
				MatchID:        m.ID,
				Matchday:       matchday,
				MatchDate:      m.UTCDate,
				IsHome:         true,
				OpponentTeamID: *m.AwayTeamID,
				GoalsFor:       homeGoals,
				GoalsAgainst:   awayGoals,
				Result:         homeResult,
				Points:         homeResult.Points(),
			},
			model.TeamMatch{
				TeamID:         *m.AwayTeamID,
				MatchID:        m.ID,
				Matchday:       matchday,
				MatchDate:      m.UTCDate,
				IsHome:         false,
				OpponentTeamID: *m.HomeTeamID,
				GoalsFor:       awayGoals,
				GoalsAgainst:   homeGoals,
				Result:         awayResult,
				Points:         awayResult.Points(),
			},
		)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.MatchDate.Equal(b.MatchDate) {
			return a.MatchDate.Before(b.MatchDate)
		}
		if a.MatchID != b.MatchID {
			return a.MatchID < b.MatchID
		}
		return a.TeamID < b.TeamID
	})
	return out
}

// teamState is a team's running cumulative aggregate.
type teamState struct {
	teamID   int64
	name     string
	matchday int
	played   int
	won      int
	drawn    int
	lost     int
	goalsFor int
	goalsAgn int
	points   int
}

func (s teamState) goalDiff() int { return s.goalsFor - s.goalsAgn }

// rankLess orders states by (points desc, goal difference desc, goals for
// desc, name asc). Team id is a final guard so the order is total even for
// duplicate names; the name tie-break itself is a documented simplification
// standing in for real league rules (head-to-head etc).
func rankLess(a, b teamState) bool {
	if a.points != b.points {
		return a.points > b.points
	}
	if a.goalDiff() != b.goalDiff() {
		return a.goalDiff() > b.goalDiff()
	}
	if a.goalsFor != b.goalsFor {
		return a.goalsFor > b.goalsFor
	}
	if a.name != b.name {
		return a.name < b.name
	}
	return a.teamID < b.teamID
}

// Snapshots computes one cumulative standings row per team match, evaluated
// after that match, with the matchday of the triggering match. Positions
// are recomputed per matchday over every team's state as of that matchday,
// so that positions within a matchday always form a prefix of a permutation
// of 1..N (N = teams with at least one result by then). Input order does
// not matter; output is fully deterministic.
func Snapshots(teamMatches []model.TeamMatch, teamNames map[int64]string) []model.StandingsSnapshot {
	if len(teamMatches) == 0 {
		return nil
	}

	tms := make([]model.TeamMatch, len(teamMatches))
	copy(tms, teamMatches)
	sort.Slice(tms, func(i, j int) bool {
		a, b := tms[i], tms[j]
		if !a.MatchDate.Equal(b.MatchDate) {
			return a.MatchDate.Before(b.MatchDate)
		}
		if a.MatchID != b.MatchID {
			return a.MatchID < b.MatchID
		}
		return a.TeamID < b.TeamID
	})

	// Running aggregates by match date, per the point-in-time contract.
	states := make(map[int64]*teamState)
	snapshots := make([]model.StandingsSnapshot, 0, len(tms))
	snapIndex := make(map[int64]map[int]int) // team -> matchday -> index into snapshots

	for _, tm := range tms {
		st, ok := states[tm.TeamID]
		if !ok {
			st = &teamState{teamID: tm.TeamID, name: teamNames[tm.TeamID]}
			states[tm.TeamID] = st
		}
		st.played++
		st.goalsFor += tm.GoalsFor
		st.goalsAgn += tm.GoalsAgainst
		switch tm.Result {
		case model.ResultWin:
			st.won++
		case model.ResultDraw:
			st.drawn++
		default:
			st.lost++
		}
		st.points = 3*st.won + st.drawn
		st.matchday = tm.Matchday

		snapshots = append(snapshots, model.StandingsSnapshot{
			TeamID:         tm.TeamID,
			TeamName:       st.name,
			Matchday:       tm.Matchday,
			AsOfDate:       tm.MatchDate,
			Played:         st.played,
			Won:            st.won,
			Drawn:          st.drawn,
			Lost:           st.lost,
			GoalsFor:       st.goalsFor,
			GoalsAgainst:   st.goalsAgn,
			GoalDifference: st.goalDiff(),
			Points:         st.points,
		})
		if snapIndex[tm.TeamID] == nil {
			snapIndex[tm.TeamID] = make(map[int]int)
		}
		snapIndex[tm.TeamID][tm.Matchday] = len(snapshots) - 1
	}

	assignPositions(snapshots, snapIndex)

	sort.Slice(snapshots, func(i, j int) bool {
		a, b := snapshots[i], snapshots[j]
		if a.Matchday != b.Matchday {
			return a.Matchday < b.Matchday
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.TeamID < b.TeamID
	})
	return snapshots
}

// assignPositions ranks, for each matchday, every team's most recent
// snapshot at or before that matchday, and writes the rank onto the
// snapshots belonging to that matchday.
func assignPositions(snapshots []model.StandingsSnapshot, snapIndex map[int64]map[int]int) {
	matchdaySet := make(map[int]bool)
	for _, s := range snapshots {
		matchdaySet[s.Matchday] = true
	}
	matchdays := make([]int, 0, len(matchdaySet))
	for d := range matchdaySet {
		matchdays = append(matchdays, d)
	}
	sort.Ints(matchdays)

	for _, d := range matchdays {
		var pool []teamState
		asOf := make(map[int64]int) // team -> snapshot index as of matchday d
		for teamID, byDay := range snapIndex {
			best := -1
			for day, idx := range byDay {
				if day > d {
					continue
				}
				if best == -1 || day > snapshots[best].Matchday {
					best = idx
				}
			}
			if best == -1 {
				continue
			}
			s := snapshots[best]
			pool = append(pool, teamState{
				teamID:   teamID,
				name:     s.TeamName,
				played:   s.Played,
				won:      s.Won,
				drawn:    s.Drawn,
				lost:     s.Lost,
				goalsFor: s.GoalsFor,
				goalsAgn: s.GoalsAgainst,
				points:   s.Points,
			})
			asOf[teamID] = best
		}

		sort.Slice(pool, func(i, j int) bool { return rankLess(pool[i], pool[j]) })
		for rank, st := range pool {
			idx := asOf[st.teamID]
			if snapshots[idx].Matchday == d {
				snapshots[idx].Position = rank + 1
			}
		}
	}
}

// CurrentTable returns the present-day league table: each team's latest
// snapshot, ranked 1..N.
func CurrentTable(snapshots []model.StandingsSnapshot) []model.StandingsSnapshot {
	latest := make(map[int64]model.StandingsSnapshot)
	for _, s := range snapshots {
		cur, ok := latest[s.TeamID]
		if !ok || s.Played > cur.Played {
			latest[s.TeamID] = s
		}
	}
	if len(latest) == 0 {
		return nil
	}

	table := make([]model.StandingsSnapshot, 0, len(latest))
	for _, s := range latest {
		table = append(table, s)
	}
	sort.Slice(table, func(i, j int) bool {
		return rankLess(stateOf(table[i]), stateOf(table[j]))
	})
	for i := range table {
		table[i].Position = i + 1
	}
	return table
}

func stateOf(s model.StandingsSnapshot) teamState {
	return teamState{
		teamID:   s.TeamID,
		name:     s.TeamName,
		played:   s.Played,
		won:      s.Won,
		drawn:    s.Drawn,
		lost:     s.Lost,
		goalsFor: s.GoalsFor,
		goalsAgn: s.GoalsAgainst,
		points:   s.Points,
	}
}

// Form returns a team's last n results, newest first.
func Form(teamMatches []model.TeamMatch, teamID int64, n int) []model.MatchResult {
	if n <= 0 {
		n = DefaultFormWindow
	}

	var own []model.TeamMatch
	for _, tm := range teamMatches {
		if tm.TeamID == teamID {
			own = append(own, tm)
		}
	}
	sort.Slice(own, func(i, j int) bool {
		a, b := own[i], own[j]
		if !a.MatchDate.Equal(b.MatchDate) {
			return a.MatchDate.After(b.MatchDate)
		}
		return a.MatchID > b.MatchID
	})

	if len(own) > n {
		own = own[:n]
	}
	results := make([]model.MatchResult, 0, len(own))
	for _, tm := range own {
		results = append(results, tm.Result)
	}
	return results
}

// Predict applies the position-gap heuristic to a fixture: unknown
// positions or a gap of one place or less is a draw, otherwise the
// better-placed team wins. Deliberately naive; documented as a placeholder
// rather than a calibrated model.
func Predict(table []model.StandingsSnapshot, homeTeamID, awayTeamID int64) model.Prediction {
	p := model.Prediction{
		HomeTeamID: homeTeamID,
		AwayTeamID: awayTeamID,
		Outcome:    model.OutcomeDraw,
	}

	for _, row := range table {
		switch row.TeamID {
		case homeTeamID:
			p.HomePosition = row.Position
		case awayTeamID:
			p.AwayPosition = row.Position
		}
	}
	if p.HomePosition == 0 || p.AwayPosition == 0 {
		return p
	}

	gap := p.HomePosition - p.AwayPosition
	if gap < 0 {
		gap = -gap
	}
	if gap <= 1 {
		return p
	}

	if p.HomePosition < p.AwayPosition {
		p.Outcome = model.OutcomeHomeWin
		p.WinnerTeamID = homeTeamID
	} else {
		p.Outcome = model.OutcomeAwayWin
		p.WinnerTeamID = awayTeamID
	}
	return p
}

// TeamNames builds the id-to-name map for ranking tie-breaks, preferring
// the teams table and falling back to the names denormalized on matches.
func TeamNames(teams []model.Team, matches []model.Match) map[int64]string {
	names := make(map[int64]string, len(teams))
	for _, m := range matches {
		if m.HomeTeamID != nil && m.HomeTeamName != "" {
			names[*m.HomeTeamID] = m.HomeTeamName
		}
		if m.AwayTeamID != nil && m.AwayTeamName != "" {
			names[*m.AwayTeamID] = m.AwayTeamName
		}
	}
	for _, t := range teams {
		if t.Name != "" {
			names[t.ID] = t.Name
		}
	}
	return names
}
