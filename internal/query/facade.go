// Package query exposes read-only access to the raw store and the derived
// views. Storage errors degrade to empty results: before the first ingest
// there is simply no data yet, and the presentation side should never need
// defensive error handling for that state.
package query

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nicklittle905/football-team-season-tracker/internal/derive"
	"github.com/nicklittle905/football-team-season-tracker/internal/model"
	"github.com/nicklittle905/football-team-season-tracker/internal/store"
)

// Facade answers presentation queries for one competition season. All
// methods are side-effect-free and safe to call concurrently.
type Facade struct {
	store           store.Store
	competitionCode string
	season          int
}

// NewFacade creates a Facade over an already-opened store. Use a read-only
// store handle so queries never take a write lock.
func NewFacade(st store.Store, competitionCode string, season int) *Facade {
	return &Facade{store: st, competitionCode: competitionCode, season: season}
}

// load pulls teams and matches concurrently. Any storage failure (missing
// file, missing table) yields empty slices.
func (f *Facade) load(ctx context.Context) ([]model.Team, []model.Match) {
	var (
		teams   []model.Team
		matches []model.Match
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		teams, err = f.store.ListTeams(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = f.store.ListMatches(gctx, f.competitionCode, f.season)
		return err
	})

	if err := g.Wait(); err != nil {
		zap.L().Debug("query degraded to empty results", zap.Error(err))
		return nil, nil
	}
	return teams, matches
}

// Teams lists all known teams, ordered by name.
func (f *Facade) Teams(ctx context.Context) []model.Team {
	teams, err := f.store.ListTeams(ctx)
	if err != nil {
		zap.L().Debug("query degraded to empty results", zap.Error(err))
		return nil
	}
	return teams
}

// LeagueTable returns the current table, ranked from first place down.
func (f *Facade) LeagueTable(ctx context.Context) []model.StandingsSnapshot {
	teams, matches := f.load(ctx)
	tms := derive.TeamMatches(matches)
	snaps := derive.Snapshots(tms, derive.TeamNames(teams, matches))
	return derive.CurrentTable(snaps)
}

// TeamMatches returns one team's completed matches, newest first.
func (f *Facade) TeamMatches(ctx context.Context, teamID int64) []model.TeamMatch {
	_, matches := f.load(ctx)

	var own []model.TeamMatch
	for _, tm := range derive.TeamMatches(matches) {
		if tm.TeamID == teamID {
			own = append(own, tm)
		}
	}
	// TeamMatches output is date-ascending; reverse for display.
	for i, j := 0, len(own)-1; i < j; i, j = i+1, j-1 {
		own[i], own[j] = own[j], own[i]
	}
	return own
}

// FormStrip returns a team's last n results, newest first.
func (f *Facade) FormStrip(ctx context.Context, teamID int64, n int) []model.MatchResult {
	_, matches := f.load(ctx)
	return derive.Form(derive.TeamMatches(matches), teamID, n)
}

// PositionSeries returns a team's position-through-time series, one point
// per matchday, joined with the opponent and result context of the match
// that produced each point.
func (f *Facade) PositionSeries(ctx context.Context, teamID int64) []model.PositionPoint {
	teams, matches := f.load(ctx)
	names := derive.TeamNames(teams, matches)
	tms := derive.TeamMatches(matches)
	snaps := derive.Snapshots(tms, names)

	byMatchday := make(map[int]model.TeamMatch)
	for _, tm := range tms {
		if tm.TeamID == teamID {
			byMatchday[tm.Matchday] = tm
		}
	}

	var series []model.PositionPoint
	for _, s := range snaps {
		if s.TeamID != teamID {
			continue
		}
		p := model.PositionPoint{
			Matchday:       s.Matchday,
			AsOfDate:       s.AsOfDate,
			Position:       s.Position,
			Points:         s.Points,
			GoalDifference: s.GoalDifference,
		}
		if tm, ok := byMatchday[s.Matchday]; ok {
			p.Opponent = names[tm.OpponentTeamID]
			p.IsHome = tm.IsHome
			p.Result = tm.Result
			p.GoalsFor = tm.GoalsFor
			p.GoalsAgainst = tm.GoalsAgainst
		}
		series = append(series, p)
	}
	return series
}

// MatchDetail looks up one raw match by id. Absent or unreadable matches
// return nil.
func (f *Facade) MatchDetail(ctx context.Context, matchID int64) *model.Match {
	m, err := f.store.GetMatch(ctx, matchID)
	if err != nil {
		zap.L().Debug("query degraded to empty results", zap.Error(err))
		return nil
	}
	return m
}

// Predict applies the position-gap heuristic over the current table.
func (f *Facade) Predict(ctx context.Context, homeTeamID, awayTeamID int64) model.Prediction {
	return derive.Predict(f.LeagueTable(ctx), homeTeamID, awayTeamID)
}

// Runs lists recent ingest runs, newest first.
func (f *Facade) Runs(ctx context.Context, filter store.RunFilter) []model.IngestRun {
	runs, err := f.store.ListRuns(ctx, filter)
	if err != nil {
		zap.L().Debug("query degraded to empty results", zap.Error(err))
		return nil
	}
	return runs
}
