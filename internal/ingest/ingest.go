// Package ingest loads teams and matches for one competition season from
// the upstream API into the raw store, auditing every run.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/nicklittle905/football-team-season-tracker/internal/model"
	"github.com/nicklittle905/football-team-season-tracker/internal/store"
	"github.com/nicklittle905/football-team-season-tracker/pkg/footballdata"
)

// RefreshMode selects the write policy for a run.
type RefreshMode string

const (
	// ModeMerge upserts into the existing tables (the default).
	ModeMerge RefreshMode = "merge"
	// ModeFullRefresh truncates matches and teams before loading,
	// discarding all raw history. The audit log is kept.
	ModeFullRefresh RefreshMode = "full-refresh"
)

// maxErrorDetail caps the error text stored on a FAILED run.
const maxErrorDetail = 5000

// Result summarizes a completed ingestion run.
type Result struct {
	RunID         string `json:"run_id"`
	TeamsLoaded   int    `json:"teams_loaded"`
	MatchesLoaded int    `json:"matches_loaded"`
}

// Runner executes ingestion runs. Callers must serialize runs themselves;
// there is no run-level mutual exclusion.
type Runner struct {
	store  store.Store
	client footballdata.Client
	now    func() time.Time
}

// NewRunner creates a Runner over the given store and API client.
func NewRunner(st store.Store, client footballdata.Client) *Runner {
	return &Runner{store: st, client: client, now: time.Now}
}

// Run fetches and upserts teams, then matches, for one competition season.
// Exactly one ingest_runs row is written per invocation: STARTED at entry,
// then SUCCESS or FAILED. Errors are recorded on the run and returned to
// the caller; nothing is swallowed. Teams already upserted stay in place
// when the match fetch fails — retries are safe because every write is an
// upsert.
func (r *Runner) Run(ctx context.Context, competitionCode string, season int, mode RefreshMode) (*Result, error) {
	now := r.now().UTC()
	run := model.IngestRun{
		ID:       now.Format("20060102T150405Z"),
		RunTS:    now,
		CompCode: competitionCode,
		Season:   season,
		Status:   model.RunStarted,
	}

	log := zap.L().With(
		zap.String("run_id", run.ID),
		zap.String("competition", competitionCode),
		zap.Int("season", season),
	)

	if err := r.store.RecordRunStart(ctx, run); err != nil {
		return nil, eris.Wrap(err, "ingest: record run start")
	}
	log.Info("ingest run started", zap.String("mode", string(mode)))

	result, err := r.load(ctx, competitionCode, season, mode, log)
	if err != nil {
		detail := err.Error()
		if len(detail) > maxErrorDetail {
			detail = detail[:maxErrorDetail]
		}
		if recErr := r.store.RecordRunResult(ctx, run.ID, model.RunFailed, detail); recErr != nil {
			log.Error("failed to record run failure", zap.Error(recErr))
		}
		log.Error("ingest run failed", zap.Error(err))
		return nil, err
	}

	result.RunID = run.ID
	details := fmt.Sprintf("teams=%d, matches=%d", result.TeamsLoaded, result.MatchesLoaded)
	if err := r.store.RecordRunResult(ctx, run.ID, model.RunSuccess, details); err != nil {
		return nil, eris.Wrap(err, "ingest: record run success")
	}
	log.Info("ingest run complete",
		zap.Int("teams", result.TeamsLoaded),
		zap.Int("matches", result.MatchesLoaded),
	)
	return result, nil
}

func (r *Runner) load(ctx context.Context, competitionCode string, season int, mode RefreshMode, log *zap.Logger) (*Result, error) {
	if mode == ModeFullRefresh {
		if err := r.store.Truncate(ctx); err != nil {
			return nil, eris.Wrap(err, "ingest: full refresh truncate")
		}
		log.Info("raw tables truncated for full refresh")
	}

	teams, err := r.client.Teams(ctx, competitionCode, season)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: fetch teams")
	}
	nTeams, err := r.store.UpsertTeams(ctx, teams)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: upsert teams")
	}

	matches, err := r.client.Matches(ctx, competitionCode, season)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: fetch matches")
	}
	nMatches, err := r.store.UpsertMatches(ctx, competitionCode, season, matches)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: upsert matches")
	}

	return &Result{TeamsLoaded: nTeams, MatchesLoaded: nMatches}, nil
}
