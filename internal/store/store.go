// Package store persists raw teams, matches, and ingest-run audit records.
// Two drivers implement the same interface: an embedded SQLite file (the
// default) and Postgres for shared deployments.
package store

import (
	"context"

	"github.com/nicklittle905/football-team-season-tracker/internal/model"
)

// RunFilter specifies criteria for listing ingest runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
}

// Store defines the persistence contract for the raw layer. Upserts are
// last-write-wins by natural key and transactional per batch: a batch that
// fails mid-way leaves no partial state.
type Store interface {
	// Writes
	UpsertTeams(ctx context.Context, teams []model.Team) (int, error)
	UpsertMatches(ctx context.Context, competitionCode string, season int, matches []model.Match) (int, error)
	RecordRunStart(ctx context.Context, run model.IngestRun) error
	RecordRunResult(ctx context.Context, runID string, status model.RunStatus, details string) error
	// Truncate clears matches and teams for a full refresh. Ingest runs
	// are an append-only audit log and are never cleared.
	Truncate(ctx context.Context) error

	// Reads
	ListTeams(ctx context.Context) ([]model.Team, error)
	ListMatches(ctx context.Context, competitionCode string, season int) ([]model.Match, error)
	GetMatch(ctx context.Context, matchID int64) (*model.Match, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.IngestRun, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
