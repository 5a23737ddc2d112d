package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/nicklittle905/football-team-season-tracker/internal/db"
	"github.com/nicklittle905/football-team-season-tracker/internal/model"
)

// PostgresStore implements Store using pgxpool. The upsert path goes through
// db.BulkUpsert so a whole batch commits or rolls back together.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS teams (
	team_id    BIGINT PRIMARY KEY,
	name       TEXT NOT NULL,
	short_name TEXT,
	tla        TEXT,
	crest      TEXT,
	fetched_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS matches (
	match_id         BIGINT PRIMARY KEY,
	competition_code TEXT NOT NULL,
	season           INTEGER NOT NULL,
	utc_date         TIMESTAMPTZ,
	status           TEXT NOT NULL,
	matchday         INTEGER,
	stage            TEXT,
	group_name       TEXT,
	home_team_id     BIGINT,
	home_team_name   TEXT,
	away_team_id     BIGINT,
	away_team_name   TEXT,
	home_score_full  INTEGER,
	away_score_full  INTEGER,
	home_score_half  INTEGER,
	away_score_half  INTEGER,
	winner           TEXT,
	last_updated     TIMESTAMPTZ,
	fetched_at       TIMESTAMPTZ NOT NULL,
	raw_payload      TEXT
);

CREATE TABLE IF NOT EXISTS ingest_runs (
	run_id    TEXT PRIMARY KEY,
	run_ts    TIMESTAMPTZ NOT NULL,
	comp_code TEXT NOT NULL,
	season    INTEGER NOT NULL,
	status    TEXT NOT NULL,
	details   TEXT
);

CREATE INDEX IF NOT EXISTS idx_matches_comp_season ON matches(competition_code, season);
CREATE INDEX IF NOT EXISTS idx_matches_status ON matches(status);
CREATE INDEX IF NOT EXISTS idx_ingest_runs_ts ON ingest_runs(run_ts);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

var teamColumns = []string{"team_id", "name", "short_name", "tla", "crest", "fetched_at"}

func (s *PostgresStore) UpsertTeams(ctx context.Context, teams []model.Team) (int, error) {
	rows := make([][]any, 0, len(teams))
	for _, t := range teams {
		rows = append(rows, []any{t.ID, t.Name, t.ShortName, t.TLA, t.Crest, t.FetchedAt.UTC()})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "teams",
		Columns:      teamColumns,
		ConflictKeys: []string{"team_id"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: upsert teams")
	}
	return int(n), nil
}

var matchColumns = []string{
	"match_id", "competition_code", "season", "utc_date", "status", "matchday", "stage", "group_name",
	"home_team_id", "home_team_name", "away_team_id", "away_team_name",
	"home_score_full", "away_score_full", "home_score_half", "away_score_half",
	"winner", "last_updated", "fetched_at", "raw_payload",
}

func (s *PostgresStore) UpsertMatches(ctx context.Context, competitionCode string, season int, matches []model.Match) (int, error) {
	rows := make([][]any, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, []any{
			m.ID, competitionCode, season, m.UTCDate.UTC(), string(m.Status), m.Matchday, m.Stage, m.Group,
			m.HomeTeamID, m.HomeTeamName, m.AwayTeamID, m.AwayTeamName,
			m.HomeScoreFull, m.AwayScoreFull, m.HomeScoreHalf, m.AwayScoreHalf,
			nullString(m.Winner), nullTime(m.LastUpdated), m.FetchedAt.UTC(), nullPayload(m.RawPayload),
		})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "matches",
		Columns:      matchColumns,
		ConflictKeys: []string{"match_id"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: upsert matches")
	}
	return int(n), nil
}

func (s *PostgresStore) RecordRunStart(ctx context.Context, run model.IngestRun) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO ingest_runs (run_id, run_ts, comp_code, season, status, details) VALUES ($1, $2, $3, $4, $5, NULL)`,
		run.ID, run.RunTS.UTC(), run.CompCode, run.Season, string(model.RunStarted),
	)
	return eris.Wrapf(err, "postgres: record run start %s", run.ID)
}

func (s *PostgresStore) RecordRunResult(ctx context.Context, runID string, status model.RunStatus, details string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE ingest_runs SET status = $1, details = $2 WHERE run_id = $3`,
		string(status), details, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: record run result %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) Truncate(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin truncate")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, table := range []string{"matches", "teams"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return eris.Wrapf(err, "postgres: truncate %s", table)
		}
	}
	return eris.Wrap(tx.Commit(ctx), "postgres: commit truncate")
}

func (s *PostgresStore) ListTeams(ctx context.Context) ([]model.Team, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT team_id, name, COALESCE(short_name, ''), COALESCE(tla, ''), COALESCE(crest, ''), fetched_at FROM teams ORDER BY name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list teams")
	}
	defer rows.Close()

	var teams []model.Team
	for rows.Next() {
		var t model.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.ShortName, &t.TLA, &t.Crest, &t.FetchedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan team")
		}
		teams = append(teams, t)
	}
	return teams, eris.Wrap(rows.Err(), "postgres: list teams iterate")
}

const postgresSelectMatch = `
SELECT match_id, competition_code, season, utc_date, status, matchday, COALESCE(stage, ''), COALESCE(group_name, ''),
	home_team_id, COALESCE(home_team_name, ''), away_team_id, COALESCE(away_team_name, ''),
	home_score_full, away_score_full, home_score_half, away_score_half,
	COALESCE(winner, ''), last_updated, fetched_at, COALESCE(raw_payload, '')
FROM matches`

func (s *PostgresStore) ListMatches(ctx context.Context, competitionCode string, season int) ([]model.Match, error) {
	rows, err := s.pool.Query(ctx,
		postgresSelectMatch+` WHERE competition_code = $1 AND season = $2 ORDER BY utc_date, match_id`,
		competitionCode, season,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list matches")
	}
	defer rows.Close()

	var matches []model.Match
	for rows.Next() {
		m, err := scanPgMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, eris.Wrap(rows.Err(), "postgres: list matches iterate")
}

func (s *PostgresStore) GetMatch(ctx context.Context, matchID int64) (*model.Match, error) {
	rows, err := s.pool.Query(ctx, postgresSelectMatch+` WHERE match_id = $1`, matchID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get match %d", matchID)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, eris.Wrap(rows.Err(), "postgres: get match iterate")
	}
	return scanPgMatch(rows)
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.IngestRun, error) {
	query := `SELECT run_id, run_ts, comp_code, season, status, COALESCE(details, '') FROM ingest_runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $1`
	}
	query += ` ORDER BY run_ts DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	if filter.Status != "" {
		query += ` LIMIT $2`
	} else {
		query += ` LIMIT $1`
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.IngestRun
	for rows.Next() {
		var r model.IngestRun
		var status string
		if err := rows.Scan(&r.ID, &r.RunTS, &r.CompCode, &r.Season, &status, &r.Details); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		r.Status = model.RunStatus(status)
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func scanPgMatch(rows pgx.Rows) (*model.Match, error) {
	var m model.Match
	var status, payload string

	err := rows.Scan(
		&m.ID, &m.CompetitionCode, &m.Season, &m.UTCDate, &status, &m.Matchday, &m.Stage, &m.Group,
		&m.HomeTeamID, &m.HomeTeamName, &m.AwayTeamID, &m.AwayTeamName,
		&m.HomeScoreFull, &m.AwayScoreFull, &m.HomeScoreHalf, &m.AwayScoreHalf,
		&m.Winner, &m.LastUpdated, &m.FetchedAt, &payload,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: scan match")
	}

	m.Status = model.MatchStatus(status)
	if payload != "" {
		m.RawPayload = []byte(payload)
	}
	return &m, nil
}
