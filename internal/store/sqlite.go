package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/nicklittle905/football-team-season-tracker/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode. WAL keeps concurrent readers from blocking on an ingestion batch.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// NewSQLiteReadOnly opens the database in read-only mode for query-side
// consumers so they never take a write lock.
func NewSQLiteReadOnly(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open read-only")
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS teams (
	team_id    INTEGER PRIMARY KEY,
	name       TEXT NOT NULL,
	short_name TEXT,
	tla        TEXT,
	crest      TEXT,
	fetched_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS matches (
	match_id         INTEGER PRIMARY KEY,
	competition_code TEXT NOT NULL,
	season           INTEGER NOT NULL,
	utc_date         DATETIME,
	status           TEXT NOT NULL,
	matchday         INTEGER,
	stage            TEXT,
	group_name       TEXT,
	home_team_id     INTEGER,
	home_team_name   TEXT,
	away_team_id     INTEGER,
	away_team_name   TEXT,
	home_score_full  INTEGER,
	away_score_full  INTEGER,
	home_score_half  INTEGER,
	away_score_half  INTEGER,
	winner           TEXT,
	last_updated     DATETIME,
	fetched_at       DATETIME NOT NULL,
	raw_payload      TEXT
);

CREATE TABLE IF NOT EXISTS ingest_runs (
	run_id    TEXT PRIMARY KEY,
	run_ts    DATETIME NOT NULL,
	comp_code TEXT NOT NULL,
	season    INTEGER NOT NULL,
	status    TEXT NOT NULL,
	details   TEXT
);

CREATE INDEX IF NOT EXISTS idx_matches_comp_season ON matches(competition_code, season);
CREATE INDEX IF NOT EXISTS idx_matches_status ON matches(status);
CREATE INDEX IF NOT EXISTS idx_ingest_runs_ts ON ingest_runs(run_ts);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteUpsertTeam = `
INSERT INTO teams (team_id, name, short_name, tla, crest, fetched_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(team_id) DO UPDATE SET
	name=excluded.name,
	short_name=excluded.short_name,
	tla=excluded.tla,
	crest=excluded.crest,
	fetched_at=excluded.fetched_at`

func (s *SQLiteStore) UpsertTeams(ctx context.Context, teams []model.Team) (int, error) {
	if len(teams) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert teams")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, sqliteUpsertTeam)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert team")
	}
	defer stmt.Close() //nolint:errcheck

	for _, t := range teams {
		if _, err := stmt.ExecContext(ctx, t.ID, t.Name, t.ShortName, t.TLA, t.Crest, t.FetchedAt.UTC()); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert team %d", t.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert teams")
	}
	return len(teams), nil
}

const sqliteUpsertMatch = `
INSERT INTO matches (
	match_id, competition_code, season, utc_date, status, matchday, stage, group_name,
	home_team_id, home_team_name, away_team_id, away_team_name,
	home_score_full, away_score_full, home_score_half, away_score_half,
	winner, last_updated, fetched_at, raw_payload
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(match_id) DO UPDATE SET
	competition_code=excluded.competition_code,
	season=excluded.season,
	utc_date=excluded.utc_date,
	status=excluded.status,
	matchday=excluded.matchday,
	stage=excluded.stage,
	group_name=excluded.group_name,
	home_team_id=excluded.home_team_id,
	home_team_name=excluded.home_team_name,
	away_team_id=excluded.away_team_id,
	away_team_name=excluded.away_team_name,
	home_score_full=excluded.home_score_full,
	away_score_full=excluded.away_score_full,
	home_score_half=excluded.home_score_half,
	away_score_half=excluded.away_score_half,
	winner=excluded.winner,
	last_updated=excluded.last_updated,
	fetched_at=excluded.fetched_at,
	raw_payload=excluded.raw_payload`

func (s *SQLiteStore) UpsertMatches(ctx context.Context, competitionCode string, season int, matches []model.Match) (int, error) {
	if len(matches) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert matches")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, sqliteUpsertMatch)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert match")
	}
	defer stmt.Close() //nolint:errcheck

	for _, m := range matches {
		if _, err := stmt.ExecContext(ctx,
			m.ID, competitionCode, season, m.UTCDate.UTC(), string(m.Status), m.Matchday, m.Stage, m.Group,
			m.HomeTeamID, m.HomeTeamName, m.AwayTeamID, m.AwayTeamName,
			m.HomeScoreFull, m.AwayScoreFull, m.HomeScoreHalf, m.AwayScoreHalf,
			nullString(m.Winner), nullTime(m.LastUpdated), m.FetchedAt.UTC(), nullPayload(m.RawPayload),
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert match %d", m.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert matches")
	}
	return len(matches), nil
}

func (s *SQLiteStore) RecordRunStart(ctx context.Context, run model.IngestRun) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ingest_runs (run_id, run_ts, comp_code, season, status, details) VALUES (?, ?, ?, ?, ?, NULL)`,
		run.ID, run.RunTS.UTC(), run.CompCode, run.Season, string(model.RunStarted),
	)
	return eris.Wrapf(err, "sqlite: record run start %s", run.ID)
}

func (s *SQLiteStore) RecordRunResult(ctx context.Context, runID string, status model.RunStatus, details string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE ingest_runs SET status = ?, details = ? WHERE run_id = ?`,
		string(status), details, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: record run result %s", runID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: run not found: %s", runID)
	}
	return nil
}

// Truncate clears matches and teams in one transaction. The audit log stays.
func (s *SQLiteStore) Truncate(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin truncate")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range []string{"matches", "teams"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return eris.Wrapf(err, "sqlite: truncate %s", table)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit truncate")
}

func (s *SQLiteStore) ListTeams(ctx context.Context) ([]model.Team, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT team_id, name, short_name, tla, crest, fetched_at FROM teams ORDER BY name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list teams")
	}
	defer rows.Close() //nolint:errcheck

	var teams []model.Team
	for rows.Next() {
		var t model.Team
		var shortName, tla, crest sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &shortName, &tla, &crest, &t.FetchedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan team")
		}
		t.ShortName = shortName.String
		t.TLA = tla.String
		t.Crest = crest.String
		teams = append(teams, t)
	}
	return teams, eris.Wrap(rows.Err(), "sqlite: list teams iterate")
}

const sqliteSelectMatch = `
SELECT match_id, competition_code, season, utc_date, status, matchday, stage, group_name,
	home_team_id, home_team_name, away_team_id, away_team_name,
	home_score_full, away_score_full, home_score_half, away_score_half,
	winner, last_updated, fetched_at, raw_payload
FROM matches`

func (s *SQLiteStore) ListMatches(ctx context.Context, competitionCode string, season int) ([]model.Match, error) {
	rows, err := s.db.QueryContext(ctx,
		sqliteSelectMatch+` WHERE competition_code = ? AND season = ? ORDER BY utc_date, match_id`,
		competitionCode, season,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list matches")
	}
	defer rows.Close() //nolint:errcheck

	var matches []model.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, eris.Wrap(rows.Err(), "sqlite: list matches iterate")
}

func (s *SQLiteStore) GetMatch(ctx context.Context, matchID int64) (*model.Match, error) {
	rows, err := s.db.QueryContext(ctx, sqliteSelectMatch+` WHERE match_id = ?`, matchID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get match %d", matchID)
	}
	defer rows.Close() //nolint:errcheck

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanMatch(rows)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.IngestRun, error) {
	query := `SELECT run_id, run_ts, comp_code, season, status, details FROM ingest_runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY run_ts DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.IngestRun
	for rows.Next() {
		var r model.IngestRun
		var details sql.NullString
		var status string
		if err := rows.Scan(&r.ID, &r.RunTS, &r.CompCode, &r.Season, &status, &details); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		r.Status = model.RunStatus(status)
		r.Details = details.String
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// helpers

func scanMatch(rows *sql.Rows) (*model.Match, error) {
	var m model.Match
	var status string
	var stage, group, homeName, awayName, winner, payload sql.NullString
	var lastUpdated sql.NullTime

	err := rows.Scan(
		&m.ID, &m.CompetitionCode, &m.Season, &m.UTCDate, &status, &m.Matchday, &stage, &group,
		&m.HomeTeamID, &homeName, &m.AwayTeamID, &awayName,
		&m.HomeScoreFull, &m.AwayScoreFull, &m.HomeScoreHalf, &m.AwayScoreHalf,
		&winner, &lastUpdated, &m.FetchedAt, &payload,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan match")
	}

	m.Status = model.MatchStatus(status)
	m.Stage = stage.String
	m.Group = group.String
	m.HomeTeamName = homeName.String
	m.AwayTeamName = awayName.String
	m.Winner = winner.String
	if lastUpdated.Valid {
		t := lastUpdated.Time
		m.LastUpdated = &t
	}
	if payload.Valid {
		m.RawPayload = []byte(payload.String)
	}
	return &m, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nullPayload(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
