package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicklittle905/football-team-season-tracker/internal/model"
)

func newMockPostgres(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

func TestPostgresMigrate(t *testing.T) {
	s, mock := newMockPostgres(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS teams`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRecordRunStart(t *testing.T) {
	s, mock := newMockPostgres(t)
	ts := time.Date(2025, 8, 9, 14, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO ingest_runs`).
		WithArgs("20250809T140000Z", ts, "ELC", 2025, "STARTED").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.RecordRunStart(context.Background(), model.IngestRun{
		ID:       "20250809T140000Z",
		RunTS:    ts,
		CompCode: "ELC",
		Season:   2025,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRecordRunResult(t *testing.T) {
	s, mock := newMockPostgres(t)
	mock.ExpectExec(`UPDATE ingest_runs SET status`).
		WithArgs("SUCCESS", "teams=24, matches=552", "r1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.RecordRunResult(context.Background(), "r1", model.RunSuccess, "teams=24, matches=552")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRecordRunResult_UnknownRun(t *testing.T) {
	s, mock := newMockPostgres(t)
	mock.ExpectExec(`UPDATE ingest_runs SET status`).
		WithArgs("FAILED", "boom", "nope").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.RecordRunResult(context.Background(), "nope", model.RunFailed, "boom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
}

func TestPostgresListTeams(t *testing.T) {
	s, mock := newMockPostgres(t)
	fetched := time.Date(2025, 8, 9, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT team_id, name, .* FROM teams ORDER BY name`).
		WillReturnRows(pgxmock.NewRows(
			[]string{"team_id", "name", "short_name", "tla", "crest", "fetched_at"},
		).
			AddRow(int64(341), "Leeds United FC", "Leeds", "LEE", "", fetched).
			AddRow(int64(348), "Norwich City FC", "Norwich", "NOR", "", fetched))

	teams, err := s.ListTeams(context.Background())
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, int64(341), teams[0].ID)
	assert.Equal(t, "Norwich", teams[1].ShortName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListRuns_DefaultLimit(t *testing.T) {
	s, mock := newMockPostgres(t)
	ts := time.Date(2025, 8, 9, 14, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT run_id, .* FROM ingest_runs WHERE 1=1 ORDER BY run_ts DESC LIMIT \$1`).
		WithArgs(50).
		WillReturnRows(pgxmock.NewRows(
			[]string{"run_id", "run_ts", "comp_code", "season", "status", "details"},
		).AddRow("r1", ts, "ELC", 2025, "SUCCESS", "teams=24, matches=552"))

	runs, err := s.ListRuns(context.Background(), RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunSuccess, runs[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListRuns_StatusFilter(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectQuery(`SELECT run_id, .* AND status = \$1 ORDER BY run_ts DESC LIMIT \$2`).
		WithArgs("FAILED", 10).
		WillReturnRows(pgxmock.NewRows(
			[]string{"run_id", "run_ts", "comp_code", "season", "status", "details"},
		))

	runs, err := s.ListRuns(context.Background(), RunFilter{Status: model.RunFailed, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetMatch_NotFound(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectQuery(`SELECT match_id, .* FROM matches WHERE match_id = \$1`).
		WithArgs(int64(404)).
		WillReturnRows(pgxmock.NewRows([]string{"match_id"}))

	got, err := s.GetMatch(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPostgresTruncate(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM matches`).WillReturnResult(pgxmock.NewResult("DELETE", 12))
	mock.ExpectExec(`DELETE FROM teams`).WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectCommit()
	mock.ExpectRollback() // deferred rollback after commit

	require.NoError(t, s.Truncate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsertTeams(t *testing.T) {
	s, mock := newMockPostgres(t)
	fetched := time.Date(2025, 8, 9, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "_tmp_upsert_teams"`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_teams"}, teamColumns).
		WillReturnResult(1)
	mock.ExpectExec(`INSERT INTO "teams" .* ON CONFLICT \("team_id"\) DO UPDATE SET`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	mock.ExpectRollback() // deferred rollback after commit

	n, err := s.UpsertTeams(context.Background(), []model.Team{
		{ID: 341, Name: "Leeds United FC", ShortName: "Leeds", TLA: "LEE", FetchedAt: fetched},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
