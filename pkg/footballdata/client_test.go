package footballdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicklittle905/football-team-season-tracker/internal/model"
)

const teamsBody = `{
	"teams": [
		{"id": 341, "name": "Leeds United FC", "shortName": "Leeds", "tla": "LEE", "crest": "https://crests.example/341.png"},
		{"id": 348, "name": "Norwich City FC", "shortName": "Norwich", "tla": "NOR", "crest": "https://crests.example/348.png"}
	]
}`

const matchesBody = `{
	"matches": [
		{
			"id": 1001,
			"utcDate": "2025-08-09T14:00:00Z",
			"status": "FINISHED",
			"matchday": 1,
			"stage": "REGULAR_SEASON",
			"group": null,
			"lastUpdated": "2025-08-09T16:05:00Z",
			"homeTeam": {"id": 341, "name": "Leeds United FC"},
			"awayTeam": {"id": 348, "name": "Norwich City FC"},
			"score": {
				"winner": "HOME_TEAM",
				"fullTime": {"home": 2, "away": 1},
				"halfTime": {"home": 1, "away": 0}
			}
		},
		{
			"id": 1002,
			"utcDate": "2026-05-02T14:00:00Z",
			"status": "SCHEDULED",
			"matchday": null,
			"stage": "REGULAR_SEASON",
			"group": null,
			"lastUpdated": null,
			"homeTeam": {"id": null, "name": ""},
			"awayTeam": {"id": null, "name": ""},
			"score": {
				"winner": null,
				"fullTime": {"home": null, "away": null},
				"halfTime": {"home": null, "away": null}
			}
		}
	]
}`

// newTestClient points a client at a stub server and pins the clock.
func newTestClient(t *testing.T, handler http.HandlerFunc) (Client, time.Time) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	at := time.Date(2025, 8, 9, 17, 0, 0, 0, time.UTC)
	c := NewClient("test-token", WithBaseURL(srv.URL), WithRateLimit(6000))
	c.(*httpClient).now = func() time.Time { return at }
	return c, at
}

func TestTeams(t *testing.T) {
	var gotPath, gotToken string
	client, at := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		gotToken = r.Header.Get("X-Auth-Token")
		w.Write([]byte(teamsBody)) //nolint:errcheck
	})

	teams, err := client.Teams(context.Background(), "ELC", 2025)
	require.NoError(t, err)
	assert.Equal(t, "/competitions/ELC/teams?season=2025", gotPath)
	assert.Equal(t, "test-token", gotToken)

	require.Len(t, teams, 2)
	assert.Equal(t, int64(341), teams[0].ID)
	assert.Equal(t, "Leeds United FC", teams[0].Name)
	assert.Equal(t, "LEE", teams[0].TLA)
	assert.Equal(t, at, teams[0].FetchedAt)
}

func TestMatches(t *testing.T) {
	client, at := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/competitions/ELC/matches?season=2025", r.URL.RequestURI())
		w.Write([]byte(matchesBody)) //nolint:errcheck
	})

	matches, err := client.Matches(context.Background(), "ELC", 2025)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	finished := matches[0]
	assert.Equal(t, int64(1001), finished.ID)
	assert.Equal(t, "ELC", finished.CompetitionCode)
	assert.Equal(t, 2025, finished.Season)
	assert.Equal(t, model.StatusFinished, finished.Status)
	require.NotNil(t, finished.Matchday)
	assert.Equal(t, 1, *finished.Matchday)
	require.NotNil(t, finished.HomeTeamID)
	assert.Equal(t, int64(341), *finished.HomeTeamID)
	assert.Equal(t, "Norwich City FC", finished.AwayTeamName)
	require.NotNil(t, finished.HomeScoreFull)
	assert.Equal(t, 2, *finished.HomeScoreFull)
	require.NotNil(t, finished.AwayScoreHalf)
	assert.Equal(t, 0, *finished.AwayScoreHalf)
	assert.Equal(t, "HOME_TEAM", finished.Winner)
	require.NotNil(t, finished.LastUpdated)
	assert.Equal(t, time.Date(2025, 8, 9, 16, 5, 0, 0, time.UTC), *finished.LastUpdated)
	assert.Equal(t, at, finished.FetchedAt)
	// The verbatim upstream entry rides along for storage.
	assert.JSONEq(t, `{
		"id": 1001,
		"utcDate": "2025-08-09T14:00:00Z",
		"status": "FINISHED",
		"matchday": 1,
		"stage": "REGULAR_SEASON",
		"group": null,
		"lastUpdated": "2025-08-09T16:05:00Z",
		"homeTeam": {"id": 341, "name": "Leeds United FC"},
		"awayTeam": {"id": 348, "name": "Norwich City FC"},
		"score": {
			"winner": "HOME_TEAM",
			"fullTime": {"home": 2, "away": 1},
			"halfTime": {"home": 1, "away": 0}
		}
	}`, string(finished.RawPayload))

	scheduled := matches[1]
	assert.Equal(t, model.StatusScheduled, scheduled.Status)
	assert.Nil(t, scheduled.Matchday)
	assert.Nil(t, scheduled.HomeTeamID)
	assert.Nil(t, scheduled.HomeScoreFull)
	assert.Nil(t, scheduled.LastUpdated)
	assert.Empty(t, scheduled.Winner)
}

func TestAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message": "The resource you are looking for is restricted."}`)) //nolint:errcheck
	})

	_, err := client.Teams(context.Background(), "ELC", 2025)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "restricted")
	// The upstream body is surfaced verbatim in the error string.
	assert.Contains(t, err.Error(), "status 403")
}

func TestMatches_MalformedResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"matches": [{"id": "not-a-number"}]}`)) //nolint:errcheck
	})

	_, err := client.Matches(context.Background(), "ELC", 2025)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal match")
}
