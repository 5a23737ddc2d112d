// Package model defines the entities shared across the ingestion and
// derivation layers: raw teams, matches, and ingest runs as stored, plus
// the derived team-perspective and standings records.
package model

import (
	"encoding/json"
	"time"
)

// MatchStatus is the upstream match lifecycle status (football-data.org v4).
type MatchStatus string

const (
	StatusScheduled MatchStatus = "SCHEDULED"
	StatusTimed     MatchStatus = "TIMED"
	StatusInPlay    MatchStatus = "IN_PLAY"
	StatusPaused    MatchStatus = "PAUSED"
	StatusFinished  MatchStatus = "FINISHED"
	StatusPostponed MatchStatus = "POSTPONED"
	StatusSuspended MatchStatus = "SUSPENDED"
	StatusCancelled MatchStatus = "CANCELLED"
	StatusAwarded   MatchStatus = "AWARDED"
)

// Complete reports whether the status represents a determinate final result.
func (s MatchStatus) Complete() bool {
	return s == StatusFinished || s == StatusAwarded
}

// RunStatus tracks an ingest run through its lifecycle.
type RunStatus string

const (
	RunStarted RunStatus = "STARTED"
	RunSuccess RunStatus = "SUCCESS"
	RunFailed  RunStatus = "FAILED"
)

// Team is a club in the tracked competition, keyed by the upstream team id.
type Team struct {
	ID        int64     `json:"team_id"`
	Name      string    `json:"name"`
	ShortName string    `json:"short_name"`
	TLA       string    `json:"tla"`
	Crest     string    `json:"crest"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Match is a raw fixture record as fetched. Scores, matchday, team ids and
// winner are nullable until the upstream schedules or plays the match. The
// original payload is kept verbatim for auditability and replay.
type Match struct {
	ID              int64           `json:"match_id"`
	CompetitionCode string          `json:"competition_code"`
	Season          int             `json:"season"`
	UTCDate         time.Time       `json:"utc_date"`
	Status          MatchStatus     `json:"status"`
	Matchday        *int            `json:"matchday"`
	Stage           string          `json:"stage"`
	Group           string          `json:"group"`
	HomeTeamID      *int64          `json:"home_team_id"`
	HomeTeamName    string          `json:"home_team_name"`
	AwayTeamID      *int64          `json:"away_team_id"`
	AwayTeamName    string          `json:"away_team_name"`
	HomeScoreFull   *int            `json:"home_score_full"`
	AwayScoreFull   *int            `json:"away_score_full"`
	HomeScoreHalf   *int            `json:"home_score_half"`
	AwayScoreHalf   *int            `json:"away_score_half"`
	Winner          string          `json:"winner"`
	LastUpdated     *time.Time      `json:"last_updated"`
	FetchedAt       time.Time       `json:"fetched_at"`
	RawPayload      json.RawMessage `json:"-"`
}

// HasResult reports whether the match carries a determinate full-time score.
func (m Match) HasResult() bool {
	return m.Status.Complete() && m.HomeScoreFull != nil && m.AwayScoreFull != nil
}

// IngestRun is one append-only audit record per ingestion invocation.
type IngestRun struct {
	ID       string    `json:"run_id"`
	RunTS    time.Time `json:"run_ts"`
	CompCode string    `json:"comp_code"`
	Season   int       `json:"season"`
	Status   RunStatus `json:"status"`
	Details  string    `json:"details"`
}

// MatchResult is a single-team outcome: win, draw, or loss.
type MatchResult string

const (
	ResultWin  MatchResult = "W"
	ResultDraw MatchResult = "D"
	ResultLoss MatchResult = "L"
)

// Points returns the league points awarded for the result.
func (r MatchResult) Points() int {
	switch r {
	case ResultWin:
		return 3
	case ResultDraw:
		return 1
	default:
		return 0
	}
}

// TeamMatch is one finished match seen from one team's perspective. Every
// finished match projects into exactly two mirrored TeamMatch rows.
type TeamMatch struct {
	TeamID         int64       `json:"team_id"`
	MatchID        int64       `json:"match_id"`
	Matchday       int         `json:"matchday"`
	MatchDate      time.Time   `json:"match_date"`
	IsHome         bool        `json:"is_home"`
	OpponentTeamID int64       `json:"opponent_team_id"`
	GoalsFor       int         `json:"goals_for"`
	GoalsAgainst   int         `json:"goals_against"`
	Result         MatchResult `json:"result"`
	Points         int         `json:"points"`
}

// StandingsSnapshot is a team's cumulative standing evaluated after one of
// its matches. The latest snapshot per team forms the current league table.
type StandingsSnapshot struct {
	TeamID         int64     `json:"team_id"`
	TeamName       string    `json:"team_name"`
	Matchday       int       `json:"matchday"`
	AsOfDate       time.Time `json:"as_of_date"`
	Played         int       `json:"played"`
	Won            int       `json:"won"`
	Drawn          int       `json:"drawn"`
	Lost           int       `json:"lost"`
	GoalsFor       int       `json:"goals_for"`
	GoalsAgainst   int       `json:"goals_against"`
	GoalDifference int       `json:"goal_difference"`
	Points         int       `json:"points"`
	Position       int       `json:"position"`
}

// PositionPoint is one matchday on a team's position-through-time series,
// joined with the match context that produced it.
type PositionPoint struct {
	Matchday       int         `json:"matchday"`
	AsOfDate       time.Time   `json:"as_of_date"`
	Position       int         `json:"position"`
	Points         int         `json:"points"`
	GoalDifference int         `json:"goal_difference"`
	Opponent       string      `json:"opponent"`
	IsHome         bool        `json:"is_home"`
	Result         MatchResult `json:"result"`
	GoalsFor       int         `json:"goals_for"`
	GoalsAgainst   int         `json:"goals_against"`
}

// Outcome is a predicted fixture result.
type Outcome string

const (
	OutcomeHomeWin Outcome = "HOME_WIN"
	OutcomeAwayWin Outcome = "AWAY_WIN"
	OutcomeDraw    Outcome = "DRAW"
)

// Prediction is the output of the position-gap heuristic. It is a
// placeholder, not a calibrated model: it only compares current table
// positions and calls anything within one place a draw.
type Prediction struct {
	HomeTeamID   int64   `json:"home_team_id"`
	AwayTeamID   int64   `json:"away_team_id"`
	Outcome      Outcome `json:"outcome"`
	WinnerTeamID int64   `json:"winner_team_id,omitempty"`
	HomePosition int     `json:"home_position,omitempty"`
	AwayPosition int     `json:"away_position,omitempty"`
}
