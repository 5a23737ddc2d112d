package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicklittle905/football-team-season-tracker/internal/model"
)

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	formatTable(&buf, []model.StandingsSnapshot{
		{Position: 1, TeamName: "Leicester City FC", Played: 3, Won: 3, GoalsFor: 7, GoalsAgainst: 2, GoalDifference: 5, Points: 9},
		{Position: 2, TeamName: "Norwich City FC", Played: 3, Won: 1, Drawn: 1, Lost: 1, GoalsFor: 4, GoalsAgainst: 4, Points: 4},
	})

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "POS")
	assert.Contains(t, lines[0], "PTS")
	assert.Contains(t, lines[1], "Leicester City FC")
	// Goal difference is signed.
	assert.Contains(t, lines[1], "+5")
	assert.Contains(t, lines[2], "+0")
}

func TestFormatRunsList(t *testing.T) {
	var buf bytes.Buffer
	formatRunsList(&buf, []model.IngestRun{
		{
			ID:       "20250809T140000Z",
			RunTS:    time.Date(2025, 8, 9, 14, 0, 0, 0, time.UTC),
			CompCode: "ELC",
			Season:   2025,
			Status:   model.RunFailed,
			Details:  strings.Repeat("x", 100),
		},
	})

	out := buf.String()
	assert.Contains(t, out, "20250809T140000Z")
	assert.Contains(t, out, "FAILED")
	// Long details are shortened for the terminal.
	assert.Contains(t, out, "...")
	assert.NotContains(t, out, strings.Repeat("x", 61))
}
