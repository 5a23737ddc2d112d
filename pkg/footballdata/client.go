// Package footballdata provides a client for the football-data.org v4 API.
package footballdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/nicklittle905/football-team-season-tracker/internal/model"
)

// APIError is a non-success upstream response. The status code and body are
// surfaced verbatim so callers can see plan restrictions, rate limits, etc.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("footballdata: status %d: %s", e.StatusCode, e.Body)
}

// Client defines the read-only football-data.org operations used by ingestion.
type Client interface {
	// Teams fetches the team list for a competition season.
	Teams(ctx context.Context, competitionCode string, season int) ([]model.Team, error)
	// Matches fetches the full fixture/result list for a competition season.
	Matches(ctx context.Context, competitionCode string, season int) ([]model.Match, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps upstream calls per minute. The free tier allows 10.
func WithRateLimit(perMinute float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(perMinute/60), 1)
	}
}

type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	now     func() time.Time
}

// NewClient creates a football-data.org client authenticated by token.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: "https://api.football-data.org/v4",
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(10.0/60), 1),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs one authenticated request. No retries: a failed or timed-out
// call is a fetch failure for the caller to record.
func (c *httpClient) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "footballdata: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, eris.Wrap(err, "footballdata: create request")
	}
	req.Header.Set("X-Auth-Token", c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "footballdata: GET %s", path)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "footballdata: read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func (c *httpClient) Teams(ctx context.Context, competitionCode string, season int) ([]model.Team, error) {
	body, err := c.get(ctx, fmt.Sprintf("/competitions/%s/teams?season=%d", competitionCode, season))
	if err != nil {
		return nil, err
	}

	var resp teamsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "footballdata: unmarshal teams")
	}

	fetchedAt := c.now().UTC()
	teams := make([]model.Team, 0, len(resp.Teams))
	for _, t := range resp.Teams {
		teams = append(teams, model.Team{
			ID:        t.ID,
			Name:      t.Name,
			ShortName: t.ShortName,
			TLA:       t.TLA,
			Crest:     t.Crest,
			FetchedAt: fetchedAt,
		})
	}
	return teams, nil
}

func (c *httpClient) Matches(ctx context.Context, competitionCode string, season int) ([]model.Match, error) {
	body, err := c.get(ctx, fmt.Sprintf("/competitions/%s/matches?season=%d", competitionCode, season))
	if err != nil {
		return nil, err
	}

	// Decode each match twice: once parsed, once as the verbatim payload
	// that gets stored for auditability and replay.
	var raw struct {
		Matches []json.RawMessage `json:"matches"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, eris.Wrap(err, "footballdata: unmarshal matches")
	}

	fetchedAt := c.now().UTC()
	matches := make([]model.Match, 0, len(raw.Matches))
	for _, rm := range raw.Matches {
		var p matchPayload
		if err := json.Unmarshal(rm, &p); err != nil {
			return nil, eris.Wrap(err, "footballdata: unmarshal match")
		}

		m := model.Match{
			ID:              p.ID,
			CompetitionCode: competitionCode,
			Season:          season,
			UTCDate:         p.UTCDate.UTC(),
			Status:          model.MatchStatus(p.Status),
			Matchday:        p.Matchday,
			Stage:           p.Stage,
			HomeTeamID:      p.HomeTeam.ID,
			HomeTeamName:    p.HomeTeam.Name,
			AwayTeamID:      p.AwayTeam.ID,
			AwayTeamName:    p.AwayTeam.Name,
			HomeScoreFull:   p.Score.FullTime.Home,
			AwayScoreFull:   p.Score.FullTime.Away,
			HomeScoreHalf:   p.Score.HalfTime.Home,
			AwayScoreHalf:   p.Score.HalfTime.Away,
			FetchedAt:       fetchedAt,
			RawPayload:      rm,
		}
		if p.Group != nil {
			m.Group = *p.Group
		}
		if p.Score.Winner != nil {
			m.Winner = *p.Score.Winner
		}
		if p.LastUpdated != nil {
			lu := p.LastUpdated.UTC()
			m.LastUpdated = &lu
		}
		matches = append(matches, m)
	}
	return matches, nil
}
