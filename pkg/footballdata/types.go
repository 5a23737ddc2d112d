package footballdata

import "time"

// teamsResponse is the wire shape of GET /competitions/{code}/teams.
type teamsResponse struct {
	Teams []teamPayload `json:"teams"`
}

type teamPayload struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	TLA       string `json:"tla"`
	Crest     string `json:"crest"`
}

// matchPayload is the wire shape of one entry in GET
// /competitions/{code}/matches. The surrounding list is decoded as raw
// JSON first so the verbatim payload can be stored alongside the parsed
// record.
type matchPayload struct {
	ID          int64      `json:"id"`
	UTCDate     time.Time  `json:"utcDate"`
	Status      string     `json:"status"`
	Matchday    *int       `json:"matchday"`
	Stage       string     `json:"stage"`
	Group       *string    `json:"group"`
	LastUpdated *time.Time `json:"lastUpdated"`
	HomeTeam    matchSide  `json:"homeTeam"`
	AwayTeam    matchSide  `json:"awayTeam"`
	Score       matchScore `json:"score"`
}

type matchSide struct {
	ID   *int64 `json:"id"`
	Name string `json:"name"`
}

type matchScore struct {
	Winner   *string   `json:"winner"`
	FullTime scorePair `json:"fullTime"`
	HalfTime scorePair `json:"halfTime"`
}

type scorePair struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}
