package models

import "time"

const (
	FetchStatusOK    = "ok"
	FetchStatusError = "error"

	FetchSourceAPI       = "api"
	FetchSourceWatchlist = "watchlist"
)

// MFetchRecord is one row of the fetch log: the outcome of fetching a single
// series during a request or a watchlist refresh.
type MFetchRecord struct {
	ID               string    `json:"id"`
	RequestID        string    `json:"request_id"`
	Source           string    `json:"source"`
	SeriesID         string    `json:"series_id"`
	Status           string    `json:"status"`
	Error            string    `json:"error,omitempty"`
	ObservationCount int       `json:"observation_count"`
	LatestDate       string    `json:"latest_date,omitempty"`
	LatestValue      string    `json:"latest_value,omitempty"`
	FetchedAt        time.Time `json:"fetched_at"`
}
