package models

// MProcessingMetrics describes one watchlist refresh.
type MProcessingMetrics struct {
	FetchTimeSeconds float64 `json:"fetch_time_seconds"`
	SeriesRequested  int     `json:"series_requested"`
	SeriesFailed     int     `json:"series_failed"`
}
