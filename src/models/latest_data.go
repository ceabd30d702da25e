package models

// -----------------------------------------------------------------------------
// Server State Structure
// -----------------------------------------------------------------------------

// MLatestData is the watchlist snapshot held by the server and pushed to
// websocket clients.
type MLatestData struct {
	Type      string             `json:"type"` // "INITIAL" or "UPDATE"
	Results   *MResultMap        `json:"results"`
	Changes   []MSeriesChange    `json:"changes"`
	Timestamp int64              `json:"timestamp"`
	Metrics   MProcessingMetrics `json:"processing_metrics"`
}

// -----------------------------------------------------------------------------
// SubscribeCommand for client messages
// -----------------------------------------------------------------------------

type MSubscribeCommand struct {
	Command string   `json:"command"`
	Series  []string `json:"series"`
}
