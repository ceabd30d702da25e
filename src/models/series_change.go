package models

import "github.com/shopspring/decimal"

// MSeriesChange compares the two newest observations of a series.
type MSeriesChange struct {
	SeriesID      string           `json:"series_id"`
	LatestDate    string           `json:"latest_date"`
	Latest        decimal.Decimal  `json:"latest"`
	PreviousDate  string           `json:"previous_date"`
	Previous      decimal.Decimal  `json:"previous"`
	Change        decimal.Decimal  `json:"change"`
	ChangePercent *decimal.Decimal `json:"change_percent,omitempty"` // nil when previous is zero
}
