package analysis

import (
	"series-proxy/src/models"

	"github.com/shopspring/decimal"
)

const percentPlaces = 4

var hundred = decimal.NewFromInt(100)

// -----------------------------------------------------------------------------

// CalculateChangePercent returns the change from previous to current in
// percent, or false when previous is zero.
func CalculateChangePercent(current, previous decimal.Decimal) (decimal.Decimal, bool) {
	if previous.IsZero() {
		return decimal.Zero, false
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(percentPlaces), true
}

// -----------------------------------------------------------------------------

// ComputeChanges builds one change entry per series holding two observations,
// in result order. Errors and single observations are skipped.
func ComputeChanges(results *models.MResultMap) []models.MSeriesChange {
	if results == nil {
		return []models.MSeriesChange{}
	}

	changes := make([]models.MSeriesChange, 0, results.Len())
	for _, id := range results.Keys() {
		r, _ := results.Get(id)
		if r.IsError() || len(r.Observations) < 2 {
			continue
		}

		latest, previous := r.Observations[0], r.Observations[1]
		c := models.MSeriesChange{
			SeriesID:     id,
			LatestDate:   latest.Date,
			Latest:       latest.Value,
			PreviousDate: previous.Date,
			Previous:     previous.Value,
			Change:       latest.Value.Sub(previous.Value),
		}
		if pct, ok := CalculateChangePercent(latest.Value, previous.Value); ok {
			c.ChangePercent = &pct
		}
		changes = append(changes, c)
	}
	return changes
}
