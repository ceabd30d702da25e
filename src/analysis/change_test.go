package analysis

import (
	"testing"

	"series-proxy/src/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obs(date, value string) models.MObservation {
	return models.MObservation{Date: date, Value: decimal.RequireFromString(value)}
}

func TestCalculateChangePercent(t *testing.T) {
	pct, ok := CalculateChangePercent(decimal.RequireFromString("4.58"), decimal.RequireFromString("4.63"))
	require.True(t, ok)
	assert.Equal(t, "-1.0799", pct.String())

	_, ok = CalculateChangePercent(decimal.RequireFromString("1"), decimal.Zero)
	assert.False(t, ok)
}

func TestComputeChanges(t *testing.T) {
	results := models.NewResultMap(4)
	results.Set("DGS10", models.NewObservationsResult([]models.MObservation{obs("2024-05-02", "4.58"), obs("2024-05-01", "4.63")}))
	results.Set("SINGLE", models.NewObservationsResult([]models.MObservation{obs("2024-05-02", "1")}))
	results.Set("BAD", models.NewErrorResult("upstream status 400"))
	results.Set("ZERO", models.NewObservationsResult([]models.MObservation{obs("2024-05-02", "0.25"), obs("2024-05-01", "0")}))

	changes := ComputeChanges(results)
	require.Len(t, changes, 2)

	assert.Equal(t, "DGS10", changes[0].SeriesID)
	assert.Equal(t, "2024-05-02", changes[0].LatestDate)
	assert.Equal(t, "2024-05-01", changes[0].PreviousDate)
	assert.Equal(t, "-0.05", changes[0].Change.String())
	require.NotNil(t, changes[0].ChangePercent)
	assert.Equal(t, "-1.0799", changes[0].ChangePercent.String())

	assert.Equal(t, "ZERO", changes[1].SeriesID)
	assert.Nil(t, changes[1].ChangePercent)
	assert.Equal(t, "0.25", changes[1].Change.String())

	assert.Empty(t, ComputeChanges(nil))
	assert.Empty(t, ComputeChanges(models.NewResultMap(0)))
}
