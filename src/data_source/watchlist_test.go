package datasource

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"series-proxy/src/helpers"
	"series-proxy/src/logger"
	"series-proxy/src/models"
	"series-proxy/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	calls atomic.Int32
	err   error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) FetchSeries(_ context.Context, ids []string) (*models.MResultMap, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	out := models.NewResultMap(len(ids))
	for i, id := range models.NewSeriesRequest(ids) {
		if i == 0 {
			out.Set(id, models.NewErrorResult("upstream status 500"))
			continue
		}
		out.Set(id, models.NewObservationsResult(nil))
	}
	return out, nil
}

func newRefresher(src *fakeSource, businessDaysOnly bool) *WatchlistRefresher {
	r := NewWatchlistRefresher(models.MWatchlistConfig{
		Enabled:               true,
		Series:                []string{"DGS10", "FEDFUNDS", "DGS10"},
		UpdateIntervalSeconds: 60,
		BusinessDaysOnly:      businessDaysOnly,
	}, src, logger.NewWithOutput(io.Discard, "DEBUG", "Watchlist"))
	r.Calendar = &utils.BusinessCalendar{Fallback: true, Timezone: time.UTC}
	r.interval = 10 * time.Millisecond
	return r
}

func TestRefreshBuildsSnapshot(t *testing.T) {
	r := newRefresher(&fakeSource{}, false)
	r.now = func() time.Time { return time.Unix(1700000000, 0) }

	snap, err := r.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "UPDATE", snap.Type)
	assert.Equal(t, int64(1700000000), snap.Timestamp)
	assert.Equal(t, []string{"DGS10", "FEDFUNDS"}, snap.Results.Keys())
	assert.Equal(t, 2, snap.Metrics.SeriesRequested)
	assert.Equal(t, 1, snap.Metrics.SeriesFailed)
	assert.NotNil(t, snap.Changes)
	assert.Empty(t, snap.Changes)
}

func TestRefreshPropagatesConfigurationError(t *testing.T) {
	r := newRefresher(&fakeSource{err: helpers.NewConfigurationError("Missing FRED_API_KEY")}, false)
	_, err := r.Refresh(context.Background())

	var cfgErr *helpers.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestShouldRefreshHonoursBusinessDays(t *testing.T) {
	saturday := time.Date(2024, 3, 16, 12, 0, 0, 0, time.UTC)
	friday := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	strict := newRefresher(&fakeSource{}, true)
	assert.False(t, strict.ShouldRefresh(saturday))
	assert.True(t, strict.ShouldRefresh(friday))

	relaxed := newRefresher(&fakeSource{}, false)
	assert.True(t, relaxed.ShouldRefresh(saturday))
}

func TestStartPushesSnapshotsUntilStopped(t *testing.T) {
	src := &fakeSource{}
	r := newRefresher(src, false)

	out := make(chan *models.MLatestData, 1)
	var wg sync.WaitGroup
	require.NoError(t, r.Start(context.Background(), out, &wg))
	assert.Error(t, r.Start(context.Background(), out, &wg), "second start must fail")

	for i := 0; i < 2; i++ {
		select {
		case snap := <-out:
			assert.Equal(t, []string{"DGS10", "FEDFUNDS"}, snap.Results.Keys())
		case <-time.After(2 * time.Second):
			t.Fatal("no snapshot received")
		}
	}

	require.NoError(t, r.Stop())
	wg.Wait()
	assert.Error(t, r.Stop())
	assert.GreaterOrEqual(t, src.calls.Load(), int32(2))
}

func TestLoopSkipsNonBusinessDays(t *testing.T) {
	src := &fakeSource{}
	r := newRefresher(src, true)
	r.now = func() time.Time { return time.Date(2024, 3, 17, 12, 0, 0, 0, time.UTC) } // Sunday

	out := make(chan *models.MLatestData, 1)
	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, r.Start(ctx, out, &wg))

	time.Sleep(50 * time.Millisecond)
	cancel()
	wg.Wait()

	assert.Zero(t, src.calls.Load())
	assert.Empty(t, out)
}

func TestUpdateSeries(t *testing.T) {
	r := newRefresher(&fakeSource{}, false)
	r.UpdateSeries([]string{" CPIAUCSL ", "", "CPIAUCSL", "UNRATE"})
	assert.Equal(t, []string{"CPIAUCSL", "UNRATE"}, r.Series())
}
