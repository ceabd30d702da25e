package datasource

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"series-proxy/src/analysis"
	"series-proxy/src/interfaces"
	"series-proxy/src/logger"
	"series-proxy/src/models"
	"series-proxy/src/utils"
)

// WatchlistRefresher polls a fixed list of series and pushes a snapshot of the
// results on every tick.
type WatchlistRefresher struct {
	Config     models.MWatchlistConfig
	Source     interfaces.ISeriesSource
	Calendar   *utils.BusinessCalendar
	Logger     *logger.Logger
	series     atomic.Value // Stores []string safely
	interval   time.Duration
	now        func() time.Time
	cancelFunc context.CancelFunc
	outputChan chan<- *models.MLatestData
	isRunning  atomic.Bool
	mu         sync.Mutex
}

// -----------------------------------------------------------------------------

func NewWatchlistRefresher(cfg models.MWatchlistConfig, source interfaces.ISeriesSource, log *logger.Logger) *WatchlistRefresher {
	r := &WatchlistRefresher{
		Config:   cfg,
		Source:   source,
		Calendar: utils.GetCalendar(cfg.Calendar),
		Logger:   log,
		interval: time.Duration(cfg.UpdateIntervalSeconds) * time.Second,
		now:      time.Now,
	}
	if r.interval <= 0 {
		r.interval = 15 * time.Minute
	}
	r.series.Store(models.NewSeriesRequest(cfg.Series))
	return r
}

// -----------------------------------------------------------------------------

// Series returns the watched identifiers.
func (r *WatchlistRefresher) Series() []string {
	return r.series.Load().([]string)
}

// UpdateSeries swaps the watched identifiers; the next tick uses them.
func (r *WatchlistRefresher) UpdateSeries(series []string) {
	clean := models.NewSeriesRequest(series)
	r.series.Store(clean)
	r.Logger.Info("Updated watchlist. New count: %d", len(clean))
}

// Interval is the time between two refreshes.
func (r *WatchlistRefresher) Interval() time.Duration {
	return r.interval
}

// -----------------------------------------------------------------------------

// ShouldRefresh reports whether a refresh is due on the day of t.
func (r *WatchlistRefresher) ShouldRefresh(t time.Time) bool {
	if !r.Config.BusinessDaysOnly {
		return true
	}
	return r.Calendar.IsBusinessDay(t)
}

// -----------------------------------------------------------------------------

// Refresh fetches the watchlist once and builds a snapshot.
func (r *WatchlistRefresher) Refresh(ctx context.Context) (*models.MLatestData, error) {
	series := r.Series()
	start := time.Now()

	results, err := r.Source.FetchSeries(ctx, series)
	if err != nil {
		return nil, err
	}

	return &models.MLatestData{
		Type:      "UPDATE",
		Results:   results,
		Changes:   analysis.ComputeChanges(results),
		Timestamp: r.now().Unix(),
		Metrics: models.MProcessingMetrics{
			FetchTimeSeconds: time.Since(start).Seconds(),
			SeriesRequested:  results.Len(),
			SeriesFailed:     results.Failed(),
		},
	}, nil
}

// -----------------------------------------------------------------------------

// Start begins the refresh loop
func (r *WatchlistRefresher) Start(parentCtx context.Context, outputChan chan<- *models.MLatestData, wg *sync.WaitGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isRunning.Load() {
		return fmt.Errorf("watchlist refresher is already running")
	}

	// Derive a context so we can stop just this loop via Stop()
	ctx, cancel := context.WithCancel(parentCtx)
	r.cancelFunc = cancel
	r.outputChan = outputChan
	r.isRunning.Store(true)

	wg.Add(1)
	go r.runLoop(ctx, wg)
	r.Logger.Info("Started watchlist refresher (%d series every %v)", len(r.Series()), r.interval)
	return nil
}

// -----------------------------------------------------------------------------

// Stop signals the run loop to exit
func (r *WatchlistRefresher) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isRunning.Load() {
		return fmt.Errorf("watchlist refresher is not running")
	}

	if r.cancelFunc != nil {
		r.cancelFunc()
	}
	r.isRunning.Store(false)
	r.Logger.Info("Stopped watchlist refresher")
	return nil
}

// -----------------------------------------------------------------------------

// push sends a snapshot to the consumer unless the loop is stopping
func (r *WatchlistRefresher) push(ctx context.Context, snapshot *models.MLatestData) error {
	select {
	case r.outputChan <- snapshot:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// -----------------------------------------------------------------------------

func (r *WatchlistRefresher) tick(ctx context.Context) error {
	if !r.ShouldRefresh(r.now()) {
		r.Logger.Debug("Not a business day, skipping refresh")
		return nil
	}

	snapshot, err := r.Refresh(ctx)
	if err != nil {
		r.Logger.Error("Watchlist refresh failed: %v", err)
		return nil
	}
	return r.push(ctx, snapshot)
}

// -----------------------------------------------------------------------------

// runLoop refreshes once immediately, then on every tick
func (r *WatchlistRefresher) runLoop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	if err := r.tick(ctx); err != nil {
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.tick(ctx); err != nil {
				return // Stop if push failed (context cancelled)
			}
		}
	}
}
