package interfaces

import (
	"context"
	"sync"

	"series-proxy/src/models"
)

// -----------------------------------------------------------------------------
// ISeriesSource fetches named time series from an upstream API.
// -----------------------------------------------------------------------------

type ISeriesSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchSeries returns one result per distinct identifier, in request order.
	// Upstream failures are reported inside the map; the error is reserved for
	// an empty request or a missing credential.
	FetchSeries(ctx context.Context, ids []string) (*models.MResultMap, error)
}

// -----------------------------------------------------------------------------
// IRefresher periodically pulls a fixed set of series.
// -----------------------------------------------------------------------------

type IRefresher interface {

	// Start begins the refresh loop
	// ctx: controls the lifecycle (cancellation stops the loop)
	// outputChan: channel to push snapshots to
	// wg: WaitGroup to signal when the loop has fully stopped
	Start(ctx context.Context, outputChan chan<- *models.MLatestData, wg *sync.WaitGroup) error

	// -----------------------------------------------------------------------------

	// Stop terminates the refresh loop.
	Stop() error
}
