package interfaces

import "series-proxy/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger shares watchlist snapshots with external systems (Server/Push).
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Broadcast pushes a snapshot to websocket listeners and stores it.
	Broadcast(snapshot *models.MLatestData)

	// -----------------------------------------------------------------------------
	// UpdateLatest replaces the stored snapshot without broadcasting.
	UpdateLatest(snapshot *models.MLatestData)

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
