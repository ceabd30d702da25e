package interfaces

import "series-proxy/src/models"

// -----------------------------------------------------------------------------
// IDatabase defines the contract for fetch log storage.
// -----------------------------------------------------------------------------

type IDatabase interface {

	// -----------------------------------------------------------------------------

	// Initialize opens the connection and creates the schema.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveFetchRecords inserts a batch of fetch outcomes.
	SaveFetchRecords(records []models.MFetchRecord) error

	// -----------------------------------------------------------------------------

	// RecentFetches returns the newest records for a series, newest first.
	RecentFetches(seriesID string, limit int) ([]models.MFetchRecord, error)

	// -----------------------------------------------------------------------------

	// CleanupOldData removes data older than the retention policy.
	CleanupOldData() error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
