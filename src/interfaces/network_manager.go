package interfaces

import (
	"context"

	"series-proxy/src/models"
)

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for rate limited, time bounded HTTP calls.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// -----------------------------------------------------------------------------

	// Get performs a GET request to the specified URL with parameters.
	// Any HTTP status is returned as a response; only transport failures
	// (timeout, connection errors, unreadable body) are errors.
	Get(ctx context.Context, url string, params map[string]string) (*models.MUpstreamResponse, error)
}
