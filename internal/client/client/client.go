package client

import (
	"context"

	"github.com/sultan0alshami/wathiq-sub001/internal/client/models"
)

// TripClient is the transport contract of the remote sync endpoint.
type TripClient interface {
	// SyncTrip delivers one queued record in a single request. It never retries.
	SyncTrip(ctx context.Context, rec models.OfflineTripRecord) (*models.TripSyncResponse, error)
	// Ping reports whether the server is reachable.
	Ping(ctx context.Context) error
	// SetAccessToken sets the bearer token sent with later requests.
	SetAccessToken(token string)
}
