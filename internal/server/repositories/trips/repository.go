// Package trips persists trip reports and their photo rows.
package trips

import (
	"context"

	"github.com/sultan0alshami/wathiq-sub001/internal/server/models"
)

type Repository interface {
	// UpsertTrip inserts the report or overwrites the row with the same id.
	UpsertTrip(ctx context.Context, trip *models.TripReport) error
	// InsertPhoto adds a photo row. A row with the same (trip_id,
	// storage_path) is left untouched and reported as not inserted.
	InsertPhoto(ctx context.Context, photo *models.TripPhoto) (bool, error)
	PhotosByTrip(ctx context.Context, tripID string) ([]models.TripPhoto, error)
	// ListByDate returns the reports of one day, newest first, with photos.
	ListByDate(ctx context.Context, date string) ([]*models.TripReport, error)
	// DeleteByID and DeleteByBookingID return the storage paths of the
	// photos that went with the deleted rows, or common.ErrNotFound.
	DeleteByID(ctx context.Context, id string) ([]string, error)
	DeleteByBookingID(ctx context.Context, bookingID string) ([]string, error)
}
