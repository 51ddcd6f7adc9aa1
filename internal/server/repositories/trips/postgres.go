package trips

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sultan0alshami/wathiq-sub001/internal/common"
	"github.com/sultan0alshami/wathiq-sub001/internal/dbx"
	"github.com/sultan0alshami/wathiq-sub001/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const tripColumns = `id, booking_id, day_date::text, source_ref, booking_source, supplier,
	client_name, driver_name, car_type, parking_location, pickup_point, dropoff_point,
	supervisor_name, supervisor_rating, supervisor_notes, passenger_feedback,
	checklist, status, sync_source, created_by, created_at`

// UpsertTrip writes the report by id. A replayed report overwrites the
// stored fields but keeps the original created_at.
func (r *PostgresRepository) UpsertTrip(ctx context.Context, t *models.TripReport) error {
	checklist, err := json.Marshal(t.Checklist)
	if err != nil {
		return fmt.Errorf("encode checklist: %w", err)
	}

	query := `
		INSERT INTO trip_reports (id, booking_id, day_date, source_ref, booking_source, supplier,
			client_name, driver_name, car_type, parking_location, pickup_point, dropoff_point,
			supervisor_name, supervisor_rating, supervisor_notes, passenger_feedback,
			checklist, status, sync_source, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (id)
		DO UPDATE SET
			booking_id = EXCLUDED.booking_id,
			day_date = EXCLUDED.day_date,
			source_ref = EXCLUDED.source_ref,
			booking_source = EXCLUDED.booking_source,
			supplier = EXCLUDED.supplier,
			client_name = EXCLUDED.client_name,
			driver_name = EXCLUDED.driver_name,
			car_type = EXCLUDED.car_type,
			parking_location = EXCLUDED.parking_location,
			pickup_point = EXCLUDED.pickup_point,
			dropoff_point = EXCLUDED.dropoff_point,
			supervisor_name = EXCLUDED.supervisor_name,
			supervisor_rating = EXCLUDED.supervisor_rating,
			supervisor_notes = EXCLUDED.supervisor_notes,
			passenger_feedback = EXCLUDED.passenger_feedback,
			checklist = EXCLUDED.checklist,
			status = EXCLUDED.status,
			sync_source = EXCLUDED.sync_source,
			created_by = EXCLUDED.created_by,
			updated_at = now();
	`
	_, err = r.db.ExecContext(ctx, query,
		t.ID, t.BookingID, t.Date, t.SourceRef, t.BookingSource, t.Supplier,
		t.ClientName, t.DriverName, t.CarType, t.ParkingLocation, t.PickupPoint, t.DropoffPoint,
		t.SupervisorName, t.SupervisorRating, t.SupervisorNotes, t.PassengerFeedback,
		string(checklist), t.Status, t.SyncSource, t.CreatedBy)
	if err != nil {
		return fmt.Errorf("upsert trip: %w", err)
	}
	return nil
}

func (r *PostgresRepository) InsertPhoto(ctx context.Context, p *models.TripPhoto) (bool, error) {
	query := `
		INSERT INTO trip_photos (id, trip_id, storage_path, file_name, file_size, mime_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (trip_id, storage_path) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, p.ID, p.TripID, p.StoragePath, p.FileName, p.FileSize, p.MimeType)
	if err != nil {
		return false, fmt.Errorf("insert photo: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) PhotosByTrip(ctx context.Context, tripID string) ([]models.TripPhoto, error) {
	query := `SELECT id, trip_id, storage_path, file_name, file_size, mime_type FROM trip_photos
		WHERE trip_id = $1 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to select photos: %w", err)
	}
	defer rows.Close()

	return scanPhotos(rows)
}

func (r *PostgresRepository) ListByDate(ctx context.Context, date string) ([]*models.TripReport, error) {
	query := `SELECT ` + tripColumns + ` FROM trip_reports
		WHERE day_date = $1 ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to select trips: %w", err)
	}
	defer rows.Close()

	var result []*models.TripReport
	byID := make(map[string]*models.TripReport)
	for rows.Next() {
		var (
			t         models.TripReport
			checklist []byte
		)
		err := rows.Scan(&t.ID, &t.BookingID, &t.Date, &t.SourceRef, &t.BookingSource, &t.Supplier,
			&t.ClientName, &t.DriverName, &t.CarType, &t.ParkingLocation, &t.PickupPoint, &t.DropoffPoint,
			&t.SupervisorName, &t.SupervisorRating, &t.SupervisorNotes, &t.PassengerFeedback,
			&checklist, &t.Status, &t.SyncSource, &t.CreatedBy, &t.CreatedAt)
		if err != nil {
			return nil, err
		}

		var stored map[string]string
		if len(checklist) > 0 {
			if err := json.Unmarshal(checklist, &stored); err != nil {
				return nil, fmt.Errorf("decode checklist of %s: %w", t.ID, err)
			}
		}
		t.Checklist = models.MergeChecklist(stored)
		t.Photos = []models.TripPhoto{}

		result = append(result, &t)
		byID[t.ID] = &t
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return result, nil
	}

	photoQuery := `SELECT p.id, p.trip_id, p.storage_path, p.file_name, p.file_size, p.mime_type
		FROM trip_photos p JOIN trip_reports t ON t.id = p.trip_id
		WHERE t.day_date = $1 ORDER BY p.created_at, p.id`

	prows, err := r.db.QueryContext(ctx, photoQuery, date)
	if err != nil {
		return nil, fmt.Errorf("failed to select photos: %w", err)
	}
	defer prows.Close()

	photos, err := scanPhotos(prows)
	if err != nil {
		return nil, err
	}
	for _, p := range photos {
		if t, ok := byID[p.TripID]; ok {
			t.Photos = append(t.Photos, p)
		}
	}
	return result, nil
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) ([]string, error) {
	return r.deleteWhere(ctx, "id", id)
}

func (r *PostgresRepository) DeleteByBookingID(ctx context.Context, bookingID string) ([]string, error) {
	return r.deleteWhere(ctx, "booking_id", bookingID)
}

// deleteWhere removes matching reports; photo rows go with them through
// ON DELETE CASCADE. The photo paths are read from the same snapshot.
func (r *PostgresRepository) deleteWhere(ctx context.Context, column, value string) ([]string, error) {
	query := `
		WITH deleted AS (DELETE FROM trip_reports WHERE ` + column + ` = $1 RETURNING id)
		SELECT d.id, p.storage_path FROM deleted d LEFT JOIN trip_photos p ON p.trip_id = d.id
	`
	rows, err := r.db.QueryContext(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("failed to delete trip: %w", err)
	}
	defer rows.Close()

	deleted := 0
	paths := []string{}
	for rows.Next() {
		var (
			id   string
			path sql.NullString
		)
		if err := rows.Scan(&id, &path); err != nil {
			return nil, err
		}
		deleted++
		if path.Valid {
			paths = append(paths, path.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if deleted == 0 {
		return nil, common.ErrNotFound
	}
	return paths, nil
}

func scanPhotos(rows *sql.Rows) ([]models.TripPhoto, error) {
	result := []models.TripPhoto{}
	for rows.Next() {
		var p models.TripPhoto
		if err := rows.Scan(&p.ID, &p.TripID, &p.StoragePath, &p.FileName, &p.FileSize, &p.MimeType); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
