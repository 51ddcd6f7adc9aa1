// Package services implements the trip server's use cases on top of the
// repositories and photo storage.
package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/sultan0alshami/wathiq-sub001/internal/common"
	"github.com/sultan0alshami/wathiq-sub001/internal/dbx"
	sc "github.com/sultan0alshami/wathiq-sub001/internal/server/config"
	"github.com/sultan0alshami/wathiq-sub001/internal/server/models"
	"github.com/sultan0alshami/wathiq-sub001/internal/server/repositories/repomanager"
	"github.com/sultan0alshami/wathiq-sub001/internal/server/storage"
	"github.com/sultan0alshami/wathiq-sub001/internal/logging"
)

// photoURLTTL bounds the presigned links handed out with trip listings.
const photoURLTTL = 15 * time.Minute

type TripService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	photos        storage.PhotoStore
	validate      *validator.Validate
	maxPhotoBytes int64
	logger        logging.Logger
	newID         func() string
}

func NewTripService(db *sql.DB, rm repomanager.RepositoryManager, photos storage.PhotoStore, config *sc.Config, logger logging.Logger) *TripService {
	return &TripService{
		db:            db,
		repomanager:   rm,
		photos:        photos,
		validate:      newValidator(),
		maxPhotoBytes: config.MaxPhotoBytes,
		logger:        logger.With("module", "trips"),
		newID:         uuid.NewString,
	}
}

type decodedPhoto struct {
	payload models.PhotoPayload
	data    []byte
}

// Sync stores one trip report and its photos. Replays are safe: photos land
// on content-addressed keys, the report is upserted by id and duplicate
// photo rows are skipped.
//
// userID comes from the bearer token and fills createdBy when the report
// leaves it empty.
func (s *TripService) Sync(ctx context.Context, req *models.TripSyncRequest, userID string) (*models.TripSyncResponse, error) {
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return nil, describe(err)
	}

	decoded, err := s.decodePhotos(req.Attachments)
	if err != nil {
		return nil, err
	}

	trip := models.FromPayload(req.Trip)
	if trip.CreatedBy == "" {
		trip.CreatedBy = userID
	}

	// Uploads happen before the transaction; a failed commit leaves objects
	// that the client's retry overwrites.
	rows := make([]models.TripPhoto, 0, len(decoded))
	for _, p := range decoded {
		key := storage.PhotoKey(trip.ID, p.payload.Name, p.data)
		if err := s.photos.Put(ctx, key, p.data, p.payload.MimeType); err != nil {
			s.logger.Error(ctx, "photo upload failed", "trip_id", trip.ID, "key", key, "error", err)
			return nil, fmt.Errorf("upload photo %s: %w", p.payload.Name, err)
		}
		rows = append(rows, models.TripPhoto{
			ID:          s.newID(),
			TripID:      trip.ID,
			StoragePath: key,
			FileName:    p.payload.Name,
			FileSize:    int64(len(p.data)),
			MimeType:    p.payload.MimeType,
		})
	}

	inserted := 0
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Trips(tx)
		if err := repo.UpsertTrip(ctx, trip); err != nil {
			return err
		}
		for i := range rows {
			ok, err := repo.InsertPhoto(ctx, &rows[i])
			if err != nil {
				return err
			}
			if ok {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error(ctx, "trip store failed", "trip_id", trip.ID, "error", err)
		return nil, fmt.Errorf("store trip %s: %w", trip.ID, err)
	}

	s.logger.Info(ctx, "trip stored", "trip_id", trip.ID, "booking_id", trip.BookingID,
		"photos", len(rows), "new_photos", inserted, "source", trip.SyncSource)

	resp := &models.TripSyncResponse{Success: true, TripID: trip.ID, PhotosUploaded: len(rows), Photos: rows}
	for i := range resp.Photos {
		resp.Photos[i].ID = ""
	}
	return resp, nil
}

func (s *TripService) decodePhotos(in []models.PhotoPayload) ([]decodedPhoto, error) {
	out := make([]decodedPhoto, 0, len(in))
	verr := &ValidationError{}
	for i, p := range in {
		data, err := decodeBase64(p.Base64)
		if err != nil {
			verr.Problems = append(verr.Problems, fmt.Sprintf("attachments[%d].base64 is not valid base64", i))
			continue
		}
		if len(data) == 0 {
			verr.Problems = append(verr.Problems, fmt.Sprintf("attachments[%d] is empty", i))
			continue
		}
		if s.maxPhotoBytes > 0 && int64(len(data)) > s.maxPhotoBytes {
			verr.Problems = append(verr.Problems,
				fmt.Sprintf("attachments[%d] is %d bytes, limit is %d", i, len(data), s.maxPhotoBytes))
			continue
		}
		out = append(out, decodedPhoto{payload: p, data: data})
	}
	if len(verr.Problems) > 0 {
		return nil, verr
	}
	return out, nil
}

// decodeBase64 accepts plain base64 as well as data URLs
// ("data:image/jpeg;base64,....").
func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		i := strings.Index(s, ",")
		if i < 0 {
			return nil, fmt.Errorf("malformed data url")
		}
		s = s[i+1:]
	}
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}

// List returns the reports of date (YYYY-MM-DD), newest first, with
// short-lived photo links.
func (s *TripService) List(ctx context.Context, date string) ([]*models.TripReport, error) {
	if _, err := time.Parse(common.DateLayout, date); err != nil {
		return nil, &ValidationError{Problems: []string{"date must be a YYYY-MM-DD date"}}
	}

	trips, err := s.repomanager.Trips(s.db).ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}

	for _, t := range trips {
		for i := range t.Photos {
			url, err := s.photos.PresignGet(ctx, t.Photos[i].StoragePath, photoURLTTL)
			if err != nil {
				s.logger.Warn(ctx, "presign failed", "key", t.Photos[i].StoragePath, "error", err)
				continue
			}
			t.Photos[i].URL = url
		}
	}
	return trips, nil
}

// Delete removes a report by id. It returns common.ErrNotFound when no
// such report exists.
func (s *TripService) Delete(ctx context.Context, id string) error {
	paths, err := s.repomanager.Trips(s.db).DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "trip deleted", "trip_id", id, "photos", len(paths))
	s.purgePhotos(ctx, paths)
	return nil
}

// DeleteByBooking removes every report of a booking.
func (s *TripService) DeleteByBooking(ctx context.Context, bookingID string) error {
	paths, err := s.repomanager.Trips(s.db).DeleteByBookingID(ctx, bookingID)
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "trips deleted by booking", "booking_id", bookingID, "photos", len(paths))
	s.purgePhotos(ctx, paths)
	return nil
}

// purgePhotos is best effort: the rows are already gone, orphaned objects
// are only logged.
func (s *TripService) purgePhotos(ctx context.Context, paths []string) {
	if err := s.photos.Delete(ctx, paths...); err != nil {
		s.logger.Warn(ctx, "photo cleanup failed", "count", len(paths), "error", err)
	}
}
