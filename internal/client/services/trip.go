package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sultan0alshami/wathiq-sub001/internal/client/models"
	"github.com/sultan0alshami/wathiq-sub001/internal/common"
	"github.com/sultan0alshami/wathiq-sub001/internal/logging"
)

// SubmitOutcome tells where a submitted report ended up.
type SubmitOutcome string

const (
	OutcomeSynced SubmitOutcome = "synced"
	OutcomeQueued SubmitOutcome = "queued"
	OutcomeFailed SubmitOutcome = "failed"
)

// SubmitResult describes one submission.
type SubmitResult struct {
	Outcome  SubmitOutcome
	Record   models.OfflineTripRecord
	Response *models.TripSyncResponse
	Error    string
}

// TripService is the entry point for new trip reports.
type TripService interface {
	Submit(ctx context.Context, input models.TripReportInput, attachments []models.TripPhotoAttachment, online bool) (SubmitResult, error)
	Queue(ctx context.Context) []models.OfflineTripRecord
	Remove(ctx context.Context, id string) []models.OfflineTripRecord
}

type tripService struct {
	sync   SyncService
	store  QueueStore
	logger logging.Logger
	now    func() time.Time
}

func NewTripService(sync SyncService, store QueueStore, logger logging.Logger) TripService {
	return newTripService(sync, store, logger)
}

func newTripService(sync SyncService, store QueueStore, logger logging.Logger) *tripService {
	return &tripService{sync: sync, store: store, logger: logger.With("module", "trips"), now: time.Now}
}

// Submit validates and normalises the report, then either queues it
// (offline) or sends it straight away (online). A failed direct send is
// queued as failed so the next sync run retries it.
func (s *tripService) Submit(ctx context.Context, input models.TripReportInput, attachments []models.TripPhotoAttachment, online bool) (SubmitResult, error) {
	input, err := normalize(input, attachments)
	if err != nil {
		return SubmitResult{}, err
	}

	if online {
		input.SyncSource = models.SyncSourceWeb
		input.Offline = false
	} else {
		input.SyncSource = models.SyncSourceOffline
		input.Offline = true
	}

	rec := models.NewOfflineRecord(input, attachments, s.now())

	if !online {
		s.store.Upsert(ctx, rec)
		s.logger.Info(ctx, "trip queued", "trip_id", rec.ID)
		return SubmitResult{Outcome: OutcomeQueued, Record: rec}, nil
	}

	resp, err := s.sync.SyncRecord(ctx, rec)
	if err != nil {
		failed := rec.Failed(err.Error(), s.now())
		s.store.Upsert(ctx, failed)
		s.logger.Warn(ctx, "trip send failed, queued for retry", "trip_id", rec.ID, "error", failed.Error)
		return SubmitResult{Outcome: OutcomeFailed, Record: failed, Error: failed.Error}, nil
	}

	s.store.Remove(ctx, rec.ID)
	s.logger.Info(ctx, "trip sent", "trip_id", rec.ID, "photos", resp.PhotosUploaded)
	return SubmitResult{Outcome: OutcomeSynced, Record: rec.Synced(), Response: resp}, nil
}

func (s *tripService) Queue(ctx context.Context) []models.OfflineTripRecord {
	return s.store.Load(ctx)
}

func (s *tripService) Remove(ctx context.Context, id string) []models.OfflineTripRecord {
	return s.store.Remove(ctx, id)
}

func normalize(in models.TripReportInput, attachments []models.TripPhotoAttachment) (models.TripReportInput, error) {
	var errs []error

	in.BookingID = strings.TrimSpace(in.BookingID)
	in.Date = strings.TrimSpace(in.Date)
	if in.ID == "" {
		in.ID = uuid.NewString()
	}

	if in.BookingID == "" {
		errs = append(errs, errors.New("bookingId is required"))
	}
	if in.Date == "" {
		errs = append(errs, errors.New("date is required"))
	} else if _, err := time.Parse(common.DateLayout, in.Date); err != nil {
		errs = append(errs, fmt.Errorf("date %q is not YYYY-MM-DD", in.Date))
	}
	if in.SupervisorRating < 0 || in.SupervisorRating > 5 {
		errs = append(errs, fmt.Errorf("supervisorRating %d is outside 0..5", in.SupervisorRating))
	}
	for k, v := range in.Checklist {
		if !v.Valid() {
			errs = append(errs, fmt.Errorf("checklist %s has unknown rating %q", k, v))
		}
	}
	if in.Status != "" && in.Status != models.TripApproved && in.Status != models.TripWarning {
		errs = append(errs, fmt.Errorf("status %q must be approved or warning", in.Status))
	}
	if len(attachments) > models.MaxPhotos {
		errs = append(errs, fmt.Errorf("at most %d photos per trip, got %d", models.MaxPhotos, len(attachments)))
	}
	if len(errs) > 0 {
		return in, fmt.Errorf("%w: %w", common.ErrValidation, errors.Join(errs...))
	}

	in.Checklist = in.Checklist.WithDefaults()
	if in.Status == "" {
		in.Status = models.DeriveStatus(in.Checklist, in.SupervisorRating)
	}
	return in, nil
}
