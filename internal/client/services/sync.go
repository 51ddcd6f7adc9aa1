package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sultan0alshami/wathiq-sub001/internal/client/client"
	"github.com/sultan0alshami/wathiq-sub001/internal/client/models"
	"github.com/sultan0alshami/wathiq-sub001/internal/common"
	"github.com/sultan0alshami/wathiq-sub001/internal/logging"
)

// QueueStore is the part of queue.Store the services rely on.
type QueueStore interface {
	Load(ctx context.Context) []models.OfflineTripRecord
	Upsert(ctx context.Context, rec models.OfflineTripRecord) []models.OfflineTripRecord
	Remove(ctx context.Context, id string) []models.OfflineTripRecord
	Commit(ctx context.Context, attempted, retained []models.OfflineTripRecord) []models.OfflineTripRecord
}

// ProgressFunc is called once per processed record, in processing order.
// rec is a copy carrying the outcome: Synced() for delivered records, which
// are dropped from the queue, and the retained Failed() copy otherwise.
// errMsg is empty for synced records.
type ProgressFunc func(rec models.OfflineTripRecord, status models.SyncStatus, errMsg string)

// SyncResult counts the outcomes of one queue run.
type SyncResult struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// SyncService delivers queued trip reports to the remote endpoint.
type SyncService interface {
	SyncRecord(ctx context.Context, rec models.OfflineTripRecord) (*models.TripSyncResponse, error)
	SyncQueue(ctx context.Context, onProgress ProgressFunc) (SyncResult, error)
}

type syncService struct {
	client  client.TripClient
	store   QueueStore
	logger  logging.Logger
	now     func() time.Time
	running atomic.Bool
}

func NewSyncService(c client.TripClient, store QueueStore, logger logging.Logger) SyncService {
	return newSyncService(c, store, logger)
}

func newSyncService(c client.TripClient, store QueueStore, logger logging.Logger) *syncService {
	return &syncService{
		client: c,
		store:  store,
		logger: logger.With("module", "sync"),
		now:    time.Now,
	}
}

func (s *syncService) SyncRecord(ctx context.Context, rec models.OfflineTripRecord) (*models.TripSyncResponse, error) {
	return s.client.SyncTrip(ctx, rec)
}

// SyncQueue drains one snapshot of the queue, strictly sequentially.
//
// Per-record failures are reported through onProgress and kept in the queue
// with their error; they are never returned. The only error is
// common.ErrSyncInProgress when another run has not finished yet.
func (s *syncService) SyncQueue(ctx context.Context, onProgress ProgressFunc) (SyncResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return SyncResult{}, common.ErrSyncInProgress
	}
	defer s.running.Store(false)

	var result SyncResult

	snapshot := s.store.Load(ctx)
	if len(snapshot) == 0 {
		return result, nil
	}

	s.logger.Info(ctx, "sync started", "records", len(snapshot))

	retained := make([]models.OfflineTripRecord, 0)
	for _, rec := range snapshot {
		resp, err := s.SyncRecord(ctx, rec)
		if err == nil {
			result.Success++
			photos := 0
			if resp != nil {
				photos = resp.PhotosUploaded
			}
			s.logger.Debug(ctx, "trip synced", "trip_id", rec.ID, "photos", photos)
			if onProgress != nil {
				onProgress(rec.Synced(), models.StatusSynced, "")
			}
			continue
		}

		result.Failed++
		failed := rec.Failed(err.Error(), s.now())
		s.logger.Warn(ctx, "trip sync failed", "trip_id", rec.ID, "error", failed.Error)
		if onProgress != nil {
			onProgress(failed, models.StatusFailed, failed.Error)
		}
		retained = append(retained, failed)
	}

	// The outcome is already known; a cancelled ctx must not lose it.
	s.store.Commit(context.WithoutCancel(ctx), snapshot, retained)

	s.logger.Info(ctx, "sync finished", "success", result.Success, "failed", result.Failed)
	return result, nil
}
