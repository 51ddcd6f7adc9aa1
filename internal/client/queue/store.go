// Package queue is the durable, ordered offline queue of trip submissions.
//
// The whole queue lives as one JSON array under a single storage key. Every
// mutating call reloads, modifies and rewrites the full array while holding
// the store mutex, so callers never observe a partially applied change.
// Storage failures never escape: unreadable content loads as an empty queue
// and failed writes are logged and counted.
package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/sultan0alshami/wathiq-sub001/internal/client/models"
	"github.com/sultan0alshami/wathiq-sub001/internal/client/repositories/metadata"
	"github.com/sultan0alshami/wathiq-sub001/internal/logging"
)

// Storage is the byte-oriented key/value backend the queue persists into.
// metadata.Repository satisfies it.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Store owns the queue key. No other component reads or writes it.
type Store struct {
	storage Storage
	key     string
	logger  logging.Logger

	mu            sync.Mutex
	writeFailures atomic.Int64
}

func NewStore(storage Storage, logger logging.Logger) *Store {
	return &Store{
		storage: storage,
		key:     metadata.KeyTripsQueue,
		logger:  logger.With("module", "queue", "key", metadata.KeyTripsQueue),
	}
}

// Load returns the persisted queue, or an empty one when nothing usable is
// stored.
func (s *Store) Load(ctx context.Context) []models.OfflineTripRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Save replaces the persisted queue with q.
func (s *Store) Save(ctx context.Context, q []models.OfflineTripRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.save(ctx, q)
}

// Enqueue appends rec and returns the new snapshot. A record whose id is
// already queued replaces the earlier entry in place.
func (s *Store) Enqueue(ctx context.Context, rec models.OfflineTripRecord) []models.OfflineTripRecord {
	return s.Upsert(ctx, rec)
}

// Remove drops the record with the given id and returns the new snapshot.
func (s *Store) Remove(ctx context.Context, id string) []models.OfflineTripRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := slices.DeleteFunc(s.load(ctx), func(r models.OfflineTripRecord) bool {
		return r.ID == id
	})
	s.save(ctx, q)
	return slices.Clone(q)
}

// Upsert replaces the record with rec.ID if present, else appends it.
func (s *Store) Upsert(ctx context.Context, rec models.OfflineTripRecord) []models.OfflineTripRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.load(ctx)
	if i := indexOf(q, rec.ID); i >= 0 {
		q[i] = rec
	} else {
		q = append(q, rec)
	}
	s.save(ctx, q)
	return slices.Clone(q)
}

// Get returns the queued record with the given id.
func (s *Store) Get(ctx context.Context, id string) (models.OfflineTripRecord, bool) {
	q := s.Load(ctx)
	if i := indexOf(q, id); i >= 0 {
		return q[i], true
	}
	return models.OfflineTripRecord{}, false
}

// Len returns the number of queued records.
func (s *Store) Len(ctx context.Context) int {
	return len(s.Load(ctx))
}

// Commit writes the outcome of a sync run in one full replacement.
//
// attempted is the snapshot the run started from and retained holds the
// failed copies that still need delivery. The stored queue is walked in
// order: records queued after the snapshot was taken, and records that were
// re-submitted under an attempted id while the run was in flight, are kept
// as stored. An attempted record that is unchanged is replaced by its
// retained copy, or dropped when it was delivered. Records removed during
// the run stay removed.
func (s *Store) Commit(ctx context.Context, attempted, retained []models.OfflineTripRecord) []models.OfflineTripRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read(ctx)
	if err != nil {
		s.logger.Warn(ctx, "failed to read offline queue before commit", "error", err)
		s.save(ctx, retained)
		return slices.Clone(retained)
	}

	before := make(map[string]models.OfflineTripRecord, len(attempted))
	for _, r := range attempted {
		before[r.ID] = r
	}
	after := make(map[string]models.OfflineTripRecord, len(retained))
	for _, r := range retained {
		after[r.ID] = r
	}

	next := make([]models.OfflineTripRecord, 0, len(current))
	for _, r := range current {
		old, ok := before[r.ID]
		if !ok || !sameVersion(old, r) {
			next = append(next, r)
			continue
		}
		if failed, ok := after[r.ID]; ok {
			next = append(next, failed)
		}
	}

	s.save(ctx, next)
	return slices.Clone(next)
}

// WriteFailures reports how many persist attempts have failed so far.
func (s *Store) WriteFailures() int64 {
	return s.writeFailures.Load()
}

func (s *Store) load(ctx context.Context) []models.OfflineTripRecord {
	q, err := s.read(ctx)
	if err != nil {
		s.logger.Warn(ctx, "failed to read offline queue", "error", err)
		return []models.OfflineTripRecord{}
	}
	return q
}

// read returns the stored queue. Content that does not parse is logged and
// treated as an empty queue; only storage errors are returned.
func (s *Store) read(ctx context.Context) ([]models.OfflineTripRecord, error) {
	raw, err := s.storage.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return []models.OfflineTripRecord{}, nil
	}

	var q []models.OfflineTripRecord
	if err := json.Unmarshal(raw, &q); err != nil {
		s.logger.Warn(ctx, "failed to parse offline queue", "error", err, "bytes", len(raw))
		return []models.OfflineTripRecord{}, nil
	}
	if q == nil {
		q = []models.OfflineTripRecord{}
	}
	return q, nil
}

func (s *Store) save(ctx context.Context, q []models.OfflineTripRecord) {
	if q == nil {
		q = []models.OfflineTripRecord{}
	}
	data, err := json.Marshal(q)
	if err != nil {
		s.writeFailures.Add(1)
		s.logger.Error(ctx, "failed to encode offline queue", "error", err, "records", len(q))
		return
	}
	if err := s.storage.Set(ctx, s.key, data); err != nil {
		n := s.writeFailures.Add(1)
		s.logger.Error(ctx, "failed to persist offline queue", "error", err, "records", len(q), "write_failures", n)
	}
}

func indexOf(q []models.OfflineTripRecord, id string) int {
	return slices.IndexFunc(q, func(r models.OfflineTripRecord) bool {
		return r.ID == id
	})
}

// sameVersion reports whether a and b encode identically. Timestamps alone
// cannot tell a re-submission apart from the original.
func sameVersion(a, b models.OfflineTripRecord) bool {
	x, errA := json.Marshal(a)
	y, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(x, y)
}
