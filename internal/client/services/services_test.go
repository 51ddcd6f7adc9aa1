package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/sultan0alshami/wathiq-sub001/internal/client/client"
	"github.com/sultan0alshami/wathiq-sub001/internal/client/models"
	"github.com/sultan0alshami/wathiq-sub001/internal/client/queue"
	"github.com/sultan0alshami/wathiq-sub001/internal/client/repositories/metadata"
	"github.com/sultan0alshami/wathiq-sub001/internal/logging"

	_ "modernc.org/sqlite"
)

func setupMetadata(t *testing.T) *metadata.SQLiteRepository {
	t.Helper()
	db, err := sql.Open("sqlite", fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL, updated_at TEXT NOT NULL DEFAULT '')`)
	require.NoError(t, err)
	return metadata.NewSQLiteRepository(db)
}

// countingStorage counts writes reaching the metadata table.
type countingStorage struct {
	*metadata.SQLiteRepository
	mu   sync.Mutex
	sets int
}

func (c *countingStorage) Set(ctx context.Context, key string, value []byte) error {
	c.mu.Lock()
	c.sets++
	c.mu.Unlock()
	return c.SQLiteRepository.Set(ctx, key, value)
}

func (c *countingStorage) writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets
}

// fakeClient fails the ids listed in failures with the mapped error.
type fakeClient struct {
	client.TripClient

	mu       sync.Mutex
	calls    []string
	failures map[string]error
	before   func(rec models.OfflineTripRecord)
	token    string
	pingErr  error
}

func (f *fakeClient) SyncTrip(_ context.Context, rec models.OfflineTripRecord) (*models.TripSyncResponse, error) {
	if f.before != nil {
		f.before(rec)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, rec.ID)
	if err, ok := f.failures[rec.ID]; ok {
		return nil, err
	}
	return &models.TripSyncResponse{Success: true, TripID: rec.ID, PhotosUploaded: len(rec.Attachments)}, nil
}

func (f *fakeClient) Ping(context.Context) error { return f.pingErr }

func (f *fakeClient) SetAccessToken(token string) { f.token = token }

func (f *fakeClient) callIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fixture struct {
	storage *countingStorage
	store   *queue.Store
	client  *fakeClient
	sync    *syncService
	trips   *tripService
}

var fixedNow = time.Date(2026, 4, 2, 12, 30, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	storage := &countingStorage{SQLiteRepository: setupMetadata(t)}
	store := queue.NewStore(storage, logging.Discard())
	fc := &fakeClient{failures: map[string]error{}}

	ss := newSyncService(fc, store, logging.Discard())
	ss.now = func() time.Time { return fixedNow }

	ts := newTripService(ss, store, logging.Discard())
	ts.now = func() time.Time { return fixedNow }

	return &fixture{storage: storage, store: store, client: fc, sync: ss, trips: ts}
}

func record(id string) models.OfflineTripRecord {
	return models.NewOfflineRecord(models.TripReportInput{ID: id, BookingID: "BK-" + id, Date: "2026-04-02"}, nil, fixedNow)
}

func ids(q []models.OfflineTripRecord) []string {
	out := make([]string, 0, len(q))
	for _, r := range q {
		out = append(out, r.ID)
	}
	return out
}

type progressEvent struct {
	id     string
	status models.SyncStatus
	err    string
}

func recorder() (*[]progressEvent, ProgressFunc) {
	var events []progressEvent
	return &events, func(rec models.OfflineTripRecord, status models.SyncStatus, errMsg string) {
		events = append(events, progressEvent{id: rec.ID, status: status, err: errMsg})
	}
}
