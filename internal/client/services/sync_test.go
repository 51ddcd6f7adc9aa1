package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sultan0alshami/wathiq-sub001/internal/client/client"
	"github.com/sultan0alshami/wathiq-sub001/internal/client/models"
	"github.com/sultan0alshami/wathiq-sub001/internal/common"
)

func TestSyncQueue_ScenarioABC(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.store.Enqueue(ctx, record("A"))
	f.store.Enqueue(ctx, record("B"))
	f.store.Enqueue(ctx, record("C"))
	f.client.failures["B"] = errors.New("timeout")

	events, progress := recorder()
	res, err := f.sync.SyncQueue(ctx, progress)
	require.NoError(t, err)

	assert.Equal(t, SyncResult{Success: 2, Failed: 1}, res)
	assert.Equal(t, []string{"A", "B", "C"}, f.client.callIDs())
	assert.Equal(t, []progressEvent{
		{id: "A", status: models.StatusSynced},
		{id: "B", status: models.StatusFailed, err: "timeout"},
		{id: "C", status: models.StatusSynced},
	}, *events)

	q := f.store.Load(ctx)
	require.Len(t, q, 1)
	assert.Equal(t, "B", q[0].ID)
	assert.Equal(t, models.StatusFailed, q[0].Status)
	assert.Equal(t, "timeout", q[0].Error)
	require.NotNil(t, q[0].LastSyncAttempt)
	assert.Equal(t, fixedNow, *q[0].LastSyncAttempt)
}

func TestSyncQueue_IdempotentDrain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, id := range []string{"1", "2", "3", "4", "5"} {
		f.store.Enqueue(ctx, record(id))
	}

	res, err := f.sync.SyncQueue(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Success: 5}, res)
	assert.Empty(t, f.store.Load(ctx))

	// draining again is a no-op
	res, err = f.sync.SyncQueue(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{}, res)
	assert.Len(t, f.client.callIDs(), 5)
}

func TestSyncQueue_PartialFailureIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, id := range []string{"r0", "r1", "r2", "r3", "r4", "r5"} {
		f.store.Enqueue(ctx, record(id))
	}
	f.client.failures["r0"] = errors.New("boom")
	f.client.failures["r3"] = &client.SyncError{StatusCode: 400, Detail: "bookingId is required"}
	f.client.failures["r5"] = client.ErrUnavailable

	res, err := f.sync.SyncQueue(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Success: 3, Failed: 3}, res)
	assert.Len(t, f.client.callIDs(), 6, "every record attempted exactly once")

	q := f.store.Load(ctx)
	assert.Equal(t, []string{"r0", "r3", "r5"}, ids(q))
	for _, r := range q {
		assert.Equal(t, models.StatusFailed, r.Status)
		assert.NotEmpty(t, r.Error)
	}
	assert.Equal(t, "bookingId is required", q[1].Error)
}

func TestSyncQueue_EmptyQueueNoNetworkNoWrite(t *testing.T) {
	f := newFixture(t)

	res, err := f.sync.SyncQueue(context.Background(), func(models.OfflineTripRecord, models.SyncStatus, string) {
		t.Fatal("progress must not be called")
	})
	require.NoError(t, err)
	assert.Equal(t, SyncResult{}, res)
	assert.Empty(t, f.client.callIDs())
	assert.Zero(t, f.storage.writes())
}

func TestSyncQueue_SingleFinalWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.store.Enqueue(ctx, record("a"))
	f.store.Enqueue(ctx, record("b"))
	before := f.storage.writes()

	_, err := f.sync.SyncQueue(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, before+1, f.storage.writes())
}

func TestSyncQueue_RetryConvergence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.store.Enqueue(ctx, record("flaky"))
	f.client.failures["flaky"] = errors.New("network down")

	first, err := f.sync.SyncQueue(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Failed: 1}, first)

	delete(f.client.failures, "flaky")

	second, err := f.sync.SyncQueue(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Success: 1}, second)
	assert.Equal(t, 1, first.Success+second.Success)
	assert.Empty(t, f.store.Load(ctx))
}

func TestSyncQueue_EmptyErrorMessageBecomesUnknown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.store.Enqueue(ctx, record("x"))
	f.client.failures["x"] = errors.New("")

	events, progress := recorder()
	_, err := f.sync.SyncQueue(ctx, progress)
	require.NoError(t, err)

	require.Len(t, *events, 1)
	assert.Equal(t, models.UnknownSyncError, (*events)[0].err)
	assert.Equal(t, models.UnknownSyncError, f.store.Load(ctx)[0].Error)
}

func TestSyncQueue_RecordsEnqueuedDuringRunSurvive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.store.Enqueue(ctx, record("A"))
	f.store.Enqueue(ctx, record("B"))
	f.client.failures["B"] = errors.New("timeout")

	once := sync.Once{}
	f.client.before = func(models.OfflineTripRecord) {
		once.Do(func() { f.store.Enqueue(ctx, record("late")) })
	}

	res, err := f.sync.SyncQueue(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Success: 1, Failed: 1}, res)
	assert.NotContains(t, f.client.callIDs(), "late", "not part of this run")
	assert.Equal(t, []string{"B", "late"}, ids(f.store.Load(ctx)))
}

func TestSyncQueue_ResubmittedDuringRunSurvives(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.store.Enqueue(ctx, record("A"))

	once := sync.Once{}
	f.client.before = func(models.OfflineTripRecord) {
		once.Do(func() {
			edited := record("A")
			edited.Payload.SupervisorNotes = "corrected"
			f.store.Upsert(ctx, edited)
		})
	}

	res, err := f.sync.SyncQueue(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Success: 1}, res)

	q := f.store.Load(ctx)
	require.Len(t, q, 1)
	assert.Equal(t, "corrected", q[0].Payload.SupervisorNotes)
	assert.Equal(t, models.StatusPending, q[0].Status)
}

func TestSyncQueue_CancelledMidRunStillCommits(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	f.store.Enqueue(ctx, record("A"))
	f.store.Enqueue(ctx, record("B"))

	res, err := f.sync.SyncQueue(ctx, func(rec models.OfflineTripRecord, _ models.SyncStatus, _ string) {
		if rec.ID == "A" {
			cancel()
		}
	})
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Success: 2}, res)

	assert.Zero(t, f.store.WriteFailures())
	assert.Empty(t, f.store.Load(context.Background()))
}

func TestSyncQueue_ProgressCarriesOutcome(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.store.Enqueue(ctx, record("A"))
	f.store.Enqueue(ctx, record("B"))
	f.client.failures["B"] = errors.New("timeout")

	var got []models.OfflineTripRecord
	_, err := f.sync.SyncQueue(ctx, func(rec models.OfflineTripRecord, _ models.SyncStatus, _ string) {
		got = append(got, rec)
	})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, models.StatusSynced, got[0].Status)
	assert.Empty(t, got[0].Error)
	assert.Equal(t, models.StatusFailed, got[1].Status)
	assert.Equal(t, "timeout", got[1].Error)
	require.NotNil(t, got[1].LastSyncAttempt)
	assert.Equal(t, fixedNow, *got[1].LastSyncAttempt)
}

func TestSyncQueue_SingleFlight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.Enqueue(ctx, record("slow"))

	started := make(chan struct{})
	release := make(chan struct{})
	f.client.before = func(models.OfflineTripRecord) {
		close(started)
		<-release
	}

	done := make(chan SyncResult)
	go func() {
		res, _ := f.sync.SyncQueue(ctx, nil)
		done <- res
	}()

	<-started
	res, err := f.sync.SyncQueue(ctx, nil)
	require.ErrorIs(t, err, common.ErrSyncInProgress)
	assert.Equal(t, SyncResult{}, res)

	close(release)
	assert.Equal(t, SyncResult{Success: 1}, <-done)

	// guard is released afterwards
	_, err = f.sync.SyncQueue(ctx, nil)
	require.NoError(t, err)
}

func TestSyncRecord_PassesThroughErrors(t *testing.T) {
	f := newFixture(t)
	f.client.failures["x"] = &client.SyncError{StatusCode: 401, Detail: "token expired"}

	_, err := f.sync.SyncRecord(context.Background(), record("x"))
	require.ErrorIs(t, err, client.ErrUnauthorized)

	resp, err := f.sync.SyncRecord(context.Background(), record("y"))
	require.NoError(t, err)
	assert.Equal(t, "y", resp.TripID)
}
