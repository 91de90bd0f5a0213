package syncer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chikondi-pos/models"
)

type stubRepo struct {
	batch  *models.SyncBatch
	marked int32
}

func (s *stubRepo) GetUnsyncedData() (*models.SyncBatch, error) {
	return s.batch, nil
}

func (s *stubRepo) MarkSynced(collection string, id int64) error {
	atomic.AddInt32(&s.marked, 1)
	return nil
}

type stubPusher struct {
	pushes int32
}

func (s *stubPusher) Push(ctx context.Context, batch *models.SyncBatch) (*models.SyncResponse, error) {
	atomic.AddInt32(&s.pushes, 1)
	return &models.SyncResponse{Success: true}, nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if cond() {
			return
		}
		select {
		case <-deadline:
			t.Fatal("condition not met in time")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWorkerStartStop(t *testing.T) {
	repo := &stubRepo{batch: &models.SyncBatch{}}
	pusher := &stubPusher{}
	w := NewWorker(New(repo, pusher, testLogger()), time.Hour, testLogger())

	w.Start()
	w.Start() // second start is a no-op
	w.Stop()
	w.Stop() // second stop is a no-op
}

func TestWorkerTriggerSync(t *testing.T) {
	repo := &stubRepo{batch: &models.SyncBatch{
		Sales: []models.Sale{{ID: 1, Total: 100}},
	}}
	pusher := &stubPusher{}
	w := NewWorker(New(repo, pusher, testLogger()), time.Hour, testLogger())

	w.Start()
	defer w.Stop()

	w.TriggerSync()
	waitFor(t, func() bool { return atomic.LoadInt32(&pusher.pushes) >= 1 })
	assert.Equal(t, int32(1), atomic.LoadInt32(&repo.marked))
}

func TestWorkerSkipsWhileOffline(t *testing.T) {
	repo := &stubRepo{batch: &models.SyncBatch{
		Sales: []models.Sale{{ID: 1, Total: 100}},
	}}
	pusher := &stubPusher{}
	w := NewWorker(New(repo, pusher, testLogger()), time.Hour, testLogger())

	w.SetOnline(false)
	w.Start()
	defer w.Stop()

	w.TriggerSync()
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&pusher.pushes))
}

func TestWorkerSyncsWhenBackOnline(t *testing.T) {
	repo := &stubRepo{batch: &models.SyncBatch{
		Expenses: []models.Expense{{ID: 7, Description: "fuel", Amount: 900}},
	}}
	pusher := &stubPusher{}
	w := NewWorker(New(repo, pusher, testLogger()), time.Hour, testLogger())

	w.SetOnline(false)
	w.Start()
	defer w.Stop()

	w.SetOnline(true)
	waitFor(t, func() bool { return atomic.LoadInt32(&pusher.pushes) >= 1 })

	// Staying online is not an edge, no extra pass
	before := atomic.LoadInt32(&pusher.pushes)
	w.SetOnline(true)
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, before, atomic.LoadInt32(&pusher.pushes))
}

func TestWorkerTicks(t *testing.T) {
	repo := &stubRepo{batch: &models.SyncBatch{
		Customers: []models.Customer{{ID: 3, Name: "Zikomo"}},
	}}
	pusher := &stubPusher{}
	w := NewWorker(New(repo, pusher, testLogger()), 20*time.Millisecond, testLogger())

	w.Start()
	defer w.Stop()

	waitFor(t, func() bool { return atomic.LoadInt32(&pusher.pushes) >= 2 })
}
