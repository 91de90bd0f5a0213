package syncer

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Worker runs sync passes in the background: on a fixed interval while
// online, and immediately when connectivity comes back.
type Worker struct {
	syncer   *Syncer
	interval time.Duration
	log      *slog.Logger

	mu       sync.Mutex
	online   bool
	running  bool
	wake     chan struct{}
	stopChan chan struct{}
	done     chan struct{}
}

func NewWorker(syncer *Syncer, interval time.Duration, log *slog.Logger) *Worker {
	return &Worker{
		syncer:   syncer,
		interval: interval,
		log:      log,
		online:   true,
		wake:     make(chan struct{}, 1),
	}
}

// Start launches the background loop. Starting a running worker is a no-op.
func (w *Worker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return
	}
	w.running = true
	w.stopChan = make(chan struct{})
	w.done = make(chan struct{})

	go w.run(w.stopChan, w.done)
	w.log.Info("sync worker started", "interval", w.interval)
}

// Stop shuts the loop down and waits for any in-flight pass to finish.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopChan)
	done := w.done
	w.mu.Unlock()

	<-done
	w.log.Info("sync worker stopped")
}

// SetOnline records the connectivity state. Going from offline to online
// wakes the loop for an immediate pass; timer ticks while offline are
// skipped.
func (w *Worker) SetOnline(online bool) {
	w.mu.Lock()
	wasOnline := w.online
	w.online = online
	w.mu.Unlock()

	if online && !wasOnline {
		w.log.Info("back online")
		select {
		case w.wake <- struct{}{}:
		default:
		}
	}
}

// TriggerSync requests an immediate pass regardless of the timer.
func (w *Worker) TriggerSync() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Worker) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			w.sync()
		case <-w.wake:
			w.sync()
		}
	}
}

func (w *Worker) sync() {
	w.mu.Lock()
	online := w.online
	w.mu.Unlock()

	if !online {
		w.log.Debug("offline, skipping sync")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if _, err := w.syncer.SyncNow(ctx); err != nil {
		w.log.Warn("background sync failed", "error", err)
	}
}
