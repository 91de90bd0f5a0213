package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"chikondi-pos/models"
)

// ErrSyncFailed means a sync run could not complete. Nothing was marked
// synced; every record will go out again on the next run.
var ErrSyncFailed = errors.New("sync failed")

// Repository is the slice of the data layer the syncer needs.
type Repository interface {
	GetUnsyncedData() (*models.SyncBatch, error)
	MarkSynced(collection string, id int64) error
}

// Pusher sends a batch upstream. *Client satisfies it; tests substitute
// their own.
type Pusher interface {
	Push(ctx context.Context, batch *models.SyncBatch) (*models.SyncResponse, error)
}

// Syncer runs individual sync passes: collect unsynced records, push them,
// and mark them synced only after the server confirmed the whole batch.
type Syncer struct {
	repo   Repository
	client Pusher
	log    *slog.Logger
}

func New(repo Repository, client Pusher, log *slog.Logger) *Syncer {
	return &Syncer{repo: repo, client: client, log: log}
}

// SyncNow performs one sync pass. An empty batch is a successful no-op with
// no network call. On push failure no local record changes state.
func (s *Syncer) SyncNow(ctx context.Context) (*models.SyncCounts, error) {
	batch, err := s.repo.GetUnsyncedData()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}

	if batch.Empty() {
		s.log.Debug("nothing to sync")
		return &models.SyncCounts{}, nil
	}

	s.log.Info("syncing",
		"sales", len(batch.Sales),
		"inventory", len(batch.Inventory),
		"expenses", len(batch.Expenses),
		"customers", len(batch.Customers),
	)

	if _, err := s.client.Push(ctx, batch); err != nil {
		s.log.Warn("sync push failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}

	counts := &models.SyncCounts{}
	for _, sale := range batch.Sales {
		if err := s.repo.MarkSynced("sales", sale.ID); err != nil {
			return counts, fmt.Errorf("%w: mark sale %d: %v", ErrSyncFailed, sale.ID, err)
		}
		counts.Sales++
	}
	for _, p := range batch.Inventory {
		if err := s.repo.MarkSynced("inventory", p.ID); err != nil {
			return counts, fmt.Errorf("%w: mark product %d: %v", ErrSyncFailed, p.ID, err)
		}
		counts.Inventory++
	}
	for _, e := range batch.Expenses {
		if err := s.repo.MarkSynced("expenses", e.ID); err != nil {
			return counts, fmt.Errorf("%w: mark expense %d: %v", ErrSyncFailed, e.ID, err)
		}
		counts.Expenses++
	}
	for _, c := range batch.Customers {
		if err := s.repo.MarkSynced("customers", c.ID); err != nil {
			return counts, fmt.Errorf("%w: mark customer %d: %v", ErrSyncFailed, c.ID, err)
		}
		counts.Customers++
	}

	s.log.Info("sync complete", "total", counts.Total())
	return counts, nil
}
