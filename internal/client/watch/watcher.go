// Package watch keeps the latest section snapshot of one user fresh.
package watch

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophdocs/internal/client/api"
	"github.com/dmitrijs2005/gophdocs/internal/logging"
	"github.com/dmitrijs2005/gophdocs/internal/timex"
)

type SnapshotSource interface {
	Snapshot(ctx context.Context) (*api.Snapshot, error)
}

// Watcher stores the last snapshot it read. Refresh is meant to be driven
// by a revalidate.Task.
type Watcher struct {
	src SnapshotSource
	log logging.Logger
	now timex.Clock

	mu        sync.RWMutex
	last      *api.Snapshot
	refreshed time.Time
}

func New(src SnapshotSource, log logging.Logger) *Watcher {
	return &Watcher{src: src, log: log.With("component", "watcher"), now: timex.UTCNow}
}

// Refresh reads a new snapshot. On error the previous one is kept.
func (w *Watcher) Refresh(ctx context.Context) error {
	snap, err := w.src.Snapshot(ctx)
	if err != nil {
		return err
	}
	if snap == nil || snap.Stats == nil {
		return api.ErrIncompleteSnapshot
	}

	w.mu.Lock()
	w.last = snap
	w.refreshed = w.now()
	w.mu.Unlock()

	w.log.Info(ctx, "snapshot refreshed",
		"total_files", snap.Stats.TotalFiles,
		"storage_percentage", snap.Stats.StoragePercentage,
		"recent", len(snap.Recent),
		"shared", len(snap.Shared),
		"trash", len(snap.Trash),
	)
	return nil
}

// Latest returns the last snapshot and when it was read, or nil before the
// first successful refresh.
func (w *Watcher) Latest() (*api.Snapshot, time.Time) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.last, w.refreshed
}
