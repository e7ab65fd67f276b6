package mirror

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/reergymerej/poor-nosql/internal/store"
)

// DefaultSyncInterval is the minimum time between two rebuilds in watch mode.
const DefaultSyncInterval = time.Second

// Watcher keeps a mirror in step with its dataset file.
type Watcher struct {
	mirror  *Mirror
	db      *store.DB
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewWatcher returns a watcher that rebuilds m from db at most once per interval.
func NewWatcher(m *Mirror, db *store.DB, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	return &Watcher{
		mirror:  m,
		db:      db,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		logger:  m.logger,
	}
}

// Run syncs the mirror if it is stale, then rebuilds it whenever the dataset
// file changes, until ctx is done. synced, if non-nil, is called with the
// record count after each rebuild.
//
// The directory is watched rather than the file because saves replace the
// file by rename.
func (w *Watcher) Run(ctx context.Context, synced func(records int)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	target := filepath.Clean(w.db.Path())
	if err := fw.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(target), err)
	}

	if err := w.syncIfStale(ctx, synced); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			w.logger.Debug("dataset changed", zap.String("op", event.Op.String()))
			if err := w.limiter.Wait(ctx); err != nil {
				return nil
			}
			if err := w.syncIfStale(ctx, synced); err != nil {
				w.logger.Warn("sync failed", zap.Error(err))
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

// syncIfStale rebuilds the mirror when its source hash differs from the file's.
func (w *Watcher) syncIfStale(ctx context.Context, synced func(records int)) error {
	snap, err := w.db.Snapshot(ctx)
	if err != nil {
		return err
	}
	needsSync, err := w.mirror.NeedsSync(ctx, snap.Hash)
	if err != nil {
		return fmt.Errorf("checking sync status: %w", err)
	}
	if !needsSync {
		return nil
	}

	count, err := w.mirror.Sync(ctx, snap)
	if err != nil {
		return fmt.Errorf("syncing mirror: %w", err)
	}
	if synced != nil {
		synced(count)
	}
	return nil
}
