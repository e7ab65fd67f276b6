package mirror

import (
	"context"
	"testing"
	"time"

	"github.com/reergymerej/poor-nosql/internal/store"
)

func TestWatcher_RebuildsOnChange(t *testing.T) {
	db, m := setupMirror(t)
	w := NewWatcher(m, db, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	synced := make(chan int, 8)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(n int) { synced <- n })
	}()

	waitFor := func(want int) {
		t.Helper()
		select {
		case got := <-synced:
			if got != want {
				t.Errorf("synced %d records, want %d", got, want)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for sync of %d records", want)
		}
	}

	// Stale on start.
	waitFor(3)

	if _, err := db.Create(context.Background(), store.Record{"name": "fourth"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	waitFor(4)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	needs, err := m.NeedsSync(context.Background(), mustHash(t, db))
	if err != nil {
		t.Fatalf("NeedsSync: %v", err)
	}
	if needs {
		t.Error("mirror should be in sync after watching")
	}
}

func TestWatcher_SkipsWhenInSync(t *testing.T) {
	db, m := setupMirror(t)
	ctx := context.Background()

	snap, _ := db.Snapshot(ctx)
	if _, err := m.Sync(ctx, snap); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	w := NewWatcher(m, db, 0)
	calls := 0
	if err := w.syncIfStale(ctx, func(int) { calls++ }); err != nil {
		t.Fatalf("syncIfStale: %v", err)
	}
	if calls != 0 {
		t.Errorf("synced %d times, want 0", calls)
	}
}

func mustHash(t *testing.T, db *store.DB) string {
	t.Helper()
	info, err := db.Info(context.Background())
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	return info.Hash
}
