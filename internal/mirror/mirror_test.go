package mirror

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/reergymerej/poor-nosql/internal/store"
)

// setupMirror creates a store with a few records and an unsynced mirror.
func setupMirror(t *testing.T) (*store.DB, *Mirror) {
	t.Helper()
	dir := t.TempDir()

	dbPath := filepath.Join(dir, "db.json")
	if _, err := store.Init(dbPath); err != nil {
		t.Fatalf("Init: %v", err)
	}
	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_, err = db.Create(context.Background(),
		store.Record{"name": "first", "kind": "a"},
		store.Record{"name": "second", "kind": "b"},
		store.Record{"name": "third", "kind": "a"},
	)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	return db, New(filepath.Join(dir, "db.sqlite"), nil)
}

func TestSyncAndQuery(t *testing.T) {
	ctx := context.Background()
	db, m := setupMirror(t)

	snap, err := db.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	n, err := m.Sync(ctx, snap)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if n != 3 {
		t.Errorf("Sync returned %d, want 3", n)
	}

	got, err := m.Query(ctx, `SELECT id, json_extract(data, '$.name') AS name
		FROM records WHERE json_extract(data, '$.kind') = 'a' ORDER BY id`)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	want := []store.Record{
		{"id": int64(0), "name": "first"},
		{"id": int64(2), "name": "third"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}
}

func TestNeedsSync(t *testing.T) {
	ctx := context.Background()
	db, m := setupMirror(t)

	snap, err := db.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	needs, err := m.NeedsSync(ctx, snap.Hash)
	if err != nil {
		t.Fatalf("NeedsSync: %v", err)
	}
	if !needs {
		t.Error("unsynced mirror should need sync")
	}

	if _, err := m.Sync(ctx, snap); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	needs, err = m.NeedsSync(ctx, snap.Hash)
	if err != nil {
		t.Fatalf("NeedsSync: %v", err)
	}
	if needs {
		t.Error("mirror should be in sync right after Sync")
	}

	if _, err := db.Delete(ctx, store.ID(1)); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	info, err := db.Info(ctx)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	needs, err = m.NeedsSync(ctx, info.Hash)
	if err != nil {
		t.Fatalf("NeedsSync: %v", err)
	}
	if !needs {
		t.Error("mirror should be stale after the dataset changed")
	}
}

func TestStatus_DoesNotCreateMirror(t *testing.T) {
	ctx := context.Background()
	_, m := setupMirror(t)

	needs, err := m.NeedsSync(ctx, "somehash")
	if err != nil {
		t.Fatalf("NeedsSync: %v", err)
	}
	if !needs {
		t.Error("missing mirror should need sync")
	}
	last, err := m.LastSync(ctx)
	if err != nil {
		t.Fatalf("LastSync: %v", err)
	}
	if !last.IsZero() {
		t.Errorf("LastSync = %v, want zero", last)
	}

	if _, err := os.Stat(m.Path()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("status checks created %s (stat err = %v)", m.Path(), err)
	}
}

func TestSync_Rebuilds(t *testing.T) {
	ctx := context.Background()
	db, m := setupMirror(t)

	snap, _ := db.Snapshot(ctx)
	if _, err := m.Sync(ctx, snap); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if _, err := db.Delete(ctx, store.Where{"kind": {store.OpIn: []any{"a"}}}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	snap, _ = db.Snapshot(ctx)
	n, err := m.Sync(ctx, snap)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if n != 1 {
		t.Errorf("Sync returned %d, want 1", n)
	}

	got, err := m.Query(ctx, "SELECT COUNT(*) AS n FROM records")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if diff := cmp.Diff([]store.Record{{"n": int64(1)}}, got); diff != "" {
		t.Errorf("count mismatch (-want +got):\n%s", diff)
	}
}

func TestLastSync(t *testing.T) {
	ctx := context.Background()
	db, m := setupMirror(t)

	last, err := m.LastSync(ctx)
	if err != nil {
		t.Fatalf("LastSync: %v", err)
	}
	if !last.IsZero() {
		t.Errorf("LastSync = %v, want zero before first sync", last)
	}

	before := time.Now().Add(-time.Second)
	snap, _ := db.Snapshot(ctx)
	if _, err := m.Sync(ctx, snap); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	last, err = m.LastSync(ctx)
	if err != nil {
		t.Fatalf("LastSync: %v", err)
	}
	if last.Before(before) {
		t.Errorf("LastSync = %v, want after %v", last, before)
	}
}

func TestQuery_ReadOnly(t *testing.T) {
	ctx := context.Background()
	db, m := setupMirror(t)

	snap, _ := db.Snapshot(ctx)
	if _, err := m.Sync(ctx, snap); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if _, err := m.Query(ctx, "DELETE FROM records"); err == nil {
		t.Error("expected write through Query to fail")
	}
}
