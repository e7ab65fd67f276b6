// Package mirror maintains a SQLite snapshot of a dataset for ad-hoc SQL.
//
// The JSON file stays the source of truth. A mirror is rebuilt from a store
// snapshot and records the hash of the file it was built from, so callers can
// tell when it has gone stale.
package mirror

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/reergymerej/poor-nosql/internal/store"
)

// Mirror is a SQLite database file holding a copy of a dataset.
type Mirror struct {
	path   string
	logger *zap.Logger
}

// New returns a mirror backed by the SQLite file at path.
func New(path string, logger *zap.Logger) *Mirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mirror{path: path, logger: logger.With(zap.String("mirror", path))}
}

// Path returns the SQLite file path.
func (m *Mirror) Path() string {
	return m.path
}

// openDB opens the SQLite database. readOnly rejects any write.
func openDB(path string, readOnly bool) (*sql.DB, error) {
	dsn := path
	if readOnly {
		dsn = "file:" + path + "?mode=ro"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	return db, nil
}

// recordsTableDDL holds one row per record, the record stored as JSON text
// so fields can be reached with json_extract.
const recordsTableDDL = `CREATE TABLE IF NOT EXISTS records (
  id INTEGER PRIMARY KEY,
  data TEXT NOT NULL
)`

// metaTableDDL holds the source hash and last sync time.
const metaTableDDL = `CREATE TABLE IF NOT EXISTS _meta (
  key TEXT PRIMARY KEY,
  value TEXT
)`

// Sync rebuilds the mirror from snap and returns the number of records written.
func (m *Mirror) Sync(ctx context.Context, snap *store.Snapshot) (int, error) {
	db, err := openDB(m.path, false)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, ddl := range []string{recordsTableDDL, metaTableDDL} {
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return 0, fmt.Errorf("creating tables: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM records"); err != nil {
		return 0, fmt.Errorf("clearing records table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO records (id, data) VALUES (?, ?)")
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for _, record := range snap.Dataset.Records() {
		id, _ := record.ID()
		data, err := json.Marshal(record)
		if err != nil {
			return 0, fmt.Errorf("encoding record %d: %w", id, err)
		}
		if _, err := stmt.ExecContext(ctx, id, string(data)); err != nil {
			return 0, fmt.Errorf("inserting record %d: %w", id, err)
		}
		count++
	}

	if err := setMeta(ctx, tx, "source_hash", snap.Hash); err != nil {
		return 0, fmt.Errorf("updating hash: %w", err)
	}
	if err := setMeta(ctx, tx, "last_sync", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return 0, fmt.Errorf("updating sync time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}

	m.logger.Debug("mirror synced", zap.Int("records", count))
	return count, nil
}

// NeedsSync returns true if the mirror was not built from a file with hash.
// A missing mirror always needs a sync.
func (m *Mirror) NeedsSync(ctx context.Context, hash string) (bool, error) {
	stored, err := m.meta(ctx, "source_hash")
	if err != nil {
		return true, err
	}
	return stored != hash, nil
}

// LastSync returns when the mirror was last rebuilt, or the zero time.
func (m *Mirror) LastSync(ctx context.Context) (time.Time, error) {
	value, err := m.meta(ctx, "last_sync")
	if err != nil || value == "" {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, value)
}

// Query runs a read-only SQL statement against the mirror.
func (m *Mirror) Query(ctx context.Context, query string) ([]store.Record, error) {
	db, err := openDB(m.path, true)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// meta reads a _meta value. A mirror that has never been synced, including
// one whose file does not exist yet, yields "". The file is opened read-only
// so checking status never creates it.
func (m *Mirror) meta(ctx context.Context, key string) (string, error) {
	if _, err := os.Stat(m.path); errors.Is(err, os.ErrNotExist) {
		return "", nil
	}

	db, err := openDB(m.path, true)
	if err != nil {
		return "", err
	}
	defer db.Close()

	var tables int
	err = db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = '_meta'").Scan(&tables)
	if err != nil {
		return "", fmt.Errorf("reading schema: %w", err)
	}
	if tables == 0 {
		return "", nil
	}

	var value sql.NullString
	err = db.QueryRowContext(ctx, "SELECT value FROM _meta WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value.String, nil
}

func setMeta(ctx context.Context, tx *sql.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO _meta (key, value) VALUES (?, ?)`, key, value)
	return err
}

// scanRecords converts SQL rows to records.
func scanRecords(rows *sql.Rows) ([]store.Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	records := []store.Record{}
	for rows.Next() {
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		record := make(store.Record, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				record[col] = string(b)
				continue
			}
			record[col] = values[i]
		}
		records = append(records, record)
	}

	return records, rows.Err()
}
