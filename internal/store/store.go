package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
)

// DB is a handle on one dataset file.
//
// Every operation loads the whole file, works on the in-memory dataset, and
// mutating operations write the whole file back before returning. The handle's
// lock makes that cycle atomic per call within the process; separate
// processes sharing the file are not coordinated.
type DB struct {
	path   string
	logger *zap.Logger
	ops    Operators
	indent bool

	mu     sync.RWMutex
	closed bool
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger used for operation tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(db *DB) {
		if logger != nil {
			db.logger = logger
		}
	}
}

// WithOperator registers an extra query operator.
func WithOperator(op Operator, compile Compiler) Option {
	return func(db *DB) {
		db.ops[op] = compile
	}
}

// WithIndent makes saves pretty-print the dataset file.
func WithIndent() Option {
	return func(db *DB) {
		db.indent = true
	}
}

// Open returns a handle on the dataset file at path. The file is not read
// until the first operation; use Init to create it.
func Open(path string, opts ...Option) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrStorageUnavailable)
	}
	db := &DB{
		path:   path,
		logger: zap.NewNop(),
		ops:    DefaultOperators().clone(),
	}
	for _, opt := range opts {
		opt(db)
	}
	db.logger = db.logger.With(zap.String("path", path))
	return db, nil
}

// Path returns the dataset file path.
func (db *DB) Path() string {
	return db.path
}

// Close releases the handle. Later operations return ErrClosed.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.closed = true
	return nil
}

// open loads the dataset. Callers must hold the lock.
func (db *DB) open(ctx context.Context) (Dataset, string, error) {
	if db.closed {
		return nil, "", ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	ds, hash, err := load(db.path)
	if err != nil {
		db.logger.Warn("load failed", zap.Error(err))
		return nil, "", err
	}
	return ds, hash, nil
}

// close writes the dataset back. Callers must hold the write lock.
func (db *DB) close(ds Dataset) error {
	if err := Save(db.path, ds, db.indent); err != nil {
		db.logger.Warn("save failed", zap.Error(err))
		return err
	}
	return nil
}

// Create inserts records and returns them with identifiers assigned. The
// batch is written once; any failure aborts the whole batch unwritten.
// The caller's maps are not modified.
func (db *DB) Create(ctx context.Context, records ...Record) ([]Record, error) {
	if len(records) == 0 {
		return []Record{}, nil
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	ds, _, err := db.open(ctx)
	if err != nil {
		return nil, err
	}

	created := make([]Record, 0, len(records))
	ids := make([]int, 0, len(records))
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := NextID(ds)
		created = append(created, ds.put(id, r.clone()))
		ids = append(ids, id)
	}

	if err := db.close(ds); err != nil {
		return nil, fmt.Errorf("creating records: %w", err)
	}

	db.logger.Debug("created", zap.Ints("ids", ids))
	return created, nil
}

// Get returns the record stored under id, or ErrNotFound.
func (db *DB) Get(ctx context.Context, id int) (Record, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	ds, _, err := db.open(ctx)
	if err != nil {
		return nil, err
	}
	r, ok := ds.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	db.logger.Debug("read", zap.Int("id", id))
	return r, nil
}

// Find returns every record matching w, in identifier order.
func (db *DB) Find(ctx context.Context, w Where) ([]Record, error) {
	q, err := NewQuery(w, db.ops)
	if err != nil {
		return nil, err
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	ds, _, err := db.open(ctx)
	if err != nil {
		return nil, err
	}
	matches := q.Matches(ds)
	db.logger.Debug("query", zap.Int("matched", len(matches)))
	return matches, nil
}

// Read resolves criteria. An ID yields a one-element slice or ErrNotFound;
// a Where yields its matches, possibly none.
func (db *DB) Read(ctx context.Context, c Criteria) ([]Record, error) {
	switch c := c.(type) {
	case ID:
		r, err := db.Get(ctx, int(c))
		if err != nil {
			return nil, err
		}
		return []Record{r}, nil
	case Where:
		return db.Find(ctx, c)
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidCriteria, c)
	}
}

// Update replaces the record stored under id with data. Fields absent from
// data are dropped; the identifier is preserved. Returns ErrNotFound if id
// is absent.
func (db *DB) Update(ctx context.Context, id int, data Record) (Record, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	ds, _, err := db.open(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := ds.Get(id); !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	updated := ds.put(id, data.clone())
	if err := db.close(ds); err != nil {
		return nil, fmt.Errorf("updating record %d: %w", id, err)
	}

	db.logger.Debug("updated", zap.Int("id", id))
	return updated, nil
}

// Delete removes the records selected by c and returns their identifiers.
// An ID that is absent yields ErrNotFound; a Where that matches nothing
// returns an empty slice without rewriting the file.
func (db *DB) Delete(ctx context.Context, c Criteria) ([]int, error) {
	var q *Query
	switch c := c.(type) {
	case ID:
	case Where:
		var err error
		if q, err = NewQuery(c, db.ops); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidCriteria, c)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	ds, _, err := db.open(ctx)
	if err != nil {
		return nil, err
	}

	removed := []int{}
	if q == nil {
		id := int(c.(ID))
		if !ds.remove(id) {
			return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		removed = append(removed, id)
	} else {
		for _, r := range q.Matches(ds) {
			id, _ := r.ID()
			if ds.remove(id) {
				removed = append(removed, id)
			}
		}
	}

	if len(removed) > 0 {
		if err := db.close(ds); err != nil {
			return nil, fmt.Errorf("deleting records: %w", err)
		}
	}

	db.logger.Debug("deleted", zap.Ints("ids", removed))
	return removed, nil
}

// Count returns the number of stored records.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	ds, _, err := db.open(ctx)
	if err != nil {
		return 0, err
	}
	return len(ds), nil
}

// Snapshot is a dataset together with the hash of the file it was read from.
type Snapshot struct {
	Dataset Dataset
	Hash    string
}

// Snapshot loads the dataset and its content hash in one read.
func (db *DB) Snapshot(ctx context.Context) (*Snapshot, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	ds, hash, err := db.open(ctx)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Dataset: ds, Hash: hash}, nil
}

// Info contains detailed information about a store.
type Info struct {
	Path    string `json:"path"`
	Records int    `json:"records"`
	Size    int64  `json:"size"`
	Hash    string `json:"hash"`
	NextID  int    `json:"next_id"`
}

// Info returns detailed information about the dataset file.
func (db *DB) Info(ctx context.Context) (*Info, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	ds, hash, err := db.open(ctx)
	if err != nil {
		return nil, err
	}

	info := &Info{
		Path:    db.path,
		Records: len(ds),
		Hash:    hash,
		NextID:  NextID(ds),
	}
	stat, err := os.Stat(db.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err == nil {
		info.Size = stat.Size()
	}
	return info, nil
}
