// Package store handles SQLite persistence of imported datasets.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/verte-zerg/tuirace/internal/dataset"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound reports a dataset reference that matches no stored dataset.
var ErrNotFound = errors.New("dataset not found")

// DatasetInfo describes a stored dataset without its samples.
type DatasetInfo struct {
	ID          string
	Name        string
	CreatedAt   time.Time
	LabelCount  int
	EntityCount int
	FirstLabel  string
	LastLabel   string
}

// Store wraps SQLite access for datasets.
type Store struct {
	db    *sql.DB
	clock clockwork.Clock
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for creation timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string, opts ...Option) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(store)
	}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS datasets (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS dataset_labels (
			dataset_id TEXT NOT NULL,
			idx INTEGER NOT NULL,
			label TEXT NOT NULL,
			PRIMARY KEY (dataset_id, idx)
		);`,
		`CREATE TABLE IF NOT EXISTS dataset_entities (
			dataset_id TEXT NOT NULL,
			idx INTEGER NOT NULL,
			key TEXT NOT NULL,
			color TEXT NOT NULL,
			image TEXT NOT NULL,
			PRIMARY KEY (dataset_id, idx)
		);`,
		`CREATE TABLE IF NOT EXISTS dataset_samples (
			dataset_id TEXT NOT NULL,
			entity_idx INTEGER NOT NULL,
			label_idx INTEGER NOT NULL,
			value REAL NOT NULL,
			PRIMARY KEY (dataset_id, entity_idx, label_idx)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_datasets_created_at ON datasets(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveDataset stores ds under its name, replacing any dataset already stored
// with that name.
func (s *Store) SaveDataset(ctx context.Context, ds *dataset.Dataset) (info DatasetInfo, err error) {
	if ds.Name() == "" {
		return DatasetInfo{}, fmt.Errorf("%w: a stored dataset needs a name", dataset.ErrInvalidDataset)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DatasetInfo{}, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = deleteWhere(ctx, tx, `name = ?`, ds.Name()); err != nil {
		return DatasetInfo{}, err
	}

	labels := ds.Labels()
	info = DatasetInfo{
		ID:          uuid.NewString(),
		Name:        ds.Name(),
		CreatedAt:   s.clock.Now().UTC(),
		LabelCount:  len(labels),
		EntityCount: ds.EntityCount(),
		FirstLabel:  labels[0],
		LastLabel:   labels[len(labels)-1],
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO datasets (id, name, created_at) VALUES (?, ?, ?)`,
		info.ID, info.Name, info.CreatedAt.Format(time.RFC3339Nano),
	); err != nil {
		return DatasetInfo{}, err
	}

	if err = execEach(ctx, tx, `INSERT INTO dataset_labels (dataset_id, idx, label) VALUES (?, ?, ?)`, len(labels), func(i int) []any {
		return []any{info.ID, i, labels[i]}
	}); err != nil {
		return DatasetInfo{}, err
	}

	entities := ds.Entities()
	if err = execEach(ctx, tx, `INSERT INTO dataset_entities (dataset_id, idx, key, color, image) VALUES (?, ?, ?, ?, ?)`, len(entities), func(i int) []any {
		e := entities[i]
		return []any{info.ID, i, e.Key, e.Color, e.Image}
	}); err != nil {
		return DatasetInfo{}, err
	}

	if err = execEach(ctx, tx, `INSERT INTO dataset_samples (dataset_id, entity_idx, label_idx, value) VALUES (?, ?, ?, ?)`, len(entities)*len(labels), func(i int) []any {
		e, l := i/len(labels), i%len(labels)
		return []any{info.ID, e, l, entities[e].Values[l]}
	}); err != nil {
		return DatasetInfo{}, err
	}

	if err = tx.Commit(); err != nil {
		return DatasetInfo{}, err
	}
	return info, nil
}

func execEach(ctx context.Context, tx *sql.Tx, query string, n int, args func(int) []any) error {
	if n == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return err
		}
	}
	return nil
}

// LoadDataset loads the dataset whose id or name equals ref.
func (s *Store) LoadDataset(ctx context.Context, ref string) (*dataset.Dataset, error) {
	var id, name string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM datasets WHERE id = ? OR name = ? ORDER BY id = ? DESC LIMIT 1`,
		ref, ref, ref,
	).Scan(&id, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, ref)
	}
	if err != nil {
		return nil, err
	}

	labels, err := queryStrings(ctx, s.db, `SELECT label FROM dataset_labels WHERE dataset_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT key, color, image FROM dataset_entities WHERE dataset_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, err
	}
	var entities []dataset.Entity
	for rows.Next() {
		e := dataset.Entity{Values: make([]float64, len(labels))}
		if err := rows.Scan(&e.Key, &e.Color, &e.Image); err != nil {
			closeRows(rows)
			return nil, err
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		closeRows(rows)
		return nil, err
	}
	closeRows(rows)

	rows, err = s.db.QueryContext(ctx, `SELECT entity_idx, label_idx, value FROM dataset_samples WHERE dataset_id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)
	for rows.Next() {
		var e, l int
		var v float64
		if err := rows.Scan(&e, &l, &v); err != nil {
			return nil, err
		}
		if e < 0 || e >= len(entities) || l < 0 || l >= len(labels) {
			return nil, fmt.Errorf("%w: sample (%d, %d) out of range in %q", dataset.ErrInvalidDataset, e, l, name)
		}
		entities[e].Values[l] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return dataset.New(name, labels, entities)
}

// ListDatasets returns stored datasets, newest first.
func (s *Store) ListDatasets(ctx context.Context) ([]DatasetInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT d.id, d.name, d.created_at,
			(SELECT COUNT(*) FROM dataset_labels l WHERE l.dataset_id = d.id),
			(SELECT COUNT(*) FROM dataset_entities e WHERE e.dataset_id = d.id),
			COALESCE((SELECT label FROM dataset_labels l WHERE l.dataset_id = d.id ORDER BY idx ASC LIMIT 1), ''),
			COALESCE((SELECT label FROM dataset_labels l WHERE l.dataset_id = d.id ORDER BY idx DESC LIMIT 1), '')
		FROM datasets d
		ORDER BY d.created_at DESC, d.name ASC`)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var result []DatasetInfo
	for rows.Next() {
		var info DatasetInfo
		var createdAt string
		if err := rows.Scan(&info.ID, &info.Name, &createdAt, &info.LabelCount, &info.EntityCount, &info.FirstLabel, &info.LastLabel); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, err
		}
		info.CreatedAt = parsed
		result = append(result, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteDataset removes the dataset whose id or name equals ref.
func (s *Store) DeleteDataset(ctx context.Context, ref string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	n, err := deleteWhere(ctx, tx, `id = ? OR name = ?`, ref, ref)
	if err != nil {
		return err
	}
	if n == 0 {
		err = fmt.Errorf("%w: %q", ErrNotFound, ref)
		return err
	}
	return tx.Commit()
}

// deleteWhere removes the datasets matching cond together with their rows
// and returns how many datasets were removed.
func deleteWhere(ctx context.Context, tx *sql.Tx, cond string, args ...any) (int64, error) {
	for _, table := range []string{"dataset_samples", "dataset_entities", "dataset_labels"} {
		query := fmt.Sprintf(`DELETE FROM %s WHERE dataset_id IN (SELECT id FROM datasets WHERE %s)`, table, cond)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, err
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM datasets WHERE `+cond, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func queryStrings(ctx context.Context, db *sql.DB, query string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func closeRows(rows *sql.Rows) {
	if cerr := rows.Close(); cerr != nil {
		// Best-effort rows close.
		_ = cerr
	}
}
