package storage

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Index is a SQLite catalogue of saved runs.
type Index struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewIndex(path string) *Index {
	return &Index{path: path}
}

func (ix *Index) Init(ctx context.Context) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.path == "" {
		return errors.New("sqlite path is required")
	}
	if ix.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", ix.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	ix.db = db
	return nil
}

// Record inserts or replaces the catalogue row of a run.
func (ix *Index) Record(ctx context.Context, meta RunMetadata) error {
	db, err := ix.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, model, scheme, mode, created, particles, steps, converged, valid, ex, ey, sigs, sige)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			model = excluded.model,
			scheme = excluded.scheme,
			mode = excluded.mode,
			created = excluded.created,
			particles = excluded.particles,
			steps = excluded.steps,
			converged = excluded.converged,
			valid = excluded.valid,
			ex = excluded.ex,
			ey = excluded.ey,
			sigs = excluded.sigs,
			sige = excluded.sige
	`, meta.ID, meta.Model, meta.Scheme, meta.Mode, meta.Timestamp.UnixNano(), meta.Particles,
		meta.Steps, meta.Converged, meta.Valid, meta.Final.Ex, meta.Final.Ey, meta.Final.Sigs, meta.Final.Sige)
	return err
}

// List returns the catalogue ordered by creation time, oldest first. Only
// the catalogued columns are populated.
func (ix *Index) List(ctx context.Context) ([]RunMetadata, error) {
	db, err := ix.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, model, scheme, mode, created, particles, steps, converged, valid, ex, ey, sigs, sige
		FROM runs ORDER BY created, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RunMetadata, 0)
	for rows.Next() {
		var (
			m       RunMetadata
			created int64
		)
		if err := rows.Scan(&m.ID, &m.Model, &m.Scheme, &m.Mode, &created, &m.Particles,
			&m.Steps, &m.Converged, &m.Valid, &m.Final.Ex, &m.Final.Ey, &m.Final.Sigs, &m.Final.Sige); err != nil {
			return nil, err
		}
		m.Timestamp = time.Unix(0, created).UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}

func (ix *Index) Delete(ctx context.Context, id string) (bool, error) {
	db, err := ix.getDB()
	if err != nil {
		return false, err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.db == nil {
		return nil
	}
	err := ix.db.Close()
	ix.db = nil
	return err
}

func (ix *Index) getDB() (*sql.DB, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.db == nil {
		return nil, errors.New("index is not initialized")
	}
	return ix.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			model TEXT NOT NULL,
			scheme TEXT NOT NULL,
			mode TEXT NOT NULL,
			created INTEGER NOT NULL,
			particles REAL NOT NULL,
			steps INTEGER NOT NULL,
			converged INTEGER NOT NULL,
			valid INTEGER NOT NULL,
			ex REAL NOT NULL,
			ey REAL NOT NULL,
			sigs REAL NOT NULL,
			sige REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS runs_created ON runs (created);
	`)
	return err
}
