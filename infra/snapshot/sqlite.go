// Package snapshot provides persistent snapshot stores.
package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	core "github.com/kilianp07/minesched/core/snapshot"
)

// SQLiteStore persists snapshots to a SQLite database. The full snapshot
// and its grid-less summary are stored as JSON records.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS snapshots (
        id TEXT PRIMARY KEY,
        kind TEXT,
        created_at INTEGER,
        summary TEXT,
        record TEXT
    );
    CREATE INDEX IF NOT EXISTS snapshots_created ON snapshots(created_at);`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Save inserts or replaces the snapshot.
func (s *SQLiteStore) Save(ctx context.Context, snap core.Snapshot) error {
	rec, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	sum, err := json.Marshal(snap.Summary())
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO snapshots (id, kind, created_at, summary, record) VALUES (?, ?, ?, ?, ?)`,
		snap.ID, string(snap.Kind), snap.CreatedAt.UnixNano(), string(sum), string(rec))
	return err
}

// Get returns the full snapshot.
func (s *SQLiteStore) Get(ctx context.Context, id string) (core.Snapshot, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM snapshots WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Snapshot{}, core.ErrNotFound
	}
	if err != nil {
		return core.Snapshot{}, err
	}
	var snap core.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return core.Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, nil
}

// List returns summaries matching q, newest first.
func (s *SQLiteStore) List(ctx context.Context, q core.Query) ([]core.Snapshot, error) {
	var args []any
	query := `SELECT summary FROM snapshots WHERE 1=1`
	if q.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(q.Kind))
	}
	query += ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	limit := -1
	if q.Limit > 0 {
		limit = q.Limit
	}
	args = append(args, limit, max(q.Offset, 0))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []core.Snapshot
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var snap core.Snapshot
		if err := json.Unmarshal([]byte(data), &snap); err != nil {
			return nil, fmt.Errorf("unmarshal summary: %w", err)
		}
		res = append(res, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Delete removes a snapshot.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
