// Package roster provides SQLite and HTTP backed roster readers.
package roster

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/minesched/core/factory"
	"github.com/kilianp07/minesched/core/model"
	coreroster "github.com/kilianp07/minesched/core/roster"
)

// Entity kinds stored in the roster table.
const (
	kindSite      = "site"
	kindTask      = "task"
	kindUOM       = "uom"
	kindConstant  = "constant"
	kindShift     = "shift"
	kindDelayCode = "delay_code"
)

// SQLiteReader loads rosters from a SQLite database. Every entity is stored
// as a JSON record keyed by kind and identifier.
type SQLiteReader struct {
	db *sql.DB
}

// NewSQLiteReader opens or creates the database at path and ensures schema.
func NewSQLiteReader(path string) (*SQLiteReader, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS roster_entities (
        kind TEXT NOT NULL,
        key TEXT NOT NULL,
        position INTEGER NOT NULL,
        record TEXT NOT NULL,
        PRIMARY KEY(kind, key)
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteReader{db: db}, nil
}

// Load reads every entity in insertion order.
func (s *SQLiteReader) Load(ctx context.Context) (coreroster.Roster, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, record FROM roster_entities ORDER BY kind, position`)
	if err != nil {
		return coreroster.Roster{}, err
	}
	defer func() { _ = rows.Close() }()

	var r coreroster.Roster
	for rows.Next() {
		var kind, data string
		if err := rows.Scan(&kind, &data); err != nil {
			return coreroster.Roster{}, err
		}
		if err := decodeInto(&r, kind, []byte(data)); err != nil {
			return coreroster.Roster{}, fmt.Errorf("unmarshal %s: %w", kind, err)
		}
	}
	if err := rows.Err(); err != nil {
		return coreroster.Roster{}, err
	}
	return r, nil
}

func decodeInto(r *coreroster.Roster, kind string, data []byte) error {
	switch kind {
	case kindSite:
		var v model.Site
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		r.Sites = append(r.Sites, v)
	case kindTask:
		var v model.Task
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		r.Tasks = append(r.Tasks, v)
	case kindUOM:
		var v model.UnitOfMeasure
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		r.UOMs = append(r.UOMs, v)
	case kindConstant:
		var v model.Constant
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		r.Constants = append(r.Constants, v)
	case kindShift:
		var v model.Shift
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		r.Shifts = append(r.Shifts, v)
	case kindDelayCode:
		var v model.DelayCode
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		r.DelayCodes = append(r.DelayCodes, v)
	default:
		return fmt.Errorf("unknown kind %q", kind)
	}
	return nil
}

type entity struct {
	kind string
	key  string
	v    any
}

func entities(r coreroster.Roster) []entity {
	var out []entity
	for _, v := range r.Sites {
		out = append(out, entity{kindSite, v.ID, v})
	}
	for _, v := range r.Tasks {
		out = append(out, entity{kindTask, v.ID, v})
	}
	for _, v := range r.UOMs {
		out = append(out, entity{kindUOM, v.Name, v})
	}
	for _, v := range r.Constants {
		out = append(out, entity{kindConstant, v.Keyword, v})
	}
	for _, v := range r.Shifts {
		out = append(out, entity{kindShift, v.Code, v})
	}
	for _, v := range r.DelayCodes {
		out = append(out, entity{kindDelayCode, v.Code, v})
	}
	return out
}

// Save replaces the stored roster with r in a single transaction.
func (s *SQLiteReader) Save(ctx context.Context, r coreroster.Roster) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM roster_entities`); err != nil {
		return err
	}
	for i, e := range entities(r) {
		b, merr := json.Marshal(e.v)
		if merr != nil {
			return merr
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO roster_entities (kind, key, position, record) VALUES (?, ?, ?, ?)`,
			e.kind, e.key, i, string(b)); err != nil {
			return fmt.Errorf("insert %s %s: %w", e.kind, e.key, err)
		}
	}
	return tx.Commit()
}

// Close closes the underlying database.
func (s *SQLiteReader) Close() error { return s.db.Close() }

func init() {
	_ = coreroster.RegisterReader("sqlite", func(conf map[string]any) (coreroster.Reader, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			c.Path = "roster.db"
		}
		return NewSQLiteReader(c.Path)
	})
}
