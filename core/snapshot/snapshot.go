// Package snapshot stores generated grids for later replay.
package snapshot

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/minesched/core/model"
	"github.com/kilianp07/minesched/core/schedule"
)

// ErrNotFound is returned when a snapshot id is unknown.
var ErrNotFound = errors.New("snapshot not found")

// Kind tells automatic generation snapshots from user-saved ones.
type Kind string

const (
	KindGeneration Kind = "generation"
	KindManual     Kind = "manual"
)

// Counters summarise a stored grid.
type Counters struct {
	TotalSites  int `json:"totalSites"`
	ActiveSites int `json:"activeSites"`
	TotalTasks  int `json:"totalTasks"`
	TotalDelays int `json:"totalDelays"`
}

// Snapshot is a stored grid with its inputs. Grid is replayed verbatim.
type Snapshot struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	Kind         Kind              `json:"kind"`
	CreatedAt    time.Time         `json:"createdAt"`
	Grid         *schedule.Grid    `json:"grid"`
	DelayedSlots []model.DelaySlot `json:"delayedSlots"`
	Counters     Counters          `json:"counters"`
}

// New builds a snapshot of g with a fresh id and computed counters.
func New(kind Kind, name string, g *schedule.Grid, slots []model.DelaySlot, now time.Time) Snapshot {
	s := Snapshot{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Kind:         kind,
		CreatedAt:    now.UTC(),
		Grid:         g,
		DelayedSlots: slots,
		Counters:     CountersOf(g),
	}
	if s.Name == "" {
		s.Name = "Schedule " + s.CreatedAt.Format("2006-01-02 15:04")
	}
	return s
}

// CountersOf computes the counters of a grid.
func CountersOf(g *schedule.Grid) Counters {
	if g == nil {
		return Counters{}
	}
	return Counters{
		TotalSites:  len(g.SiteOrder),
		ActiveSites: g.ActiveSites(),
		TotalTasks:  g.FilledCells(),
		TotalDelays: len(g.AllDelays),
	}
}

// Summary is the snapshot without its grid, for listings.
func (s Snapshot) Summary() Snapshot {
	s.Grid = nil
	s.DelayedSlots = nil
	return s
}

// Query filters List results. Results are newest first.
type Query struct {
	Kind   Kind
	Limit  int
	Offset int
}

// Match reports whether s passes the kind filter.
func (q Query) Match(s Snapshot) bool {
	return q.Kind == "" || s.Kind == q.Kind
}

// Page applies Offset and Limit to an already ordered slice.
func (q Query) Page(in []Snapshot) []Snapshot {
	if q.Offset > 0 {
		if q.Offset >= len(in) {
			return nil
		}
		in = in[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(in) {
		in = in[:q.Limit]
	}
	return in
}

// Store persists snapshots.
type Store interface {
	Save(ctx context.Context, s Snapshot) error
	Get(ctx context.Context, id string) (Snapshot, error)
	// List returns summaries without grids, newest first.
	List(ctx context.Context, q Query) ([]Snapshot, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Latest returns the newest snapshot of the given kind, grid included.
func Latest(ctx context.Context, st Store, kind Kind) (Snapshot, error) {
	list, err := st.List(ctx, Query{Kind: kind, Limit: 1})
	if err != nil {
		return Snapshot{}, err
	}
	if len(list) == 0 {
		return Snapshot{}, ErrNotFound
	}
	return st.Get(ctx, list[0].ID)
}
