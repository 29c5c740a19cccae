package snapshot

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kilianp07/minesched/core/factory"
	"github.com/kilianp07/minesched/core/model"
	"github.com/kilianp07/minesched/core/schedule"
	core "github.com/kilianp07/minesched/core/snapshot"
)

var base = time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC)

func testGrid() *schedule.Grid {
	return &schedule.Grid{
		Grid:        map[string]schedule.Row{"S1": {"DRILL", "", "BOG"}},
		GridHours:   3,
		SiteOrder:   []string{"S1"},
		SiteActive:  map[string]bool{"S1": true},
		AllDelays:   []model.Delay{{Site: "S1", Hour: 1, Code: model.ShiftChangeCode, IsAutomatic: true}},
		GeneratedAt: base,
	}
}

// exerciseStore runs the behaviour every Store must share.
func exerciseStore(t *testing.T, st core.Store) {
	t.Helper()
	ctx := context.Background()
	var ids []string
	for i := 0; i < 3; i++ {
		kind := core.KindGeneration
		if i == 1 {
			kind = core.KindManual
		}
		s := core.New(kind, "", testGrid(), []model.DelaySlot{{Row: "S1", HourIndex: 2, Code: "BREAK", Duration: 1}}, base.Add(time.Duration(i)*time.Hour))
		ids = append(ids, s.ID)
		if err := st.Save(ctx, s); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	got, err := st.Get(ctx, ids[0])
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Grid == nil || got.Grid.Cell("S1", 2) != "BOG" || got.Grid.Cell("S1", 1) != "" {
		t.Fatalf("grid not replayed verbatim: %+v", got.Grid)
	}
	if len(got.DelayedSlots) != 1 || got.Counters.TotalTasks != 2 || got.Counters.TotalDelays != 1 {
		t.Fatalf("unexpected snapshot %+v", got)
	}
	if !got.CreatedAt.Equal(base) {
		t.Fatalf("created at %v", got.CreatedAt)
	}

	list, err := st.List(ctx, core.Query{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].ID != ids[2] || list[2].ID != ids[0] {
		t.Fatalf("expected newest first, got %v", list)
	}
	if list[0].Grid != nil {
		t.Fatal("summaries must not carry grids")
	}

	gens, err := st.List(ctx, core.Query{Kind: core.KindGeneration, Limit: 1})
	if err != nil {
		t.Fatalf("list kind: %v", err)
	}
	if len(gens) != 1 || gens[0].ID != ids[2] {
		t.Fatalf("unexpected generation listing %v", gens)
	}

	page, err := st.List(ctx, core.Query{Offset: 1, Limit: 5})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page) != 2 || page[0].ID != ids[1] {
		t.Fatalf("unexpected page %v", page)
	}

	latest, err := core.Latest(ctx, st, core.KindManual)
	if err != nil || latest.ID != ids[1] || latest.Grid == nil {
		t.Fatalf("latest manual: %+v %v", latest, err)
	}

	if err := st.Delete(ctx, ids[1]); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := st.Get(ctx, ids[1]); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := st.Delete(ctx, ids[1]); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	list, _ = st.List(ctx, core.Query{Kind: core.KindManual})
	if len(list) != 0 {
		t.Fatalf("deleted snapshot still listed")
	}
}

func TestSQLiteStore(t *testing.T) {
	st, err := NewSQLiteStore("file:snapshots_test?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = st.Close() }()
	exerciseStore(t, st)
}

func TestRotatingJSONLStore(t *testing.T) {
	st, err := NewRotatingJSONLStore(filepath.Join(t.TempDir(), "snapshots.jsonl"), 1, 0, 0)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = st.Close() }()
	exerciseStore(t, st)
}

func TestRotatingJSONLStore_ReplaysRotatedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshots.jsonl")
	st, err := NewRotatingJSONLStore(path, 1, 0, 0)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	big := strings.Repeat("x", 300*1024)
	var ids []string
	for i := 0; i < 4; i++ {
		s := core.New(core.KindGeneration, "", testGrid(), nil, base.Add(time.Duration(i)*time.Minute))
		s.Description = big
		ids = append(ids, s.ID)
		if err := st.Save(ctx, s); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	backups, _ := filepath.Glob(filepath.Join(dir, "snapshots-*.jsonl"))
	if len(backups) == 0 {
		t.Fatalf("expected a rotated file")
	}
	list, err := st.List(ctx, core.Query{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 4 {
		t.Fatalf("expected 4 snapshots across files, got %d", len(list))
	}
	if _, err := st.Get(ctx, ids[0]); err != nil {
		t.Fatalf("get from rotated file: %v", err)
	}
}

func TestRegisteredStores(t *testing.T) {
	st, err := core.NewStore(factory.ModuleConfig{Type: "sqlite", Conf: map[string]any{"path": "file:snapshots_factory?mode=memory&cache=shared"}})
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	_ = st.Close()

	st, err = core.NewStore(factory.ModuleConfig{Type: "jsonl", Conf: map[string]any{"path": filepath.Join(t.TempDir(), "s.jsonl")}})
	if err != nil {
		t.Fatalf("jsonl: %v", err)
	}
	_ = st.Close()

	if _, err := core.NewStore(factory.ModuleConfig{Type: "redis", Conf: map[string]any{"addr": "127.0.0.1:1"}}); err == nil {
		t.Fatal("expected ping failure for unreachable redis")
	}
}
