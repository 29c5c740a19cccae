package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kilianp07/minesched/core/metrics"
)

type recorder struct{ events []metrics.SnapshotEvent }

func (r *recorder) RecordSnapshot(ev metrics.SnapshotEvent) error {
	r.events = append(r.events, ev)
	return nil
}

func TestInstrumentRecordsOperations(t *testing.T) {
	rec := &recorder{}
	st := Instrument(NewMemoryStore(0), rec, "memory")
	ctx := context.Background()

	s := New(KindManual, "x", nil, nil, time.Now())
	if err := st.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := st.Delete(ctx, s.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := st.Delete(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(rec.events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(rec.events))
	}
	if e := rec.events[0]; e.Op != "save" || e.Kind != "manual" || e.Backend != "memory" || e.Err != nil {
		t.Fatalf("unexpected save event %+v", e)
	}
	if e := rec.events[2]; e.Op != "delete" || !errors.Is(e.Err, ErrNotFound) {
		t.Fatalf("unexpected delete event %+v", e)
	}
}

func TestInstrumentNilRecorder(t *testing.T) {
	st := NewMemoryStore(0)
	if got := Instrument(st, nil, "memory"); got != Store(st) {
		t.Fatal("nil recorder should return the store unchanged")
	}
}
