package snapshot

import (
	"context"
	"time"

	"github.com/kilianp07/minesched/core/metrics"
)

// Instrumented reports Save and Delete outcomes of a store to a recorder.
type Instrumented struct {
	Store
	rec     metrics.SnapshotRecorder
	backend string
}

// Instrument wraps st. A nil recorder returns st unchanged.
func Instrument(st Store, rec metrics.SnapshotRecorder, backend string) Store {
	if rec == nil {
		return st
	}
	return &Instrumented{Store: st, rec: rec, backend: backend}
}

func (i *Instrumented) Save(ctx context.Context, s Snapshot) error {
	err := i.Store.Save(ctx, s)
	_ = i.rec.RecordSnapshot(metrics.SnapshotEvent{Op: "save", Kind: string(s.Kind), Backend: i.backend, Err: err, Time: time.Now()})
	return err
}

func (i *Instrumented) Delete(ctx context.Context, id string) error {
	err := i.Store.Delete(ctx, id)
	_ = i.rec.RecordSnapshot(metrics.SnapshotEvent{Op: "delete", Backend: i.backend, Err: err, Time: time.Now()})
	return err
}
