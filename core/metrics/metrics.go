package metrics

import (
	"time"

	"github.com/kilianp07/minesched/core/schedule"
)

// GenerationEvent summarises one schedule generation.
type GenerationEvent struct {
	ID          string
	GridHours   int
	Sites       int
	ActiveSites int
	PlacedHours int
	Unscheduled int
	Warnings    map[schedule.WarningKind]int
	Elapsed     time.Duration
	Failed      bool
	Source      string
	Time        time.Time
}

// GenerationEventFrom builds an event from a grid. g may be nil for failed runs.
func GenerationEventFrom(id string, hours int, g *schedule.Grid, elapsed time.Duration, failed bool, at time.Time) GenerationEvent {
	ev := GenerationEvent{
		ID:        id,
		GridHours: hours,
		Warnings:  map[schedule.WarningKind]int{},
		Elapsed:   elapsed,
		Failed:    failed,
		Time:      at,
	}
	if g == nil {
		return ev
	}
	ev.Sites = len(g.SiteOrder)
	ev.ActiveSites = g.ActiveSites()
	ev.PlacedHours = g.FilledCells()
	ev.Unscheduled = len(g.Unscheduled)
	for _, w := range g.Warnings {
		ev.Warnings[w.Kind]++
	}
	return ev
}

// MetricsSink records generation events for observability purposes.
type MetricsSink interface {
	RecordGeneration(ev GenerationEvent) error
}

// SnapshotEvent records a snapshot store operation.
type SnapshotEvent struct {
	Op      string // save, delete
	Kind    string
	Backend string
	Err     error
	Time    time.Time
}

// SnapshotRecorder is implemented by sinks able to record snapshot operations.
type SnapshotRecorder interface {
	RecordSnapshot(ev SnapshotEvent) error
}

// PublishEvent records the outcome of broadcasting a grid.
type PublishEvent struct {
	Topics  int
	Retries int
	Err     error
	Latency time.Duration
	Time    time.Time
}

// PublishRecorder is implemented by sinks able to record grid broadcasts.
type PublishRecorder interface {
	RecordPublish(ev PublishEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordGeneration(GenerationEvent) error { return nil }
func (NopSink) RecordSnapshot(SnapshotEvent) error     { return nil }
func (NopSink) RecordPublish(PublishEvent) error       { return nil }
