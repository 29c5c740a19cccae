package events

import (
	"time"

	"github.com/kilianp07/minesched/core/schedule"
)

// Generation is published once per Engine.Generate call.
type Generation struct {
	ID        string
	GridHours int
	// Grid is nil when Err is set.
	Grid    *schedule.Grid
	Elapsed time.Duration
	Err     error
	Time    time.Time
	// Source tells API, CLI and scheduled runs apart.
	Source string
	// SnapshotID is set when the grid was persisted.
	SnapshotID string
}

// Failed reports whether the generation returned an error.
func (g Generation) Failed() bool { return g.Err != nil }
