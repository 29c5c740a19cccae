// Package plugins links every built-in module implementation into the
// binary so that config type names resolve.
package plugins

import (
	_ "github.com/kilianp07/minesched/infra/metrics"
	_ "github.com/kilianp07/minesched/infra/roster"
	_ "github.com/kilianp07/minesched/infra/snapshot"

	coremetrics "github.com/kilianp07/minesched/core/metrics"
	"github.com/kilianp07/minesched/core/roster"
	"github.com/kilianp07/minesched/core/snapshot"
)

// Catalog lists the module types available per config section.
type Catalog struct {
	Roster   []string `json:"roster"`
	Snapshot []string `json:"snapshot"`
	Metrics  []string `json:"metrics"`
}

// Available returns the registered module types.
func Available() Catalog {
	return Catalog{
		Roster:   roster.ReaderTypes(),
		Snapshot: snapshot.StoreTypes(),
		Metrics:  coremetrics.SinkTypes(),
	}
}
