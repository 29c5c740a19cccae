package schedule

import (
	"sort"

	"github.com/kilianp07/minesched/core/model"
)

// CycleEntry is one task occurrence in a site's run.
type CycleEntry struct {
	Task model.Task
	// Iteration is 0 for the remainder of the current cycle and n for the
	// n-th full pass that follows.
	Iteration int
}

// SortTasks returns the tasks ordered by their ordering index, ties broken by ID.
func SortTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// BuildTaskCycle expands the task order for a site. The run starts at the
// current task and finishes the cycle; with more than one firing it is
// followed by firings-1 complete passes. An unknown current task falls back
// to the first task and reports defaulted.
func BuildTaskCycle(ordered []model.Task, current string, firings int) (cycle []CycleEntry, defaulted bool) {
	if len(ordered) == 0 {
		return nil, current != ""
	}
	start := 0
	if current != "" {
		start = -1
		for i, t := range ordered {
			if t.ID == current {
				start = i
				break
			}
		}
		if start < 0 {
			start = 0
			defaulted = true
		}
	}

	passes := 0
	if firings > 1 {
		passes = firings - 1
	}
	cycle = make([]CycleEntry, 0, len(ordered)-start+passes*len(ordered))
	for _, t := range ordered[start:] {
		cycle = append(cycle, CycleEntry{Task: t})
	}
	for p := 1; p <= passes; p++ {
		for _, t := range ordered {
			cycle = append(cycle, CycleEntry{Task: t, Iteration: p})
		}
	}
	return cycle, defaulted
}
