// Package roster holds the master data a generation reads: sites, tasks,
// units of measure, constants, shifts and the delay catalog.
package roster

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/minesched/core/model"
	"github.com/kilianp07/minesched/core/schedule"
)

// Task limits accepted by Validate. Zero means "use the default".
const (
	MinTaskLimit = 1
	MaxTaskLimit = 10
)

// Roster is a consistent snapshot of the master data.
type Roster struct {
	Sites      []model.Site          `json:"sites" yaml:"sites"`
	Tasks      []model.Task          `json:"tasks" yaml:"tasks"`
	UOMs       []model.UnitOfMeasure `json:"uoms" yaml:"uoms"`
	Constants  []model.Constant      `json:"constants" yaml:"constants"`
	Shifts     []model.Shift         `json:"shifts" yaml:"shifts"`
	DelayCodes []model.DelayCode     `json:"delayCodes" yaml:"delay_codes"`
}

// Reader loads a roster from its backing source.
type Reader interface {
	Load(ctx context.Context) (Roster, error)
}

// Active returns a copy keeping only active constants, shifts and delay
// codes. Sites and tasks are kept as is; the engine handles inactive sites.
func (r Roster) Active() Roster {
	out := Roster{
		Sites: append([]model.Site(nil), r.Sites...),
		Tasks: append([]model.Task(nil), r.Tasks...),
		UOMs:  append([]model.UnitOfMeasure(nil), r.UOMs...),
	}
	for _, c := range r.Constants {
		if c.Active {
			out.Constants = append(out.Constants, c)
		}
	}
	for _, s := range r.Shifts {
		if s.Active {
			out.Shifts = append(out.Shifts, s)
		}
	}
	for _, d := range r.DelayCodes {
		if d.Active {
			out.DelayCodes = append(out.DelayCodes, d)
		}
	}
	return out
}

// ConstantMap indexes active constants by keyword.
func (r Roster) ConstantMap() schedule.Constants {
	m := make(schedule.Constants, len(r.Constants))
	for _, c := range r.Constants {
		if c.Active {
			m[c.Keyword] = c.Value
		}
	}
	return m
}

// Input converts the active part of the roster into engine input.
func (r Roster) Input() schedule.Input {
	a := r.Active()
	return schedule.Input{
		Sites:      a.Sites,
		Tasks:      a.Tasks,
		UOMs:       a.UOMs,
		Constants:  r.ConstantMap(),
		Shifts:     a.Shifts,
		DelayCodes: a.DelayCodes,
	}
}

// Validate reports structural problems. Rates and constants are not checked
// here: the engine degrades those to warnings.
func (r Roster) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(r.Sites))
	for i, s := range r.Sites {
		switch {
		case s.ID == "":
			errs = append(errs, fmt.Errorf("site %d: empty id", i))
		case seen[s.ID]:
			errs = append(errs, fmt.Errorf("site %s: duplicate id", s.ID))
		}
		seen[s.ID] = true
		if s.Priority < 1 {
			errs = append(errs, fmt.Errorf("site %s: priority %d must be >= 1", s.ID, s.Priority))
		}
		if s.Firings < 0 {
			errs = append(errs, fmt.Errorf("site %s: negative firings", s.ID))
		}
		if s.TaskLimit != 0 && (s.TaskLimit < MinTaskLimit || s.TaskLimit > MaxTaskLimit) {
			errs = append(errs, fmt.Errorf("site %s: task limit %d out of range", s.ID, s.TaskLimit))
		}
	}

	tasks := make(map[string]bool, len(r.Tasks))
	for i, t := range r.Tasks {
		switch {
		case t.ID == "":
			errs = append(errs, fmt.Errorf("task %d: empty id", i))
		case tasks[t.ID]:
			errs = append(errs, fmt.Errorf("task %s: duplicate id", t.ID))
		}
		tasks[t.ID] = true
		if t.Limit != 0 && (t.Limit < MinTaskLimit || t.Limit > MaxTaskLimit) {
			errs = append(errs, fmt.Errorf("task %s: limit %d out of range %d..%d", t.ID, t.Limit, MinTaskLimit, MaxTaskLimit))
		}
		if t.DurationMinutes < 0 || t.Rate < 0 {
			errs = append(errs, fmt.Errorf("task %s: negative duration or rate", t.ID))
		}
	}

	for _, s := range r.Shifts {
		if _, err := s.StartHour(); err != nil {
			errs = append(errs, fmt.Errorf("shift %s: %w", s.Code, err))
		}
		if s.ChangeoverMinutes < 0 {
			errs = append(errs, fmt.Errorf("shift %s: negative changeover", s.Code))
		}
	}
	return errors.Join(errs...)
}

// Counts summarises a roster for logs and snapshot counters.
func (r Roster) Counts() (sites, activeSites, tasks int) {
	for _, s := range r.Sites {
		if s.Active {
			activeSites++
		}
	}
	return len(r.Sites), activeSites, len(r.Tasks)
}
