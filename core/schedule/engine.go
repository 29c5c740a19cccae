package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/minesched/core/logger"
	"github.com/kilianp07/minesched/core/model"
)

const (
	// DefaultTaskColor is used for tasks without a color.
	DefaultTaskColor = "#3498db"
	// DefaultTaskLimit applies to tasks without a concurrency limit.
	DefaultTaskLimit = 2
)

// Input is the request-scoped roster snapshot consumed by the engine.
// Callers pass only active constants, shifts and delay codes.
type Input struct {
	Sites      []model.Site
	Tasks      []model.Task
	UOMs       []model.UnitOfMeasure
	Constants  Constants
	Shifts     []model.Shift
	DelayCodes []model.DelayCode
}

// Request holds the per-call generation parameters.
type Request struct {
	GridHours    int               `json:"gridHours"`
	DelayedSlots []model.DelaySlot `json:"delayedSlots"`
}

// Engine generates schedule grids. It holds no per-generation state and is
// safe for concurrent use.
type Engine struct {
	log          logger.Logger
	now          func() time.Time
	defaultLimit int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for warnings and placement traces.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithClock sets the source of the generation timestamp.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithDefaultTaskLimit sets the limit used for tasks without one.
func WithDefaultTaskLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.defaultLimit = n
		}
	}
}

// New returns an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{log: logger.NopLogger{}, now: time.Now, defaultLimit: DefaultTaskLimit}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) limitOf(t model.Task) int {
	if t.Limit > 0 {
		return t.Limit
	}
	return e.defaultLimit
}

// Generate allocates every active site's task cycle onto a fresh grid.
// Only an unsupported horizon or a cancelled context fail the call; task
// level problems are reported as warnings on the returned grid.
func (e *Engine) Generate(ctx context.Context, in Input, req Request) (*Grid, error) {
	if err := ValidateHorizon(req.GridHours); err != nil {
		return nil, err
	}
	hours := req.GridHours
	sites := SequenceSites(in.Sites)
	tasks := SortTasks(in.Tasks)
	formulas := NewFormulaTable(in.UOMs)
	taskFormula := make(map[string]Formula, len(tasks))
	for _, t := range tasks {
		taskFormula[t.ID] = formulas.Lookup(t.UOM)
	}
	catalog := make(map[string]model.DelayCode, len(in.DelayCodes))
	for _, c := range in.DelayCodes {
		catalog[c.Code] = c
	}

	var active []string
	for _, s := range sites {
		if s.Active {
			active = append(active, s.ID)
		}
	}
	delays := BuildDelayMap(req.DelayedSlots, in.Shifts, active, hours, catalog)
	alloc := NewAllocator(hours)

	var warnings []Warning
	var unscheduled []Unscheduled
	for _, site := range sites {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generation cancelled: %w", err)
		}
		alloc.Row(site.ID)
		if !site.Active {
			continue
		}
		cycle, defaulted := BuildTaskCycle(tasks, site.CurrentTask, site.Firings)
		startTask := ""
		if len(cycle) > 0 {
			startTask = cycle[0].Task.ID
		}
		if defaulted {
			w := Warning{
				Kind:    WarnUnknownCurrentTask,
				Site:    site.ID,
				Task:    site.CurrentTask,
				Message: fmt.Sprintf("%v %q, starting at %q", ErrUnknownCurrentTask, site.CurrentTask, startTask),
			}
			e.log.Warnf("site %s: %s", site.ID, w.Message)
			warnings = append(warnings, w)
		}

		overrideUsed := false
		exhausted := false
		for _, entry := range cycle {
			t := entry.Task
			var dur Duration
			if !overrideUsed && !defaulted && site.TimeToComplete > 0 && t.ID == startTask {
				dur = OverrideDuration(site.TimeToComplete)
				overrideUsed = true
			} else {
				d, err := CalculateDuration(t, taskFormula[t.ID], site, in.Constants)
				if err != nil {
					w := warningFromDuration(site.ID, err)
					e.log.Warnf("site %s: %s", site.ID, w.Message)
					warnings = append(warnings, w)
					continue
				}
				dur = d
			}
			if dur.Skip {
				continue
			}
			if exhausted {
				unscheduled = append(unscheduled, Unscheduled{Site: site.ID, Task: t.ID, Iteration: entry.Iteration, Hours: dur.Hours})
				continue
			}
			placed := alloc.Place(site.ID, t.ID, dur.Hours, e.limitOf(t), delays)
			if placed < dur.Hours {
				exhausted = true
				unscheduled = append(unscheduled, Unscheduled{Site: site.ID, Task: t.ID, Iteration: entry.Iteration, Hours: dur.Hours - placed})
			}
		}
		if n := countSite(unscheduled, site.ID); n > 0 {
			warnings = append(warnings, Warning{
				Kind:    WarnUnscheduled,
				Site:    site.ID,
				Message: fmt.Sprintf("%d task occurrence(s) did not fit in the %dh horizon", n, hours),
			})
		}
		e.log.Debugw("site allocated", map[string]any{
			"site":        site.ID,
			"priority":    site.Priority,
			"cycle":       len(cycle),
			"cursor":      alloc.Cursor(site.ID),
			"unscheduled": countSite(unscheduled, site.ID),
		})
	}

	return assemble(assembly{
		hours:       hours,
		sites:       sites,
		tasks:       tasks,
		shifts:      in.Shifts,
		alloc:       alloc,
		delays:      delays,
		limitOf:     e.limitOf,
		warnings:    warnings,
		unscheduled: unscheduled,
		now:         e.now(),
	}), nil
}

func countSite(us []Unscheduled, site string) int {
	n := 0
	for _, u := range us {
		if u.Site == site {
			n++
		}
	}
	return n
}
