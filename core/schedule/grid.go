package schedule

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/kilianp07/minesched/core/model"
)

// Row is one site's hour slots. Empty slots encode as JSON null.
type Row []string

// MarshalJSON encodes empty slots as null.
func (r Row) MarshalJSON() ([]byte, error) {
	out := make([]*string, len(r))
	for i := range r {
		if r[i] != "" {
			out[i] = &r[i]
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts null or "" for empty slots.
func (r *Row) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*r = nil
		return nil
	}
	var in []*string
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	out := make(Row, len(in))
	for i, v := range in {
		if v != nil {
			out[i] = *v
		}
	}
	*r = out
	return nil
}

// Unscheduled records a task occurrence that did not fit in the horizon.
type Unscheduled struct {
	Site      string `json:"site"`
	Task      string `json:"task"`
	Iteration int    `json:"iteration"`
	// Hours is the part of the duration left unplaced.
	Hours int `json:"hours"`
}

// Grid is the result of one generation.
type Grid struct {
	Grid             map[string]Row    `json:"grid"`
	GridHours        int               `json:"gridHours"`
	SiteOrder        []string          `json:"siteOrder"`
	SitePriority     map[string]int    `json:"sitePriority"`
	SiteActive       map[string]bool   `json:"siteActive"`
	TaskColors       map[string]string `json:"taskColors"`
	TaskLimits       map[string]int    `json:"taskLimits"`
	HourlyAllocation []map[string]int  `json:"hourlyAllocation"`
	Shifts           []model.ShiftInfo `json:"shifts"`
	AllDelays        []model.Delay     `json:"allDelays"`
	Warnings         []Warning         `json:"warnings"`
	Unscheduled      []Unscheduled     `json:"unscheduled"`
	GeneratedAt      time.Time         `json:"generatedAt"`
}

// FilledCells counts slots holding a task.
func (g *Grid) FilledCells() int {
	n := 0
	for _, r := range g.Grid {
		for _, c := range r {
			if c != "" {
				n++
			}
		}
	}
	return n
}

// ActiveSites counts the active sites of the grid.
func (g *Grid) ActiveSites() int {
	n := 0
	for _, a := range g.SiteActive {
		if a {
			n++
		}
	}
	return n
}

// Cell returns the task at (site, hour) or "".
func (g *Grid) Cell(site string, hour int) string {
	r := g.Grid[site]
	if hour < 0 || hour >= len(r) {
		return ""
	}
	return r[hour]
}

// DelayIndex rebuilds a lookup over the stored delay list, for replayed grids.
func (g *Grid) DelayIndex() *DelayMap {
	m := &DelayMap{gridHours: g.GridHours, cells: make(map[cellKey][]model.Delay)}
	for _, d := range g.AllDelays {
		m.add(d)
	}
	return m
}

// assembly carries everything the assembler packages.
type assembly struct {
	hours       int
	sites       []model.Site
	tasks       []model.Task
	shifts      []model.Shift
	alloc       *Allocator
	delays      *DelayMap
	limitOf     func(model.Task) int
	warnings    []Warning
	unscheduled []Unscheduled
	now         time.Time
}

func assemble(a assembly) *Grid {
	g := &Grid{
		Grid:             make(map[string]Row, len(a.sites)),
		GridHours:        a.hours,
		SiteOrder:        make([]string, 0, len(a.sites)),
		SitePriority:     make(map[string]int, len(a.sites)),
		SiteActive:       make(map[string]bool, len(a.sites)),
		TaskColors:       make(map[string]string, len(a.tasks)),
		TaskLimits:       make(map[string]int, len(a.tasks)),
		HourlyAllocation: a.alloc.HourlyUsage(),
		Shifts:           make([]model.ShiftInfo, 0, len(a.shifts)),
		AllDelays:        a.delays.All(),
		Warnings:         a.warnings,
		Unscheduled:      a.unscheduled,
		GeneratedAt:      a.now.UTC(),
	}
	rows := a.alloc.Rows()
	for _, s := range a.sites {
		row, ok := rows[s.ID]
		if !ok {
			row = make([]string, a.hours)
		}
		g.Grid[s.ID] = Row(row)
		g.SiteOrder = append(g.SiteOrder, s.ID)
		g.SitePriority[s.ID] = s.Priority
		g.SiteActive[s.ID] = s.Active
	}
	for _, t := range a.tasks {
		color := t.Color
		if color == "" {
			color = DefaultTaskColor
		}
		g.TaskColors[t.ID] = color
		g.TaskLimits[t.ID] = a.limitOf(t)
	}
	for _, sh := range a.shifts {
		g.Shifts = append(g.Shifts, sh.Info())
	}
	if g.Warnings == nil {
		g.Warnings = []Warning{}
	}
	if g.Unscheduled == nil {
		g.Unscheduled = []Unscheduled{}
	}
	if g.AllDelays == nil {
		g.AllDelays = []model.Delay{}
	}
	return g
}
