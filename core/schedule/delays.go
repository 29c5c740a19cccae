package schedule

import (
	"fmt"
	"sort"

	"github.com/kilianp07/minesched/core/model"
)

// Default colors for delays without an explicit one.
const (
	DefaultDelayColor       = "#ff6b6b"
	DefaultShiftChangeColor = "#ffa500"
	shiftChangeCategory     = "Operational"
)

type cellKey struct {
	site string
	hour int
}

// DelayMap indexes delays by (site, hour). A cell may hold several delays;
// insertion order is preserved and explicit delays precede automatic ones.
type DelayMap struct {
	gridHours int
	cells     map[cellKey][]model.Delay
	all       []model.Delay
}

// BuildDelayMap expands explicit delay slots and generates shift changeover
// delays for every active site. Slots targeting model.AllSites fan out to
// all active sites; slots with a duration above one cover consecutive hours.
// Cells outside the grid are dropped.
func BuildDelayMap(slots []model.DelaySlot, shifts []model.Shift, activeSites []string, gridHours int, catalog map[string]model.DelayCode) *DelayMap {
	m := &DelayMap{gridHours: gridHours, cells: make(map[cellKey][]model.Delay)}
	for _, s := range slots {
		targets := []string{s.Row}
		if s.Row == model.AllSites {
			targets = activeSites
		}
		span := s.Duration
		if span < 1 {
			span = 1
		}
		color := s.Color
		if color == "" {
			color = catalog[s.Code].Color
		}
		if color == "" {
			color = DefaultDelayColor
		}
		for _, site := range targets {
			if site == "" {
				continue
			}
			for h := s.HourIndex; h < s.HourIndex+span; h++ {
				m.add(model.Delay{
					Site:     site,
					Hour:     h,
					Category: s.Category,
					Code:     s.Code,
					Comments: s.Comments,
					Color:    color,
				})
			}
		}
	}

	changeovers := changeoverHours(shifts, gridHours)
	hours := make([]int, 0, len(changeovers))
	for h := range changeovers {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	for _, site := range activeSites {
		for _, h := range hours {
			sh := changeovers[h]
			m.add(model.Delay{
				Site:        site,
				Hour:        h,
				Category:    shiftChangeCategory,
				Code:        model.ShiftChangeCode,
				Comments:    fmt.Sprintf("Shift changeover for %s (%d min)", sh.Code, sh.ChangeoverMinutes),
				Color:       DefaultShiftChangeColor,
				IsAutomatic: true,
				ShiftCode:   sh.Code,
			})
		}
	}
	return m
}

// changeoverHours returns the grid hours blocked by shift handovers: the hour
// before each shift start, repeated every 24 hours while inside the grid.
// When several shifts map to the same hour the first one wins.
func changeoverHours(shifts []model.Shift, gridHours int) map[int]model.Shift {
	out := make(map[int]model.Shift)
	for _, sh := range shifts {
		if sh.ChangeoverMinutes <= 0 {
			continue
		}
		start, err := sh.StartHour()
		if err != nil {
			continue
		}
		blocked := (start - 1 + 24) % 24
		for h := blocked; h < gridHours; h += 24 {
			if _, ok := out[h]; !ok {
				out[h] = sh
			}
		}
	}
	return out
}

func (m *DelayMap) add(d model.Delay) {
	if d.Hour < 0 || d.Hour >= m.gridHours {
		return
	}
	k := cellKey{d.Site, d.Hour}
	m.cells[k] = append(m.cells[k], d)
	m.all = append(m.all, d)
}

// Blocked reports whether any delay covers the cell.
func (m *DelayMap) Blocked(site string, hour int) bool {
	if m == nil {
		return false
	}
	return len(m.cells[cellKey{site, hour}]) > 0
}

// At returns the delays covering the cell in insertion order.
func (m *DelayMap) At(site string, hour int) []model.Delay {
	if m == nil {
		return nil
	}
	return m.cells[cellKey{site, hour}]
}

// Primary returns the delay to display for a cell, preferring manual delays.
func (m *DelayMap) Primary(site string, hour int) (model.Delay, bool) {
	ds := m.At(site, hour)
	if len(ds) == 0 {
		return model.Delay{}, false
	}
	for _, d := range ds {
		if !d.IsAutomatic {
			return d, true
		}
	}
	return ds[0], true
}

// All returns every delay, explicit first, in insertion order.
func (m *DelayMap) All() []model.Delay {
	if m == nil {
		return nil
	}
	out := make([]model.Delay, len(m.all))
	copy(out, m.all)
	return out
}

// Len returns the number of delay entries.
func (m *DelayMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.all)
}
