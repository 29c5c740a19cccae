package schedule

import (
	"fmt"

	"github.com/kilianp07/minesched/core/model"
)

// RemoveDelaySlot removes every explicit delay covering (site, hour) from
// slots so the cell is free on the next generation. Multi-hour slots are
// split around the removed hour. A slot targeting model.AllSites keeps
// blocking the other active sites at that hour through one single-hour
// slot per site in activeSites. Cells covered by an automatic delay in
// automatic are rejected with ErrAutomaticDelayRemoval and slots is
// returned unchanged.
func RemoveDelaySlot(slots []model.DelaySlot, automatic *DelayMap, activeSites []string, site string, hour int) ([]model.DelaySlot, error) {
	for _, d := range automatic.At(site, hour) {
		if d.IsAutomatic {
			return slots, fmt.Errorf("%w: %s at hour %d (%s)", ErrAutomaticDelayRemoval, site, hour, d.ShiftCode)
		}
	}
	out := make([]model.DelaySlot, 0, len(slots))
	removed := false
	for _, s := range slots {
		span := s.Duration
		if span < 1 {
			span = 1
		}
		if (s.Row != site && s.Row != model.AllSites) || hour < s.HourIndex || hour >= s.HourIndex+span {
			out = append(out, s)
			continue
		}
		removed = true
		if before := hour - s.HourIndex; before > 0 {
			b := s
			b.Duration = before
			out = append(out, b)
		}
		if s.Row == model.AllSites {
			for _, other := range activeSites {
				if other == site {
					continue
				}
				o := s
				o.Row = other
				o.HourIndex = hour
				o.Duration = 1
				out = append(out, o)
			}
		}
		if after := s.HourIndex + span - hour - 1; after > 0 {
			a := s
			a.HourIndex = hour + 1
			a.Duration = after
			out = append(out, a)
		}
	}
	if !removed {
		return slots, fmt.Errorf("%w: %s hour %d", ErrDelayNotFound, site, hour)
	}
	return out, nil
}
