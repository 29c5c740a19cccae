package schedule

// Allocator holds the mutable state of one generation: the per-site hour
// rows, the per-(task, hour) usage counters and each site's cursor. It is
// created fresh for every generation and never shared.
type Allocator struct {
	hours  int
	rows   map[string][]string
	usage  []map[string]int
	cursor map[string]int
}

// NewAllocator returns empty state for a grid of the given size.
func NewAllocator(gridHours int) *Allocator {
	usage := make([]map[string]int, gridHours)
	for h := range usage {
		usage[h] = make(map[string]int)
	}
	return &Allocator{
		hours:  gridHours,
		rows:   make(map[string][]string),
		usage:  usage,
		cursor: make(map[string]int),
	}
}

// Row returns the hour row of site, creating an empty one if needed.
func (a *Allocator) Row(site string) []string {
	r, ok := a.rows[site]
	if !ok {
		r = make([]string, a.hours)
		a.rows[site] = r
	}
	return r
}

// Cursor returns the next hour the site may use.
func (a *Allocator) Cursor(site string) int { return a.cursor[site] }

// Usage returns how many sites run task at hour.
func (a *Allocator) Usage(task string, hour int) int {
	if hour < 0 || hour >= a.hours {
		return 0
	}
	return a.usage[hour][task]
}

// Place assigns task to up to hours free cells of site, scanning forward
// from the site's cursor. Delayed cells, filled cells and hours where the
// task already runs on limit sites are skipped; the cursor always moves
// forward. It returns the number of hours placed, which is less than hours
// when the grid is exhausted.
func (a *Allocator) Place(site, task string, hours, limit int, delays *DelayMap) int {
	row := a.Row(site)
	placed := 0
	h := a.cursor[site]
	for placed < hours && h < a.hours {
		switch {
		case delays.Blocked(site, h):
		case row[h] != "":
		case a.usage[h][task] >= limit:
		default:
			row[h] = task
			a.usage[h][task]++
			placed++
		}
		h++
	}
	a.cursor[site] = h
	return placed
}

// Rows returns copies of every site row.
func (a *Allocator) Rows() map[string][]string {
	out := make(map[string][]string, len(a.rows))
	for site, r := range a.rows {
		c := make([]string, len(r))
		copy(c, r)
		out[site] = c
	}
	return out
}

// HourlyUsage returns a copy of the per-hour task counters without zero entries.
func (a *Allocator) HourlyUsage() []map[string]int {
	out := make([]map[string]int, a.hours)
	for h, m := range a.usage {
		c := make(map[string]int, len(m))
		for k, v := range m {
			if v > 0 {
				c[k] = v
			}
		}
		out[h] = c
	}
	return out
}
