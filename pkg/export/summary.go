package export

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/minesched/core/schedule"
)

// SiteUtilization is the share of a site's hours that carry a task.
type SiteUtilization struct {
	Site        string  `json:"site"`
	Active      bool    `json:"active"`
	Filled      int     `json:"filled"`
	Delayed     int     `json:"delayed"`
	Utilization float64 `json:"utilization"`
}

// Summary aggregates a grid for dashboards.
type Summary struct {
	GridHours   int               `json:"gridHours"`
	Sites       []SiteUtilization `json:"sites"`
	PlacedHours int               `json:"placedHours"`
	DelayCells  int               `json:"delayCells"`
	TaskHours   map[string]int    `json:"taskHours"`
	// Mean and StdDev cover active sites only.
	MeanUtilization   float64 `json:"meanUtilization"`
	StdDevUtilization float64 `json:"stdDevUtilization"`
	PeakHour          int     `json:"peakHour"`
	PeakSites         int     `json:"peakSites"`
}

// Summarize computes per-site utilization and its spread across active sites.
func Summarize(g *schedule.Grid) Summary {
	s := Summary{GridHours: g.GridHours, TaskHours: map[string]int{}, PeakHour: -1}
	delays := g.DelayIndex()
	var util []float64
	for _, site := range g.SiteOrder {
		su := SiteUtilization{Site: site, Active: g.SiteActive[site]}
		for h := 0; h < g.GridHours; h++ {
			if task := g.Cell(site, h); task != "" {
				su.Filled++
				s.TaskHours[task]++
			}
			if delays.Blocked(site, h) {
				su.Delayed++
			}
		}
		if g.GridHours > 0 {
			su.Utilization = float64(su.Filled) / float64(g.GridHours)
		}
		s.PlacedHours += su.Filled
		s.DelayCells += su.Delayed
		if su.Active {
			util = append(util, su.Utilization)
		}
		s.Sites = append(s.Sites, su)
	}
	switch len(util) {
	case 0:
	case 1:
		s.MeanUtilization = util[0]
	default:
		s.MeanUtilization, s.StdDevUtilization = stat.MeanStdDev(util, nil)
	}
	for h, alloc := range g.HourlyAllocation {
		n := 0
		for _, c := range alloc {
			n += c
		}
		if n > s.PeakSites {
			s.PeakHour, s.PeakSites = h, n
		}
	}
	sort.SliceStable(s.Sites, func(i, j int) bool { return s.Sites[i].Utilization > s.Sites[j].Utilization })
	return s
}
