// Package export renders generated grids for people and spreadsheets.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/kilianp07/minesched/core/schedule"
)

// WriteJSON writes the grid to w in JSON format.
func WriteJSON(w io.Writer, g *schedule.Grid) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}

// WriteCSV writes one line per site: priority, site, status, then one column
// per hour. Delayed cells show [SHIFT: code] for changeovers and
// [DELAY: code] for explicit delays instead of the task.
func WriteCSV(w io.Writer, g *schedule.Grid) error {
	cw := csv.NewWriter(w)
	header := []string{"Priority", "Site", "Status"}
	for h := 0; h < g.GridHours; h++ {
		header = append(header, fmt.Sprintf("Hour %d", h+1))
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	delays := g.DelayIndex()
	for _, site := range exportOrder(g) {
		status := "Inactive"
		if g.SiteActive[site] {
			status = "Active"
		}
		prio := ""
		if p := g.SitePriority[site]; p > 0 {
			prio = strconv.Itoa(p)
		}
		rec := []string{prio, site, status}
		for h := 0; h < g.GridHours; h++ {
			rec = append(rec, cellText(g, delays, site, h))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cellText(g *schedule.Grid, delays *schedule.DelayMap, site string, h int) string {
	ds := delays.At(site, h)
	for _, d := range ds {
		if d.IsAutomatic {
			return "[SHIFT: " + d.ShiftCode + "]"
		}
	}
	if len(ds) > 0 {
		return "[DELAY: " + ds[0].Code + "]"
	}
	return g.Cell(site, h)
}

// exportOrder lists active sites first, then by priority. Sites without a
// priority sort last within their group.
func exportOrder(g *schedule.Grid) []string {
	order := append([]string(nil), g.SiteOrder...)
	if len(order) == 0 {
		for site := range g.Grid {
			order = append(order, site)
		}
		sort.Strings(order)
	}
	prio := func(site string) int {
		if p := g.SitePriority[site]; p > 0 {
			return p
		}
		return 999
	}
	sort.SliceStable(order, func(i, j int) bool {
		ai, aj := g.SiteActive[order[i]], g.SiteActive[order[j]]
		if ai != aj {
			return ai
		}
		return prio(order[i]) < prio(order[j])
	})
	return order
}
