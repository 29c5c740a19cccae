package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/minesched/core/schedule"
)

// RenderChartHTML writes a standalone HTML page with one stacked bar per
// hour showing how many sites run each task.
func RenderChartHTML(w io.Writer, g *schedule.Grid, title string) error {
	if title == "" {
		title = "Hourly task occupancy"
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("%d hours, %d sites", g.GridHours, len(g.SiteOrder))}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Hour"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Sites"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)

	hours := make([]string, g.GridHours)
	for h := range hours {
		hours[h] = fmt.Sprintf("H%d", h+1)
	}
	bar.SetXAxis(hours)

	for _, task := range chartTasks(g) {
		data := make([]opts.BarData, g.GridHours)
		for h := 0; h < g.GridHours; h++ {
			n := 0
			if h < len(g.HourlyAllocation) {
				n = g.HourlyAllocation[h][task]
			}
			data[h] = opts.BarData{Value: n}
		}
		seriesOpts := []charts.SeriesOpts{charts.WithBarChartOpts(opts.BarChart{Stack: "tasks"})}
		if c := g.TaskColors[task]; c != "" {
			seriesOpts = append(seriesOpts, charts.WithItemStyleOpts(opts.ItemStyle{Color: c}))
		}
		bar.AddSeries(task, data, seriesOpts...)
	}

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// chartTasks returns every task that occupies at least one hour, sorted.
func chartTasks(g *schedule.Grid) []string {
	seen := map[string]bool{}
	for _, alloc := range g.HourlyAllocation {
		for task, n := range alloc {
			if n > 0 {
				seen[task] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
