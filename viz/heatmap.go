// Package viz renders heatmaps, route groups, and sections for visual
// debugging. It has no bearing on any matching/grouping/detection
// invariant; it exists purely so the output of those packages can be
// eyeballed, mirroring the way the teacher pairs its tracking core with a
// standalone visualiser tool.
package viz

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/trailmatch/internal/heatmap"
)

// RenderHeatmapHTML writes an interactive HeatMap chart of result to w, one
// cell per (row, col) colored by normalized density.
func RenderHeatmapHTML(result *heatmap.Result, w io.Writer) error {
	hm := charts.NewHeatMap()

	rows := make(map[int]bool)
	cols := make(map[int]bool)
	for _, cell := range result.Cells {
		rows[cell.Row] = true
		cols[cell.Col] = true
	}

	yAxis := sortedKeys(rows)
	xAxis := sortedKeys(cols)
	xLabels := labelsFor(xAxis)
	yLabels := labelsFor(yAxis)
	xIndex := indexOf(xAxis)
	yIndex := indexOf(yAxis)

	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Visit density heatmap"}),
		charts.WithVisualMapOpts(opts.VisualMap{Calculable: true, Max: 1, Min: 0}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: xLabels}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: yLabels}),
	)

	data := make([]opts.HeatMapData, 0, len(result.Cells))
	for _, cell := range result.Cells {
		data = append(data, opts.HeatMapData{
			Value: [3]interface{}{xIndex[cell.Col], yIndex[cell.Row], cell.NormalizedDensity},
		})
	}
	hm.AddSeries("density", data)

	return hm.Render(w)
}

func sortedKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func labelsFor(keys []int) []string {
	labels := make([]string, len(keys))
	for i, k := range keys {
		labels[i] = fmt.Sprintf("%d", k)
	}
	return labels
}

func indexOf(keys []int) map[int]int {
	m := make(map[int]int, len(keys))
	for i, k := range keys {
		m[k] = i
	}
	return m
}
