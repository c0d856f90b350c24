// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"github.com/typesteps/typesteps/internal/models"
	"github.com/typesteps/typesteps/internal/ui/styles"
)

// FlowMinuteThreshold is the per-minute count above which a sparkline cell
// is drawn as an active flow minute.
const FlowMinuteThreshold = 20

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// HeatmapBlocks are Unicode block characters for heatmaps (low to high intensity).
var HeatmapBlocks = []rune{'░', '▒', '▓', '█'}

// Values extracts the counts of a series as floats for plotting.
func Values(points []models.ChartPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = float64(p.Count)
	}
	return out
}

func maxCount(points []models.ChartPoint) int {
	peak := 0
	for _, p := range points {
		peak = max(peak, p.Count)
	}
	return peak
}

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(points []models.ChartPoint, width, height int, caption string) string {
	if len(points) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	width = max(width, 20)
	height = max(height, 3)

	return asciigraph.Plot(Values(points),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.LowerBound(0),
		asciigraph.Precision(0),
		asciigraph.SeriesColors(asciigraph.HotPink),
		asciigraph.Caption(caption),
	)
}

// RenderBarChart creates a horizontal bar chart with one row per point.
func RenderBarChart(points []models.ChartPoint, width int) string {
	if len(points) == 0 {
		return ""
	}

	peak := max(maxCount(points), 1)

	labelWidth := 0
	for _, p := range points {
		labelWidth = max(labelWidth, lipgloss.Width(p.Label))
	}

	barWidth := max(width-labelWidth-12, 10)
	barStyle := lipgloss.NewStyle().Foreground(styles.Primary)

	lines := make([]string, 0, len(points))
	for _, p := range points {
		barLen := max(p.Count*barWidth/peak, 0)
		if p.Count > 0 && barLen == 0 {
			barLen = 1
		}

		label := strings.Repeat(" ", labelWidth-lipgloss.Width(p.Label)) + p.Label
		lines = append(lines, fmt.Sprintf("%s │%s %s",
			label,
			barStyle.Render(strings.Repeat("█", barLen)),
			humanize.Comma(int64(p.Count)),
		))
	}

	return strings.Join(lines, "\n")
}

// RenderRankedBars renders a top-N ranking as a bar chart.
func RenderRankedBars(entries []models.RankedEntry, width int) string {
	points := make([]models.ChartPoint, len(entries))
	for i, e := range entries {
		points[i] = models.ChartPoint{Label: truncate(e.Name, 24), Count: e.Count}
	}
	return RenderBarChart(points, width)
}

// RenderCategoryBars renders category totals as a bar chart.
func RenderCategoryBars(categories []models.CategoryCount, width int) string {
	points := make([]models.ChartPoint, len(categories))
	for i, c := range categories {
		points[i] = models.ChartPoint{Label: string(c.Category), Count: c.Count}
	}
	return RenderBarChart(points, width)
}

// RenderHourlyHeatmap creates a 24-hour activity heatmap.
func RenderHourlyHeatmap(hours []models.ChartPoint) string {
	counts := make([]int, 24)
	for i, p := range hours {
		if i < 24 {
			counts[i] = p.Count
		}
	}

	peak := 0
	for _, c := range counts {
		peak = max(peak, c)
	}
	if peak == 0 {
		peak = 1
	}

	var result strings.Builder
	result.WriteString("00 ")

	for i, c := range counts {
		intensity := min(c*(len(HeatmapBlocks)-1)/peak, len(HeatmapBlocks)-1)
		if c > 0 && intensity == 0 {
			intensity = 1
		}

		var style lipgloss.Style
		switch intensity {
		case 0:
			style = lipgloss.NewStyle().Foreground(styles.Subtle)
		case 1:
			style = lipgloss.NewStyle().Foreground(styles.Info)
		case 2:
			style = lipgloss.NewStyle().Foreground(styles.Secondary)
		default:
			style = lipgloss.NewStyle().Foreground(styles.Primary)
		}

		result.WriteString(style.Render(string(HeatmapBlocks[intensity])))

		// Gap at noon for readability
		if i == 11 {
			result.WriteString(" ")
		}
	}

	result.WriteString(" 23")
	return result.String()
}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(points []models.ChartPoint, width int) string {
	var result strings.Builder
	for _, idx := range sparkIndexes(points, width) {
		result.WriteRune(sparkChars[idx.level])
	}
	return result.String()
}

// RenderFlowSparkline colors minutes above the flow threshold.
func RenderFlowSparkline(points []models.ChartPoint, width int) string {
	active := lipgloss.NewStyle().Foreground(styles.Success)
	idle := lipgloss.NewStyle().Foreground(styles.TextMuted)

	var result strings.Builder
	for _, idx := range sparkIndexes(points, width) {
		style := idle
		if points[idx.point].Count > FlowMinuteThreshold {
			style = active
		}
		result.WriteString(style.Render(string(sparkChars[idx.level])))
	}
	return result.String()
}

type sparkIndex struct {
	point int
	level int
}

// sparkIndexes samples points down to width cells and maps each to a level.
func sparkIndexes(points []models.ChartPoint, width int) []sparkIndex {
	if len(points) == 0 || width <= 0 {
		return nil
	}

	peak := max(maxCount(points), 1)
	step := max(float64(len(points))/float64(width), 1)

	var out []sparkIndex
	for i := 0; i < width && int(float64(i)*step) < len(points); i++ {
		idx := int(float64(i) * step)
		level := points[idx].Count * (len(sparkChars) - 1) / peak
		out = append(out, sparkIndex{point: idx, level: min(max(level, 0), len(sparkChars)-1)})
	}
	return out
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	var parts []string
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.TerminalColor
}

func truncate(s string, n int) string {
	if lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
