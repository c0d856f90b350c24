package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/typesteps/typesteps/internal/logger"
	"github.com/typesteps/typesteps/internal/models"
	"github.com/typesteps/typesteps/internal/ui/styles"
)

const (
	gradientFrom = "#5f87ff"
	gradientTo   = "#ff5faf"
)

// GoalBar renders today's progress toward the daily goal. Changes animate
// through the progress model's spring.
type GoalBar struct {
	progress progress.Model
	fraction float64
}

// NewGoalBar creates a goal bar with the application gradient.
func NewGoalBar(width int) GoalBar {
	p := progress.New(
		progress.WithScaledGradient(gradientFrom, gradientTo),
		progress.WithWidth(max(width, 10)),
		progress.WithoutPercentage(),
	)
	return GoalBar{progress: p}
}

// Update forwards animation frames to the progress model.
func (g GoalBar) Update(msg tea.Msg) (GoalBar, tea.Cmd) {
	model, cmd := g.progress.Update(msg)
	if p, ok := model.(progress.Model); ok {
		g.progress = p
	}
	return g, cmd
}

// SetProgress animates toward count/goal. The bar saturates at a full goal.
func (g *GoalBar) SetProgress(fraction float64) tea.Cmd {
	g.fraction = fraction
	return g.progress.SetPercent(min(max(fraction, 0), 1))
}

// Fraction returns the last unclamped fraction set.
func (g GoalBar) Fraction() float64 {
	return g.fraction
}

// SetWidth sets the progress bar width.
func (g *GoalBar) SetWidth(width int) {
	g.progress.Width = max(width, 10)
}

// View renders the bar followed by "count / goal (pct)".
func (g GoalBar) View(count, goal int) string {
	label := fmt.Sprintf("%s / %s", humanize.Comma(int64(count)), humanize.Comma(int64(goal)))
	pct := styles.GetGoalStyle(g.fraction).Render(fmt.Sprintf("%.0f%%", g.fraction*100))
	return lipgloss.JoinHorizontal(lipgloss.Center,
		g.progress.View(),
		"  ",
		styles.ValueStyle.Render(label),
		" ",
		pct,
	)
}

// RenderGradientBar renders a static gradient bar filled to fraction (0-1).
func RenderGradientBar(fraction float64, width int) string {
	if width < 1 {
		return ""
	}

	filled := min(max(int(float64(width)*fraction), 0), width)

	var b strings.Builder
	for i := range width {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor(gradientFrom, gradientTo, t)
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("█"))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Subtle).Render("░"))
		}
	}
	return b.String()
}

// RenderLibraryRow renders one book milestone: label, bar and completions.
func RenderLibraryRow(p models.LibraryProgress, width int) string {
	const (
		labelWidth = 26
		tailWidth  = 8
	)

	barWidth := max(width-labelWidth-tailWidth-2, 10)

	label := styles.LabelStyle.Width(labelWidth).Render(truncate(p.Label, labelWidth-1))

	tail := ""
	switch {
	case p.Iterations > 1:
		tail = styles.SuccessTextStyle.Render(fmt.Sprintf("×%d", p.Iterations))
	case p.Iterations == 1:
		tail = styles.SuccessTextStyle.Render("done")
	default:
		tail = styles.HelpStyle.Render(fmt.Sprintf("%.0f%%", p.Progress*100))
	}

	return lipgloss.JoinHorizontal(lipgloss.Left,
		label,
		RenderGradientBar(p.Progress, barWidth),
		" ",
		lipgloss.NewStyle().Width(tailWidth).Align(lipgloss.Right).Render(tail),
	)
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
