package dashboard

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/typesteps/typesteps/internal/models"
	"github.com/typesteps/typesteps/internal/ui/components"
	"github.com/typesteps/typesteps/internal/ui/styles"
)

const chartHeight = 10

// View renders the dashboard component.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.renderLoading()
	}

	summary := m.state.GetSummary()

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitle(summary),
		m.renderGoalCard(summary),
		m.renderTotals(summary),
		m.renderChartCard(),
	)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderLoading renders the loading state.
func (m *Model) renderLoading() string {
	return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
}

func (m *Model) renderTitle(summary models.Summary) string {
	title := styles.TitleStyle.Render("Today")

	status := styles.HelpStyle.Render(fmt.Sprintf("%d kpm", summary.KPM))
	if summary.InFlow {
		status = styles.FlowStyle.Render("◉ in flow") + "  " + status
	}
	if summary.Badge != "" {
		status = styles.GetBadgeStyle(summary.Badge).Render(string(summary.Badge)) + "  " + status
	}

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", status)
	return lipgloss.JoinVertical(lipgloss.Left, header, "")
}

func (m *Model) renderGoalCard(summary models.Summary) string {
	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows = append(rows,
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Daily Goal")),
		"",
		styles.BigNumberStyle.Render(humanize.Comma(int64(summary.Today))),
		"",
		m.goalBar.View(summary.Today, summary.Goal),
	)

	if summary.GoalProgress >= 1 {
		rows = append(rows, "", styles.SuccessTextStyle.Render("  ╰─▶ Goal reached, keep going!"))
	} else if remaining := summary.Goal - summary.Today; remaining > 0 {
		rows = append(rows, "", styles.HelpStyle.Render(fmt.Sprintf("  ╰─▶ %s to go", humanize.Comma(int64(remaining)))))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderTotals(summary models.Summary) string {
	waka := "—"
	if status := m.state.GetWakaTime(); !status.FetchedAt.IsZero() {
		waka = fmt.Sprintf("%.0f min", status.Minutes)
	}

	cells := []string{
		statCell("This Week", humanize.Comma(int64(summary.Weekly))),
		statCell("This Month", humanize.Comma(int64(summary.Monthly))),
		statCell("All Time", humanize.Comma(int64(summary.AllTime))),
		statCell("Streak", fmt.Sprintf("%d days", summary.Streak)),
		statCell("WakaTime", waka),
	}

	cellWidth := max(m.cardWidth()/len(cells)-1, 12)
	for i, c := range cells {
		cells[i] = lipgloss.NewStyle().Width(cellWidth).Render(c)
	}

	return lipgloss.NewStyle().Padding(1, 1).Render(
		lipgloss.JoinHorizontal(lipgloss.Top, cells...),
	)
}

func statCell(label, value string) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.HelpStyle.Render(label),
		styles.ValueStyle.Bold(true).Render(value),
	)
}

func (m *Model) renderChartCard() string {
	cardWidth := m.cardWidth()

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("📈")
	rangeIndicator := styles.RangeSelectorStyle.Render(fmt.Sprintf("[t] %s", m.timeRange.String()))
	rows = append(rows,
		lipgloss.JoinHorizontal(lipgloss.Center,
			fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render(chartTitle(m.timeRange))),
			"  ",
			rangeIndicator,
		),
		"",
	)

	chartWidth := max(cardWidth-16, 20)
	switch m.timeRange {
	case models.TimeRangeWeek:
		rows = append(rows, components.RenderBarChart(m.series, chartWidth))
	case models.TimeRangeMonth:
		rows = append(rows, components.RenderLineChart(m.series, chartWidth, chartHeight, "keystrokes per day"))
	default:
		rows = append(rows, components.RenderLineChart(m.series, chartWidth, chartHeight, "keystrokes per hour"))
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func chartTitle(r models.TimeRange) string {
	switch r {
	case models.TimeRangeWeek:
		return "Last 7 Days"
	case models.TimeRangeMonth:
		return "Last 30 Days"
	default:
		return "Today by Hour"
	}
}
