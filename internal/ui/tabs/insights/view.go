package insights

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/typesteps/typesteps/internal/models"
	"github.com/typesteps/typesteps/internal/ui/components"
	"github.com/typesteps/typesteps/internal/ui/styles"
)

const sideBySideWidth = 100

// View renders the insights tab.
func (m *Model) View() string {
	if m.loading {
		return m.renderLoading()
	}
	if m.errorMsg != "" {
		return m.renderError()
	}
	if !m.data.HasData() {
		return m.renderEmpty()
	}

	sections := []string{
		m.renderHeader(),
		m.renderFlowCard(),
		m.renderRecordsCard(),
		m.renderRankings(),
		m.renderCategoriesCard(),
		m.renderLibraryCard(),
		m.renderSixMonthsCard(),
		m.renderHeatmapCard(),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderLoading() string {
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(styles.HelpStyle.Render("Loading insights..."))
}

func (m *Model) renderError() string {
	content := fmt.Sprintf("%s %s",
		styles.ErrorTextStyle.Render("Error:"),
		m.errorMsg,
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("Insights"),
		"",
		styles.HelpStyle.Render("Nothing counted yet."),
		styles.HelpStyle.Render("Insights will appear as keystrokes are recorded."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

func card(width int, icon, title string, body ...string) string {
	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render(icon)
	rows := append([]string{fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render(title)), ""}, body...)
	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func row(label, value string) string {
	return styles.LabelStyle.Render(label+":") + " " + styles.ValueStyle.Render(value)
}

func indent(block string) []string {
	var out []string
	for line := range strings.SplitSeq(block, "\n") {
		out = append(out, "  "+line)
	}
	return out
}

func (m *Model) renderHeader() string {
	d := m.data
	title := styles.TitleStyle.Render("Insights")

	parts := []string{title}
	if d.Badge != "" {
		parts = append(parts, "  ", styles.GetBadgeStyle(d.Badge).Render(string(d.Badge)))
	}
	parts = append(parts, "  ", styles.WarningTextStyle.Render(fmt.Sprintf("🔥 %d day streak", d.Streak)))

	header := lipgloss.JoinHorizontal(lipgloss.Center, parts...)

	var subtitle string
	if !m.lastRefresh.IsZero() {
		subtitle = styles.HelpStyle.Render(fmt.Sprintf("%s keystrokes all time · updated %s",
			humanize.Comma(int64(d.AllTime)), humanize.Time(m.lastRefresh)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle, "")
}

func (m *Model) renderFlowCard() string {
	d := m.data
	cardWidth := m.cardWidth()

	status := styles.HelpStyle.Render("○ not in flow")
	if d.InFlow {
		status = styles.FlowStyle.Render("◉ in flow")
	}

	body := []string{
		fmt.Sprintf("%s   %s", status, styles.ValueStyle.Render(fmt.Sprintf("%d keystrokes/min", d.KPM))),
		"",
		"  " + components.RenderFlowSparkline(d.RecentMinutes, max(cardWidth-8, 10)),
		"",
		"  " + components.RenderLegend([]components.LegendItem{
			{Label: fmt.Sprintf("over %d/min", components.FlowMinuteThreshold), Color: styles.Success},
			{Label: "quieter minute", Color: styles.TextMuted},
		}),
	}

	return card(cardWidth, "⚡", fmt.Sprintf("Last %d Minutes", len(d.RecentMinutes)), body...)
}

func (m *Model) renderRecordsCard() string {
	d := m.data

	body := []string{
		row("Peak hour", fmt.Sprintf("%02d:00-%02d:00 (%s)", d.PeakHour.Hour, (d.PeakHour.Hour+1)%24,
			humanize.Comma(int64(d.PeakHour.Count)))),
		row("Avg per hour", fmt.Sprintf("%.0f", d.AveragePerHour)),
		row("Best day", dayValue(&d.BestDay)),
		row("Quietest day", dayValue(d.QuietestDay)),
		row("Best this week", dayValue(d.BestThisWeek)),
	}

	return card(m.cardWidth(), "🏆", "Records", body...)
}

func dayValue(d *models.DayCount) string {
	if d == nil || d.Day == "" {
		return "—"
	}
	return fmt.Sprintf("%s (%s)", d.Day, humanize.Comma(int64(d.Count)))
}

func (m *Model) renderRankings() string {
	cardWidth := m.cardWidth()
	half := cardWidth
	if m.width >= sideBySideWidth {
		half = cardWidth/2 - 1
	}

	apps := rankedBody(m.data.TopApps, half-8, "No applications yet")
	projects := rankedBody(m.data.TopProjects, half-8, "No projects detected")

	appsCard := card(half, "▣", "Top Applications", apps...)
	projectsCard := card(half, "◧", "Top Projects", projects...)

	if m.width >= sideBySideWidth {
		return lipgloss.JoinHorizontal(lipgloss.Top, appsCard, " ", projectsCard)
	}
	return lipgloss.JoinVertical(lipgloss.Left, appsCard, projectsCard)
}

func rankedBody(entries []models.RankedEntry, width int, empty string) []string {
	if len(entries) == 0 {
		return []string{styles.HelpStyle.Render("  " + empty)}
	}
	return indent(components.RenderRankedBars(entries, max(width, 20)))
}

func (m *Model) renderCategoriesCard() string {
	cats := m.data.Categories
	if len(cats) == 0 {
		return card(m.cardWidth(), "◔", "Categories", styles.HelpStyle.Render("  No categorized activity yet"))
	}
	return card(m.cardWidth(), "◔", "Categories", indent(components.RenderCategoryBars(cats, m.cardWidth()-8))...)
}

func (m *Model) renderLibraryCard() string {
	var body []string
	for _, p := range m.data.Library {
		body = append(body, "  "+components.RenderLibraryRow(p, m.cardWidth()-8))
	}
	return card(m.cardWidth(), "📚", "Library Equivalents", body...)
}

func (m *Model) renderSixMonthsCard() string {
	return card(m.cardWidth(), "📅", "Last 6 Months",
		indent(components.RenderBarChart(m.data.SixMonths, m.cardWidth()-8))...)
}

func (m *Model) renderHeatmapCard() string {
	peak := lipgloss.NewStyle().Bold(true).Foreground(styles.Primary).
		Render(fmt.Sprintf("%02d:00", m.data.PeakHour.Hour))

	body := []string{
		"  " + components.RenderHourlyHeatmap(m.data.Hourly),
		"",
		"  Busiest hour overall: " + peak,
	}
	return card(m.cardWidth(), "🕐", "Today by Hour", body...)
}
