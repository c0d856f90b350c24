package settings

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/typesteps/typesteps/internal/models"
	"github.com/typesteps/typesteps/internal/ui/styles"
	"github.com/typesteps/typesteps/internal/version"
)

// View renders the settings tab.
func (m *Model) View() string {
	if m.confirmingReset {
		return m.renderResetDialog()
	}

	sections := []string{
		m.renderTitle(),
		m.renderPreferencesCard(),
		m.renderWakaTimeCard(),
		m.renderDataCard(),
		m.renderAboutCard(),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Settings")
	subtitle := styles.HelpStyle.Render("Goal, theme, integrations and data")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 80)
}

func (m *Model) renderCard(title string, rows ...string) string {
	body := append([]string{styles.CardTitleStyle.Render(title), ""}, rows...)
	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, body...),
	)
}

// renderConfigRow renders a key-value row.
func renderConfigRow(label, value string) string {
	return styles.LabelStyle.Render(label+":") + " " + styles.ValueStyle.Render(value)
}

func hint(keys, desc string) string {
	return styles.HelpKeyStyle.Render(keys) + " " + styles.HelpStyle.Render(desc)
}

func (m *Model) renderPreferencesCard() string {
	settings := m.state.GetSettings()

	return m.renderCard("Preferences",
		renderConfigRow("Daily Goal", humanize.Comma(int64(settings.DailyGoal))+" keystrokes"),
		renderConfigRow("Theme", settings.Theme.String()),
		"",
		hint("+/-", fmt.Sprintf("goal in steps of %s (%s-%s)",
			humanize.Comma(models.DailyGoalStep),
			humanize.Comma(models.MinDailyGoal),
			humanize.Comma(models.MaxDailyGoal))),
		hint("t", "cycle theme"),
	)
}

func (m *Model) renderWakaTimeCard() string {
	settings := m.state.GetSettings()
	status := m.state.GetWakaTime()

	key := styles.WarningTextStyle.Render("not configured")
	if settings.WakaTimeAPIKey != "" {
		key = styles.SuccessTextStyle.Render(maskKey(settings.WakaTimeAPIKey))
	}

	rows := []string{styles.LabelStyle.Render("API Key:") + " " + key}

	switch {
	case m.state.IsLoading("wakatime"):
		rows = append(rows, renderConfigRow("Coded Today", "refreshing..."))
	case !status.FetchedAt.IsZero():
		rows = append(rows,
			renderConfigRow("Coded Today", fmt.Sprintf("%.0f min", status.Minutes)),
			renderConfigRow("Last Fetched", humanize.Time(status.FetchedAt)),
		)
	default:
		rows = append(rows, renderConfigRow("Coded Today", "—"))
	}
	if status.Error != "" {
		rows = append(rows, styles.ErrorTextStyle.Render("Last error: "+status.Error))
	}

	rows = append(rows, "", hint("w", "refresh now"))
	return m.renderCard("WakaTime", rows...)
}

// maskKey keeps the last four characters of an API key.
func maskKey(k string) string {
	if len(k) <= 4 {
		return "****"
	}
	return "****" + k[len(k)-4:]
}

func (m *Model) renderDataCard() string {
	if m.config == nil {
		return m.renderCard("Data", styles.HelpStyle.Render("Configuration not loaded"))
	}

	rows := []string{
		renderConfigRow("Database", m.config.DatabasePath),
		renderConfigRow("Capture Spool", valueOr(m.config.SpoolPath, "disabled")),
		renderConfigRow("Log File", valueOr(m.config.LogPath, "stderr")),
		renderConfigRow("Metrics", valueOr(m.config.MetricsAddr, "disabled")),
		renderConfigRow("Exports To", filepath.Dir(m.config.DatabasePath)),
	}
	if loaded := m.state.GetLastUpdated(); !loaded.IsZero() {
		rows = append(rows, renderConfigRow("Summary Loaded", humanize.Time(loaded)))
	}
	rows = append(rows,
		"",
		hint("e", "export JSON backup"),
		hint("c", "export daily CSV"),
		hint("X", "reset all statistics"),
	)
	return m.renderCard("Data", rows...)
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// renderAboutCard renders the version information card.
func (m *Model) renderAboutCard() string {
	return m.renderCard("About typesteps",
		renderConfigRow("Version", version.GetVersion()),
		renderConfigRow("Build Date", version.GetDate()),
		renderConfigRow("Git Commit", version.GetCommit()),
		renderConfigRow("Go Version", runtime.Version()),
		renderConfigRow("Platform", version.Platform()),
	)
}

func (m *Model) renderResetDialog() string {
	summary := m.state.GetSummary()

	dialog := styles.ModalContentStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
		styles.ErrorTextStyle.Bold(true).Render("Reset all statistics?"),
		"",
		fmt.Sprintf("%s keystrokes will be deleted.", humanize.Comma(int64(summary.AllTime))),
		styles.HelpStyle.Render("Settings are kept. Export a backup first if unsure."),
		"",
		hint("y", "reset")+"   "+hint("n/esc", "cancel"),
	))

	return styles.CenterBoth(dialog, m.width, m.height)
}
