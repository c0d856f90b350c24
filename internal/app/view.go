package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/typesteps/typesteps/internal/ui/styles"
)

// toastTop is the first row the toast stack is drawn on, just below the navbar.
const toastTop = 2

// Styles holds the root model's styles.
type Styles struct {
	TabBar      lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style
	Content     lipgloss.Style
	Toast       lipgloss.Style
	Title       lipgloss.Style
	Subtle      lipgloss.Style
	Highlight   lipgloss.Style
	Live        lipgloss.Style

	toasts map[NotificationType]toastKind
}

type toastKind struct {
	style  lipgloss.Style
	prefix string
}

// DefaultStyles builds the styles from the current palette.
func DefaultStyles() Styles {
	toast := func(c lipgloss.TerminalColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c).Padding(0, 1)
	}

	return Styles{
		TabBar: lipgloss.NewStyle().Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(styles.Subtle),
		ActiveTab:   lipgloss.NewStyle().Bold(true).Foreground(styles.Primary).Padding(0, 2),
		InactiveTab: lipgloss.NewStyle().Foreground(styles.TextMuted).Padding(0, 2),
		Content:     lipgloss.NewStyle().Padding(1, 2),
		Toast:       styles.ToastStyle,
		Title:       lipgloss.NewStyle().Bold(true).Foreground(styles.Primary),
		Subtle:      lipgloss.NewStyle().Foreground(styles.TextMuted),
		Highlight:   lipgloss.NewStyle().Foreground(styles.Secondary),
		Live:        lipgloss.NewStyle().Foreground(styles.Success),

		toasts: map[NotificationType]toastKind{
			NotificationSuccess: {toast(styles.Success), "[OK]"},
			NotificationError:   {toast(styles.Error).Bold(true), "[ERR]"},
			NotificationWarning: {toast(styles.Warning), "[WARN]"},
			NotificationInfo:    {toast(styles.Info), "[INFO]"},
			NotificationLoading: {toast(styles.Info), ""},
		},
	}
}

// View renders the navbar, the active tab and any overlays.
func (m *Model) View() string {
	var b strings.Builder
	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
	}

	if !m.ready {
		b.WriteString(m.styles.Content.Render(m.spinner.View() + " Loading..."))
		return b.String()
	}

	if tab := m.active(); tab != nil {
		b.WriteString(tab.View())
	} else {
		b.WriteString(m.renderPlaceholder())
	}

	view := b.String()
	if m.showHelp {
		help := m.renderHelp()
		lines := strings.Split(help, "\n")
		x := max((m.width-lipgloss.Width(help))/2, 0)
		y := max((m.height-len(lines))/2, 0)
		view = overlay(view, lines, x, y, m.height)
	}
	if toasts := m.renderNotifications(); len(toasts) > 0 {
		stack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
		x := max(m.width-lipgloss.Width(stack)-2, 0)
		view = overlay(view, strings.Split(stack, "\n"), x, toastTop, 0)
	}
	return view
}

// overlay draws block over base with its top-left corner at column x and
// row y. base is padded to at least minRows so the block always lands.
func overlay(base string, block []string, x, y, minRows int) string {
	lines := strings.Split(base, "\n")
	for len(lines) < max(minRows, y+len(block)) {
		lines = append(lines, "")
	}

	width := 0
	for _, l := range block {
		width = max(width, lipgloss.Width(l))
	}

	for i, l := range block {
		row := lines[y+i]
		left := ansi.Truncate(row, x, "")
		if pad := x - lipgloss.Width(left); pad > 0 {
			left += strings.Repeat(" ", pad)
		}
		lines[y+i] = left + l + ansi.TruncateLeft(row, x+width, "")
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderNavbar() string {
	names := make([]string, 0, len(m.tabs))
	for i := range len(m.tabs) {
		id := TabID(i)
		if id == m.activeTab {
			names = append(names, m.styles.ActiveTab.Render(fmt.Sprintf("[%d] %s", i+1, id)))
		} else {
			names = append(names, m.styles.InactiveTab.Render(fmt.Sprintf(" %d  %s", i+1, id)))
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, names...)

	today := humanize.Comma(int64(m.state.GetSummary().Today))
	live := m.styles.Live.Render("●") + " " + m.styles.Subtle.Render(today+" today")
	gap := max(m.width-lipgloss.Width(bar)-lipgloss.Width(live)-4, 1)

	return m.styles.TabBar.Width(m.width).Render(bar + strings.Repeat(" ", gap) + live)
}

func (m *Model) renderNotifications() []string {
	var toasts []string
	for _, n := range m.state.GetNotifications() {
		kind := m.styles.toasts[n.Type]
		prefix := kind.prefix
		if n.Type == NotificationLoading {
			prefix = m.spinner.View()
		}
		toasts = append(toasts, m.styles.Toast.Render(kind.style.Render(prefix+" "+n.Message)))
	}
	return toasts
}

func (m *Model) renderHelp() string {
	lines := []string{m.styles.Title.Render("Keyboard Shortcuts"), ""}

	section := func(title string, bindings []key.Binding) {
		if len(bindings) == 0 {
			return
		}
		lines = append(lines, m.styles.Highlight.Render(title))
		for _, b := range bindings {
			lines = append(lines, fmt.Sprintf("  %-12s %s", b.Help().Key, b.Help().Desc))
		}
		lines = append(lines, "")
	}

	global := m.keymap.FullHelp()
	section("Navigation", global[0])
	section("Actions", global[1])
	if tab := m.active(); tab != nil {
		section(m.activeTab.String(), tab.ShortHelp())
	}

	lines = append(lines, m.styles.Subtle.Render("Press ? or Esc to close"))
	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderPlaceholder() string {
	return m.styles.Content.Render(fmt.Sprintf("Tab %d: %s\n\n%s",
		m.activeTab+1, m.activeTab, m.styles.Subtle.Render("This tab is not available.")))
}
