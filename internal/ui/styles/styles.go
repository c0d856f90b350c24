// Package styles defines the visual styling for the application.
package styles

import (
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/typesteps/typesteps/internal/models"
)

// Color definitions. Every color adapts to the terminal background, which
// ApplyTheme can pin to light or dark.
var (
	// Primary colors
	Primary   = lipgloss.AdaptiveColor{Light: "#D6336C", Dark: "#FF5FAF"}
	Secondary = lipgloss.AdaptiveColor{Light: "#5F3DC4", Dark: "#8787FF"}
	Subtle    = lipgloss.AdaptiveColor{Light: "#ADB5BD", Dark: "#585858"}

	// Status colors
	Success = lipgloss.AdaptiveColor{Light: "#2B8A3E", Dark: "#5FD787"}
	Error   = lipgloss.AdaptiveColor{Light: "#C92A2A", Dark: "#FF5F5F"}
	Warning = lipgloss.AdaptiveColor{Light: "#E67700", Dark: "#FFD75F"}
	Info    = lipgloss.AdaptiveColor{Light: "#1864AB", Dark: "#5FAFFF"}

	// Background colors
	BgPanel  = lipgloss.AdaptiveColor{Light: "#F1F3F5", Dark: "#262626"}
	BgAccent = lipgloss.AdaptiveColor{Light: "#E9ECEF", Dark: "#303030"}

	// Text colors
	TextPrimary   = lipgloss.AdaptiveColor{Light: "#212529", Dark: "#D0D0D0"}
	TextSecondary = lipgloss.AdaptiveColor{Light: "#495057", Dark: "#8A8A8A"}
	TextMuted     = lipgloss.AdaptiveColor{Light: "#868E96", Dark: "#585858"}

	// ToastStyle for floating notifications.
	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1).
			MarginBottom(1)
)

var (
	systemDarkOnce sync.Once
	systemDark     bool
)

// ApplyTheme pins the renderer to the palette chosen in settings. ThemeSystem
// restores whatever the terminal reported before the first override.
func ApplyTheme(theme models.Theme) {
	systemDarkOnce.Do(func() {
		systemDark = lipgloss.HasDarkBackground()
	})

	switch theme {
	case models.ThemeLight:
		lipgloss.SetHasDarkBackground(false)
	case models.ThemeDark:
		lipgloss.SetHasDarkBackground(true)
	default:
		lipgloss.SetHasDarkBackground(systemDark)
	}
}

// TitleStyle is used for main headings.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// SubTitleStyle is used for section headings.
var SubTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Secondary)

// DocStyle provides consistent document margins.
var DocStyle = lipgloss.NewStyle().
	Margin(1, 2).
	Padding(0, 1)

// CardStyle creates a bordered card container.
var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(1, 2).
	MarginBottom(1)

// CardTitleStyle styles card headers.
var CardTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// BigNumberStyle renders the headline keystroke count.
var BigNumberStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(TextPrimary)

// FocusedStyle is used for focused input elements.
var FocusedStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// HelpStyle is the base style for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// HelpKeyStyle styles keyboard shortcut keys.
var HelpKeyStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// HelpPanelStyle creates the help overlay panel.
var HelpPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(Primary).
	Padding(1, 3).
	Background(BgPanel)

// ModalContentStyle styles the reset confirmation dialog.
var ModalContentStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(Error).
	Padding(1, 2).
	Background(BgPanel)

// RangeSelectorStyle frames the active chart range.
var RangeSelectorStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true).
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Primary)

// LabelStyle is the left column of key/value rows.
var LabelStyle = lipgloss.NewStyle().
	Width(18).
	Foreground(TextMuted)

// ValueStyle is the right column of key/value rows.
var ValueStyle = lipgloss.NewStyle().
	Foreground(TextPrimary)

// ErrorTextStyle for error messages.
var ErrorTextStyle = lipgloss.NewStyle().
	Foreground(Error)

// SuccessTextStyle for success messages.
var SuccessTextStyle = lipgloss.NewStyle().
	Foreground(Success)

// WarningTextStyle for warning messages.
var WarningTextStyle = lipgloss.NewStyle().
	Foreground(Warning)

// InfoTextStyle for info messages.
var InfoTextStyle = lipgloss.NewStyle().
	Foreground(Info)

var (
	badgeBase = lipgloss.NewStyle().Bold(true).Padding(0, 1)

	BadgeUnstoppableStyle = badgeBase.Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1C1C1C"}).Background(Primary)
	BadgeConsistentStyle  = badgeBase.Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1C1C1C"}).Background(Success)
	BadgeGoalGetterStyle  = badgeBase.Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1C1C1C"}).Background(Info)
	BadgeRisingStyle      = badgeBase.Foreground(TextSecondary).Background(BgAccent)
)

// FlowStyle marks the in-flow indicator.
var FlowStyle = lipgloss.NewStyle().
	Foreground(Success).
	Bold(true)

// GetBadgeStyle returns the style for a productivity badge.
func GetBadgeStyle(badge models.Badge) lipgloss.Style {
	switch badge {
	case models.BadgeUnstoppable:
		return BadgeUnstoppableStyle
	case models.BadgeConsistent:
		return BadgeConsistentStyle
	case models.BadgeGoalGetter:
		return BadgeGoalGetterStyle
	default:
		return BadgeRisingStyle
	}
}

// GetGoalStyle colors a goal progress fraction: green once reached.
func GetGoalStyle(progress float64) lipgloss.Style {
	switch {
	case progress >= 1:
		return SuccessTextStyle.Bold(true)
	case progress >= 0.5:
		return InfoTextStyle
	default:
		return lipgloss.NewStyle().Foreground(TextSecondary)
	}
}

// CenterHorizontal centers content horizontally within a given width.
func CenterHorizontal(content string, width int) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(content)
}

// CenterBoth centers content both horizontally and vertically.
func CenterBoth(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Render(content)
}
