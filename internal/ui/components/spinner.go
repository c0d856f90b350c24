package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/typesteps/typesteps/internal/ui/styles"
)

// LoadingSpinner wraps a bubble spinner with a label and an active flag so
// a view can keep one around and only show it while work is in flight.
type LoadingSpinner struct {
	spinner spinner.Model
	label   string
	active  bool
	style   lipgloss.Style
}

// NewSpinner creates an active loading spinner with the given label.
func NewSpinner(label string) LoadingSpinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return LoadingSpinner{
		spinner: s,
		label:   label,
		active:  true,
		style:   lipgloss.NewStyle().Foreground(styles.TextSecondary),
	}
}

// Init initializes the spinner model.
func (l LoadingSpinner) Init() tea.Cmd {
	return l.spinner.Tick
}

// Update advances the animation. Ticks stop once the spinner is inactive.
func (l LoadingSpinner) Update(msg tea.Msg) (LoadingSpinner, tea.Cmd) {
	if !l.active {
		return l, nil
	}
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return l, cmd
}

// Start activates the spinner with a new label and restarts its ticks.
func (l *LoadingSpinner) Start(label string) tea.Cmd {
	l.label = label
	l.active = true
	return l.spinner.Tick
}

// Stop hides the spinner.
func (l *LoadingSpinner) Stop() {
	l.active = false
}

// Active reports whether the spinner is shown.
func (l LoadingSpinner) Active() bool {
	return l.active
}

// View renders the spinner without label.
func (l LoadingSpinner) View() string {
	if !l.active {
		return ""
	}
	return l.spinner.View()
}

// ViewWithLabel renders the spinner with its label.
func (l LoadingSpinner) ViewWithLabel() string {
	if !l.active {
		return ""
	}
	return l.spinner.View() + " " + l.style.Render(l.label)
}

// Label returns the current label.
func (l LoadingSpinner) Label() string {
	return l.label
}

// RenderSpinnerCentered renders a spinner centered in a given width and height.
func RenderSpinnerCentered(s LoadingSpinner, width, height int) string {
	return styles.CenterBoth(s.ViewWithLabel(), width, height)
}
