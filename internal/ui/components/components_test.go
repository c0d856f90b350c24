package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/typesteps/typesteps/internal/models"
)

func points(counts ...int) []models.ChartPoint {
	out := make([]models.ChartPoint, len(counts))
	for i, c := range counts {
		out[i] = models.ChartPoint{Label: string(rune('A' + i)), Count: c}
	}
	return out
}

func TestNewSpinner(t *testing.T) {
	s := NewSpinner("Loading")
	if s.Label() != "Loading" || !s.Active() {
		t.Error("spinner should start active with its label")
	}
	if s.Init() == nil {
		t.Error("Init should return command")
	}
}

func TestSpinner_StartStop(t *testing.T) {
	s := NewSpinner("Init")

	s.Stop()
	if s.View() != "" || s.ViewWithLabel() != "" {
		t.Error("stopped spinner should render nothing")
	}
	if _, cmd := s.Update(spinner.TickMsg{}); cmd != nil {
		t.Error("stopped spinner should not keep ticking")
	}

	if cmd := s.Start("Refreshing"); cmd == nil {
		t.Error("Start should return tick command")
	}
	if !strings.Contains(s.ViewWithLabel(), "Refreshing") {
		t.Errorf("ViewWithLabel = %q", s.ViewWithLabel())
	}
}

func TestRenderSpinnerCentered(t *testing.T) {
	s := NewSpinner("Loading...")
	view := RenderSpinnerCentered(s, 20, 5)
	if len(strings.Split(view, "\n")) != 5 {
		t.Errorf("centered view should fill height, got %q", view)
	}
}

func TestValues(t *testing.T) {
	got := Values(points(1, 0, 7))
	want := []float64{1, 0, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Values = %v, want %v", got, want)
		}
	}
}

func TestRenderLineChart(t *testing.T) {
	if s := RenderLineChart(points(1, 2, 3, 4), 20, 5, "Today"); !strings.Contains(s, "Today") {
		t.Errorf("chart missing caption: %q", s)
	}
	if s := ansi.Strip(RenderLineChart(nil, 20, 5, "x")); s != "No data available" {
		t.Errorf("empty chart = %q", s)
	}
}

func TestRenderBarChart(t *testing.T) {
	s := ansi.Strip(RenderBarChart([]models.ChartPoint{
		{Label: "Mon", Count: 12000},
		{Label: "Tue", Count: 0},
	}, 40))

	lines := strings.Split(s, "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Mon │█") || !strings.HasSuffix(lines[0], "12,000") {
		t.Errorf("first row = %q", lines[0])
	}
	if lines[1] != "Tue │ 0" {
		t.Errorf("zero row = %q", lines[1])
	}
}

func TestRenderBarChart_SmallValuesVisible(t *testing.T) {
	s := ansi.Strip(RenderBarChart([]models.ChartPoint{
		{Label: "a", Count: 100000},
		{Label: "b", Count: 1},
	}, 30))
	if !strings.Contains(strings.Split(s, "\n")[1], "█") {
		t.Errorf("non-zero value should get at least one cell: %q", s)
	}
}

func TestRenderRankedBars(t *testing.T) {
	s := ansi.Strip(RenderRankedBars([]models.RankedEntry{
		{Name: "A Very Long Application Name Indeed", Count: 3},
	}, 60))
	if !strings.Contains(s, "…") {
		t.Errorf("long names should be truncated: %q", s)
	}
}

func TestRenderCategoryBars(t *testing.T) {
	s := ansi.Strip(RenderCategoryBars([]models.CategoryCount{
		{Category: models.CategoryCode, Count: 1500},
	}, 40))
	if !strings.Contains(s, "Code") || !strings.Contains(s, "1,500") {
		t.Errorf("category bars = %q", s)
	}
}

func TestRenderHourlyHeatmap(t *testing.T) {
	hours := make([]models.ChartPoint, 24)
	hours[9].Count = 80

	s := ansi.Strip(RenderHourlyHeatmap(hours))
	if !strings.HasPrefix(s, "00 ") || !strings.HasSuffix(s, " 23") {
		t.Errorf("heatmap = %q", s)
	}
	if strings.Count(s, "█") != 1 {
		t.Errorf("peak hour should be the only full block: %q", s)
	}
}

func TestRenderSparkline(t *testing.T) {
	if s := RenderSparkline(points(0, 7), 10); s != "▁█" {
		t.Errorf("sparkline = %q", s)
	}
	if s := RenderSparkline(nil, 10); s != "" {
		t.Errorf("empty sparkline = %q", s)
	}
	if n := len([]rune(RenderSparkline(points(make([]int, 30)...), 10))); n != 10 {
		t.Errorf("sampled sparkline width = %d, want 10", n)
	}
}

func TestRenderFlowSparkline(t *testing.T) {
	s := ansi.Strip(RenderFlowSparkline(points(5, 25, 40), 3))
	if len([]rune(s)) != 3 {
		t.Errorf("flow sparkline = %q", s)
	}
}

func TestRenderLegend(t *testing.T) {
	s := ansi.Strip(RenderLegend([]LegendItem{
		{Label: "flow minute", Color: lipgloss.Color("#ffffff")},
	}))
	if s != "■ flow minute" {
		t.Errorf("legend = %q", s)
	}
}

func TestGoalBar(t *testing.T) {
	bar := NewGoalBar(20)
	if cmd := bar.SetProgress(1.5); cmd == nil {
		t.Error("SetProgress should start animation")
	}
	if bar.Fraction() != 1.5 {
		t.Errorf("Fraction = %v, want unclamped 1.5", bar.Fraction())
	}

	view := ansi.Strip(bar.View(7500, 5000))
	if !strings.Contains(view, "7,500 / 5,000") || !strings.Contains(view, "150%") {
		t.Errorf("view = %q", view)
	}

	bar.SetWidth(2)
	if _, cmd := bar.Update(nil); cmd != nil {
		t.Error("unrelated message should not animate")
	}
}

func TestRenderGradientBar(t *testing.T) {
	tests := []struct {
		name     string
		fraction float64
		filled   int
	}{
		{"empty", 0, 0},
		{"half", 0.5, 5},
		{"full", 1, 10},
		{"overflow", 3, 10},
		{"negative", -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ansi.Strip(RenderGradientBar(tt.fraction, 10))
			if got := strings.Count(s, "█"); got != tt.filled {
				t.Errorf("filled = %d, want %d", got, tt.filled)
			}
			if got := len([]rune(s)); got != 10 {
				t.Errorf("width = %d, want 10", got)
			}
		})
	}
	if RenderGradientBar(1, 0) != "" {
		t.Error("zero width should render nothing")
	}
}

func TestRenderLibraryRow(t *testing.T) {
	tests := []struct {
		p    models.LibraryProgress
		want string
	}{
		{models.LibraryProgress{Label: "A Tweet", Progress: 1, Iterations: 3}, "×3"},
		{models.LibraryProgress{Label: "A Tweet", Progress: 1, Iterations: 1}, "done"},
		{models.LibraryProgress{Label: "War and Peace", Progress: 0.25}, "25%"},
	}
	for _, tt := range tests {
		s := ansi.Strip(RenderLibraryRow(tt.p, 60))
		if !strings.Contains(s, tt.p.Label) || !strings.HasSuffix(strings.TrimSpace(s), tt.want) {
			t.Errorf("row = %q, want suffix %q", s, tt.want)
		}
	}
}

func TestInterpolateColor(t *testing.T) {
	if got := interpolateColor("#000000", "#ffffff", 0); got != "#000000" {
		t.Errorf("start = %s", got)
	}
	if got := interpolateColor("#000000", "#ffffff", 1); got != "#ffffff" {
		t.Errorf("end = %s", got)
	}
	if got := hexToRGB("zz"); got != [3]int{} {
		t.Errorf("invalid hex = %v", got)
	}
}
