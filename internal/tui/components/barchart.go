package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/finboard/internal/chart"
	"github.com/Veraticus/finboard/internal/tui/themes"
	"github.com/Veraticus/finboard/internal/tui/viewmodel"
)

// BarChartModel draws one or more series as horizontal bars scaled to the
// largest value across them. A drillable chart reports the bar under the
// cursor on enter.
type BarChartModel struct {
	theme     themes.Theme
	bars      []progress.Model
	name      string
	title     string
	series    []chart.Series
	side      chart.Side
	cursor    int
	width     int
	height    int
	drillable bool
	drilled   bool
}

// NewBarChart creates a chart. name identifies it in emitted messages.
func NewBarChart(name string, side chart.Side, drillable bool, theme themes.Theme) BarChartModel {
	return BarChartModel{
		name:      name,
		side:      side,
		drillable: drillable,
		theme:     theme,
		width:     60,
		height:    12,
	}
}

// SetSeries replaces the data. The cursor stays put when it is still in range.
func (m *BarChartModel) SetSeries(title string, series ...chart.Series) {
	m.title = title
	m.series = series
	colors := []lipgloss.Color{m.theme.Primary, m.theme.Info, m.theme.Warning}
	m.bars = make([]progress.Model, len(series))
	for i := range series {
		bar := progress.New(
			progress.WithSolidFill(string(colors[i%len(colors)])),
			progress.WithoutPercentage(),
		)
		bar.EmptyColor = string(m.theme.Border)
		m.bars[i] = bar
	}
	if m.cursor >= m.points() {
		m.cursor = 0
	}
	m.resizeBars()
}

// SetDrilled marks whether the chart shows a drill-down dataset, which
// enables going back.
func (m *BarChartModel) SetDrilled(drilled bool) {
	m.drilled = drilled
}

// Resize sets the drawing area.
func (m *BarChartModel) Resize(width, height int) {
	m.width = width
	m.height = height
	m.resizeBars()
}

func (m *BarChartModel) resizeBars() {
	w := max(m.width-m.labelWidth()-16, 4)
	for i := range m.bars {
		m.bars[i].Width = w
	}
}

// Cursor returns the highlighted bar.
func (m BarChartModel) Cursor() int {
	return m.cursor
}

func (m BarChartModel) points() int {
	n := 0
	for _, s := range m.series {
		n = max(n, s.Len())
	}
	return n
}

func (m BarChartModel) labelWidth() int {
	w := 4
	for _, s := range m.series {
		for _, b := range s.Bars {
			w = max(w, len([]rune(b.Label)))
		}
	}
	return min(w, 24)
}

// Update moves the cursor and emits drill-down messages.
func (m BarChartModel) Update(msg tea.Msg) (BarChartModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "j", "down":
		if m.cursor < m.points()-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		if m.drillable && !m.drilled && m.points() > 0 {
			selected := BarSelectedMsg{Chart: m.name, Side: m.side, Index: m.cursor}
			return m, func() tea.Msg { return selected }
		}
	case "backspace", "b":
		if m.drilled {
			back := BarBackMsg{Chart: m.name, Side: m.side}
			return m, func() tea.Msg { return back }
		}
	}
	return m, nil
}

func (m BarChartModel) peak() decimal.Decimal {
	peak := decimal.Zero
	for _, s := range m.series {
		if p := s.Max(); p.GreaterThan(peak) {
			peak = p
		}
	}
	return peak
}

// View renders the visible bars.
func (m BarChartModel) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Subtitle.Render(m.title))
	b.WriteString("\n")

	n := m.points()
	if n == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(m.theme.Muted).Render("No data."))
		return b.String()
	}

	lines := max(m.height-3, 1)
	perPoint := max(len(m.series), 1)
	visible := max(lines/perPoint, 1)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, n)

	peak := m.peak()
	labelW := m.labelWidth()
	for i := start; i < end; i++ {
		for si, s := range m.series {
			if i >= s.Len() {
				continue
			}
			bar := s.Bars[i]
			label := ""
			if si == 0 {
				label = bar.Label
			}
			label = viewmodel.PadRight(label, labelW)
			if i == m.cursor && si == 0 {
				label = m.theme.Selected.Render(label)
			}
			fmt.Fprintf(&b, "%s %s %s\n", label, m.bars[si].ViewAs(chart.Fraction(bar.Value, peak)), viewmodel.FormatAmount(bar.Value))
		}
	}

	if len(m.series) > 1 {
		names := make([]string, len(m.series))
		for i, s := range m.series {
			names[i] = s.Name
		}
		b.WriteString(lipgloss.NewStyle().Foreground(m.theme.Muted).Render(strings.Join(names, " · ")))
		b.WriteString("\n")
	}
	switch {
	case m.drilled:
		b.WriteString(lipgloss.NewStyle().Foreground(m.theme.Muted).Render("b: back"))
	case m.drillable:
		b.WriteString(lipgloss.NewStyle().Foreground(m.theme.Muted).Render("enter: drill down"))
	}
	return b.String()
}
