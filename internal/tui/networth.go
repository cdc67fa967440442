package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/finboard/internal/chart"
	"github.com/Veraticus/finboard/internal/networth"
	"github.com/Veraticus/finboard/internal/tui/components"
)

// Projection charts, cycled with c.
const (
	netWorthChart = iota
	incomeChart
	expenseChart
	savingsChart
	projectionCharts
)

// netWorthScreen shows the projection line items and one projection chart
// at a time, and exports the projection spreadsheet.
type netWorthScreen struct {
	env    *env
	store  *networth.Projection
	table  components.TableModel
	charts [projectionCharts]components.BarChartModel
	chart  int
	export string
}

func newNetWorthScreen(e *env, store *networth.Projection) *netWorthScreen {
	s := &netWorthScreen{
		env:   e,
		store: store,
		table: components.NewTable(store.Table, "Summary", e.theme),
	}
	for i := range s.charts {
		s.charts[i] = components.NewBarChart("projection", chart.Credit, false, e.theme)
	}
	s.table.SetOrigin(0, contentTop)
	s.sync()
	return s
}

func (s *netWorthScreen) title() string { return "Net Worth" }

func (s *netWorthScreen) load() tea.Cmd {
	seq := s.store.Begin()
	return task(s.env, func(ctx context.Context) networth.ProjectionLoaded {
		return s.store.Fetch(ctx, seq)
	})
}

func (s *netWorthScreen) sync() {
	worth := s.store.NetWorthSeries()
	s.charts[netWorthChart].SetSeries("Net Worth Projection", worth)
	income, assets := s.store.IncomeSeries()
	s.charts[incomeChart].SetSeries("Projected Income", income, assets)
	s.charts[expenseChart].SetSeries("Projected Expenses", s.store.ExpenseSeries())
	s.charts[savingsChart].SetSeries("YoY Savings Ratio (%)", s.store.SavingsRatioSeries())
}

func (s *netWorthScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case networth.ProjectionLoaded:
		s.store.Apply(msg)
		s.sync()
		return nil

	case profileChangedMsg:
		s.store.Reset()
		s.export = ""
		s.sync()
		return s.load()

	case exportDoneMsg:
		if msg.err != nil {
			s.store.Status.Fail("Failed to export net worth: " + msg.err.Error())
			return nil
		}
		s.export = msg.path
		s.store.Status.Succeed("Exported to " + msg.path)
		return nil

	case tea.KeyMsg:
		if !s.table.Capturing() {
			switch msg.String() {
			case "c":
				s.chart = (s.chart + 1) % projectionCharts
				return nil
			case "C":
				s.chart = (s.chart - 1 + projectionCharts) % projectionCharts
				return nil
			case "E":
				s.store.Status.Succeed("Exporting…")
				dir := s.env.exportDir
				return task(s.env, func(ctx context.Context) exportDoneMsg {
					path, err := s.store.Export(ctx, dir, nil)
					return exportDoneMsg{path: path, err: err}
				})
			case "J":
				var cmd tea.Cmd
				s.charts[s.chart], cmd = s.charts[s.chart].Update(tea.KeyMsg{Type: tea.KeyDown})
				return cmd
			case "K":
				var cmd tea.Cmd
				s.charts[s.chart], cmd = s.charts[s.chart].Update(tea.KeyMsg{Type: tea.KeyUp})
				return cmd
			}
		}
		var cmd tea.Cmd
		s.table, cmd = s.table.Update(msg)
		return cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		s.table, cmd = s.table.Update(msg)
		return cmd
	}
	return nil
}

func (s *netWorthScreen) view() string {
	t := s.env.theme
	parts := []string{
		s.table.View(),
		t.BorderedBox.Render(s.charts[s.chart].View()),
	}
	if line := components.StatusLine(t, s.store.Status); line != "" {
		parts = append(parts, line)
	}
	parts = append(parts, lipgloss.NewStyle().Foreground(t.Muted).Render("c/C: next/previous chart · J/K: scroll chart · E: export spreadsheet"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (s *netWorthScreen) capturing() bool { return s.table.Capturing() }

func (s *netWorthScreen) resize(width, height int) {
	tableHeight := max(height/2-2, 5)
	s.table.Resize(width, tableHeight)
	for i := range s.charts {
		s.charts[i].Resize(width-4, max(height-tableHeight-6, 6))
	}
}
