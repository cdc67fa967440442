package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/finboard/internal/chart"
	"github.com/Veraticus/finboard/internal/dashboard"
	"github.com/Veraticus/finboard/internal/model"
	"github.com/Veraticus/finboard/internal/tui/components"
	"github.com/Veraticus/finboard/internal/tui/viewmodel"
)

const (
	categoryChartName = "category"
	yearChartName     = "year"
)

type (
	categoryDrilled = dashboard.DrillLoaded[string, model.CategoryTransaction]
	yearDrilled     = dashboard.DrillLoaded[int, model.YearCategoryTotal]
)

// chartsScreen pairs a credit and a debit chart, either per category or per
// year, filtered by bank.
type chartsScreen struct {
	env          *env
	category     *dashboard.CategoryChart
	year         *dashboard.YearChart
	categoryBars [2]components.BarChartModel
	yearBars     [2]components.BarChartModel
	side         chart.Side
	byYear       bool
	width        int
}

func newChartsScreen(e *env, category *dashboard.CategoryChart, year *dashboard.YearChart) *chartsScreen {
	s := &chartsScreen{env: e, category: category, year: year}
	for _, side := range chart.Sides {
		s.categoryBars[side] = components.NewBarChart(categoryChartName, side, true, e.theme)
		s.yearBars[side] = components.NewBarChart(yearChartName, side, true, e.theme)
	}
	s.sync()
	return s
}

func (s *chartsScreen) title() string { return "Charts" }

func (s *chartsScreen) load() tea.Cmd {
	cq, yq := s.category.Begin(), s.year.Begin()
	return tea.Batch(
		task(s.env, func(ctx context.Context) dashboard.CategoryTotalsLoaded {
			return s.category.Fetch(ctx, cq)
		}),
		task(s.env, func(ctx context.Context) dashboard.YearTotalsLoaded {
			return s.year.Fetch(ctx, yq)
		}),
	)
}

// sync copies the stores' current series into the bar charts.
func (s *chartsScreen) sync() {
	for _, side := range chart.Sides {
		series := s.category.Series(side)
		s.categoryBars[side].SetSeries(series.Name, series)
		_, drilled := s.category.Selected(side)
		s.categoryBars[side].SetDrilled(drilled)

		series = s.year.Series(side)
		s.yearBars[side].SetSeries(series.Name, series)
		_, drilled = s.year.Selected(side)
		s.yearBars[side].SetDrilled(drilled)
	}
}

func (s *chartsScreen) bars() *[2]components.BarChartModel {
	if s.byYear {
		return &s.yearBars
	}
	return &s.categoryBars
}

func (s *chartsScreen) bank() string {
	if s.byYear {
		return s.year.Bank()
	}
	return s.category.Bank()
}

// nextBank moves both charts to the following bank filter and refetches.
func (s *chartsScreen) nextBank() tea.Cmd {
	next := model.ChartBanks[0]
	for i, b := range model.ChartBanks {
		if b == s.bank() {
			next = model.ChartBanks[(i+1)%len(model.ChartBanks)]
			break
		}
	}
	changed := s.category.SetBank(next)
	if s.year.SetBank(next) {
		changed = true
	}
	if !changed {
		return nil
	}
	s.sync()
	return s.load()
}

func (s *chartsScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case dashboard.CategoryTotalsLoaded:
		s.category.Apply(msg)
		s.sync()
	case dashboard.YearTotalsLoaded:
		s.year.Apply(msg)
		s.sync()
	case categoryDrilled:
		s.category.ApplyDrill(msg)
		s.sync()
	case yearDrilled:
		s.year.ApplyDrill(msg)
		s.sync()

	case components.BarSelectedMsg:
		return s.drill(msg)
	case components.BarBackMsg:
		if msg.Chart == yearChartName {
			s.year.Back(msg.Side)
		} else {
			s.category.Back(msg.Side)
		}
		s.sync()

	case tea.KeyMsg:
		switch msg.String() {
		case "h", "left":
			s.side = chart.Credit
			return nil
		case "l", "right":
			s.side = chart.Debit
			return nil
		case "y":
			s.byYear = !s.byYear
			return nil
		case "n":
			return s.nextBank()
		}
		bars := s.bars()
		var cmd tea.Cmd
		bars[s.side], cmd = bars[s.side].Update(msg)
		return cmd
	}
	return nil
}

func (s *chartsScreen) drill(msg components.BarSelectedMsg) tea.Cmd {
	if msg.Chart == yearChartName {
		q, ok := s.year.Open(msg.Side, msg.Index)
		if !ok {
			return nil
		}
		s.sync()
		return task(s.env, func(ctx context.Context) yearDrilled {
			return s.year.FetchDrill(ctx, q)
		})
	}
	q, ok := s.category.Open(msg.Side, msg.Index)
	if !ok {
		return nil
	}
	s.sync()
	return task(s.env, func(ctx context.Context) categoryDrilled {
		return s.category.FetchDrill(ctx, q)
	})
}

func (s *chartsScreen) view() string {
	t := s.env.theme
	muted := lipgloss.NewStyle().Foreground(t.Muted)

	mode := "by category"
	status, drillErr := s.category.Status, s.category.DrillErr
	if s.byYear {
		mode = "by year"
		status, drillErr = s.year.Status, s.year.DrillErr
	}
	header := fmt.Sprintf("Bank: %s · %s", t.Bold.Render(s.bank()), mode)

	bars := s.bars()
	panes := make([]string, len(chart.Sides))
	for i, side := range chart.Sides {
		box := t.BorderedBox.Width(max(s.width/2-2, 10))
		if side == s.side {
			box = box.BorderForeground(t.Primary)
		}
		panes[i] = box.Render(bars[side].View())
	}

	lines := []string{
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, panes...),
		muted.Render("h/l: side · y: category/year · n: next bank"),
	}
	if line := components.StatusLine(t, status); line != "" {
		lines = append(lines, line)
	}
	if drillErr != "" {
		lines = append(lines, t.StatusError.Render(viewmodel.SanitizeForDisplay(drillErr)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (s *chartsScreen) capturing() bool { return false }

func (s *chartsScreen) resize(width, height int) {
	s.width = width
	for _, side := range chart.Sides {
		s.categoryBars[side].Resize(width/2-4, height-6)
		s.yearBars[side].Resize(width/2-4, height-6)
	}
}
