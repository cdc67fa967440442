package chart

import (
	"strconv"

	"github.com/Veraticus/finboard/internal/model"
)

// NetWorthSeries is the projected net worth line.
func NetWorthSeries(points []model.NetWorthPoint) Series {
	s := Series{Name: "Net Worth", Bars: make([]Bar, 0, len(points))}
	for _, p := range points {
		s.Bars = append(s.Bars, Bar{Label: strconv.Itoa(p.Year), Value: p.NetWorth})
	}
	return s
}

// ProjectedIncomeSeries splits the income projection into earned income and
// income from savings, investments and assets.
func ProjectedIncomeSeries(points []model.ProjectedIncomePoint) (income, assets Series) {
	income = Series{Name: "Income", Bars: make([]Bar, 0, len(points))}
	assets = Series{Name: "Income from Savings, Investments & Assets", Bars: make([]Bar, 0, len(points))}
	for _, p := range points {
		year := strconv.Itoa(p.Year)
		income.Bars = append(income.Bars, Bar{Label: year, Value: p.Income})
		assets.Bars = append(assets.Bars, Bar{Label: year, Value: p.AssetIncome})
	}
	return income, assets
}

// ExpenseSeries is the projected yearly expense bars.
func ExpenseSeries(points []model.ExpensePoint) Series {
	s := Series{Name: "Expenses", Bars: make([]Bar, 0, len(points))}
	for _, p := range points {
		s.Bars = append(s.Bars, Bar{Label: strconv.Itoa(p.Year), Value: p.Expenses})
	}
	return s
}

// SavingsRatioSeries is the year-over-year savings ratio bars.
func SavingsRatioSeries(points []model.SavingsRatioPoint) Series {
	s := Series{Name: "YoY Savings Ratio", Bars: make([]Bar, 0, len(points))}
	for _, p := range points {
		s.Bars = append(s.Bars, Bar{Label: strconv.Itoa(p.Year), Value: p.Ratio})
	}
	return s
}
