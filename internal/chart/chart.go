// Package chart reshapes backend aggregates into bar and line series and
// tracks drill-down state for the statement charts.
package chart

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/finboard/internal/model"
)

// Side selects the credit or debit half of a paired chart.
type Side int

const (
	// Credit is money in.
	Credit Side = iota
	// Debit is money out.
	Debit
)

// Sides lists both sides in display order.
var Sides = []Side{Credit, Debit}

func (s Side) String() string {
	if s == Debit {
		return "debit"
	}
	return "credit"
}

// Title returns the capitalized side name.
func (s Side) Title() string {
	if s == Debit {
		return "Debit"
	}
	return "Credit"
}

// Bar is one labelled value.
type Bar struct {
	Label string
	Value decimal.Decimal
}

// Series is an ordered list of bars or line points.
type Series struct {
	Name string
	Bars []Bar
}

// Len returns the number of points.
func (s Series) Len() int {
	return len(s.Bars)
}

// Max returns the largest absolute value in the series.
func (s Series) Max() decimal.Decimal {
	peak := decimal.Zero
	for _, b := range s.Bars {
		if abs := b.Value.Abs(); abs.GreaterThan(peak) {
			peak = abs
		}
	}
	return peak
}

// Fraction returns |v| / peak clamped to [0, 1], the fill ratio of a bar.
func Fraction(v, peak decimal.Decimal) float64 {
	if !peak.IsPositive() {
		return 0
	}
	f := v.Abs().Div(peak).InexactFloat64()
	if f > 1 {
		return 1
	}
	return f
}

// Label returns the label of the bar at index i, or "" when out of range.
func (s Series) Label(i int) string {
	if i < 0 || i >= len(s.Bars) {
		return ""
	}
	return s.Bars[i].Label
}

func pick(side Side, credit, debit decimal.Decimal) decimal.Decimal {
	if side == Debit {
		return debit
	}
	return credit
}

// CategorySeries splits category totals into a credit and a debit series
// keyed by category, in server order.
func CategorySeries(totals []model.CategoryTotal) (credit, debit Series) {
	credit = Series{Name: "Total Credit by Category", Bars: make([]Bar, 0, len(totals))}
	debit = Series{Name: "Total Debit by Category", Bars: make([]Bar, 0, len(totals))}
	for _, t := range totals {
		credit.Bars = append(credit.Bars, Bar{Label: t.Category, Value: t.TotalCredit})
		debit.Bars = append(debit.Bars, Bar{Label: t.Category, Value: t.TotalDebit})
	}
	return credit, debit
}

// YearSeries splits year totals into a credit and a debit series keyed by
// year, oldest first.
func YearSeries(totals []model.YearTotal) (credit, debit Series) {
	sorted := append([]model.YearTotal(nil), totals...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Year < sorted[j].Year })

	credit = Series{Name: "Credit by Year", Bars: make([]Bar, 0, len(sorted))}
	debit = Series{Name: "Debit by Year", Bars: make([]Bar, 0, len(sorted))}
	for _, t := range sorted {
		label := strconv.Itoa(t.Year)
		credit.Bars = append(credit.Bars, Bar{Label: label, Value: t.TotalCredit})
		debit.Bars = append(debit.Bars, Bar{Label: label, Value: t.TotalDebit})
	}
	return credit, debit
}

// ForYear keeps the year-category totals of one year.
func ForYear(totals []model.YearCategoryTotal, year int) []model.YearCategoryTotal {
	out := make([]model.YearCategoryTotal, 0, len(totals))
	for _, t := range totals {
		if t.Year == year {
			out = append(out, t)
		}
	}
	return out
}

// YearCategorySeries renders one side of a year's category breakdown.
func YearCategorySeries(side Side, year int, totals []model.YearCategoryTotal) Series {
	s := Series{Name: side.Title() + " by Category for " + strconv.Itoa(year), Bars: make([]Bar, 0, len(totals))}
	for _, t := range totals {
		s.Bars = append(s.Bars, Bar{Label: t.Category, Value: pick(side, t.TotalCredit, t.TotalDebit)})
	}
	return s
}

// TransactionSeries renders one side of a category's transactions keyed by date.
func TransactionSeries(side Side, category string, rows []model.CategoryTransaction) Series {
	s := Series{Name: side.Title() + " Transactions for " + category, Bars: make([]Bar, 0, len(rows))}
	for _, r := range rows {
		s.Bars = append(s.Bars, Bar{Label: r.Date.String(), Value: pick(side, r.Credit, r.Debit)})
	}
	return s
}
