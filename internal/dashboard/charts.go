package dashboard

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/Veraticus/finboard/internal/chart"
	"github.com/Veraticus/finboard/internal/model"
	"github.com/Veraticus/finboard/internal/tui/viewmodel"
)

// ChartGateway is the part of the backend the aggregate charts use.
type ChartGateway interface {
	CategoryTotals(ctx context.Context, email, bank string) ([]model.CategoryTotal, error)
	CategoryTransactions(ctx context.Context, email, bank, category string) ([]model.CategoryTransaction, error)
	YearTotals(ctx context.Context, email, bank string) ([]model.YearTotal, error)
	YearCategoryTotals(ctx context.Context, email, bank string) ([]model.YearCategoryTotal, error)
}

// Query scopes a chart fetch. It is captured on the event loop so the fetch
// never reads store state from another goroutine.
type Query struct {
	Bank string
	Seq  uint64
}

// DrillQuery scopes the secondary fetch of one side.
type DrillQuery[K comparable] struct {
	Key  K
	Bank string
	Side chart.Side
}

// DrillLoaded carries the secondary dataset for one side of a chart.
type DrillLoaded[K comparable, T any] struct {
	Err  error
	Key  K
	Data []T
	Side chart.Side
}

// CategoryTotalsLoaded carries the result of a category totals fetch.
type CategoryTotalsLoaded struct {
	Err    error
	Totals []model.CategoryTotal
	Seq    uint64
}

// CategoryChart shows credit and debit totals per category. Each side can
// drill into the transactions of one category.
type CategoryChart struct {
	gw       ChartGateway
	id       Identity
	logger   *slog.Logger
	bank     string
	totals   []model.CategoryTotal
	drill    chart.Drill[string, model.CategoryTransaction]
	DrillErr string
	Status   viewmodel.Status
}

// NewCategoryChart creates the store scoped to all banks.
func NewCategoryChart(gw ChartGateway, id Identity, logger *slog.Logger) *CategoryChart {
	return &CategoryChart{gw: gw, id: id, logger: orDefault(logger), bank: model.AllBanks}
}

// Bank returns the bank filter.
func (c *CategoryChart) Bank() string {
	return c.bank
}

// SetBank changes the bank filter and closes both drill-downs. It reports
// whether the bank changed; the caller refetches when it did.
func (c *CategoryChart) SetBank(bank string) bool {
	if bank == c.bank {
		return false
	}
	c.bank = bank
	c.drill.Reset()
	c.DrillErr = ""
	return true
}

// Begin starts a fetch.
func (c *CategoryChart) Begin() Query {
	return Query{Seq: c.Status.Begin(), Bank: c.bank}
}

// Fetch loads the category totals for the current bank.
func (c *CategoryChart) Fetch(ctx context.Context, q Query) CategoryTotalsLoaded {
	email, err := requireEmail(c.id)
	if err != nil {
		return CategoryTotalsLoaded{Seq: q.Seq, Err: err}
	}
	totals, err := c.gw.CategoryTotals(ctx, email, q.Bank)
	return CategoryTotalsLoaded{Seq: q.Seq, Totals: totals, Err: err}
}

// Apply stores a fetch result.
func (c *CategoryChart) Apply(msg CategoryTotalsLoaded) {
	if c.Status.Settle(msg.Seq, msg.Err, "Failed to fetch category totals.") {
		logStale(c.logger, "category_chart", msg.Seq, c.Status.Latest())
	}
	if msg.Err == nil {
		c.totals = msg.Totals
	}
}

// Refresh fetches synchronously.
func (c *CategoryChart) Refresh(ctx context.Context) error {
	msg := c.Fetch(ctx, c.Begin())
	c.Apply(msg)
	return msg.Err
}

// Totals returns the category totals.
func (c *CategoryChart) Totals() []model.CategoryTotal {
	return c.totals
}

// Open drills side into the category of bar i. It returns the query to
// fetch, or false when i is not a bar.
func (c *CategoryChart) Open(side chart.Side, i int) (DrillQuery[string], bool) {
	if i < 0 || i >= len(c.totals) {
		return DrillQuery[string]{}, false
	}
	category := c.totals[i].Category
	c.drill.Open(side, category)
	c.DrillErr = ""
	return DrillQuery[string]{Side: side, Key: category, Bank: c.bank}, true
}

// FetchDrill loads the transactions of the queried category, oldest first.
func (c *CategoryChart) FetchDrill(ctx context.Context, q DrillQuery[string]) DrillLoaded[string, model.CategoryTransaction] {
	msg := DrillLoaded[string, model.CategoryTransaction]{Side: q.Side, Key: q.Key}
	email, err := requireEmail(c.id)
	if err != nil {
		msg.Err = err
		return msg
	}
	msg.Data, msg.Err = c.gw.CategoryTransactions(ctx, email, q.Bank, q.Key)
	return msg
}

// ApplyDrill stores the drill-down transactions unless the side moved on.
func (c *CategoryChart) ApplyDrill(msg DrillLoaded[string, model.CategoryTransaction]) {
	if msg.Err != nil {
		c.logger.Warn("failed to fetch category transactions", "category", msg.Key, "error", msg.Err)
		c.DrillErr = "Failed to fetch transactions for " + msg.Key + "."
		return
	}
	if !c.drill.Load(msg.Side, msg.Key, msg.Data) {
		c.logger.Debug("drill response for a closed category discarded", "category", msg.Key, "side", msg.Side)
	}
}

// Drill opens side on bar i and loads it synchronously.
func (c *CategoryChart) Drill(ctx context.Context, side chart.Side, i int) error {
	q, ok := c.Open(side, i)
	if !ok {
		return nil
	}
	msg := c.FetchDrill(ctx, q)
	c.ApplyDrill(msg)
	return msg.Err
}

// Back returns side to the category overview.
func (c *CategoryChart) Back(side chart.Side) {
	c.drill.Back(side)
}

// Selected returns the category side has drilled into.
func (c *CategoryChart) Selected(side chart.Side) (string, bool) {
	return c.drill.Selected(side)
}

// Transactions returns the drill-down dataset of side.
func (c *CategoryChart) Transactions(side chart.Side) []model.CategoryTransaction {
	return c.drill.Data(side)
}

// Series returns what side currently shows: the category totals, or the
// transactions of the opened category.
func (c *CategoryChart) Series(side chart.Side) chart.Series {
	if category, open := c.drill.Selected(side); open {
		return chart.TransactionSeries(side, category, c.drill.Data(side))
	}
	credit, debit := chart.CategorySeries(c.totals)
	if side == chart.Debit {
		return debit
	}
	return credit
}

// YearTotalsLoaded carries the result of a year totals fetch.
type YearTotalsLoaded struct {
	Err    error
	Totals []model.YearTotal
	Seq    uint64
}

// YearChart shows credit and debit totals per year. Each side can drill into
// the category breakdown of one year.
type YearChart struct {
	gw       ChartGateway
	id       Identity
	logger   *slog.Logger
	bank     string
	totals   []model.YearTotal
	drill    chart.Drill[int, model.YearCategoryTotal]
	DrillErr string
	Status   viewmodel.Status
}

// NewYearChart creates the store scoped to all banks.
func NewYearChart(gw ChartGateway, id Identity, logger *slog.Logger) *YearChart {
	return &YearChart{gw: gw, id: id, logger: orDefault(logger), bank: model.AllBanks}
}

// Bank returns the bank filter.
func (c *YearChart) Bank() string {
	return c.bank
}

// SetBank changes the bank filter and closes both drill-downs.
func (c *YearChart) SetBank(bank string) bool {
	if bank == c.bank {
		return false
	}
	c.bank = bank
	c.drill.Reset()
	c.DrillErr = ""
	return true
}

// Begin starts a fetch.
func (c *YearChart) Begin() Query {
	return Query{Seq: c.Status.Begin(), Bank: c.bank}
}

// Fetch loads the year totals for the current bank.
func (c *YearChart) Fetch(ctx context.Context, q Query) YearTotalsLoaded {
	email, err := requireEmail(c.id)
	if err != nil {
		return YearTotalsLoaded{Seq: q.Seq, Err: err}
	}
	totals, err := c.gw.YearTotals(ctx, email, q.Bank)
	return YearTotalsLoaded{Seq: q.Seq, Totals: totals, Err: err}
}

// Apply stores a fetch result.
func (c *YearChart) Apply(msg YearTotalsLoaded) {
	if c.Status.Settle(msg.Seq, msg.Err, "Failed to fetch year totals.") {
		logStale(c.logger, "year_chart", msg.Seq, c.Status.Latest())
	}
	if msg.Err == nil {
		c.totals = msg.Totals
	}
}

// Refresh fetches synchronously.
func (c *YearChart) Refresh(ctx context.Context) error {
	msg := c.Fetch(ctx, c.Begin())
	c.Apply(msg)
	return msg.Err
}

// Totals returns the year totals.
func (c *YearChart) Totals() []model.YearTotal {
	return c.totals
}

// Open drills side into the year of bar i, counted in the displayed
// (oldest first) order.
func (c *YearChart) Open(side chart.Side, i int) (DrillQuery[int], bool) {
	credit, _ := chart.YearSeries(c.totals)
	if i < 0 || i >= credit.Len() {
		return DrillQuery[int]{}, false
	}
	year, err := strconv.Atoi(credit.Label(i))
	if err != nil {
		return DrillQuery[int]{}, false
	}
	c.drill.Open(side, year)
	c.DrillErr = ""
	return DrillQuery[int]{Side: side, Key: year, Bank: c.bank}, true
}

// FetchDrill loads the year-category totals and keeps those of the queried year.
func (c *YearChart) FetchDrill(ctx context.Context, q DrillQuery[int]) DrillLoaded[int, model.YearCategoryTotal] {
	msg := DrillLoaded[int, model.YearCategoryTotal]{Side: q.Side, Key: q.Key}
	email, err := requireEmail(c.id)
	if err != nil {
		msg.Err = err
		return msg
	}
	all, err := c.gw.YearCategoryTotals(ctx, email, q.Bank)
	if err != nil {
		msg.Err = err
		return msg
	}
	msg.Data = chart.ForYear(all, q.Key)
	return msg
}

// ApplyDrill stores the breakdown unless the side moved on.
func (c *YearChart) ApplyDrill(msg DrillLoaded[int, model.YearCategoryTotal]) {
	if msg.Err != nil {
		c.logger.Warn("failed to fetch year breakdown", "year", msg.Key, "error", msg.Err)
		c.DrillErr = "Failed to fetch categories for " + strconv.Itoa(msg.Key) + "."
		return
	}
	if !c.drill.Load(msg.Side, msg.Key, msg.Data) {
		c.logger.Debug("drill response for a closed year discarded", "year", msg.Key, "side", msg.Side)
	}
}

// Drill opens side on bar i and loads it synchronously.
func (c *YearChart) Drill(ctx context.Context, side chart.Side, i int) error {
	q, ok := c.Open(side, i)
	if !ok {
		return nil
	}
	msg := c.FetchDrill(ctx, q)
	c.ApplyDrill(msg)
	return msg.Err
}

// Back returns side to the year overview.
func (c *YearChart) Back(side chart.Side) {
	c.drill.Back(side)
}

// Selected returns the year side has drilled into.
func (c *YearChart) Selected(side chart.Side) (int, bool) {
	return c.drill.Selected(side)
}

// Breakdown returns the drill-down dataset of side.
func (c *YearChart) Breakdown(side chart.Side) []model.YearCategoryTotal {
	return c.drill.Data(side)
}

// Series returns what side currently shows.
func (c *YearChart) Series(side chart.Side) chart.Series {
	if year, open := c.drill.Selected(side); open {
		return chart.YearCategorySeries(side, year, c.drill.Data(side))
	}
	credit, debit := chart.YearSeries(c.totals)
	if side == chart.Debit {
		return debit
	}
	return credit
}
