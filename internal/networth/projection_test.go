package networth

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finboard/internal/model"
	"github.com/Veraticus/finboard/internal/testutil"
)

func seedProjection(backend *testutil.Backend) {
	worth, income, expenses, ratio := testutil.NewFixtures(21).Projection(2025, 2029)
	backend.Do(func(s *testutil.State) {
		s.NetWorth = worth
		s.ProjectedIncome = income
		s.ProjectedExpenses = expenses
		s.SavingsRatio = ratio
		s.Summary = []model.SummaryItem{
			{Category: "Income", Type: "Salary", Value: decimal.NewFromInt(90000), StartDate: model.NewDate(2025, time.January, 1), EndDate: model.NewDate(2040, time.January, 1), Rate: decimal.NewFromInt(5)},
			{Category: "Expense", Type: "Rent", Value: decimal.NewFromInt(25000), StartDate: model.NewDate(2025, time.January, 1), EndDate: model.NewDate(2030, time.January, 1), Rate: decimal.NewFromInt(6)},
		}
		s.Export = []byte("PK\x03\x04fake-xlsx")
	})
}

func TestProjectionRefresh(t *testing.T) {
	client, backend := setup(t)
	seedProjection(backend)
	p := NewProjection(client, staticIdentity(testEmail), fixedProfile(4), nil)

	require.NoError(t, p.Refresh(context.Background()))
	assert.Equal(t, int64(4), p.ProfileID())
	assert.Len(t, p.Data().NetWorth, 5)

	assert.Equal(t, SummaryColumns, p.Table.Columns())
	p.Table.SetFilter("Type", "rent")
	rows := p.Table.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "Expense", rows[0].String("Category"))

	worth := p.NetWorthSeries()
	assert.Equal(t, "Net Worth", worth.Name)
	assert.Equal(t, 5, worth.Len())
	assert.Equal(t, "2025", worth.Label(0))
	income, assets := p.IncomeSeries()
	assert.Equal(t, 5, income.Len())
	assert.Equal(t, "Income from Savings, Investments & Assets", assets.Name)
	_, seeded, _, _ := testutil.NewFixtures(21).Projection(2025, 2029)
	require.Len(t, assets.Bars, len(seeded))
	for i, want := range seeded {
		assert.True(t, want.AssetIncome.Equal(assets.Bars[i].Value), "year %d", want.Year)
	}
	assert.Equal(t, 5, p.ExpenseSeries().Len())
	assert.Equal(t, 5, p.SavingsRatioSeries().Len())

	last, ok := backend.LastRequest(http.MethodGet, "/networth/:key/:id/savings-ratio")
	require.True(t, ok)
	assert.Equal(t, "/networth/"+testEmail+"/4/savings-ratio", last.Path)

	p.Reset()
	assert.Empty(t, p.Data().Summary)
	assert.Zero(t, p.Table.Len())
}

func TestProjectionOneFailureFailsAll(t *testing.T) {
	client, backend := setup(t)
	seedProjection(backend)
	p := NewProjection(client, staticIdentity(testEmail), fixedProfile(4), nil)
	require.NoError(t, p.Refresh(context.Background()))

	backend.Fail(http.MethodGet, "/networth/:key/:id/expenses", http.StatusInternalServerError, nil)
	require.Error(t, p.Refresh(context.Background()))
	assert.Equal(t, "Failed to fetch net worth data.", p.Status.Err)
	assert.Len(t, p.Data().NetWorth, 5, "a failed fetch keeps the last projection")
}

func TestProjectionNeedsProfile(t *testing.T) {
	client, backend := setup(t)
	p := NewProjection(client, staticIdentity(testEmail), fixedProfile(0), nil)

	require.Error(t, p.Refresh(context.Background()))
	assert.Equal(t, "Select or create a profile first.", p.Status.Err)
	assert.Empty(t, backend.Requests())
}

type countingWriter int

func (c *countingWriter) Write(p []byte) (int, error) {
	*c += countingWriter(len(p))
	return len(p), nil
}

func TestProjectionExport(t *testing.T) {
	client, backend := setup(t)
	seedProjection(backend)
	p := NewProjection(client, staticIdentity(testEmail), fixedProfile(4), nil)
	dir := t.TempDir()

	var progress countingWriter
	path, err := p.Export(context.Background(), dir, &progress)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "net_worth_projection.xlsx"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("PK\x03\x04fake-xlsx"), data)
	assert.Equal(t, len(data), int(progress))
	assert.Contains(t, p.Status.Notice, path)

	named := filepath.Join(dir, "mine.xlsx")
	path, err = p.Export(context.Background(), named, nil)
	require.NoError(t, err)
	assert.Equal(t, named, path)

	backend.Do(func(s *testutil.State) { s.Export = nil })
	_, err = p.Export(context.Background(), dir, nil)
	require.Error(t, err)
	assert.Equal(t, "Nothing to export", p.Status.Err)
}
