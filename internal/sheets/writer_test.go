package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/finboard/internal/model"
	"github.com/Veraticus/finboard/internal/networth"
	"github.com/Veraticus/finboard/internal/testutil"
)

// fakeSheets is a minimal Sheets API: it records calls and writes, and
// fails calls of a kind while failures are queued for it.
type fakeSheets struct {
	failures map[string][]int
	calls    map[string]int
	writes   map[string][][]any
	mu       sync.Mutex
}

func (f *fakeSheets) fail(kind string, codes ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[kind] = append(f.failures[kind], codes...)
}

func (f *fakeSheets) count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[kind]
}

func kindOf(r *http.Request) string {
	path := r.URL.Path
	switch {
	case r.Method == http.MethodPost && path == "/v4/spreadsheets":
		return "create"
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		return "clear"
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		return "format"
	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		return "write"
	case r.Method == http.MethodGet:
		return "get"
	}
	return "unknown"
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	kind := kindOf(r)

	f.mu.Lock()
	f.calls[kind]++
	var code int
	if queued := f.failures[kind]; len(queued) > 0 {
		code, f.failures[kind] = queued[0], queued[1:]
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if code != 0 {
		w.WriteHeader(code)
		_, _ = fmt.Fprintf(w, `{"error":{"code":%d,"message":"injected failure"}}`, code)
		return
	}

	switch kind {
	case "create":
		_, _ = fmt.Fprint(w, `{"spreadsheetId":"sheet-new","spreadsheetUrl":"https://sheets.example/sheet-new"}`)
	case "get":
		_, _ = fmt.Fprint(w, `{"spreadsheetId":"sheet-existing"}`)
	case "write":
		var body sheets.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		rng := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		f.mu.Lock()
		for _, row := range body.Values {
			f.writes[rng] = append(f.writes[rng], row)
		}
		f.mu.Unlock()
		_, _ = fmt.Fprint(w, `{}`)
	default:
		_, _ = fmt.Fprint(w, `{}`)
	}
}

func newFake(t *testing.T, config Config) (*Writer, *fakeSheets) {
	t.Helper()
	fake := &fakeSheets{
		failures: make(map[string][]int),
		calls:    make(map[string]int),
		writes:   make(map[string][][]any),
	}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := sheets.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return NewWriterWithService(svc, config, nil), fake
}

func testReport() Report {
	worth, income, expenses, ratio := testutil.NewFixtures(7).Projection(2025, 2029)
	return Report{
		Profile:   "Family",
		Email:     "meera@example.com",
		Generated: time.Date(2025, time.March, 1, 9, 30, 0, 0, time.UTC),
		Data: networth.ProjectionData{
			NetWorth:     worth,
			Income:       income,
			Expenses:     expenses,
			SavingsRatio: ratio,
			Summary: []model.SummaryItem{
				{Category: "Income", Type: "Salary", Value: decimal.NewFromInt(90000), Rate: decimal.NewFromInt(5)},
				{Category: "Expense", Type: "Rent", Value: decimal.NewFromInt(25000), Rate: decimal.NewFromInt(6)},
			},
		},
	}
}

func fastRetry() Config {
	cfg := DefaultConfig()
	cfg.RetryDelay = time.Millisecond
	return cfg
}

func TestWriteCreatesSpreadsheet(t *testing.T) {
	cfg := fastRetry()
	cfg.BatchSize = 5
	w, fake := newFake(t, cfg)

	id, err := w.Write(context.Background(), testReport())
	require.NoError(t, err)
	assert.Equal(t, "sheet-new", id)
	assert.Equal(t, 1, fake.count("create"))
	assert.Equal(t, 1, fake.count("clear"))
	assert.Equal(t, 1, fake.count("format"))

	// 3 title rows, header + 5 years, spacer + label, header + 2 items.
	assert.Equal(t, 3, fake.count("write"))
	require.Len(t, fake.writes["A1"], 5)
	assert.Len(t, fake.writes["A6"], 5)
	assert.Len(t, fake.writes["A11"], 4)
	assert.Equal(t, []any{"Net Worth Projection", "Family"}, fake.writes["A1"][0])
	assert.Equal(t, "Year", fake.writes["A1"][3][0])

	// The created spreadsheet is reused.
	_, err = w.Write(context.Background(), testReport())
	require.NoError(t, err)
	assert.Equal(t, 1, fake.count("create"))
	assert.Equal(t, 1, fake.count("get"))
}

func TestWriteRetriesServerErrors(t *testing.T) {
	cfg := fastRetry()
	cfg.SpreadsheetID = "sheet-existing"
	w, fake := newFake(t, cfg)
	fake.fail("write", http.StatusServiceUnavailable)
	fake.fail("clear", http.StatusTooManyRequests)

	id, err := w.Write(context.Background(), testReport())
	require.NoError(t, err)
	assert.Equal(t, "sheet-existing", id)
	assert.Equal(t, 2, fake.count("write"))
	assert.Equal(t, 2, fake.count("clear"))
}

func TestWriteDoesNotRetryClientErrors(t *testing.T) {
	cfg := fastRetry()
	cfg.SpreadsheetID = "sheet-existing"
	w, fake := newFake(t, cfg)
	fake.fail("get", http.StatusForbidden)

	_, err := w.Write(context.Background(), testReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to access spreadsheet sheet-existing")
	assert.Equal(t, 1, fake.count("get"))
	assert.Equal(t, 0, fake.count("write"))
}

func TestWriteToleratesFormattingFailure(t *testing.T) {
	cfg := fastRetry()
	cfg.RetryAttempts = 1
	w, fake := newFake(t, cfg)
	fake.fail("format", http.StatusInternalServerError)

	_, err := w.Write(context.Background(), testReport())
	require.NoError(t, err)
	assert.Equal(t, 1, fake.count("format"))
}

func TestWriteSkipsFormattingWhenDisabled(t *testing.T) {
	cfg := fastRetry()
	cfg.EnableFormatting = false
	w, fake := newFake(t, cfg)

	_, err := w.Write(context.Background(), testReport())
	require.NoError(t, err)
	assert.Equal(t, 0, fake.count("format"))
}

func TestProjectionValuesJoinsSeriesByYear(t *testing.T) {
	report := Report{
		Profile:   "Solo",
		Generated: time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC),
		Data: networth.ProjectionData{
			NetWorth: []model.NetWorthPoint{
				{Year: 2026, NetWorth: decimal.RequireFromString("2000.5")},
				{Year: 2025, NetWorth: decimal.NewFromInt(1000)},
			},
			Income: []model.ProjectedIncomePoint{
				{Year: 2025, Income: decimal.NewFromInt(300), AssetIncome: decimal.NewFromInt(40)},
			},
			Expenses:     []model.ExpensePoint{{Year: 2027, Expenses: decimal.NewFromInt(90)}},
			SavingsRatio: []model.SavingsRatioPoint{{Year: 2025, Ratio: decimal.RequireFromString("12.345")}},
		},
	}

	values, layout := projectionValues(report)
	assert.Equal(t, 3, layout.yearHeader)
	assert.Equal(t, 3, layout.yearRows)
	assert.Equal(t, 0, layout.itemRows)

	assert.Equal(t, []any{2025, "1000.00", "300.00", "40.00", "0.00", "12.35"}, values[4])
	assert.Equal(t, []any{2026, "2000.50", "0.00", "0.00", "0.00", "0.00"}, values[5])
	assert.Equal(t, []any{2027, "0.00", "0.00", "0.00", "90.00", "0.00"}, values[6])
	assert.Equal(t, []any{"Line Items"}, values[8])
	assert.Len(t, values[layout.itemHeader], len(networth.SummaryColumns))
}
