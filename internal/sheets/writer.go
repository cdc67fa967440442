package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/finboard/internal/common"
	"github.com/Veraticus/finboard/internal/model"
	"github.com/Veraticus/finboard/internal/networth"
)

// YearColumns head the yearly projection table.
var YearColumns = []string{"Year", "Net Worth", "Income", "Income from Savings, Investments & Assets", "Expenses", "YoY Savings Ratio"}

// Report is one profile's projection, ready to push.
type Report struct {
	Generated time.Time
	Profile   string
	Email     string
	Data      networth.ProjectionData
}

// Writer pushes projection reports to Google Sheets.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a writer authenticated from config.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return NewWriterWithService(service, config, logger), nil
}

// NewWriterWithService wraps an existing Sheets service.
func NewWriterWithService(service *sheets.Service, config Config, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	return &Writer{service: service, config: config, logger: logger}
}

// Write replaces the spreadsheet contents with report and returns the
// spreadsheet ID. A spreadsheet is created when none is configured.
func (w *Writer) Write(ctx context.Context, report Report) (string, error) {
	w.logger.Info("pushing projection to sheets",
		"profile", report.Profile,
		"years", len(report.Data.NetWorth),
		"line_items", len(report.Data.Summary))

	retryOpts := common.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	var spreadsheetID string
	err := common.WithRetry(ctx, func() error {
		id, err := w.getOrCreateSpreadsheet(ctx)
		spreadsheetID = id
		return classify(err)
	}, retryOpts)
	if err != nil {
		return "", fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	if err := common.WithRetry(ctx, func() error {
		return classify(w.clearSheet(ctx, spreadsheetID))
	}, retryOpts); err != nil {
		return "", fmt.Errorf("failed to clear sheet: %w", err)
	}

	values, layout := projectionValues(report)

	if err := common.WithRetry(ctx, func() error {
		return classify(w.writeData(ctx, spreadsheetID, values))
	}, retryOpts); err != nil {
		return "", fmt.Errorf("failed to write data: %w", err)
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return classify(w.applyFormatting(ctx, spreadsheetID, layout))
		}, retryOpts)
		if err != nil {
			// Formatting is cosmetic.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("projection pushed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(values))
	return spreadsheetID, nil
}

// classify marks client errors other than rate limiting as permanent.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != http.StatusTooManyRequests {
		return &common.PermanentError{Err: err}
	}
	return err
}

func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := OAuth2Config{ClientID: config.ClientID, ClientSecret: config.ClientSecret}.oauth()
		tokenSource = client.TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	opts := []option.ClientOption{option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource))}
	if config.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(config.Endpoint))
	}
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}

func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		_, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		return w.config.SpreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: "Projection"}},
		},
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	// Later pushes reuse it.
	w.config.SpreadsheetID = created.SpreadsheetId
	return created.SpreadsheetId, nil
}

func (w *Writer) clearSheet(ctx context.Context, spreadsheetID string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, "A:Z", &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// sheetLayout records where the sections landed, for formatting.
type sheetLayout struct {
	yearHeader int
	yearRows   int
	itemHeader int
	itemRows   int
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// projectionValues lays out the report: a title block, the per-year
// projection joined across series, then the line items.
func projectionValues(report Report) ([][]any, sheetLayout) {
	data := report.Data
	type yearRow struct {
		netWorth, income, assets, expenses, ratio decimal.Decimal
	}
	years := make(map[int]*yearRow)
	row := func(year int) *yearRow {
		r, ok := years[year]
		if !ok {
			r = &yearRow{}
			years[year] = r
		}
		return r
	}
	for _, p := range data.NetWorth {
		row(p.Year).netWorth = p.NetWorth
	}
	for _, p := range data.Income {
		r := row(p.Year)
		r.income = p.Income
		r.assets = p.AssetIncome
	}
	for _, p := range data.Expenses {
		row(p.Year).expenses = p.Expenses
	}
	for _, p := range data.SavingsRatio {
		row(p.Year).ratio = p.Ratio
	}

	order := make([]int, 0, len(years))
	for year := range years {
		order = append(order, year)
	}
	sort.Ints(order)

	values := make([][]any, 0, 7+len(order)+len(data.Summary))
	values = append(values,
		[]any{"Net Worth Projection", report.Profile},
		[]any{"Generated", report.Generated.Format("2006-01-02 15:04"), report.Email},
		[]any{},
	)

	var layout sheetLayout
	layout.yearHeader = len(values)
	header := make([]any, len(YearColumns))
	for i, col := range YearColumns {
		header[i] = col
	}
	values = append(values, header)
	for _, year := range order {
		r := years[year]
		values = append(values, []any{year, money(r.netWorth), money(r.income), money(r.assets), money(r.expenses), r.ratio.StringFixed(2)})
	}
	layout.yearRows = len(order)

	values = append(values, []any{}, []any{"Line Items"})
	layout.itemHeader = len(values)
	itemHeader := make([]any, len(networth.SummaryColumns))
	for i, col := range networth.SummaryColumns {
		itemHeader[i] = col
	}
	values = append(values, itemHeader)
	for _, item := range data.Summary {
		values = append(values, summaryRow(item))
	}
	layout.itemRows = len(data.Summary)

	return values, layout
}

func summaryRow(item model.SummaryItem) []any {
	return []any{
		item.Category,
		item.Type,
		money(item.Value),
		item.StartDate.String(),
		item.EndDate.String(),
		item.Rate.StringFixed(2),
	}
}

func (w *Writer) writeData(ctx context.Context, spreadsheetID string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))

		batch := values[i:end]
		rangeStr := fmt.Sprintf("A%d", i+1)
		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, rangeStr, &sheets.ValueRange{Values: batch}).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "start_row", i+1, "rows", len(batch))
	}
	return nil
}

func boldRows(start, end int64, columns int64) *sheets.Request {
	return &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: &sheets.GridRange{
				StartRowIndex:    start,
				EndRowIndex:      end,
				StartColumnIndex: 0,
				EndColumnIndex:   columns,
			},
			Cell: &sheets.CellData{
				UserEnteredFormat: &sheets.CellFormat{
					TextFormat: &sheets.TextFormat{Bold: true},
				},
			},
			Fields: "userEnteredFormat.textFormat",
		},
	}
}

func currency(startRow, endRow, startCol, endCol int64) *sheets.Request {
	return &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: &sheets.GridRange{
				StartRowIndex:    startRow,
				EndRowIndex:      endRow,
				StartColumnIndex: startCol,
				EndColumnIndex:   endCol,
			},
			Cell: &sheets.CellData{
				UserEnteredFormat: &sheets.CellFormat{
					NumberFormat: &sheets.NumberFormat{
						Type:    "CURRENCY",
						Pattern: "₹#,##0.00",
					},
				},
			},
			Fields: "userEnteredFormat.numberFormat",
		},
	}
}

func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, layout sheetLayout) error {
	yearStart := int64(layout.yearHeader + 1)
	itemStart := int64(layout.itemHeader + 1)

	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{StartRowIndex: 0, EndRowIndex: 1, StartColumnIndex: 0, EndColumnIndex: 2},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true, FontSize: 16},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		boldRows(int64(layout.yearHeader), yearStart, int64(len(YearColumns))),
		boldRows(int64(layout.itemHeader-1), itemStart, int64(len(networth.SummaryColumns))),
		currency(yearStart, yearStart+int64(layout.yearRows), 1, 5),
		currency(itemStart, itemStart+int64(layout.itemRows), 2, 3),
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   int64(len(YearColumns)),
				},
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					GridProperties: &sheets.GridProperties{FrozenRowCount: 2},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}

	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).Context(ctx).Do()
	return err
}
