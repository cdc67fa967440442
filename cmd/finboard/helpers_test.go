package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finboard/internal/chart"
	"github.com/Veraticus/finboard/internal/model"
	"github.com/Veraticus/finboard/internal/tui/viewmodel"
	"github.com/Veraticus/finboard/internal/validation"
)

func TestFindProfile(t *testing.T) {
	profiles := []model.Profile{
		{ID: 3, Name: "Retirement"},
		{ID: 7, Name: "House"},
	}

	tests := []struct {
		name   string
		ref    string
		wantID int64
		found  bool
	}{
		{name: "by id", ref: "7", wantID: 7, found: true},
		{name: "by name ignoring case", ref: "retirement", wantID: 3, found: true},
		{name: "unknown id", ref: "9", found: false},
		{name: "unknown name", ref: "Boat", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := findProfile(profiles, tt.ref)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.wantID, p.ID)
			}
		})
	}
}

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		input   string
		want    model.Frequency
		wantErr bool
	}{
		{input: "Monthly", want: model.FrequencyMonthly},
		{input: "monthly", want: model.FrequencyMonthly},
		{input: "bi-weekly", want: model.FrequencyBiWeekly},
		{input: " HalfYearly ", want: model.FrequencyHalfYearly},
		{input: "Fortnightly", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseFrequency(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDecimal(t *testing.T) {
	d, err := parseDecimal("value", " 1250.50 ")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1250.5").Equal(d))

	_, err = parseDecimal("value", "")
	assert.ErrorContains(t, err, "--value is required.")

	_, err = parseDecimal("rate", "ten")
	assert.ErrorContains(t, err, "--rate must be a number.")
}

func TestRecurringFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "add"}
	var f recurringFlags
	f.bind(cmd, "source", "", "growth-rate", "")

	require.NoError(t, cmd.ParseFlags([]string{
		"--source", "Salary",
		"--value", "85000",
		"--start", "2025-04-01",
		"--end", "2045-03-31",
		"--growth-rate", "6",
	}))
	require.NoError(t, f.parse())

	assert.Equal(t, "Salary", f.kind)
	assert.Equal(t, model.FrequencyMonthly, f.frequency)
	assert.True(t, decimal.NewFromInt(85000).Equal(f.value))
	assert.True(t, decimal.NewFromInt(6).Equal(f.rate))
	assert.Equal(t, "2025-04-01", f.start.String())
	assert.Equal(t, "2045-03-31", f.end.String())
}

func TestRecurringFlagsRejectBadDate(t *testing.T) {
	cmd := &cobra.Command{Use: "add"}
	var f recurringFlags
	f.bind(cmd, "type", "", "inflation-rate", "")

	require.NoError(t, cmd.ParseFlags([]string{"--type", "Rent", "--value", "100", "--start", "01/04/2025"}))
	err := f.parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--start")
}

func TestLedgerError(t *testing.T) {
	assert.Equal(t, "Failed to add to savings.", ledgerError("Failed to add to savings.", nil))
	assert.Equal(t,
		"Please fix the highlighted fields. Saving rate must be at most 100",
		ledgerError("Please fix the highlighted fields.", validation.FieldErrors{"saving_rate": "Saving rate must be at most 100"}))
}

func TestArticleAndPick(t *testing.T) {
	assert.Equal(t, "an", article("income"))
	assert.Equal(t, "a", article("saving rate"))

	assert.Equal(t, "Spouse", pick(model.Relationships, "spouse"))
	assert.Equal(t, "Cousin", pick(model.Relationships, " Cousin "))
}

func TestApplyTableFlags(t *testing.T) {
	table := viewmodel.NewTable(viewmodel.TableOptions{})
	table.SetRecords([]model.Record{
		model.NewRecord("Bank", "HDFC Bank", "Category", "Food"),
		model.NewRecord("Bank", "Axis Bank", "Category", "Travel"),
		model.NewRecord("Bank", "HDFC Bank", "Category", "Rent"),
	})

	require.NoError(t, applyTableFlags(table, []string{"Bank=hdfc"}, "Category", true))
	rows := table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "Rent", rows[0].String("Category"))
	assert.Equal(t, viewmodel.SortDesc, table.Sort().Direction)

	err := applyTableFlags(table, []string{"nonsense"}, "", false)
	assert.ErrorContains(t, err, "is not column=text")
}

func TestPrintSeries(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	s := chart.Series{Name: "Debit by Category", Bars: []chart.Bar{
		{Label: "Food", Value: decimal.NewFromInt(1200)},
		{Label: "Rent", Value: decimal.NewFromInt(25000)},
	}}
	require.NoError(t, printSeries(cmd, s))

	out := buf.String()
	assert.Contains(t, out, "Debit by Category")
	assert.Contains(t, out, "Food")
	assert.Contains(t, out, viewmodel.FormatAmount(decimal.NewFromInt(25000)))

	buf.Reset()
	require.NoError(t, printSeries(cmd, chart.Series{Name: "Empty"}))
	assert.True(t, strings.Contains(buf.String(), "No data found."))
}
