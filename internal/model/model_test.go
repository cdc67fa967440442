package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_PreservesKeyOrder(t *testing.T) {
	payload := `{"UserID":"u@x.io","TransactionID":42,"Date":"2024-03-01","Narration":"UPI/Swiggy","Debit":250.50,"Credit":null,"Category":"Food"}`

	var r Record
	require.NoError(t, json.Unmarshal([]byte(payload), &r))

	assert.Equal(t, []string{"UserID", "TransactionID", "Date", "Narration", "Debit", "Credit", "Category"}, r.Keys())
	assert.Equal(t, "42", r.String("TransactionID"))
	assert.Equal(t, "250.5", r.String("Debit"))
	assert.Equal(t, "", r.String("Credit"))
	assert.False(t, r.Has("Credit"))
	assert.Equal(t, "", r.String("Missing"))

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(out))
	assert.Less(t, strings.Index(string(out), "UserID"), strings.Index(string(out), "Category"))
}

func TestRecord_DecodeSlice(t *testing.T) {
	var rows []Record
	require.NoError(t, json.Unmarshal([]byte(`[{"b":1,"a":2},{"a":3}]`), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"b", "a"}, rows[0].Keys())
	assert.Equal(t, "3", rows[1].String("a"))
}

func TestRecord_RejectsNonObject(t *testing.T) {
	var r Record
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &r))
}

func TestRecord_SetAndClone(t *testing.T) {
	r := NewRecord("Category", "Food", "Bank", "HDFC Bank")
	c := r.Clone()
	c.Set("Category", "Travel")
	c.Set("Note", "new")

	assert.Equal(t, "Food", r.String("Category"))
	assert.Equal(t, "Travel", c.String("Category"))
	assert.Equal(t, []string{"Category", "Bank", "Note"}, c.Keys())
	assert.Equal(t, 2, r.Len())
}

func TestStringify(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{in: nil, want: ""},
		{in: "text", want: "text"},
		{in: json.Number("1200.00"), want: "1200"},
		{in: true, want: "true"},
		{in: 12.5, want: "12.5"},
		{in: 7, want: "7"},
		{in: decimal.RequireFromString("3.10"), want: "3.1"},
		{in: map[string]any{"k": "v"}, want: `{"k":"v"}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Stringify(tt.in))
	}
}

func TestDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.February, 29), d)
	assert.Equal(t, "2024-02-29", d.String())

	ts, err := ParseDate("2024-02-29T10:15:00")
	require.NoError(t, err)
	assert.Equal(t, d, ts)

	empty, err := ParseDate("  ")
	require.NoError(t, err)
	assert.True(t, empty.IsZero())

	_, err = ParseDate("29/02/2024")
	assert.Error(t, err)

	assert.True(t, NewDate(2024, 1, 1).Before(NewDate(2024, 1, 2)))
	assert.True(t, NewDate(2024, 1, 2).After(NewDate(2024, 1, 1)))
}

func TestDate_JSON(t *testing.T) {
	type wrapper struct {
		Start Date `json:"start_date"`
		End   Date `json:"end_date"`
	}

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"start_date":"2023-04-01","end_date":null}`), &w))
	assert.Equal(t, "2023-04-01", w.Start.String())
	assert.True(t, w.End.IsZero())

	out, err := json.Marshal(w)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start_date":"2023-04-01","end_date":null}`, string(out))
}

func TestFrequency(t *testing.T) {
	assert.True(t, FrequencyBiWeekly.Valid())
	assert.False(t, Frequency("Fortnightly").Valid())
	assert.Equal(t, "Bi-Weekly", FrequencyBiWeekly.Label())
	assert.Equal(t, "Half-Yearly", FrequencyHalfYearly.Label())
	assert.Equal(t, "Monthly", FrequencyMonthly.Label())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Asha", DisplayName("Asha", "Asha Rao", "asha@x.io"))
	assert.Equal(t, "Asha", DisplayName("", "Asha Rao", "asha@x.io"))
	assert.Equal(t, "asha.rao", DisplayName("", "", "asha.rao@x.io"))
}

func TestIncome_JSONUsesNumbers(t *testing.T) {
	in := Income{
		Source:     "Salary",
		Value:      decimal.RequireFromString("85000"),
		Frequency:  FrequencyMonthly,
		StartDate:  NewDate(2024, 4, 1),
		EndDate:    NewDate(2044, 3, 31),
		GrowthRate: decimal.RequireFromString("6.5"),
		UserID:     "u@x.io",
		ProfileID:  3,
	}
	out, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"source":"Salary","frequency":"Monthly","user_id":"u@x.io","start_date":"2024-04-01","end_date":"2044-03-31","value":85000,"growth_rate":6.5,"profile_id":3}`, string(out))
}

func TestProjectedIncomePoint_JSON(t *testing.T) {
	body := `[{"Year":2025,"Income":100,"Income from Savings, Investments & Assets":50.25},{"Year":2026,"Income":110}]`

	var points []ProjectedIncomePoint
	require.NoError(t, json.Unmarshal([]byte(body), &points))
	require.Len(t, points, 2)
	assert.Equal(t, 2025, points[0].Year)
	assert.True(t, decimal.NewFromInt(100).Equal(points[0].Income))
	assert.True(t, decimal.RequireFromString("50.25").Equal(points[0].AssetIncome))
	assert.True(t, points[1].AssetIncome.IsZero())

	out, err := json.Marshal(points[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"Year":2025,"Income":100,"Income from Savings, Investments & Assets":50.25}`, string(out))
}

func TestSummaryRecords(t *testing.T) {
	s := BankSummary{Bank: "HDFC Bank", PendingDays: 4, OpeningBalance: decimal.NewFromInt(100)}
	r := s.Record()
	assert.Equal(t, "HDFC Bank", r.String("Bank"))
	assert.Equal(t, "4", r.String("Pending_Days"))
	assert.Equal(t, "100", r.String("Opening_Balance"))

	item := SummaryItem{Category: "Income", Type: "Salary", Rate: decimal.RequireFromString("5")}
	assert.Equal(t, []string{"Category", "Type", "Value", "Start Date", "End Date", "Rate"}, item.Record().Keys())
}
