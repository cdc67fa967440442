package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finboard/internal/model"
)

func validIncome() model.Income {
	return model.Income{
		Source:     "Salary",
		Frequency:  model.FrequencyMonthly,
		StartDate:  model.NewDate(2024, time.January, 1),
		EndDate:    model.NewDate(2040, time.December, 31),
		Value:      decimal.NewFromInt(150000),
		GrowthRate: decimal.NewFromInt(5),
	}
}

func TestStruct_ValidIncome(t *testing.T) {
	assert.NoError(t, Struct(validIncome()))
}

func TestStruct_IncomeFieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Income)
		field  string
		want   string
	}{
		{name: "missing source", mutate: func(i *model.Income) { i.Source = "" }, field: "source", want: "Source is required"},
		{name: "zero value", mutate: func(i *model.Income) { i.Value = decimal.Zero }, field: "value", want: "Value must be greater than 0"},
		{name: "negative value", mutate: func(i *model.Income) { i.Value = decimal.NewFromInt(-5) }, field: "value", want: "Value must be greater than 0"},
		{name: "unknown frequency", mutate: func(i *model.Income) { i.Frequency = "Fortnightly" }, field: "frequency", want: "Frequency must be one of Daily, Weekly, Bi-Weekly, Monthly, Quarterly, Half-Yearly, Annual"},
		{name: "missing start", mutate: func(i *model.Income) { i.StartDate = model.Date{} }, field: "start_date", want: "Start date is required"},
		{name: "end before start", mutate: func(i *model.Income) { i.EndDate = model.NewDate(2023, time.June, 1) }, field: "end_date", want: "End date cannot be before start date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validIncome()
			tt.mutate(&in)

			err := Struct(in)
			require.Error(t, err)
			fields := Fields(err)
			require.NotNil(t, fields, "got %v", err)
			assert.Equal(t, tt.want, fields[tt.field])
		})
	}
}

func TestStruct_SavingRateBounds(t *testing.T) {
	assert.NoError(t, Struct(model.Saving{SavingRate: decimal.Zero}))
	assert.NoError(t, Struct(model.Saving{SavingRate: decimal.NewFromInt(100)}))

	err := Struct(model.Saving{SavingRate: decimal.NewFromFloat(100.5)})
	assert.Equal(t, "Saving rate must be at most 100", Fields(err)["saving_rate"])

	err = Struct(model.Saving{SavingRate: decimal.NewFromInt(-1)})
	assert.Equal(t, "Saving rate must be at least 0", Fields(err)["saving_rate"])
}

func TestStruct_DeleteRangeOrder(t *testing.T) {
	r := model.DeleteRange{
		StartDate: model.NewDate(2024, time.March, 10),
		EndDate:   model.NewDate(2024, time.March, 1),
		UserEmail: "a@b.co",
		Bank:      model.AllBanks,
	}
	err := Struct(r)
	require.Error(t, err)
	assert.Contains(t, Fields(err), "end_date")

	r.EndDate = r.StartDate
	assert.NoError(t, Struct(r), "a single-day range is allowed")
}

func TestFieldErrors_Error(t *testing.T) {
	err := FieldErrors{"value": "Value must be greater than 0", "source": "Source is required"}
	assert.Equal(t, "Source is required; Value must be greater than 0", err.Error())
	assert.Nil(t, Fields(errors.New("boom")))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Profile name", Label("profile_name"))
	assert.Equal(t, "", Label(""))
	assert.Equal(t, "start_date", snake("StartDate"))
}

func TestStruct_MessagesForOtherForms(t *testing.T) {
	err := Struct(model.Expense{
		Type:          "Rent",
		Frequency:     model.FrequencyMonthly,
		StartDate:     model.NewDate(2024, time.January, 1),
		EndDate:       model.NewDate(2030, time.January, 1),
		Value:         decimal.NewFromInt(20000),
		InflationRate: decimal.NewFromInt(-2),
	})
	assert.Equal(t, FieldErrors{"inflation_rate": "Inflation rate must be at least 0"}, Fields(err))

	err = Struct(model.Profile{})
	assert.Equal(t, "Profile name is required", Fields(err)["profile_name"])

	err = Struct(model.CategoryRule{Keyword: "swiggy"})
	fields := Fields(err)
	assert.Equal(t, "Category is required", fields["category"])
	assert.Equal(t, "Cat type is required", fields["cat_type"])
}
