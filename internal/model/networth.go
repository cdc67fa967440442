package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Income sources offered by the income form.
var IncomeSources = []string{
	"Salary",
	"Business Income",
	"Bonuses & Commission",
	"Freelancing",
	"Consulting",
	"Dividends",
	"Royalties",
	"Others",
}

// Investment types offered by the investments form.
var InvestmentTypes = []string{
	"Stocks",
	"Bonds",
	"Mutual Funds",
	"Real Estate",
	"Gold",
	"FD",
	"Crypto",
	"Others",
}

// RelationshipSelf marks the dependent record that represents the user.
const RelationshipSelf = "Self"

// Relationships offered by the dependents form.
var Relationships = []string{RelationshipSelf, "Spouse", "Child", "Mother", "Father", "Other"}

// Genders offered by the personal-profile and dependents forms.
var Genders = []string{"Male", "Female", "Corporate", "Prefer not to say", "Other"}

// Profile is a named projection scenario.
type Profile struct {
	UserID string `json:"user_id"`
	Name   string `json:"profile_name" validate:"required"`
	ID     int64  `json:"id"`
}

// Income is a recurring income line.
type Income struct {
	Source     string          `json:"source" validate:"required"`
	Frequency  Frequency       `json:"frequency" validate:"required,frequency"`
	UserID     string          `json:"user_id"`
	StartDate  Date            `json:"start_date" validate:"required"`
	EndDate    Date            `json:"end_date" validate:"required,gtefield=StartDate"`
	Value      decimal.Decimal `json:"value" validate:"gt=0"`
	GrowthRate decimal.Decimal `json:"growth_rate"`
	ID         int64           `json:"id,omitempty"`
	ProfileID  int64           `json:"profile_id"`
}

// EntryID implements Entry.
func (i Income) EntryID() int64 { return i.ID }

// Expense is a recurring expense line.
type Expense struct {
	Type          string          `json:"expense_type" validate:"required"`
	Frequency     Frequency       `json:"frequency" validate:"required,frequency"`
	UserID        string          `json:"user_id"`
	StartDate     Date            `json:"start_date" validate:"required"`
	EndDate       Date            `json:"end_date" validate:"required,gtefield=StartDate"`
	Value         decimal.Decimal `json:"value" validate:"gt=0"`
	InflationRate decimal.Decimal `json:"inflation_rate" validate:"gte=0"`
	ID            int64           `json:"id,omitempty"`
	ProfileID     int64           `json:"profile_id"`
}

// EntryID implements Entry.
func (e Expense) EntryID() int64 { return e.ID }

// Investment is an asset with an expected return.
type Investment struct {
	Type         string          `json:"investment_type" validate:"required"`
	UserID       string          `json:"user_id"`
	StartDate    Date            `json:"start_date" validate:"required"`
	EndDate      Date            `json:"end_date" validate:"required,gtefield=StartDate"`
	Amount       decimal.Decimal `json:"amount" validate:"gt=0"`
	RateOfReturn decimal.Decimal `json:"rate_of_return" validate:"gte=0"`
	ID           int64           `json:"id,omitempty"`
	ProfileID    int64           `json:"profile_id"`
}

// EntryID implements Entry.
func (i Investment) EntryID() int64 { return i.ID }

// Saving is the share of surplus income saved each year, in percent.
type Saving struct {
	UserID     string          `json:"user_id"`
	SavingRate decimal.Decimal `json:"saving_rate" validate:"gte=0,lte=100"`
	ID         int64           `json:"id,omitempty"`
	ProfileID  int64           `json:"profile_id"`
}

// EntryID implements Entry.
func (s Saving) EntryID() int64 { return s.ID }

// Entry is a profile-scoped net-worth line item.
type Entry interface {
	Income | Expense | Investment | Saving
	EntryID() int64
}

// Dependent is a person linked to the user.
type Dependent struct {
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	DateOfBirth  Date   `json:"date_of_birth"`
	Gender       string `json:"gender"`
	Relationship string `json:"relationship" validate:"required"`
	ID           int64  `json:"id,omitempty"`
}

// IsSelf reports whether the dependent is the user's own record.
func (d Dependent) IsSelf() bool {
	return d.Relationship == RelationshipSelf
}

// NetWorthPoint is one year of the net-worth projection.
type NetWorthPoint struct {
	NetWorth decimal.Decimal `json:"NetWorth"`
	Year     int             `json:"Year"`
}

// ProjectedIncomePoint splits a year's projected income by origin.
type ProjectedIncomePoint struct {
	Income      decimal.Decimal
	AssetIncome decimal.Decimal
	Year        int
}

// AssetIncomeKey is the backend's key for AssetIncome. A struct tag cannot
// carry it because of the comma.
const AssetIncomeKey = "Income from Savings, Investments & Assets"

type projectedIncomeWire struct {
	Income decimal.Decimal `json:"Income"`
	Year   int             `json:"Year"`
}

// MarshalJSON implements json.Marshaler.
func (p ProjectedIncomePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"Year":         p.Year,
		"Income":       p.Income,
		AssetIncomeKey: p.AssetIncome,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *ProjectedIncomePoint) UnmarshalJSON(data []byte) error {
	var w projectedIncomeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var assets decimal.Decimal
	if v, ok := raw[AssetIncomeKey]; ok {
		if err := json.Unmarshal(v, &assets); err != nil {
			return err
		}
	}
	*p = ProjectedIncomePoint{Income: w.Income, AssetIncome: assets, Year: w.Year}
	return nil
}

// ExpensePoint is one year of projected expenses.
type ExpensePoint struct {
	Expenses decimal.Decimal `json:"Expenses"`
	Year     int             `json:"Year"`
}

// SavingsRatioPoint is one year of the savings ratio, in percent.
type SavingsRatioPoint struct {
	Ratio decimal.Decimal `json:"YoY Savings Ratio"`
	Year  int             `json:"Year"`
}

// SummaryItem is one line of the net-worth summary table.
type SummaryItem struct {
	Category  string          `json:"category"`
	Type      string          `json:"type"`
	StartDate Date            `json:"start_date"`
	EndDate   Date            `json:"end_date"`
	Value     decimal.Decimal `json:"value"`
	Rate      decimal.Decimal `json:"rate"`
}

// Record flattens the summary item into a table row.
func (s SummaryItem) Record() Record {
	return NewRecord(
		"Category", s.Category,
		"Type", s.Type,
		"Value", s.Value,
		"Start Date", s.StartDate.String(),
		"End Date", s.EndDate.String(),
		"Rate", s.Rate,
	)
}

// CreatedUser is the response of user creation.
type CreatedUser struct {
	UserID int64 `json:"user_id"`
}
