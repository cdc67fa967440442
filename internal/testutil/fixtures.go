package testutil

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/finboard/internal/model"
)

// TransactionCategories are the categories fixture transactions are drawn from.
var TransactionCategories = []string{
	"Food & Dining",
	"Groceries",
	"Rent",
	"Salary",
	"Shopping",
	"Travel",
	"Utilities",
}

// Fixtures builds realistic records from a seeded faker so runs are repeatable.
type Fixtures struct {
	faker *gofakeit.Faker
	seq   int
}

// NewFixtures returns a fixture builder seeded with seed.
func NewFixtures(seed int64) *Fixtures {
	return &Fixtures{faker: gofakeit.New(seed)}
}

func (f *Fixtures) money(lo, hi float64) decimal.Decimal {
	return decimal.NewFromFloat(f.faker.Float64Range(lo, hi)).Round(2)
}

func (f *Fixtures) date(from, to time.Time) model.Date {
	t := f.faker.DateRange(from, to)
	return model.NewDate(t.Year(), t.Month(), t.Day())
}

// Email returns a random email address.
func (f *Fixtures) Email() string {
	return f.faker.Email()
}

// Transaction returns one statement row for email in the backend's column order.
func (f *Fixtures) Transaction(email, bank string) model.Record {
	f.seq++
	credit, debit := decimal.Zero, f.money(50, 5000)
	if f.faker.Bool() {
		credit, debit = f.money(100, 90000), decimal.Zero
	}
	return model.NewRecord(
		model.ColumnUserID, email,
		model.ColumnTransactionID, fmt.Sprintf("txn-%04d", f.seq),
		model.ColumnBank, bank,
		model.ColumnDate, f.date(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)).String(),
		"Narration", f.faker.Company()+" "+f.faker.Word(),
		model.ColumnCredit, credit,
		model.ColumnDebit, debit,
		model.ColumnBalance, f.money(1000, 250000),
		model.ColumnCategory, f.faker.RandomString(TransactionCategories),
	)
}

// Transactions returns n rows spread over the statement banks.
func (f *Fixtures) Transactions(email string, n int) []model.Record {
	out := make([]model.Record, n)
	for i := range out {
		out[i] = f.Transaction(email, f.faker.RandomString(model.StatementBanks))
	}
	return out
}

// Categories returns the category picker options for TransactionCategories.
func (f *Fixtures) Categories() []model.CategoryOption {
	out := make([]model.CategoryOption, len(TransactionCategories))
	for i, name := range TransactionCategories {
		out[i] = model.CategoryOption{CategoryID: int64(i + 1), Category: name}
	}
	return out
}

// BankSummary returns a statement overview for bank.
func (f *Fixtures) BankSummary(email, bank string) model.BankSummary {
	start := f.date(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC))
	return model.BankSummary{
		UserID:         email,
		Bank:           bank,
		StartDate:      start,
		EndDate:        model.Date{Time: start.AddDate(0, 6, 0)},
		OpeningBalance: f.money(1000, 50000),
		ClosingBalance: f.money(1000, 50000),
		PendingDays:    f.faker.Number(0, 90),
		Transactions:   f.faker.Number(10, 400),
	}
}

// CategoryTotals returns one total per TransactionCategories entry.
func (f *Fixtures) CategoryTotals() []model.CategoryTotal {
	out := make([]model.CategoryTotal, len(TransactionCategories))
	for i, name := range TransactionCategories {
		out[i] = model.CategoryTotal{
			Category:    name,
			TotalCredit: f.money(0, 100000),
			TotalDebit:  f.money(0, 100000),
		}
	}
	return out
}

// CategoryTransactions returns n drill-down rows in random date order.
func (f *Fixtures) CategoryTransactions(n int) []model.CategoryTransaction {
	out := make([]model.CategoryTransaction, n)
	for i := range out {
		out[i] = model.CategoryTransaction{
			Date:      f.date(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)),
			Narration: f.faker.Company(),
			Credit:    f.money(0, 1000),
			Debit:     f.money(0, 1000),
		}
	}
	return out
}

// YearTotals returns totals for each year in [from, to].
func (f *Fixtures) YearTotals(from, to int) []model.YearTotal {
	var out []model.YearTotal
	for y := from; y <= to; y++ {
		out = append(out, model.YearTotal{Year: y, TotalCredit: f.money(1e5, 1e6), TotalDebit: f.money(1e5, 1e6)})
	}
	return out
}

// YearCategoryTotals returns per-category totals for each year in [from, to].
func (f *Fixtures) YearCategoryTotals(from, to int) []model.YearCategoryTotal {
	var out []model.YearCategoryTotal
	for y := from; y <= to; y++ {
		for _, name := range TransactionCategories {
			out = append(out, model.YearCategoryTotal{
				Year:        y,
				Category:    name,
				TotalCredit: f.money(0, 1e5),
				TotalDebit:  f.money(0, 1e5),
			})
		}
	}
	return out
}

// Profile returns an unsaved profile for email.
func (f *Fixtures) Profile(email string) model.Profile {
	return model.Profile{UserID: email, Name: f.faker.RandomString([]string{"Base case", "Early retirement", "Conservative", "Aggressive"})}
}

// Income returns a valid income line.
func (f *Fixtures) Income(email string, profileID int64) model.Income {
	start := f.date(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))
	return model.Income{
		UserID:     email,
		ProfileID:  profileID,
		Source:     f.faker.RandomString(model.IncomeSources),
		Value:      f.money(10000, 200000),
		Frequency:  model.FrequencyMonthly,
		StartDate:  start,
		EndDate:    model.Date{Time: start.AddDate(10, 0, 0)},
		GrowthRate: f.money(0, 12),
	}
}

// Expense returns a valid expense line.
func (f *Fixtures) Expense(email string, profileID int64) model.Expense {
	start := f.date(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))
	return model.Expense{
		UserID:        email,
		ProfileID:     profileID,
		Type:          f.faker.RandomString([]string{"Rent", "Groceries", "Insurance", "School fees"}),
		Value:         f.money(1000, 80000),
		Frequency:     model.Frequency(f.faker.RandomString([]string{"Monthly", "Quarterly", "Annual"})),
		StartDate:     start,
		EndDate:       model.Date{Time: start.AddDate(5, 0, 0)},
		InflationRate: f.money(0, 8),
	}
}

// Investment returns a valid investment line.
func (f *Fixtures) Investment(email string, profileID int64) model.Investment {
	start := f.date(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	return model.Investment{
		UserID:       email,
		ProfileID:    profileID,
		Type:         f.faker.RandomString(model.InvestmentTypes),
		Amount:       f.money(10000, 5000000),
		StartDate:    start,
		EndDate:      model.Date{Time: start.AddDate(15, 0, 0)},
		RateOfReturn: f.money(0, 15),
	}
}

// Saving returns a valid saving rate.
func (f *Fixtures) Saving(email string, profileID int64) model.Saving {
	return model.Saving{UserID: email, ProfileID: profileID, SavingRate: decimal.NewFromInt(int64(f.faker.Number(5, 60)))}
}

// Dependent returns a dependent of email with the given relationship.
func (f *Fixtures) Dependent(email, relationship string) model.Dependent {
	dob := f.faker.DateRange(time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	return model.Dependent{
		UserID:       email,
		Name:         f.faker.Name(),
		DateOfBirth:  model.NewDate(dob.Year(), dob.Month(), dob.Day()),
		Gender:       f.faker.RandomString(model.Genders),
		Relationship: relationship,
	}
}

// Projection returns a consistent set of projection series over years [from, to].
func (f *Fixtures) Projection(from, to int) (
	[]model.NetWorthPoint,
	[]model.ProjectedIncomePoint,
	[]model.ExpensePoint,
	[]model.SavingsRatioPoint,
) {
	var (
		worth   []model.NetWorthPoint
		income  []model.ProjectedIncomePoint
		expense []model.ExpensePoint
		ratio   []model.SavingsRatioPoint
	)
	total := f.money(1e5, 1e6)
	for y := from; y <= to; y++ {
		in := f.money(5e5, 2e6)
		out := f.money(2e5, 5e5)
		total = total.Add(in).Sub(out)
		worth = append(worth, model.NetWorthPoint{Year: y, NetWorth: total})
		income = append(income, model.ProjectedIncomePoint{Year: y, Income: in, AssetIncome: f.money(0, 1e5)})
		expense = append(expense, model.ExpensePoint{Year: y, Expenses: out})
		ratio = append(ratio, model.SavingsRatioPoint{Year: y, Ratio: f.money(0, 80)})
	}
	return worth, income, expense, ratio
}
