package model

import "github.com/shopspring/decimal"

// Transaction column names used by the backend.
const (
	ColumnUserID        = "UserID"
	ColumnTransactionID = "TransactionID"
	ColumnBalance       = "Balance"
	ColumnBank          = "Bank"
	ColumnDate          = "Date"
	ColumnCategory      = "Category"
	ColumnCredit        = "Credit"
	ColumnDebit         = "Debit"
)

// AllBanks selects every bank in aggregate queries and range deletions.
const AllBanks = "All"

// StatementBanks are the banks whose statements the backend can parse.
var StatementBanks = []string{
	"Axis Bank",
	"Bandhan Bank",
	"Bank of Baroda",
	"Bank Of India",
	"HDFC Bank",
	"ICICI Bank",
	"Indian Overseas Bank",
	"Kotak Bank",
	"State Bank of India",
}

// ChartBanks are the bank filters offered by the aggregate charts and range deletion.
var ChartBanks = []string{AllBanks, "HDFC Bank", "Axis Bank", "Bank3"}

// TransactionUpdate is a single-field patch of a transaction.
type TransactionUpdate struct {
	TransactionID string
	Column        string
	Value         string
}

// DeleteRange scopes a bulk transaction deletion.
type DeleteRange struct {
	StartDate Date   `json:"start_date" validate:"required"`
	EndDate   Date   `json:"end_date" validate:"required,gtefield=StartDate"`
	UserEmail string `json:"user_email" validate:"required"`
	Bank      string `json:"bank" validate:"required"`
}

// CategoryOption is one entry of the category picker.
type CategoryOption struct {
	Category   string `json:"Category"`
	CategoryID int64  `json:"CategoryID"`
}

// CategoryRule maps a narration keyword to a category.
type CategoryRule struct {
	Keyword  string `json:"keyword" validate:"required"`
	Category string `json:"category" validate:"required"`
	Type     string `json:"cat_type" validate:"required"`
}

// BankSummary is the per-bank statement overview row.
type BankSummary struct {
	UserID         string          `json:"UserID"`
	Bank           string          `json:"Bank"`
	StartDate      Date            `json:"Start_Date"`
	EndDate        Date            `json:"End_Date"`
	OpeningBalance decimal.Decimal `json:"Opening_Balance"`
	ClosingBalance decimal.Decimal `json:"Closing_Balance"`
	PendingDays    int             `json:"Pending_Days"`
	Transactions   int             `json:"Transactions"`
}

// Record flattens the summary into a table row keyed by its wire names.
func (s BankSummary) Record() Record {
	return NewRecord(
		"UserID", s.UserID,
		"Bank", s.Bank,
		"Start_Date", s.StartDate.String(),
		"End_Date", s.EndDate.String(),
		"Pending_Days", s.PendingDays,
		"Transactions", s.Transactions,
		"Opening_Balance", s.OpeningBalance,
		"Closing_Balance", s.ClosingBalance,
	)
}

// CategoryTotal aggregates credits and debits for one category.
type CategoryTotal struct {
	Category    string          `json:"Category"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
}

// YearTotal aggregates credits and debits for one year.
type YearTotal struct {
	TotalCredit decimal.Decimal `json:"total_credit"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	Year        int             `json:"year"`
}

// YearCategoryTotal aggregates credits and debits per category within a year.
type YearCategoryTotal struct {
	Category    string          `json:"Category"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	Year        int             `json:"year"`
}

// CategoryTransaction is a drill-down row for one category.
type CategoryTransaction struct {
	Date      Date            `json:"Date"`
	Narration string          `json:"Narration,omitempty"`
	Credit    decimal.Decimal `json:"Credit"`
	Debit     decimal.Decimal `json:"Debit"`
}

// Feedback is a user note with an optional attachment path.
type Feedback struct {
	UserEmail      string `json:"user_email" validate:"required"`
	Text           string `json:"feedback_text" validate:"required"`
	AttachmentPath string `json:"-"`
}

// StatementUpload describes a statement file to ingest.
type StatementUpload struct {
	UserEmail string `json:"user_email" validate:"required"`
	Bank      string `json:"bank" validate:"required"`
	Path      string `json:"file" validate:"required"`
}

// Message is the generic acknowledgement body returned by write endpoints.
type Message struct {
	Message string `json:"message"`
}
