package dashboard

import (
	"context"
	"log/slog"

	"github.com/Veraticus/finboard/internal/model"
	"github.com/Veraticus/finboard/internal/tui/viewmodel"
)

// SummaryGateway lists bank summaries.
type SummaryGateway interface {
	Summaries(ctx context.Context, email string) ([]model.BankSummary, error)
}

// SummaryColumns is the fixed column order of the summaries table.
var SummaryColumns = []string{
	"UserID", "Bank", "Start_Date", "End_Date",
	"Pending_Days", "Transactions", "Opening_Balance", "Closing_Balance",
}

// SummaryLabels are the summaries table headers.
var SummaryLabels = map[string]string{
	"UserID":          "User ID",
	"Bank":            "Bank",
	"Start_Date":      "Start Date",
	"End_Date":        "End Date",
	"Pending_Days":    "Pending Days",
	"Transactions":    "Transactions",
	"Opening_Balance": "Opening Balance",
	"Closing_Balance": "Closing Balance",
}

// Summaries is the per-bank statement overview.
type Summaries struct {
	gw     SummaryGateway
	id     Identity
	logger *slog.Logger
	Table  *viewmodel.Table
	rows   []model.BankSummary
	Status viewmodel.Status
}

// SummariesLoaded carries the result of a summaries fetch.
type SummariesLoaded struct {
	Err  error
	Rows []model.BankSummary
	Seq  uint64
}

// NewSummaries creates the store.
func NewSummaries(gw SummaryGateway, id Identity, logger *slog.Logger) *Summaries {
	return &Summaries{
		gw:     gw,
		id:     id,
		logger: orDefault(logger),
		Table: viewmodel.NewTable(viewmodel.TableOptions{
			Columns: SummaryColumns,
			Labels:  SummaryLabels,
		}),
	}
}

// Begin starts a fetch.
func (s *Summaries) Begin() uint64 {
	return s.Status.Begin()
}

// Fetch loads the summaries.
func (s *Summaries) Fetch(ctx context.Context, seq uint64) SummariesLoaded {
	email, err := requireEmail(s.id)
	if err != nil {
		return SummariesLoaded{Seq: seq, Err: err}
	}
	rows, err := s.gw.Summaries(ctx, email)
	return SummariesLoaded{Seq: seq, Rows: rows, Err: err}
}

// Apply replaces the table data with a fetch result.
func (s *Summaries) Apply(msg SummariesLoaded) {
	if s.Status.Settle(msg.Seq, msg.Err, "Failed to fetch summaries.") {
		logStale(s.logger, "summaries", msg.Seq, s.Status.Latest())
	}
	if msg.Err != nil {
		return
	}
	s.rows = msg.Rows
	records := make([]model.Record, 0, len(msg.Rows))
	for _, r := range msg.Rows {
		records = append(records, r.Record())
	}
	s.Table.SetRecords(records)
}

// Refresh fetches synchronously.
func (s *Summaries) Refresh(ctx context.Context) error {
	msg := s.Fetch(ctx, s.Begin())
	s.Apply(msg)
	return msg.Err
}

// Rows returns the typed summaries of the last successful fetch.
func (s *Summaries) Rows() []model.BankSummary {
	return s.rows
}
