package dashboard

import (
	"context"
	"log/slog"

	"github.com/Veraticus/finboard/internal/api"
	"github.com/Veraticus/finboard/internal/model"
	"github.com/Veraticus/finboard/internal/signal"
	"github.com/Veraticus/finboard/internal/tui/viewmodel"
)

// TransactionGateway is the part of the backend the transactions screen uses.
type TransactionGateway interface {
	Transactions(ctx context.Context, email string) ([]model.Record, error)
	Categories(ctx context.Context) ([]model.CategoryOption, error)
	UpdateTransaction(ctx context.Context, update model.TransactionUpdate) error
}

// HiddenTransactionColumns never show in the transactions table.
var HiddenTransactionColumns = []string{model.ColumnUserID, model.ColumnTransactionID, model.ColumnBalance}

// Transactions is the transactions screen: a table over the user's records
// whose Category column can be edited in place.
type Transactions struct {
	gw         TransactionGateway
	id         Identity
	changes    *signal.Signal
	logger     *slog.Logger
	Table      *viewmodel.Table
	categories []model.CategoryOption
	Status     viewmodel.Status
}

// TransactionsLoaded carries the result of a transactions fetch.
type TransactionsLoaded struct {
	Err        error
	Records    []model.Record
	Categories []model.CategoryOption
	Seq        uint64
}

// EditSaved carries the result of a category edit.
type EditSaved struct {
	Err     error
	Request viewmodel.EditRequest
}

// NewTransactions creates the store. changes is marked after every
// successful edit.
func NewTransactions(gw TransactionGateway, id Identity, changes *signal.Signal, logger *slog.Logger) *Transactions {
	return &Transactions{
		gw:      gw,
		id:      id,
		changes: changes,
		logger:  orDefault(logger),
		Table: viewmodel.NewTable(viewmodel.TableOptions{
			Hidden:   HiddenTransactionColumns,
			Editable: model.ColumnCategory,
			IDColumn: model.ColumnTransactionID,
		}),
	}
}

// Begin starts a fetch.
func (s *Transactions) Begin() uint64 {
	return s.Status.Begin()
}

// Fetch loads the transactions and the category picker options. A failing
// category list does not fail the fetch.
func (s *Transactions) Fetch(ctx context.Context, seq uint64) TransactionsLoaded {
	email, err := requireEmail(s.id)
	if err != nil {
		return TransactionsLoaded{Seq: seq, Err: err}
	}

	records, err := s.gw.Transactions(ctx, email)
	if err != nil {
		return TransactionsLoaded{Seq: seq, Err: err}
	}

	categories, err := s.gw.Categories(ctx)
	if err != nil {
		s.logger.Warn("failed to fetch categories", "error", err)
	}
	return TransactionsLoaded{Seq: seq, Records: records, Categories: categories}
}

// Apply replaces the table data with a fetch result.
func (s *Transactions) Apply(msg TransactionsLoaded) {
	if s.Status.Settle(msg.Seq, msg.Err, "Failed to fetch transactions.") {
		logStale(s.logger, "transactions", msg.Seq, s.Status.Latest())
	}
	if msg.Err != nil {
		return
	}
	s.Table.SetRecords(msg.Records)
	if msg.Categories != nil {
		s.categories = msg.Categories
	}
}

// Refresh fetches synchronously.
func (s *Transactions) Refresh(ctx context.Context) error {
	msg := s.Fetch(ctx, s.Begin())
	s.Apply(msg)
	return msg.Err
}

// Categories returns the category picker options.
func (s *Transactions) Categories() []model.CategoryOption {
	return s.categories
}

// Submit ends the cell edit in progress and returns the request to save.
func (s *Transactions) Submit(value string) (viewmodel.EditRequest, bool) {
	req, ok := s.Table.Submit(value)
	if !ok {
		return viewmodel.EditRequest{}, false
	}
	if req.RecordID == "" {
		s.Status.Fail("Missing transaction ID")
		return viewmodel.EditRequest{}, false
	}
	return req, true
}

// Save sends an edit to the backend.
func (s *Transactions) Save(ctx context.Context, req viewmodel.EditRequest) EditSaved {
	err := s.gw.UpdateTransaction(ctx, model.TransactionUpdate{
		TransactionID: req.RecordID,
		Column:        req.Column,
		Value:         req.Value,
	})
	return EditSaved{Request: req, Err: err}
}

// ApplyEdit patches the saved cell locally and tells the other screens.
func (s *Transactions) ApplyEdit(msg EditSaved) {
	if msg.Err != nil {
		s.Status.Fail("Failed to update transaction: " + api.Message(msg.Err, msg.Err.Error()))
		return
	}
	s.Table.Patch(msg.Request.RecordID, msg.Request.Column, msg.Request.Value)
	s.Status.Succeed("")
	if s.changes != nil {
		s.changes.Mark()
	}
}

// UpdateCategory sets the category of one transaction synchronously.
func (s *Transactions) UpdateCategory(ctx context.Context, transactionID, category string) error {
	msg := s.Save(ctx, viewmodel.EditRequest{
		RecordID: transactionID,
		Column:   model.ColumnCategory,
		Value:    category,
	})
	s.ApplyEdit(msg)
	return msg.Err
}
