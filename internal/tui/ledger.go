package tui

import (
	"context"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/finboard/internal/model"
	"github.com/Veraticus/finboard/internal/networth"
	"github.com/Veraticus/finboard/internal/tui/components"
	"github.com/Veraticus/finboard/internal/tui/viewmodel"
)

// idColumn keys the hidden entry id in ledger tables.
const idColumn = "ID"

// entryCodec maps one entry kind to table rows and form values.
type entryCodec[T model.Entry] struct {
	record  func(T) model.Record
	values  func(T) map[string]string
	parse   func(values map[string]string, id int64) (T, map[string]string)
	title   string
	columns []string
	fields  []components.Field
}

// ledgerScreen lists the entries of the selected profile and adds, edits
// and deletes them through a form.
type ledgerScreen[T model.Entry] struct {
	env     *env
	store   *networth.Ledger[T]
	codec   entryCodec[T]
	rows    *viewmodel.Table
	table   components.TableModel
	form    components.FormModel
	editing int64
}

func newLedgerScreen[T model.Entry](e *env, store *networth.Ledger[T], codec entryCodec[T]) *ledgerScreen[T] {
	rows := viewmodel.NewTable(viewmodel.TableOptions{
		Columns:  append([]string{idColumn}, codec.columns...),
		Hidden:   []string{idColumn},
		IDColumn: idColumn,
	})
	s := &ledgerScreen[T]{
		env:   e,
		store: store,
		codec: codec,
		rows:  rows,
		table: components.NewTable(rows, "", e.theme),
		form:  components.NewForm(store.Resource(), codec.title, e.theme, codec.fields...),
	}
	s.table.SetOrigin(0, contentTop)
	return s
}

func (s *ledgerScreen[T]) title() string { return s.codec.title }

func (s *ledgerScreen[T]) load() tea.Cmd {
	var zero T
	return s.send(networth.OpList, zero)
}

// send prepares op on the event loop and performs it in a command.
func (s *ledgerScreen[T]) send(op networth.Op, entry T) tea.Cmd {
	req, err := s.store.Prepare(op, entry)
	if err != nil {
		s.form.SetErrors(s.store.Fields)
		return nil
	}
	return task(s.env, func(ctx context.Context) networth.LedgerResult[T] {
		return s.store.Send(ctx, req)
	})
}

func (s *ledgerScreen[T]) sync() {
	entries := s.store.Entries()
	records := make([]model.Record, 0, len(entries))
	for _, e := range entries {
		r := s.codec.record(e)
		r.Set(idColumn, strconv.FormatInt(e.EntryID(), 10))
		records = append(records, r)
	}
	s.rows.SetRecords(records)
}

// selected returns the entry under the table cursor.
func (s *ledgerScreen[T]) selected() (T, bool) {
	var zero T
	rows := s.rows.Rows()
	if s.table.Cursor() >= len(rows) {
		return zero, false
	}
	id, err := strconv.ParseInt(rows[s.table.Cursor()].String(idColumn), 10, 64)
	if err != nil {
		return zero, false
	}
	return s.store.Find(id)
}

func (s *ledgerScreen[T]) openForm(entry T, id int64) tea.Cmd {
	s.editing = id
	s.form.Reset()
	if id != 0 {
		s.form.SetValues(s.codec.values(entry))
	}
	return s.form.Focus()
}

func (s *ledgerScreen[T]) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case networth.LedgerResult[T]:
		s.store.Apply(msg)
		if msg.Err == nil && msg.Op != networth.OpList {
			s.form.Reset()
		}
		s.sync()
		return nil

	case profileChangedMsg:
		s.store.Reset()
		s.sync()
		return s.load()

	case components.FormSubmittedMsg:
		if msg.Form != s.form.Name() {
			return nil
		}
		entry, errs := s.codec.parse(msg.Values, s.editing)
		if len(errs) > 0 {
			s.form.SetErrors(errs)
			s.store.Status.Fail("Please fix the highlighted fields.")
			return nil
		}
		op := networth.OpAdd
		if s.editing != 0 {
			op = networth.OpUpdate
		}
		cmd := s.send(op, entry)
		if cmd != nil {
			s.form.Blur()
		}
		return cmd

	case components.FormCancelledMsg:
		s.form.SetErrors(nil)
		return nil

	case components.RowActivatedMsg:
		if entry, ok := s.selected(); ok {
			return s.openForm(entry, entry.EntryID())
		}
		return nil

	case tea.KeyMsg:
		if s.form.Focused() {
			var cmd tea.Cmd
			s.form, cmd = s.form.Update(msg)
			return cmd
		}
		if !s.table.Capturing() {
			switch msg.String() {
			case "a":
				var zero T
				return s.openForm(zero, 0)
			case "e":
				if entry, ok := s.selected(); ok {
					return s.openForm(entry, entry.EntryID())
				}
				return nil
			case "d":
				if entry, ok := s.selected(); ok {
					return s.send(networth.OpDelete, entry)
				}
				return nil
			}
		}
		var cmd tea.Cmd
		s.table, cmd = s.table.Update(msg)
		return cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		s.table, cmd = s.table.Update(msg)
		return cmd
	}
	return nil
}

func (s *ledgerScreen[T]) view() string {
	t := s.env.theme
	parts := []string{s.table.View()}
	if s.form.Focused() {
		parts = append(parts, "", s.form.View(s.store.Status))
	} else {
		if line := components.StatusLine(t, s.store.Status); line != "" {
			parts = append(parts, line)
		}
		parts = append(parts, lipgloss.NewStyle().Foreground(t.Muted).Render("a: add · e/enter: edit · d: delete"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (s *ledgerScreen[T]) capturing() bool {
	return s.form.Focused() || s.table.Capturing()
}

func (s *ledgerScreen[T]) resize(width, height int) {
	s.table.Resize(width, max(height-len(s.codec.fields)-6, 5))
	s.form.Resize(width)
}

// Form value parsing. Each helper records a message under key on failure.

func parseDateField(v map[string]string, key string, errs map[string]string) model.Date {
	d, err := model.ParseDate(v[key])
	if err != nil {
		errs[key] = "Use the YYYY-MM-DD format."
	}
	return d
}

func parseDecimalField(v map[string]string, key string, errs map[string]string) decimal.Decimal {
	raw := strings.ReplaceAll(v[key], ",", "")
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		errs[key] = "Enter a number."
	}
	return d
}

func frequencyOptions() []string {
	out := make([]string, len(model.Frequencies))
	for i, f := range model.Frequencies {
		out[i] = string(f)
	}
	return out
}

func dateFields() []components.Field {
	return []components.Field{
		{Key: "start_date", Label: "Start date", Placeholder: model.DateLayout},
		{Key: "end_date", Label: "End date", Placeholder: model.DateLayout},
	}
}

var incomeCodec = entryCodec[model.Income]{
	title:   "Incomes",
	columns: []string{"Source", "Frequency", "Value", "Growth Rate", "Start Date", "End Date"},
	fields: append([]components.Field{
		{Key: "source", Label: "Source", Options: model.IncomeSources},
		{Key: "frequency", Label: "Frequency", Options: frequencyOptions()},
		{Key: "value", Label: "Value"},
		{Key: "growth_rate", Label: "Growth rate %", Placeholder: "0"},
	}, dateFields()...),
	record: func(e model.Income) model.Record {
		return model.NewRecord(
			"Source", e.Source,
			"Frequency", e.Frequency.Label(),
			"Value", e.Value,
			"Growth Rate", e.GrowthRate,
			"Start Date", e.StartDate.String(),
			"End Date", e.EndDate.String(),
		)
	},
	values: func(e model.Income) map[string]string {
		return map[string]string{
			"source":      e.Source,
			"frequency":   string(e.Frequency),
			"value":       e.Value.String(),
			"growth_rate": e.GrowthRate.String(),
			"start_date":  e.StartDate.String(),
			"end_date":    e.EndDate.String(),
		}
	},
	parse: func(v map[string]string, id int64) (model.Income, map[string]string) {
		errs := map[string]string{}
		e := model.Income{
			ID:         id,
			Source:     v["source"],
			Frequency:  model.Frequency(v["frequency"]),
			Value:      parseDecimalField(v, "value", errs),
			GrowthRate: parseDecimalField(v, "growth_rate", errs),
			StartDate:  parseDateField(v, "start_date", errs),
			EndDate:    parseDateField(v, "end_date", errs),
		}
		return e, errs
	},
}

var expenseCodec = entryCodec[model.Expense]{
	title:   "Expenses",
	columns: []string{"Type", "Frequency", "Value", "Inflation Rate", "Start Date", "End Date"},
	fields: append([]components.Field{
		{Key: "expense_type", Label: "Expense type"},
		{Key: "frequency", Label: "Frequency", Options: frequencyOptions()},
		{Key: "value", Label: "Value"},
		{Key: "inflation_rate", Label: "Inflation rate %", Placeholder: "0"},
	}, dateFields()...),
	record: func(e model.Expense) model.Record {
		return model.NewRecord(
			"Type", e.Type,
			"Frequency", e.Frequency.Label(),
			"Value", e.Value,
			"Inflation Rate", e.InflationRate,
			"Start Date", e.StartDate.String(),
			"End Date", e.EndDate.String(),
		)
	},
	values: func(e model.Expense) map[string]string {
		return map[string]string{
			"expense_type":   e.Type,
			"frequency":      string(e.Frequency),
			"value":          e.Value.String(),
			"inflation_rate": e.InflationRate.String(),
			"start_date":     e.StartDate.String(),
			"end_date":       e.EndDate.String(),
		}
	},
	parse: func(v map[string]string, id int64) (model.Expense, map[string]string) {
		errs := map[string]string{}
		e := model.Expense{
			ID:            id,
			Type:          v["expense_type"],
			Frequency:     model.Frequency(v["frequency"]),
			Value:         parseDecimalField(v, "value", errs),
			InflationRate: parseDecimalField(v, "inflation_rate", errs),
			StartDate:     parseDateField(v, "start_date", errs),
			EndDate:       parseDateField(v, "end_date", errs),
		}
		return e, errs
	},
}

var investmentCodec = entryCodec[model.Investment]{
	title:   "Investments",
	columns: []string{"Type", "Amount", "Rate of Return", "Start Date", "End Date"},
	fields: append([]components.Field{
		{Key: "investment_type", Label: "Investment type", Options: model.InvestmentTypes},
		{Key: "amount", Label: "Amount"},
		{Key: "rate_of_return", Label: "Return %", Placeholder: "0"},
	}, dateFields()...),
	record: func(e model.Investment) model.Record {
		return model.NewRecord(
			"Type", e.Type,
			"Amount", e.Amount,
			"Rate of Return", e.RateOfReturn,
			"Start Date", e.StartDate.String(),
			"End Date", e.EndDate.String(),
		)
	},
	values: func(e model.Investment) map[string]string {
		return map[string]string{
			"investment_type": e.Type,
			"amount":          e.Amount.String(),
			"rate_of_return":  e.RateOfReturn.String(),
			"start_date":      e.StartDate.String(),
			"end_date":        e.EndDate.String(),
		}
	},
	parse: func(v map[string]string, id int64) (model.Investment, map[string]string) {
		errs := map[string]string{}
		e := model.Investment{
			ID:           id,
			Type:         v["investment_type"],
			Amount:       parseDecimalField(v, "amount", errs),
			RateOfReturn: parseDecimalField(v, "rate_of_return", errs),
			StartDate:    parseDateField(v, "start_date", errs),
			EndDate:      parseDateField(v, "end_date", errs),
		}
		return e, errs
	},
}

var savingCodec = entryCodec[model.Saving]{
	title:   "Savings",
	columns: []string{"Saving Rate"},
	fields:  []components.Field{{Key: "saving_rate", Label: "Saving rate %"}},
	record: func(e model.Saving) model.Record {
		return model.NewRecord("Saving Rate", e.SavingRate)
	},
	values: func(e model.Saving) map[string]string {
		return map[string]string{"saving_rate": e.SavingRate.String()}
	},
	parse: func(v map[string]string, id int64) (model.Saving, map[string]string) {
		errs := map[string]string{}
		e := model.Saving{ID: id, SavingRate: parseDecimalField(v, "saving_rate", errs)}
		return e, errs
	},
}
