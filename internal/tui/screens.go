package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/finboard/internal/dashboard"
	"github.com/Veraticus/finboard/internal/model"
	"github.com/Veraticus/finboard/internal/tui/components"
)

// contentTop is the first terminal row below the tab bar.
const contentTop = 2

// screen is one tab of the dashboard. Screens are pointers owned by the
// event loop; update sees every non-input message and keys or mouse events
// only while active.
type screen interface {
	title() string
	load() tea.Cmd
	update(msg tea.Msg) tea.Cmd
	view() string
	// capturing reports whether a text input owns the keyboard.
	capturing() bool
	resize(width, height int)
}

type transactionsScreen struct {
	env    *env
	store  *dashboard.Transactions
	table  components.TableModel
	width  int
	height int
}

func newTransactionsScreen(e *env, store *dashboard.Transactions) *transactionsScreen {
	s := &transactionsScreen{
		env:   e,
		store: store,
		table: components.NewTable(store.Table, "", e.theme),
	}
	s.table.SetOrigin(0, contentTop)
	return s
}

func (s *transactionsScreen) title() string { return "Transactions" }

func (s *transactionsScreen) load() tea.Cmd {
	seq := s.store.Begin()
	return task(s.env, func(ctx context.Context) dashboard.TransactionsLoaded {
		return s.store.Fetch(ctx, seq)
	})
}

func (s *transactionsScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case dashboard.TransactionsLoaded:
		s.store.Apply(msg)
		s.table.SetSuggestions(model.CategoryNames(s.store.Categories()))
		s.table.Resize(s.width, s.height-1)
		return nil

	case dashboard.EditSaved:
		s.store.ApplyEdit(msg)
		return nil

	case components.EditSubmittedMsg:
		s.table.EndEdit()
		req, ok := s.store.Submit(msg.Value)
		if !ok {
			return nil
		}
		s.env.logger.Debug("saving category edit", "transaction_id", req.RecordID, "value", req.Value)
		return task(s.env, func(ctx context.Context) dashboard.EditSaved {
			return s.store.Save(ctx, req)
		})

	case tea.KeyMsg, tea.MouseMsg:
		var cmd tea.Cmd
		s.table, cmd = s.table.Update(msg)
		return cmd
	}
	return nil
}

func (s *transactionsScreen) view() string {
	out := s.table.View()
	if line := components.StatusLine(s.env.theme, s.store.Status); line != "" {
		out += "\n" + line
	}
	return out
}

func (s *transactionsScreen) capturing() bool { return s.table.Capturing() }

func (s *transactionsScreen) resize(width, height int) {
	s.width, s.height = width, height
	s.table.Resize(width, height-1)
}

type summariesScreen struct {
	env   *env
	store *dashboard.Summaries
	table components.TableModel
}

func newSummariesScreen(e *env, store *dashboard.Summaries) *summariesScreen {
	s := &summariesScreen{
		env:   e,
		store: store,
		table: components.NewTable(store.Table, "Bank Summaries", e.theme),
	}
	s.table.SetOrigin(0, contentTop)
	return s
}

func (s *summariesScreen) title() string { return "Summaries" }

func (s *summariesScreen) load() tea.Cmd {
	seq := s.store.Begin()
	return task(s.env, func(ctx context.Context) dashboard.SummariesLoaded {
		return s.store.Fetch(ctx, seq)
	})
}

func (s *summariesScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case dashboard.SummariesLoaded:
		s.store.Apply(msg)
	case tea.KeyMsg, tea.MouseMsg:
		var cmd tea.Cmd
		s.table, cmd = s.table.Update(msg)
		return cmd
	}
	return nil
}

func (s *summariesScreen) view() string {
	out := s.table.View()
	if line := components.StatusLine(s.env.theme, s.store.Status); line != "" {
		out += "\n" + line
	}
	return out
}

func (s *summariesScreen) capturing() bool { return s.table.Capturing() }

func (s *summariesScreen) resize(width, height int) {
	s.table.Resize(width, height-1)
}
