package tui

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finboard/internal/api"
	"github.com/Veraticus/finboard/internal/dashboard"
	"github.com/Veraticus/finboard/internal/model"
	"github.com/Veraticus/finboard/internal/networth"
	"github.com/Veraticus/finboard/internal/signal"
	"github.com/Veraticus/finboard/internal/testutil"
)

const testEmail = "asha@example.com"

type testIdentity string

func (i testIdentity) Email() string { return string(i) }

func (i testIdentity) Current() (model.Identity, bool) {
	return model.Identity{Email: string(i), Name: "Asha"}, i != ""
}

func setup(t *testing.T) (*api.Client, *testutil.Backend) {
	t.Helper()
	backend := testutil.NewBackend(t)
	client, err := api.New(backend.URL())
	require.NoError(t, err)
	return client, backend
}

func newModel(t *testing.T, stores Stores) Model {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	m, err := New(ctx, stores, WithSize(120, 40), WithTimeout(5*time.Second))
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

// exec runs cmd, giving up on commands that block, such as change watchers.
func exec(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		return nil
	}
}

// drive feeds msg to m and keeps feeding back whatever the resulting
// commands produce until nothing is left.
func drive(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	return settle(t, next.(Model), cmd)
}

// settle runs cmd, expanding batches, and feeds every message it yields to m.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch out := exec(c).(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, out...)
		case tea.QuitMsg:
		default:
			next, cmd := m.Update(out)
			m = next.(Model)
			queue = append(queue, cmd)
		}
	}
	return m
}

// loadAll runs every screen's initial load.
func loadAll(t *testing.T, m Model) Model {
	t.Helper()
	for _, s := range m.screens {
		m = settle(t, m, s.load())
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = drive(t, m, runes(string(r)))
	}
	return m
}

func TestNewRequiresAScreen(t *testing.T) {
	_, err := New(context.Background(), Stores{})
	assert.ErrorIs(t, err, ErrNoScreens)
}

func TestTabNavigation(t *testing.T) {
	client, _ := setup(t)
	id := testIdentity(testEmail)
	m := newModel(t, Stores{
		Identity:     id,
		Transactions: dashboard.NewTransactions(client, id, nil, nil),
		Summaries:    dashboard.NewSummaries(client, id, nil),
		RuleForm:     dashboard.NewRuleForm(client, nil),
	})
	require.Len(t, m.screens, 3)

	m = drive(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, m.active)
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, 2, m.active)
	m = drive(t, m, runes("1"))
	assert.Equal(t, 0, m.active)
	m = drive(t, m, runes("9"))
	assert.Equal(t, 0, m.active)

	// Clicking the second tab label selects it.
	x := len(m.tabLabel(0)) + 2
	m = drive(t, m, tea.MouseMsg{X: x, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Equal(t, 1, m.active)

	view := m.View()
	assert.Contains(t, view, "Transactions")
	assert.Contains(t, view, "Summaries")
	assert.Contains(t, view, testEmail)
}

func TestHelpAndQuit(t *testing.T) {
	client, _ := setup(t)
	id := testIdentity(testEmail)
	m := newModel(t, Stores{Identity: id, Summaries: dashboard.NewSummaries(client, id, nil)})

	m = drive(t, m, runes("?"))
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "finboard - Help")
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.showHelp)

	next, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, next.View())
}

func TestFilterInputCapturesGlobalKeys(t *testing.T) {
	client, backend := setup(t)
	fx := testutil.NewFixtures(11)
	backend.Do(func(s *testutil.State) { s.Transactions[testEmail] = fx.Transactions(testEmail, 5) })
	id := testIdentity(testEmail)
	store := dashboard.NewTransactions(client, id, nil, nil)
	m := loadAll(t, newModel(t, Stores{Identity: id, Transactions: store}))

	col := m.screens[0].(*transactionsScreen).table.Column()
	m = drive(t, m, runes("f"))
	require.True(t, m.current().capturing())
	m = typeText(t, m, "q")
	assert.False(t, m.quitting)
	assert.Equal(t, "q", store.Table.Filter(col))
}

func TestTransactionsCategoryEdit(t *testing.T) {
	client, backend := setup(t)
	fx := testutil.NewFixtures(12)
	backend.Do(func(s *testutil.State) {
		s.Transactions[testEmail] = fx.Transactions(testEmail, 3)
		s.Categories = fx.Categories()
	})
	id := testIdentity(testEmail)
	changes := signal.New()
	store := dashboard.NewTransactions(client, id, changes, nil)
	m := loadAll(t, newModel(t, Stores{Identity: id, Changes: changes, Transactions: store}))
	require.Len(t, store.Table.Rows(), 3)

	scr := m.screens[0].(*transactionsScreen)
	for range store.Table.Columns() {
		m = drive(t, m, runes("l"))
	}
	require.Equal(t, model.ColumnCategory, scr.table.Column())
	target := store.Table.Rows()[0].String(model.ColumnTransactionID)

	m = drive(t, m, runes("e"))
	require.True(t, m.current().capturing())
	for range 40 {
		m = drive(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	m = typeText(t, m, "Travel")
	before := changes.Version()
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, m.current().capturing())
	assert.Empty(t, store.Status.Err)
	assert.Greater(t, changes.Version(), before)
	assert.Equal(t, 1, backend.Calls(http.MethodPut, "/update-transaction/"))
	backend.Do(func(s *testutil.State) {
		for _, r := range s.Transactions[testEmail] {
			if r.String(model.ColumnTransactionID) == target {
				assert.Equal(t, "Travel", r.String(model.ColumnCategory))
			}
		}
	})

	for _, r := range store.Table.Records() {
		if r.String(model.ColumnTransactionID) == target {
			assert.Equal(t, "Travel", r.String(model.ColumnCategory))
		}
	}
}

func TestDataChangedRefreshesScreens(t *testing.T) {
	client, backend := setup(t)
	fx := testutil.NewFixtures(13)
	id := testIdentity(testEmail)
	summaries := dashboard.NewSummaries(client, id, nil)
	m := loadAll(t, newModel(t, Stores{Identity: id, Changes: signal.New(), Summaries: summaries}))
	assert.Empty(t, summaries.Rows())

	backend.Do(func(s *testutil.State) {
		s.Summaries[testEmail] = []model.BankSummary{fx.BankSummary(testEmail, "HDFC Bank")}
	})
	m = drive(t, m, dataChangedMsg{})
	require.Len(t, summaries.Rows(), 1)
	assert.Equal(t, "HDFC Bank", summaries.Rows()[0].Bank)
	assert.Contains(t, m.View(), "Bank Summaries")
}

func TestChartsDrillAndBankSwitch(t *testing.T) {
	client, backend := setup(t)
	fx := testutil.NewFixtures(14)
	totals := fx.CategoryTotals()
	backend.Do(func(s *testutil.State) {
		s.CategoryTotals = totals
		s.CategoryTxns[totals[0].Category] = fx.CategoryTransactions(4)
		s.YearTotals = fx.YearTotals(2022, 2024)
	})
	id := testIdentity(testEmail)
	category := dashboard.NewCategoryChart(client, id, nil)
	year := dashboard.NewYearChart(client, id, nil)
	m := loadAll(t, newModel(t, Stores{Identity: id, CategoryChart: category, YearChart: year}))
	require.Len(t, category.Totals(), len(totals))

	m = drive(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	selected, open := category.Selected(0)
	require.True(t, open)
	assert.Equal(t, totals[0].Category, selected)
	assert.Equal(t, "Credit Transactions for "+totals[0].Category, category.Series(0).Name)
	assert.Contains(t, m.View(), "Credit Transactions for")

	m = drive(t, m, runes("b"))
	_, open = category.Selected(0)
	assert.False(t, open)

	m = drive(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = drive(t, m, runes("n"))
	assert.Equal(t, model.ChartBanks[1], category.Bank())
	assert.Equal(t, model.ChartBanks[1], year.Bank())
	_, open = category.Selected(0)
	assert.False(t, open)

	m = drive(t, m, runes("y"))
	assert.Contains(t, m.View(), "by year")
	assert.Contains(t, m.View(), "Credit by Year")
}

func TestToolsRuleForm(t *testing.T) {
	client, backend := setup(t)
	id := testIdentity(testEmail)
	m := newModel(t, Stores{Identity: id, RuleForm: dashboard.NewRuleForm(client, nil)})

	m = drive(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.current().capturing())
	m = typeText(t, m, "swiggy")
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "Food")
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "Debit")
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, m.current().capturing())
	var rules []model.CategoryRule
	backend.Do(func(s *testutil.State) { rules = s.Rules })
	assert.Equal(t, []model.CategoryRule{{Keyword: "swiggy", Category: "Food", Type: "Debit"}}, rules)
	assert.Contains(t, m.View(), "Category added successfully")
}

func TestToolsDeleteFormRejectsBadDates(t *testing.T) {
	client, backend := setup(t)
	id := testIdentity(testEmail)
	m := newModel(t, Stores{Identity: id, DeleteForm: dashboard.NewDeleteForm(client, id, nil, nil)})

	m = drive(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = typeText(t, m, "01/02/2024")
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = typeText(t, m, "2024-03-01")
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = typeText(t, m, "All")
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.True(t, m.current().capturing())
	view := m.View()
	assert.Contains(t, view, "Use the YYYY-MM-DD format.")
	assert.Contains(t, view, "Please fix the highlighted fields.")
	assert.Zero(t, backend.Calls(http.MethodDelete, "/delete-transactions/"))
}

func TestProfileSelectionRescopesLedger(t *testing.T) {
	client, backend := setup(t)
	fx := testutil.NewFixtures(15)
	backend.Do(func(s *testutil.State) {
		s.Profiles = []model.Profile{
			{ID: 1, UserID: testEmail, Name: "Base"},
			{ID: 2, UserID: testEmail, Name: "Early retirement"},
		}
		s.Incomes = []model.Income{fx.Income(testEmail, 1), fx.Income(testEmail, 2), fx.Income(testEmail, 2)}
	})
	id := testIdentity(testEmail)
	profiles := networth.NewProfiles(client, id, nil)
	incomes := networth.NewIncomes(client.Incomes(), id, profiles, nil, nil)
	m := newModel(t, Stores{Identity: id, Profiles: profiles, Incomes: incomes})

	// Profiles load first so the ledger has a scope.
	m = loadAll(t, m)
	m = drive(t, m, profileChangedMsg{})
	assert.Equal(t, int64(1), incomes.ProfileID())
	assert.Len(t, incomes.Entries(), 1)
	assert.Contains(t, m.View(), "profile: Base")

	m = drive(t, m, runes("j"))
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	selected, ok := profiles.Selected()
	require.True(t, ok)
	assert.Equal(t, "Early retirement", selected.Name)

	m = drive(t, m, profileChangedMsg{})
	assert.Equal(t, int64(2), incomes.ProfileID())
	assert.Len(t, incomes.Entries(), 2)
	assert.True(t, strings.Contains(m.View(), "profile: Early retirement"))
}

func TestLedgerAddThroughForm(t *testing.T) {
	client, backend := setup(t)
	backend.Do(func(s *testutil.State) {
		s.Profiles = []model.Profile{{ID: 7, UserID: testEmail, Name: "Base"}}
	})
	id := testIdentity(testEmail)
	profiles := networth.NewProfiles(client, id, nil)
	require.NoError(t, profiles.Fetch(context.Background()))
	savings := networth.NewSavings(client.Savings(), id, profiles, nil, nil)
	m := loadAll(t, newModel(t, Stores{Identity: id, Savings: savings}))

	m = drive(t, m, runes("a"))
	require.True(t, m.current().capturing())
	m = typeText(t, m, "140")
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, m.View(), "Saving rate must be at most 100")
	assert.Zero(t, backend.Calls(http.MethodPost, "/savings"))

	for range 3 {
		m = drive(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	m = typeText(t, m, "35")
	m = drive(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, m.current().capturing())
	require.Len(t, savings.Entries(), 1)
	assert.Equal(t, "35", savings.Entries()[0].SavingRate.String())
	assert.Equal(t, int64(7), savings.Entries()[0].ProfileID)
}

func TestDependentsDeletingSelfClearsPersonal(t *testing.T) {
	client, backend := setup(t)
	fx := testutil.NewFixtures(16)
	self := fx.Dependent(testEmail, model.RelationshipSelf)
	self.ID = 1
	child := fx.Dependent(testEmail, "Child")
	child.ID = 2
	backend.Do(func(s *testutil.State) { s.Dependents = []model.Dependent{self, child} })
	id := testIdentity(testEmail)
	store := networth.NewDependents(client, id, nil)
	m := loadAll(t, newModel(t, Stores{Identity: id, Dependents: store}))
	require.True(t, store.Personal().Exists())

	scr := m.screens[0].(*dependentsScreen)
	assert.Equal(t, self.Name, scr.personal.Values()["name"])

	rows := scr.rows.Rows()
	for i, r := range rows {
		if r.String("Relationship") == model.RelationshipSelf {
			for range i {
				m = drive(t, m, runes("j"))
			}
		}
	}
	m = drive(t, m, runes("d"))
	assert.False(t, store.Personal().Exists())
	assert.Equal(t, "", scr.personal.Values()["name"])
	assert.Len(t, store.List(), 1)
}
