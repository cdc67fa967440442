package tui

import (
	"context"
	"errors"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/finboard/internal/signal"
	"github.com/Veraticus/finboard/internal/tui/components"
)

// ErrNoScreens is returned when no store was configured.
var ErrNoScreens = errors.New("no dashboard screens configured")

// Model is the dashboard: one tab per configured screen.
type Model struct {
	env        *env
	stores     Stores
	changes    *signal.Subscription
	profileSub *signal.Subscription
	screens    []screen
	keymap     KeyMap
	help       help.Model
	config     Config
	active     int
	width      int
	height     int
	showHelp   bool
	quitting   bool
}

// New builds the dashboard over stores. Close releases the change
// subscriptions once the program exits.
func New(ctx context.Context, stores Stores, opts ...Option) (Model, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	e := &env{
		ctx:       ctx,
		logger:    cfg.Logger,
		theme:     cfg.Theme,
		exportDir: cfg.ExportDir,
		timeout:   cfg.Timeout,
	}

	m := Model{
		env:    e,
		stores: stores,
		config: cfg,
		keymap: DefaultKeyMap(),
		help:   help.New(),
		width:  cfg.Width,
		height: cfg.Height,
	}
	m.screens = buildScreens(e, stores)
	if len(m.screens) == 0 {
		return Model{}, ErrNoScreens
	}
	if stores.Changes != nil {
		m.changes = stores.Changes.Subscribe()
	}
	if stores.Profiles != nil {
		m.profileSub = stores.Profiles.Changes().Subscribe()
	}
	m.resize()
	return m, nil
}

func buildScreens(e *env, st Stores) []screen {
	var screens []screen
	if st.Transactions != nil {
		screens = append(screens, newTransactionsScreen(e, st.Transactions))
	}
	if st.Summaries != nil {
		screens = append(screens, newSummariesScreen(e, st.Summaries))
	}
	if st.CategoryChart != nil && st.YearChart != nil {
		screens = append(screens, newChartsScreen(e, st.CategoryChart, st.YearChart))
	}
	if st.UploadForm != nil || st.RuleForm != nil || st.DeleteForm != nil || st.FeedbackForm != nil {
		screens = append(screens, newToolsScreen(e, st))
	}
	if st.Profiles != nil {
		screens = append(screens, newProfilesScreen(e, st.Profiles))
	}
	if st.Incomes != nil {
		screens = append(screens, newLedgerScreen(e, st.Incomes, incomeCodec))
	}
	if st.Expenses != nil {
		screens = append(screens, newLedgerScreen(e, st.Expenses, expenseCodec))
	}
	if st.Investments != nil {
		screens = append(screens, newLedgerScreen(e, st.Investments, investmentCodec))
	}
	if st.Savings != nil {
		screens = append(screens, newLedgerScreen(e, st.Savings, savingCodec))
	}
	if st.Dependents != nil {
		screens = append(screens, newDependentsScreen(e, st.Dependents))
	}
	if st.Projection != nil {
		screens = append(screens, newNetWorthScreen(e, st.Projection))
	}
	return screens
}

// Close unsubscribes from the change signals.
func (m Model) Close() {
	if m.stores.Changes != nil {
		m.stores.Changes.Unsubscribe(m.changes)
	}
	if m.stores.Profiles != nil {
		m.stores.Profiles.Changes().Unsubscribe(m.profileSub)
	}
}

// Init loads every screen and starts listening for changes.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.SetWindowTitle("finboard"),
		watch(m.env.ctx, m.changes, dataChangedMsg{}),
		watch(m.env.ctx, m.profileSub, profileChangedMsg{}),
	}
	for _, s := range m.screens {
		cmds = append(cmds, s.load())
	}
	return tea.Batch(cmds...)
}

func (m Model) current() screen {
	return m.screens[m.active]
}

// fromInput reports whether msg was produced by the user on the active
// screen and must not reach the others.
func fromInput(msg tea.Msg) bool {
	switch msg.(type) {
	case tea.KeyMsg, tea.MouseMsg,
		components.EditSubmittedMsg, components.RowActivatedMsg,
		components.BarSelectedMsg, components.BarBackMsg,
		components.FormSubmittedMsg, components.FormCancelledMsg:
		return true
	}
	return false
}

// Update routes messages: input to the active screen, everything else to
// all screens.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case dataChangedMsg:
		m.env.logger.Debug("data changed, refreshing screens")
		cmds := []tea.Cmd{watch(m.env.ctx, m.changes, dataChangedMsg{})}
		for _, s := range m.screens {
			cmds = append(cmds, s.load())
		}
		return m, tea.Batch(cmds...)

	case profileChangedMsg:
		cmds := []tea.Cmd{watch(m.env.ctx, m.profileSub, profileChangedMsg{})}
		for _, s := range m.screens {
			cmds = append(cmds, s.update(msg))
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}

	if fromInput(msg) {
		return m, m.current().update(msg)
	}
	cmds := make([]tea.Cmd, 0, len(m.screens))
	for _, s := range m.screens {
		cmds = append(cmds, s.update(msg))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}
	if m.current().capturing() {
		return m, m.current().update(msg)
	}
	if m.showHelp {
		if key.Matches(msg, m.keymap.Help) || msg.String() == "esc" {
			m.showHelp = false
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(msg, m.keymap.NextTab):
		m.active = (m.active + 1) % len(m.screens)
		return m, nil
	case key.Matches(msg, m.keymap.PrevTab):
		m.active = (m.active - 1 + len(m.screens)) % len(m.screens)
		return m, nil
	case key.Matches(msg, m.keymap.Jump):
		if i := int(msg.Runes[0] - '1'); i < len(m.screens) {
			m.active = i
		}
		return m, nil
	case key.Matches(msg, m.keymap.Refresh):
		return m, m.current().load()
	case key.Matches(msg, m.keymap.ClearScreen):
		return m, tea.ClearScreen
	}
	return m, m.current().update(msg)
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.config.MouseSupport {
		return m, nil
	}
	if msg.Y == 0 && msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		if i := m.tabAt(msg.X); i >= 0 {
			m.active = i
		}
		return m, nil
	}
	return m, m.current().update(msg)
}

// resize hands each screen the area between the tab bar and the status bar.
func (m *Model) resize() {
	m.help.Width = m.width
	for _, s := range m.screens {
		s.resize(m.width, max(m.height-contentTop-1, 1))
	}
}

// View renders the tab bar, the active screen and the status bar.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.render()
}
