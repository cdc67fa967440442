package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/finboard/internal/tui/themes"
	"github.com/Veraticus/finboard/internal/tui/viewmodel"
)

// TableMode is what the keyboard currently drives.
type TableMode int

// Table modes.
const (
	TableNormal TableMode = iota
	TableFilter
	TableEdit
)

// DoubleClickWindow is the longest gap between two clicks on the same cell
// that still counts as a double click.
const DoubleClickWindow = 400 * time.Millisecond

// TableModel renders a viewmodel.Table and turns keys and mouse gestures
// into filter, sort, resize and edit operations on it.
type TableModel struct {
	now        func() time.Time
	table      *viewmodel.Table
	lastClick  time.Time
	userHidden map[string]bool
	theme      themes.Theme
	editor     textinput.Model
	filter     textinput.Model
	filterCol  string
	title      string
	clickRow   int
	clickCol   int
	originX    int
	originY    int
	cursor     int
	col        int
	offset     int
	width      int
	height     int
	mode       TableMode
}

// NewTable creates a table component over t.
func NewTable(t *viewmodel.Table, title string, theme themes.Theme) TableModel {
	editor := textinput.New()
	editor.Prompt = "✎ "
	editor.CharLimit = 80
	editor.ShowSuggestions = true

	filter := textinput.New()
	filter.Prompt = "filter: "
	filter.CharLimit = 60

	return TableModel{
		table:      t,
		title:      title,
		theme:      theme,
		editor:     editor,
		filter:     filter,
		userHidden: make(map[string]bool),
		now:        time.Now,
		width:      80,
		height:     20,
		clickRow:   -1,
	}
}

// Resize sets the area available to the table.
func (m *TableModel) Resize(width, height int) {
	m.width = width
	m.height = height
	m.clamp()
}

// SetOrigin places the table on screen so mouse coordinates can be mapped
// to cells.
func (m *TableModel) SetOrigin(x, y int) {
	m.originX = x
	m.originY = y
}

// SetSuggestions sets the completions offered while editing.
func (m *TableModel) SetSuggestions(values []string) {
	m.editor.SetSuggestions(values)
}

// Mode returns the current input mode.
func (m TableModel) Mode() TableMode {
	return m.mode
}

// Cursor returns the selected derived row.
func (m TableModel) Cursor() int {
	return m.cursor
}

// Column returns the column under the cursor.
func (m TableModel) Column() string {
	cols := m.table.Columns()
	if len(cols) == 0 {
		return ""
	}
	return cols[min(m.col, len(cols)-1)]
}

// CancelEdit leaves edit mode, discarding the buffer.
func (m *TableModel) CancelEdit() {
	m.table.CancelEdit()
	m.editor.Blur()
	m.mode = TableNormal
}

// EndEdit returns to normal mode after the owner submitted the edit.
func (m *TableModel) EndEdit() {
	m.editor.Blur()
	m.mode = TableNormal
}

// Capturing reports whether the table consumes all keys, so global
// shortcuts must not fire.
func (m TableModel) Capturing() bool {
	return m.mode != TableNormal
}

func (m *TableModel) bodyHeight() int {
	// Header, filter line and the scroll hint.
	chrome := 3
	if m.title != "" {
		chrome++
	}
	return max(m.height-chrome, 1)
}

func (m *TableModel) clamp() {
	rows := len(m.table.Rows())
	if m.cursor >= rows {
		m.cursor = rows - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if cols := len(m.table.Columns()); m.col >= cols {
		m.col = max(cols-1, 0)
	}
	body := m.bodyHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+body {
		m.offset = m.cursor - body + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// Update handles keys and mouse events.
func (m TableModel) Update(msg tea.Msg) (TableModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case TableEdit:
			return m.updateEdit(msg)
		case TableFilter:
			return m.updateFilter(msg)
		default:
			return m.updateNormal(msg)
		}
	case tea.MouseMsg:
		return m.updateMouse(msg)
	}
	return m, nil
}

func (m TableModel) updateNormal(msg tea.KeyMsg) (TableModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		m.cursor++
	case "k", "up":
		m.cursor--
	case "pgdown":
		m.cursor += m.bodyHeight()
	case "pgup":
		m.cursor -= m.bodyHeight()
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = len(m.table.Rows()) - 1
	case "h", "left":
		if m.col > 0 {
			m.col--
		}
	case "l", "right":
		m.col++
	case "s":
		if col := m.Column(); col != "" {
			m.table.CycleSort(col)
		}
	case "+", "=":
		if col := m.Column(); col != "" {
			m.table.SetWidth(col, m.table.Width(col)+2)
		}
	case "-":
		if col := m.Column(); col != "" {
			m.table.SetWidth(col, m.table.Width(col)-2)
		}
	case "x":
		if col := m.Column(); col != "" && len(m.table.Columns()) > 1 {
			m.table.ToggleColumn(col)
			m.userHidden[col] = true
		}
	case "X":
		for col := range m.userHidden {
			if m.table.IsHidden(col) {
				m.table.ToggleColumn(col)
			}
		}
		m.userHidden = make(map[string]bool)
	case "f", "/":
		col := m.Column()
		if col == "" {
			break
		}
		if !m.table.FilterVisible(col) {
			m.table.ToggleFilterInput(col)
		}
		m.filterCol = col
		m.filter.SetValue(m.table.Filter(col))
		m.filter.CursorEnd()
		m.mode = TableFilter
		m.clamp()
		return m, m.filter.Focus()
	case "F":
		if col := m.Column(); col != "" {
			m.table.ClearFilter(col)
		}
	case "enter", "e":
		if m.beginEdit(m.cursor, m.Column()) {
			return m, m.editor.Focus()
		}
		if msg.String() == "enter" && len(m.table.Rows()) > 0 {
			row := m.cursor
			m.clamp()
			return m, func() tea.Msg { return RowActivatedMsg{Row: row} }
		}
	}
	m.clamp()
	return m, nil
}

func (m *TableModel) beginEdit(row int, col string) bool {
	if !m.table.BeginEdit(row, col) {
		return false
	}
	edit, _ := m.table.Editing()
	m.editor.SetValue(edit.Value)
	m.editor.CursorEnd()
	m.mode = TableEdit
	return true
}

func (m TableModel) updateEdit(msg tea.KeyMsg) (TableModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.CancelEdit()
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.editor.Value())
		m.table.SetEditValue(value)
		return m, func() tea.Msg { return EditSubmittedMsg{Value: value} }
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	m.table.SetEditValue(m.editor.Value())
	return m, cmd
}

func (m TableModel) updateFilter(msg tea.KeyMsg) (TableModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.table.ClearFilter(m.filterCol)
		m.filter.Blur()
		m.mode = TableNormal
		m.clamp()
		return m, nil
	case tea.KeyEnter:
		m.filter.Blur()
		m.mode = TableNormal
		m.clamp()
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.table.SetFilter(m.filterCol, m.filter.Value())
	m.clamp()
	return m, cmd
}

// columnAt maps a table-relative x to a visible column index. onBorder is
// set when x is the separator right of that column.
func (m TableModel) columnAt(x int) (idx int, onBorder bool) {
	pos := 0
	for i, col := range m.table.Columns() {
		w := m.table.Width(col)
		if x < pos+w {
			return i, false
		}
		if x == pos+w {
			return i, true
		}
		pos += w + 1
	}
	return -1, false
}

func (m TableModel) updateMouse(msg tea.MouseMsg) (TableModel, tea.Cmd) {
	x, y := msg.X-m.originX, msg.Y-m.originY
	if m.title != "" {
		y--
	}

	switch msg.Action {
	case tea.MouseActionMotion:
		m.table.DragTo(x)
		return m, nil
	case tea.MouseActionRelease:
		m.table.EndResize()
		return m, nil
	case tea.MouseActionPress:
	default:
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelDown:
		m.cursor++
		m.clamp()
		return m, nil
	case tea.MouseButtonWheelUp:
		m.cursor--
		m.clamp()
		return m, nil
	case tea.MouseButtonLeft:
	default:
		return m, nil
	}

	if m.mode == TableEdit {
		// A click elsewhere blurs the editor.
		m.CancelEdit()
	}

	idx, onBorder := m.columnAt(x)
	if idx < 0 || y < 0 {
		return m, nil
	}
	col := m.table.Columns()[idx]

	if y == 0 {
		if onBorder {
			m.table.BeginResize(col, x, m.table.Width(col))
			return m, nil
		}
		m.col = idx
		m.table.CycleSort(col)
		m.clamp()
		return m, nil
	}

	row := m.offset + y - 2
	if y < 2 || row >= len(m.table.Rows()) {
		return m, nil
	}
	m.cursor, m.col = row, idx

	now := m.now()
	double := row == m.clickRow && idx == m.clickCol && now.Sub(m.lastClick) <= DoubleClickWindow
	m.clickRow, m.clickCol, m.lastClick = row, idx, now
	if double && m.beginEdit(row, col) {
		m.clickRow = -1
		return m, m.editor.Focus()
	}
	m.clamp()
	return m, nil
}

// View renders the header, the filter line and the visible rows.
func (m TableModel) View() string {
	cols := m.table.Columns()
	if len(cols) == 0 {
		return lipgloss.NewStyle().Foreground(m.theme.Muted).Render("No data.")
	}
	rows := m.table.Rows()
	sort := m.table.Sort()
	sep := lipgloss.NewStyle().Foreground(m.theme.Border).Render("│")

	header := make([]string, len(cols))
	for i, col := range cols {
		label := m.table.Label(col)
		if sort.Column == col {
			label += sort.Direction.Arrow()
		}
		if m.table.Filter(col) != "" {
			label += "*"
		}
		style := m.theme.Bold
		if i == m.col {
			style = style.Foreground(m.theme.Primary)
		}
		header[i] = style.Render(viewmodel.PadRight(label, m.table.Width(col)))
	}

	lines := []string{strings.Join(header, sep), m.filterLine()}

	editing, isEditing := m.table.Editing()
	end := min(m.offset+m.bodyHeight(), len(rows))
	for r := m.offset; r < end; r++ {
		cells := make([]string, len(cols))
		for i, col := range cols {
			w := m.table.Width(col)
			text := viewmodel.SanitizeForDisplay(rows[r].String(col))
			if isEditing && editing.Row == r && editing.Column == col {
				cells[i] = viewmodel.PadRight(m.editor.View(), w)
				continue
			}
			cells[i] = viewmodel.PadRight(text, w)
		}
		line := strings.Join(cells, sep)
		if r == m.cursor {
			line = m.theme.Selected.Render(line)
		}
		lines = append(lines, line)
	}

	hint := fmt.Sprintf("%d of %d rows", len(rows), m.table.Len())
	if n := m.table.ActiveFilters(); n > 0 {
		hint += fmt.Sprintf(" · %d filter(s)", n)
	}
	if col, ok := m.table.Resizing(); ok {
		hint += " · resizing " + m.table.Label(col)
	}
	lines = append(lines, lipgloss.NewStyle().Foreground(m.theme.Muted).Render(hint))

	out := strings.Join(lines, "\n")
	if m.title != "" {
		out = m.theme.Subtitle.UnsetMarginBottom().Render(m.title) + "\n" + out
	}
	return out
}

func (m TableModel) filterLine() string {
	if m.mode == TableFilter {
		return m.table.Label(m.filterCol) + " " + m.filter.View()
	}
	var active []string
	for _, col := range m.table.Columns() {
		if m.table.FilterVisible(col) {
			active = append(active, fmt.Sprintf("%s~%q", m.table.Label(col), m.table.Filter(col)))
		}
	}
	return lipgloss.NewStyle().Foreground(m.theme.Muted).Render(strings.Join(active, "  "))
}
