package components

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finboard/internal/model"
	"github.com/Veraticus/finboard/internal/tui/themes"
	"github.com/Veraticus/finboard/internal/tui/viewmodel"
)

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func motion(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft}
}

func release(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonNone}
}

// run applies msg and feeds back any message the returned command yields.
func run(t *testing.T, m TableModel, msg tea.Msg) (TableModel, tea.Msg) {
	t.Helper()
	m, cmd := m.Update(msg)
	if cmd == nil {
		return m, nil
	}
	return m, cmd()
}

func newTestTable() (*viewmodel.Table, TableModel) {
	vt := viewmodel.NewTable(viewmodel.TableOptions{
		Hidden:   []string{"TransactionID"},
		Editable: "Category",
		IDColumn: "TransactionID",
	})
	vt.SetRecords([]model.Record{
		model.NewRecord("TransactionID", "t1", "Narration", "UPI grocer", "Category", "Food"),
		model.NewRecord("TransactionID", "t2", "Narration", "Salary credit", "Category", "Income"),
		model.NewRecord("TransactionID", "t3", "Narration", "Cab ride", "Category", "Travel"),
	})
	m := NewTable(vt, "", themes.Default)
	m.Resize(80, 20)
	return vt, m
}

func TestTableKeyboardSortAndFilter(t *testing.T) {
	vt, m := newTestTable()

	m, _ = m.Update(keys("s"))
	assert.Equal(t, viewmodel.SortSpec{Column: "Narration", Direction: viewmodel.SortAsc}, vt.Sort())
	assert.Equal(t, "Cab ride", vt.Rows()[0].String("Narration"))

	m, _ = m.Update(keys("f"))
	require.Equal(t, TableFilter, m.Mode())
	assert.True(t, m.Capturing())
	m, _ = m.Update(keys("sal"))
	rows := vt.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "t2", rows[0].String("TransactionID"))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, TableNormal, m.Mode())
	assert.Equal(t, "sal", vt.Filter("Narration"))

	// Reopening and escaping clears the filter and hides its input.
	m, _ = m.Update(keys("f"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 0, vt.ActiveFilters())
	assert.False(t, vt.FilterVisible("Narration"))
	assert.Len(t, vt.Rows(), 3)
}

func TestTableHideAndRestoreColumns(t *testing.T) {
	vt, m := newTestTable()

	m, _ = m.Update(keys("x"))
	assert.Equal(t, []string{"Category"}, vt.Columns())

	// The last visible column cannot be hidden.
	m, _ = m.Update(keys("x"))
	assert.Equal(t, []string{"Category"}, vt.Columns())

	m, _ = m.Update(keys("X"))
	assert.Equal(t, []string{"Narration", "Category"}, vt.Columns())
	assert.True(t, vt.IsHidden("TransactionID"))
}

func TestTableResizeGesture(t *testing.T) {
	vt, m := newTestTable()
	border := vt.Width("Narration")

	m, _ = m.Update(press(border, 0))
	col, ok := vt.Resizing()
	require.True(t, ok)
	assert.Equal(t, "Narration", col)

	m, _ = m.Update(motion(border+6, 0))
	assert.Equal(t, border+6, vt.Width("Narration"))
	m, _ = m.Update(motion(-100, 0))
	assert.Equal(t, viewmodel.MinColumnWidth, vt.Width("Narration"))

	m, _ = m.Update(release(0, 0))
	_, ok = vt.Resizing()
	assert.False(t, ok)

	// Motion without a gesture is ignored.
	_, _ = m.Update(motion(40, 0))
	assert.Equal(t, viewmodel.MinColumnWidth, vt.Width("Narration"))
}

func TestTableHeaderClickCyclesSort(t *testing.T) {
	vt, m := newTestTable()
	categoryX := vt.Width("Narration") + 2

	for _, want := range []viewmodel.SortDirection{viewmodel.SortAsc, viewmodel.SortDesc, viewmodel.SortNone} {
		m, _ = m.Update(press(categoryX, 0))
		assert.Equal(t, want, vt.Sort().Direction)
	}
	assert.Equal(t, "t1", vt.Rows()[0].String("TransactionID"))
}

func TestTableDoubleClickEditsCategory(t *testing.T) {
	vt, m := newTestTable()
	clock := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }
	categoryX := vt.Width("Narration") + 2

	m, _ = m.Update(press(categoryX, 3))
	assert.Equal(t, TableNormal, m.Mode())
	assert.Equal(t, 1, m.Cursor())

	clock = clock.Add(100 * time.Millisecond)
	m, _ = m.Update(press(categoryX, 3))
	require.Equal(t, TableEdit, m.Mode())
	edit, ok := vt.Editing()
	require.True(t, ok)
	assert.Equal(t, "t2", edit.RecordID)
	assert.Equal(t, "Income", edit.Value)

	m, _ = m.Update(keys("s"))
	m, msg := run(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, EditSubmittedMsg{Value: "Incomes"}, msg)

	req, ok := vt.Submit(msg.(EditSubmittedMsg).Value)
	require.True(t, ok)
	assert.Equal(t, viewmodel.EditRequest{RecordID: "t2", Column: "Category", Value: "Incomes"}, req)
	m.EndEdit()
	assert.Equal(t, TableNormal, m.Mode())
}

func TestTableSlowClicksDoNotEdit(t *testing.T) {
	vt, m := newTestTable()
	clock := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }
	categoryX := vt.Width("Narration") + 2

	m, _ = m.Update(press(categoryX, 2))
	clock = clock.Add(time.Second)
	m, _ = m.Update(press(categoryX, 2))
	assert.Equal(t, TableNormal, m.Mode())

	// Narration is not editable, however fast the clicks.
	m, _ = m.Update(press(1, 2))
	m, _ = m.Update(press(1, 2))
	assert.Equal(t, TableNormal, m.Mode())
}

func TestTableEscapeCancelsEdit(t *testing.T) {
	vt, m := newTestTable()
	m, _ = m.Update(keys("l"))
	m, _ = m.Update(keys("e"))
	require.Equal(t, TableEdit, m.Mode())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, TableNormal, m.Mode())
	_, ok := vt.Editing()
	assert.False(t, ok)
}

func TestTableEnterOnReadOnlyTableActivatesRow(t *testing.T) {
	vt := viewmodel.NewTable(viewmodel.TableOptions{})
	vt.SetRecords([]model.Record{model.NewRecord("Bank", "HDFC"), model.NewRecord("Bank", "SBI")})
	m := NewTable(vt, "Summaries", themes.Default)

	m, _ = m.Update(keys("j"))
	_, msg := run(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, RowActivatedMsg{Row: 1}, msg)
	assert.Contains(t, m.View(), "Summaries")
	assert.Contains(t, m.View(), "2 of 2 rows")
}
