package viewmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finboard/internal/model"
)

func transactionTable(records ...model.Record) *Table {
	t := NewTable(TableOptions{
		Hidden:   []string{model.ColumnUserID, model.ColumnTransactionID},
		Editable: model.ColumnCategory,
		IDColumn: model.ColumnTransactionID,
		Labels:   map[string]string{model.ColumnCategory: "Category ✎"},
	})
	t.SetRecords(records)
	return t
}

func txn(id, narration, category string) model.Record {
	return model.NewRecord(
		model.ColumnUserID, "u@example.com",
		model.ColumnTransactionID, id,
		"Narration", narration,
		model.ColumnCategory, category,
	)
}

func ids(rows []model.Record) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.String(model.ColumnTransactionID))
	}
	return out
}

func TestTable_DiscoversColumnsAndHidesSome(t *testing.T) {
	tbl := transactionTable(txn("1", "Swiggy", "Food"))

	assert.Equal(t, []string{model.ColumnUserID, model.ColumnTransactionID, "Narration", model.ColumnCategory}, tbl.AllColumns())
	assert.Equal(t, []string{"Narration", model.ColumnCategory}, tbl.Columns())
	assert.Equal(t, "Category ✎", tbl.Label(model.ColumnCategory))
	assert.Equal(t, "Narration", tbl.Label("Narration"))

	tbl.ToggleColumn(model.ColumnTransactionID)
	assert.Equal(t, []string{model.ColumnTransactionID, "Narration", model.ColumnCategory}, tbl.Columns())
	tbl.ToggleColumn("Narration")
	assert.True(t, tbl.IsHidden("Narration"))
	assert.NotContains(t, tbl.Columns(), "Narration")
}

func TestTable_FixedColumnsIgnoreRecordKeys(t *testing.T) {
	tbl := NewTable(TableOptions{Columns: []string{"Bank", "Pending_Days"}})
	tbl.SetRecords([]model.Record{model.NewRecord("Pending_Days", 3, "Bank", "HDFC Bank", "Extra", true)})
	assert.Equal(t, []string{"Bank", "Pending_Days"}, tbl.Columns())
}

func TestTable_FiltersExcludeNonMatchingAndMissing(t *testing.T) {
	records := []model.Record{
		txn("1", "SWIGGY BANGALORE", "Food"),
		txn("2", "Uber trip", "Travel"),
		txn("3", "swiggy instamart", "Groceries"),
		model.NewRecord(model.ColumnTransactionID, "4", model.ColumnCategory, "Food"),
		model.NewRecord(model.ColumnTransactionID, "5", "Narration", nil, model.ColumnCategory, "Food"),
	}
	tbl := transactionTable(records...)

	assert.Len(t, tbl.Rows(), 5)

	tbl.SetFilter("Narration", "swiggy")
	assert.Equal(t, []string{"1", "3"}, ids(tbl.Rows()))
	assert.Equal(t, 1, tbl.ActiveFilters())

	tbl.SetFilter(model.ColumnCategory, "FOOD")
	assert.Equal(t, []string{"1"}, ids(tbl.Rows()))
	assert.Equal(t, 2, tbl.ActiveFilters())

	tbl.SetFilter("Narration", "")
	assert.Equal(t, []string{"1", "4", "5"}, ids(tbl.Rows()))
	assert.Equal(t, 1, tbl.ActiveFilters())
}

func TestTable_FilterMatchesNumbers(t *testing.T) {
	tbl := NewTable(TableOptions{})
	tbl.SetRecords([]model.Record{
		model.NewRecord("Debit", 1250.5),
		model.NewRecord("Debit", 80),
	})
	tbl.SetFilter("Debit", "1250")
	require.Len(t, tbl.Rows(), 1)
	assert.Equal(t, "1250.5", tbl.Rows()[0].String("Debit"))
}

func TestTable_ClearFilterHidesInput(t *testing.T) {
	tbl := transactionTable(txn("1", "a", "b"))
	tbl.ToggleFilterInput("Narration")
	tbl.SetFilter("Narration", "zzz")
	require.True(t, tbl.FilterVisible("Narration"))
	require.Empty(t, tbl.Rows())

	tbl.ClearFilter("Narration")
	assert.False(t, tbl.FilterVisible("Narration"))
	assert.Equal(t, "", tbl.Filter("Narration"))
	assert.Len(t, tbl.Rows(), 1)
}

func TestTable_SortCycle(t *testing.T) {
	tbl := transactionTable(
		txn("1", "beta", "Food"),
		txn("2", "Alpha", "Travel"),
		txn("3", "gamma", "Food"),
		txn("4", "alpha", "Bills"),
	)
	tbl.SetFilter(model.ColumnCategory, "o")
	unsorted := ids(tbl.Rows())
	require.Equal(t, []string{"1", "3"}, unsorted)
	tbl.SetFilter(model.ColumnCategory, "")
	unsorted = ids(tbl.Rows())

	spec := tbl.CycleSort("Narration")
	assert.Equal(t, SortAsc, spec.Direction)
	assert.Equal(t, []string{"2", "4", "1", "3"}, ids(tbl.Rows()), "ascending is case-insensitive and stable")

	spec = tbl.CycleSort("Narration")
	assert.Equal(t, SortDesc, spec.Direction)
	assert.Equal(t, []string{"3", "1", "2", "4"}, ids(tbl.Rows()))

	spec = tbl.CycleSort("Narration")
	assert.Equal(t, SortNone, spec.Direction)
	assert.Equal(t, unsorted, ids(tbl.Rows()), "third click restores the filtered order")

	tbl.CycleSort("Narration")
	spec = tbl.CycleSort(model.ColumnCategory)
	assert.Equal(t, SortSpec{Column: model.ColumnCategory, Direction: SortAsc}, spec, "another column starts ascending")
}

func TestSortDirection_Arrow(t *testing.T) {
	assert.Equal(t, "▲", SortAsc.Arrow())
	assert.Equal(t, "▼", SortDesc.Arrow())
	assert.Equal(t, "", SortNone.Arrow())
	assert.Equal(t, "desc", SortDesc.String())
}

func TestTable_Resize(t *testing.T) {
	tbl := transactionTable(txn("1", "a", "b"))
	assert.Equal(t, 14, tbl.Width("Narration"))

	assert.False(t, tbl.DragTo(40), "no gesture, nothing to do")
	assert.Equal(t, 14, tbl.Width("Narration"))

	tbl.BeginResize("Narration", 20, 14)
	col, ok := tbl.Resizing()
	require.True(t, ok)
	assert.Equal(t, "Narration", col)

	assert.True(t, tbl.DragTo(30))
	assert.Equal(t, 24, tbl.Width("Narration"))
	assert.True(t, tbl.DragTo(-100))
	assert.Equal(t, MinColumnWidth, tbl.Width("Narration"))

	tbl.EndResize()
	_, ok = tbl.Resizing()
	assert.False(t, ok)
	assert.False(t, tbl.DragTo(50))
	assert.Equal(t, MinColumnWidth, tbl.Width("Narration"))
}

func TestTable_EditOnlyEditableColumn(t *testing.T) {
	tbl := transactionTable(txn("t-1", "Swiggy", "Food"), txn("t-2", "Uber", "Travel"))

	assert.False(t, tbl.BeginEdit(0, "Narration"))
	assert.False(t, tbl.BeginEdit(9, model.ColumnCategory))
	_, editing := tbl.Editing()
	assert.False(t, editing)

	tbl.CycleSort("Narration")
	tbl.CycleSort("Narration")
	require.True(t, tbl.BeginEdit(0, model.ColumnCategory))
	state, editing := tbl.Editing()
	require.True(t, editing)
	assert.Equal(t, "t-2", state.RecordID, "row index refers to the derived rows")
	assert.Equal(t, "Travel", state.Value)

	tbl.SetEditValue("Commute")
	state, _ = tbl.Editing()
	assert.Equal(t, "Commute", state.Value)

	req, ok := tbl.Submit("Commute")
	require.True(t, ok)
	assert.Equal(t, EditRequest{RecordID: "t-2", Column: model.ColumnCategory, Value: "Commute"}, req)
	_, editing = tbl.Editing()
	assert.False(t, editing)

	_, ok = tbl.Submit("again")
	assert.False(t, ok)
}

func TestTable_CancelEditAndReplaceRecords(t *testing.T) {
	tbl := transactionTable(txn("t-1", "Swiggy", "Food"))
	require.True(t, tbl.BeginEdit(0, model.ColumnCategory))
	tbl.CancelEdit()
	_, editing := tbl.Editing()
	assert.False(t, editing)

	require.True(t, tbl.BeginEdit(0, model.ColumnCategory))
	tbl.SetRecords([]model.Record{txn("t-9", "Zomato", "Food")})
	_, editing = tbl.Editing()
	assert.False(t, editing)
}

func TestTable_Patch(t *testing.T) {
	tbl := transactionTable(txn("t-1", "Swiggy", "Food"), txn("t-2", "Uber", "Travel"))

	assert.True(t, tbl.Patch("t-2", model.ColumnCategory, "Commute"))
	assert.Equal(t, "Commute", tbl.Records()[1].String(model.ColumnCategory))
	assert.Equal(t, "Food", tbl.Records()[0].String(model.ColumnCategory))

	assert.False(t, tbl.Patch("missing", model.ColumnCategory, "x"))
}
