package viewmodel

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Veraticus/finboard/internal/model"
)

// SortDirection is the tri-state column sort.
type SortDirection int

const (
	// SortNone keeps the filtered order.
	SortNone SortDirection = iota
	// SortAsc sorts ascending.
	SortAsc
	// SortDesc sorts descending.
	SortDesc
)

func (d SortDirection) String() string {
	switch d {
	case SortAsc:
		return "asc"
	case SortDesc:
		return "desc"
	default:
		return "none"
	}
}

// Arrow returns the header indicator for the direction.
func (d SortDirection) Arrow() string {
	switch d {
	case SortAsc:
		return "▲"
	case SortDesc:
		return "▼"
	default:
		return ""
	}
}

// SortSpec is the active sort.
type SortSpec struct {
	Column    string
	Direction SortDirection
}

// EditRequest is a submitted cell edit, ready for the gateway.
type EditRequest struct {
	RecordID string
	Column   string
	Value    string
}

// EditState describes the cell currently being edited.
type EditState struct {
	RecordID string
	Column   string
	Value    string
	Row      int
}

// TableOptions configures a Table.
type TableOptions struct {
	// Labels maps column keys to header text.
	Labels map[string]string
	// Columns fixes the column set. When empty, columns are discovered from
	// the first record's keys.
	Columns []string
	// Hidden columns start out hidden.
	Hidden []string
	// Editable is the only column that accepts edits. Empty disables editing.
	Editable string
	// IDColumn identifies records in edit requests.
	IDColumn     string
	DefaultWidth int
}

type resizeGesture struct {
	column     string
	startX     int
	startWidth int
}

// Table is the filter/sort/visibility/resize/edit state behind every data grid.
type Table struct {
	opts       TableOptions
	records    []model.Record
	columns    []string
	hidden     map[string]bool
	filters    map[string]string
	showFilter map[string]bool
	widths     map[string]int
	resize     *resizeGesture
	edit       *EditState
	collator   *collate.Collator
	sort       SortSpec
}

// MinColumnWidth is the narrowest a column can be dragged.
const MinColumnWidth = 1

// NewTable creates an empty table.
func NewTable(opts TableOptions) *Table {
	if opts.DefaultWidth <= 0 {
		opts.DefaultWidth = 14
	}
	t := &Table{
		opts:       opts,
		hidden:     make(map[string]bool),
		filters:    make(map[string]string),
		showFilter: make(map[string]bool),
		widths:     make(map[string]int),
		collator:   collate.New(language.English),
	}
	for _, col := range opts.Hidden {
		t.hidden[col] = true
	}
	t.columns = append([]string(nil), opts.Columns...)
	return t
}

// SetRecords replaces the data wholesale. Filters, sort and widths survive;
// an in-progress edit does not.
func (t *Table) SetRecords(records []model.Record) {
	t.records = records
	t.edit = nil
	if len(t.opts.Columns) == 0 {
		t.columns = nil
		if len(records) > 0 {
			t.columns = records[0].Keys()
		}
	}
}

// Records returns the unfiltered data.
func (t *Table) Records() []model.Record {
	return t.records
}

// Len is the number of unfiltered records.
func (t *Table) Len() int {
	return len(t.records)
}

// AllColumns lists every known column, hidden or not.
func (t *Table) AllColumns() []string {
	return append([]string(nil), t.columns...)
}

// Columns lists the visible columns in order.
func (t *Table) Columns() []string {
	out := make([]string, 0, len(t.columns))
	for _, col := range t.columns {
		if !t.hidden[col] {
			out = append(out, col)
		}
	}
	return out
}

// Label returns the header text of col.
func (t *Table) Label(col string) string {
	if label, ok := t.opts.Labels[col]; ok {
		return label
	}
	return col
}

// IsHidden reports whether col is hidden.
func (t *Table) IsHidden(col string) bool {
	return t.hidden[col]
}

// ToggleColumn shows a hidden column or hides a visible one.
func (t *Table) ToggleColumn(col string) {
	if t.hidden[col] {
		delete(t.hidden, col)
		return
	}
	t.hidden[col] = true
}

// SetFilter sets the text filter of col. Empty text deactivates it.
func (t *Table) SetFilter(col, text string) {
	if text == "" {
		delete(t.filters, col)
		return
	}
	t.filters[col] = text
}

// Filter returns the filter text of col.
func (t *Table) Filter(col string) string {
	return t.filters[col]
}

// ActiveFilters returns the number of non-empty filters.
func (t *Table) ActiveFilters() int {
	return len(t.filters)
}

// ToggleFilterInput shows or hides the filter input of col.
func (t *Table) ToggleFilterInput(col string) {
	t.showFilter[col] = !t.showFilter[col]
}

// FilterVisible reports whether the filter input of col is shown.
func (t *Table) FilterVisible(col string) bool {
	return t.showFilter[col]
}

// ClearFilter removes the filter of col and hides its input.
func (t *Table) ClearFilter(col string) {
	delete(t.filters, col)
	delete(t.showFilter, col)
}

// CycleSort advances the sort for a header click: the same column goes
// none → asc → desc → none, another column starts at asc.
func (t *Table) CycleSort(col string) SortSpec {
	if t.sort.Column != col {
		t.sort = SortSpec{Column: col, Direction: SortAsc}
		return t.sort
	}
	switch t.sort.Direction {
	case SortNone:
		t.sort.Direction = SortAsc
	case SortAsc:
		t.sort.Direction = SortDesc
	default:
		t.sort.Direction = SortNone
	}
	return t.sort
}

// Sort returns the active sort.
func (t *Table) Sort() SortSpec {
	return t.sort
}

func (t *Table) matches(r model.Record) bool {
	for col, text := range t.filters {
		v, ok := r.Get(col)
		if !ok || v == nil {
			return false
		}
		if !strings.Contains(strings.ToLower(model.Stringify(v)), strings.ToLower(text)) {
			return false
		}
	}
	return true
}

// Rows derives the displayed records: every active filter applied, then the sort.
func (t *Table) Rows() []model.Record {
	rows := make([]model.Record, 0, len(t.records))
	for _, r := range t.records {
		if t.matches(r) {
			rows = append(rows, r)
		}
	}

	if t.sort.Direction == SortNone || t.sort.Column == "" {
		return rows
	}

	col := t.sort.Column
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = strings.ToLower(r.String(col))
	}
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		cmp := t.collator.CompareString(keys[idx[a]], keys[idx[b]])
		if t.sort.Direction == SortDesc {
			return cmp > 0
		}
		return cmp < 0
	})

	sorted := make([]model.Record, len(rows))
	for i, j := range idx {
		sorted[i] = rows[j]
	}
	return sorted
}

// Width returns the display width of col.
func (t *Table) Width(col string) int {
	if w, ok := t.widths[col]; ok {
		return w
	}
	return t.opts.DefaultWidth
}

// SetWidth fixes the width of col.
func (t *Table) SetWidth(col string, w int) {
	if w < MinColumnWidth {
		w = MinColumnWidth
	}
	t.widths[col] = w
}

// BeginResize starts a drag gesture on col's border at pointer position x.
func (t *Table) BeginResize(col string, x, startWidth int) {
	t.resize = &resizeGesture{column: col, startX: x, startWidth: startWidth}
}

// DragTo resizes the column under an active gesture. It reports whether a
// gesture was active.
func (t *Table) DragTo(x int) bool {
	if t.resize == nil {
		return false
	}
	t.SetWidth(t.resize.column, t.resize.startWidth+(x-t.resize.startX))
	return true
}

// EndResize detaches the gesture.
func (t *Table) EndResize() {
	t.resize = nil
}

// Resizing returns the column under an active gesture.
func (t *Table) Resizing() (string, bool) {
	if t.resize == nil {
		return "", false
	}
	return t.resize.column, true
}

// BeginEdit enters edit mode on a derived row. Only the editable column can
// be edited; the buffer starts with the current value.
func (t *Table) BeginEdit(row int, col string) bool {
	if t.opts.Editable == "" || col != t.opts.Editable {
		return false
	}
	rows := t.Rows()
	if row < 0 || row >= len(rows) {
		return false
	}
	t.edit = &EditState{
		Row:      row,
		Column:   col,
		Value:    rows[row].String(col),
		RecordID: rows[row].String(t.opts.IDColumn),
	}
	return true
}

// Editing returns the active edit.
func (t *Table) Editing() (EditState, bool) {
	if t.edit == nil {
		return EditState{}, false
	}
	return *t.edit, true
}

// SetEditValue replaces the edit buffer.
func (t *Table) SetEditValue(v string) {
	if t.edit != nil {
		t.edit.Value = v
	}
}

// CancelEdit leaves edit mode without submitting.
func (t *Table) CancelEdit() {
	t.edit = nil
}

// Submit leaves edit mode and returns the request for the edited cell.
func (t *Table) Submit(value string) (EditRequest, bool) {
	if t.edit == nil {
		return EditRequest{}, false
	}
	req := EditRequest{RecordID: t.edit.RecordID, Column: t.edit.Column, Value: value}
	t.edit = nil
	return req, true
}

// Patch sets column of the record identified by id. It reports whether the
// record was found.
func (t *Table) Patch(id, column, value string) bool {
	for i := range t.records {
		if t.records[i].String(t.opts.IDColumn) == id {
			t.records[i].Set(column, value)
			return true
		}
	}
	return false
}
