package components

import "github.com/Veraticus/finboard/internal/chart"

// EditSubmittedMsg is sent when the user confirms a cell edit. The table
// stays in edit mode until the owning screen submits or cancels it.
type EditSubmittedMsg struct {
	Value string
}

// RowActivatedMsg is sent when enter is pressed on a row of a read-only table.
type RowActivatedMsg struct {
	Row int
}

// BarSelectedMsg is sent when a bar is chosen for drill-down.
type BarSelectedMsg struct {
	Chart string
	Side  chart.Side
	Index int
}

// BarBackMsg asks to leave the drill-down view of one side.
type BarBackMsg struct {
	Chart string
	Side  chart.Side
}

// FormSubmittedMsg carries the raw field values of a submitted form.
type FormSubmittedMsg struct {
	Values map[string]string
	Form   string
}

// FormCancelledMsg is sent when a form is dismissed.
type FormCancelledMsg struct {
	Form string
}
