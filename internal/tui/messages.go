package tui

// dataChangedMsg is delivered after the change signal was marked.
type dataChangedMsg struct{}

// profileChangedMsg is delivered after the selected profile changed.
type profileChangedMsg struct{}

// profilesDoneMsg carries the result of a profile operation.
type profilesDoneMsg struct {
	err      error
	notice   string
	fallback string
	seq      uint64
}

// exportDoneMsg carries the result of a net-worth export.
type exportDoneMsg struct {
	err  error
	path string
}
