package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/finboard/internal/tui/themes"
	"github.com/Veraticus/finboard/internal/tui/viewmodel"
)

// Field describes one input of a form. Key is the backend field name, which
// is also how validation errors are matched to inputs.
type Field struct {
	Key         string
	Label       string
	Placeholder string
	// Options are offered as completions.
	Options []string
}

// FormModel is a vertical list of text inputs submitted together.
type FormModel struct {
	theme  themes.Theme
	errors map[string]string
	name   string
	title  string
	fields []Field
	inputs []textinput.Model
	focus  int
	width  int
}

// NewForm creates a form. name identifies it in emitted messages.
func NewForm(name, title string, theme themes.Theme, fields ...Field) FormModel {
	inputs := make([]textinput.Model, len(fields))
	for i, f := range fields {
		in := textinput.New()
		in.Placeholder = f.Placeholder
		in.CharLimit = 256
		in.Width = 40
		if len(f.Options) > 0 {
			in.SetSuggestions(f.Options)
			in.ShowSuggestions = true
		}
		inputs[i] = in
	}
	m := FormModel{
		name:   name,
		title:  title,
		theme:  theme,
		fields: fields,
		inputs: inputs,
		width:  60,
	}
	return m
}

// Name returns the form name.
func (m FormModel) Name() string {
	return m.name
}

// Focus focuses the first input.
func (m *FormModel) Focus() tea.Cmd {
	m.focus = 0
	return m.refocus()
}

// Blur removes focus from every input.
func (m *FormModel) Blur() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

// Focused reports whether an input has focus.
func (m FormModel) Focused() bool {
	for _, in := range m.inputs {
		if in.Focused() {
			return true
		}
	}
	return false
}

func (m *FormModel) refocus() tea.Cmd {
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == m.focus {
			cmd = m.inputs[i].Focus()
			continue
		}
		m.inputs[i].Blur()
	}
	return cmd
}

// SetValues prefills inputs by field key.
func (m *FormModel) SetValues(values map[string]string) {
	for i, f := range m.fields {
		if v, ok := values[f.Key]; ok {
			m.inputs[i].SetValue(v)
		}
	}
}

// Values returns the trimmed input values by field key.
func (m FormModel) Values() map[string]string {
	out := make(map[string]string, len(m.fields))
	for i, f := range m.fields {
		out[f.Key] = strings.TrimSpace(m.inputs[i].Value())
	}
	return out
}

// Reset clears every input and error.
func (m *FormModel) Reset() {
	for i := range m.inputs {
		m.inputs[i].Reset()
	}
	m.errors = nil
}

// SetErrors attaches per-field messages.
func (m *FormModel) SetErrors(errs map[string]string) {
	m.errors = errs
}

// Resize sets the form width.
func (m *FormModel) Resize(width int) {
	m.width = width
	for i := range m.inputs {
		m.inputs[i].Width = max(width-24, 10)
	}
}

// Update moves between inputs, edits the focused one and submits on enter
// in the last input or ctrl+s anywhere.
func (m FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || len(m.inputs) == 0 {
		return m, nil
	}

	switch key.String() {
	case "tab", "down":
		m.focus = (m.focus + 1) % len(m.inputs)
		return m, m.refocus()
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + len(m.inputs)) % len(m.inputs)
		return m, m.refocus()
	case "esc":
		m.Blur()
		cancelled := FormCancelledMsg{Form: m.name}
		return m, func() tea.Msg { return cancelled }
	case "ctrl+s":
		return m, m.submit()
	case "enter":
		if m.focus == len(m.inputs)-1 {
			return m, m.submit()
		}
		m.focus++
		return m, m.refocus()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m FormModel) submit() tea.Cmd {
	submitted := FormSubmittedMsg{Form: m.name, Values: m.Values()}
	return func() tea.Msg { return submitted }
}

// View renders the inputs with their errors under the title. status is the
// owning store's state.
func (m FormModel) View(status viewmodel.Status) string {
	labelW := 4
	for _, f := range m.fields {
		labelW = max(labelW, len([]rune(f.Label)))
	}

	lines := []string{m.theme.Subtitle.Render(m.title)}
	for i, f := range m.fields {
		label := viewmodel.PadRight(f.Label, labelW)
		if i == m.focus && m.Focused() {
			label = lipgloss.NewStyle().Foreground(m.theme.Primary).Bold(true).Render(label)
		}
		lines = append(lines, label+"  "+m.inputs[i].View())
		if msg := m.errors[f.Key]; msg != "" {
			lines = append(lines, strings.Repeat(" ", labelW+2)+m.theme.StatusError.Render(msg))
		}
	}
	if line := StatusLine(m.theme, status); line != "" {
		lines = append(lines, "", line)
	}
	return strings.Join(lines, "\n")
}

// StatusLine renders a screen's loading, error or notice state.
func StatusLine(theme themes.Theme, status viewmodel.Status) string {
	switch {
	case status.Err != "":
		return theme.StatusError.Render(status.Err)
	case status.Loading:
		return theme.StatusPending.Render("Loading…")
	case status.Notice != "":
		return theme.StatusSuccess.Render(status.Notice)
	}
	return ""
}
