package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/finboard/internal/config"
	"github.com/Veraticus/finboard/internal/dashboard"
	"github.com/Veraticus/finboard/internal/model"
	"github.com/Veraticus/finboard/internal/tui/components"
	"github.com/Veraticus/finboard/internal/tui/viewmodel"
)

// toolForm binds a form component to a submit-only store.
type toolForm struct {
	form   components.FormModel
	status func() viewmodel.Status
	submit func(values map[string]string) tea.Cmd
	apply  func(msg dashboard.FormSent) bool
	name   string
	label  string
}

// bindForm wires the component to store. parse turns the input values into
// the store's request; its field errors are shown without contacting the
// store.
func bindForm[T any](e *env, store *dashboard.Form[T], title string, parse func(map[string]string) (T, map[string]string),
	fields ...components.Field) *toolForm {
	tf := &toolForm{
		name:   store.Name(),
		label:  title,
		form:   components.NewForm(store.Name(), title, e.theme, fields...),
		status: func() viewmodel.Status { return store.Status },
	}
	tf.submit = func(values map[string]string) tea.Cmd {
		in, errs := parse(values)
		if len(errs) > 0 {
			tf.form.SetErrors(errs)
			store.Status.Fail("Please fix the highlighted fields.")
			return nil
		}
		ready, seq, ok := store.Prepare(in)
		tf.form.SetErrors(store.Fields)
		if !ok {
			return nil
		}
		tf.form.Blur()
		return task(e, func(ctx context.Context) dashboard.FormSent {
			return store.Send(ctx, seq, ready)
		})
	}
	tf.apply = func(msg dashboard.FormSent) bool {
		if msg.Form != store.Name() {
			return false
		}
		store.Apply(msg)
		if msg.Err == nil {
			tf.form.Reset()
		}
		return true
	}
	return tf
}

// toolsScreen holds the submit-only forms: upload, category rule, range
// deletion and feedback.
type toolsScreen struct {
	env    *env
	forms  []*toolForm
	cursor int
}

func newToolsScreen(e *env, st Stores) *toolsScreen {
	s := &toolsScreen{env: e}
	if st.UploadForm != nil {
		s.forms = append(s.forms, bindForm(e, st.UploadForm, "Upload Statement", parseUpload,
			components.Field{Key: "bank", Label: "Bank", Options: model.StatementBanks},
			components.Field{Key: "file", Label: "File", Placeholder: "statement.pdf"},
		))
	}
	if st.RuleForm != nil {
		s.forms = append(s.forms, bindForm(e, st.RuleForm, "Add Category Rule", parseRule,
			components.Field{Key: "keyword", Label: "Keyword"},
			components.Field{Key: "category", Label: "Category"},
			components.Field{Key: "cat_type", Label: "Type", Options: []string{"Credit", "Debit"}},
		))
	}
	if st.DeleteForm != nil {
		s.forms = append(s.forms, bindForm(e, st.DeleteForm, "Delete Transactions", parseDeleteRange,
			components.Field{Key: "start_date", Label: "Start date", Placeholder: model.DateLayout},
			components.Field{Key: "end_date", Label: "End date", Placeholder: model.DateLayout},
			components.Field{Key: "bank", Label: "Bank", Options: model.ChartBanks},
		))
	}
	if st.FeedbackForm != nil {
		s.forms = append(s.forms, bindForm(e, st.FeedbackForm, "Feedback", parseFeedback,
			components.Field{Key: "user_email", Label: "Email", Placeholder: "defaults to the signed-in user"},
			components.Field{Key: "feedback_text", Label: "Feedback"},
			components.Field{Key: "attachment", Label: "Attachment", Placeholder: "optional file"},
		))
	}
	return s
}

func parseUpload(v map[string]string) (model.StatementUpload, map[string]string) {
	return model.StatementUpload{Bank: v["bank"], Path: config.ExpandPath(v["file"])}, nil
}

func parseRule(v map[string]string) (model.CategoryRule, map[string]string) {
	return model.CategoryRule{Keyword: v["keyword"], Category: v["category"], Type: v["cat_type"]}, nil
}

func parseDeleteRange(v map[string]string) (model.DeleteRange, map[string]string) {
	errs := map[string]string{}
	r := model.DeleteRange{Bank: v["bank"]}
	r.StartDate = parseDateField(v, "start_date", errs)
	r.EndDate = parseDateField(v, "end_date", errs)
	return r, errs
}

func parseFeedback(v map[string]string) (model.Feedback, map[string]string) {
	return model.Feedback{
		UserEmail:      v["user_email"],
		Text:           v["feedback_text"],
		AttachmentPath: config.ExpandPath(v["attachment"]),
	}, nil
}

func (s *toolsScreen) title() string { return "Tools" }

func (s *toolsScreen) load() tea.Cmd { return nil }

func (s *toolsScreen) focused() *toolForm {
	for _, f := range s.forms {
		if f.form.Focused() {
			return f
		}
	}
	return nil
}

func (s *toolsScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case dashboard.FormSent:
		for _, f := range s.forms {
			if f.apply(msg) {
				break
			}
		}
		return nil

	case components.FormSubmittedMsg:
		for _, f := range s.forms {
			if f.name == msg.Form {
				return f.submit(msg.Values)
			}
		}
		return nil

	case components.FormCancelledMsg:
		return nil

	case tea.KeyMsg:
		if f := s.focused(); f != nil {
			var cmd tea.Cmd
			f.form, cmd = f.form.Update(msg)
			return cmd
		}
		if len(s.forms) == 0 {
			return nil
		}
		switch msg.String() {
		case "j", "down":
			s.cursor = (s.cursor + 1) % len(s.forms)
		case "k", "up":
			s.cursor = (s.cursor - 1 + len(s.forms)) % len(s.forms)
		case "enter", "e":
			return s.forms[s.cursor].form.Focus()
		}
	}
	return nil
}

func (s *toolsScreen) view() string {
	t := s.env.theme
	if len(s.forms) == 0 {
		return lipgloss.NewStyle().Foreground(t.Muted).Render("No tools available.")
	}

	menu := make([]string, len(s.forms))
	for i, f := range s.forms {
		label := " " + f.label + " "
		if i == s.cursor {
			label = t.Selected.Render(label)
		}
		menu[i] = label
	}

	current := s.forms[s.cursor]
	hint := "j/k: choose · enter: edit"
	if current.form.Focused() {
		hint = "tab: next field · enter on last field or ctrl+s: submit · esc: leave"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		strings.Join(menu, " "),
		"",
		current.form.View(current.status()),
		"",
		lipgloss.NewStyle().Foreground(t.Muted).Render(hint),
	)
}

func (s *toolsScreen) capturing() bool { return s.focused() != nil }

func (s *toolsScreen) resize(width, _ int) {
	for _, f := range s.forms {
		f.form.Resize(width)
	}
}
