package tui

import (
	"context"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/finboard/internal/model"
	"github.com/Veraticus/finboard/internal/networth"
	"github.com/Veraticus/finboard/internal/tui/components"
	"github.com/Veraticus/finboard/internal/tui/viewmodel"
)

const (
	personalFormName  = "personal"
	dependentFormName = "dependent"
)

// dependentsScreen shows the personal profile above the dependents table.
type dependentsScreen struct {
	env      *env
	store    *networth.Dependents
	rows     *viewmodel.Table
	table    components.TableModel
	personal components.FormModel
	form     components.FormModel
	editing  int64
}

func newDependentsScreen(e *env, store *networth.Dependents) *dependentsScreen {
	rows := viewmodel.NewTable(viewmodel.TableOptions{
		Columns:  []string{idColumn, "Name", "Relationship", "Gender", "Date of Birth"},
		Hidden:   []string{idColumn},
		IDColumn: idColumn,
	})
	s := &dependentsScreen{
		env:   e,
		store: store,
		rows:  rows,
		table: components.NewTable(rows, "Dependents", e.theme),
		personal: components.NewForm(personalFormName, "Personal Profile", e.theme,
			components.Field{Key: "name", Label: "Name"},
			components.Field{Key: "date_of_birth", Label: "Date of birth", Placeholder: model.DateLayout},
			components.Field{Key: "gender", Label: "Gender", Options: model.Genders},
		),
		form: components.NewForm(dependentFormName, "Dependent", e.theme,
			components.Field{Key: "name", Label: "Name"},
			components.Field{Key: "relationship", Label: "Relationship", Options: model.Relationships},
			components.Field{Key: "gender", Label: "Gender", Options: model.Genders},
			components.Field{Key: "date_of_birth", Label: "Date of birth", Placeholder: model.DateLayout},
		),
	}
	s.table.SetOrigin(0, contentTop)
	return s
}

func (s *dependentsScreen) title() string { return "Dependents" }

func (s *dependentsScreen) load() tea.Cmd {
	return s.run(s.store.Prepare(networth.OpList, model.Dependent{}))
}

func (s *dependentsScreen) run(req networth.DependentRequest, err error) tea.Cmd {
	if err != nil {
		return nil
	}
	return task(s.env, func(ctx context.Context) networth.DependentsResult {
		return s.store.Send(ctx, req)
	})
}

func (s *dependentsScreen) sync() {
	list := s.store.List()
	records := make([]model.Record, 0, len(list))
	for _, d := range list {
		records = append(records, model.NewRecord(
			idColumn, strconv.FormatInt(d.ID, 10),
			"Name", d.Name,
			"Relationship", d.Relationship,
			"Gender", d.Gender,
			"Date of Birth", d.DateOfBirth.String(),
		))
	}
	s.rows.SetRecords(records)

	if !s.personal.Focused() {
		p := s.store.Personal()
		s.personal.Reset()
		s.personal.SetValues(map[string]string{
			"name":          p.Name,
			"date_of_birth": p.DateOfBirth.String(),
			"gender":        p.Gender,
		})
	}
}

func (s *dependentsScreen) selected() (model.Dependent, bool) {
	rows := s.rows.Rows()
	if s.table.Cursor() >= len(rows) {
		return model.Dependent{}, false
	}
	id, err := strconv.ParseInt(rows[s.table.Cursor()].String(idColumn), 10, 64)
	if err != nil {
		return model.Dependent{}, false
	}
	return s.store.Find(id)
}

func (s *dependentsScreen) openForm(dep model.Dependent) tea.Cmd {
	s.editing = dep.ID
	s.form.Reset()
	if dep.ID != 0 {
		s.form.SetValues(map[string]string{
			"name":          dep.Name,
			"relationship":  dep.Relationship,
			"gender":        dep.Gender,
			"date_of_birth": dep.DateOfBirth.String(),
		})
	}
	return s.form.Focus()
}

func (s *dependentsScreen) submit(msg components.FormSubmittedMsg) tea.Cmd {
	errs := map[string]string{}
	dob := parseDateField(msg.Values, "date_of_birth", errs)

	if msg.Form == personalFormName {
		if len(errs) > 0 {
			s.personal.SetErrors(errs)
			s.store.Status.Fail("Please fix the highlighted fields.")
			return nil
		}
		req, err := s.store.PreparePersonal(networth.Personal{
			Name:        msg.Values["name"],
			DateOfBirth: dob,
			Gender:      msg.Values["gender"],
		})
		s.personal.SetErrors(s.store.Fields)
		if err == nil {
			s.personal.Blur()
		}
		return s.run(req, err)
	}

	if len(errs) > 0 {
		s.form.SetErrors(errs)
		s.store.Status.Fail("Please fix the highlighted fields.")
		return nil
	}
	dep := model.Dependent{
		ID:           s.editing,
		Name:         msg.Values["name"],
		Relationship: msg.Values["relationship"],
		Gender:       msg.Values["gender"],
		DateOfBirth:  dob,
	}
	op := networth.OpAdd
	if s.editing != 0 {
		op = networth.OpUpdate
	}
	req, err := s.store.Prepare(op, dep)
	s.form.SetErrors(s.store.Fields)
	if err == nil {
		s.form.Blur()
	}
	return s.run(req, err)
}

func (s *dependentsScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case networth.DependentsResult:
		s.store.Apply(msg)
		if msg.Err == nil && msg.Op != networth.OpList {
			s.form.Reset()
		}
		s.sync()
		return nil

	case components.FormSubmittedMsg:
		if msg.Form != personalFormName && msg.Form != dependentFormName {
			return nil
		}
		return s.submit(msg)

	case components.FormCancelledMsg:
		if msg.Form == personalFormName {
			s.sync()
		}
		return nil

	case components.RowActivatedMsg:
		if dep, ok := s.selected(); ok {
			return s.openForm(dep)
		}
		return nil

	case tea.KeyMsg:
		var cmd tea.Cmd
		switch {
		case s.personal.Focused():
			s.personal, cmd = s.personal.Update(msg)
			return cmd
		case s.form.Focused():
			s.form, cmd = s.form.Update(msg)
			return cmd
		}
		if !s.table.Capturing() {
			switch msg.String() {
			case "p":
				return s.personal.Focus()
			case "a":
				return s.openForm(model.Dependent{})
			case "e":
				if dep, ok := s.selected(); ok {
					return s.openForm(dep)
				}
				return nil
			case "d":
				if dep, ok := s.selected(); ok {
					return s.run(s.store.Prepare(networth.OpDelete, dep))
				}
				return nil
			}
		}
		s.table, cmd = s.table.Update(msg)
		return cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		s.table, cmd = s.table.Update(msg)
		return cmd
	}
	return nil
}

func (s *dependentsScreen) view() string {
	t := s.env.theme
	status := s.store.Status
	parts := []string{s.table.View(), ""}
	switch {
	case s.form.Focused():
		parts = append(parts, s.form.View(status))
	default:
		parts = append(parts, s.personal.View(status))
	}
	if !s.capturing() {
		parts = append(parts, lipgloss.NewStyle().Foreground(t.Muted).Render("p: personal profile · a: add · e/enter: edit · d: delete"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (s *dependentsScreen) capturing() bool {
	return s.personal.Focused() || s.form.Focused() || s.table.Capturing()
}

func (s *dependentsScreen) resize(width, height int) {
	s.table.Resize(width, max(height-10, 5))
	s.personal.Resize(width)
	s.form.Resize(width)
}
