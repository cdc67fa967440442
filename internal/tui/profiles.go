package tui

import (
	"context"
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/finboard/internal/model"
	"github.com/Veraticus/finboard/internal/networth"
	"github.com/Veraticus/finboard/internal/tui/components"
	"github.com/Veraticus/finboard/internal/tui/viewmodel"
)

const profileFormName = "profile"

// profilesScreen lists the projection profiles and changes the selection
// every net-worth screen is scoped to.
type profilesScreen struct {
	env    *env
	store  *networth.Profiles
	rows   *viewmodel.Table
	table  components.TableModel
	form   components.FormModel
	status viewmodel.Status
}

func newProfilesScreen(e *env, store *networth.Profiles) *profilesScreen {
	rows := viewmodel.NewTable(viewmodel.TableOptions{
		Columns:  []string{idColumn, "Selected", "Name"},
		Hidden:   []string{idColumn},
		IDColumn: idColumn,
		Labels:   map[string]string{"Selected": " "},
	})
	s := &profilesScreen{
		env:   e,
		store: store,
		rows:  rows,
		table: components.NewTable(rows, "Profiles", e.theme),
		form: components.NewForm(profileFormName, "New Profile", e.theme,
			components.Field{Key: "profile_name", Label: "Name"},
		),
	}
	s.rows.SetWidth("Selected", 2)
	s.table.SetOrigin(0, contentTop)
	return s
}

func (s *profilesScreen) title() string { return "Profiles" }

// do runs a profile operation in a command. The store is safe to use from
// the command goroutine.
func (s *profilesScreen) do(fallback string, fn func(context.Context) (string, error)) tea.Cmd {
	seq := s.status.Begin()
	return task(s.env, func(ctx context.Context) profilesDoneMsg {
		notice, err := fn(ctx)
		return profilesDoneMsg{seq: seq, err: err, notice: notice, fallback: fallback}
	})
}

func (s *profilesScreen) load() tea.Cmd {
	return s.do("Failed to fetch profiles.", func(ctx context.Context) (string, error) {
		return "", s.store.Fetch(ctx)
	})
}

func (s *profilesScreen) sync() {
	selected, _ := s.store.Selected()
	profiles := s.store.List()
	records := make([]model.Record, 0, len(profiles))
	for _, p := range profiles {
		mark := ""
		if p.ID == selected.ID {
			mark = "●"
		}
		records = append(records, model.NewRecord(
			idColumn, strconv.FormatInt(p.ID, 10),
			"Selected", mark,
			"Name", p.Name,
		))
	}
	s.rows.SetRecords(records)
}

func (s *profilesScreen) selected() (int64, bool) {
	rows := s.rows.Rows()
	if s.table.Cursor() >= len(rows) {
		return 0, false
	}
	id, err := strconv.ParseInt(rows[s.table.Cursor()].String(idColumn), 10, 64)
	return id, err == nil
}

func (s *profilesScreen) selectRow() tea.Cmd {
	id, ok := s.selected()
	if !ok {
		return nil
	}
	if err := s.store.Select(id); err != nil {
		s.status.Fail(err.Error())
		return nil
	}
	s.status.Succeed("")
	s.sync()
	return nil
}

func (s *profilesScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case profilesDoneMsg:
		if s.status.Settle(msg.seq, msg.err, msg.fallback) {
			s.env.logger.Debug("applying out-of-order response", "store", "profiles", "seq", msg.seq)
		}
		if msg.err == nil && msg.notice != "" {
			s.status.Succeed(msg.notice)
		}
		s.sync()
		return nil

	case profileChangedMsg:
		s.sync()
		return nil

	case components.FormSubmittedMsg:
		if msg.Form != profileFormName {
			return nil
		}
		name := msg.Values["profile_name"]
		if name == "" {
			s.form.SetErrors(map[string]string{"profile_name": "Profile name is required."})
			return nil
		}
		s.form.Blur()
		s.form.Reset()
		return s.do("Failed to add profile.", func(ctx context.Context) (string, error) {
			p, err := s.store.Add(ctx, name)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Profile %q created.", p.Name), nil
		})

	case components.FormCancelledMsg:
		s.form.Reset()
		return nil

	case components.RowActivatedMsg:
		return s.selectRow()

	case tea.KeyMsg:
		if s.form.Focused() {
			var cmd tea.Cmd
			s.form, cmd = s.form.Update(msg)
			return cmd
		}
		if !s.table.Capturing() {
			switch msg.String() {
			case "a":
				return s.form.Focus()
			case "d":
				id, ok := s.selected()
				if !ok {
					return nil
				}
				return s.do("Failed to delete profile.", func(ctx context.Context) (string, error) {
					return "Profile deleted.", s.store.Delete(ctx, id)
				})
			}
		}
		var cmd tea.Cmd
		s.table, cmd = s.table.Update(msg)
		return cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		s.table, cmd = s.table.Update(msg)
		return cmd
	}
	return nil
}

func (s *profilesScreen) view() string {
	t := s.env.theme
	parts := []string{s.table.View()}
	if s.form.Focused() {
		parts = append(parts, "", s.form.View(s.status))
	} else {
		if line := components.StatusLine(t, s.status); line != "" {
			parts = append(parts, line)
		}
		parts = append(parts, lipgloss.NewStyle().Foreground(t.Muted).Render("enter: select · a: add · d: delete"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (s *profilesScreen) capturing() bool {
	return s.form.Focused() || s.table.Capturing()
}

func (s *profilesScreen) resize(width, height int) {
	s.table.Resize(width, max(height-6, 5))
	s.form.Resize(width)
}

// profileLabel names the selected profile for the status bar.
func profileLabel(p *networth.Profiles) string {
	if p == nil {
		return ""
	}
	if prof, ok := p.Selected(); ok {
		return prof.Name
	}
	return "no profile"
}
