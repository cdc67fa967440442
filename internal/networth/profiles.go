package networth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Veraticus/finboard/internal/common"
	"github.com/Veraticus/finboard/internal/model"
	"github.com/Veraticus/finboard/internal/signal"
	"github.com/Veraticus/finboard/internal/validation"
)

// ProfileGateway is the profile part of the backend.
type ProfileGateway interface {
	Profiles(ctx context.Context, email string) ([]model.Profile, error)
	CreateProfile(ctx context.Context, email, name string) (model.Profile, error)
	DeleteProfile(ctx context.Context, email string, id int64) error
}

// Profiles is the profile context shared by every net-worth screen. It is
// safe for concurrent use; selection changes are broadcast on Changes.
type Profiles struct {
	gw       ProfileGateway
	id       Identity
	logger   *slog.Logger
	changes  *signal.Signal
	profiles []model.Profile
	selected int64
	mu       sync.RWMutex
}

// NewProfiles creates an empty profile context.
func NewProfiles(gw ProfileGateway, id Identity, logger *slog.Logger) *Profiles {
	return &Profiles{
		gw:      gw,
		id:      id,
		logger:  orDefault(logger),
		changes: signal.New(),
	}
}

// Changes is marked whenever the selected profile changes.
func (p *Profiles) Changes() *signal.Signal {
	return p.changes
}

// Fetch replaces the profile list. The first profile is selected when the
// current selection is missing from the new list.
func (p *Profiles) Fetch(ctx context.Context) error {
	email, err := requireEmail(p.id)
	if err != nil {
		return err
	}
	profiles, err := p.gw.Profiles(ctx, email)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.profiles = profiles
	changed := p.reselectLocked()
	p.mu.Unlock()

	if changed {
		p.changes.Mark()
	}
	return nil
}

// reselectLocked keeps the selection when it still exists, otherwise falls
// back to the first profile or none. It reports whether the selection moved.
func (p *Profiles) reselectLocked() bool {
	prev := p.selected
	if prev != 0 && p.indexLocked(prev) >= 0 {
		return false
	}
	p.selected = 0
	if len(p.profiles) > 0 {
		p.selected = p.profiles[0].ID
	}
	return p.selected != prev
}

func (p *Profiles) indexLocked(id int64) int {
	for i, prof := range p.profiles {
		if prof.ID == id {
			return i
		}
	}
	return -1
}

// Add creates a profile, appends it and selects it.
func (p *Profiles) Add(ctx context.Context, name string) (model.Profile, error) {
	email, err := requireEmail(p.id)
	if err != nil {
		return model.Profile{}, err
	}
	name = strings.TrimSpace(name)
	if err := validation.Struct(model.Profile{UserID: email, Name: name}); err != nil {
		return model.Profile{}, common.NewUserError("Profile name is required.", err)
	}

	created, err := p.gw.CreateProfile(ctx, email, name)
	if err != nil {
		return model.Profile{}, err
	}

	p.mu.Lock()
	p.profiles = append(p.profiles, created)
	p.selected = created.ID
	p.mu.Unlock()

	p.logger.Info("profile created", "profile_id", created.ID, "name", created.Name)
	p.changes.Mark()
	return created, nil
}

// Delete removes a profile. Deleting the selected profile selects the first
// remaining one, or clears the selection when none remain.
func (p *Profiles) Delete(ctx context.Context, id int64) error {
	email, err := requireEmail(p.id)
	if err != nil {
		return err
	}
	if err := p.gw.DeleteProfile(ctx, email, id); err != nil {
		return err
	}

	p.mu.Lock()
	if i := p.indexLocked(id); i >= 0 {
		p.profiles = append(p.profiles[:i:i], p.profiles[i+1:]...)
	}
	changed := p.reselectLocked()
	p.mu.Unlock()

	if changed {
		p.changes.Mark()
	}
	return nil
}

// Select makes id the selected profile.
func (p *Profiles) Select(id int64) error {
	p.mu.Lock()
	if p.indexLocked(id) < 0 {
		p.mu.Unlock()
		return fmt.Errorf("profile %d: %w", id, common.ErrNotFound)
	}
	changed := p.selected != id
	p.selected = id
	p.mu.Unlock()

	if changed {
		p.changes.Mark()
	}
	return nil
}

// List returns a copy of the profiles.
func (p *Profiles) List() []model.Profile {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]model.Profile(nil), p.profiles...)
}

// Selected returns the selected profile.
func (p *Profiles) Selected() (model.Profile, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if i := p.indexLocked(p.selected); i >= 0 && p.selected != 0 {
		return p.profiles[i], true
	}
	return model.Profile{}, false
}

// SelectedID returns the selected profile's id, or a user-facing
// common.ErrNoProfile error.
func (p *Profiles) SelectedID() (int64, error) {
	prof, ok := p.Selected()
	if !ok {
		return 0, errNoProfile
	}
	return prof.ID, nil
}
