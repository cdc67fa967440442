package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/finboard/internal/common"
	"github.com/Veraticus/finboard/internal/model"
	"github.com/Veraticus/finboard/internal/storage"
)

// IdentityStore persists the sign-in.
type IdentityStore interface {
	SaveIdentity(ctx context.Context, id storage.StoredIdentity) error
	LoadIdentity(ctx context.Context) (*storage.StoredIdentity, error)
	ClearIdentity(ctx context.Context) error
}

// UserRegistrar creates the backend account for a newly signed-in user.
type UserRegistrar interface {
	CreateUser(ctx context.Context, name, email string) (bool, error)
}

// Manager is the identity context shared by every screen.
type Manager struct {
	store  IdentityStore
	users  UserRegistrar
	logger *slog.Logger
	now    func() time.Time
	user   *model.Identity
	mu     sync.RWMutex
}

// NewManager creates a manager backed by store. users may be nil to skip
// backend registration.
func NewManager(store IdentityStore, users UserRegistrar, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:  store,
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

// Restore loads a previously persisted sign-in. A missing sign-in is not an error.
func (m *Manager) Restore(ctx context.Context) error {
	stored, err := m.store.LoadIdentity(ctx)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	id := stored.Identity
	m.user = &id
	return nil
}

// SignIn decodes idToken, makes sure the backend knows the user and persists
// the identity.
func (m *Manager) SignIn(ctx context.Context, idToken string) (model.Identity, error) {
	id, _, err := DecodeIDToken(idToken)
	if err != nil {
		return model.Identity{}, err
	}

	if m.users != nil {
		created, err := m.users.CreateUser(ctx, id.Name, id.Email)
		if err != nil {
			return model.Identity{}, fmt.Errorf("failed to register user: %w", err)
		}
		m.logger.Info("signed in", "email", id.Email, "new_user", created)
	}

	if err := m.store.SaveIdentity(ctx, storage.StoredIdentity{
		Identity:   id,
		IDToken:    idToken,
		SignedInAt: m.now(),
	}); err != nil {
		return model.Identity{}, err
	}

	m.mu.Lock()
	m.user = &id
	m.mu.Unlock()
	return id, nil
}

// SignOut forgets the identity.
func (m *Manager) SignOut(ctx context.Context) error {
	if err := m.store.ClearIdentity(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	m.user = nil
	m.mu.Unlock()
	return nil
}

// Current returns the signed-in identity, if any.
func (m *Manager) Current() (model.Identity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return model.Identity{}, false
	}
	return *m.user, true
}

// Require returns the signed-in identity or common.ErrNotSignedIn.
func (m *Manager) Require() (model.Identity, error) {
	id, ok := m.Current()
	if !ok {
		return model.Identity{}, common.NewUserError("Sign in first with `finboard login`.", common.ErrNotSignedIn)
	}
	return id, nil
}

// Email returns the signed-in user's email, or "" when signed out.
func (m *Manager) Email() string {
	id, _ := m.Current()
	return id.Email
}
