package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/finboard/internal/common"
	"github.com/Veraticus/finboard/internal/model"
)

// StoredIdentity is the persisted sign-in.
type StoredIdentity struct {
	SignedInAt time.Time
	IDToken    string
	model.Identity
}

// SaveIdentity replaces the stored sign-in.
func (s *SQLiteStorage) SaveIdentity(ctx context.Context, id StoredIdentity) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id.Email, "email"); err != nil {
		return err
	}
	if id.SignedInAt.IsZero() {
		id.SignedInAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO identity (id, email, name, id_token, signed_in_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			name = excluded.name,
			id_token = excluded.id_token,
			signed_in_at = excluded.signed_in_at
	`, id.Email, id.Name, id.IDToken, id.SignedInAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save identity: %w", err)
	}
	return nil
}

// LoadIdentity returns the stored sign-in, or common.ErrNotFound when nobody is signed in.
func (s *SQLiteStorage) LoadIdentity(ctx context.Context) (*StoredIdentity, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var id StoredIdentity
	err := s.db.QueryRowContext(ctx, `
		SELECT email, name, id_token, signed_in_at FROM identity WHERE id = 1
	`).Scan(&id.Email, &id.Name, &id.IDToken, &id.SignedInAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("identity: %w", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}
	return &id, nil
}

// ClearIdentity forgets the stored sign-in. Clearing an empty store is not an error.
func (s *SQLiteStorage) ClearIdentity(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM identity`); err != nil {
		return fmt.Errorf("failed to clear identity: %w", err)
	}
	return nil
}
