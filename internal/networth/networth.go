// Package networth holds the state of the net-worth tracker screens: the
// profile context, the profile-scoped entry ledgers, dependents with the
// personal profile, and the projection.
package networth

import (
	"log/slog"

	"github.com/Veraticus/finboard/internal/common"
)

// Identity supplies the signed-in user's email.
type Identity interface {
	Email() string
}

// ProfileScope resolves the profile that scoped data belongs to.
type ProfileScope interface {
	SelectedID() (int64, error)
}

// Op is a ledger or dependents operation.
type Op int

const (
	OpList Op = iota
	OpAdd
	OpUpdate
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "list"
	}
}

var errSignedOut = common.NewUserError("User email not found. Sign in with `finboard login`.", common.ErrNotSignedIn)

var errNoProfile = common.NewUserError("Select or create a profile first.", common.ErrNoProfile)

func requireEmail(id Identity) (string, error) {
	if id == nil || id.Email() == "" {
		return "", errSignedOut
	}
	return id.Email(), nil
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
