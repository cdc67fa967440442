// Package dashboard holds the view state of the bank-statement screens:
// transactions, bank summaries, aggregate charts and the submit-only forms.
//
// Stores are owned by the UI event loop. Network work is split out so it can
// run in a goroutine: Begin (or Prepare) starts a request on the loop, Fetch
// (or Send) performs it and returns a message, Apply folds the message back
// into the store on the loop.
package dashboard

import (
	"log/slog"

	"github.com/Veraticus/finboard/internal/common"
)

// Identity supplies the signed-in user's email.
type Identity interface {
	Email() string
}

var errSignedOut = common.NewUserError("User email not found. Sign in with `finboard login`.", common.ErrNotSignedIn)

func requireEmail(id Identity) (string, error) {
	if id == nil {
		return "", errSignedOut
	}
	email := id.Email()
	if email == "" {
		return "", errSignedOut
	}
	return email, nil
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func logStale(logger *slog.Logger, store string, seq, latest uint64) {
	logger.Debug("applying out-of-order response", "store", store, "seq", seq, "latest", latest)
}
