package networth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/finboard/internal/api"
	"github.com/Veraticus/finboard/internal/common"
	"github.com/Veraticus/finboard/internal/model"
	"github.com/Veraticus/finboard/internal/signal"
	"github.com/Veraticus/finboard/internal/tui/viewmodel"
	"github.com/Veraticus/finboard/internal/validation"
)

// EntryGateway is the CRUD surface of one entry resource. *api.EntryService
// satisfies it.
type EntryGateway[T model.Entry] interface {
	Resource() string
	Updatable() bool
	List(ctx context.Context, email string, profileID int64) ([]T, error)
	Create(ctx context.Context, entry T) (T, error)
	Update(ctx context.Context, id int64, entry T) (T, error)
	Delete(ctx context.Context, email string, id int64) error
}

// LedgerRequest is a prepared ledger operation, scoped and validated.
type LedgerRequest[T model.Entry] struct {
	Entry     T
	Email     string
	Op        Op
	ProfileID int64
	ID        int64
	Seq       uint64
}

// LedgerResult is the backend's answer to a LedgerRequest.
type LedgerResult[T model.Entry] struct {
	Err       error
	Entries   []T
	Entry     T
	Op        Op
	ProfileID int64
	ID        int64
	Seq       uint64
}

// Ledger is the list of one entry kind for the selected profile.
type Ledger[T model.Entry] struct {
	gw        EntryGateway[T]
	id        Identity
	profiles  ProfileScope
	changes   *signal.Signal
	logger    *slog.Logger
	stamp     func(T, string, int64) T
	entries   []T
	profileID int64
	Fields    validation.FieldErrors
	Status    viewmodel.Status
}

// NewLedger creates a ledger. stamp fills in the owner and profile of an
// entry before it is sent. changes, when non-nil, is marked after every
// successful write.
func NewLedger[T model.Entry](gw EntryGateway[T], id Identity, profiles ProfileScope, changes *signal.Signal,
	stamp func(T, string, int64) T, logger *slog.Logger) *Ledger[T] {
	return &Ledger[T]{
		gw:       gw,
		id:       id,
		profiles: profiles,
		changes:  changes,
		stamp:    stamp,
		logger:   orDefault(logger).With("ledger", gw.Resource()),
	}
}

// NewIncomes creates the income ledger.
func NewIncomes(gw EntryGateway[model.Income], id Identity, profiles ProfileScope, changes *signal.Signal, logger *slog.Logger) *Ledger[model.Income] {
	return NewLedger(gw, id, profiles, changes, func(e model.Income, email string, profileID int64) model.Income {
		e.UserID, e.ProfileID = email, profileID
		return e
	}, logger)
}

// NewExpenses creates the expense ledger.
func NewExpenses(gw EntryGateway[model.Expense], id Identity, profiles ProfileScope, changes *signal.Signal, logger *slog.Logger) *Ledger[model.Expense] {
	return NewLedger(gw, id, profiles, changes, func(e model.Expense, email string, profileID int64) model.Expense {
		e.UserID, e.ProfileID = email, profileID
		return e
	}, logger)
}

// NewInvestments creates the investment ledger.
func NewInvestments(gw EntryGateway[model.Investment], id Identity, profiles ProfileScope, changes *signal.Signal, logger *slog.Logger) *Ledger[model.Investment] {
	return NewLedger(gw, id, profiles, changes, func(e model.Investment, email string, profileID int64) model.Investment {
		e.UserID, e.ProfileID = email, profileID
		return e
	}, logger)
}

// NewSavings creates the saving-rate ledger.
func NewSavings(gw EntryGateway[model.Saving], id Identity, profiles ProfileScope, changes *signal.Signal, logger *slog.Logger) *Ledger[model.Saving] {
	return NewLedger(gw, id, profiles, changes, func(e model.Saving, email string, profileID int64) model.Saving {
		e.UserID, e.ProfileID = email, profileID
		return e
	}, logger)
}

// Resource names the ledger, e.g. "incomes".
func (l *Ledger[T]) Resource() string {
	return l.gw.Resource()
}

// Entries returns the entries of the last loaded profile.
func (l *Ledger[T]) Entries() []T {
	return l.entries
}

// ProfileID is the profile the entries belong to.
func (l *Ledger[T]) ProfileID() int64 {
	return l.profileID
}

// Find returns the entry with id.
func (l *Ledger[T]) Find(id int64) (T, bool) {
	for _, e := range l.entries {
		if e.EntryID() == id {
			return e, true
		}
	}
	var zero T
	return zero, false
}

// Reset drops the entries, as on a profile switch.
func (l *Ledger[T]) Reset() {
	l.entries = nil
	l.profileID = 0
	l.Fields = nil
}

func (l *Ledger[T]) fallback(op Op) string {
	switch op {
	case OpAdd:
		return fmt.Sprintf("Failed to add to %s.", l.gw.Resource())
	case OpUpdate:
		return fmt.Sprintf("Failed to update %s.", l.gw.Resource())
	case OpDelete:
		return fmt.Sprintf("Failed to delete from %s.", l.gw.Resource())
	default:
		return fmt.Sprintf("Failed to fetch %s.", l.gw.Resource())
	}
}

// Prepare scopes and validates an operation on the event loop. entry is
// ignored by OpList; OpUpdate and OpDelete use its id. On failure Status and
// Fields describe the problem and no request should be sent.
func (l *Ledger[T]) Prepare(op Op, entry T) (LedgerRequest[T], error) {
	l.Fields = nil
	req, err := l.prepare(op, entry)
	if err != nil {
		l.Fields = validation.Fields(err)
		l.Status.Fail(api.Message(err, err.Error()))
		return req, err
	}
	req.Seq = l.Status.Begin()
	return req, nil
}

func (l *Ledger[T]) prepare(op Op, entry T) (LedgerRequest[T], error) {
	req := LedgerRequest[T]{Op: op, ID: entry.EntryID()}

	email, err := requireEmail(l.id)
	if err != nil {
		return req, err
	}
	profileID, err := l.profiles.SelectedID()
	if err != nil {
		return req, err
	}
	req.Email, req.ProfileID = email, profileID

	switch op {
	case OpUpdate:
		if !l.gw.Updatable() {
			return req, common.NewUserError(
				fmt.Sprintf("Entries in %s cannot be edited. Delete and add a new one.", l.gw.Resource()), nil)
		}
		if req.ID == 0 {
			return req, common.NewUserError("Missing entry ID", nil)
		}
		fallthrough
	case OpAdd:
		req.Entry = l.stamp(entry, email, profileID)
		if err := validation.Struct(req.Entry); err != nil {
			return req, err
		}
	case OpDelete:
		if req.ID == 0 {
			return req, common.NewUserError("Missing entry ID", nil)
		}
	}
	return req, nil
}

// Send performs a prepared operation.
func (l *Ledger[T]) Send(ctx context.Context, req LedgerRequest[T]) LedgerResult[T] {
	res := LedgerResult[T]{Op: req.Op, ProfileID: req.ProfileID, ID: req.ID, Seq: req.Seq}
	switch req.Op {
	case OpList:
		res.Entries, res.Err = l.gw.List(ctx, req.Email, req.ProfileID)
	case OpAdd:
		res.Entry, res.Err = l.gw.Create(ctx, req.Entry)
	case OpUpdate:
		res.Entry, res.Err = l.gw.Update(ctx, req.ID, req.Entry)
		if res.Err == nil && res.Entry.EntryID() == 0 {
			res.Entry = req.Entry
		}
	case OpDelete:
		res.Err = l.gw.Delete(ctx, req.Email, req.ID)
	}
	return res
}

// Apply merges a result: a list replaces the entries, an add appends, an
// update replaces by id and a delete removes by id. A ledger that has not
// listed yet takes the profile of its first write; writes for a profile other
// than the loaded one are not merged.
func (l *Ledger[T]) Apply(res LedgerResult[T]) {
	if l.Status.Settle(res.Seq, res.Err, l.fallback(res.Op)) {
		l.logger.Debug("applying out-of-order response", "op", res.Op, "seq", res.Seq, "latest", l.Status.Latest())
	}
	if res.Err != nil {
		return
	}

	if res.Op == OpList {
		l.entries = res.Entries
		l.profileID = res.ProfileID
		return
	}

	if l.profileID == 0 {
		l.profileID = res.ProfileID
	}
	if res.ProfileID == l.profileID {
		l.entries = merge(l.entries, res)
	} else {
		l.logger.Debug("write for another profile not merged", "profile_id", res.ProfileID, "loaded", l.profileID)
	}
	if l.changes != nil {
		l.changes.Mark()
	}
}

func merge[T model.Entry](entries []T, res LedgerResult[T]) []T {
	switch res.Op {
	case OpAdd:
		return append(entries, res.Entry)
	case OpUpdate:
		out := make([]T, len(entries))
		copy(out, entries)
		for i := range out {
			if out[i].EntryID() == res.ID {
				out[i] = res.Entry
			}
		}
		return out
	case OpDelete:
		out := make([]T, 0, len(entries))
		for _, e := range entries {
			if e.EntryID() != res.ID {
				out = append(out, e)
			}
		}
		return out
	}
	return entries
}

// Do runs an operation synchronously.
func (l *Ledger[T]) Do(ctx context.Context, op Op, entry T) error {
	req, err := l.Prepare(op, entry)
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, l.gw.Resource(), err)
	}
	res := l.Send(ctx, req)
	l.Apply(res)
	return res.Err
}

// Refresh loads the entries of the selected profile.
func (l *Ledger[T]) Refresh(ctx context.Context) error {
	var zero T
	return l.Do(ctx, OpList, zero)
}

// Add creates entry under the selected profile.
func (l *Ledger[T]) Add(ctx context.Context, entry T) error {
	return l.Do(ctx, OpAdd, entry)
}

// Update replaces the entry carrying entry's id.
func (l *Ledger[T]) Update(ctx context.Context, entry T) error {
	return l.Do(ctx, OpUpdate, entry)
}

// Delete removes the entry with id.
func (l *Ledger[T]) Delete(ctx context.Context, id int64) error {
	entry, ok := l.Find(id)
	if !ok {
		l.Status.Fail(fmt.Sprintf("No entry %d in %s.", id, l.gw.Resource()))
		return fmt.Errorf("%s %d: %w", l.gw.Resource(), id, common.ErrNotFound)
	}
	return l.Do(ctx, OpDelete, entry)
}
