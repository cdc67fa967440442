package networth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/finboard/internal/api"
	"github.com/Veraticus/finboard/internal/common"
	"github.com/Veraticus/finboard/internal/model"
	"github.com/Veraticus/finboard/internal/tui/viewmodel"
	"github.com/Veraticus/finboard/internal/validation"
)

// DependentGateway is the dependents part of the backend.
type DependentGateway interface {
	Dependents(ctx context.Context, email string) ([]model.Dependent, error)
	CreateDependent(ctx context.Context, dep model.Dependent) (model.Dependent, error)
	UpdateDependent(ctx context.Context, id int64, dep model.Dependent) error
	DeleteDependent(ctx context.Context, email string, id int64) error
}

// Personal is the personal-profile form, mirrored from the "Self" dependent.
type Personal struct {
	Name        string     `json:"name" validate:"required"`
	DateOfBirth model.Date `json:"date_of_birth" validate:"required"`
	Gender      string     `json:"gender" validate:"required"`
	ID          int64      `json:"id,omitempty"`
}

// Exists reports whether the personal profile has been saved.
func (p Personal) Exists() bool {
	return p.ID != 0
}

func personalOf(d model.Dependent) Personal {
	return Personal{Name: d.Name, DateOfBirth: d.DateOfBirth, Gender: d.Gender, ID: d.ID}
}

// DependentRequest is a prepared dependents operation.
type DependentRequest struct {
	Dependent model.Dependent
	Email     string
	Op        Op
	Seq       uint64
}

// DependentsResult is the backend's answer to a DependentRequest.
type DependentsResult struct {
	Err        error
	Dependents []model.Dependent
	Dependent  model.Dependent
	Op         Op
	Seq        uint64
}

// Dependents is the dependents screen, including the personal profile.
type Dependents struct {
	gw       DependentGateway
	id       Identity
	logger   *slog.Logger
	list     []model.Dependent
	personal Personal
	Fields   validation.FieldErrors
	Status   viewmodel.Status
}

// NewDependents creates the store.
func NewDependents(gw DependentGateway, id Identity, logger *slog.Logger) *Dependents {
	return &Dependents{gw: gw, id: id, logger: orDefault(logger)}
}

// List returns every dependent, Self included.
func (d *Dependents) List() []model.Dependent {
	return d.list
}

// Personal returns the personal-profile form fields.
func (d *Dependents) Personal() Personal {
	return d.personal
}

// Find returns the dependent with id.
func (d *Dependents) Find(id int64) (model.Dependent, bool) {
	for _, dep := range d.list {
		if dep.ID == id {
			return dep, true
		}
	}
	return model.Dependent{}, false
}

// Prepare scopes and validates an operation on the event loop.
func (d *Dependents) Prepare(op Op, dep model.Dependent) (DependentRequest, error) {
	d.Fields = nil
	req, err := d.prepare(op, dep)
	if err != nil {
		d.Fields = validation.Fields(err)
		d.Status.Fail(api.Message(err, err.Error()))
		return req, err
	}
	req.Seq = d.Status.Begin()
	return req, nil
}

func (d *Dependents) prepare(op Op, dep model.Dependent) (DependentRequest, error) {
	req := DependentRequest{Op: op}
	email, err := requireEmail(d.id)
	if err != nil {
		return req, err
	}
	req.Email = email
	dep.UserID = email
	dep.Name = strings.TrimSpace(dep.Name)
	req.Dependent = dep

	switch op {
	case OpAdd:
		if dep.IsSelf() && d.personal.Exists() {
			return req, common.NewUserError("A personal profile already exists. Edit it instead.", nil)
		}
		return req, validation.Struct(dep)
	case OpUpdate:
		if dep.ID == 0 {
			return req, common.NewUserError("Missing dependent ID", nil)
		}
		return req, validation.Struct(dep)
	case OpDelete:
		if dep.ID == 0 {
			return req, common.NewUserError("Missing dependent ID", nil)
		}
	}
	return req, nil
}

// PreparePersonal validates the personal form and prepares the create or
// update of the Self dependent.
func (d *Dependents) PreparePersonal(p Personal) (DependentRequest, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := validation.Struct(p); err != nil {
		d.Fields = validation.Fields(err)
		d.Status.Fail("Name, date of birth and gender are required.")
		return DependentRequest{}, err
	}

	dep := model.Dependent{
		Name:         p.Name,
		DateOfBirth:  p.DateOfBirth,
		Gender:       p.Gender,
		Relationship: model.RelationshipSelf,
	}
	if d.personal.Exists() {
		dep.ID = d.personal.ID
		return d.Prepare(OpUpdate, dep)
	}
	return d.Prepare(OpAdd, dep)
}

// Send performs a prepared operation.
func (d *Dependents) Send(ctx context.Context, req DependentRequest) DependentsResult {
	res := DependentsResult{Op: req.Op, Seq: req.Seq, Dependent: req.Dependent}
	switch req.Op {
	case OpList:
		res.Dependents, res.Err = d.gw.Dependents(ctx, req.Email)
	case OpAdd:
		res.Dependent, res.Err = d.gw.CreateDependent(ctx, req.Dependent)
	case OpUpdate:
		res.Err = d.gw.UpdateDependent(ctx, req.Dependent.ID, req.Dependent)
	case OpDelete:
		res.Err = d.gw.DeleteDependent(ctx, req.Email, req.Dependent.ID)
	}
	return res
}

func (d *Dependents) fallback(op Op) string {
	switch op {
	case OpAdd:
		return "Failed to add dependent."
	case OpUpdate:
		return "Failed to update dependent."
	case OpDelete:
		return "Failed to delete dependent."
	default:
		return "Failed to fetch dependents."
	}
}

// Apply folds a result into the list and keeps the personal form in step
// with the Self dependent.
func (d *Dependents) Apply(res DependentsResult) {
	if d.Status.Settle(res.Seq, res.Err, d.fallback(res.Op)) {
		d.logger.Debug("applying out-of-order response", "store", "dependents", "seq", res.Seq, "latest", d.Status.Latest())
	}
	if res.Err != nil {
		return
	}

	switch res.Op {
	case OpList:
		d.list = res.Dependents
		d.personal = Personal{}
		for _, dep := range res.Dependents {
			if dep.IsSelf() {
				d.personal = personalOf(dep)
				break
			}
		}
	case OpAdd:
		d.list = append(d.list, res.Dependent)
		if res.Dependent.IsSelf() {
			d.personal = personalOf(res.Dependent)
		}
	case OpUpdate:
		for i := range d.list {
			if d.list[i].ID == res.Dependent.ID {
				d.list[i] = res.Dependent
			}
		}
		switch {
		case res.Dependent.IsSelf():
			d.personal = personalOf(res.Dependent)
		case res.Dependent.ID == d.personal.ID:
			d.personal = Personal{}
		}
	case OpDelete:
		kept := d.list[:0:0]
		for _, dep := range d.list {
			if dep.ID != res.Dependent.ID {
				kept = append(kept, dep)
			}
		}
		d.list = kept
		if d.personal.Exists() && res.Dependent.ID == d.personal.ID {
			d.personal = Personal{}
		}
	}
}

// Do runs an operation synchronously.
func (d *Dependents) Do(ctx context.Context, op Op, dep model.Dependent) error {
	req, err := d.Prepare(op, dep)
	if err != nil {
		return fmt.Errorf("%s dependent: %w", op, err)
	}
	return d.run(ctx, req)
}

func (d *Dependents) run(ctx context.Context, req DependentRequest) error {
	res := d.Send(ctx, req)
	d.Apply(res)
	return res.Err
}

// Refresh loads the dependents.
func (d *Dependents) Refresh(ctx context.Context) error {
	return d.Do(ctx, OpList, model.Dependent{})
}

// Add creates a dependent.
func (d *Dependents) Add(ctx context.Context, dep model.Dependent) error {
	return d.Do(ctx, OpAdd, dep)
}

// Update replaces the dependent carrying dep's id.
func (d *Dependents) Update(ctx context.Context, dep model.Dependent) error {
	return d.Do(ctx, OpUpdate, dep)
}

// Delete removes the dependent with id. Deleting Self clears the personal form.
func (d *Dependents) Delete(ctx context.Context, id int64) error {
	return d.Do(ctx, OpDelete, model.Dependent{ID: id})
}

// SavePersonal creates or updates the Self dependent from the personal form.
func (d *Dependents) SavePersonal(ctx context.Context, p Personal) error {
	req, err := d.PreparePersonal(p)
	if err != nil {
		return fmt.Errorf("save personal profile: %w", err)
	}
	return d.run(ctx, req)
}
