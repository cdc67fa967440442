package api

import (
	"context"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/Veraticus/finboard/internal/model"
)

// DefaultExportName is used when the export response names no file.
const DefaultExportName = "net_worth_projection.xlsx"

// Profiles lists the user's projection profiles.
func (c *Client) Profiles(ctx context.Context, email string) ([]model.Profile, error) {
	var profiles []model.Profile
	if err := c.get(ctx, "get profiles", "/profiles/"+email, nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// CreateProfile creates a profile and returns it with its assigned id.
func (c *Client) CreateProfile(ctx context.Context, email, name string) (model.Profile, error) {
	var created model.Profile
	err := c.sendJSON(ctx, "create profile", http.MethodPost, "/profiles",
		model.Profile{UserID: email, Name: name}, &created)
	return created, err
}

// DeleteProfile removes a profile and everything scoped to it.
func (c *Client) DeleteProfile(ctx context.Context, email string, id int64) error {
	return c.delete(ctx, "delete profile", "/profiles/"+email+"/"+pathID(id), nil, nil)
}

// EntryService is the CRUD surface shared by incomes, expenses, investments and savings.
type EntryService[T model.Entry] struct {
	client    *Client
	resource  string
	updatable bool
}

// Incomes returns the income routes.
func (c *Client) Incomes() *EntryService[model.Income] {
	return &EntryService[model.Income]{client: c, resource: "incomes", updatable: true}
}

// Expenses returns the expense routes.
func (c *Client) Expenses() *EntryService[model.Expense] {
	return &EntryService[model.Expense]{client: c, resource: "expenses", updatable: true}
}

// Investments returns the investment routes.
func (c *Client) Investments() *EntryService[model.Investment] {
	return &EntryService[model.Investment]{client: c, resource: "investments", updatable: true}
}

// Savings returns the saving-rate routes. Savings cannot be edited in place.
func (c *Client) Savings() *EntryService[model.Saving] {
	return &EntryService[model.Saving]{client: c, resource: "savings"}
}

// Resource is the route prefix, e.g. "incomes".
func (s *EntryService[T]) Resource() string {
	return s.resource
}

// Updatable reports whether entries support in-place updates.
func (s *EntryService[T]) Updatable() bool {
	return s.updatable
}

// List returns the entries of one profile.
func (s *EntryService[T]) List(ctx context.Context, email string, profileID int64) ([]T, error) {
	var entries []T
	if err := s.client.get(ctx, "get "+s.resource, "/"+s.resource+"/"+email+"/"+pathID(profileID), nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Create stores a new entry and returns it as saved by the server.
func (s *EntryService[T]) Create(ctx context.Context, entry T) (T, error) {
	var created T
	err := s.client.sendJSON(ctx, "create "+s.resource, http.MethodPost, "/"+s.resource, entry, &created)
	return created, err
}

// Update replaces the entry with the given id.
func (s *EntryService[T]) Update(ctx context.Context, id int64, entry T) (T, error) {
	var updated T
	if !s.updatable {
		return updated, &Error{Op: "update " + s.resource, Status: http.StatusMethodNotAllowed}
	}
	err := s.client.sendJSON(ctx, "update "+s.resource, http.MethodPut, "/"+s.resource+"/"+pathID(id), entry, &updated)
	return updated, err
}

// Delete removes the entry with the given id.
func (s *EntryService[T]) Delete(ctx context.Context, email string, id int64) error {
	return s.client.delete(ctx, "delete "+s.resource, "/"+s.resource+"/"+email+"/"+pathID(id), nil, nil)
}

// Dependents lists the user's dependents, including the Self record.
func (c *Client) Dependents(ctx context.Context, email string) ([]model.Dependent, error) {
	var deps []model.Dependent
	if err := c.get(ctx, "get dependents", "/dependents/"+email, nil, &deps); err != nil {
		return nil, err
	}
	return deps, nil
}

// CreateDependent stores a dependent.
func (c *Client) CreateDependent(ctx context.Context, dep model.Dependent) (model.Dependent, error) {
	var created model.Dependent
	err := c.sendJSON(ctx, "create dependent", http.MethodPost, "/dependents", dep, &created)
	return created, err
}

// UpdateDependent replaces the dependent with the given id.
func (c *Client) UpdateDependent(ctx context.Context, id int64, dep model.Dependent) error {
	return c.sendJSON(ctx, "update dependent", http.MethodPut, "/dependents/"+pathID(id), dep, nil)
}

// DeleteDependent removes a dependent.
func (c *Client) DeleteDependent(ctx context.Context, email string, id int64) error {
	return c.delete(ctx, "delete dependent", "/dependents/"+email+"/"+pathID(id), nil, nil)
}

func networthPath(email string, profileID int64, suffix string) string {
	return "/networth/" + email + "/" + pathID(profileID) + suffix
}

// NetWorth returns the yearly net-worth projection.
func (c *Client) NetWorth(ctx context.Context, email string, profileID int64) ([]model.NetWorthPoint, error) {
	var points []model.NetWorthPoint
	if err := c.get(ctx, "get net worth", networthPath(email, profileID, ""), nil, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// Summary returns the line items feeding the projection.
func (c *Client) Summary(ctx context.Context, email string, profileID int64) ([]model.SummaryItem, error) {
	var items []model.SummaryItem
	if err := c.get(ctx, "get net worth summary", networthPath(email, profileID, "/summary"), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ProjectedExpenses returns the yearly expense projection.
func (c *Client) ProjectedExpenses(ctx context.Context, email string, profileID int64) ([]model.ExpensePoint, error) {
	var points []model.ExpensePoint
	if err := c.get(ctx, "get projected expenses", networthPath(email, profileID, "/expenses"), nil, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// ProjectedIncome returns the yearly income projection split by origin.
func (c *Client) ProjectedIncome(ctx context.Context, email string, profileID int64) ([]model.ProjectedIncomePoint, error) {
	var points []model.ProjectedIncomePoint
	if err := c.get(ctx, "get projected income", networthPath(email, profileID, "/projected-income"), nil, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// SavingsRatio returns the yearly savings ratio.
func (c *Client) SavingsRatio(ctx context.Context, email string, profileID int64) ([]model.SavingsRatioPoint, error) {
	var points []model.SavingsRatioPoint
	if err := c.get(ctx, "get savings ratio", networthPath(email, profileID, "/savings-ratio"), nil, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// Export is a downloaded projection spreadsheet.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportNetWorth downloads the projection spreadsheet.
func (c *Client) ExportNetWorth(ctx context.Context, email string, profileID int64) (*Export, error) {
	resp, body, err := c.send(ctx, request{
		op:     "export net worth",
		method: http.MethodGet,
		path:   networthPath(email, profileID, "/export"),
	})
	if err != nil {
		return nil, err
	}

	export := &Export{
		Filename:    DefaultExportName,
		ContentType: resp.Header.Get("Content-Type"),
		Data:        body,
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		export.Filename = filepath.Base(params["filename"])
	}
	return export, nil
}
