package testutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/Veraticus/finboard/internal/model"
)

// XLSXContentType is served by the fake export route.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// State is the in-memory data served by a Backend. Tests seed and inspect it
// through Backend.Do.
type State struct {
	Users              map[string]string
	Transactions       map[string][]model.Record
	Summaries          map[string][]model.BankSummary
	CategoryTxns       map[string][]model.CategoryTransaction
	Categories         []model.CategoryOption
	CategoryTotals     []model.CategoryTotal
	YearTotals         []model.YearTotal
	YearCategoryTotals []model.YearCategoryTotal
	Rules              []model.CategoryRule
	Feedback           []Feedback
	Uploads            []Upload
	Profiles           []model.Profile
	Incomes            []model.Income
	Expenses           []model.Expense
	Investments        []model.Investment
	Savings            []model.Saving
	Dependents         []model.Dependent
	NetWorth           []model.NetWorthPoint
	ProjectedIncome    []model.ProjectedIncomePoint
	ProjectedExpenses  []model.ExpensePoint
	SavingsRatio       []model.SavingsRatioPoint
	Summary            []model.SummaryItem
	Export             []byte
}

// Feedback is a received feedback submission.
type Feedback struct {
	UserEmail  string
	Text       string
	Attachment string
}

// Upload is a received statement upload.
type Upload struct {
	UserEmail string
	Bank      string
	Filename  string
	Size      int64
}

// Request is one call observed by the Backend.
type Request struct {
	Query     url.Values
	Method    string
	Path      string
	Route     string
	RequestID string
}

type failure struct {
	body   string
	status int
}

// Backend is an in-memory fake of the finance REST API served over httptest.
type Backend struct {
	server   *httptest.Server
	state    State
	failures map[string]failure
	requests []Request
	nextID   int64
	mu       sync.Mutex
}

// NewBackend starts a fake backend that is shut down when the test ends.
func NewBackend(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{
		state: State{
			Users:        make(map[string]string),
			Transactions: make(map[string][]model.Record),
			Summaries:    make(map[string][]model.BankSummary),
			CategoryTxns: make(map[string][]model.CategoryTransaction),
		},
		failures: make(map[string]failure),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(b.intercept)
	b.routes(e)

	b.server = httptest.NewServer(e)
	t.Cleanup(b.server.Close)
	return b
}

// URL returns the backend origin.
func (b *Backend) URL() string {
	return b.server.URL
}

// Do runs fn with exclusive access to the backend state.
func (b *Backend) Do(fn func(*State)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(&b.state)
}

// Fail makes every request to route answer with status and {"detail": detail}.
// Route is the echo pattern, e.g. "/profiles/:key". A nil detail sends an empty object.
func (b *Backend) Fail(method, route string, status int, detail any) {
	body := "{}"
	if detail != nil {
		body = mustJSON(map[string]any{"detail": detail})
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+route] = failure{status: status, body: body}
}

// Recover clears every injected failure.
func (b *Backend) Recover() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = make(map[string]failure)
}

// Requests returns the calls observed so far.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Request, len(b.requests))
	copy(out, b.requests)
	return out
}

// Calls counts requests to route with method.
func (b *Backend) Calls(method, route string) int {
	n := 0
	for _, r := range b.Requests() {
		if r.Method == method && r.Route == route {
			n++
		}
	}
	return n
}

// LastRequest returns the most recent call to route with method.
func (b *Backend) LastRequest(method, route string) (Request, bool) {
	reqs := b.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Method == method && reqs[i].Route == route {
			return reqs[i], true
		}
	}
	return Request{}, false
}

func (b *Backend) intercept(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method:    req.Method,
			Path:      req.URL.Path,
			Route:     c.Path(),
			Query:     req.URL.Query(),
			RequestID: req.Header.Get("X-Request-ID"),
		})
		f, failing := b.failures[req.Method+" "+c.Path()]
		b.mu.Unlock()

		if failing {
			return c.JSONBlob(f.status, []byte(f.body))
		}
		return next(c)
	}
}

func (b *Backend) id() int64 {
	b.nextID++
	return b.nextID
}

func (b *Backend) routes(e *echo.Echo) {
	e.GET("/get-transactions/", b.getTransactions)
	e.GET("/get-categories/", b.getCategories)
	e.PUT("/update-transaction/", b.updateTransaction)
	e.DELETE("/delete-transactions/", b.deleteTransactions)
	e.POST("/upload-transactions/", b.uploadTransactions)
	e.GET("/get-summaries/", b.getSummaries)
	e.GET("/get-category-wise-credit-debit/", b.getCategoryTotals)
	e.GET("/get-transaction-for-category/", b.getCategoryTransactions)
	e.GET("/get-year-wise-credit-debit/", b.getYearTotals)
	e.GET("/get-category-wise-credit-debit-for-year/", b.getYearCategoryTotals)
	e.POST("/add-category/", b.addCategory)
	e.POST("/send-feedback/", b.sendFeedback)
	e.POST("/create-user/", b.createUser)

	e.GET("/profiles/:key", b.getProfiles)
	e.POST("/profiles", b.createProfile)
	e.DELETE("/profiles/:key/:id", b.deleteProfile)

	registerEntries(b, e, "incomes", func(s *State) *[]model.Income { return &s.Incomes },
		func(i *model.Income, id int64) { i.ID = id },
		func(i model.Income) (string, int64) { return i.UserID, i.ProfileID }, true)
	registerEntries(b, e, "expenses", func(s *State) *[]model.Expense { return &s.Expenses },
		func(x *model.Expense, id int64) { x.ID = id },
		func(x model.Expense) (string, int64) { return x.UserID, x.ProfileID }, true)
	registerEntries(b, e, "investments", func(s *State) *[]model.Investment { return &s.Investments },
		func(i *model.Investment, id int64) { i.ID = id },
		func(i model.Investment) (string, int64) { return i.UserID, i.ProfileID }, true)
	registerEntries(b, e, "savings", func(s *State) *[]model.Saving { return &s.Savings },
		func(x *model.Saving, id int64) { x.ID = id },
		func(x model.Saving) (string, int64) { return x.UserID, x.ProfileID }, false)

	e.GET("/dependents/:key", b.getDependents)
	e.POST("/dependents", b.createDependent)
	e.PUT("/dependents/:key", b.updateDependent)
	e.DELETE("/dependents/:key/:id", b.deleteDependent)

	e.GET("/networth/:key/:id", b.projection(func(s *State) any { return s.NetWorth }))
	e.GET("/networth/:key/:id/summary", b.projection(func(s *State) any { return s.Summary }))
	e.GET("/networth/:key/:id/expenses", b.projection(func(s *State) any { return s.ProjectedExpenses }))
	e.GET("/networth/:key/:id/projected-income", b.projection(func(s *State) any { return s.ProjectedIncome }))
	e.GET("/networth/:key/:id/savings-ratio", b.projection(func(s *State) any { return s.SavingsRatio }))
	e.GET("/networth/:key/:id/export", b.export)
}

func detail(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"detail": msg})
}

func message(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, model.Message{Message: msg})
}

func (b *Backend) getTransactions(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return c.JSON(http.StatusOK, nonNil(b.state.Transactions[c.QueryParam("user_email")]))
}

func (b *Backend) getCategories(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return c.JSON(http.StatusOK, nonNil(b.state.Categories))
}

func (b *Backend) updateTransaction(c echo.Context) error {
	id := c.FormValue("transaction_id")
	column := c.FormValue("set_column")
	value := c.FormValue("set_value")
	if id == "" || column == "" {
		return detail(c, http.StatusUnprocessableEntity, "transaction_id and set_column are required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for email, records := range b.state.Transactions {
		for i := range records {
			if records[i].String(model.ColumnTransactionID) == id {
				records[i].Set(column, value)
				b.state.Transactions[email] = records
				return message(c, "Transaction updated successfully")
			}
		}
	}
	return detail(c, http.StatusNotFound, "Transaction not found")
}

func (b *Backend) deleteTransactions(c echo.Context) error {
	email := c.QueryParam("user_email")
	bank := c.QueryParam("bank")
	start, errStart := model.ParseDate(c.QueryParam("start_date"))
	end, errEnd := model.ParseDate(c.QueryParam("end_date"))
	if errStart != nil || errEnd != nil || start.IsZero() || end.IsZero() {
		return detail(c, http.StatusUnprocessableEntity, "Invalid date range")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	kept := make([]model.Record, 0, len(b.state.Transactions[email]))
	deleted := 0
	for _, r := range b.state.Transactions[email] {
		d, err := model.ParseDate(r.String(model.ColumnDate))
		inBank := bank == model.AllBanks || r.String(model.ColumnBank) == bank
		if err == nil && inBank && !d.Before(start) && !d.After(end) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	if deleted == 0 {
		return detail(c, http.StatusNotFound, "No transactions found in the given range")
	}
	b.state.Transactions[email] = kept
	return message(c, fmt.Sprintf("Deleted %d transactions", deleted))
}

func (b *Backend) uploadTransactions(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return detail(c, http.StatusUnprocessableEntity, "file is required")
	}
	up := Upload{
		UserEmail: c.FormValue("user_email"),
		Bank:      c.FormValue("bank"),
		Filename:  file.Filename,
		Size:      file.Size,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Uploads = append(b.state.Uploads, up)
	return message(c, "File uploaded and processed successfully")
}

func (b *Backend) getSummaries(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return c.JSON(http.StatusOK, nonNil(b.state.Summaries[c.QueryParam("user_email")]))
}

func (b *Backend) getCategoryTotals(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return c.JSON(http.StatusOK, nonNil(b.state.CategoryTotals))
}

func (b *Backend) getCategoryTransactions(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return c.JSON(http.StatusOK, nonNil(b.state.CategoryTxns[c.QueryParam("category")]))
}

func (b *Backend) getYearTotals(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return c.JSON(http.StatusOK, nonNil(b.state.YearTotals))
}

func (b *Backend) getYearCategoryTotals(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return c.JSON(http.StatusOK, nonNil(b.state.YearCategoryTotals))
}

func (b *Backend) addCategory(c echo.Context) error {
	var rule model.CategoryRule
	if err := c.Bind(&rule); err != nil {
		return detail(c, http.StatusUnprocessableEntity, err.Error())
	}
	if rule.Keyword == "" || rule.Category == "" || rule.Type == "" {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]string{{"msg": "field required"}},
		})
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Rules = append(b.state.Rules, rule)
	return message(c, "Category added successfully")
}

func (b *Backend) sendFeedback(c echo.Context) error {
	fb := Feedback{
		UserEmail: c.FormValue("user_email"),
		Text:      c.FormValue("feedback_text"),
	}
	file, err := c.FormFile("attached_file")
	switch {
	case err == nil:
		fb.Attachment = file.Filename
	case errors.Is(err, http.ErrMissingFile):
	default:
		return detail(c, http.StatusBadRequest, err.Error())
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Feedback = append(b.state.Feedback, fb)
	return message(c, "Feedback received")
}

func (b *Backend) createUser(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return detail(c, http.StatusUnprocessableEntity, "email is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.state.Users[email]; ok {
		return detail(c, http.StatusBadRequest, "User with this email already exists")
	}
	b.state.Users[email] = c.QueryParam("name")
	return c.JSON(http.StatusOK, model.CreatedUser{UserID: b.id()})
}

func (b *Backend) getProfiles(c echo.Context) error {
	email := c.Param("key")
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []model.Profile{}
	for _, p := range b.state.Profiles {
		if p.UserID == email {
			out = append(out, p)
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (b *Backend) createProfile(c echo.Context) error {
	var p model.Profile
	if err := c.Bind(&p); err != nil {
		return detail(c, http.StatusUnprocessableEntity, err.Error())
	}
	if strings.TrimSpace(p.Name) == "" {
		return detail(c, http.StatusUnprocessableEntity, "Profile name is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	p.ID = b.id()
	b.state.Profiles = append(b.state.Profiles, p)
	return c.JSON(http.StatusOK, p)
}

func (b *Backend) deleteProfile(c echo.Context) error {
	email := c.Param("key")
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return detail(c, http.StatusUnprocessableEntity, "invalid profile id")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, p := range b.state.Profiles {
		if p.ID == id && p.UserID == email {
			b.state.Profiles = append(b.state.Profiles[:i], b.state.Profiles[i+1:]...)
			return message(c, "Profile deleted")
		}
	}
	return detail(c, http.StatusNotFound, "Profile not found")
}

// registerEntries wires the list/create/update/delete routes of one
// profile-scoped resource.
func registerEntries[T model.Entry](
	b *Backend,
	e *echo.Echo,
	resource string,
	slice func(*State) *[]T,
	setID func(*T, int64),
	scope func(T) (string, int64),
	updatable bool,
) {
	e.GET("/"+resource+"/:key/:id", func(c echo.Context) error {
		email := c.Param("key")
		profileID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			return detail(c, http.StatusUnprocessableEntity, "invalid profile id")
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		out := []T{}
		for _, entry := range *slice(&b.state) {
			owner, profile := scope(entry)
			if owner == email && profile == profileID {
				out = append(out, entry)
			}
		}
		return c.JSON(http.StatusOK, out)
	})

	e.POST("/"+resource, func(c echo.Context) error {
		var entry T
		if err := c.Bind(&entry); err != nil {
			return detail(c, http.StatusUnprocessableEntity, err.Error())
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		setID(&entry, b.id())
		*slice(&b.state) = append(*slice(&b.state), entry)
		return c.JSON(http.StatusOK, entry)
	})

	if updatable {
		e.PUT("/"+resource+"/:key", func(c echo.Context) error {
			id, err := strconv.ParseInt(c.Param("key"), 10, 64)
			if err != nil {
				return detail(c, http.StatusUnprocessableEntity, "invalid id")
			}
			var entry T
			if err := c.Bind(&entry); err != nil {
				return detail(c, http.StatusUnprocessableEntity, err.Error())
			}

			b.mu.Lock()
			defer b.mu.Unlock()
			entries := *slice(&b.state)
			for i := range entries {
				if entries[i].EntryID() == id {
					setID(&entry, id)
					entries[i] = entry
					return c.JSON(http.StatusOK, entry)
				}
			}
			return detail(c, http.StatusNotFound, "Entry not found")
		})
	}

	e.DELETE("/"+resource+"/:key/:id", func(c echo.Context) error {
		email := c.Param("key")
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			return detail(c, http.StatusUnprocessableEntity, "invalid id")
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		entries := *slice(&b.state)
		for i := range entries {
			owner, _ := scope(entries[i])
			if entries[i].EntryID() == id && owner == email {
				*slice(&b.state) = append(entries[:i], entries[i+1:]...)
				return message(c, "Deleted successfully")
			}
		}
		return detail(c, http.StatusNotFound, "Entry not found")
	})
}

func (b *Backend) getDependents(c echo.Context) error {
	email := c.Param("key")
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []model.Dependent{}
	for _, d := range b.state.Dependents {
		if d.UserID == email {
			out = append(out, d)
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (b *Backend) createDependent(c echo.Context) error {
	var d model.Dependent
	if err := c.Bind(&d); err != nil {
		return detail(c, http.StatusUnprocessableEntity, err.Error())
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	d.ID = b.id()
	b.state.Dependents = append(b.state.Dependents, d)
	return c.JSON(http.StatusOK, d)
}

func (b *Backend) updateDependent(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("key"), 10, 64)
	if err != nil {
		return detail(c, http.StatusUnprocessableEntity, "invalid id")
	}
	var d model.Dependent
	if err := c.Bind(&d); err != nil {
		return detail(c, http.StatusUnprocessableEntity, err.Error())
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.state.Dependents {
		if b.state.Dependents[i].ID == id {
			d.ID = id
			b.state.Dependents[i] = d
			return c.JSON(http.StatusOK, d)
		}
	}
	return detail(c, http.StatusNotFound, "Dependent not found")
}

func (b *Backend) deleteDependent(c echo.Context) error {
	email := c.Param("key")
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return detail(c, http.StatusUnprocessableEntity, "invalid id")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, d := range b.state.Dependents {
		if d.ID == id && d.UserID == email {
			b.state.Dependents = append(b.state.Dependents[:i], b.state.Dependents[i+1:]...)
			return message(c, "Dependent deleted")
		}
	}
	return detail(c, http.StatusNotFound, "Dependent not found")
}

func (b *Backend) projection(pick func(*State) any) echo.HandlerFunc {
	return func(c echo.Context) error {
		b.mu.Lock()
		defer b.mu.Unlock()
		data := pick(&b.state)
		if isNilSlice(data) {
			return c.JSONBlob(http.StatusOK, []byte("[]"))
		}
		return c.JSON(http.StatusOK, data)
	}
}

func (b *Backend) export(c echo.Context) error {
	b.mu.Lock()
	data := b.state.Export
	b.mu.Unlock()

	if data == nil {
		return detail(c, http.StatusNotFound, "Nothing to export")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="net_worth_projection.xlsx"`)
	return c.Blob(http.StatusOK, XLSXContentType, data)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func isNilSlice(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Slice && rv.IsNil()
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}
