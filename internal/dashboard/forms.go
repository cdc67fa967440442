package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/Veraticus/finboard/internal/api"
	"github.com/Veraticus/finboard/internal/model"
	"github.com/Veraticus/finboard/internal/signal"
	"github.com/Veraticus/finboard/internal/tui/viewmodel"
	"github.com/Veraticus/finboard/internal/validation"
)

// FormSent carries the outcome of a form submission.
type FormSent struct {
	Err    error
	Form   string
	Notice string
	Seq    uint64
}

// Form is a submit-only screen: validate on the event loop, send from a
// goroutine, report the backend's answer.
type Form[T any] struct {
	prepare  func(T) (T, error)
	send     func(context.Context, T) (string, error)
	changes  *signal.Signal
	logger   *slog.Logger
	Fields   validation.FieldErrors
	name     string
	fallback string
	Status   viewmodel.Status
}

// Name identifies the form in FormSent messages.
func (f *Form[T]) Name() string {
	return f.name
}

// Prepare validates in and starts a submission. On failure the form's
// Status and Fields describe the problem.
func (f *Form[T]) Prepare(in T) (T, uint64, bool) {
	f.Fields = nil
	ready, err := f.prepare(in)
	if err != nil {
		f.Fields = validation.Fields(err)
		f.Status.Fail(api.Message(err, err.Error()))
		return in, 0, false
	}
	return ready, f.Status.Begin(), true
}

// Send submits a prepared input.
func (f *Form[T]) Send(ctx context.Context, seq uint64, in T) FormSent {
	notice, err := f.send(ctx, in)
	return FormSent{Form: f.name, Seq: seq, Notice: notice, Err: err}
}

// Apply records the outcome. A success marks the change signal when the
// form changes transaction data.
func (f *Form[T]) Apply(msg FormSent) {
	if f.Status.Settle(msg.Seq, msg.Err, f.fallback) {
		logStale(f.logger, f.name, msg.Seq, f.Status.Latest())
	}
	if msg.Err != nil {
		return
	}
	f.Status.Succeed(msg.Notice)
	if f.changes != nil {
		f.changes.Mark()
	}
}

// Submit runs the whole submission synchronously.
func (f *Form[T]) Submit(ctx context.Context, in T) error {
	ready, seq, ok := f.Prepare(in)
	if !ok {
		return errors.New(f.Status.Err)
	}
	msg := f.Send(ctx, seq, ready)
	f.Apply(msg)
	return msg.Err
}

// RuleGateway adds keyword category rules.
type RuleGateway interface {
	AddCategoryRule(ctx context.Context, rule model.CategoryRule) (model.Message, error)
}

// NewRuleForm creates the category rule form.
func NewRuleForm(gw RuleGateway, logger *slog.Logger) *Form[model.CategoryRule] {
	return &Form[model.CategoryRule]{
		name:     "category_rule",
		fallback: "Failed to add category.",
		logger:   orDefault(logger),
		prepare: func(r model.CategoryRule) (model.CategoryRule, error) {
			r.Keyword = strings.TrimSpace(r.Keyword)
			r.Category = strings.TrimSpace(r.Category)
			r.Type = strings.TrimSpace(r.Type)
			if err := validation.Struct(r); err != nil {
				return r, summarize("All fields are required.", err)
			}
			return r, nil
		},
		send: func(ctx context.Context, r model.CategoryRule) (string, error) {
			msg, err := gw.AddCategoryRule(ctx, r)
			return msg.Message, err
		},
	}
}

// DeleteGateway removes transactions in a date range.
type DeleteGateway interface {
	DeleteTransactions(ctx context.Context, r model.DeleteRange) (model.Message, error)
}

// NewDeleteForm creates the range deletion form. The user email is filled in
// from id.
func NewDeleteForm(gw DeleteGateway, id Identity, changes *signal.Signal, logger *slog.Logger) *Form[model.DeleteRange] {
	return &Form[model.DeleteRange]{
		name:     "delete_transactions",
		fallback: "Failed to delete transactions.",
		changes:  changes,
		logger:   orDefault(logger),
		prepare: func(r model.DeleteRange) (model.DeleteRange, error) {
			email, err := requireEmail(id)
			if err != nil {
				return r, err
			}
			r.UserEmail = email
			if err := validation.Struct(r); err != nil {
				if _, order := validation.Fields(err)["end_date"]; order && !r.StartDate.IsZero() && !r.EndDate.IsZero() {
					return r, summarize("Start date must be before end date.", err)
				}
				return r, summarize("All fields are required.", err)
			}
			return r, nil
		},
		send: func(ctx context.Context, r model.DeleteRange) (string, error) {
			msg, err := gw.DeleteTransactions(ctx, r)
			if err != nil {
				return "", err
			}
			if msg.Message == "" {
				return "Transactions deleted successfully.", nil
			}
			return msg.Message, nil
		},
	}
}

// FeedbackGateway accepts user feedback.
type FeedbackGateway interface {
	SendFeedback(ctx context.Context, fb model.Feedback) error
}

// NewFeedbackForm creates the feedback form. An empty email is filled in
// from id.
func NewFeedbackForm(gw FeedbackGateway, id Identity, logger *slog.Logger) *Form[model.Feedback] {
	return &Form[model.Feedback]{
		name:     "feedback",
		fallback: "Failed to send feedback.",
		logger:   orDefault(logger),
		prepare: func(fb model.Feedback) (model.Feedback, error) {
			if fb.UserEmail == "" && id != nil {
				fb.UserEmail = id.Email()
			}
			fb.Text = strings.TrimSpace(fb.Text)
			if err := validation.Struct(fb); err != nil {
				return fb, summarize("Email and feedback are required.", err)
			}
			return fb, nil
		},
		send: func(ctx context.Context, fb model.Feedback) (string, error) {
			if err := gw.SendFeedback(ctx, fb); err != nil {
				return "", err
			}
			return "Thank you for your feedback!", nil
		},
	}
}

// UploadGateway ingests statement files.
type UploadGateway interface {
	UploadStatement(ctx context.Context, upload model.StatementUpload, progress io.Writer) (model.Message, error)
}

// NewUploadForm creates the statement upload form. Bytes sent are copied to
// progress when it is non-nil. A successful upload marks changes.
func NewUploadForm(gw UploadGateway, id Identity, changes *signal.Signal, progress io.Writer, logger *slog.Logger) *Form[model.StatementUpload] {
	return &Form[model.StatementUpload]{
		name:     "upload",
		fallback: "Upload failed",
		changes:  changes,
		logger:   orDefault(logger),
		prepare: func(up model.StatementUpload) (model.StatementUpload, error) {
			email, err := requireEmail(id)
			if err != nil {
				return up, err
			}
			up.UserEmail = email
			if err := validation.Struct(up); err != nil {
				return up, summarize("Choose a bank and a statement file.", err)
			}
			if err := api.CheckStatementFile(up.Path); err != nil {
				return up, err
			}
			return up, nil
		},
		send: func(ctx context.Context, up model.StatementUpload) (string, error) {
			msg, err := gw.UploadStatement(ctx, up, progress)
			if err != nil {
				return "", err
			}
			if msg.Message == "" {
				return "Upload successful!", nil
			}
			return msg.Message, nil
		},
	}
}

// formError is a form-level message that keeps the per-field detail.
type formError struct {
	fields  validation.FieldErrors
	message string
}

func (e *formError) Error() string { return e.message }

func (e *formError) Unwrap() error {
	if e.fields == nil {
		return nil
	}
	return e.fields
}

func summarize(message string, err error) error {
	return &formError{message: message, fields: validation.Fields(err)}
}
