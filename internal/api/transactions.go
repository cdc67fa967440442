package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Veraticus/finboard/internal/model"
)

// Transactions returns every transaction of the user, keyed in server column order.
func (c *Client) Transactions(ctx context.Context, email string) ([]model.Record, error) {
	var records []model.Record
	err := c.get(ctx, "get transactions", "/get-transactions/", url.Values{"user_email": {email}}, &records)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Categories returns the category picker options.
func (c *Client) Categories(ctx context.Context) ([]model.CategoryOption, error) {
	var options []model.CategoryOption
	if err := c.get(ctx, "get categories", "/get-categories/", nil, &options); err != nil {
		return nil, err
	}
	return options, nil
}

// UpdateTransaction sets one column of one transaction.
func (c *Client) UpdateTransaction(ctx context.Context, update model.TransactionUpdate) error {
	f := newForm()
	f.field("transaction_id", update.TransactionID)
	f.field("set_column", update.Column)
	f.field("set_value", update.Value)
	body, contentType, err := f.finish()
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	return c.do(ctx, request{
		op:          "update transaction",
		method:      http.MethodPut,
		path:        "/update-transaction/",
		body:        body,
		contentType: contentType,
	}, nil)
}

// DeleteTransactions removes the user's transactions of bank within the inclusive range.
func (c *Client) DeleteTransactions(ctx context.Context, r model.DeleteRange) (model.Message, error) {
	var msg model.Message
	err := c.delete(ctx, "delete transactions", "/delete-transactions/", url.Values{
		"user_email": {r.UserEmail},
		"bank":       {r.Bank},
		"start_date": {r.StartDate.String()},
		"end_date":   {r.EndDate.String()},
	}, &msg)
	return msg, err
}

// Summaries returns the per-bank statement overview.
func (c *Client) Summaries(ctx context.Context, email string) ([]model.BankSummary, error) {
	var summaries []model.BankSummary
	if err := c.get(ctx, "get summaries", "/get-summaries/", url.Values{"user_email": {email}}, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// AddCategoryRule registers a keyword rule for automatic categorisation.
func (c *Client) AddCategoryRule(ctx context.Context, rule model.CategoryRule) (model.Message, error) {
	var msg model.Message
	err := c.sendJSON(ctx, "add category", http.MethodPost, "/add-category/", rule, &msg)
	return msg, err
}

// SendFeedback posts a feedback note with an optional attachment.
func (c *Client) SendFeedback(ctx context.Context, fb model.Feedback) error {
	f := newForm()
	f.field("user_email", fb.UserEmail)
	f.field("feedback_text", fb.Text)
	if fb.AttachmentPath != "" {
		f.file("attached_file", fb.AttachmentPath)
	}
	body, contentType, err := f.finish()
	if err != nil {
		return fmt.Errorf("send feedback: %w", err)
	}

	return c.do(ctx, request{
		op:          "send feedback",
		method:      http.MethodPost,
		path:        "/send-feedback/",
		body:        body,
		contentType: contentType,
	}, nil)
}
