package api

import (
	"context"
	"net/url"
	"sort"

	"github.com/Veraticus/finboard/internal/model"
)

func scope(email, bank string) url.Values {
	return url.Values{"user_email": {email}, "bank": {bank}}
}

// CategoryTotals returns credit and debit totals per category.
func (c *Client) CategoryTotals(ctx context.Context, email, bank string) ([]model.CategoryTotal, error) {
	var totals []model.CategoryTotal
	if err := c.get(ctx, "get category totals", "/get-category-wise-credit-debit/", scope(email, bank), &totals); err != nil {
		return nil, err
	}
	return totals, nil
}

// CategoryTransactions returns the transactions of one category, oldest first.
func (c *Client) CategoryTransactions(ctx context.Context, email, bank, category string) ([]model.CategoryTransaction, error) {
	query := scope(email, bank)
	query.Set("category", category)

	var txns []model.CategoryTransaction
	if err := c.get(ctx, "get category transactions", "/get-transaction-for-category/", query, &txns); err != nil {
		return nil, err
	}
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Date.Before(txns[j].Date)
	})
	return txns, nil
}

// YearTotals returns credit and debit totals per year.
func (c *Client) YearTotals(ctx context.Context, email, bank string) ([]model.YearTotal, error) {
	var totals []model.YearTotal
	if err := c.get(ctx, "get year totals", "/get-year-wise-credit-debit/", scope(email, bank), &totals); err != nil {
		return nil, err
	}
	return totals, nil
}

// YearCategoryTotals returns per-category totals for every year.
func (c *Client) YearCategoryTotals(ctx context.Context, email, bank string) ([]model.YearCategoryTotal, error) {
	var totals []model.YearCategoryTotal
	err := c.get(ctx, "get year category totals", "/get-category-wise-credit-debit-for-year/", scope(email, bank), &totals)
	if err != nil {
		return nil, err
	}
	return totals, nil
}
