// Package model defines the records exchanged with the finance backend.
package model

import "github.com/shopspring/decimal"

func init() {
	// The backend expects JSON numbers for money and rates.
	decimal.MarshalJSONWithoutQuotes = true
}

// CategoryNames extracts the names from the category picker options.
func CategoryNames(options []CategoryOption) []string {
	names := make([]string, 0, len(options))
	for _, o := range options {
		names = append(names, o.Category)
	}
	return names
}
