package domain

import "github.com/shopspring/decimal"

// AccountTotal is a per-account aggregation of scope-state balances.
type AccountTotal struct {
	AccountCode    string          `json:"accountCode"`
	Balance        decimal.Decimal `json:"balance"`
	MovementsCount int64           `json:"movementsCount"`
}

// RootTotal is an account total rolled up to its ultimate root ancestor.
type RootTotal struct {
	RootCode    string          `json:"rootCode"`
	Description string          `json:"description"`
	Balance     decimal.Decimal `json:"balance"`
}

// ConsolidatedTotals is the flat and root-aggregated view of balances for a
// year, optionally restricted to a single scope.
type ConsolidatedTotals struct {
	Year            int            `json:"year"`
	TotalsByAccount []AccountTotal `json:"totalsByAccount"`
	TotalsByRoot    []RootTotal    `json:"totalsByRoot"`
}
