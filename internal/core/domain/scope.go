package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScopeType is the organizational boundary a balance belongs to.
type ScopeType string

const (
	ScopeDepartment ScopeType = "department"
	ScopeProject    ScopeType = "project"
	ScopeGlobal     ScopeType = "global"
)

// GlobalScopeID is the literal scope id used for the global aggregate scope.
const GlobalScopeID = "global"

// ValidScopeType reports whether t is one of the known scope types.
func ValidScopeType(t ScopeType) bool {
	switch t {
	case ScopeDepartment, ScopeProject, ScopeGlobal:
		return true
	}
	return false
}

// ScopeState is the denormalized running balance for a
// (year, scope type, scope id, account code) key. Balance must always equal
// the sum of signed deltas of all movements matching the same key; it is a
// cache over the movement log, which remains the source of truth.
type ScopeState struct {
	Year           int             `json:"year"`
	ScopeType      ScopeType       `json:"scopeType"`
	ScopeID        string          `json:"scopeId"`
	AccountCode    string          `json:"accountCode"`
	Balance        decimal.Decimal `json:"balance"`
	MovementsCount int64           `json:"movementsCount"`
	LastMovementAt *time.Time      `json:"lastMovementAt"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// ScopeAccount merges a catalog account with its scope state for a single
// scope's view. HasState is false when no state row exists yet; balance and
// count then default to zero.
type ScopeAccount struct {
	Account
	Balance        decimal.Decimal `json:"balance"`
	MovementsCount int64           `json:"movementsCount"`
	LastMovementAt *time.Time      `json:"lastMovementAt"`
	HasState       bool            `json:"hasState"`
}
