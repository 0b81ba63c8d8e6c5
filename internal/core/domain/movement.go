package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the ledger's base currency code.
const DefaultCurrency = "VES"

// MovementType indicates the direction of a ledger posting. Direction is
// encoded here, never in the sign of the amount.
type MovementType string

const (
	MovementDebit  MovementType = "debit"
	MovementCredit MovementType = "credit"
)

// ParseMovementType normalizes raw input (case-insensitive, trimmed) into a
// MovementType. The boolean is false for anything other than debit/credit.
func ParseMovementType(raw string) (MovementType, bool) {
	switch MovementType(strings.ToLower(strings.TrimSpace(raw))) {
	case MovementDebit:
		return MovementDebit, true
	case MovementCredit:
		return MovementCredit, true
	}
	return "", false
}

// ReferenceKindTransfer marks the two correlated movements of a transfer.
const ReferenceKindTransfer = "transfer"

// MovementReference correlates a movement with a higher-level business event.
// For transfers both movements share the same ID and carry the directional
// scope metadata. Extra holds caller-supplied correlation fields.
type MovementReference struct {
	Kind          string            `json:"kind,omitempty"`
	ID            string            `json:"id,omitempty"`
	FromScopeType ScopeType         `json:"fromScopeType,omitempty"`
	FromScopeID   string            `json:"fromScopeId,omitempty"`
	ToScopeType   ScopeType         `json:"toScopeType,omitempty"`
	ToScopeID     string            `json:"toScopeId,omitempty"`
	Extra         map[string]string `json:"extra,omitempty"`
}

// Movement is a single immutable ledger posting. Movements are append-only:
// they are never updated or deleted in normal operation.
type Movement struct {
	MovementID  string            `json:"movementId"`
	Year        int               `json:"year"`
	ScopeType   ScopeType         `json:"scopeType"`
	ScopeID     string            `json:"scopeId"`
	AccountCode string            `json:"accountCode"`
	Type        MovementType      `json:"type"`
	Amount      decimal.Decimal   `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description"`
	Reference   MovementReference `json:"reference"`
	CreatedBy   string            `json:"createdBy"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// Delta returns the signed balance contribution of the movement: debits add,
// credits subtract.
func (m Movement) Delta() decimal.Decimal {
	if m.Type == MovementCredit {
		return m.Amount.Neg()
	}
	return m.Amount
}
