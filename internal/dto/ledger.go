package dto

import (
	"github.com/chuxolatouz/deu-sisgead-be/internal/core/domain"
	"github.com/chuxolatouz/deu-sisgead-be/internal/utils/hierarchy"
	"github.com/shopspring/decimal"
)

// ScopeAccountsParams selects a single scope's merged account view.
type ScopeAccountsParams struct {
	Year         int
	ScopeType    domain.ScopeType
	ScopeID      string
	Group        string
	AssignedOnly bool
	IncludeZero  bool
}

// ScopeAccountsMeta summarizes the visible portion of a scope view.
type ScopeAccountsMeta struct {
	AssignedOnly        bool            `json:"assignedOnly"`
	IncludeZero         bool            `json:"includeZero"`
	TotalAssigned       int             `json:"totalAssigned"`
	TotalVisible        int             `json:"totalVisible"`
	TotalBalanceVisible decimal.Decimal `json:"totalBalanceVisible"`
}

// ScopeAccountsResponse is the scoped account tree with balances.
type ScopeAccountsResponse struct {
	Year      int                                   `json:"year"`
	ScopeType domain.ScopeType                      `json:"scopeType"`
	ScopeID   string                                `json:"scopeId"`
	Tree      []*hierarchy.Node[domain.ScopeAccount] `json:"tree"`
	Meta      ScopeAccountsMeta                     `json:"meta"`
}

// InitScopeRequest selects which accounts to initialize for a scope.
type InitScopeRequest struct {
	Mode string `json:"mode"`
}

// CreateMovementRequest defines a single ledger posting. CreatedBy and
// AllowNegative are filled in by the handler (token subject and configured
// policy), not bound from the body.
type CreateMovementRequest struct {
	Year        int               `json:"year"`
	ScopeType   string            `json:"scopeType"`
	ScopeID     string            `json:"scopeId"`
	AccountCode string            `json:"accountCode" binding:"required"`
	Type        string            `json:"type" binding:"required"`
	Amount      decimal.Decimal   `json:"amount" binding:"required"`
	Description string            `json:"description"`
	Reference   map[string]string `json:"reference"`
	CreatedBy   string            `json:"-"`
	AllowNegative bool            `json:"-"`
}

// MovementResponse pairs the persisted movement with the updated state.
type MovementResponse struct {
	Movement *domain.Movement   `json:"movement"`
	State    *domain.ScopeState `json:"state"`
}

// TransferRequest defines a value transfer between two (scope, account)
// positions. The legacy single ScopeType/ScopeID pair applies to whichever
// endpoint omits its own values.
type TransferRequest struct {
	Year            int               `json:"year"`
	ScopeType       string            `json:"scopeType"`
	ScopeID         string            `json:"scopeId"`
	FromScopeType   string            `json:"fromScopeType"`
	FromScopeID     string            `json:"fromScopeId"`
	ToScopeType     string            `json:"toScopeType"`
	ToScopeID       string            `json:"toScopeId"`
	FromAccountCode string            `json:"fromAccountCode" binding:"required"`
	ToAccountCode   string            `json:"toAccountCode" binding:"required"`
	Amount          decimal.Decimal   `json:"amount" binding:"required"`
	Description     string            `json:"description"`
	Reference       map[string]string `json:"reference"`
	CreatedBy       string            `json:"-"`
	AllowNegative   bool              `json:"-"`
}

// TransferResult confirms both endpoints of a completed transfer.
type TransferResult struct {
	TransferID      string             `json:"transferId"`
	FromScopeType   domain.ScopeType   `json:"fromScopeType"`
	FromScopeID     string             `json:"fromScopeId"`
	ToScopeType     domain.ScopeType   `json:"toScopeType"`
	ToScopeID       string             `json:"toScopeId"`
	FromAccountCode string             `json:"fromAccountCode"`
	ToAccountCode   string             `json:"toAccountCode"`
	Amount          decimal.Decimal    `json:"amount"`
	SourceState     *domain.ScopeState `json:"sourceState"`
	TargetState     *domain.ScopeState `json:"targetState"`
}

// ListMovementsParams defines query parameters for the movement listing.
type ListMovementsParams struct {
	Year      int     `form:"year"`
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListMovementsResponse wraps one page of movements.
type ListMovementsResponse struct {
	Movements []domain.Movement `json:"movements"`
	NextToken *string           `json:"nextToken,omitempty"`
}
