package repositories

import (
	"context"

	"github.com/chuxolatouz/deu-sisgead-be/internal/core/domain"
)

// LedgerRepositoryFacade defines persistence for scope states and the
// movement log. Implementations own the write-atomicity policy: movement
// insert and state increment are applied in one storage transaction where the
// deployment supports it, or sequentially (movement first, state second) as a
// best-effort fallback. Balance mutation is always an atomic in-database
// increment, never a read-modify-write.
type LedgerRepositoryFacade interface {
	// FindState returns apperrors.ErrNotFound when no state row exists yet.
	FindState(ctx context.Context, year int, scopeType domain.ScopeType, scopeID, accountCode string) (*domain.ScopeState, error)

	// ListStates returns every state row of one scope.
	ListStates(ctx context.Context, year int, scopeType domain.ScopeType, scopeID string) ([]domain.ScopeState, error)

	// InitStates creates zero-balance rows for the given account codes,
	// skipping keys that already have a row. Returns the number of rows
	// actually inserted.
	InitStates(ctx context.Context, year int, scopeType domain.ScopeType, scopeID string, accountCodes []string) (int64, error)

	// ApplyMovement appends the movement and increments the matching state,
	// returning the updated state.
	ApplyMovement(ctx context.Context, movement domain.Movement) (*domain.ScopeState, error)

	// ApplyTransfer appends both legs of a transfer and increments both
	// states, returning the updated source and target states.
	ApplyTransfer(ctx context.Context, source, target domain.Movement) (*domain.ScopeState, *domain.ScopeState, error)

	// ListMovements returns a scope's movements newest first using
	// token-based pagination.
	ListMovements(ctx context.Context, year int, scopeType domain.ScopeType, scopeID string, limit int, nextToken *string) ([]domain.Movement, *string, error)

	// CountMovementsForAccount counts movements referencing the account code
	// in any scope, used by the account deletion guard.
	CountMovementsForAccount(ctx context.Context, year int, accountCode string) (int64, error)

	// AggregateTotals sums balances and movement counts per account code,
	// optionally restricted to a scope type and scope id.
	AggregateTotals(ctx context.Context, year int, scopeType domain.ScopeType, scopeID string) ([]domain.AccountTotal, error)

	// DeleteStatesForAccount removes every state row of an account, the
	// cleanup step cascading from account deletion.
	DeleteStatesForAccount(ctx context.Context, year int, accountCode string) (int64, error)
}
