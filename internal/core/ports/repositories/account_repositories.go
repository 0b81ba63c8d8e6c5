package repositories

import (
	"context"

	"github.com/chuxolatouz/deu-sisgead-be/internal/core/domain"
)

// AccountRepositoryFacade defines the persistence operations for the chart of
// accounts. Accounts are keyed by (year, code); code and year are immutable.
type AccountRepositoryFacade interface {
	// FindAccountByCode returns apperrors.ErrNotFound when no account exists
	// for the (year, code) pair.
	FindAccountByCode(ctx context.Context, year int, code string) (*domain.Account, error)

	// ListAccounts returns all accounts for the year sorted by code,
	// optionally filtered by group (empty group means all).
	ListAccounts(ctx context.Context, year int, group domain.AccountGroup) ([]domain.Account, error)

	// SearchAccounts matches by code prefix or case-insensitive description
	// substring, sorted by code, capped at limit.
	SearchAccounts(ctx context.Context, year int, query string, group domain.AccountGroup, limit int) ([]domain.Account, error)

	// ListAccountsPaged is the offset-paged admin listing. Returns the page
	// and the total row count for the filter.
	ListAccountsPaged(ctx context.Context, year int, query string, group domain.AccountGroup, limit, offset int) ([]domain.Account, int64, error)

	// CountChildren counts accounts whose parent_code equals code.
	CountChildren(ctx context.Context, year int, code string) (int64, error)

	SaveAccount(ctx context.Context, account domain.Account) error
	UpdateAccount(ctx context.Context, year int, code string, update domain.AccountUpdate) (*domain.Account, error)
	DeleteAccount(ctx context.Context, year int, code string) error
}
