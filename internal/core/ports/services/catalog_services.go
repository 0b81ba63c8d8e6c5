package services

import (
	"context"

	"github.com/chuxolatouz/deu-sisgead-be/internal/core/domain"
	"github.com/chuxolatouz/deu-sisgead-be/internal/dto"
	"github.com/chuxolatouz/deu-sisgead-be/internal/utils/hierarchy"
)

// CatalogSvcFacade exposes the chart-of-accounts catalog: search, tree
// assembly, consolidated rollups and the administrative account lifecycle.
type CatalogSvcFacade interface {
	SearchAccounts(ctx context.Context, year int, query, group string, limit int) ([]domain.Account, error)
	AccountTree(ctx context.Context, year int, group string) ([]*hierarchy.Node[domain.Account], error)
	ConsolidatedTotals(ctx context.Context, year int, scopeType, scopeID string) (*domain.ConsolidatedTotals, error)

	ListAccounts(ctx context.Context, p dto.ListCatalogAccountsParams) (*dto.ListCatalogAccountsResponse, error)
	CreateAccount(ctx context.Context, req dto.CreateCatalogAccountRequest) (*domain.Account, error)
	UpdateAccount(ctx context.Context, year int, code string, req dto.UpdateCatalogAccountRequest) (*domain.Account, error)
	DeleteAccount(ctx context.Context, year int, code string) error
}
