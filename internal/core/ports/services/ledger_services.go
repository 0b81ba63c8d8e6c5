package services

import (
	"context"

	"github.com/chuxolatouz/deu-sisgead-be/internal/core/domain"
	"github.com/chuxolatouz/deu-sisgead-be/internal/dto"
)

// LedgerSvcFacade exposes the scope-state ledger: scoped balance views, scope
// initialization, movement posting and transfers.
type LedgerSvcFacade interface {
	GetScopeAccounts(ctx context.Context, p dto.ScopeAccountsParams) (*dto.ScopeAccountsResponse, error)

	// InitScope bulk-creates zero-balance state rows for a scope without
	// recording movements. Mode is one of "detail_only", "all" or
	// "group:<GROUP>". Re-running never resets an existing balance.
	InitScope(ctx context.Context, year int, scopeType domain.ScopeType, scopeID, mode string) (int64, error)

	CreateMovement(ctx context.Context, req dto.CreateMovementRequest) (*dto.MovementResponse, error)
	TransferBetweenAccounts(ctx context.Context, req dto.TransferRequest) (*dto.TransferResult, error)

	ListMovements(ctx context.Context, year int, scopeType domain.ScopeType, scopeID string, limit int, nextToken *string) (*dto.ListMovementsResponse, error)
}

// SeedSvcFacade exposes master-data seeding and the unit-to-department sync.
type SeedSvcFacade interface {
	Seed(ctx context.Context, year int, force, dryRun bool) (*dto.SeedResult, error)
	SyncDepartmentsFromUnits(ctx context.Context, year int) (*dto.SyncResult, error)
}
