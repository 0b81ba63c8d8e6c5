package repositories

import "context"

// IndexEnsurer creates the ledger's uniqueness and lookup indexes. Creation
// is idempotent: calling it when the indexes already exist is not an error,
// and it is safe to call from any request path.
type IndexEnsurer interface {
	EnsureIndexes(ctx context.Context) error
}

// RepositoryProvider bundles the concrete repositories handed to the service
// container.
type RepositoryProvider struct {
	AccountRepo    AccountRepositoryFacade
	LedgerRepo     LedgerRepositoryFacade
	MasterRepo     MasterRepositoryFacade
	DepartmentRepo DepartmentRepositoryFacade
	Indexes        IndexEnsurer
}
