package pgsql

import (
	portsrepo "github.com/chuxolatouz/deu-sisgead-be/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the concrete pgx repositories. disableTxWrites
// selects the ledger repository's sequential-write fallback.
func NewRepositoryProvider(dbPool *pgxpool.Pool, disableTxWrites bool) *portsrepo.RepositoryProvider {
	return &portsrepo.RepositoryProvider{
		AccountRepo:    NewPgxAccountRepository(dbPool),
		LedgerRepo:     NewPgxLedgerRepository(dbPool, disableTxWrites),
		MasterRepo:     NewPgxMasterRepository(dbPool),
		DepartmentRepo: NewPgxDepartmentRepository(dbPool),
		Indexes:        newIndexManager(dbPool),
	}
}
