package pgsql

import (
	"context"
	"sync"

	"github.com/chuxolatouz/deu-sisgead-be/internal/apperrors"
	portsrepo "github.com/chuxolatouz/deu-sisgead-be/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ledgerIndexStatements create the uniqueness and lookup indexes for every
// ledger table. IF NOT EXISTS makes each statement idempotent, so re-running
// the whole set is always safe.
var ledgerIndexStatements = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_master_accounts_year_code ON master_accounts (year, code)`,
	`CREATE INDEX IF NOT EXISTS ix_master_accounts_year_group ON master_accounts (year, account_group)`,
	`CREATE INDEX IF NOT EXISTS ix_master_accounts_year_parent ON master_accounts (year, parent_code)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS ux_master_units_year_code ON master_units (year, code)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_master_funding_sources_year_code ON master_funding_sources (year, code)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_master_budget_categories_year_code ON master_budget_categories (year, code)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS ux_account_scope_state_key ON account_scope_state (year, scope_type, scope_id, account_code)`,
	`CREATE INDEX IF NOT EXISTS ix_account_scope_state_scope ON account_scope_state (year, scope_type, scope_id)`,
	`CREATE INDEX IF NOT EXISTS ix_account_scope_state_account ON account_scope_state (year, account_code)`,

	`CREATE INDEX IF NOT EXISTS ix_ledger_movements_scope_created ON ledger_movements (year, scope_type, scope_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS ix_ledger_movements_account ON ledger_movements (year, account_code)`,
	`CREATE INDEX IF NOT EXISTS ix_ledger_movements_reference ON ledger_movements (year, (reference->>'kind'), (reference->>'id'))`,

	`CREATE INDEX IF NOT EXISTS ix_departments_unit_code ON departments (accounting_unit_code) WHERE accounting_unit_code IS NOT NULL`,
}

// IndexManager performs the idempotent creation of all ledger indexes.
// Creation runs at most once per process; later calls are no-ops unless the
// first attempt failed.
type IndexManager struct {
	pool *pgxpool.Pool

	mu      sync.Mutex
	created bool
}

func newIndexManager(pool *pgxpool.Pool) portsrepo.IndexEnsurer {
	return &IndexManager{pool: pool}
}

var _ portsrepo.IndexEnsurer = (*IndexManager)(nil)

// EnsureIndexes creates any missing ledger indexes. Safe to call from any
// request path.
func (m *IndexManager) EnsureIndexes(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.created {
		return nil
	}

	for _, stmt := range ledgerIndexStatements {
		if _, err := m.pool.Exec(ctx, stmt); err != nil {
			return apperrors.NewAppError(500, "failed to ensure ledger indexes", err)
		}
	}
	m.created = true
	return nil
}
