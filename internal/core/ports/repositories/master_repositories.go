package repositories

import (
	"context"

	"github.com/chuxolatouz/deu-sisgead-be/internal/core/domain"
)

// MasterRepositoryFacade defines bulk persistence for the yearly master-data
// tables populated by the seed service. Upserts are matched by (year, code)
// and return the number of rows inserted or updated.
type MasterRepositoryFacade interface {
	UpsertAccounts(ctx context.Context, accounts []domain.Account) (int64, error)
	UpsertUnits(ctx context.Context, units []domain.Unit) (int64, error)
	UpsertFundingSources(ctx context.Context, sources []domain.FundingSource) (int64, error)
	UpsertBudgetCategories(ctx context.Context, categories []domain.BudgetCategory) (int64, error)

	// DeleteMasterData removes every master-data row for the year across all
	// four tables. Destructive; only the seed force path calls it.
	DeleteMasterData(ctx context.Context, year int) error

	ListUnits(ctx context.Context, year int) ([]domain.Unit, error)
}

// DepartmentRepositoryFacade defines the department operations needed by the
// unit sync. Departments live outside the ledger but are projected from the
// master units.
type DepartmentRepositoryFacade interface {
	// FindByUnitCode matches a department by accounting unit code or by its
	// own code; returns apperrors.ErrNotFound when absent.
	FindByUnitCode(ctx context.Context, code string) (*domain.Department, error)

	SaveDepartment(ctx context.Context, department domain.Department) error
	UpdateDepartment(ctx context.Context, department domain.Department) error
	SetParentDepartment(ctx context.Context, departmentID, parentDepartmentID string) error
}
