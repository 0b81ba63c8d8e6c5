package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chuxolatouz/deu-sisgead-be/internal/apperrors"
	"github.com/chuxolatouz/deu-sisgead-be/internal/core/domain"
	portsrepo "github.com/chuxolatouz/deu-sisgead-be/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxDepartmentRepository implements department persistence for the unit sync.
type PgxDepartmentRepository struct {
	BaseRepository
}

// NewPgxDepartmentRepository creates a new department repository.
func NewPgxDepartmentRepository(pool *pgxpool.Pool) portsrepo.DepartmentRepositoryFacade {
	return &PgxDepartmentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DepartmentRepositoryFacade = (*PgxDepartmentRepository)(nil)

const departmentColumns = `department_id, code, name, description, accounting_unit_code, parent_department_id, is_active, created_at, updated_at`

func scanDepartment(row pgx.Row) (*domain.Department, error) {
	var d domain.Department
	var unitCode, parentID *string
	err := row.Scan(&d.DepartmentID, &d.Code, &d.Name, &d.Description, &unitCode, &parentID, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if unitCode != nil {
		d.AccountingUnitCode = *unitCode
	}
	if parentID != nil {
		d.ParentDepartmentID = *parentID
	}
	return &d, nil
}

// FindByUnitCode matches a department by its accounting unit code, falling
// back to the department's own code. The sync relies on this double match to
// adopt departments created before unit codes were tracked.
func (r *PgxDepartmentRepository) FindByUnitCode(ctx context.Context, code string) (*domain.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments WHERE accounting_unit_code = $1 OR code = $1 ORDER BY accounting_unit_code = $1 DESC LIMIT 1`
	department, err := scanDepartment(r.Pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("no department for unit code %s", code))
		}
		return nil, apperrors.NewAppError(500, "failed to find department", err)
	}
	return department, nil
}

// SaveDepartment inserts a new department.
func (r *PgxDepartmentRepository) SaveDepartment(ctx context.Context, department domain.Department) error {
	query := `
		INSERT INTO departments (department_id, code, name, description, accounting_unit_code, parent_department_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`
	now := time.Now()
	if department.CreatedAt.IsZero() {
		department.CreatedAt = now
	}

	_, err := r.Pool.Exec(ctx, query,
		department.DepartmentID, department.Code, department.Name, department.Description,
		nullIfEmpty(department.AccountingUnitCode), nullIfEmpty(department.ParentDepartmentID),
		department.IsActive, department.CreatedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save department", err)
	}
	return nil
}

// UpdateDepartment refreshes the mutable fields of an existing department.
func (r *PgxDepartmentRepository) UpdateDepartment(ctx context.Context, department domain.Department) error {
	query := `
		UPDATE departments SET
			code = $2, name = $3, description = $4, accounting_unit_code = $5, is_active = $6, updated_at = $7
		WHERE department_id = $1`

	tag, err := r.Pool.Exec(ctx, query,
		department.DepartmentID, department.Code, department.Name, department.Description,
		nullIfEmpty(department.AccountingUnitCode), department.IsActive, time.Now(),
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update department", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("department %s not found", department.DepartmentID))
	}
	return nil
}

// SetParentDepartment links a department to its parent. Run as a second pass
// after all departments exist so link order never matters.
func (r *PgxDepartmentRepository) SetParentDepartment(ctx context.Context, departmentID, parentDepartmentID string) error {
	query := `UPDATE departments SET parent_department_id = $2, updated_at = $3 WHERE department_id = $1`
	tag, err := r.Pool.Exec(ctx, query, departmentID, nullIfEmpty(parentDepartmentID), time.Now())
	if err != nil {
		return apperrors.NewAppError(500, "failed to set parent department", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("department %s not found", departmentID))
	}
	return nil
}

// nullIfEmpty maps Go's empty string to SQL NULL for optional text columns.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
