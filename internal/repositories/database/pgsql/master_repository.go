package pgsql

import (
	"context"
	"time"

	"github.com/chuxolatouz/deu-sisgead-be/internal/apperrors"
	"github.com/chuxolatouz/deu-sisgead-be/internal/core/domain"
	portsrepo "github.com/chuxolatouz/deu-sisgead-be/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxMasterRepository implements bulk persistence for the yearly master-data
// tables. Upserts run as a single batch round trip per table.
type PgxMasterRepository struct {
	BaseRepository
}

// NewPgxMasterRepository creates a new master-data repository.
func NewPgxMasterRepository(pool *pgxpool.Pool) portsrepo.MasterRepositoryFacade {
	return &PgxMasterRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.MasterRepositoryFacade = (*PgxMasterRepository)(nil)

// runBatch sends the batch and sums affected rows across all queued commands.
func (r *PgxMasterRepository) runBatch(ctx context.Context, batch *pgx.Batch, message string) (int64, error) {
	results := r.Pool.SendBatch(ctx, batch)
	defer results.Close()

	var affected int64
	for i := 0; i < batch.Len(); i++ {
		tag, err := results.Exec()
		if err != nil {
			return affected, apperrors.NewAppError(500, message, err)
		}
		affected += tag.RowsAffected()
	}
	return affected, nil
}

// UpsertAccounts inserts or refreshes catalog accounts matched by (year, code).
func (r *PgxMasterRepository) UpsertAccounts(ctx context.Context, accounts []domain.Account) (int64, error) {
	if len(accounts) == 0 {
		return 0, nil
	}
	const query = `
		INSERT INTO master_accounts (year, code, description, account_group, is_header, level, parent_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (year, code) DO UPDATE SET
			description = EXCLUDED.description,
			account_group = EXCLUDED.account_group,
			is_header = EXCLUDED.is_header,
			level = EXCLUDED.level,
			parent_code = EXCLUDED.parent_code,
			updated_at = EXCLUDED.updated_at`

	now := time.Now()
	batch := &pgx.Batch{}
	for _, a := range accounts {
		batch.Queue(query, a.Year, a.Code, a.Description, a.Group, a.IsHeader, a.Level, a.ParentCode, now)
	}
	return r.runBatch(ctx, batch, "failed to upsert accounts")
}

// UpsertUnits inserts or refreshes organizational units matched by (year, code).
func (r *PgxMasterRepository) UpsertUnits(ctx context.Context, units []domain.Unit) (int64, error) {
	if len(units) == 0 {
		return 0, nil
	}
	const query = `
		INSERT INTO master_units (year, code, description, level, parent_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (year, code) DO UPDATE SET
			description = EXCLUDED.description,
			level = EXCLUDED.level,
			parent_code = EXCLUDED.parent_code,
			updated_at = EXCLUDED.updated_at`

	now := time.Now()
	batch := &pgx.Batch{}
	for _, u := range units {
		batch.Queue(query, u.Year, u.Code, u.Description, u.Level, u.ParentCode, now)
	}
	return r.runBatch(ctx, batch, "failed to upsert units")
}

// UpsertFundingSources inserts or refreshes funding sources matched by
// (year, code).
func (r *PgxMasterRepository) UpsertFundingSources(ctx context.Context, sources []domain.FundingSource) (int64, error) {
	if len(sources) == 0 {
		return 0, nil
	}
	const query = `
		INSERT INTO master_funding_sources (year, code, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (year, code) DO UPDATE SET
			description = EXCLUDED.description,
			updated_at = EXCLUDED.updated_at`

	now := time.Now()
	batch := &pgx.Batch{}
	for _, s := range sources {
		batch.Queue(query, s.Year, s.Code, s.Description, now)
	}
	return r.runBatch(ctx, batch, "failed to upsert funding sources")
}

// UpsertBudgetCategories inserts or refreshes budget categories matched by
// (year, code).
func (r *PgxMasterRepository) UpsertBudgetCategories(ctx context.Context, categories []domain.BudgetCategory) (int64, error) {
	if len(categories) == 0 {
		return 0, nil
	}
	const query = `
		INSERT INTO master_budget_categories (year, code, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (year, code) DO UPDATE SET
			description = EXCLUDED.description,
			updated_at = EXCLUDED.updated_at`

	now := time.Now()
	batch := &pgx.Batch{}
	for _, c := range categories {
		batch.Queue(query, c.Year, c.Code, c.Description, now)
	}
	return r.runBatch(ctx, batch, "failed to upsert budget categories")
}

// DeleteMasterData removes every master-data row for the year across all four
// tables in one transaction. Destructive; only the seed force path calls it.
func (r *PgxMasterRepository) DeleteMasterData(ctx context.Context, year int) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	tables := []string{"master_accounts", "master_units", "master_funding_sources", "master_budget_categories"}
	for _, table := range tables {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE year = $1`, year); err != nil {
			return apperrors.NewAppError(500, "failed to delete master data from "+table, err)
		}
	}
	return r.Commit(ctx, tx)
}

// ListUnits returns every unit of the year sorted by code.
func (r *PgxMasterRepository) ListUnits(ctx context.Context, year int) ([]domain.Unit, error) {
	query := `SELECT year, code, description, level, parent_code, created_at, updated_at FROM master_units WHERE year = $1 ORDER BY code ASC`
	rows, err := r.Pool.Query(ctx, query, year)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list units", err)
	}
	defer rows.Close()

	units := []domain.Unit{}
	for rows.Next() {
		var u domain.Unit
		if err := rows.Scan(&u.Year, &u.Code, &u.Description, &u.Level, &u.ParentCode, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan unit row", err)
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating unit rows", err)
	}
	return units, nil
}
