package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chuxolatouz/deu-sisgead-be/internal/apperrors"
	"github.com/chuxolatouz/deu-sisgead-be/internal/core/domain"
	portsrepo "github.com/chuxolatouz/deu-sisgead-be/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxAccountRepository implements the chart-of-accounts persistence using pgx.
type PgxAccountRepository struct {
	BaseRepository
}

// NewPgxAccountRepository creates a new account repository.
func NewPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `year, code, description, account_group, is_header, level, parent_code, created_at, updated_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.Year, &a.Code, &a.Description, &a.Group, &a.IsHeader, &a.Level, &a.ParentCode, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindAccountByCode retrieves one account by its (year, code) identity.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, year int, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM master_accounts WHERE year = $1 AND code = $2`
	account, err := scanAccount(r.Pool.QueryRow(ctx, query, year, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s not found for year %d", code, year))
		}
		return nil, apperrors.NewAppError(500, "failed to find account", err)
	}
	return account, nil
}

// ListAccounts returns all accounts for the year sorted by code, optionally
// filtered by group.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, year int, group domain.AccountGroup) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM master_accounts WHERE year = $1`
	args := []any{year}
	if group != "" {
		query += ` AND account_group = $2`
		args = append(args, group)
	}
	query += ` ORDER BY code ASC`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list accounts", err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// SearchAccounts matches by code prefix or case-insensitive description
// substring. A numeric query is treated as a code prefix; anything else only
// matches descriptions.
func (r *PgxAccountRepository) SearchAccounts(ctx context.Context, year int, query string, group domain.AccountGroup, limit int) ([]domain.Account, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + accountColumns + ` FROM master_accounts WHERE year = $1`)
	args := []any{year}

	if query != "" {
		if isDigits(query) {
			args = append(args, query+"%")
			sb.WriteString(fmt.Sprintf(` AND (code LIKE $%d OR description ILIKE $%d)`, len(args), len(args)+1))
			args = append(args, "%"+query+"%")
		} else {
			args = append(args, "%"+query+"%")
			sb.WriteString(fmt.Sprintf(` AND description ILIKE $%d`, len(args)))
		}
	}
	if group != "" {
		args = append(args, group)
		sb.WriteString(fmt.Sprintf(` AND account_group = $%d`, len(args)))
	}
	args = append(args, limit)
	sb.WriteString(fmt.Sprintf(` ORDER BY code ASC LIMIT $%d`, len(args)))

	rows, err := r.Pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to search accounts", err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// ListAccountsPaged is the offset-paged admin listing; it also returns the
// total row count for the filter so the caller can render page controls.
func (r *PgxAccountRepository) ListAccountsPaged(ctx context.Context, year int, query string, group domain.AccountGroup, limit, offset int) ([]domain.Account, int64, error) {
	where := strings.Builder{}
	where.WriteString(` FROM master_accounts WHERE year = $1`)
	args := []any{year}

	if query != "" {
		args = append(args, query+"%")
		where.WriteString(fmt.Sprintf(` AND (code LIKE $%d OR description ILIKE $%d)`, len(args), len(args)+1))
		args = append(args, "%"+query+"%")
	}
	if group != "" {
		args = append(args, group)
		where.WriteString(fmt.Sprintf(` AND account_group = $%d`, len(args)))
	}

	var total int64
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*)`+where.String(), args...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewAppError(500, "failed to count accounts", err)
	}

	pageArgs := append(args, limit, offset)
	pageQuery := fmt.Sprintf(`SELECT %s%s ORDER BY code ASC LIMIT $%d OFFSET $%d`,
		accountColumns, where.String(), len(pageArgs)-1, len(pageArgs))

	rows, err := r.Pool.Query(ctx, pageQuery, pageArgs...)
	if err != nil {
		return nil, 0, apperrors.NewAppError(500, "failed to list accounts page", err)
	}
	defer rows.Close()

	accounts, err := collectAccounts(rows)
	if err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// CountChildren counts accounts whose parent_code equals code.
func (r *PgxAccountRepository) CountChildren(ctx context.Context, year int, code string) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM master_accounts WHERE year = $1 AND parent_code = $2`
	if err := r.Pool.QueryRow(ctx, query, year, code).Scan(&count); err != nil {
		return 0, apperrors.NewAppError(500, "failed to count child accounts", err)
	}
	return count, nil
}

// SaveAccount inserts a new account. A unique violation on (year, code) maps
// to ErrDuplicate.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO master_accounts (year, code, description, account_group, is_header, level, parent_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	if account.UpdatedAt.IsZero() {
		account.UpdatedAt = now
	}

	_, err := r.Pool.Exec(ctx, query,
		account.Year, account.Code, account.Description, account.Group,
		account.IsHeader, account.Level, account.ParentCode,
		account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.NewAppError(409, fmt.Sprintf("account %s already exists for year %d", account.Code, account.Year), apperrors.ErrDuplicate)
		}
		return apperrors.NewAppError(500, "failed to save account", err)
	}
	return nil
}

// UpdateAccount applies the non-nil fields of update and returns the updated
// account. Year and code are never touched.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, year int, code string, update domain.AccountUpdate) (*domain.Account, error) {
	sets := []string{}
	args := []any{year, code}

	addSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.Description != nil {
		addSet("description", *update.Description)
	}
	if update.Group != nil {
		addSet("account_group", *update.Group)
	}
	if update.IsHeader != nil {
		addSet("is_header", *update.IsHeader)
	}
	if update.Level != nil {
		addSet("level", *update.Level)
	}
	if update.ParentCode != nil {
		addSet("parent_code", *update.ParentCode)
	}
	if len(sets) == 0 {
		return r.FindAccountByCode(ctx, year, code)
	}
	addSet("updated_at", time.Now())

	query := fmt.Sprintf(`UPDATE master_accounts SET %s WHERE year = $1 AND code = $2 RETURNING %s`,
		strings.Join(sets, ", "), accountColumns)

	account, err := scanAccount(r.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s not found for year %d", code, year))
		}
		return nil, apperrors.NewAppError(500, "failed to update account", err)
	}
	return account, nil
}

// DeleteAccount removes the account row. Structural guards (children,
// movements) are enforced by the service layer before this is called.
func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, year int, code string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM master_accounts WHERE year = $1 AND code = $2`, year, code)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete account", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("account %s not found for year %d", code, year))
	}
	return nil
}

func collectAccounts(rows pgx.Rows) ([]domain.Account, error) {
	accounts := []domain.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account row", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating account rows", err)
	}
	return accounts, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
