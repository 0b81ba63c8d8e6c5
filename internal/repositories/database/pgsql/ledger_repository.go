package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chuxolatouz/deu-sisgead-be/internal/apperrors"
	"github.com/chuxolatouz/deu-sisgead-be/internal/core/domain"
	portsrepo "github.com/chuxolatouz/deu-sisgead-be/internal/core/ports/repositories"
	"github.com/chuxolatouz/deu-sisgead-be/internal/platform/metrics"
	"github.com/chuxolatouz/deu-sisgead-be/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, letting the write
// helpers run inside or outside a transaction.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgxLedgerRepository implements scope-state and movement persistence.
//
// Write atomicity policy: with disableTxWrites false (the default) a movement
// insert and its state increment run in one transaction. With it true they run
// sequentially, movement first, so a crash between the two leaves an orphan
// movement in the log rather than a balance with no backing movement; the log
// stays the source of truth and a replay can rebuild the state.
type PgxLedgerRepository struct {
	BaseRepository
	disableTxWrites bool
}

// NewPgxLedgerRepository creates a new ledger repository.
func NewPgxLedgerRepository(pool *pgxpool.Pool, disableTxWrites bool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{
		BaseRepository:  BaseRepository{Pool: pool},
		disableTxWrites: disableTxWrites,
	}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

const scopeStateColumns = `year, scope_type, scope_id, account_code, balance, movements_count, last_movement_at, created_at, updated_at`

// upsertStateSQL applies a movement's delta as a single atomic statement: the
// increment happens inside the database, never as a read-modify-write in Go.
const upsertStateSQL = `
	INSERT INTO account_scope_state (year, scope_type, scope_id, account_code, balance, movements_count, last_movement_at, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, 1, $6, $7, $7)
	ON CONFLICT (year, scope_type, scope_id, account_code) DO UPDATE SET
		balance = account_scope_state.balance + EXCLUDED.balance,
		movements_count = account_scope_state.movements_count + 1,
		last_movement_at = EXCLUDED.last_movement_at,
		updated_at = EXCLUDED.updated_at
	RETURNING ` + scopeStateColumns

const insertMovementSQL = `
	INSERT INTO ledger_movements (movement_id, year, scope_type, scope_id, account_code, movement_type, amount, currency, description, reference, created_by, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

const movementColumns = `movement_id, year, scope_type, scope_id, account_code, movement_type, amount, currency, description, reference, created_by, created_at`

func scanScopeState(row pgx.Row) (*domain.ScopeState, error) {
	var s domain.ScopeState
	err := row.Scan(&s.Year, &s.ScopeType, &s.ScopeID, &s.AccountCode, &s.Balance, &s.MovementsCount, &s.LastMovementAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanMovement(row pgx.Row) (*domain.Movement, error) {
	var m domain.Movement
	var reference []byte
	err := row.Scan(&m.MovementID, &m.Year, &m.ScopeType, &m.ScopeID, &m.AccountCode, &m.Type, &m.Amount, &m.Currency, &m.Description, &reference, &m.CreatedBy, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(reference) > 0 {
		if err := json.Unmarshal(reference, &m.Reference); err != nil {
			return nil, fmt.Errorf("failed to decode movement reference: %w", err)
		}
	}
	return &m, nil
}

// FindState returns one state row by its full key.
func (r *PgxLedgerRepository) FindState(ctx context.Context, year int, scopeType domain.ScopeType, scopeID, accountCode string) (*domain.ScopeState, error) {
	query := `SELECT ` + scopeStateColumns + ` FROM account_scope_state WHERE year = $1 AND scope_type = $2 AND scope_id = $3 AND account_code = $4`
	state, err := scanScopeState(r.Pool.QueryRow(ctx, query, year, scopeType, scopeID, accountCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("no state for account %s in scope %s/%s", accountCode, scopeType, scopeID))
		}
		return nil, apperrors.NewAppError(500, "failed to find scope state", err)
	}
	return state, nil
}

// ListStates returns every state row of one scope sorted by account code.
func (r *PgxLedgerRepository) ListStates(ctx context.Context, year int, scopeType domain.ScopeType, scopeID string) ([]domain.ScopeState, error) {
	query := `SELECT ` + scopeStateColumns + ` FROM account_scope_state WHERE year = $1 AND scope_type = $2 AND scope_id = $3 ORDER BY account_code ASC`
	rows, err := r.Pool.Query(ctx, query, year, scopeType, scopeID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list scope states", err)
	}
	defer rows.Close()

	states := []domain.ScopeState{}
	for rows.Next() {
		state, err := scanScopeState(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan scope state row", err)
		}
		states = append(states, *state)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating scope state rows", err)
	}
	return states, nil
}

// InitStates creates zero-balance rows for the given account codes. Existing
// keys are left untouched (DO NOTHING), so re-running init is idempotent; the
// returned count is the number of rows actually inserted.
func (r *PgxLedgerRepository) InitStates(ctx context.Context, year int, scopeType domain.ScopeType, scopeID string, accountCodes []string) (int64, error) {
	if len(accountCodes) == 0 {
		return 0, nil
	}

	const initSQL = `
		INSERT INTO account_scope_state (year, scope_type, scope_id, account_code, balance, movements_count, last_movement_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, 0, NULL, $5, $5)
		ON CONFLICT (year, scope_type, scope_id, account_code) DO NOTHING`

	now := time.Now()
	batch := &pgx.Batch{}
	for _, code := range accountCodes {
		batch.Queue(initSQL, year, scopeType, scopeID, code, now)
	}

	results := r.Pool.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for range accountCodes {
		tag, err := results.Exec()
		if err != nil {
			return inserted, apperrors.NewAppError(500, "failed to initialize scope states", err)
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

// ApplyMovement appends the movement and increments the matching state.
func (r *PgxLedgerRepository) ApplyMovement(ctx context.Context, movement domain.Movement) (*domain.ScopeState, error) {
	if r.disableTxWrites {
		metrics.SequentialWritesTotal.Inc()
		return r.applyMovementOn(ctx, r.Pool, movement)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	state, err := r.applyMovementOn(ctx, tx, movement)
	if err != nil {
		return nil, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return state, nil
}

// ApplyTransfer appends both legs and increments both states. Under the
// transactional policy the four writes are all-or-nothing; under the
// sequential policy each leg lands movement-first.
func (r *PgxLedgerRepository) ApplyTransfer(ctx context.Context, source, target domain.Movement) (*domain.ScopeState, *domain.ScopeState, error) {
	if r.disableTxWrites {
		metrics.SequentialWritesTotal.Inc()
		sourceState, err := r.applyMovementOn(ctx, r.Pool, source)
		if err != nil {
			return nil, nil, err
		}
		targetState, err := r.applyMovementOn(ctx, r.Pool, target)
		if err != nil {
			return nil, nil, err
		}
		return sourceState, targetState, nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer r.Rollback(ctx, tx)

	sourceState, err := r.applyMovementOn(ctx, tx, source)
	if err != nil {
		return nil, nil, err
	}
	targetState, err := r.applyMovementOn(ctx, tx, target)
	if err != nil {
		return nil, nil, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, nil, err
	}
	return sourceState, targetState, nil
}

// applyMovementOn runs the two-write sequence on the given querier: movement
// insert first, then the state upsert. Order matters for the sequential
// policy: an orphan log entry is recoverable, a phantom balance is not.
func (r *PgxLedgerRepository) applyMovementOn(ctx context.Context, q pgxQuerier, movement domain.Movement) (*domain.ScopeState, error) {
	reference, err := json.Marshal(movement.Reference)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to encode movement reference", err)
	}

	_, err = q.Exec(ctx, insertMovementSQL,
		movement.MovementID, movement.Year, movement.ScopeType, movement.ScopeID,
		movement.AccountCode, movement.Type, movement.Amount, movement.Currency,
		movement.Description, reference, movement.CreatedBy, movement.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.NewAppError(409, fmt.Sprintf("movement %s already exists", movement.MovementID), apperrors.ErrDuplicate)
		}
		return nil, apperrors.NewAppError(500, "failed to insert movement", err)
	}

	state, err := scanScopeState(q.QueryRow(ctx, upsertStateSQL,
		movement.Year, movement.ScopeType, movement.ScopeID, movement.AccountCode,
		movement.Delta(), movement.CreatedAt, movement.CreatedAt,
	))
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to update scope state", err)
	}
	return state, nil
}

// ListMovements returns a scope's movements newest first. The token encodes
// the (created_at, movement_id) of the last item; the tuple comparison keeps
// the page boundary stable when timestamps collide.
func (r *PgxLedgerRepository) ListMovements(ctx context.Context, year int, scopeType domain.ScopeType, scopeID string, limit int, nextToken *string) ([]domain.Movement, *string, error) {
	query := `SELECT ` + movementColumns + ` FROM ledger_movements WHERE year = $1 AND scope_type = $2 AND scope_id = $3`
	args := []any{year, scopeType, scopeID}

	if nextToken != nil && *nextToken != "" {
		createdAt, movementID, err := pagination.DecodeMovementToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("invalid pagination token")
		}
		args = append(args, createdAt, movementID)
		query += fmt.Sprintf(` AND (created_at, movement_id) < ($%d, $%d)`, len(args)-1, len(args))
	}

	args = append(args, limit+1)
	query += fmt.Sprintf(` ORDER BY created_at DESC, movement_id DESC LIMIT $%d`, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to list movements", err)
	}
	defer rows.Close()

	movements := []domain.Movement{}
	for rows.Next() {
		movement, err := scanMovement(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan movement row", err)
		}
		movements = append(movements, *movement)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating movement rows", err)
	}

	var newToken *string
	if len(movements) > limit {
		movements = movements[:limit]
		last := movements[len(movements)-1]
		token := pagination.EncodeMovementToken(last.CreatedAt, last.MovementID)
		newToken = &token
	}
	return movements, newToken, nil
}

// CountMovementsForAccount counts movements referencing the account in any
// scope for the year.
func (r *PgxLedgerRepository) CountMovementsForAccount(ctx context.Context, year int, accountCode string) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM ledger_movements WHERE year = $1 AND account_code = $2`
	if err := r.Pool.QueryRow(ctx, query, year, accountCode).Scan(&count); err != nil {
		return 0, apperrors.NewAppError(500, "failed to count account movements", err)
	}
	return count, nil
}

// AggregateTotals sums balances and movement counts per account code. Empty
// scopeType aggregates across all scopes; a scopeType with empty scopeID
// aggregates across that scope type.
func (r *PgxLedgerRepository) AggregateTotals(ctx context.Context, year int, scopeType domain.ScopeType, scopeID string) ([]domain.AccountTotal, error) {
	query := `SELECT account_code, SUM(balance), SUM(movements_count) FROM account_scope_state WHERE year = $1`
	args := []any{year}
	if scopeType != "" {
		args = append(args, scopeType)
		query += fmt.Sprintf(` AND scope_type = $%d`, len(args))
	}
	if scopeID != "" {
		args = append(args, scopeID)
		query += fmt.Sprintf(` AND scope_id = $%d`, len(args))
	}
	query += ` GROUP BY account_code ORDER BY account_code ASC`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to aggregate totals", err)
	}
	defer rows.Close()

	totals := []domain.AccountTotal{}
	for rows.Next() {
		var t domain.AccountTotal
		if err := rows.Scan(&t.AccountCode, &t.Balance, &t.MovementsCount); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan totals row", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating totals rows", err)
	}
	return totals, nil
}

// DeleteStatesForAccount removes every state row of an account across all
// scopes, the cleanup step cascading from account deletion.
func (r *PgxLedgerRepository) DeleteStatesForAccount(ctx context.Context, year int, accountCode string) (int64, error) {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM account_scope_state WHERE year = $1 AND account_code = $2`, year, accountCode)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to delete account states", err)
	}
	return tag.RowsAffected(), nil
}
