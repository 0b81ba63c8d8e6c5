package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chuxolatouz/deu-sisgead-be/internal/apperrors"
	"github.com/chuxolatouz/deu-sisgead-be/internal/core/domain"
	portsrepo "github.com/chuxolatouz/deu-sisgead-be/internal/core/ports/repositories"
	portssvc "github.com/chuxolatouz/deu-sisgead-be/internal/core/ports/services"
	"github.com/chuxolatouz/deu-sisgead-be/internal/dto"
	"github.com/chuxolatouz/deu-sisgead-be/internal/middleware"
	"github.com/chuxolatouz/deu-sisgead-be/internal/platform/metrics"
	"github.com/chuxolatouz/deu-sisgead-be/internal/utils/hierarchy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidScopeType is returned when a scope type is not department,
	// project or global.
	ErrInvalidScopeType = errors.New("invalid scope type")
	// ErrScopeIDRequired is returned when a non-global scope omits its id.
	ErrScopeIDRequired = errors.New("scope id is required")
	// ErrInvalidMovementType is returned for movement types other than
	// debit/credit.
	ErrInvalidMovementType = errors.New("invalid movement type")
	// ErrNonPositiveAmount is returned when an amount is zero or negative.
	// Direction is carried by the movement type, never by the sign.
	ErrNonPositiveAmount = errors.New("amount must be positive")
	// ErrHeaderAccountMovement blocks postings against header accounts, which
	// exist for structure, not value.
	ErrHeaderAccountMovement = errors.New("cannot post to a header account")
	// ErrSelfTransfer blocks transfers whose source and target positions are
	// identical.
	ErrSelfTransfer = errors.New("source and target of a transfer must differ")
	// ErrInvalidInitMode is returned for init modes other than detail_only,
	// all or group:<GROUP>.
	ErrInvalidInitMode = errors.New("invalid init mode")
)

const (
	defaultMovementsLimit = 20
	maxMovementsLimit     = 100
)

// LedgerService implements scoped balance views, scope initialization,
// movement posting and transfers.
type LedgerService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerRepo  portsrepo.LedgerRepositoryFacade
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(accountRepo portsrepo.AccountRepositoryFacade, ledgerRepo portsrepo.LedgerRepositoryFacade) *LedgerService {
	return &LedgerService{accountRepo: accountRepo, ledgerRepo: ledgerRepo}
}

var _ portssvc.LedgerSvcFacade = (*LedgerService)(nil)

// normalizeScopeType validates an optional scope type. Empty means no filter.
func normalizeScopeType(scopeType string) (domain.ScopeType, error) {
	if scopeType == "" {
		return "", nil
	}
	st := domain.ScopeType(strings.ToLower(strings.TrimSpace(scopeType)))
	if !domain.ValidScopeType(st) {
		return "", fmt.Errorf("%w: %s", ErrInvalidScopeType, scopeType)
	}
	return st, nil
}

// resolveScope validates a required scope. The global scope always resolves to
// the fixed global id; every other scope type must name its id.
func resolveScope(scopeType domain.ScopeType, scopeID string) (domain.ScopeType, string, error) {
	if !domain.ValidScopeType(scopeType) {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidScopeType, scopeType)
	}
	if scopeType == domain.ScopeGlobal {
		return scopeType, domain.GlobalScopeID, nil
	}
	scopeID = strings.TrimSpace(scopeID)
	if scopeID == "" {
		return "", "", fmt.Errorf("%w for scope type %s", ErrScopeIDRequired, scopeType)
	}
	return scopeType, scopeID, nil
}

// GetScopeAccounts merges the catalog with one scope's states into a tree.
// Accounts hidden by the filters stay in the tree when a visible descendant
// needs them as an ancestor, so the structure remains navigable.
func (s *LedgerService) GetScopeAccounts(ctx context.Context, p dto.ScopeAccountsParams) (*dto.ScopeAccountsResponse, error) {
	scopeType, scopeID, err := resolveScope(p.ScopeType, p.ScopeID)
	if err != nil {
		return nil, err
	}
	group, err := normalizeGroup(p.Group)
	if err != nil {
		return nil, err
	}

	accounts, err := s.accountRepo.ListAccounts(ctx, p.Year, group)
	if err != nil {
		return nil, err
	}
	states, err := s.ledgerRepo.ListStates(ctx, p.Year, scopeType, scopeID)
	if err != nil {
		return nil, err
	}
	stateByCode := make(map[string]domain.ScopeState, len(states))
	for _, st := range states {
		stateByCode[st.AccountCode] = st
	}

	merged := make([]domain.ScopeAccount, 0, len(accounts))
	byCode := make(map[string]domain.ScopeAccount, len(accounts))
	for _, a := range accounts {
		sa := domain.ScopeAccount{Account: a}
		if st, ok := stateByCode[a.Code]; ok {
			sa.Balance = st.Balance
			sa.MovementsCount = st.MovementsCount
			sa.LastMovementAt = st.LastMovementAt
			sa.HasState = true
		}
		merged = append(merged, sa)
		byCode[a.Code] = sa
	}

	meta := dto.ScopeAccountsMeta{
		AssignedOnly: p.AssignedOnly,
		IncludeZero:  p.IncludeZero,
	}
	visible := map[string]bool{}
	for _, sa := range merged {
		if sa.HasState {
			meta.TotalAssigned++
		}
		if p.AssignedOnly && !sa.HasState {
			continue
		}
		if !p.IncludeZero && sa.Balance.IsZero() && sa.MovementsCount == 0 {
			continue
		}
		visible[sa.Code] = true
	}

	// When zero-balance accounts are hidden, pull back in the ancestors of
	// every visible account so the tree stays navigable. An all-zero subtree
	// has no visible account, so it disappears entirely, headers included.
	kept := visible
	if !p.IncludeZero {
		kept = map[string]bool{}
		for code := range visible {
			for code != "" && !kept[code] {
				kept[code] = true
				sa, ok := byCode[code]
				if !ok {
					break
				}
				code = sa.ParentCode
			}
		}
	}

	filtered := make([]domain.ScopeAccount, 0, len(kept))
	for _, sa := range merged {
		if kept[sa.Code] {
			filtered = append(filtered, sa)
			meta.TotalVisible++
			meta.TotalBalanceVisible = meta.TotalBalanceVisible.Add(sa.Balance)
		}
	}

	tree := hierarchy.Build(filtered,
		func(sa domain.ScopeAccount) string { return sa.Code },
		func(sa domain.ScopeAccount) string { return sa.ParentCode },
	)
	return &dto.ScopeAccountsResponse{
		Year:      p.Year,
		ScopeType: scopeType,
		ScopeID:   scopeID,
		Tree:      tree,
		Meta:      meta,
	}, nil
}

// InitScope bulk-creates zero-balance state rows for a scope. Modes:
// "detail_only" (default) initializes non-header accounts, "all" every
// account, "group:<GROUP>" every account of one group, headers included.
// Existing rows are never touched; the returned count is rows actually
// created.
func (s *LedgerService) InitScope(ctx context.Context, year int, scopeType domain.ScopeType, scopeID, mode string) (int64, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	scopeType, scopeID, err := resolveScope(scopeType, scopeID)
	if err != nil {
		return 0, err
	}

	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" {
		mode = "detail_only"
	}
	group := domain.AccountGroup("")
	includeHeaders := false
	switch {
	case mode == "detail_only":
	case mode == "all":
		includeHeaders = true
	case strings.HasPrefix(mode, "group:"):
		group, err = normalizeGroup(strings.TrimPrefix(mode, "group:"))
		if err != nil {
			return 0, err
		}
		// Group mode filters by group only; headers of the group are
		// initialized like any other account.
		includeHeaders = true
	default:
		return 0, fmt.Errorf("%w: %s", ErrInvalidInitMode, mode)
	}

	accounts, err := s.accountRepo.ListAccounts(ctx, year, group)
	if err != nil {
		return 0, err
	}
	codes := make([]string, 0, len(accounts))
	for _, a := range accounts {
		if a.IsHeader && !includeHeaders {
			continue
		}
		codes = append(codes, a.Code)
	}

	created, err := s.ledgerRepo.InitStates(ctx, year, scopeType, scopeID, codes)
	if err != nil {
		return 0, err
	}
	logger.Info("Scope initialized",
		slog.Int("year", year),
		slog.String("scope_type", string(scopeType)),
		slog.String("scope_id", scopeID),
		slog.String("mode", mode),
		slog.Int64("created", created),
	)
	return created, nil
}

// buildReference promotes well-known correlation keys from the caller-supplied
// map and keeps the rest as extra fields.
func buildReference(raw map[string]string) domain.MovementReference {
	ref := domain.MovementReference{}
	if len(raw) == 0 {
		return ref
	}
	extra := make(map[string]string, len(raw))
	for k, v := range raw {
		switch k {
		case "kind":
			ref.Kind = v
		case "id":
			ref.ID = v
		default:
			extra[k] = v
		}
	}
	if len(extra) > 0 {
		ref.Extra = extra
	}
	return ref
}

// checkHeaderGuard rejects postings against header accounts. The global scope
// is exempt: global aggregates are maintained at every catalog level.
func checkHeaderGuard(account *domain.Account, scopeType domain.ScopeType) error {
	if account.IsHeader && scopeType != domain.ScopeGlobal {
		return fmt.Errorf("%w: %s", ErrHeaderAccountMovement, account.Code)
	}
	return nil
}

// checkFunds rejects a credit that would drive the balance negative. A missing
// state row counts as a zero balance.
func (s *LedgerService) checkFunds(ctx context.Context, year int, scopeType domain.ScopeType, scopeID, accountCode string, amount decimal.Decimal) error {
	balance := decimal.Zero
	state, err := s.ledgerRepo.FindState(ctx, year, scopeType, scopeID, accountCode)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
	} else {
		balance = state.Balance
	}
	if balance.Sub(amount).IsNegative() {
		return fmt.Errorf("%w: balance %s, requested %s", apperrors.ErrInsufficientFunds, balance, amount)
	}
	return nil
}

// CreateMovement validates and posts a single movement, returning it together
// with the updated state.
func (s *LedgerService) CreateMovement(ctx context.Context, req dto.CreateMovementRequest) (*dto.MovementResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	scopeType, scopeID, err := resolveScope(domain.ScopeType(strings.ToLower(strings.TrimSpace(req.ScopeType))), req.ScopeID)
	if err != nil {
		metrics.RejectedPostingsTotal.WithLabelValues("validation").Inc()
		return nil, err
	}
	if !req.Amount.IsPositive() {
		metrics.RejectedPostingsTotal.WithLabelValues("validation").Inc()
		return nil, fmt.Errorf("%w: %s", ErrNonPositiveAmount, req.Amount)
	}
	movementType, ok := domain.ParseMovementType(req.Type)
	if !ok {
		metrics.RejectedPostingsTotal.WithLabelValues("validation").Inc()
		return nil, fmt.Errorf("%w: %s", ErrInvalidMovementType, req.Type)
	}

	account, err := s.accountRepo.FindAccountByCode(ctx, req.Year, req.AccountCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			metrics.RejectedPostingsTotal.WithLabelValues("not_found").Inc()
		}
		return nil, err
	}
	if err := checkHeaderGuard(account, scopeType); err != nil {
		metrics.RejectedPostingsTotal.WithLabelValues("header_account").Inc()
		return nil, err
	}
	if movementType == domain.MovementCredit && !req.AllowNegative {
		if err := s.checkFunds(ctx, req.Year, scopeType, scopeID, req.AccountCode, req.Amount); err != nil {
			if errors.Is(err, apperrors.ErrInsufficientFunds) {
				metrics.RejectedPostingsTotal.WithLabelValues("insufficient_funds").Inc()
			}
			return nil, err
		}
	}

	movement := domain.Movement{
		MovementID:  uuid.NewString(),
		Year:        req.Year,
		ScopeType:   scopeType,
		ScopeID:     scopeID,
		AccountCode: req.AccountCode,
		Type:        movementType,
		Amount:      req.Amount,
		Currency:    domain.DefaultCurrency,
		Description: strings.TrimSpace(req.Description),
		Reference:   buildReference(req.Reference),
		CreatedBy:   req.CreatedBy,
		CreatedAt:   time.Now(),
	}

	state, err := s.ledgerRepo.ApplyMovement(ctx, movement)
	if err != nil {
		return nil, err
	}

	metrics.MovementsTotal.WithLabelValues(string(movementType)).Inc()
	logger.Info("Movement posted",
		slog.String("movement_id", movement.MovementID),
		slog.String("scope_type", string(scopeType)),
		slog.String("scope_id", scopeID),
		slog.String("account_code", movement.AccountCode),
		slog.String("type", string(movementType)),
		slog.String("amount", movement.Amount.String()),
	)
	return &dto.MovementResponse{Movement: &movement, State: state}, nil
}

// TransferBetweenAccounts moves value from one (scope, account) position to
// another as two correlated movements: a credit at the source and a debit at
// the target, sharing one transfer id. The legacy single scopeType/scopeId
// pair fills in whichever endpoint omits its own scope.
func (s *LedgerService) TransferBetweenAccounts(ctx context.Context, req dto.TransferRequest) (*dto.TransferResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	fromType := req.FromScopeType
	if fromType == "" {
		fromType = req.ScopeType
	}
	fromID := req.FromScopeID
	if fromID == "" {
		fromID = req.ScopeID
	}
	toType := req.ToScopeType
	if toType == "" {
		toType = req.ScopeType
	}
	toID := req.ToScopeID
	if toID == "" {
		toID = req.ScopeID
	}

	fromScopeType, fromScopeID, err := resolveScope(domain.ScopeType(strings.ToLower(strings.TrimSpace(fromType))), fromID)
	if err != nil {
		metrics.RejectedPostingsTotal.WithLabelValues("validation").Inc()
		return nil, err
	}
	toScopeType, toScopeID, err := resolveScope(domain.ScopeType(strings.ToLower(strings.TrimSpace(toType))), toID)
	if err != nil {
		metrics.RejectedPostingsTotal.WithLabelValues("validation").Inc()
		return nil, err
	}
	if !req.Amount.IsPositive() {
		metrics.RejectedPostingsTotal.WithLabelValues("validation").Inc()
		return nil, fmt.Errorf("%w: %s", ErrNonPositiveAmount, req.Amount)
	}
	if fromScopeType == toScopeType && fromScopeID == toScopeID && req.FromAccountCode == req.ToAccountCode {
		metrics.RejectedPostingsTotal.WithLabelValues("validation").Inc()
		return nil, ErrSelfTransfer
	}

	fromAccount, err := s.accountRepo.FindAccountByCode(ctx, req.Year, req.FromAccountCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			metrics.RejectedPostingsTotal.WithLabelValues("not_found").Inc()
		}
		return nil, err
	}
	toAccount, err := s.accountRepo.FindAccountByCode(ctx, req.Year, req.ToAccountCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			metrics.RejectedPostingsTotal.WithLabelValues("not_found").Inc()
		}
		return nil, err
	}
	// Transfers only move value between detail accounts; unlike single
	// postings, the global scope gets no header exception here.
	if fromAccount.IsHeader {
		metrics.RejectedPostingsTotal.WithLabelValues("header_account").Inc()
		return nil, fmt.Errorf("%w: %s", ErrHeaderAccountMovement, fromAccount.Code)
	}
	if toAccount.IsHeader {
		metrics.RejectedPostingsTotal.WithLabelValues("header_account").Inc()
		return nil, fmt.Errorf("%w: %s", ErrHeaderAccountMovement, toAccount.Code)
	}
	if !req.AllowNegative {
		if err := s.checkFunds(ctx, req.Year, fromScopeType, fromScopeID, req.FromAccountCode, req.Amount); err != nil {
			if errors.Is(err, apperrors.ErrInsufficientFunds) {
				metrics.RejectedPostingsTotal.WithLabelValues("insufficient_funds").Inc()
			}
			return nil, err
		}
	}

	// Each leg carries the caller's description, or a default naming the
	// opposite endpoint when none was given.
	sourceDescription := strings.TrimSpace(req.Description)
	targetDescription := sourceDescription
	if sourceDescription == "" {
		sourceDescription = "Transferencia a " + req.ToAccountCode
		targetDescription = "Transferencia desde " + req.FromAccountCode
	}

	transferID := uuid.NewString()
	now := time.Now()
	reference := buildReference(req.Reference)
	reference.Kind = domain.ReferenceKindTransfer
	reference.ID = transferID
	reference.FromScopeType = fromScopeType
	reference.FromScopeID = fromScopeID
	reference.ToScopeType = toScopeType
	reference.ToScopeID = toScopeID

	source := domain.Movement{
		MovementID:  uuid.NewString(),
		Year:        req.Year,
		ScopeType:   fromScopeType,
		ScopeID:     fromScopeID,
		AccountCode: req.FromAccountCode,
		Type:        domain.MovementCredit,
		Amount:      req.Amount,
		Currency:    domain.DefaultCurrency,
		Description: sourceDescription,
		Reference:   reference,
		CreatedBy:   req.CreatedBy,
		CreatedAt:   now,
	}
	target := domain.Movement{
		MovementID:  uuid.NewString(),
		Year:        req.Year,
		ScopeType:   toScopeType,
		ScopeID:     toScopeID,
		AccountCode: req.ToAccountCode,
		Type:        domain.MovementDebit,
		Amount:      req.Amount,
		Currency:    domain.DefaultCurrency,
		Description: targetDescription,
		Reference:   reference,
		CreatedBy:   req.CreatedBy,
		CreatedAt:   now,
	}

	sourceState, targetState, err := s.ledgerRepo.ApplyTransfer(ctx, source, target)
	if err != nil {
		return nil, err
	}

	metrics.TransfersTotal.Inc()
	metrics.MovementsTotal.WithLabelValues(string(domain.MovementCredit)).Inc()
	metrics.MovementsTotal.WithLabelValues(string(domain.MovementDebit)).Inc()
	logger.Info("Transfer completed",
		slog.String("transfer_id", transferID),
		slog.String("from", fromScopeID+"/"+req.FromAccountCode),
		slog.String("to", toScopeID+"/"+req.ToAccountCode),
		slog.String("amount", req.Amount.String()),
	)
	return &dto.TransferResult{
		TransferID:      transferID,
		FromScopeType:   fromScopeType,
		FromScopeID:     fromScopeID,
		ToScopeType:     toScopeType,
		ToScopeID:       toScopeID,
		FromAccountCode: req.FromAccountCode,
		ToAccountCode:   req.ToAccountCode,
		Amount:          req.Amount,
		SourceState:     sourceState,
		TargetState:     targetState,
	}, nil
}

// ListMovements returns one page of a scope's movements, newest first.
func (s *LedgerService) ListMovements(ctx context.Context, year int, scopeType domain.ScopeType, scopeID string, limit int, nextToken *string) (*dto.ListMovementsResponse, error) {
	scopeType, scopeID, err := resolveScope(scopeType, scopeID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultMovementsLimit
	}
	if limit > maxMovementsLimit {
		limit = maxMovementsLimit
	}

	movements, token, err := s.ledgerRepo.ListMovements(ctx, year, scopeType, scopeID, limit, nextToken)
	if err != nil {
		return nil, err
	}
	return &dto.ListMovementsResponse{Movements: movements, NextToken: token}, nil
}
