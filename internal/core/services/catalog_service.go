package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/chuxolatouz/deu-sisgead-be/internal/apperrors"
	"github.com/chuxolatouz/deu-sisgead-be/internal/core/domain"
	portsrepo "github.com/chuxolatouz/deu-sisgead-be/internal/core/ports/repositories"
	portssvc "github.com/chuxolatouz/deu-sisgead-be/internal/core/ports/services"
	"github.com/chuxolatouz/deu-sisgead-be/internal/dto"
	"github.com/chuxolatouz/deu-sisgead-be/internal/middleware"
	"github.com/chuxolatouz/deu-sisgead-be/internal/utils/hierarchy"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAccountGroup is returned when a group filter or field is not
	// one of the known groups.
	ErrInvalidAccountGroup = errors.New("invalid account group")
	// ErrInvalidAccountCode is returned when an account code is not a
	// fixed-length numeric string.
	ErrInvalidAccountCode = errors.New("invalid account code")
	// ErrAccountHasChildren blocks deletion of an account other accounts
	// still point to as parent.
	ErrAccountHasChildren = errors.New("account has child accounts")
	// ErrAccountHasMovements blocks deletion of an account referenced by
	// ledger movements.
	ErrAccountHasMovements = errors.New("account has recorded movements")
	// ErrParentAccountNotFound is returned when a referenced parent code does
	// not exist in the year's catalog.
	ErrParentAccountNotFound = errors.New("parent account not found")
)

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 500
)

// CatalogService implements the chart-of-accounts operations.
type CatalogService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerRepo  portsrepo.LedgerRepositoryFacade
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(accountRepo portsrepo.AccountRepositoryFacade, ledgerRepo portsrepo.LedgerRepositoryFacade) *CatalogService {
	return &CatalogService{accountRepo: accountRepo, ledgerRepo: ledgerRepo}
}

var _ portssvc.CatalogSvcFacade = (*CatalogService)(nil)

// normalizeGroup validates an optional group filter. Empty means no filter.
func normalizeGroup(group string) (domain.AccountGroup, error) {
	if group == "" {
		return "", nil
	}
	g := domain.AccountGroup(strings.ToUpper(strings.TrimSpace(group)))
	if !domain.ValidAccountGroup(g) {
		return "", fmt.Errorf("%w: %s", ErrInvalidAccountGroup, group)
	}
	return g, nil
}

// SearchAccounts matches accounts by code prefix or description substring.
// Limit is clamped to [1, 500] with a default of 50.
func (s *CatalogService) SearchAccounts(ctx context.Context, year int, query, group string, limit int) ([]domain.Account, error) {
	g, err := normalizeGroup(group)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	return s.accountRepo.SearchAccounts(ctx, year, strings.TrimSpace(query), g, limit)
}

// AccountTree returns the year's catalog assembled into a forest. Group
// filtering happens before assembly, so subtrees orphaned by the filter
// surface as extra roots.
func (s *CatalogService) AccountTree(ctx context.Context, year int, group string) ([]*hierarchy.Node[domain.Account], error) {
	g, err := normalizeGroup(group)
	if err != nil {
		return nil, err
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, year, g)
	if err != nil {
		return nil, err
	}
	return hierarchy.Build(accounts,
		func(a domain.Account) string { return a.Code },
		func(a domain.Account) string { return a.ParentCode },
	), nil
}

// ConsolidatedTotals aggregates scope-state balances per account and rolls
// them up to each account's ultimate root ancestor. Roots missing from the
// catalog (states referencing since-deleted accounts) keep their code with an
// "N/A" description rather than being dropped.
func (s *CatalogService) ConsolidatedTotals(ctx context.Context, year int, scopeType, scopeID string) (*domain.ConsolidatedTotals, error) {
	st, err := normalizeScopeType(scopeType)
	if err != nil {
		return nil, err
	}

	totals, err := s.ledgerRepo.AggregateTotals(ctx, year, st, scopeID)
	if err != nil {
		return nil, err
	}

	accounts, err := s.accountRepo.ListAccounts(ctx, year, "")
	if err != nil {
		return nil, err
	}
	parents := make(map[string]string, len(accounts))
	descriptions := make(map[string]string, len(accounts))
	for _, a := range accounts {
		parents[a.Code] = a.ParentCode
		descriptions[a.Code] = a.Description
	}

	rootBalances := map[string]decimal.Decimal{}
	rootOrder := []string{}
	for _, t := range totals {
		root := hierarchy.Root(t.AccountCode, parents)
		if _, seen := rootBalances[root]; !seen {
			rootOrder = append(rootOrder, root)
		}
		rootBalances[root] = rootBalances[root].Add(t.Balance)
	}
	sort.Strings(rootOrder)

	byRoot := make([]domain.RootTotal, 0, len(rootOrder))
	for _, root := range rootOrder {
		description, ok := descriptions[root]
		if !ok {
			description = "N/A"
		}
		byRoot = append(byRoot, domain.RootTotal{
			RootCode:    root,
			Description: description,
			Balance:     rootBalances[root],
		})
	}

	return &domain.ConsolidatedTotals{
		Year:            year,
		TotalsByAccount: totals,
		TotalsByRoot:    byRoot,
	}, nil
}

// ListAccounts is the offset-paged admin listing with balances merged in.
func (s *CatalogService) ListAccounts(ctx context.Context, p dto.ListCatalogAccountsParams) (*dto.ListCatalogAccountsResponse, error) {
	g, err := normalizeGroup(p.Group)
	if err != nil {
		return nil, err
	}
	st, err := normalizeScopeType(p.ScopeType)
	if err != nil {
		return nil, err
	}
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > maxSearchLimit {
		p.Limit = maxSearchLimit
	}
	if p.Page < 0 {
		p.Page = 0
	}

	accounts, total, err := s.accountRepo.ListAccountsPaged(ctx, p.Year, strings.TrimSpace(p.Query), g, p.Limit, p.Page*p.Limit)
	if err != nil {
		return nil, err
	}

	totals, err := s.ledgerRepo.AggregateTotals(ctx, p.Year, st, p.ScopeID)
	if err != nil {
		return nil, err
	}
	balances := make(map[string]decimal.Decimal, len(totals))
	for _, t := range totals {
		balances[t.AccountCode] = t.Balance
	}

	rows := make([]dto.CatalogAccountRow, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, dto.CatalogAccountRow{Account: a, Balance: balances[a.Code]})
	}
	return &dto.ListCatalogAccountsResponse{Accounts: rows, Count: total}, nil
}

// CreateAccount creates a catalog account administratively. Code must be a
// fixed-length numeric string and a referenced parent must already exist.
func (s *CatalogService) CreateAccount(ctx context.Context, req dto.CreateCatalogAccountRequest) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !domain.ValidAccountCode(req.Code) {
		return nil, fmt.Errorf("%w: %q must be %d digits", ErrInvalidAccountCode, req.Code, domain.AccountCodeLength)
	}
	group := domain.AccountGroup(strings.ToUpper(strings.TrimSpace(req.Group)))
	if !domain.ValidAccountGroup(group) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAccountGroup, req.Group)
	}
	if req.ParentCode != "" {
		if _, err := s.accountRepo.FindAccountByCode(ctx, req.Year, req.ParentCode); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrParentAccountNotFound, req.ParentCode)
			}
			return nil, err
		}
	}

	now := time.Now()
	account := domain.Account{
		Year:        req.Year,
		Code:        req.Code,
		Description: strings.TrimSpace(req.Description),
		Group:       group,
		IsHeader:    req.IsHeader,
		Level:       req.Level,
		ParentCode:  req.ParentCode,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		return nil, err
	}

	logger.Info("Catalog account created", slog.Int("year", account.Year), slog.String("code", account.Code))
	return &account, nil
}

// UpdateAccount applies the provided fields to an existing account. Code and
// year are immutable.
func (s *CatalogService) UpdateAccount(ctx context.Context, year int, code string, req dto.UpdateCatalogAccountRequest) (*domain.Account, error) {
	update := domain.AccountUpdate{
		Description: req.Description,
		IsHeader:    req.IsHeader,
		Level:       req.Level,
		ParentCode:  req.ParentCode,
	}
	if req.Group != nil {
		group := domain.AccountGroup(strings.ToUpper(strings.TrimSpace(*req.Group)))
		if !domain.ValidAccountGroup(group) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidAccountGroup, *req.Group)
		}
		update.Group = &group
	}
	if req.ParentCode != nil && *req.ParentCode != "" {
		if *req.ParentCode == code {
			return nil, fmt.Errorf("%w: account cannot be its own parent", ErrParentAccountNotFound)
		}
		if _, err := s.accountRepo.FindAccountByCode(ctx, year, *req.ParentCode); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrParentAccountNotFound, *req.ParentCode)
			}
			return nil, err
		}
	}
	return s.accountRepo.UpdateAccount(ctx, year, code, update)
}

// DeleteAccount removes a catalog account. Deletion is blocked while other
// accounts reference it as parent or ledger movements reference it; orphaned
// state rows are cleaned up after the account row goes.
func (s *CatalogService) DeleteAccount(ctx context.Context, year int, code string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.accountRepo.FindAccountByCode(ctx, year, code); err != nil {
		return err
	}

	children, err := s.accountRepo.CountChildren(ctx, year, code)
	if err != nil {
		return err
	}
	if children > 0 {
		return fmt.Errorf("%w: %d children", ErrAccountHasChildren, children)
	}

	movements, err := s.ledgerRepo.CountMovementsForAccount(ctx, year, code)
	if err != nil {
		return err
	}
	if movements > 0 {
		return fmt.Errorf("%w: %d movements", ErrAccountHasMovements, movements)
	}

	if err := s.accountRepo.DeleteAccount(ctx, year, code); err != nil {
		return err
	}
	deletedStates, err := s.ledgerRepo.DeleteStatesForAccount(ctx, year, code)
	if err != nil {
		return err
	}

	logger.Info("Catalog account deleted",
		slog.Int("year", year),
		slog.String("code", code),
		slog.Int64("deleted_states", deletedStates),
	)
	return nil
}
