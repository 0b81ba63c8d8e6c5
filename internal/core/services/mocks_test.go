package services_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chuxolatouz/deu-sisgead-be/internal/apperrors"
	"github.com/chuxolatouz/deu-sisgead-be/internal/core/domain"
	portsrepo "github.com/chuxolatouz/deu-sisgead-be/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, year int, code string) (*domain.Account, error) {
	args := m.Called(ctx, year, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, year int, group domain.AccountGroup) ([]domain.Account, error) {
	args := m.Called(ctx, year, group)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SearchAccounts(ctx context.Context, year int, query string, group domain.AccountGroup, limit int) ([]domain.Account, error) {
	args := m.Called(ctx, year, query, group, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccountsPaged(ctx context.Context, year int, query string, group domain.AccountGroup, limit, offset int) ([]domain.Account, int64, error) {
	args := m.Called(ctx, year, query, group, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Account), args.Get(1).(int64), args.Error(2)
}

func (m *MockAccountRepository) CountChildren(ctx context.Context, year int, code string) (int64, error) {
	args := m.Called(ctx, year, code)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, year int, code string, update domain.AccountUpdate) (*domain.Account, error) {
	args := m.Called(ctx, year, code, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) DeleteAccount(ctx context.Context, year int, code string) error {
	args := m.Called(ctx, year, code)
	return args.Error(0)
}

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

var _ portsrepo.LedgerRepositoryFacade = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) FindState(ctx context.Context, year int, scopeType domain.ScopeType, scopeID, accountCode string) (*domain.ScopeState, error) {
	args := m.Called(ctx, year, scopeType, scopeID, accountCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScopeState), args.Error(1)
}

func (m *MockLedgerRepository) ListStates(ctx context.Context, year int, scopeType domain.ScopeType, scopeID string) ([]domain.ScopeState, error) {
	args := m.Called(ctx, year, scopeType, scopeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScopeState), args.Error(1)
}

func (m *MockLedgerRepository) InitStates(ctx context.Context, year int, scopeType domain.ScopeType, scopeID string, accountCodes []string) (int64, error) {
	args := m.Called(ctx, year, scopeType, scopeID, accountCodes)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) ApplyMovement(ctx context.Context, movement domain.Movement) (*domain.ScopeState, error) {
	args := m.Called(ctx, movement)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScopeState), args.Error(1)
}

func (m *MockLedgerRepository) ApplyTransfer(ctx context.Context, source, target domain.Movement) (*domain.ScopeState, *domain.ScopeState, error) {
	args := m.Called(ctx, source, target)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.ScopeState), args.Get(1).(*domain.ScopeState), args.Error(2)
}

func (m *MockLedgerRepository) ListMovements(ctx context.Context, year int, scopeType domain.ScopeType, scopeID string, limit int, nextToken *string) ([]domain.Movement, *string, error) {
	args := m.Called(ctx, year, scopeType, scopeID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedToken = &tokenVal
	}
	return args.Get(0).([]domain.Movement), returnedToken, args.Error(2)
}

func (m *MockLedgerRepository) CountMovementsForAccount(ctx context.Context, year int, accountCode string) (int64, error) {
	args := m.Called(ctx, year, accountCode)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) AggregateTotals(ctx context.Context, year int, scopeType domain.ScopeType, scopeID string) ([]domain.AccountTotal, error) {
	args := m.Called(ctx, year, scopeType, scopeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountTotal), args.Error(1)
}

func (m *MockLedgerRepository) DeleteStatesForAccount(ctx context.Context, year int, accountCode string) (int64, error) {
	args := m.Called(ctx, year, accountCode)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock MasterRepository ---
type MockMasterRepository struct {
	mock.Mock
}

var _ portsrepo.MasterRepositoryFacade = (*MockMasterRepository)(nil)

func (m *MockMasterRepository) UpsertAccounts(ctx context.Context, accounts []domain.Account) (int64, error) {
	args := m.Called(ctx, accounts)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMasterRepository) UpsertUnits(ctx context.Context, units []domain.Unit) (int64, error) {
	args := m.Called(ctx, units)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMasterRepository) UpsertFundingSources(ctx context.Context, sources []domain.FundingSource) (int64, error) {
	args := m.Called(ctx, sources)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMasterRepository) UpsertBudgetCategories(ctx context.Context, categories []domain.BudgetCategory) (int64, error) {
	args := m.Called(ctx, categories)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMasterRepository) DeleteMasterData(ctx context.Context, year int) error {
	args := m.Called(ctx, year)
	return args.Error(0)
}

func (m *MockMasterRepository) ListUnits(ctx context.Context, year int) ([]domain.Unit, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Unit), args.Error(1)
}

// --- Mock DepartmentRepository ---
type MockDepartmentRepository struct {
	mock.Mock
}

var _ portsrepo.DepartmentRepositoryFacade = (*MockDepartmentRepository)(nil)

func (m *MockDepartmentRepository) FindByUnitCode(ctx context.Context, code string) (*domain.Department, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Department), args.Error(1)
}

func (m *MockDepartmentRepository) SaveDepartment(ctx context.Context, department domain.Department) error {
	args := m.Called(ctx, department)
	return args.Error(0)
}

func (m *MockDepartmentRepository) UpdateDepartment(ctx context.Context, department domain.Department) error {
	args := m.Called(ctx, department)
	return args.Error(0)
}

func (m *MockDepartmentRepository) SetParentDepartment(ctx context.Context, departmentID, parentDepartmentID string) error {
	args := m.Called(ctx, departmentID, parentDepartmentID)
	return args.Error(0)
}

// --- In-memory ledger fake ---
//
// fakeLedgerRepo applies movements against an in-memory state map the same
// way the real repository does (signed delta, count increment), so tests can
// check the balance invariant over whole movement sequences.
type fakeLedgerRepo struct {
	mu        sync.Mutex
	states    map[string]*domain.ScopeState
	movements []domain.Movement
}

var _ portsrepo.LedgerRepositoryFacade = (*fakeLedgerRepo)(nil)

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{states: map[string]*domain.ScopeState{}}
}

func stateKey(year int, scopeType domain.ScopeType, scopeID, accountCode string) string {
	return fmt.Sprintf("%d|%s|%s|%s", year, scopeType, scopeID, accountCode)
}

func (f *fakeLedgerRepo) apply(m domain.Movement) *domain.ScopeState {
	key := stateKey(m.Year, m.ScopeType, m.ScopeID, m.AccountCode)
	st, ok := f.states[key]
	if !ok {
		st = &domain.ScopeState{
			Year:        m.Year,
			ScopeType:   m.ScopeType,
			ScopeID:     m.ScopeID,
			AccountCode: m.AccountCode,
			Balance:     decimal.Zero,
			CreatedAt:   m.CreatedAt,
		}
		f.states[key] = st
	}
	st.Balance = st.Balance.Add(m.Delta())
	st.MovementsCount++
	at := m.CreatedAt
	st.LastMovementAt = &at
	st.UpdatedAt = m.CreatedAt
	f.movements = append(f.movements, m)
	copied := *st
	return &copied
}

func (f *fakeLedgerRepo) FindState(ctx context.Context, year int, scopeType domain.ScopeType, scopeID, accountCode string) (*domain.ScopeState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.states[stateKey(year, scopeType, scopeID, accountCode)]
	if !ok {
		return nil, apperrors.NewNotFoundError("no state")
	}
	copied := *st
	return &copied, nil
}

func (f *fakeLedgerRepo) ListStates(ctx context.Context, year int, scopeType domain.ScopeType, scopeID string) ([]domain.ScopeState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.ScopeState{}
	for _, st := range f.states {
		if st.Year == year && st.ScopeType == scopeType && st.ScopeID == scopeID {
			out = append(out, *st)
		}
	}
	return out, nil
}

func (f *fakeLedgerRepo) InitStates(ctx context.Context, year int, scopeType domain.ScopeType, scopeID string, accountCodes []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var created int64
	now := time.Now()
	for _, code := range accountCodes {
		key := stateKey(year, scopeType, scopeID, code)
		if _, ok := f.states[key]; ok {
			continue
		}
		f.states[key] = &domain.ScopeState{
			Year:        year,
			ScopeType:   scopeType,
			ScopeID:     scopeID,
			AccountCode: code,
			Balance:     decimal.Zero,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		created++
	}
	return created, nil
}

func (f *fakeLedgerRepo) ApplyMovement(ctx context.Context, movement domain.Movement) (*domain.ScopeState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.apply(movement), nil
}

func (f *fakeLedgerRepo) ApplyTransfer(ctx context.Context, source, target domain.Movement) (*domain.ScopeState, *domain.ScopeState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.apply(source), f.apply(target), nil
}

func (f *fakeLedgerRepo) ListMovements(ctx context.Context, year int, scopeType domain.ScopeType, scopeID string, limit int, nextToken *string) ([]domain.Movement, *string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Movement{}
	for i := len(f.movements) - 1; i >= 0 && len(out) < limit; i-- {
		m := f.movements[i]
		if m.Year == year && m.ScopeType == scopeType && m.ScopeID == scopeID {
			out = append(out, m)
		}
	}
	return out, nil, nil
}

func (f *fakeLedgerRepo) CountMovementsForAccount(ctx context.Context, year int, accountCode string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, m := range f.movements {
		if m.Year == year && m.AccountCode == accountCode {
			count++
		}
	}
	return count, nil
}

func (f *fakeLedgerRepo) AggregateTotals(ctx context.Context, year int, scopeType domain.ScopeType, scopeID string) ([]domain.AccountTotal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byCode := map[string]*domain.AccountTotal{}
	for _, st := range f.states {
		if st.Year != year {
			continue
		}
		if scopeType != "" && st.ScopeType != scopeType {
			continue
		}
		if scopeID != "" && st.ScopeID != scopeID {
			continue
		}
		t, ok := byCode[st.AccountCode]
		if !ok {
			t = &domain.AccountTotal{AccountCode: st.AccountCode}
			byCode[st.AccountCode] = t
		}
		t.Balance = t.Balance.Add(st.Balance)
		t.MovementsCount += st.MovementsCount
	}
	out := []domain.AccountTotal{}
	for _, t := range byCode {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeLedgerRepo) DeleteStatesForAccount(ctx context.Context, year int, accountCode string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for key, st := range f.states {
		if st.Year == year && st.AccountCode == accountCode {
			delete(f.states, key)
			deleted++
		}
	}
	return deleted, nil
}
