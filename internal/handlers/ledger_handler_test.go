package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chuxolatouz/deu-sisgead-be/internal/apperrors"
	"github.com/chuxolatouz/deu-sisgead-be/internal/core/domain"
	"github.com/chuxolatouz/deu-sisgead-be/internal/core/services"
	"github.com/chuxolatouz/deu-sisgead-be/internal/dto"
	"github.com/chuxolatouz/deu-sisgead-be/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetScopeAccounts(ctx context.Context, p dto.ScopeAccountsParams) (*dto.ScopeAccountsResponse, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ScopeAccountsResponse), args.Error(1)
}

func (m *MockLedgerService) InitScope(ctx context.Context, year int, scopeType domain.ScopeType, scopeID, mode string) (int64, error) {
	args := m.Called(ctx, year, scopeType, scopeID, mode)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) CreateMovement(ctx context.Context, req dto.CreateMovementRequest) (*dto.MovementResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.MovementResponse), args.Error(1)
}

func (m *MockLedgerService) TransferBetweenAccounts(ctx context.Context, req dto.TransferRequest) (*dto.TransferResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TransferResult), args.Error(1)
}

func (m *MockLedgerService) ListMovements(ctx context.Context, year int, scopeType domain.ScopeType, scopeID string, limit int, nextToken *string) (*dto.ListMovementsResponse, error) {
	args := m.Called(ctx, year, scopeType, scopeID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListMovementsResponse), args.Error(1)
}

func setupLedgerRouter(svc *MockLedgerService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{DefaultYear: 2025, AllowNegativeBalances: false}
	handler := NewLedgerHandler(svc, cfg)

	r := gin.New()
	scopes := r.Group("/scopes/:scopeType/:scopeId")
	scopes.POST("/movements", handler.CreateMovement)
	r.POST("/transfers", handler.Transfer)
	return r
}

func TestCreateMovementHandler_Success(t *testing.T) {
	svc := new(MockLedgerService)
	router := setupLedgerRouter(svc)

	movement := &domain.Movement{
		MovementID:  "mv-1",
		Year:        2025,
		ScopeType:   domain.ScopeDepartment,
		ScopeID:     "dep-1",
		AccountCode: "401010100000",
		Type:        domain.MovementDebit,
		Amount:      decimal.RequireFromString("100"),
	}
	state := &domain.ScopeState{Balance: decimal.RequireFromString("100"), MovementsCount: 1}
	svc.On("CreateMovement", mock.Anything, mock.MatchedBy(func(req dto.CreateMovementRequest) bool {
		// The handler owns year defaulting and scope routing.
		return req.Year == 2025 && req.ScopeType == "department" && req.ScopeID == "dep-1" && !req.AllowNegative
	})).Return(&dto.MovementResponse{Movement: movement, State: state}, nil)

	body := `{"accountCode":"401010100000","type":"debit","amount":"100"}`
	req := httptest.NewRequest(http.MethodPost, "/scopes/department/dep-1/movements", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp dto.MovementResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "mv-1", resp.Movement.MovementID)
	assert.True(t, resp.State.Balance.Equal(decimal.RequireFromString("100")))
}

func TestCreateMovementHandler_InvalidBody(t *testing.T) {
	svc := new(MockLedgerService)
	router := setupLedgerRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/scopes/department/dep-1/movements", bytes.NewBufferString(`{"type":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "CreateMovement", mock.Anything, mock.Anything)
}

func TestCreateMovementHandler_ErrorMapping(t *testing.T) {
	testCases := []struct {
		name       string
		svcErr     error
		wantStatus int
	}{
		{"insufficient funds", apperrors.ErrInsufficientFunds, http.StatusBadRequest},
		{"header account", services.ErrHeaderAccountMovement, http.StatusBadRequest},
		{"account missing", apperrors.NewNotFoundError("account not found"), http.StatusNotFound},
		{"duplicate", apperrors.ErrDuplicate, http.StatusConflict},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockLedgerService)
			router := setupLedgerRouter(svc)
			svc.On("CreateMovement", mock.Anything, mock.Anything).Return(nil, tc.svcErr)

			body := `{"accountCode":"401010100000","type":"debit","amount":"100"}`
			req := httptest.NewRequest(http.MethodPost, "/scopes/department/dep-1/movements", bytes.NewBufferString(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
		})
	}
}

func TestTransferHandler_Success(t *testing.T) {
	svc := new(MockLedgerService)
	router := setupLedgerRouter(svc)

	svc.On("TransferBetweenAccounts", mock.Anything, mock.MatchedBy(func(req dto.TransferRequest) bool {
		return req.Year == 2025 && req.FromScopeID == "dep-1" && req.ToScopeID == "proj-9"
	})).Return(&dto.TransferResult{TransferID: "tr-1", Amount: decimal.RequireFromString("200")}, nil)

	body := `{"fromScopeType":"department","fromScopeId":"dep-1","toScopeType":"project","toScopeId":"proj-9","fromAccountCode":"401010100000","toAccountCode":"401010100000","amount":"200"}`
	req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var result dto.TransferResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "tr-1", result.TransferID)
}
