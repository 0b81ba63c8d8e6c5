package services_test

import (
	"context"
	"testing"

	"github.com/chuxolatouz/deu-sisgead-be/internal/apperrors"
	"github.com/chuxolatouz/deu-sisgead-be/internal/core/domain"
	"github.com/chuxolatouz/deu-sisgead-be/internal/core/services"
	"github.com/chuxolatouz/deu-sisgead-be/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CatalogServiceTestSuite struct {
	suite.Suite
	ctx         context.Context
	accountRepo *MockAccountRepository
	ledgerRepo  *MockLedgerRepository
	service     *services.CatalogService
}

func (s *CatalogServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.accountRepo = new(MockAccountRepository)
	s.ledgerRepo = new(MockLedgerRepository)
	s.service = services.NewCatalogService(s.accountRepo, s.ledgerRepo)
}

func TestCatalogServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogServiceTestSuite))
}

func (s *CatalogServiceTestSuite) TestSearchAccounts_ClampsLimit() {
	s.accountRepo.On("SearchAccounts", s.ctx, testYear, "401", domain.AccountGroup(""), 50).
		Return([]domain.Account{}, nil).Once()
	_, err := s.service.SearchAccounts(s.ctx, testYear, "401", "", 0)
	require.NoError(s.T(), err)

	s.accountRepo.On("SearchAccounts", s.ctx, testYear, "401", domain.AccountGroup(""), 500).
		Return([]domain.Account{}, nil).Once()
	_, err = s.service.SearchAccounts(s.ctx, testYear, "401", "", 9999)
	require.NoError(s.T(), err)

	s.accountRepo.AssertExpectations(s.T())
}

func (s *CatalogServiceTestSuite) TestSearchAccounts_NormalizesGroup() {
	s.accountRepo.On("SearchAccounts", s.ctx, testYear, "", domain.GroupEgreso, 50).
		Return([]domain.Account{}, nil).Once()
	_, err := s.service.SearchAccounts(s.ctx, testYear, "", "egreso", 50)
	require.NoError(s.T(), err)

	_, err = s.service.SearchAccounts(s.ctx, testYear, "", "ACTIVO", 50)
	assert.ErrorIs(s.T(), err, services.ErrInvalidAccountGroup)
}

func (s *CatalogServiceTestSuite) TestAccountTree_OrphansBecomeRoots() {
	header := *headerAccount("401000000000")
	child := *detailAccount("401010100000")
	child.ParentCode = header.Code
	orphan := *detailAccount("402010100000")
	orphan.ParentCode = "402000000000" // parent filtered out of the listing

	s.accountRepo.On("ListAccounts", s.ctx, testYear, domain.GroupEgreso).
		Return([]domain.Account{header, child, orphan}, nil)

	tree, err := s.service.AccountTree(s.ctx, testYear, "EGRESO")
	require.NoError(s.T(), err)

	require.Len(s.T(), tree, 2)
	assert.Equal(s.T(), header.Code, tree[0].Item.Code)
	require.Len(s.T(), tree[0].Children, 1)
	assert.Equal(s.T(), child.Code, tree[0].Children[0].Item.Code)
	assert.Equal(s.T(), orphan.Code, tree[1].Item.Code)
}

func (s *CatalogServiceTestSuite) TestConsolidatedTotals_RollsUpToRoots() {
	root := *headerAccount("401000000000")
	mid := *headerAccount("401010000000")
	mid.ParentCode = root.Code
	leafA := *detailAccount("401010100000")
	leafA.ParentCode = mid.Code
	leafB := *detailAccount("401010200000")
	leafB.ParentCode = mid.Code

	// The 999 entry comes first so root order cannot be inherited from the
	// aggregation; roots are reported sorted by code.
	s.ledgerRepo.On("AggregateTotals", s.ctx, testYear, domain.ScopeType(""), "").Return([]domain.AccountTotal{
		{AccountCode: "999010100000", Balance: decimal.RequireFromString("7"), MovementsCount: 1},
		{AccountCode: leafA.Code, Balance: decimal.RequireFromString("100"), MovementsCount: 2},
		{AccountCode: leafB.Code, Balance: decimal.RequireFromString("50"), MovementsCount: 1},
	}, nil)
	s.accountRepo.On("ListAccounts", s.ctx, testYear, domain.AccountGroup("")).
		Return([]domain.Account{root, mid, leafA, leafB}, nil)

	totals, err := s.service.ConsolidatedTotals(s.ctx, testYear, "", "")
	require.NoError(s.T(), err)

	assert.Len(s.T(), totals.TotalsByAccount, 3)
	require.Len(s.T(), totals.TotalsByRoot, 2)

	assert.Equal(s.T(), root.Code, totals.TotalsByRoot[0].RootCode)
	assert.Equal(s.T(), root.Description, totals.TotalsByRoot[0].Description)
	assert.True(s.T(), totals.TotalsByRoot[0].Balance.Equal(decimal.RequireFromString("150")))

	// States referencing codes outside the catalog keep their code as root
	// with a placeholder description.
	assert.Equal(s.T(), "999010100000", totals.TotalsByRoot[1].RootCode)
	assert.Equal(s.T(), "N/A", totals.TotalsByRoot[1].Description)
	assert.True(s.T(), totals.TotalsByRoot[1].Balance.Equal(decimal.RequireFromString("7")))
}

func (s *CatalogServiceTestSuite) TestListAccounts_MergesBalances() {
	a := *detailAccount("401010100000")
	b := *detailAccount("401010200000")

	s.accountRepo.On("ListAccountsPaged", s.ctx, testYear, "", domain.AccountGroup(""), 20, 20).
		Return([]domain.Account{a, b}, int64(42), nil)
	s.ledgerRepo.On("AggregateTotals", s.ctx, testYear, domain.ScopeType(""), "").Return([]domain.AccountTotal{
		{AccountCode: a.Code, Balance: decimal.RequireFromString("12.34")},
	}, nil)

	resp, err := s.service.ListAccounts(s.ctx, dto.ListCatalogAccountsParams{Year: testYear, Page: 1, Limit: 20})
	require.NoError(s.T(), err)

	assert.Equal(s.T(), int64(42), resp.Count)
	require.Len(s.T(), resp.Accounts, 2)
	assert.True(s.T(), resp.Accounts[0].Balance.Equal(decimal.RequireFromString("12.34")))
	assert.True(s.T(), resp.Accounts[1].Balance.IsZero())
}

func (s *CatalogServiceTestSuite) TestCreateAccount_ValidatesCode() {
	testCases := []string{"", "401", "40101010000X", "4010101000001"}
	for _, code := range testCases {
		_, err := s.service.CreateAccount(s.ctx, dto.CreateCatalogAccountRequest{
			Year: testYear, Code: code, Description: "x", Group: "EGRESO",
		})
		assert.ErrorIs(s.T(), err, services.ErrInvalidAccountCode, "code %q", code)
	}
	s.accountRepo.AssertNotCalled(s.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (s *CatalogServiceTestSuite) TestCreateAccount_RequiresExistingParent() {
	s.accountRepo.On("FindAccountByCode", s.ctx, testYear, "401000000000").
		Return(nil, apperrors.NewNotFoundError("not found"))

	_, err := s.service.CreateAccount(s.ctx, dto.CreateCatalogAccountRequest{
		Year: testYear, Code: "401010100000", Description: "x", Group: "EGRESO", ParentCode: "401000000000",
	})
	assert.ErrorIs(s.T(), err, services.ErrParentAccountNotFound)
}

func (s *CatalogServiceTestSuite) TestCreateAccount_Succeeds() {
	s.accountRepo.On("FindAccountByCode", s.ctx, testYear, "401000000000").
		Return(headerAccount("401000000000"), nil)
	s.accountRepo.On("SaveAccount", s.ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Code == "401010100000" && a.Group == domain.GroupEgreso && a.ParentCode == "401000000000"
	})).Return(nil)

	account, err := s.service.CreateAccount(s.ctx, dto.CreateCatalogAccountRequest{
		Year: testYear, Code: "401010100000", Description: "Papelería", Group: "egreso",
		Level: 4, ParentCode: "401000000000",
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), domain.GroupEgreso, account.Group)
	assert.False(s.T(), account.CreatedAt.IsZero())
}

func (s *CatalogServiceTestSuite) TestDeleteAccount_BlockedByChildren() {
	s.accountRepo.On("FindAccountByCode", s.ctx, testYear, "401000000000").
		Return(headerAccount("401000000000"), nil)
	s.accountRepo.On("CountChildren", s.ctx, testYear, "401000000000").Return(int64(3), nil)

	err := s.service.DeleteAccount(s.ctx, testYear, "401000000000")
	assert.ErrorIs(s.T(), err, services.ErrAccountHasChildren)
	s.accountRepo.AssertNotCalled(s.T(), "DeleteAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (s *CatalogServiceTestSuite) TestDeleteAccount_BlockedByMovements() {
	s.accountRepo.On("FindAccountByCode", s.ctx, testYear, "401010100000").
		Return(detailAccount("401010100000"), nil)
	s.accountRepo.On("CountChildren", s.ctx, testYear, "401010100000").Return(int64(0), nil)
	s.ledgerRepo.On("CountMovementsForAccount", s.ctx, testYear, "401010100000").Return(int64(5), nil)

	err := s.service.DeleteAccount(s.ctx, testYear, "401010100000")
	assert.ErrorIs(s.T(), err, services.ErrAccountHasMovements)
}

func (s *CatalogServiceTestSuite) TestDeleteAccount_CascadesStateCleanup() {
	s.accountRepo.On("FindAccountByCode", s.ctx, testYear, "401010100000").
		Return(detailAccount("401010100000"), nil)
	s.accountRepo.On("CountChildren", s.ctx, testYear, "401010100000").Return(int64(0), nil)
	s.ledgerRepo.On("CountMovementsForAccount", s.ctx, testYear, "401010100000").Return(int64(0), nil)
	s.accountRepo.On("DeleteAccount", s.ctx, testYear, "401010100000").Return(nil)
	s.ledgerRepo.On("DeleteStatesForAccount", s.ctx, testYear, "401010100000").Return(int64(2), nil)

	err := s.service.DeleteAccount(s.ctx, testYear, "401010100000")
	require.NoError(s.T(), err)
	s.ledgerRepo.AssertExpectations(s.T())
}

func (s *CatalogServiceTestSuite) TestUpdateAccount_RejectsSelfParent() {
	parent := "401010100000"
	_, err := s.service.UpdateAccount(s.ctx, testYear, "401010100000", dto.UpdateCatalogAccountRequest{
		ParentCode: &parent,
	})
	assert.ErrorIs(s.T(), err, services.ErrParentAccountNotFound)
}
