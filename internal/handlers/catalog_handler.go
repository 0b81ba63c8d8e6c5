package handlers

import (
	"net/http"

	portssvc "github.com/chuxolatouz/deu-sisgead-be/internal/core/ports/services"
	"github.com/chuxolatouz/deu-sisgead-be/internal/dto"
	"github.com/chuxolatouz/deu-sisgead-be/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the chart-of-accounts catalog and its admin surface.
type CatalogHandler struct {
	catalogSvc portssvc.CatalogSvcFacade
	cfg        *config.Config
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogSvc portssvc.CatalogSvcFacade, cfg *config.Config) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc, cfg: cfg}
}

// yearOrDefault falls back to the configured fiscal year when a request omits
// one.
func (h *CatalogHandler) yearOrDefault(year int) int {
	if year == 0 {
		return h.cfg.DefaultYear
	}
	return year
}

// SearchAccounts handles GET /catalog/accounts/search.
func (h *CatalogHandler) SearchAccounts(c *gin.Context) {
	var params dto.SearchAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query parameters: " + err.Error()})
		return
	}

	accounts, err := h.catalogSvc.SearchAccounts(c.Request.Context(), h.yearOrDefault(params.Year), params.Query, params.Group, params.Limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts, "count": len(accounts)})
}

// AccountTree handles GET /catalog/accounts/tree.
func (h *CatalogHandler) AccountTree(c *gin.Context) {
	var params dto.SearchAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query parameters: " + err.Error()})
		return
	}

	tree, err := h.catalogSvc.AccountTree(c.Request.Context(), h.yearOrDefault(params.Year), params.Group)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tree": tree})
}

// ConsolidatedTotals handles GET /catalog/consolidated.
func (h *CatalogHandler) ConsolidatedTotals(c *gin.Context) {
	var params dto.ListCatalogAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query parameters: " + err.Error()})
		return
	}

	totals, err := h.catalogSvc.ConsolidatedTotals(c.Request.Context(), h.yearOrDefault(params.Year), params.ScopeType, params.ScopeID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

// ListAccounts handles GET /admin/accounts, the paged listing with balances.
func (h *CatalogHandler) ListAccounts(c *gin.Context) {
	var params dto.ListCatalogAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query parameters: " + err.Error()})
		return
	}
	params.Year = h.yearOrDefault(params.Year)

	resp, err := h.catalogSvc.ListAccounts(c.Request.Context(), params)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateAccount handles POST /admin/accounts.
func (h *CatalogHandler) CreateAccount(c *gin.Context) {
	var req dto.CreateCatalogAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	req.Year = h.yearOrDefault(req.Year)

	account, err := h.catalogSvc.CreateAccount(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

// UpdateAccount handles PUT /admin/accounts/:code.
func (h *CatalogHandler) UpdateAccount(c *gin.Context) {
	var req dto.UpdateCatalogAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	var params dto.ListCatalogAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query parameters: " + err.Error()})
		return
	}

	account, err := h.catalogSvc.UpdateAccount(c.Request.Context(), h.yearOrDefault(params.Year), c.Param("code"), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// DeleteAccount handles DELETE /admin/accounts/:code.
func (h *CatalogHandler) DeleteAccount(c *gin.Context) {
	var params dto.ListCatalogAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query parameters: " + err.Error()})
		return
	}

	if err := h.catalogSvc.DeleteAccount(c.Request.Context(), h.yearOrDefault(params.Year), c.Param("code")); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
