package handlers

import (
	"net/http"
	"strconv"

	"github.com/chuxolatouz/deu-sisgead-be/internal/core/domain"
	portssvc "github.com/chuxolatouz/deu-sisgead-be/internal/core/ports/services"
	"github.com/chuxolatouz/deu-sisgead-be/internal/dto"
	"github.com/chuxolatouz/deu-sisgead-be/internal/middleware"
	"github.com/chuxolatouz/deu-sisgead-be/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// LedgerHandler serves scoped balance views, scope init, postings and
// transfers.
type LedgerHandler struct {
	ledgerSvc portssvc.LedgerSvcFacade
	cfg       *config.Config
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerSvc portssvc.LedgerSvcFacade, cfg *config.Config) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc, cfg: cfg}
}

func (h *LedgerHandler) yearOrDefault(year int) int {
	if year == 0 {
		return h.cfg.DefaultYear
	}
	return year
}

// GetScopeAccounts handles GET /scopes/:scopeType/:scopeId/accounts.
func (h *LedgerHandler) GetScopeAccounts(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	params := dto.ScopeAccountsParams{
		Year:         h.yearOrDefault(year),
		ScopeType:    domain.ScopeType(c.Param("scopeType")),
		ScopeID:      c.Param("scopeId"),
		Group:        c.Query("group"),
		AssignedOnly: c.Query("assignedOnly") == "true",
		IncludeZero:  c.DefaultQuery("includeZero", "true") == "true",
	}

	resp, err := h.ledgerSvc.GetScopeAccounts(c.Request.Context(), params)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// InitScope handles POST /scopes/:scopeType/:scopeId/init.
func (h *LedgerHandler) InitScope(c *gin.Context) {
	var req dto.InitScopeRequest
	// Body is optional: no body means the default mode.
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	year, _ := strconv.Atoi(c.Query("year"))

	created, err := h.ledgerSvc.InitScope(c.Request.Context(),
		h.yearOrDefault(year),
		domain.ScopeType(c.Param("scopeType")), c.Param("scopeId"), req.Mode)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": created})
}

// CreateMovement handles POST /scopes/:scopeType/:scopeId/movements.
func (h *LedgerHandler) CreateMovement(c *gin.Context) {
	var req dto.CreateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	req.Year = h.yearOrDefault(req.Year)
	req.ScopeType = c.Param("scopeType")
	req.ScopeID = c.Param("scopeId")
	req.AllowNegative = h.cfg.AllowNegativeBalances
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		req.CreatedBy = userID
	}

	resp, err := h.ledgerSvc.CreateMovement(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListMovements handles GET /scopes/:scopeType/:scopeId/movements.
func (h *LedgerHandler) ListMovements(c *gin.Context) {
	var params dto.ListMovementsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.ledgerSvc.ListMovements(c.Request.Context(),
		h.yearOrDefault(params.Year),
		domain.ScopeType(c.Param("scopeType")), c.Param("scopeId"),
		params.Limit, params.NextToken)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Transfer handles POST /transfers.
func (h *LedgerHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	req.Year = h.yearOrDefault(req.Year)
	req.AllowNegative = h.cfg.AllowNegativeBalances
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		req.CreatedBy = userID
	}

	result, err := h.ledgerSvc.TransferBetweenAccounts(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
