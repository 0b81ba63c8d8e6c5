package handlers

import (
	"net/http"
	"strconv"

	portssvc "github.com/chuxolatouz/deu-sisgead-be/internal/core/ports/services"
	"github.com/chuxolatouz/deu-sisgead-be/internal/dto"
	"github.com/chuxolatouz/deu-sisgead-be/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// SeedHandler serves the master-data seed and department sync endpoints.
type SeedHandler struct {
	seedSvc portssvc.SeedSvcFacade
	cfg     *config.Config
}

// NewSeedHandler creates a new SeedHandler.
func NewSeedHandler(seedSvc portssvc.SeedSvcFacade, cfg *config.Config) *SeedHandler {
	return &SeedHandler{seedSvc: seedSvc, cfg: cfg}
}

// Seed handles POST /admin/seed.
func (h *SeedHandler) Seed(c *gin.Context) {
	var req dto.SeedRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if req.Year == 0 {
		req.Year = h.cfg.DefaultYear
	}

	result, err := h.seedSvc.Seed(c.Request.Context(), req.Year, req.Force, req.DryRun)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SyncDepartments handles POST /admin/sync-departments.
func (h *SeedHandler) SyncDepartments(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	if year == 0 {
		year = h.cfg.DefaultYear
	}

	result, err := h.seedSvc.SyncDepartmentsFromUnits(c.Request.Context(), year)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
