package handlers

import (
	"net/http"

	"github.com/chuxolatouz/deu-sisgead-be/internal/core/services"
	"github.com/chuxolatouz/deu-sisgead-be/internal/middleware"
	"github.com/chuxolatouz/deu-sisgead-be/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterHandlers sets up all API routes. Everything under /api/v1 requires
// a bearer token; health and metrics stay open for probes and scrapers.
func RegisterHandlers(router *gin.Engine, provider *services.ServiceProvider, cfg *config.Config) {
	registerValidators()

	catalogHandler := NewCatalogHandler(provider.CatalogSvc, cfg)
	ledgerHandler := NewLedgerHandler(provider.LedgerSvc, cfg)
	seedHandler := NewSeedHandler(provider.SeedSvc, cfg)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	catalog := api.Group("/catalog")
	{
		catalog.GET("/accounts/search", catalogHandler.SearchAccounts)
		catalog.GET("/accounts/tree", catalogHandler.AccountTree)
		catalog.GET("/consolidated", catalogHandler.ConsolidatedTotals)
	}

	scopes := api.Group("/scopes/:scopeType/:scopeId")
	{
		scopes.GET("/accounts", ledgerHandler.GetScopeAccounts)
		scopes.POST("/init", ledgerHandler.InitScope)
		scopes.POST("/movements", ledgerHandler.CreateMovement)
		scopes.GET("/movements", ledgerHandler.ListMovements)
	}

	api.POST("/transfers", ledgerHandler.Transfer)

	admin := api.Group("/admin")
	{
		admin.GET("/accounts", catalogHandler.ListAccounts)
		admin.POST("/accounts", catalogHandler.CreateAccount)
		admin.PUT("/accounts/:code", catalogHandler.UpdateAccount)
		admin.DELETE("/accounts/:code", catalogHandler.DeleteAccount)
		admin.POST("/seed", seedHandler.Seed)
		admin.POST("/sync-departments", seedHandler.SyncDepartments)
	}
}
