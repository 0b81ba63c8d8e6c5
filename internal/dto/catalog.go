package dto

import (
	"github.com/chuxolatouz/deu-sisgead-be/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SearchAccountsParams defines query parameters for catalog search.
type SearchAccountsParams struct {
	Year  int    `form:"year"`
	Query string `form:"q"`
	Group string `form:"group"`
	Limit int    `form:"limit,default=50"`
}

// ListCatalogAccountsParams defines query parameters for the paged admin
// listing. ScopeType/ScopeID optionally restrict the merged balances to one
// scope.
type ListCatalogAccountsParams struct {
	Year      int    `form:"year"`
	Query     string `form:"q"`
	Group     string `form:"group"`
	ScopeType string `form:"scopeType"`
	ScopeID   string `form:"scopeId"`
	Page      int    `form:"page,default=0"`
	Limit     int    `form:"limit,default=20"`
}

// CatalogAccountRow is one admin-listing row: the catalog account merged with
// its aggregated balance.
type CatalogAccountRow struct {
	domain.Account
	Balance decimal.Decimal `json:"balance"`
}

// ListCatalogAccountsResponse wraps the admin listing page.
type ListCatalogAccountsResponse struct {
	Accounts []CatalogAccountRow `json:"request_list"`
	Count    int64               `json:"count"`
}

// CreateCatalogAccountRequest defines the data needed to create a catalog
// account administratively.
type CreateCatalogAccountRequest struct {
	Year        int    `json:"year"`
	Code        string `json:"code" binding:"required,accountcode"`
	Description string `json:"description" binding:"required"`
	Group       string `json:"group" binding:"required"`
	IsHeader    bool   `json:"isHeader"`
	Level       int    `json:"level"`
	ParentCode  string `json:"parentCode"`
}

// UpdateCatalogAccountRequest defines the administratively mutable account
// fields. Pointers distinguish "not provided" from zero values; code and year
// are immutable identity and cannot appear here.
type UpdateCatalogAccountRequest struct {
	Description *string `json:"description"`
	Group       *string `json:"group"`
	IsHeader    *bool   `json:"isHeader"`
	Level       *int    `json:"level"`
	ParentCode  *string `json:"parentCode"`
}
