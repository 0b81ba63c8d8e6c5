package domain

import "time"

// Unit is an organizational (executing) unit from the master tables.
// Units form their own hierarchy via ParentCode and are projected onto
// departments by the sync service.
type Unit struct {
	Year        int       `json:"year"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	Level       int       `json:"level"`
	ParentCode  string    `json:"parentCode,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FundingSource is a master-data funding source entry.
type FundingSource struct {
	Year        int       `json:"year"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BudgetCategory is a master-data budget category entry.
type BudgetCategory struct {
	Year        int       `json:"year"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Department is an organizational department. Departments created or updated
// by the unit sync carry the originating unit code in AccountingUnitCode and
// are linked to their parent through ParentDepartmentID.
type Department struct {
	DepartmentID       string    `json:"departmentId"`
	Code               string    `json:"code"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	AccountingUnitCode string    `json:"accountingUnitCode,omitempty"`
	ParentDepartmentID string    `json:"parentDepartmentId,omitempty"`
	IsActive           bool      `json:"isActive"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}
