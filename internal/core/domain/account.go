package domain

import "time"

// AccountGroup classifies the nature of a catalog account.
type AccountGroup string

const (
	GroupPasivo  AccountGroup = "PASIVO"
	GroupIngreso AccountGroup = "INGRESO"
	GroupEgreso  AccountGroup = "EGRESO"
)

// ValidAccountGroup reports whether g is one of the closed set of groups.
func ValidAccountGroup(g AccountGroup) bool {
	switch g {
	case GroupPasivo, GroupIngreso, GroupEgreso:
		return true
	}
	return false
}

// AccountCodeLength is the fixed length of catalog account codes. The code is
// a numeric string acting as a hierarchical path encoding: prefix
// relationships imply ancestry.
const AccountCodeLength = 12

// ValidAccountCode reports whether code is a fixed-length numeric string.
func ValidAccountCode(code string) bool {
	if len(code) != AccountCodeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Account is a chart-of-accounts entry, scoped by fiscal year.
// (Year, Code) is the immutable identity; everything else is mutable through
// administrative updates. ParentCode is empty for root accounts.
type Account struct {
	Year        int          `json:"year"`
	Code        string       `json:"code"`
	Description string       `json:"description"`
	Group       AccountGroup `json:"group"`
	IsHeader    bool         `json:"isHeader"`
	Level       int          `json:"level"`
	ParentCode  string       `json:"parentCode,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// AccountUpdate carries the administratively mutable fields of an account.
// Nil pointers leave the field untouched; an empty ParentCode clears the
// parent, turning the account into a root.
type AccountUpdate struct {
	Description *string
	Group       *AccountGroup
	IsHeader    *bool
	Level       *int
	ParentCode  *string
}
