package dto

// SeedCounts holds per-collection row counts from a seed run. For a dry run
// these are the counts parsed from the source files; otherwise the rows
// inserted or updated.
type SeedCounts struct {
	Accounts         int64 `json:"accounts"`
	Units            int64 `json:"units"`
	FundingSources   int64 `json:"funding_sources"`
	BudgetCategories int64 `json:"budget_categories"`
}

// SeedResult summarizes a seed run.
type SeedResult struct {
	Year   int        `json:"year"`
	DryRun bool       `json:"dryRun"`
	Force  bool       `json:"force"`
	Counts SeedCounts `json:"counts"`
}

// SyncResult summarizes a departments-from-units sync.
type SyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Mapped  int `json:"mapped"`
}

// SeedRequest defines the seed endpoint body.
type SeedRequest struct {
	Year   int  `json:"year"`
	Force  bool `json:"force"`
	DryRun bool `json:"dryRun"`
}
