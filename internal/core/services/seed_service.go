package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chuxolatouz/deu-sisgead-be/internal/apperrors"
	"github.com/chuxolatouz/deu-sisgead-be/internal/core/domain"
	portsrepo "github.com/chuxolatouz/deu-sisgead-be/internal/core/ports/repositories"
	portssvc "github.com/chuxolatouz/deu-sisgead-be/internal/core/ports/services"
	"github.com/chuxolatouz/deu-sisgead-be/internal/dto"
	"github.com/chuxolatouz/deu-sisgead-be/internal/middleware"
	"github.com/chuxolatouz/deu-sisgead-be/internal/utils/masterdata"
	"github.com/google/uuid"
)

// ErrMasterDataFileMissing is returned when any of the year's source files is
// absent. Seeding is all-or-nothing: a partial file set would leave the master
// tables inconsistent with each other.
var ErrMasterDataFileMissing = errors.New("master data file missing")

// SeedService loads the yearly master-data CSV exports into the master tables
// and projects executing units onto departments.
type SeedService struct {
	masterRepo     portsrepo.MasterRepositoryFacade
	departmentRepo portsrepo.DepartmentRepositoryFacade
	masterDataDir  string
}

// NewSeedService creates a new SeedService.
func NewSeedService(masterRepo portsrepo.MasterRepositoryFacade, departmentRepo portsrepo.DepartmentRepositoryFacade, masterDataDir string) *SeedService {
	return &SeedService{
		masterRepo:     masterRepo,
		departmentRepo: departmentRepo,
		masterDataDir:  masterDataDir,
	}
}

var _ portssvc.SeedSvcFacade = (*SeedService)(nil)

// sourcePath names the CSV export of one collection for a year, e.g.
// contabilidad_2025_cuentas.csv.
func (s *SeedService) sourcePath(year int, collection string) string {
	return filepath.Join(s.masterDataDir, fmt.Sprintf("contabilidad_%d_%s.csv", year, collection))
}

// openSource opens one collection file.
func (s *SeedService) openSource(year int, collection string) (*os.File, error) {
	f, err := os.Open(s.sourcePath(year, collection))
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Seed loads the year's master data. With dryRun it only parses and counts.
// With force it wipes the year's master rows first; otherwise existing rows
// are upserted in place, which preserves rows absent from the files.
func (s *SeedService) Seed(ctx context.Context, year int, force, dryRun bool) (*dto.SeedResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	accounts, unitRows, sources, categories, err := s.loadSources(ctx, year)
	if err != nil {
		return nil, err
	}

	result := &dto.SeedResult{Year: year, DryRun: dryRun, Force: force}
	if dryRun {
		result.Counts = dto.SeedCounts{
			Accounts:         int64(len(accounts)),
			Units:            int64(len(unitRows)),
			FundingSources:   int64(len(sources)),
			BudgetCategories: int64(len(categories)),
		}
		return result, nil
	}

	if force {
		logger.Warn("Force seed: deleting master data", slog.Int("year", year))
		if err := s.masterRepo.DeleteMasterData(ctx, year); err != nil {
			return nil, err
		}
	}

	if result.Counts.Accounts, err = s.masterRepo.UpsertAccounts(ctx, accountsFromRows(year, accounts)); err != nil {
		return nil, err
	}
	if result.Counts.Units, err = s.masterRepo.UpsertUnits(ctx, unitsFromRows(year, unitRows)); err != nil {
		return nil, err
	}
	if result.Counts.FundingSources, err = s.masterRepo.UpsertFundingSources(ctx, fundingSourcesFromRows(year, sources)); err != nil {
		return nil, err
	}
	if result.Counts.BudgetCategories, err = s.masterRepo.UpsertBudgetCategories(ctx, budgetCategoriesFromRows(year, categories)); err != nil {
		return nil, err
	}

	logger.Info("Master data seeded",
		slog.Int("year", year),
		slog.Int64("accounts", result.Counts.Accounts),
		slog.Int64("units", result.Counts.Units),
		slog.Int64("funding_sources", result.Counts.FundingSources),
		slog.Int64("budget_categories", result.Counts.BudgetCategories),
	)
	return result, nil
}

// loadSources parses the year's collection files. Every collection file must
// exist; a missing one aborts the whole load.
func (s *SeedService) loadSources(ctx context.Context, year int) ([]masterdata.AccountRow, []masterdata.UnitRow, []masterdata.CodeDescriptionRow, []masterdata.CodeDescriptionRow, error) {
	var accounts []masterdata.AccountRow
	var unitRows []masterdata.UnitRow
	var sources, categories []masterdata.CodeDescriptionRow

	load := func(collection string, parse func(f *os.File) error) error {
		f, err := s.openSource(year, collection)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return apperrors.NewAppError(404,
					fmt.Sprintf("%v: %s", ErrMasterDataFileMissing, s.sourcePath(year, collection)),
					ErrMasterDataFileMissing)
			}
			return apperrors.NewAppError(500, "failed to open master data file", err)
		}
		defer f.Close()
		return parse(f)
	}

	if err := load("cuentas", func(f *os.File) (err error) {
		accounts, err = masterdata.LoadAccounts(f)
		return err
	}); err != nil {
		return nil, nil, nil, nil, err
	}
	if err := load("unidades", func(f *os.File) (err error) {
		unitRows, err = masterdata.LoadUnits(f)
		return err
	}); err != nil {
		return nil, nil, nil, nil, err
	}
	if err := load("fuentes", func(f *os.File) (err error) {
		sources, err = masterdata.LoadCodeDescriptions(f)
		return err
	}); err != nil {
		return nil, nil, nil, nil, err
	}
	if err := load("partidas", func(f *os.File) (err error) {
		categories, err = masterdata.LoadCodeDescriptions(f)
		return err
	}); err != nil {
		return nil, nil, nil, nil, err
	}

	return accounts, unitRows, sources, categories, nil
}

// SyncDepartmentsFromUnits projects the year's executing units onto the
// departments table. First pass creates or refreshes one department per unit;
// second pass links parents, so link order never depends on file order.
func (s *SeedService) SyncDepartmentsFromUnits(ctx context.Context, year int) (*dto.SyncResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	units, err := s.masterRepo.ListUnits(ctx, year)
	if err != nil {
		return nil, err
	}

	result := &dto.SyncResult{}
	departmentIDByUnit := make(map[string]string, len(units))

	for _, unit := range units {
		existing, err := s.departmentRepo.FindByUnitCode(ctx, unit.Code)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				return nil, err
			}
			department := domain.Department{
				DepartmentID:       uuid.NewString(),
				Code:               unit.Code,
				Name:               unit.Description,
				Description:        unit.Description,
				AccountingUnitCode: unit.Code,
				IsActive:           true,
				CreatedAt:          time.Now(),
			}
			if err := s.departmentRepo.SaveDepartment(ctx, department); err != nil {
				return nil, err
			}
			departmentIDByUnit[unit.Code] = department.DepartmentID
			result.Created++
			continue
		}

		existing.Name = unit.Description
		existing.AccountingUnitCode = unit.Code
		if err := s.departmentRepo.UpdateDepartment(ctx, *existing); err != nil {
			return nil, err
		}
		departmentIDByUnit[unit.Code] = existing.DepartmentID
		result.Updated++
	}

	for _, unit := range units {
		if unit.ParentCode == "" {
			continue
		}
		parentID, ok := departmentIDByUnit[unit.ParentCode]
		if !ok {
			continue
		}
		if err := s.departmentRepo.SetParentDepartment(ctx, departmentIDByUnit[unit.Code], parentID); err != nil {
			return nil, err
		}
		result.Mapped++
	}

	logger.Info("Departments synced from units",
		slog.Int("year", year),
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
		slog.Int("mapped", result.Mapped),
	)
	return result, nil
}

func accountsFromRows(year int, rows []masterdata.AccountRow) []domain.Account {
	out := make([]domain.Account, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Account{
			Year:        year,
			Code:        r.Code,
			Description: r.Description,
			Group:       r.Group,
			IsHeader:    r.IsHeader,
			Level:       r.Level,
			ParentCode:  r.ParentCode,
		})
	}
	return out
}

func unitsFromRows(year int, rows []masterdata.UnitRow) []domain.Unit {
	out := make([]domain.Unit, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Unit{
			Year:        year,
			Code:        r.Code,
			Description: r.Description,
			Level:       r.Level,
			ParentCode:  r.ParentCode,
		})
	}
	return out
}

func fundingSourcesFromRows(year int, rows []masterdata.CodeDescriptionRow) []domain.FundingSource {
	out := make([]domain.FundingSource, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.FundingSource{Year: year, Code: r.Code, Description: r.Description})
	}
	return out
}

func budgetCategoriesFromRows(year int, rows []masterdata.CodeDescriptionRow) []domain.BudgetCategory {
	out := make([]domain.BudgetCategory, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.BudgetCategory{Year: year, Code: r.Code, Description: r.Description})
	}
	return out
}
