package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/chuxolatouz/deu-sisgead-be/internal/core/services"
	"github.com/chuxolatouz/deu-sisgead-be/internal/platform/config"
	"github.com/chuxolatouz/deu-sisgead-be/internal/repositories/database/pgsql"
	"github.com/chuxolatouz/deu-sisgead-be/pkg/database"
	"github.com/spf13/cobra"
)

// sisgeadctl is the operational CLI: master-data seeding and the
// unit-to-department sync, runnable without the HTTP server.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	rootCmd := &cobra.Command{
		Use:          "sisgeadctl",
		Short:        "Operational tooling for the accounting ledger",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newSeedCmd(), newSyncDepartmentsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newProvider loads config and wires the service container for one command
// run. The returned cleanup closes the pool.
func newProvider(ctx context.Context) (*services.ServiceProvider, *config.Config, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}

	repos := pgsql.NewRepositoryProvider(dbPool, cfg.DisableTxWrites)
	if err := repos.Indexes.EnsureIndexes(ctx); err != nil {
		dbPool.Close()
		return nil, nil, nil, err
	}
	return services.NewServiceProvider(repos, cfg), cfg, func() { database.ClosePgxPool(dbPool) }, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func newSeedCmd() *cobra.Command {
	var year int
	var force, dryRun bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the yearly master-data CSV exports into the master tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			provider, cfg, cleanup, err := newProvider(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if year == 0 {
				year = cfg.DefaultYear
			}
			result, err := provider.SeedSvc.Seed(ctx, year, force, dryRun)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "fiscal year to seed (defaults to DEFAULT_YEAR)")
	cmd.Flags().BoolVar(&force, "force", false, "delete the year's master data before loading")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and count without writing")
	return cmd
}

func newSyncDepartmentsCmd() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "sync-departments",
		Short: "Project the year's executing units onto the departments table",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			provider, cfg, cleanup, err := newProvider(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if year == 0 {
				year = cfg.DefaultYear
			}
			result, err := provider.SeedSvc.SyncDepartmentsFromUnits(ctx, year)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "fiscal year to sync (defaults to DEFAULT_YEAR)")
	return cmd
}
