package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stordev/sitescout/internal/app"
	"github.com/stordev/sitescout/internal/config"
	"github.com/stordev/sitescout/internal/etl"
	"github.com/stordev/sitescout/internal/storage/postgres"
)

var cfgFile string

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App is the slice of the application container the commands use. An
// interface so tests can inject a fake through the newApp factory.
type App interface {
	Close()
	GetLogger() *zap.Logger
	GetConfig() *config.Config
	GetStores() *postgres.Stores
	Recorder(ctx context.Context, source string) (*etl.Recorder, error)
	Migrate(ctx context.Context) error
	Serve(ctx context.Context) error
}

// newApp is the application factory, a variable so tests can replace it.
var newApp = func(ctx context.Context, cfg *config.Config) (App, error) {
	return app.NewApp(ctx, cfg)
}

// newRootCmd creates and configures the root command. The container is
// built once in PersistentPreRunE and torn down in PersistentPostRun, so
// every subcommand finds its services in the command context.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitescout",
		Short: "Self-storage site-selection toolkit",
		Long: `sitescout loads external market signals (Google Places, BLS QCEW,
Census ACS, county permit reports, curated lists) into a shared Postgres
database, scores prospective self-storage sites, and serves a read-only
HTTP API over the results. Each loader subcommand is an independent batch
job: fetch, normalize, upsert with skip-on-conflict, summarize, exit.`,

		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			appInstance, err := newApp(cmd.Context(), &cfg)
			if err != nil {
				return fmt.Errorf("initialize application services: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			cmd.SetContext(ctx)
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is env-only configuration)")

	cmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newPlacesCmd(),
		newQCEWCmd(),
		newACSCmd(),
		newPermitsCmd(),
		newSeedCmd(),
		newImportCmd(),
		newSaturateCmd(),
		newScoreCmd(),
	)

	return cmd
}

// resolveApp pulls the container a prior hook stored in the context.
func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application services not initialized")
	}
	return appInstance, nil
}

// finishRun closes the ledger entry, prints the colored one-line summary,
// and passes the loader's own error through for the exit code.
func finishRun(cmd *cobra.Command, rec *etl.Recorder, runErr error) error {
	err := rec.Finish(cmd.Context(), runErr)
	fmt.Fprintln(cmd.OutOrStdout(), rec.Summary())
	return err
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
