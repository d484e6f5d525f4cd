package cmd

import (
	"github.com/spf13/cobra"
)

// newServeCmd creates the 'serve' subcommand, which runs the read-only
// HTTP API over the shared database until interrupted.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only HTTP API",
		Long: `Starts the chi HTTP server exposing candidates, counties, ZIP
demographics, map signals, permits, and the run ledger for the map
front end. CORS is fully open; there is no auth.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			return appInstance.Serve(cmd.Context())
		},
	}
}

// newMigrateCmd creates the 'migrate' subcommand, which applies pending
// schema migrations and exits.
func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",

		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			return appInstance.Migrate(cmd.Context())
		},
	}
}
