package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stordev/sitescout/internal/source/permits"
)

// newPermitsCmd creates the 'permits' subcommand. Counties publish permit
// reports three ways, so the command takes exactly one of --pdf (a direct
// report link), --index (a page of PDF links), or --portal (the vendor
// report viewer, driven headless).
func newPermitsCmd() *cobra.Command {
	var (
		pdfURL   string
		indexURL string
		portal   bool
		county   string
		state    string
	)

	cmd := &cobra.Command{
		Use:   "permits",
		Short: "Load building permits from county reports",
		Long: `Ingests county building-permit reports: extracts text from PDF
reports, splits it into per-permit blocks, classifies multi-unit versus
single-family, and groups permits into known developments. Index pages
are harvested for PDF links with colly; the vendor report viewer is
walked with a headless browser when permits.headless_enabled is set.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			modes := 0
			for _, set := range []bool{pdfURL != "", indexURL != "", portal} {
				if set {
					modes++
				}
			}
			if modes != 1 {
				return fmt.Errorf("exactly one of --pdf, --index, or --portal is required")
			}
			if (pdfURL != "" || indexURL != "") && county == "" {
				return fmt.Errorf("--county is required with --pdf and --index")
			}

			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			cfg := appInstance.GetConfig()
			logger := appInstance.GetLogger().Named("permits")

			loaderCfg := permits.LoaderConfig{
				Harvester: permits.NewLinkHarvester(cfg.HTTP.UserAgent, cfg.RequestTimeout(), cfg.Permits.RespectRobots, logger),
				Robots:    permits.NewRobotsGate(cfg.Permits.RespectRobots, cfg.HTTP.UserAgent, logger),
				Store:     appInstance.GetStores().Permits,
				Timeout:   cfg.RequestTimeout(),
				UserAgent: cfg.HTTP.UserAgent,
				Permits:   cfg.Permits,
				Logger:    logger,
			}
			if portal {
				p, err := permits.NewPortal(cfg.Permits, cfg.HTTP.UserAgent, logger)
				if err != nil {
					return fmt.Errorf("portal mode: %w", err)
				}
				defer p.Close()
				loaderCfg.Portal = p
			}
			loader := permits.NewLoader(loaderCfg)

			rec, err := appInstance.Recorder(cmd.Context(), "permits")
			if err != nil {
				return err
			}

			var runErr error
			switch {
			case pdfURL != "":
				runErr = loader.LoadPDF(cmd.Context(), rec, pdfURL, county, state)
			case indexURL != "":
				runErr = loader.LoadIndex(cmd.Context(), rec, indexURL, county, state)
			default:
				runErr = loader.LoadPortal(cmd.Context(), rec, state)
			}
			return finishRun(cmd, rec, runErr)
		},
	}

	cmd.Flags().StringVar(&pdfURL, "pdf", "", "URL of a single permit report PDF")
	cmd.Flags().StringVar(&indexURL, "index", "", "URL of an index page of permit report PDFs")
	cmd.Flags().BoolVar(&portal, "portal", false, "walk the vendor report viewer (requires permits.headless_enabled)")
	cmd.Flags().StringVar(&county, "county", "", "county the report covers")
	cmd.Flags().StringVar(&state, "state", "GA", "state the report covers")
	return cmd
}
