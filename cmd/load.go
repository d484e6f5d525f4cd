package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/stordev/sitescout/internal/source/acs"
	"github.com/stordev/sitescout/internal/source/curated"
	"github.com/stordev/sitescout/internal/source/places"
	"github.com/stordev/sitescout/internal/source/qcew"
)

// newPlacesCmd creates the 'places' subcommand: one nearby-search canvass
// per county seat, filing results into logistics_facilities and
// storage_facilities.
func newPlacesCmd() *cobra.Command {
	var details bool

	cmd := &cobra.Command{
		Use:   "places",
		Short: "Load logistics and storage facilities from Google Places",
		Long: `Canvasses every county seat with the Google Places nearby search:
a logistics pass classified by company keyword, then a self-storage pass
feeding the saturation analysis. Requires SITESCOUT_PLACES_API_KEY.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			cfg := appInstance.GetConfig()
			stores := appInstance.GetStores()

			client, err := places.NewClient(cfg.Places, cfg.RequestTimeout(), appInstance.GetLogger())
			if err != nil {
				return err
			}
			loader := places.NewLoader(places.LoaderConfig{
				Client:    client,
				Logistics: stores.Logistics,
				Storage:   stores.StorageFacs,
				Places:    cfg.Places,
				Logger:    appInstance.GetLogger().Named("places"),
			})

			rec, err := appInstance.Recorder(cmd.Context(), "places")
			if err != nil {
				return err
			}
			runErr := loader.Run(cmd.Context(), rec, curated.CountySeats(), details)
			return finishRun(cmd, rec, runErr)
		},
	}

	cmd.Flags().BoolVar(&details, "details", false, "enrich logistics results with a place-details lookup")
	return cmd
}

// newQCEWCmd creates the 'qcew' subcommand: one BLS QCEW annual CSV per
// county, keeping only the all-ownership all-industry aggregate row.
func newQCEWCmd() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "qcew",
		Short: "Load county employment aggregates from BLS QCEW",

		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			if year <= 0 {
				return fmt.Errorf("--year must be a four-digit year, got %d", year)
			}
			cfg := appInstance.GetConfig()

			client := qcew.NewClient(cfg.QCEW, cfg.RequestTimeout(), appInstance.GetLogger())
			loader := qcew.NewLoader(client, appInstance.GetStores().Employment, nil, appInstance.GetLogger().Named("qcew"))

			rec, err := appInstance.Recorder(cmd.Context(), "qcew")
			if err != nil {
				return err
			}
			runErr := loader.Run(cmd.Context(), rec, curated.CountySeats(), year)
			return finishRun(cmd, rec, runErr)
		},
	}

	// QCEW annual files lag; the latest complete vintage is last year's.
	cmd.Flags().IntVar(&year, "year", time.Now().Year()-1, "data year to fetch")
	return cmd
}

// newACSCmd creates the 'acs' subcommand: batched Census ACS demographic
// pulls for the metro ZCTA list into zips_master.
func newACSCmd() *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:   "acs",
		Short: "Load ZIP demographics from the Census ACS5 API",
		Long: `Fetches the fixed ACS 5-year variable set for the metro ZCTA list in
batches of up to fifty, pipelining requests, and upserts one zips_master
row per ZCTA. The ZCTA geography carries no state column, so every row is
stamped with --state.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			cfg := appInstance.GetConfig()

			client := acs.NewClient(cfg.Census, cfg.RequestTimeout(), appInstance.GetLogger())
			loader := acs.NewLoader(client, appInstance.GetStores().Zips, cfg.Census, nil, appInstance.GetLogger().Named("acs"))

			rec, err := appInstance.Recorder(cmd.Context(), "acs")
			if err != nil {
				return err
			}
			runErr := loader.Run(cmd.Context(), rec, curated.ZCTAs(), state)
			return finishRun(cmd, rec, runErr)
		},
	}

	cmd.Flags().StringVar(&state, "state", "GA", "state label stamped on every loaded row")
	return cmd
}

// newSeedCmd creates the 'seed' subcommand, inserting the curated static
// datasets (military bases, universities, known distribution hubs).
func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the curated static datasets",

		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			stores := appInstance.GetStores()
			loader := curated.NewLoader(stores.Military, stores.Universities, stores.Logistics, nil, appInstance.GetLogger().Named("curated"))

			rec, err := appInstance.Recorder(cmd.Context(), "curated")
			if err != nil {
				return err
			}
			runErr := loader.Run(cmd.Context(), rec)
			return finishRun(cmd, rec, runErr)
		},
	}
}
