package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stordev/sitescout/internal/id/uuid"
	"github.com/stordev/sitescout/internal/pipeline"
)

// newImportCmd creates the 'import' subcommand, loading operator-entered
// CSV files: new candidates, parcel assessments, county difficulty
// ratings. Counties load first so candidate rows can reference them.
func newImportCmd() *cobra.Command {
	var (
		candidatesPath string
		parcelsPath    string
		countiesPath   string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import operator CSV files (candidates, parcels, counties)",

		RunE: func(cmd *cobra.Command, _ []string) error {
			if candidatesPath == "" && parcelsPath == "" && countiesPath == "" {
				return fmt.Errorf("at least one of --candidates, --parcels, or --counties is required")
			}

			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			stores := appInstance.GetStores()
			importer := pipeline.NewImporter(
				stores.Candidates, stores.Parcels, stores.Counties,
				uuid.NewUUIDGenerator(), nil, appInstance.GetLogger().Named("import"),
			)

			rec, err := appInstance.Recorder(cmd.Context(), "import")
			if err != nil {
				return err
			}

			runErr := func() error {
				type stage struct {
					path string
					load func(*os.File) error
				}
				stages := []stage{
					{countiesPath, func(f *os.File) error { return importer.ImportCounties(cmd.Context(), rec, f) }},
					{candidatesPath, func(f *os.File) error { return importer.ImportCandidates(cmd.Context(), rec, f) }},
					{parcelsPath, func(f *os.File) error { return importer.ImportParcels(cmd.Context(), rec, f) }},
				}
				for _, st := range stages {
					if st.path == "" {
						continue
					}
					f, err := os.Open(st.path)
					if err != nil {
						return fmt.Errorf("open import file: %w", err)
					}
					loadErr := st.load(f)
					f.Close()
					if loadErr != nil {
						return fmt.Errorf("import %s: %w", st.path, loadErr)
					}
				}
				return nil
			}()
			return finishRun(cmd, rec, runErr)
		},
	}

	cmd.Flags().StringVar(&candidatesPath, "candidates", "", "CSV of new site candidates")
	cmd.Flags().StringVar(&parcelsPath, "parcels", "", "CSV of parcel assessments")
	cmd.Flags().StringVar(&countiesPath, "counties", "", "CSV of county difficulty ratings")
	return cmd
}

// newSaturateCmd creates the 'saturate' subcommand, recomputing the
// market-saturation analysis for every candidate.
func newSaturateCmd() *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:   "saturate",
		Short: "Recompute market saturation for candidates",
		Long: `Compares required storage square footage (population times the
sqft-per-capita factor) against existing supply (storage facilities in
the candidate's ZIP) and merges one saturation row per candidate.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			cfg := appInstance.GetConfig()
			stores := appInstance.GetStores()
			saturator := pipeline.NewSaturator(
				stores.Candidates, stores.StorageFacs, stores.Saturation,
				cfg.Saturation, nil, appInstance.GetLogger().Named("saturate"),
			)

			rec, err := appInstance.Recorder(cmd.Context(), "saturate")
			if err != nil {
				return err
			}
			runErr := saturator.Run(cmd.Context(), rec, state)
			return finishRun(cmd, rec, runErr)
		},
	}

	cmd.Flags().StringVar(&state, "state", "", "restrict the pass to one state")
	return cmd
}

// newScoreCmd creates the 'score' subcommand, rolling stored sub-scores
// into the weighted final score and advancing candidate status.
func newScoreCmd() *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Roll sub-scores into final site scores",
		Long: `Reads each candidate's parcel score, county difficulty, financial
inputs, and saturation score, applies the configured weights, merges the
scorecard, and advances pending candidates to scored. Candidates missing
a sub-score are skipped with a logged reason.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			cfg := appInstance.GetConfig()
			stores := appInstance.GetStores()
			scorer := pipeline.NewScorer(pipeline.ScorerConfig{
				Candidates:     stores.Candidates,
				Parcels:        stores.Parcels,
				Counties:       stores.Counties,
				Saturation:     stores.Saturation,
				Scores:         stores.Scores,
				Weights:        cfg.Scoring.Weights,
				MaxCostPerAcre: cfg.Scoring.MaxCostPerAcre,
				Logger:         appInstance.GetLogger().Named("score"),
			})

			rec, err := appInstance.Recorder(cmd.Context(), "score")
			if err != nil {
				return err
			}
			runErr := scorer.Run(cmd.Context(), rec, state)
			return finishRun(cmd, rec, runErr)
		},
	}

	cmd.Flags().StringVar(&state, "state", "", "restrict the pass to one state")
	return cmd
}
