package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/storepulse/storepulse/internal/db"
	"github.com/storepulse/storepulse/internal/logging"
	"github.com/storepulse/storepulse/internal/quality"
	"github.com/storepulse/storepulse/internal/report"
	"github.com/storepulse/storepulse/internal/store"
)

var (
	validateFormat string
	validateStrict bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the loaded data for quality defects",
	Long: `Run the data quality checks: missing required fields, duplicate
keys, sales and inventory referencing unknown stores or products, and
negative amounts. Violations are reported, never repaired.

With --strict the command exits non-zero when any violation is found,
for use in load pipelines.

Example:
  storepulse validate
  storepulse validate --strict --format csv`,
	RunE: runValidateCmd,
}

func init() {
	validateCmd.Flags().StringVar(&validateFormat, "format", "",
		"output format: table, csv, json")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false,
		"exit with an error when violations are found")
}

func runValidateCmd(cmd *cobra.Command, args []string) error {
	if validateFormat != "" {
		cfg.Report.Format = validateFormat
	}
	if err := cfg.ValidateReport(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	ds, err := store.New(pool).LoadDataset(ctx)
	if err != nil {
		return err
	}

	violations := quality.CheckAll(ds)
	if err := report.Validations(violations).Write(os.Stdout, cfg.Report.Format); err != nil {
		return err
	}

	if len(violations) == 0 {
		logging.Info().Msg("No data quality violations found")
		return nil
	}

	logging.Warn().
		Int("violations", len(violations)).
		Msg("Data quality violations found")

	if validateStrict {
		return fmt.Errorf("%d data quality violations", len(violations))
	}
	return nil
}
