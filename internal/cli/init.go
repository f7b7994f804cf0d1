package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storepulse/storepulse/internal/db"
	"github.com/storepulse/storepulse/internal/logging"
	"github.com/storepulse/storepulse/internal/schema"
)

var initDropExisting bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the database schema",
	Long: `Create the retail analytics schema: products, stores, inventory,
sales, the calendar dimension, and the sales_enriched reporting view.

The sales and inventory tables carry no foreign keys on purpose, so
imperfect extracts load cleanly and 'validate' can report the defects.

Example:
  storepulse init --connection "postgres://..."`,
	RunE: runInitCmd,
}

func init() {
	initCmd.Flags().BoolVar(&initDropExisting, "drop-existing", false,
		"drop existing schema before initialization")
}

func runInitCmd(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	exists, err := schema.SchemaExists(ctx, pool)
	if err != nil {
		return err
	}
	if exists && !initDropExisting {
		return fmt.Errorf("schema already exists; use --drop-existing to recreate it")
	}

	if initDropExisting {
		logging.Info().Msg("Dropping existing schema")
		if err := schema.DropSchema(ctx, pool); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
	}

	logging.Info().Msg("Creating schema")
	if err := schema.CreateSchema(ctx, pool); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	logging.Info().Msg("Database initialization complete")
	return nil
}
