package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storepulse/storepulse/internal/db"
	"github.com/storepulse/storepulse/internal/schema"
	"github.com/storepulse/storepulse/internal/seed"
	"github.com/storepulse/storepulse/internal/store"
)

var (
	seedStores        int
	seedProducts      int
	seedDays          int
	seedMaxDailySales int
	seedStartDate     string
	seedRandomSeed    uint64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with synthetic retail data",
	Long: `Generate a synthetic dataset (stores, products, daily sales, and an
inventory snapshot) and load it into an initialized database. Existing
data rows are replaced; the calendar dimension is left alone.

The generated data includes the awkward cases real extracts have:
loss-leader products, sold-out inventory, and store/product pairs with
no inventory record.

Example:
  storepulse seed --stores 12 --products 35 --days 365 --random-seed 42`,
	RunE: runSeedCmd,
}

func init() {
	seedCmd.Flags().IntVar(&seedStores, "stores", 0,
		"number of stores to generate")
	seedCmd.Flags().IntVar(&seedProducts, "products", 0,
		"number of products to generate")
	seedCmd.Flags().IntVar(&seedDays, "days", 0,
		"length of the sales history in days")
	seedCmd.Flags().IntVar(&seedMaxDailySales, "max-daily-sales", 0,
		"maximum sale events per store per day")
	seedCmd.Flags().StringVar(&seedStartDate, "start-date", "",
		"first sale date (YYYY-MM-DD, default: days before today)")
	seedCmd.Flags().Uint64Var(&seedRandomSeed, "random-seed", 0,
		"random seed for reproducible generation (0 = random)")
}

func runSeedCmd(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if seedStores > 0 {
		cfg.Seed.Stores = seedStores
	}
	if seedProducts > 0 {
		cfg.Seed.Products = seedProducts
	}
	if seedDays > 0 {
		cfg.Seed.Days = seedDays
	}
	if seedMaxDailySales > 0 {
		cfg.Seed.MaxDailySales = seedMaxDailySales
	}
	if seedStartDate != "" {
		cfg.Seed.StartDate = seedStartDate
	}
	if seedRandomSeed != 0 {
		cfg.Seed.RandomSeed = seedRandomSeed
	}

	if err := cfg.ValidateSeed(); err != nil {
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
	if !exists {
		return fmt.Errorf("schema not found; run 'storepulse init' first")
	}

	return seed.Run(ctx, store.New(pool), cfg)
}
