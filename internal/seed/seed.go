//-------------------------------------------------------------------------
//
// storepulse - retail analytics toolkit
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package seed generates a synthetic retail dataset: stores, a product
// catalog, a daily sales history, and an inventory snapshot. The shape
// mirrors what the analytics passes expect to find in a real extract,
// including zero-stock rows and store/product pairs with no inventory
// record at all.
package seed

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storepulse/storepulse/internal/config"
	"github.com/storepulse/storepulse/internal/datagen"
	"github.com/storepulse/storepulse/internal/db"
	"github.com/storepulse/storepulse/internal/logging"
	"github.com/storepulse/storepulse/internal/model"
	"github.com/storepulse/storepulse/internal/store"
)

var productCategories = []string{
	"Action Figures",
	"Art & Crafts",
	"Electronics",
	"Games",
	"Plush",
	"Sports & Outdoors",
}

// Category weights skew the catalog toward the high-volume categories.
var categoryWeights = []int{15, 20, 10, 25, 15, 15}

var locationTypes = []string{"Downtown", "Commercial", "Residential", "Airport"}

// Airport stores are rare.
var locationWeights = []int{30, 30, 30, 10}

// Unit counts per sale event, weighted toward single-unit sales.
var unitChoices = []int64{1, 2, 3, 4, 5}
var unitWeights = []int{50, 25, 12, 8, 5}

// Generator produces a synthetic dataset from seed configuration.
type Generator struct {
	faker *datagen.Faker
	cfg   config.SeedConfig
}

// NewGenerator creates a Generator. A non-zero RandomSeed makes the
// output reproducible.
func NewGenerator(cfg config.SeedConfig) *Generator {
	var faker *datagen.Faker
	if cfg.RandomSeed != 0 {
		faker = datagen.NewFakerWithSeed(cfg.RandomSeed)
	} else {
		faker = datagen.NewFaker()
	}
	return &Generator{faker: faker, cfg: cfg}
}

// startDate returns the first sale date.
func (g *Generator) startDate() time.Time {
	if g.cfg.StartDate != "" {
		// Validated by config.ValidateSeed.
		t, _ := time.Parse("2006-01-02", g.cfg.StartDate)
		return t
	}
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -(g.cfg.Days - 1))
}

// Products generates the product catalog. Roughly one product in
// twenty is a loss leader priced below cost.
func (g *Generator) Products() []model.Product {
	products := make([]model.Product, 0, g.cfg.Products)
	for i := 0; i < g.cfg.Products; i++ {
		cost := decimal.NewFromFloat(g.faker.Price(1.00, 60.00)).Round(2)

		var price decimal.Decimal
		if g.faker.Int(1, 20) == 1 {
			// Loss leader: sold below cost.
			price = cost.Mul(decimal.NewFromFloat(g.faker.Float64(0.70, 0.95))).Round(2)
		} else {
			price = cost.Mul(decimal.NewFromFloat(g.faker.Float64(1.20, 2.50))).Round(2)
		}

		products = append(products, model.Product{
			ID:       int64(i + 1),
			Name:     g.faker.ProductName(),
			Category: datagen.ChooseWeighted(g.faker, productCategories, categoryWeights),
			Cost:     cost,
			Price:    price,
		})
	}
	return products
}

// Stores generates the store list.
func (g *Generator) Stores(firstSaleDate time.Time) []model.Store {
	stores := make([]model.Store, 0, g.cfg.Stores)
	earliestOpen := firstSaleDate.AddDate(-8, 0, 0)
	for i := 0; i < g.cfg.Stores; i++ {
		city := g.faker.City()
		stores = append(stores, model.Store{
			ID:           int64(i + 1),
			Name:         fmt.Sprintf("StorePulse %s %d", city, i+1),
			City:         city,
			LocationType: datagen.ChooseWeighted(g.faker, locationTypes, locationWeights),
			OpenDate:     truncateDay(g.faker.DateRange(earliestOpen, firstSaleDate)),
		})
	}
	return stores
}

// Sales generates the daily sales history. Weekends see roughly half
// again as many sale events as weekdays.
func (g *Generator) Sales(stores []model.Store, products []model.Product) []model.Sale {
	start := g.startDate()
	var sales []model.Sale
	var nextID int64 = 1

	for d := 0; d < g.cfg.Days; d++ {
		date := start.AddDate(0, 0, d)
		weekend := date.Weekday() == time.Saturday || date.Weekday() == time.Sunday

		for _, st := range stores {
			n := g.faker.Int(0, g.cfg.MaxDailySales)
			if weekend {
				n += n / 2
			}
			for i := 0; i < n; i++ {
				p := datagen.Choose(g.faker, products)
				sales = append(sales, model.Sale{
					ID:        nextID,
					Date:      date,
					StoreID:   st.ID,
					ProductID: p.ID,
					Units:     datagen.ChooseWeighted(g.faker, unitChoices, unitWeights),
				})
				nextID++
			}
		}
	}
	return sales
}

// Inventory generates a point-in-time stock snapshot. Some pairs are
// deliberately absent and some carry zero stock, so the stock-to-sales
// report has sold-out and never-stocked cases to surface.
func (g *Generator) Inventory(stores []model.Store, products []model.Product) []model.InventorySnapshot {
	var snapshots []model.InventorySnapshot
	for _, st := range stores {
		for _, p := range products {
			roll := g.faker.Int(1, 100)
			if roll <= 10 {
				// No inventory record for this pair.
				continue
			}

			var stock int64
			if roll <= 18 {
				stock = 0
			} else {
				stock = int64(g.faker.Int(1, 60))
			}
			snapshots = append(snapshots, model.InventorySnapshot{
				StoreID:     st.ID,
				ProductID:   p.ID,
				StockOnHand: stock,
			})
		}
	}
	return snapshots
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Run generates a full dataset and writes it through the store. Any
// existing data rows are truncated first.
func Run(ctx context.Context, s *store.Store, cfg *config.Config) error {
	gen := NewGenerator(cfg.Seed)

	if err := s.TruncateData(ctx); err != nil {
		return err
	}

	start := gen.startDate()
	products := gen.Products()
	stores := gen.Stores(start)

	logging.Info().
		Int("stores", len(stores)).
		Int("products", len(products)).
		Int("days", cfg.Seed.Days).
		Str("start_date", start.Format("2006-01-02")).
		Msg("Generating dataset")

	if err := s.InsertProducts(ctx, products); err != nil {
		return err
	}
	if err := s.InsertStores(ctx, stores); err != nil {
		return err
	}

	sales := gen.Sales(stores, products)
	batchCfg := datagen.DefaultBatchConfig()
	progress := datagen.NewProgressReporter("sales", int64(len(sales)), batchCfg.ProgressInterval)
	for i := 0; i < len(sales); i += batchCfg.BatchSize {
		end := min(i+batchCfg.BatchSize, len(sales))
		written, err := s.InsertSales(ctx, sales[i:end])
		if err != nil {
			return err
		}
		progress.Update(written)
	}
	progress.Done()

	inventory := gen.Inventory(stores, products)
	if err := s.InsertInventory(ctx, inventory); err != nil {
		return err
	}

	if err := db.EnsureMetadataTable(ctx, s.Pool()); err != nil {
		return err
	}
	meta := map[string]string{
		db.MetaSeededAt:     time.Now().UTC().Format(time.RFC3339),
		db.MetaSeedStores:   strconv.Itoa(len(stores)),
		db.MetaSeedProducts: strconv.Itoa(len(products)),
		db.MetaSeedSales:    strconv.Itoa(len(sales)),
	}
	for k, v := range meta {
		if err := db.SaveMetadata(ctx, s.Pool(), k, v); err != nil {
			return err
		}
	}

	logging.Info().
		Int("sales", len(sales)).
		Int("inventory", len(inventory)).
		Msg("Seed complete")

	return nil
}
