//-------------------------------------------------------------------------
//
// storepulse - retail analytics toolkit
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package seed

import (
	"testing"
	"time"

	"github.com/storepulse/storepulse/internal/config"
)

func testSeedConfig() config.SeedConfig {
	return config.SeedConfig{
		Stores:        4,
		Products:      20,
		Days:          14,
		MaxDailySales: 10,
		StartDate:     "2023-06-01",
		RandomSeed:    12345,
	}
}

func TestGeneratorProducts(t *testing.T) {
	gen := NewGenerator(testSeedConfig())
	products := gen.Products()

	if len(products) != 20 {
		t.Fatalf("len(products) = %d, want 20", len(products))
	}

	seen := make(map[int64]bool)
	for _, p := range products {
		if seen[p.ID] {
			t.Errorf("duplicate product id %d", p.ID)
		}
		seen[p.ID] = true

		if p.Name == "" || p.Category == "" {
			t.Errorf("product %d has empty name or category", p.ID)
		}
		if p.Cost.IsNegative() || p.Price.IsNegative() {
			t.Errorf("product %d has negative cost or price", p.ID)
		}
		if p.Cost.Exponent() < -2 || p.Price.Exponent() < -2 {
			t.Errorf("product %d cost/price not rounded to cents: %s / %s",
				p.ID, p.Cost, p.Price)
		}
	}
}

func TestGeneratorStores(t *testing.T) {
	gen := NewGenerator(testSeedConfig())
	firstSale := time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
	stores := gen.Stores(firstSale)

	if len(stores) != 4 {
		t.Fatalf("len(stores) = %d, want 4", len(stores))
	}
	for _, s := range stores {
		if s.Name == "" || s.City == "" || s.LocationType == "" {
			t.Errorf("store %d has empty attributes", s.ID)
		}
		if s.OpenDate.After(firstSale) {
			t.Errorf("store %d opened %s, after first sale date", s.ID, s.OpenDate)
		}
	}
}

func TestGeneratorSales(t *testing.T) {
	gen := NewGenerator(testSeedConfig())
	start := gen.startDate()
	end := start.AddDate(0, 0, 13)

	products := gen.Products()
	stores := gen.Stores(start)
	sales := gen.Sales(stores, products)

	if len(sales) == 0 {
		t.Fatal("no sales generated")
	}

	var lastID int64
	for _, s := range sales {
		if s.ID <= lastID {
			t.Fatalf("sale ids not strictly increasing at %d", s.ID)
		}
		lastID = s.ID

		if s.Date.Before(start) || s.Date.After(end) {
			t.Errorf("sale %d dated %s outside [%s, %s]", s.ID, s.Date, start, end)
		}
		if s.Units < 1 || s.Units > 5 {
			t.Errorf("sale %d has %d units, want 1-5", s.ID, s.Units)
		}
		if s.StoreID < 1 || s.StoreID > 4 {
			t.Errorf("sale %d references unknown store %d", s.ID, s.StoreID)
		}
		if s.ProductID < 1 || s.ProductID > 20 {
			t.Errorf("sale %d references unknown product %d", s.ID, s.ProductID)
		}
	}
}

func TestGeneratorInventory(t *testing.T) {
	gen := NewGenerator(testSeedConfig())
	start := gen.startDate()
	products := gen.Products()
	stores := gen.Stores(start)

	snapshots := gen.Inventory(stores, products)
	if len(snapshots) == 0 {
		t.Fatal("no inventory generated")
	}
	if len(snapshots) > len(stores)*len(products) {
		t.Fatalf("more snapshots (%d) than store/product pairs (%d)",
			len(snapshots), len(stores)*len(products))
	}

	seen := make(map[[2]int64]bool)
	for _, inv := range snapshots {
		key := [2]int64{inv.StoreID, inv.ProductID}
		if seen[key] {
			t.Errorf("duplicate inventory pair (%d, %d)", inv.StoreID, inv.ProductID)
		}
		seen[key] = true

		if inv.StockOnHand < 0 {
			t.Errorf("pair (%d, %d) has negative stock", inv.StoreID, inv.ProductID)
		}
	}
}

func TestGeneratorReproducible(t *testing.T) {
	a := NewGenerator(testSeedConfig()).Products()
	b := NewGenerator(testSeedConfig()).Products()

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Name != b[i].Name || !a[i].Cost.Equal(b[i].Cost) || !a[i].Price.Equal(b[i].Price) {
			t.Fatalf("product %d differs between runs with the same seed", i)
		}
	}
}

func TestGeneratorStartDateDefault(t *testing.T) {
	cfg := testSeedConfig()
	cfg.StartDate = ""
	gen := NewGenerator(cfg)

	start := gen.startDate()
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if got := start.AddDate(0, 0, cfg.Days-1); !got.Equal(today) {
		t.Errorf("default start %s does not end the range today", start)
	}
}
