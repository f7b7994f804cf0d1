//-------------------------------------------------------------------------
//
// storepulse - retail analytics toolkit
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/storepulse/storepulse/internal/model"
)

func ratioDataset() *model.Dataset {
	ds := &model.Dataset{
		Products: []model.Product{
			{ID: 1, Name: "Hot Seller", Category: "Toys", Cost: dec("1"), Price: dec("2")},
			{ID: 2, Name: "Slow Mover", Category: "Toys", Cost: dec("1"), Price: dec("2")},
			{ID: 3, Name: "Sold Out", Category: "Toys", Cost: dec("1"), Price: dec("2")},
			{ID: 4, Name: "Dead Stock", Category: "Toys", Cost: dec("1"), Price: dec("2")},
		},
		Stores: []model.Store{
			{ID: 1, Name: "Main", City: "C", LocationType: "Downtown", OpenDate: day(2019, 1, 1)},
		},
		Sales: []model.Sale{
			{ID: 1, Date: day(2022, time.May, 1), StoreID: 1, ProductID: 1, Units: 40}, // ratio 4/40 = 0.1
			{ID: 2, Date: day(2022, time.May, 1), StoreID: 1, ProductID: 2, Units: 5},  // ratio 50/5 = 10
			{ID: 3, Date: day(2022, time.May, 1), StoreID: 1, ProductID: 3, Units: 10}, // ratio 0/10 = 0
		},
		Inventory: []model.InventorySnapshot{
			{StoreID: 1, ProductID: 1, StockOnHand: 4},
			{StoreID: 1, ProductID: 2, StockOnHand: 50},
			{StoreID: 1, ProductID: 3, StockOnHand: 0},
			{StoreID: 1, ProductID: 4, StockOnHand: 10}, // never sold: ratio undefined
		},
	}
	ds.Index()
	return ds
}

func TestStockToSalesOrdering(t *testing.T) {
	rows := StockToSales(ratioDataset())
	if len(rows) != 4 {
		t.Fatalf("len(rows) = %d, want 4", len(rows))
	}

	// Ascending by ratio with the undefined row last:
	// Sold Out (0.00), Hot Seller (0.10), Slow Mover (10.00), Dead Stock (null).
	wantOrder := []string{"Sold Out", "Hot Seller", "Slow Mover", "Dead Stock"}
	for i, name := range wantOrder {
		if rows[i].ProductName != name {
			t.Errorf("rows[%d] = %s, want %s", i, rows[i].ProductName, name)
		}
	}

	// Defined ratios sort ascending pairwise; undefined rows trail.
	lastDefined := -1
	for i, r := range rows {
		if r.Ratio.Valid {
			if lastDefined >= 0 && rows[lastDefined].Ratio.Decimal.GreaterThan(r.Ratio.Decimal) {
				t.Errorf("defined ratios out of order at row %d", i)
			}
			if lastDefined < i-1 && i > 0 && !rows[i-1].Ratio.Valid {
				t.Errorf("undefined ratio at row %d precedes a defined one", i-1)
			}
			lastDefined = i
		}
	}
}

func TestStockToSalesZeroStockIsDefined(t *testing.T) {
	rows := StockToSales(ratioDataset())

	for _, r := range rows {
		if r.ProductName == "Sold Out" {
			if !r.Ratio.Valid {
				t.Fatal("zero stock with non-zero sales must be a defined ratio of zero")
			}
			if r.Ratio.Decimal.StringFixed(2) != "0.00" {
				t.Errorf("ratio = %s, want 0.00", r.Ratio.Decimal.StringFixed(2))
			}
			return
		}
	}
	t.Fatal("Sold Out row missing")
}

func TestStockToSalesZeroSalesIsUndefined(t *testing.T) {
	rows := StockToSales(ratioDataset())

	for _, r := range rows {
		if r.ProductName == "Dead Stock" {
			if r.Ratio.Valid {
				t.Errorf("ratio with zero units sold must be undefined, got %s", r.Ratio.Decimal)
			}
			if r.StockOnHand != 10 {
				t.Errorf("StockOnHand = %d, want 10", r.StockOnHand)
			}
			return
		}
	}
	t.Fatal("Dead Stock row missing")
}

func TestStockToSalesSkipsOrphanSnapshots(t *testing.T) {
	ds := ratioDataset()
	ds.Inventory = append(ds.Inventory, model.InventorySnapshot{StoreID: 9, ProductID: 9, StockOnHand: 3})
	ds.Index()

	if rows := StockToSales(ds); len(rows) != 4 {
		t.Errorf("orphan snapshot leaked into ratios: %d rows", len(rows))
	}
}

func TestStockoutRiskFiltersAndTruncates(t *testing.T) {
	rows := StockoutRisk(ratioDataset(), 2)

	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	// Highest risk first; the never-sold pair is excluded entirely.
	if rows[0].ProductName != "Sold Out" || rows[1].ProductName != "Hot Seller" {
		t.Errorf("risk order = %s, %s; want Sold Out, Hot Seller",
			rows[0].ProductName, rows[1].ProductName)
	}
	for _, r := range rows {
		if r.UnitsSold <= 0 {
			t.Errorf("row with zero demand in risk report: %+v", r)
		}
	}
}

func TestStockoutRiskDefaultLimit(t *testing.T) {
	ds := &model.Dataset{
		Stores: []model.Store{
			{ID: 1, Name: "Main", City: "C", LocationType: "Downtown", OpenDate: day(2019, 1, 1)},
		},
	}
	for i := 1; i <= 30; i++ {
		id := int64(i)
		ds.Products = append(ds.Products, model.Product{
			ID: id, Name: fmt.Sprintf("P%d", i), Category: "Toys", Cost: dec("1"), Price: dec("2"),
		})
		ds.Sales = append(ds.Sales, model.Sale{
			ID: id, Date: day(2022, 1, 1), StoreID: 1, ProductID: id, Units: 10,
		})
		ds.Inventory = append(ds.Inventory, model.InventorySnapshot{
			StoreID: 1, ProductID: id, StockOnHand: int64(i),
		})
	}
	ds.Index()

	rows := StockoutRisk(ds, 0)
	if len(rows) != DefaultRiskTopN {
		t.Errorf("len(rows) = %d, want default %d", len(rows), DefaultRiskTopN)
	}
}
