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

// rankingDataset builds two stores with enough products to exceed the
// per-store limit. Product i sells i units in store 1 and (26-i) in store 2.
func rankingDataset(numProducts int) *model.Dataset {
	ds := &model.Dataset{
		Stores: []model.Store{
			{ID: 1, Name: "North", City: "Springfield", LocationType: "Downtown", OpenDate: day(2019, 1, 1)},
			{ID: 2, Name: "South", City: "Shelbyville", LocationType: "Airport", OpenDate: day(2019, 1, 1)},
		},
	}
	saleID := int64(1)
	for i := 1; i <= numProducts; i++ {
		ds.Products = append(ds.Products, model.Product{
			ID: int64(i), Name: fmt.Sprintf("Product %02d", i), Category: "Toys",
			Cost: dec("1.00"), Price: dec("2.00"),
		})
		ds.Sales = append(ds.Sales,
			model.Sale{ID: saleID, Date: day(2022, time.April, 1), StoreID: 1,
				ProductID: int64(i), Units: int64(i)},
			model.Sale{ID: saleID + 1, Date: day(2022, time.April, 1), StoreID: 2,
				ProductID: int64(i), Units: int64(26 - i)},
		)
		saleID += 2
	}
	ds.Index()
	return ds
}

func TestTopProductsPerStoreLimit(t *testing.T) {
	ds := rankingDataset(25)
	rows := TopProductsPerStore(ds, 10)

	perStore := make(map[int64][]StoreProductRank)
	for _, r := range rows {
		perStore[r.StoreID] = append(perStore[r.StoreID], r)
	}
	if len(perStore) != 2 {
		t.Fatalf("store partitions = %d, want 2", len(perStore))
	}

	for storeID, ranked := range perStore {
		if len(ranked) != 10 {
			t.Errorf("store %d returned %d rows, want 10", storeID, len(ranked))
		}
		for i, r := range ranked {
			if r.Rank != i+1 {
				t.Errorf("store %d row %d has rank %d, want contiguous from 1", storeID, i, r.Rank)
			}
			if i > 0 && r.Units > ranked[i-1].Units {
				t.Errorf("store %d not sorted by units desc at rank %d", storeID, r.Rank)
			}
		}
	}

	// Every returned row's unit count >= every non-returned row's count
	// within the same store: the minimum returned must be >= the maximum
	// excluded. Store 1 sells 16..25 in its top 10, excluding 1..15.
	for _, r := range perStore[1] {
		if r.Units < 16 {
			t.Errorf("store 1 returned product with %d units; an excluded product sold more", r.Units)
		}
	}
}

func TestTopProductsPerStoreIndependentPartitions(t *testing.T) {
	ds := rankingDataset(25)
	rows := TopProductsPerStore(ds, 1)

	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2 (one per store)", len(rows))
	}
	// Store 1's best seller is product 25, store 2's is product 1.
	for _, r := range rows {
		switch r.StoreID {
		case 1:
			if r.ProductID != 25 {
				t.Errorf("store 1 top product = %d, want 25", r.ProductID)
			}
		case 2:
			if r.ProductID != 1 {
				t.Errorf("store 2 top product = %d, want 1", r.ProductID)
			}
		}
	}
}

func TestTopProductsPerStoreTiesKeepFirstSeenOrder(t *testing.T) {
	ds := &model.Dataset{
		Products: []model.Product{
			{ID: 7, Name: "Seen Second", Category: "Toys", Cost: dec("1"), Price: dec("2")},
			{ID: 3, Name: "Seen First", Category: "Toys", Cost: dec("1"), Price: dec("2")},
		},
		Stores: []model.Store{
			{ID: 1, Name: "Solo", City: "C", LocationType: "Downtown", OpenDate: day(2019, 1, 1)},
		},
		Sales: []model.Sale{
			// Product 3 appears first in the sales stream; both tie at 5 units.
			{ID: 1, Date: day(2022, 1, 1), StoreID: 1, ProductID: 3, Units: 5},
			{ID: 2, Date: day(2022, 1, 2), StoreID: 1, ProductID: 7, Units: 5},
		},
	}
	ds.Index()

	rows := TopProductsPerStore(ds, 10)
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0].ProductID != 3 || rows[0].Rank != 1 {
		t.Errorf("tie not broken by first-seen order: got product %d at rank 1", rows[0].ProductID)
	}
	if rows[1].ProductID != 7 || rows[1].Rank != 2 {
		t.Errorf("tied products must not share a rank: %+v", rows[1])
	}
}

func TestTopProductsGlobal(t *testing.T) {
	ds := rankingDataset(25)
	rows := TopProducts(ds, 20)

	if len(rows) != 20 {
		t.Fatalf("len(rows) = %d, want 20", len(rows))
	}
	// Every product totals 26 units across the two stores, so the global
	// list is one big tie resolved by first-seen sale order.
	for i, r := range rows {
		if r.Units != 26 {
			t.Errorf("row %d units = %d, want 26", i, r.Units)
		}
		if r.Rank != i+1 {
			t.Errorf("row %d rank = %d, want %d", i, r.Rank, i+1)
		}
		if r.ProductID != int64(i+1) {
			t.Errorf("row %d product = %d, want first-seen order %d", i, r.ProductID, i+1)
		}
	}
}

func TestTopProductsFewerThanLimit(t *testing.T) {
	ds := rankingDataset(3)
	if rows := TopProducts(ds, 20); len(rows) != 3 {
		t.Errorf("len(rows) = %d, want 3", len(rows))
	}
	if rows := TopProductsPerStore(ds, 10); len(rows) != 6 {
		t.Errorf("len(rows) = %d, want 6 (3 per store)", len(rows))
	}
}

func TestTopProductsEmptyDataset(t *testing.T) {
	ds := &model.Dataset{}
	ds.Index()
	if rows := TopProducts(ds, 20); len(rows) != 0 {
		t.Errorf("empty dataset returned %d rows", len(rows))
	}
	if rows := TopProductsPerStore(ds, 10); len(rows) != 0 {
		t.Errorf("empty dataset returned %d per-store rows", len(rows))
	}
}
