//-------------------------------------------------------------------------
//
// storepulse - retail analytics toolkit
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package analytics

import (
	"sort"
	"testing"
	"time"

	"github.com/storepulse/storepulse/internal/model"
)

func yoyDataset() *model.Dataset {
	ds := &model.Dataset{
		Products: []model.Product{
			{ID: 1, Name: "Blocks", Category: "Toys", Cost: dec("2.00"), Price: dec("5.00")},
			{ID: 2, Name: "Puzzle", Category: "Games", Cost: dec("3.00"), Price: dec("7.00")},
		},
		Stores: []model.Store{
			{ID: 1, Name: "North", City: "Springfield", LocationType: "Downtown", OpenDate: day(2019, 1, 1)},
			{ID: 2, Name: "South", City: "Shelbyville", LocationType: "Commercial", OpenDate: day(2019, 1, 1)},
		},
		Sales: []model.Sale{
			{ID: 1, Date: day(2021, time.March, 5), StoreID: 1, ProductID: 1, Units: 10},
			{ID: 2, Date: day(2021, time.July, 9), StoreID: 1, ProductID: 2, Units: 4},
			{ID: 3, Date: day(2022, time.March, 5), StoreID: 1, ProductID: 1, Units: 6},
			{ID: 4, Date: day(2021, time.May, 2), StoreID: 2, ProductID: 2, Units: 3},
		},
	}
	ds.Index()
	return ds
}

func TestYearOverYearBuckets(t *testing.T) {
	rows := YearOverYear(yoyDataset())

	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3 buckets", len(rows))
	}

	// Ordered by store id, then year.
	want := []struct {
		storeID int64
		year    int
		units   int64
		revenue string
	}{
		{1, 2021, 14, "78.00"}, // 10*5.00 + 4*7.00
		{1, 2022, 6, "30.00"},  // 6*5.00
		{2, 2021, 3, "21.00"},  // 3*7.00
	}
	for i, w := range want {
		r := rows[i]
		if r.StoreID != w.storeID || r.Year != w.year {
			t.Errorf("rows[%d] = store %d year %d, want store %d year %d",
				i, r.StoreID, r.Year, w.storeID, w.year)
		}
		if r.Units != w.units {
			t.Errorf("rows[%d] units = %d, want %d", i, r.Units, w.units)
		}
		if got := r.Revenue.StringFixed(2); got != w.revenue {
			t.Errorf("rows[%d] revenue = %s, want %s", i, got, w.revenue)
		}
		if !r.MarginPct.Valid {
			t.Errorf("rows[%d] margin undefined with non-zero revenue", i)
		}
	}
}

func TestYearOverYearProductLabels(t *testing.T) {
	rows := YearOverYear(yoyDataset())

	// The label list is an unordered distinct set; compare sorted.
	got := append([]string(nil), rows[0].Products...)
	sort.Strings(got)
	want := []string{"Blocks", "Puzzle"}
	if len(got) != len(want) {
		t.Fatalf("store 1 / 2021 products = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("store 1 / 2021 products = %v, want %v", got, want)
		}
	}

	if len(rows[1].Products) != 1 || rows[1].Products[0] != "Blocks" {
		t.Errorf("store 1 / 2022 products = %v, want [Blocks]", rows[1].Products)
	}
}

func TestYearOverYearDistinctLabels(t *testing.T) {
	ds := yoyDataset()
	// A second Blocks sale in the same bucket must not duplicate the label.
	ds.Sales = append(ds.Sales,
		model.Sale{ID: 5, Date: day(2021, time.April, 1), StoreID: 1, ProductID: 1, Units: 1})
	ds.Index()

	rows := YearOverYear(ds)
	if len(rows[0].Products) != 2 {
		t.Errorf("store 1 / 2021 labels = %v, want 2 distinct names", rows[0].Products)
	}
}

func TestYearOverYearProfitMatchesRollup(t *testing.T) {
	rows := YearOverYear(yoyDataset())
	r := rows[0] // store 1, 2021: profit = 10*3.00 + 4*4.00 = 46.00
	if r.Profit.StringFixed(2) != "46.00" {
		t.Errorf("profit = %s, want 46.00", r.Profit.StringFixed(2))
	}
	if !r.Revenue.Sub(r.Cost).Equal(r.Profit) {
		t.Error("profit != revenue - cost")
	}
}
