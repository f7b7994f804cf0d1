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

	"github.com/shopspring/decimal"

	"github.com/storepulse/storepulse/internal/model"
)

// DefaultRiskTopN is the stockout-risk report default.
const DefaultRiskTopN = 20

// StockRatioRow is the stock-to-sales ratio for one (store, product) pair
// that has a recorded inventory snapshot.
type StockRatioRow struct {
	StoreID     int64
	StoreName   string
	ProductID   int64
	ProductName string
	StockOnHand int64
	UnitsSold   int64

	// Ratio is stock_on_hand / units_sold. Undefined when units_sold is
	// zero. Zero stock against non-zero sales is a defined ratio of zero,
	// which is the highest stockout risk, not a missing value.
	Ratio decimal.NullDecimal
}

// StockToSales computes the ratio for every snapshot whose store and
// product resolve. Rows sort ascending by ratio (lowest ratio = highest
// stockout risk first); undefined ratios sort after all defined ones.
// Ties and the undefined tail order by (store id, product id).
func StockToSales(ds *model.Dataset) []StockRatioRow {
	soldByPair := make(map[[2]int64]int64)
	for _, s := range ds.Sales {
		soldByPair[[2]int64{s.StoreID, s.ProductID}] += s.Units
	}

	var rows []StockRatioRow
	for _, inv := range ds.Inventory {
		st, sok := ds.StoreByID(inv.StoreID)
		p, pok := ds.ProductByID(inv.ProductID)
		if !sok || !pok {
			continue // referential defect, reported by quality checks
		}
		sold := soldByPair[[2]int64{inv.StoreID, inv.ProductID}]

		var ratio decimal.NullDecimal
		if sold != 0 {
			ratio = decimal.NullDecimal{
				Decimal: decimal.NewFromInt(inv.StockOnHand).Div(decimal.NewFromInt(sold)),
				Valid:   true,
			}
		}
		rows = append(rows, StockRatioRow{
			StoreID:     inv.StoreID,
			StoreName:   st.Name,
			ProductID:   inv.ProductID,
			ProductName: p.Name,
			StockOnHand: inv.StockOnHand,
			UnitsSold:   sold,
			Ratio:       ratio,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch {
		case a.Ratio.Valid && !b.Ratio.Valid:
			return true
		case !a.Ratio.Valid && b.Ratio.Valid:
			return false
		case a.Ratio.Valid && b.Ratio.Valid && !a.Ratio.Decimal.Equal(b.Ratio.Decimal):
			return a.Ratio.Decimal.LessThan(b.Ratio.Decimal)
		}
		if a.StoreID != b.StoreID {
			return a.StoreID < b.StoreID
		}
		return a.ProductID < b.ProductID
	})
	return rows
}

// StockoutRisk is the "low stock vs high demand" report: only pairs that
// actually sold, ascending by ratio, truncated to limit.
func StockoutRisk(ds *model.Dataset, limit int) []StockRatioRow {
	if limit <= 0 {
		limit = DefaultRiskTopN
	}

	all := StockToSales(ds)
	out := make([]StockRatioRow, 0, limit)
	for _, r := range all {
		if r.UnitsSold <= 0 {
			continue
		}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out
}
