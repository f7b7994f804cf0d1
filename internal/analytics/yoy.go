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

// StoreYearRow is the per-(store, year) rollup.
type StoreYearRow struct {
	StoreID   int64
	StoreName string
	Year      int
	Units     int64
	Revenue   decimal.Decimal
	Cost      decimal.Decimal
	Profit    decimal.Decimal
	MarginPct decimal.NullDecimal

	// Products is the distinct set of product names sold in this bucket,
	// as a display-only label list. The order is not guaranteed and must
	// not be relied on.
	Products []string
}

// YearOverYear aggregates sales by (store, year). Rows are ordered by
// store id then year ascending.
func YearOverYear(ds *model.Dataset) []StoreYearRow {
	type key struct {
		storeID int64
		year    int
	}
	type acc struct {
		units   int64
		revenue decimal.Decimal
		cost    decimal.Decimal
		names   []string
		seen    map[string]bool
	}
	groups := make(map[key]*acc)

	for _, s := range ds.Sales {
		p, pok := ds.ProductByID(s.ProductID)
		st, sok := ds.StoreByID(s.StoreID)
		if !pok || !sok {
			continue
		}
		k := key{st.ID, s.Date.Year()}
		a, ok := groups[k]
		if !ok {
			a = &acc{seen: make(map[string]bool)}
			groups[k] = a
		}
		units := decimal.NewFromInt(s.Units)
		a.units += s.Units
		a.revenue = a.revenue.Add(p.Price.Mul(units))
		a.cost = a.cost.Add(p.Cost.Mul(units))
		if !a.seen[p.Name] {
			a.seen[p.Name] = true
			a.names = append(a.names, p.Name)
		}
	}

	rows := make([]StoreYearRow, 0, len(groups))
	for k, a := range groups {
		st, _ := ds.StoreByID(k.storeID)
		profit := a.revenue.Sub(a.cost)
		rows = append(rows, StoreYearRow{
			StoreID:   k.storeID,
			StoreName: st.Name,
			Year:      k.year,
			Units:     a.units,
			Revenue:   a.revenue,
			Cost:      a.cost,
			Profit:    profit,
			MarginPct: marginPct(profit, a.revenue),
			Products:  a.names,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].StoreID != rows[j].StoreID {
			return rows[i].StoreID < rows[j].StoreID
		}
		return rows[i].Year < rows[j].Year
	})
	return rows
}
