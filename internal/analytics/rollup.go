//-------------------------------------------------------------------------
//
// storepulse - retail analytics toolkit
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package analytics implements the aggregation pipeline: grouped
// revenue/cost/profit rollups, partitioned top-N ranking, ABC (Pareto)
// classification, stock-to-sales ratios, and year-over-year summaries.
//
// Every function is a pure pass over an in-memory model.Dataset
// (group-by, accumulate, derive, sort) so the pipeline is unit-testable
// without a database. Monetary amounts accumulate at full decimal
// precision; rounding to two decimals happens at presentation only.
// Any derived ratio with a zero denominator resolves to an explicit
// undefined value for that row and never aborts the rest of the report.
//
// Sales whose store or product reference cannot be resolved carry no price
// information and are excluded from aggregates; the quality package reports
// them as referential defects.
package analytics

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/storepulse/storepulse/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Grouping selects the key set for a rollup.
type Grouping string

const (
	GroupProduct   Grouping = "product"
	GroupStore     Grouping = "store"
	GroupCity      Grouping = "city"
	GroupCategory  Grouping = "category"
	GroupYear      Grouping = "year"
	GroupStoreYear Grouping = "store-year"
)

// Groupings lists the supported rollup groupings.
func Groupings() []Grouping {
	return []Grouping{GroupProduct, GroupStore, GroupCity, GroupCategory, GroupYear, GroupStoreYear}
}

// ParseGrouping validates a user-supplied grouping name.
func ParseGrouping(s string) (Grouping, error) {
	for _, g := range Groupings() {
		if s == string(g) {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown grouping %q (expected one of product, store, city, category, year, store-year)", s)
}

// RollupRow is one aggregated group.
type RollupRow struct {
	Key     string
	Units   int64
	Revenue decimal.Decimal
	Cost    decimal.Decimal
	Profit  decimal.Decimal

	// MarginPct is profit/revenue*100. Invalid (undefined) when the
	// group's revenue is zero; zero revenue is not a 0% margin.
	MarginPct decimal.NullDecimal
}

// RollupBy aggregates units, revenue, cost, profit and margin over the
// given grouping. Rows are ordered by revenue descending; ties keep
// first-seen order.
func RollupBy(ds *model.Dataset, g Grouping) ([]RollupRow, error) {
	if _, err := ParseGrouping(string(g)); err != nil {
		return nil, err
	}

	type acc struct {
		units   int64
		revenue decimal.Decimal
		cost    decimal.Decimal
	}
	groups := make(map[string]*acc)
	var order []string

	for _, s := range ds.Sales {
		p, pok := ds.ProductByID(s.ProductID)
		st, sok := ds.StoreByID(s.StoreID)
		if !pok || !sok {
			continue // referential defect, reported by quality checks
		}

		key := groupKey(g, s, p, st)
		a, ok := groups[key]
		if !ok {
			a = &acc{}
			groups[key] = a
			order = append(order, key)
		}
		units := decimal.NewFromInt(s.Units)
		a.units += s.Units
		a.revenue = a.revenue.Add(p.Price.Mul(units))
		a.cost = a.cost.Add(p.Cost.Mul(units))
	}

	rows := make([]RollupRow, 0, len(order))
	for _, key := range order {
		a := groups[key]
		profit := a.revenue.Sub(a.cost)
		rows = append(rows, RollupRow{
			Key:       key,
			Units:     a.units,
			Revenue:   a.revenue,
			Cost:      a.cost,
			Profit:    profit,
			MarginPct: marginPct(profit, a.revenue),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Revenue.GreaterThan(rows[j].Revenue)
	})
	return rows, nil
}

func groupKey(g Grouping, s model.Sale, p *model.Product, st *model.Store) string {
	switch g {
	case GroupProduct:
		return p.Name
	case GroupStore:
		return st.Name
	case GroupCity:
		return st.City
	case GroupCategory:
		return p.Category
	case GroupYear:
		return strconv.Itoa(s.Date.Year())
	case GroupStoreYear:
		return st.Name + " " + strconv.Itoa(s.Date.Year())
	}
	return ""
}

// marginPct guards the margin division: undefined when revenue is zero.
func marginPct(profit, revenue decimal.Decimal) decimal.NullDecimal {
	if revenue.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{
		Decimal: profit.Div(revenue).Mul(hundred),
		Valid:   true,
	}
}
