//-------------------------------------------------------------------------
//
// storepulse - retail analytics toolkit
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package analytics

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/storepulse/storepulse/internal/model"
)

// ErrNoUnitsSold is returned when the dataset has no units sold at all;
// the classification denominator would be zero, so the whole report is
// undefined rather than silently defaulted.
var ErrNoUnitsSold = errors.New("abc classification undefined: no units sold")

// Band is a Pareto contribution band.
type Band string

const (
	BandA Band = "A" // top contributors, cumulative share <= 50%
	BandB Band = "B" // mid contributors, cumulative share <= 80%
	BandC Band = "C" // long tail
)

// Cumulative share thresholds for the A and B bands, in percent.
var (
	bandACutoff = decimal.NewFromInt(50)
	bandBCutoff = decimal.NewFromInt(80)
)

// ABCRow is one classified product.
type ABCRow struct {
	ProductID    int64
	ProductName  string
	Units        int64
	RunningUnits int64
	RunningPct   decimal.Decimal
	Band         Band
}

// ClassifyABC assigns Pareto bands by cumulative unit share: products are
// sorted by units sold descending, ties broken by product id ascending so
// a tied product always lands on the same side of a band boundary, then a
// single forward pass accumulates the running total.
//
// Every product appears in the result, including ones with no sales (they
// close out band C). Returns ErrNoUnitsSold when the grand total is zero.
func ClassifyABC(ds *model.Dataset) ([]ABCRow, error) {
	unitsByProduct := make(map[int64]int64, len(ds.Products))
	for _, s := range ds.Sales {
		if _, ok := ds.ProductByID(s.ProductID); !ok {
			continue
		}
		if _, ok := ds.StoreByID(s.StoreID); !ok {
			continue
		}
		unitsByProduct[s.ProductID] += s.Units
	}

	rows := make([]ABCRow, 0, len(ds.Products))
	var total int64
	for _, p := range ds.Products {
		u := unitsByProduct[p.ID]
		total += u
		rows = append(rows, ABCRow{ProductID: p.ID, ProductName: p.Name, Units: u})
	}

	if total == 0 {
		return nil, ErrNoUnitsSold
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Units != rows[j].Units {
			return rows[i].Units > rows[j].Units
		}
		return rows[i].ProductID < rows[j].ProductID
	})

	totalDec := decimal.NewFromInt(total)
	var running int64
	for i := range rows {
		running += rows[i].Units
		rows[i].RunningUnits = running
		rows[i].RunningPct = decimal.NewFromInt(running).Div(totalDec).Mul(hundred)

		switch {
		case rows[i].RunningPct.LessThanOrEqual(bandACutoff):
			rows[i].Band = BandA
		case rows[i].RunningPct.LessThanOrEqual(bandBCutoff):
			rows[i].Band = BandB
		default:
			rows[i].Band = BandC
		}
	}
	return rows, nil
}
