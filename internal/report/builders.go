//-------------------------------------------------------------------------
//
// storepulse - retail analytics toolkit
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package report

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/storepulse/storepulse/internal/analytics"
	"github.com/storepulse/storepulse/internal/quality"
	"github.com/storepulse/storepulse/internal/store"
)

// pct renders a nullable percentage to two decimals.
func pct(d decimal.NullDecimal) string {
	if !d.Valid {
		return NullCell
	}
	return d.Decimal.StringFixed(2)
}

// Summary builds the sales rollup report for a grouping.
func Summary(grouping analytics.Grouping, rows []analytics.RollupRow) *Report {
	r := &Report{
		Name:    fmt.Sprintf("Sales summary by %s", grouping),
		Columns: []string{"key", "units", "revenue", "cost", "profit", "margin_pct"},
	}
	for _, row := range rows {
		r.Rows = append(r.Rows, []string{
			row.Key,
			strconv.FormatInt(row.Units, 10),
			row.Revenue.StringFixed(2),
			row.Cost.StringFixed(2),
			row.Profit.StringFixed(2),
			pct(row.MarginPct),
		})
	}
	return r
}

// TopPerStore builds the per-store product ranking report.
func TopPerStore(rows []analytics.StoreProductRank) *Report {
	r := &Report{
		Name:    "Top products per store",
		Columns: []string{"store_id", "store_name", "rank", "product_id", "product_name", "units"},
	}
	for _, row := range rows {
		r.Rows = append(r.Rows, []string{
			strconv.FormatInt(row.StoreID, 10),
			row.StoreName,
			strconv.Itoa(row.Rank),
			strconv.FormatInt(row.ProductID, 10),
			row.ProductName,
			strconv.FormatInt(row.Units, 10),
		})
	}
	return r
}

// TopGlobal builds the global product ranking report.
func TopGlobal(rows []analytics.ProductRank) *Report {
	r := &Report{
		Name:    "Top products",
		Columns: []string{"rank", "product_id", "product_name", "units"},
	}
	for _, row := range rows {
		r.Rows = append(r.Rows, []string{
			strconv.Itoa(row.Rank),
			strconv.FormatInt(row.ProductID, 10),
			row.ProductName,
			strconv.FormatInt(row.Units, 10),
		})
	}
	return r
}

// ABC builds the ABC classification report.
func ABC(rows []analytics.ABCRow) *Report {
	r := &Report{
		Name:    "ABC classification",
		Columns: []string{"product_id", "product_name", "units", "running_units", "running_pct", "band"},
	}
	for _, row := range rows {
		r.Rows = append(r.Rows, []string{
			strconv.FormatInt(row.ProductID, 10),
			row.ProductName,
			strconv.FormatInt(row.Units, 10),
			strconv.FormatInt(row.RunningUnits, 10),
			row.RunningPct.StringFixed(2),
			string(row.Band),
		})
	}
	return r
}

// StockRatios builds the full stock-to-sales report.
func StockRatios(rows []analytics.StockRatioRow) *Report {
	return stockReport("Stock-to-sales ratios", rows)
}

// StockoutRisk builds the truncated stockout-risk report.
func StockoutRisk(rows []analytics.StockRatioRow) *Report {
	return stockReport("Stockout risk", rows)
}

func stockReport(name string, rows []analytics.StockRatioRow) *Report {
	r := &Report{
		Name: name,
		Columns: []string{"store_id", "store_name", "product_id", "product_name",
			"stock_on_hand", "units_sold", "ratio"},
	}
	for _, row := range rows {
		ratio := NullCell
		if row.Ratio.Valid {
			ratio = row.Ratio.Decimal.StringFixed(2)
		}
		r.Rows = append(r.Rows, []string{
			strconv.FormatInt(row.StoreID, 10),
			row.StoreName,
			strconv.FormatInt(row.ProductID, 10),
			row.ProductName,
			strconv.FormatInt(row.StockOnHand, 10),
			strconv.FormatInt(row.UnitsSold, 10),
			ratio,
		})
	}
	return r
}

// YearOverYear builds the store/year rollup report. Product labels are
// joined with "; " in the last column.
func YearOverYear(rows []analytics.StoreYearRow) *Report {
	r := &Report{
		Name: "Year over year by store",
		Columns: []string{"store_id", "store_name", "year", "units",
			"revenue", "cost", "profit", "margin_pct", "products"},
	}
	for _, row := range rows {
		labels := ""
		for i, name := range row.Products {
			if i > 0 {
				labels += "; "
			}
			labels += name
		}
		r.Rows = append(r.Rows, []string{
			strconv.FormatInt(row.StoreID, 10),
			row.StoreName,
			strconv.Itoa(row.Year),
			strconv.FormatInt(row.Units, 10),
			row.Revenue.StringFixed(2),
			row.Cost.StringFixed(2),
			row.Profit.StringFixed(2),
			pct(row.MarginPct),
			labels,
		})
	}
	return r
}

// Validations builds the data quality report.
func Validations(violations []quality.Violation) *Report {
	r := &Report{
		Name:    "Data quality violations",
		Columns: []string{"rule", "entity", "key", "detail"},
	}
	for _, v := range violations {
		r.Rows = append(r.Rows, []string{string(v.Rule), v.Entity, v.Key, v.Detail})
	}
	return r
}

// Enriched builds the denormalized sales view report.
func Enriched(rows []store.ReportingRow) *Report {
	r := &Report{
		Name: "Enriched sales",
		Columns: []string{"sale_id", "sale_date", "weekday", "month", "year", "weekend",
			"store_name", "store_city", "store_location",
			"product_name", "category", "units", "stock_on_hand",
			"revenue", "cost", "profit", "margin_pct"},
	}
	for _, row := range rows {
		weekday, month, year, weekend := NullCell, NullCell, NullCell, NullCell
		if row.WeekdayName != nil {
			weekday = *row.WeekdayName
		}
		if row.MonthName != nil {
			month = *row.MonthName
		}
		if row.Year != nil {
			year = strconv.Itoa(*row.Year)
		}
		if row.IsWeekend != nil {
			weekend = strconv.FormatBool(*row.IsWeekend)
		}
		stock := NullCell
		if row.StockOnHand != nil {
			stock = strconv.FormatInt(*row.StockOnHand, 10)
		}
		r.Rows = append(r.Rows, []string{
			strconv.FormatInt(row.SaleID, 10),
			row.SaleDate.Format("2006-01-02"),
			weekday,
			month,
			year,
			weekend,
			row.StoreName,
			row.StoreCity,
			row.StoreType,
			row.ProductName,
			row.Category,
			strconv.FormatInt(row.Units, 10),
			stock,
			row.Revenue.StringFixed(2),
			row.Cost.StringFixed(2),
			row.Profit.StringFixed(2),
			pct(row.MarginPct),
		})
	}
	return r
}
