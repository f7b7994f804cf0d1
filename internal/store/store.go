//-------------------------------------------------------------------------
//
// storepulse - retail analytics toolkit
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package store is the persistence layer. It loads datasets for the
// in-memory analytics passes, writes seed batches, and maintains the
// calendar dimension.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/storepulse/storepulse/internal/model"
)

// Store wraps a connection pool with storepulse data access.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store over an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Pool returns the underlying connection pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// LoadDataset reads all products, stores, sales and inventory into
// memory and indexes the result. Row order is deterministic so the
// aggregation passes see a stable insertion order.
func (s *Store) LoadDataset(ctx context.Context) (*model.Dataset, error) {
	ds := &model.Dataset{}

	rows, err := s.pool.Query(ctx, `
		SELECT product_id, product_name, product_category, product_cost, product_price
		FROM products ORDER BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Cost, &p.Price); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		ds.Products = append(ds.Products, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	rows, err = s.pool.Query(ctx, `
		SELECT store_id, store_name, store_city, store_location, store_open_date
		FROM stores ORDER BY store_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load stores: %w", err)
	}
	for rows.Next() {
		var st model.Store
		if err := rows.Scan(&st.ID, &st.Name, &st.City, &st.LocationType, &st.OpenDate); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		ds.Stores = append(ds.Stores, st)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load stores: %w", err)
	}

	rows, err = s.pool.Query(ctx, `
		SELECT sale_id, sale_date, store_id, product_id, units
		FROM sales ORDER BY sale_date, sale_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}
	for rows.Next() {
		var sl model.Sale
		if err := rows.Scan(&sl.ID, &sl.Date, &sl.StoreID, &sl.ProductID, &sl.Units); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		ds.Sales = append(ds.Sales, sl)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}

	rows, err = s.pool.Query(ctx, `
		SELECT store_id, product_id, stock_on_hand
		FROM inventory ORDER BY store_id, product_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	for rows.Next() {
		var inv model.InventorySnapshot
		if err := rows.Scan(&inv.StoreID, &inv.ProductID, &inv.StockOnHand); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan inventory: %w", err)
		}
		ds.Inventory = append(ds.Inventory, inv)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}

	ds.Index()
	return ds, nil
}

// SaleDateRange returns the min and max sale_date. ok is false when
// the sales table is empty.
func (s *Store) SaleDateRange(ctx context.Context) (min, max time.Time, ok bool, err error) {
	var minDate, maxDate *time.Time
	err = s.pool.QueryRow(ctx,
		"SELECT MIN(sale_date), MAX(sale_date) FROM sales").Scan(&minDate, &maxDate)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("failed to read sale date range: %w", err)
	}
	if minDate == nil || maxDate == nil {
		return time.Time{}, time.Time{}, false, nil
	}
	return *minDate, *maxDate, true, nil
}

// UpsertCalendar writes calendar rows, updating derived attributes on
// conflict so the command is safe to re-run.
func (s *Store) UpsertCalendar(ctx context.Context, days []model.CalendarDay) error {
	const batchSize = 500

	for start := 0; start < len(days); start += batchSize {
		end := start + batchSize
		if end > len(days) {
			end = len(days)
		}

		var sb strings.Builder
		sb.WriteString(`INSERT INTO calendar
			(cal_date, weekday_name, month_number, month_name, cal_year, is_weekend) VALUES `)
		args := make([]any, 0, (end-start)*6)
		for i, d := range days[start:end] {
			if i > 0 {
				sb.WriteString(", ")
			}
			n := i * 6
			fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d)",
				n+1, n+2, n+3, n+4, n+5, n+6)
			args = append(args, d.Date, d.WeekdayName, d.MonthNumber,
				d.MonthName, d.Year, d.IsWeekend)
		}
		sb.WriteString(` ON CONFLICT (cal_date) DO UPDATE SET
			weekday_name = EXCLUDED.weekday_name,
			month_number = EXCLUDED.month_number,
			month_name = EXCLUDED.month_name,
			cal_year = EXCLUDED.cal_year,
			is_weekend = EXCLUDED.is_weekend`)

		if _, err := s.pool.Exec(ctx, sb.String(), args...); err != nil {
			return fmt.Errorf("failed to upsert calendar batch: %w", err)
		}
	}
	return nil
}

// CalendarCount returns the number of calendar rows.
func (s *Store) CalendarCount(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM calendar").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count calendar rows: %w", err)
	}
	return count, nil
}

// ReportingRow is one row of the sales_enriched view.
type ReportingRow struct {
	SaleID      int64
	SaleDate    time.Time
	WeekdayName *string
	MonthName   *string
	Year        *int
	IsWeekend   *bool
	StoreID     int64
	StoreName   string
	StoreCity   string
	StoreType   string
	ProductID   int64
	ProductName string
	Category    string
	Units       int64
	StockOnHand *int64
	Revenue     decimal.Decimal
	Cost        decimal.Decimal
	Profit      decimal.Decimal
	MarginPct   decimal.NullDecimal
}

// ReportingView reads the sales_enriched view in date order (oldest
// first), capped at limit rows. A limit of 0 reads everything.
func (s *Store) ReportingView(ctx context.Context, limit int) ([]ReportingRow, error) {
	sql := `
		SELECT sale_id, sale_date, weekday_name, month_name, cal_year, is_weekend,
			store_id, store_name, store_city, store_location,
			product_id, product_name, product_category,
			units, stock_on_hand, revenue, cost, profit, margin_pct
		FROM sales_enriched
		ORDER BY sale_date, sale_id`
	if limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to read sales_enriched: %w", err)
	}
	defer rows.Close()

	var out []ReportingRow
	for rows.Next() {
		var r ReportingRow
		if err := rows.Scan(&r.SaleID, &r.SaleDate, &r.WeekdayName, &r.MonthName,
			&r.Year, &r.IsWeekend, &r.StoreID, &r.StoreName, &r.StoreCity,
			&r.StoreType, &r.ProductID, &r.ProductName, &r.Category,
			&r.Units, &r.StockOnHand, &r.Revenue, &r.Cost, &r.Profit, &r.MarginPct); err != nil {
			return nil, fmt.Errorf("failed to scan sales_enriched row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sales_enriched: %w", err)
	}
	return out, nil
}

// TableCounts returns row counts for the core tables.
func (s *Store) TableCounts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, 5)
	for _, table := range []string{"products", "stores", "inventory", "sales", "calendar"} {
		var n int64
		sql := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
		if err := s.pool.QueryRow(ctx, sql).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
