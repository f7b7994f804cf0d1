//-------------------------------------------------------------------------
//
// storepulse - retail analytics toolkit
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/storepulse/storepulse/internal/model"
)

// insertBatchSize is the number of rows per multi-VALUES insert.
const insertBatchSize = 1000

// buildPlaceholders renders "($1, $2), ($3, $4), ..." for rows of the
// given width.
func buildPlaceholders(rows, width int) string {
	var sb strings.Builder
	for r := 0; r < rows; r++ {
		if r > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for c := 0; c < width; c++ {
			if c > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", r*width+c+1)
		}
		sb.WriteString(")")
	}
	return sb.String()
}

// InsertProducts writes products in batches.
func (s *Store) InsertProducts(ctx context.Context, products []model.Product) error {
	for start := 0; start < len(products); start += insertBatchSize {
		end := min(start+insertBatchSize, len(products))
		batch := products[start:end]

		sql := `INSERT INTO products
			(product_id, product_name, product_category, product_cost, product_price)
			VALUES ` + buildPlaceholders(len(batch), 5)
		args := make([]any, 0, len(batch)*5)
		for _, p := range batch {
			args = append(args, p.ID, p.Name, p.Category, p.Cost, p.Price)
		}

		if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("failed to insert products: %w", err)
		}
	}
	return nil
}

// InsertStores writes stores in batches.
func (s *Store) InsertStores(ctx context.Context, stores []model.Store) error {
	for start := 0; start < len(stores); start += insertBatchSize {
		end := min(start+insertBatchSize, len(stores))
		batch := stores[start:end]

		sql := `INSERT INTO stores
			(store_id, store_name, store_city, store_location, store_open_date)
			VALUES ` + buildPlaceholders(len(batch), 5)
		args := make([]any, 0, len(batch)*5)
		for _, st := range batch {
			args = append(args, st.ID, st.Name, st.City, st.LocationType, st.OpenDate)
		}

		if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("failed to insert stores: %w", err)
		}
	}
	return nil
}

// InsertInventory writes inventory snapshots in batches.
func (s *Store) InsertInventory(ctx context.Context, snapshots []model.InventorySnapshot) error {
	for start := 0; start < len(snapshots); start += insertBatchSize {
		end := min(start+insertBatchSize, len(snapshots))
		batch := snapshots[start:end]

		sql := `INSERT INTO inventory (store_id, product_id, stock_on_hand)
			VALUES ` + buildPlaceholders(len(batch), 3)
		args := make([]any, 0, len(batch)*3)
		for _, inv := range batch {
			args = append(args, inv.StoreID, inv.ProductID, inv.StockOnHand)
		}

		if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("failed to insert inventory: %w", err)
		}
	}
	return nil
}

// InsertSales writes sales in batches and returns the number of rows
// written.
func (s *Store) InsertSales(ctx context.Context, sales []model.Sale) (int64, error) {
	var written int64
	for start := 0; start < len(sales); start += insertBatchSize {
		end := min(start+insertBatchSize, len(sales))
		batch := sales[start:end]

		sql := `INSERT INTO sales (sale_id, sale_date, store_id, product_id, units)
			VALUES ` + buildPlaceholders(len(batch), 5)
		args := make([]any, 0, len(batch)*5)
		for _, sl := range batch {
			args = append(args, sl.ID, sl.Date, sl.StoreID, sl.ProductID, sl.Units)
		}

		if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
			return written, fmt.Errorf("failed to insert sales: %w", err)
		}
		written += int64(len(batch))
	}
	return written, nil
}

// TruncateData empties the data tables (not the calendar) so seed can
// be re-run against an existing schema.
func (s *Store) TruncateData(ctx context.Context) error {
	for _, table := range []string{"sales", "inventory", "products", "stores"} {
		sql := fmt.Sprintf("TRUNCATE TABLE %s", table)
		if _, err := s.pool.Exec(ctx, sql); err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}
