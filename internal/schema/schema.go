//-------------------------------------------------------------------------
//
// storepulse - retail analytics toolkit
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package schema creates and drops the storepulse database schema.
//
// sales and inventory deliberately carry no foreign keys: real extracts
// arrive with orphaned references, and the point of the validate command
// is to find them after loading, not to reject the load.
package schema

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storepulse/storepulse/internal/db"
	"github.com/storepulse/storepulse/internal/logging"
)

// Table names in creation order. Drops happen in reverse.
var tableNames = []string{
	"products",
	"stores",
	"inventory",
	"sales",
	"calendar",
}

var createStatements = []string{
	`CREATE TABLE IF NOT EXISTS products (
		product_id BIGINT PRIMARY KEY,
		product_name TEXT NOT NULL,
		product_category TEXT NOT NULL,
		product_cost NUMERIC(10,2) NOT NULL CHECK (product_cost >= 0),
		product_price NUMERIC(10,2) NOT NULL CHECK (product_price >= 0)
	)`,

	`CREATE TABLE IF NOT EXISTS stores (
		store_id BIGINT PRIMARY KEY,
		store_name TEXT NOT NULL,
		store_city TEXT NOT NULL,
		store_location TEXT NOT NULL,
		store_open_date DATE NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS inventory (
		store_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		stock_on_hand BIGINT NOT NULL DEFAULT 0,
		PRIMARY KEY (store_id, product_id)
	)`,

	`CREATE TABLE IF NOT EXISTS sales (
		sale_id BIGINT PRIMARY KEY,
		sale_date DATE NOT NULL,
		store_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		units BIGINT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS calendar (
		cal_date DATE PRIMARY KEY,
		weekday_name TEXT NOT NULL,
		month_number INT NOT NULL,
		month_name TEXT NOT NULL,
		cal_year INT NOT NULL,
		is_weekend BOOLEAN NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_sales_date ON sales (sale_date)`,

	`CREATE INDEX IF NOT EXISTS idx_sales_store_product ON sales (store_id, product_id)`,
}

// createViewSQL builds the denormalized reporting view. Revenue, cost
// and profit are computed per sale row; margin is guarded so rows with
// zero revenue report NULL instead of dividing by zero.
const createViewSQL = `
	CREATE OR REPLACE VIEW sales_enriched AS
	SELECT
		s.sale_id,
		s.sale_date,
		c.weekday_name,
		c.month_name,
		c.cal_year,
		c.is_weekend,
		s.store_id,
		st.store_name,
		st.store_city,
		st.store_location,
		s.product_id,
		p.product_name,
		p.product_category,
		s.units,
		i.stock_on_hand,
		(s.units * p.product_price)::NUMERIC(14,2) AS revenue,
		(s.units * p.product_cost)::NUMERIC(14,2) AS cost,
		(s.units * (p.product_price - p.product_cost))::NUMERIC(14,2) AS profit,
		CASE
			WHEN s.units * p.product_price = 0 THEN NULL
			ELSE ROUND(
				(s.units * (p.product_price - p.product_cost))
				/ (s.units * p.product_price) * 100, 2)
		END AS margin_pct
	FROM sales s
	JOIN products p ON p.product_id = s.product_id
	JOIN stores st ON st.store_id = s.store_id
	LEFT JOIN inventory i ON i.store_id = s.store_id AND i.product_id = s.product_id
	LEFT JOIN calendar c ON c.cal_date = s.sale_date`

// CreateSchema creates all tables, indexes, the reporting view, and
// the metadata table, then records the schema version.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range createStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	if _, err := pool.Exec(ctx, createViewSQL); err != nil {
		return fmt.Errorf("failed to create sales_enriched view: %w", err)
	}

	if err := db.EnsureMetadataTable(ctx, pool); err != nil {
		return err
	}
	if err := db.SaveMetadata(ctx, pool, db.MetaSchemaVersion, db.SchemaVersion); err != nil {
		return err
	}

	logging.Info().
		Int("tables", len(tableNames)).
		Msg("Schema created")

	return nil
}

// DropSchema removes the view, all tables, and the metadata table.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, "DROP VIEW IF EXISTS sales_enriched"); err != nil {
		return fmt.Errorf("failed to drop sales_enriched view: %w", err)
	}

	for i := len(tableNames) - 1; i >= 0; i-- {
		sql := fmt.Sprintf("DROP TABLE IF EXISTS %s", tableNames[i])
		if _, err := pool.Exec(ctx, sql); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", tableNames[i], err)
		}
	}

	if err := db.DropMetadata(ctx, pool); err != nil {
		return err
	}

	logging.Info().Msg("Schema dropped")
	return nil
}

// SchemaExists reports whether the core tables are already present.
func SchemaExists(ctx context.Context, pool *pgxpool.Pool) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'sales')").
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check schema: %w", err)
	}
	return exists, nil
}
