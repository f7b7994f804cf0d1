//-------------------------------------------------------------------------
//
// storepulse - retail analytics toolkit
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MetadataTableName is the name of the metadata tracking table.
const MetadataTableName = "storepulse_metadata"

// Metadata keys written by the subcommands.
const (
	MetaSchemaVersion = "schema_version"
	MetaSeededAt      = "seeded_at"
	MetaSeedStores    = "seed_stores"
	MetaSeedProducts  = "seed_products"
	MetaSeedSales     = "seed_sales"
	MetaCalendarFrom  = "calendar_from"
	MetaCalendarTo    = "calendar_to"
)

// SchemaVersion is written under MetaSchemaVersion when the schema is
// created, so a newer binary can detect a stale database.
const SchemaVersion = "1"

// EnsureMetadataTable creates the metadata table if it doesn't exist.
func EnsureMetadataTable(ctx context.Context, pool *pgxpool.Pool) error {
	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, MetadataTableName)

	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}
	return nil
}

// SaveMetadata upserts a key/value pair into the metadata table.
func SaveMetadata(ctx context.Context, pool *pgxpool.Pool, key, value string) error {
	sql := fmt.Sprintf(`
		INSERT INTO %s (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = now()`, MetadataTableName)

	if _, err := pool.Exec(ctx, sql, key, value); err != nil {
		return fmt.Errorf("failed to save metadata %q: %w", key, err)
	}
	return nil
}

// GetMetadataValue reads a value from the metadata table. It returns
// an empty string without error when the key is absent.
func GetMetadataValue(ctx context.Context, pool *pgxpool.Pool, key string) (string, error) {
	sql := fmt.Sprintf("SELECT value FROM %s WHERE key = $1", MetadataTableName)

	var value string
	err := pool.QueryRow(ctx, sql, key).Scan(&value)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read metadata %q: %w", key, err)
	}
	return value, nil
}

// MetadataExists reports whether the metadata table is present.
func MetadataExists(ctx context.Context, pool *pgxpool.Pool) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)",
		MetadataTableName).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check metadata table: %w", err)
	}
	return exists, nil
}

// DropMetadata removes the metadata table.
func DropMetadata(ctx context.Context, pool *pgxpool.Pool) error {
	sql := fmt.Sprintf("DROP TABLE IF EXISTS %s", MetadataTableName)
	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to drop metadata table: %w", err)
	}
	return nil
}
