package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaStatements create the four core tables plus the cashier table.
// Every statement is idempotent, so EnsureSchema can run on every boot.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id             BIGSERIAL PRIMARY KEY,
		name           TEXT NOT NULL,
		description    TEXT NOT NULL DEFAULT '',
		price          NUMERIC(12,2) NOT NULL,
		barcode        TEXT NOT NULL DEFAULT '',
		category       TEXT NOT NULL DEFAULT 'Uncategorized',
		stock_quantity INT NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
		is_active      BOOLEAN NOT NULL DEFAULT TRUE,
		cost_price     NUMERIC(12,2) NOT NULL DEFAULT 0,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_barcode ON products (barcode) WHERE barcode <> ''`,
	`CREATE INDEX IF NOT EXISTS idx_products_active ON products (is_active)`,
	`CREATE INDEX IF NOT EXISTS idx_products_category ON products (category)`,

	`CREATE TABLE IF NOT EXISTS sales (
		id             BIGSERIAL PRIMARY KEY,
		recorded_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		cashier        TEXT NOT NULL DEFAULT '',
		payment_method TEXT NOT NULL,
		total          NUMERIC(12,2) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_recorded_at ON sales (recorded_at)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_cashier ON sales (cashier)`,

	`CREATE TABLE IF NOT EXISTS sale_items (
		id           BIGSERIAL PRIMARY KEY,
		sale_id      BIGINT NOT NULL REFERENCES sales (id) ON DELETE CASCADE,
		product_id   BIGINT NOT NULL REFERENCES products (id),
		product_name TEXT NOT NULL,
		quantity     INT NOT NULL CHECK (quantity > 0),
		unit_price   NUMERIC(12,2) NOT NULL,
		line_no      INT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sale_items_sale_id ON sale_items (sale_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sale_items_product_id ON sale_items (product_id)`,

	`CREATE TABLE IF NOT EXISTS payments (
		id              BIGSERIAL PRIMARY KEY,
		sale_id         BIGINT NOT NULL REFERENCES sales (id) ON DELETE CASCADE,
		method          TEXT NOT NULL,
		amount_tendered NUMERIC(12,2) NOT NULL,
		change_due      NUMERIC(12,2) NOT NULL DEFAULT 0,
		paid_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_sale_id ON payments (sale_id)`,

	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		full_name     TEXT NOT NULL DEFAULT '',
		role          TEXT NOT NULL DEFAULT 'cashier',
		password_hash TEXT NOT NULL,
		is_active     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// evolutionStatements bring databases created by earlier releases up to
// the current shape. Columns are only ever added, never rewritten, so
// existing rows survive every upgrade.
var evolutionStatements = []string{
	`ALTER TABLE products ADD COLUMN IF NOT EXISTS cost_price NUMERIC(12,2) NOT NULL DEFAULT 0`,
	`ALTER TABLE products ADD COLUMN IF NOT EXISTS category TEXT NOT NULL DEFAULT 'Uncategorized'`,
	`ALTER TABLE sale_items ADD COLUMN IF NOT EXISTS line_no INT NOT NULL DEFAULT 0`,
}

// EnsureSchema creates or upgrades the on-disk schema.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("platform/db: ensure schema: %w", err)
		}
	}
	for _, stmt := range evolutionStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("platform/db: evolve schema: %w", err)
		}
	}
	return nil
}
