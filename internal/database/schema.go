package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the full DDL for the service. Line snapshots (product_name,
// unit_price, dashboard_category) are denormalised on order_lines so that
// catalogue edits and deletions never touch historical orders.
const Schema = `
CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	price DOUBLE PRECISION NOT NULL CHECK (price >= 0),
	menu_category TEXT NOT NULL,
	dashboard_category TEXT NOT NULL,
	available BOOLEAN NOT NULL DEFAULT TRUE,
	stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
	sold INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS orders (
	id UUID PRIMARY KEY,
	customer_name TEXT NOT NULL,
	table_number INTEGER,
	party_size INTEGER,
	takeaway BOOLEAN NOT NULL DEFAULT FALSE,
	payment_method TEXT NOT NULL,
	completed BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS order_lines (
	id UUID PRIMARY KEY,
	order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	product_id TEXT NOT NULL,
	product_name TEXT NOT NULL,
	unit_price DOUBLE PRECISION NOT NULL,
	dashboard_category TEXT NOT NULL,
	quantity INTEGER NOT NULL CHECK (quantity > 0),
	status TEXT NOT NULL DEFAULT 'waiting'
);

CREATE INDEX IF NOT EXISTS idx_order_lines_order_category
	ON order_lines (order_id, dashboard_category);

CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	is_admin BOOLEAN NOT NULL DEFAULT FALSE,
	active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS user_permissions (
	user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	page TEXT NOT NULL,
	PRIMARY KEY (user_id, page)
);

CREATE TABLE IF NOT EXISTS stats_totals (
	id INTEGER PRIMARY KEY,
	total_orders INTEGER NOT NULL DEFAULT 0,
	completed_orders INTEGER NOT NULL DEFAULT 0,
	revenue_total DOUBLE PRECISION NOT NULL DEFAULT 0,
	revenue_cash DOUBLE PRECISION NOT NULL DEFAULT 0,
	revenue_card DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS stats_categories (
	dashboard_category TEXT PRIMARY KEY,
	total INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS stats_hours (
	hour INTEGER PRIMARY KEY,
	total INTEGER NOT NULL DEFAULT 0
);
`

// Migrate applies the schema. All statements are idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
