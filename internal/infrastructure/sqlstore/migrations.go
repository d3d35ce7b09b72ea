package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Migration is one forward schema step. Up may hold several statements
// separated by semicolons; {{...}} tokens are replaced per dialect.
type Migration struct {
	Version string
	Up      string
}

var AllMigrations = []Migration{
	{Version: "1.0.0", Up: migrationV1},
	{Version: "1.1.0", Up: migrationV1_1},
}

const migrationV1 = `
CREATE TABLE IF NOT EXISTS users (
    id {{id}},
    username TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL,
    balance {{money}} NOT NULL,
    deleted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at {{ts}} NOT NULL,
    updated_at {{ts}} NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS ux_users_username_active ON users(username) WHERE deleted = FALSE;

CREATE TABLE IF NOT EXISTS categories (
    id {{id}},
    name TEXT NOT NULL,
    deleted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at {{ts}} NOT NULL,
    updated_at {{ts}} NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS ux_categories_name_active ON categories(name) WHERE deleted = FALSE;

CREATE TABLE IF NOT EXISTS products (
    id {{id}},
    name TEXT NOT NULL,
    stock_count INTEGER NOT NULL,
    price {{money}} NOT NULL,
    category_id BIGINT NOT NULL REFERENCES categories(id),
    deleted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at {{ts}} NOT NULL,
    updated_at {{ts}} NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS ux_products_name_active ON products(name) WHERE deleted = FALSE;

CREATE TABLE IF NOT EXISTS orders (
    id {{id}},
    user_id BIGINT NOT NULL REFERENCES users(id),
    status TEXT NOT NULL,
    total_price {{money}} NOT NULL,
    deleted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at {{ts}} NOT NULL,
    updated_at {{ts}} NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id);

CREATE TABLE IF NOT EXISTS order_items (
    id {{id}},
    order_id BIGINT NOT NULL REFERENCES orders(id),
    product_id BIGINT NOT NULL REFERENCES products(id),
    quantity INTEGER NOT NULL,
    unit_price {{money}} NOT NULL,
    total_price {{money}} NOT NULL,
    created_at {{ts}} NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);
CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id);

CREATE TABLE IF NOT EXISTS payments (
    id {{id}},
    order_id BIGINT NOT NULL REFERENCES orders(id),
    amount {{money}} NOT NULL,
    method TEXT NOT NULL,
    payment_date {{ts}} NOT NULL,
    created_at {{ts}} NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_payments_order ON payments(order_id)
`

const migrationV1_1 = `
CREATE TABLE IF NOT EXISTS outbox (
    id {{id}},
    event_id TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    event_key TEXT NOT NULL,
    payload {{blob}} NOT NULL,
    created_at {{ts}} NOT NULL,
    sent_at {{ts}}
);
CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox(sent_at, id)
`

func (d dialect) expand(ddl string) string {
	if d == dialectPostgres {
		return strings.NewReplacer(
			"{{id}}", "BIGSERIAL PRIMARY KEY",
			"{{money}}", "NUMERIC(19,2)",
			"{{ts}}", "TIMESTAMPTZ",
			"{{blob}}", "BYTEA",
		).Replace(ddl)
	}
	return strings.NewReplacer(
		"{{id}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"{{money}}", "TEXT",
		"{{ts}}", "TIMESTAMP",
		"{{blob}}", "BLOB",
	).Replace(ddl)
}

func statements(ddl string) []string {
	var out []string
	for _, stmt := range strings.Split(ddl, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// ApplyMigrations runs every migration newer than the recorded schema version.
func ApplyMigrations(ctx context.Context, db *sql.DB, d dialect) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at `+d.expand("{{ts}}")+` NOT NULL
)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	current, err := currentVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range AllMigrations {
		v, err := semver.NewVersion(m.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", m.Version, err)
		}
		if !current.LessThan(v) {
			continue
		}
		if err := applyMigration(ctx, db, d, m); err != nil {
			return err
		}
		current = v
	}
	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, d dialect, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", m.Version, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range statements(d.expand(m.Up)) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.Version, err)
		}
	}
	if _, err := tx.ExecContext(ctx, d.rebind("INSERT INTO schema_version (version, applied_at) VALUES (?, CURRENT_TIMESTAMP)"), m.Version); err != nil {
		return fmt.Errorf("record migration %s: %w", m.Version, err)
	}
	return tx.Commit()
}

func currentVersion(ctx context.Context, db *sql.DB) (*semver.Version, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_version")
	if err != nil {
		return nil, fmt.Errorf("read schema_version: %w", err)
	}
	defer rows.Close()

	current := semver.MustParse("0.0.0")
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		v, err := semver.NewVersion(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid schema version %s: %w", raw, err)
		}
		if v.GreaterThan(current) {
			current = v
		}
	}
	return current, rows.Err()
}
