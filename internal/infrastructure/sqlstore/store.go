// Package sqlstore persists the order service in SQLite or Postgres through
// database/sql.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/minishop-orders/internal/application"
	domcatalog "github.com/Zhima-Mochi/minishop-orders/internal/domain/catalog"
	domorder "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-orders/internal/domain/outbox"
	dompayment "github.com/Zhima-Mochi/minishop-orders/internal/domain/payment"
	domuser "github.com/Zhima-Mochi/minishop-orders/internal/domain/user"
)

type Store struct {
	db      *sql.DB
	dialect dialect
}

var (
	_ application.Store  = (*Store)(nil)
	_ application.Pinger = (*Store)(nil)
)

// Open connects with a registered driver name and applies pending migrations.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := configure(ctx, db, d); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ApplyMigrations(ctx, db, d); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return &Store{db: db, dialect: d}, nil
}

func configure(ctx context.Context, db *sql.DB, d dialect) error {
	if d == dialectPostgres {
		db.SetMaxOpenConns(16)
		db.SetMaxIdleConns(4)
		db.SetConnMaxLifetime(30 * time.Minute)
		return db.PingContext(ctx)
	}

	// SQLite serialises writers; one connection also keeps :memory: databases alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithinTx runs fn in a database transaction and commits when fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx application.Tx) error) (err error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = sqlTx.Rollback()
		}
	}()

	if err = fn(ctx, &tx{q: sqlTx, d: s.dialect}); err != nil {
		return err
	}
	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// querier is implemented by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type tx struct {
	q querier
	d dialect
}

func (t *tx) Users() domuser.Repository                 { return userRepository{t.q, t.d} }
func (t *tx) Categories() domcatalog.CategoryRepository { return categoryRepository{t.q, t.d} }
func (t *tx) Products() domcatalog.ProductRepository    { return productRepository{t.q, t.d} }
func (t *tx) Orders() domorder.Repository               { return orderRepository{t.q, t.d} }
func (t *tx) OrderItems() domorder.ItemRepository       { return itemRepository{t.q, t.d} }
func (t *tx) Payments() dompayment.Repository           { return paymentRepository{t.q, t.d} }
func (t *tx) Outbox() domoutbox.Store                   { return outboxStore{t.q, t.d} }

// insertReturningID runs an INSERT ... RETURNING id statement.
func insertReturningID(ctx context.Context, q querier, d dialect, query string, args ...any) (int64, error) {
	var id int64
	if err := q.QueryRowContext(ctx, d.rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// execAffecting runs an UPDATE or DELETE and reports notFound when no row matched.
func execAffecting(ctx context.Context, q querier, d dialect, notFound error, query string, args ...any) error {
	res, err := q.ExecContext(ctx, d.rebind(query), args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func utc(t time.Time) time.Time { return t.UTC() }
