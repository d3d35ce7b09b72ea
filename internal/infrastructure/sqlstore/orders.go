package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domorder "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
)

const (
	orderColumns = "id, user_id, status, total_price, deleted, created_at, updated_at"
	itemColumns  = "id, order_id, product_id, quantity, unit_price, total_price, created_at"
)

type orderRepository struct {
	q querier
	d dialect
}

func (r orderRepository) Insert(ctx context.Context, o *domorder.Order) error {
	id, err := insertReturningID(ctx, r.q, r.d,
		`INSERT INTO orders (user_id, status, total_price, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		o.UserID, string(o.Status), o.TotalPrice, o.Deleted, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domorder.ErrAlreadyExists
		}
		return fmt.Errorf("insert order: %w", err)
	}
	o.ID = id
	return nil
}

func (r orderRepository) Update(ctx context.Context, o *domorder.Order) error {
	return execAffecting(ctx, r.q, r.d, domorder.ErrNotFound,
		"UPDATE orders SET status = ?, total_price = ?, deleted = ?, updated_at = ? WHERE id = ?",
		string(o.Status), o.TotalPrice, o.Deleted, o.UpdatedAt, o.ID)
}

func (r orderRepository) FindByID(ctx context.Context, id int64) (*domorder.Order, error) {
	return r.one(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = ?", id)
}

func (r orderRepository) FindActiveByID(ctx context.Context, id int64) (*domorder.Order, error) {
	return r.one(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = ? AND deleted = FALSE", id)
}

func (r orderRepository) GetForUpdate(ctx context.Context, id int64) (*domorder.Order, error) {
	return r.one(ctx, r.d.forUpdate("SELECT "+orderColumns+" FROM orders WHERE id = ? AND deleted = FALSE"), id)
}

func (r orderRepository) ListByUser(ctx context.Context, userID int64) ([]*domorder.Order, error) {
	rows, err := r.q.QueryContext(ctx,
		r.d.rebind("SELECT "+orderColumns+" FROM orders WHERE user_id = ? AND deleted = FALSE ORDER BY id"), userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []*domorder.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r orderRepository) one(ctx context.Context, query string, args ...any) (*domorder.Order, error) {
	o, err := scanOrder(r.q.QueryRowContext(ctx, r.d.rebind(query), args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domorder.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	return o, nil
}

func scanOrder(row rowScanner) (*domorder.Order, error) {
	var (
		o      domorder.Order
		status string
	)
	if err := row.Scan(&o.ID, &o.UserID, &status, &o.TotalPrice, &o.Deleted, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Status = domorder.Status(status)
	o.CreatedAt = utc(o.CreatedAt)
	o.UpdatedAt = utc(o.UpdatedAt)
	return &o, nil
}

type itemRepository struct {
	q querier
	d dialect
}

func (r itemRepository) Insert(ctx context.Context, it *domorder.Item) error {
	id, err := insertReturningID(ctx, r.q, r.d,
		`INSERT INTO order_items (order_id, product_id, quantity, unit_price, total_price, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		it.OrderID, it.ProductID, it.Quantity, it.UnitPrice, it.TotalPrice, it.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domorder.ErrItemAlreadyExists
		}
		return fmt.Errorf("insert order item: %w", err)
	}
	it.ID = id
	return nil
}

func (r itemRepository) ListByOrder(ctx context.Context, orderID int64) ([]*domorder.Item, error) {
	rows, err := r.q.QueryContext(ctx,
		r.d.rebind("SELECT "+itemColumns+" FROM order_items WHERE order_id = ? ORDER BY id"), orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var out []*domorder.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r itemRepository) FindByOrderAndProduct(ctx context.Context, orderID, productID int64) (*domorder.Item, error) {
	it, err := scanItem(r.q.QueryRowContext(ctx,
		r.d.rebind("SELECT "+itemColumns+" FROM order_items WHERE order_id = ? AND product_id = ? ORDER BY id LIMIT 1"),
		orderID, productID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domorder.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load order item: %w", err)
	}
	return it, nil
}

func (r itemRepository) Delete(ctx context.Context, id int64) error {
	return execAffecting(ctx, r.q, r.d, domorder.ErrItemNotFound, "DELETE FROM order_items WHERE id = ?", id)
}

func (r itemRepository) CountByProduct(ctx context.Context, productID int64) (int, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, r.d.rebind("SELECT COUNT(*) FROM order_items WHERE product_id = ?"), productID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count order items: %w", err)
	}
	return n, nil
}

func scanItem(row rowScanner) (*domorder.Item, error) {
	var it domorder.Item
	if err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.TotalPrice, &it.CreatedAt); err != nil {
		return nil, err
	}
	it.CreatedAt = utc(it.CreatedAt)
	return &it, nil
}
