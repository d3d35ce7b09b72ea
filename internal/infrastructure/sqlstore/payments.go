package sqlstore

import (
	"context"
	"fmt"

	dompayment "github.com/Zhima-Mochi/minishop-orders/internal/domain/payment"
)

type paymentRepository struct {
	q querier
	d dialect
}

func (r paymentRepository) Insert(ctx context.Context, p *dompayment.Payment) error {
	id, err := insertReturningID(ctx, r.q, r.d,
		"INSERT INTO payments (order_id, amount, method, payment_date, created_at) VALUES (?, ?, ?, ?, ?)",
		p.OrderID, p.Amount, string(p.Method), p.PaymentDate, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	p.ID = id
	return nil
}

func (r paymentRepository) ListByOrder(ctx context.Context, orderID int64) ([]*dompayment.Payment, error) {
	return r.many(ctx,
		"SELECT id, order_id, amount, method, payment_date, created_at FROM payments WHERE order_id = ? ORDER BY id",
		orderID)
}

func (r paymentRepository) ListByUser(ctx context.Context, userID int64) ([]*dompayment.Payment, error) {
	return r.many(ctx,
		`SELECT p.id, p.order_id, p.amount, p.method, p.payment_date, p.created_at
		FROM payments p JOIN orders o ON o.id = p.order_id
		WHERE o.user_id = ? ORDER BY p.id`,
		userID)
}

func (r paymentRepository) many(ctx context.Context, query string, args ...any) ([]*dompayment.Payment, error) {
	rows, err := r.q.QueryContext(ctx, r.d.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []*dompayment.Payment
	for rows.Next() {
		var (
			p      dompayment.Payment
			method string
		)
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Amount, &method, &p.PaymentDate, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Method = dompayment.Method(method)
		p.PaymentDate = utc(p.PaymentDate)
		p.CreatedAt = utc(p.CreatedAt)
		out = append(out, &p)
	}
	return out, rows.Err()
}
