package payment

import "context"

type Repository interface {
	Insert(ctx context.Context, p *Payment) error
	ListByOrder(ctx context.Context, orderID int64) ([]*Payment, error)
	// ListByUser returns payments whose order belongs to userID, oldest first.
	ListByUser(ctx context.Context, userID int64) ([]*Payment, error)
}
