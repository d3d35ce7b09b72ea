package order

import "context"

type Repository interface {
	Insert(ctx context.Context, o *Order) error
	Update(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id int64) (*Order, error)
	FindActiveByID(ctx context.Context, id int64) (*Order, error)
	// GetForUpdate loads an active order and holds it for the rest of the unit of work.
	GetForUpdate(ctx context.Context, id int64) (*Order, error)
	// ListByUser returns the user's active orders in creation order.
	ListByUser(ctx context.Context, userID int64) ([]*Order, error)
}

type ItemRepository interface {
	Insert(ctx context.Context, it *Item) error
	ListByOrder(ctx context.Context, orderID int64) ([]*Item, error)
	FindByOrderAndProduct(ctx context.Context, orderID, productID int64) (*Item, error)
	Delete(ctx context.Context, id int64) error
	CountByProduct(ctx context.Context, productID int64) (int, error)
}
