// Package application holds the order service use cases and the ports they
// run against.
package application

import (
	"context"

	domcatalog "github.com/Zhima-Mochi/minishop-orders/internal/domain/catalog"
	domorder "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-orders/internal/domain/outbox"
	dompayment "github.com/Zhima-Mochi/minishop-orders/internal/domain/payment"
	domuser "github.com/Zhima-Mochi/minishop-orders/internal/domain/user"
)

// Tx exposes the repositories bound to one unit of work.
type Tx interface {
	Users() domuser.Repository
	Categories() domcatalog.CategoryRepository
	Products() domcatalog.ProductRepository
	Orders() domorder.Repository
	OrderItems() domorder.ItemRepository
	Payments() dompayment.Repository
	Outbox() domoutbox.Store
}

// Store runs units of work. fn's writes become visible together when it
// returns nil and are discarded otherwise. Calls must not be nested.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Pinger is implemented by stores backed by a remote database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// UseCase is a single command entry point, used for multi-service workflows.
type UseCase[C any, R any] interface {
	Execute(ctx context.Context, cmd C) (R, error)
}
