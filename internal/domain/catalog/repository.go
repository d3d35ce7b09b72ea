package catalog

import (
	"context"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/paging"
)

type CategoryRepository interface {
	Insert(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	FindByID(ctx context.Context, id int64) (*Category, error)
	FindActiveByID(ctx context.Context, id int64) (*Category, error)
	FindActiveByName(ctx context.Context, name string) (*Category, error)
	ListActive(ctx context.Context, page paging.Request) ([]*Category, int, error)
	ListAll(ctx context.Context) ([]*Category, error)
}

type ProductRepository interface {
	Insert(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id int64) (*Product, error)
	FindActiveByID(ctx context.Context, id int64) (*Product, error)
	FindActiveByName(ctx context.Context, name string) (*Product, error)
	ListActive(ctx context.Context, page paging.Request) ([]*Product, int, error)
	ListAll(ctx context.Context) ([]*Product, error)
}
