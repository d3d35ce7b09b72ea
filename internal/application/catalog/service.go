// Package catalog manages categories and products. Mutations require the
// ADMIN role supplied by the caller.
package catalog

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Zhima-Mochi/minishop-orders/internal/application"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/authz"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/view"
	domcatalog "github.com/Zhima-Mochi/minishop-orders/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/paging"
	domuser "github.com/Zhima-Mochi/minishop-orders/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
)

const (
	catalogService = "catalog-service"

	useCaseCategoryCreate = "category.create"
	useCaseCategoryList   = "category.list"
	useCaseCategoryPage   = "category.page"
	useCaseCategoryGet    = "category.get"
	useCaseCategoryUpdate = "category.update"
	useCaseCategoryDelete = "category.delete"

	useCaseProductCreate = "product.create"
	useCaseProductList   = "product.list"
	useCaseProductPage   = "product.page"
	useCaseProductGet    = "product.get"
	useCaseProductUpdate = "product.update"
	useCaseProductDelete = "product.delete"
)

// ProductCache holds product views keyed by id. Misses and failures are
// reported as not found so callers fall back to the store.
type ProductCache interface {
	Get(ctx context.Context, id int64) (view.Product, bool)
	Set(ctx context.Context, p view.Product)
	Invalidate(ctx context.Context, id int64)
}

type noCache struct{}

func (noCache) Get(context.Context, int64) (view.Product, bool) { return view.Product{}, false }
func (noCache) Set(context.Context, view.Product)               {}
func (noCache) Invalidate(context.Context, int64)               {}

type ProductInput struct {
	Name       string
	StockCount int
	Price      decimal.Decimal
	CategoryID int64
}

type Service struct {
	store application.Store
	cache ProductCache
	inst  *application.Instrument
}

// NewService builds the catalog service; cache may be nil.
func NewService(store application.Store, cache ProductCache, tel observability.Observability) *Service {
	if cache == nil {
		cache = noCache{}
	}
	return &Service{store: store, cache: cache, inst: application.NewInstrument(catalogService, tel)}
}

func (s *Service) CreateCategory(ctx context.Context, name string, role domuser.Role) (_ view.Category, err error) {
	ctx, run := s.inst.Start(ctx, useCaseCategoryCreate, "CreateCategory")
	defer func() { run.End(err) }()

	if err := authz.Require(role, domuser.RoleAdmin); err != nil {
		return view.Category{}, err
	}
	c, err := domcatalog.NewCategory(name)
	if err != nil {
		return view.Category{}, err
	}
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		if err := ensureCategoryNameFree(ctx, tx, c.Name, 0); err != nil {
			return err
		}
		return tx.Categories().Insert(ctx, c)
	})
	if err != nil {
		return view.Category{}, application.WrapRepositoryError(err)
	}
	return view.NewCategory(c), nil
}

func (s *Service) ListCategories(ctx context.Context) (_ []view.Category, err error) {
	ctx, run := s.inst.Start(ctx, useCaseCategoryList, "ListCategories")
	defer func() { run.End(err) }()

	out := []view.Category{}
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		all, err := tx.Categories().ListAll(ctx)
		if err != nil {
			return err
		}
		for _, c := range all {
			if !c.Deleted {
				out = append(out, view.NewCategory(c))
			}
		}
		return nil
	})
	if err != nil {
		return nil, application.WrapRepositoryError(err)
	}
	return out, nil
}

func (s *Service) PageCategories(ctx context.Context, req paging.Request) (_ paging.Result[view.Category], err error) {
	ctx, run := s.inst.Start(ctx, useCaseCategoryPage, "PageCategories")
	defer func() { run.End(err) }()

	req = req.Normalize()
	var out paging.Result[view.Category]
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		items, total, err := tx.Categories().ListActive(ctx, req)
		if err != nil {
			return err
		}
		out = paging.Map(paging.NewResult(items, req, total), func(c *domcatalog.Category) view.Category { return view.NewCategory(c) })
		return nil
	})
	if err != nil {
		return paging.Result[view.Category]{}, application.WrapRepositoryError(err)
	}
	return out, nil
}

func (s *Service) GetCategory(ctx context.Context, id int64) (_ view.Category, err error) {
	ctx, run := s.inst.Start(ctx, useCaseCategoryGet, "GetCategory", attribute.Int64("category.id", id))
	defer func() { run.End(err) }()

	var out view.Category
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		c, err := tx.Categories().FindActiveByID(ctx, id)
		if err != nil {
			return err
		}
		out = view.NewCategory(c)
		return nil
	})
	if err != nil {
		return view.Category{}, application.WrapRepositoryError(err)
	}
	return out, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, name string, role domuser.Role) (_ view.Category, err error) {
	ctx, run := s.inst.Start(ctx, useCaseCategoryUpdate, "UpdateCategory", attribute.Int64("category.id", id))
	defer func() { run.End(err) }()

	if err := authz.Require(role, domuser.RoleAdmin); err != nil {
		return view.Category{}, err
	}
	var out view.Category
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		c, err := tx.Categories().FindActiveByID(ctx, id)
		if err != nil {
			return err
		}
		if err := c.Rename(name); err != nil {
			return err
		}
		if err := ensureCategoryNameFree(ctx, tx, c.Name, c.ID); err != nil {
			return err
		}
		if err := tx.Categories().Update(ctx, c); err != nil {
			return err
		}
		out = view.NewCategory(c)
		return nil
	})
	if err != nil {
		return view.Category{}, application.WrapRepositoryError(err)
	}
	return out, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id int64, role domuser.Role) (err error) {
	ctx, run := s.inst.Start(ctx, useCaseCategoryDelete, "DeleteCategory", attribute.Int64("category.id", id))
	defer func() { run.End(err) }()

	if err := authz.Require(role, domuser.RoleAdmin); err != nil {
		return err
	}
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		c, err := tx.Categories().FindActiveByID(ctx, id)
		if err != nil {
			return err
		}
		c.MarkDeleted()
		return tx.Categories().Update(ctx, c)
	})
	return application.WrapRepositoryError(err)
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput, role domuser.Role) (_ view.Product, err error) {
	ctx, run := s.inst.Start(ctx, useCaseProductCreate, "CreateProduct",
		attribute.Int64("category.id", in.CategoryID),
	)
	defer func() { run.End(err) }()

	if err := authz.Require(role, domuser.RoleAdmin); err != nil {
		return view.Product{}, err
	}
	p, err := domcatalog.NewProduct(in.Name, in.StockCount, in.Price, in.CategoryID)
	if err != nil {
		return view.Product{}, err
	}
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		if _, err := tx.Categories().FindActiveByID(ctx, in.CategoryID); err != nil {
			return err
		}
		if err := ensureProductNameFree(ctx, tx, p.Name, 0); err != nil {
			return err
		}
		return tx.Products().Insert(ctx, p)
	})
	if err != nil {
		return view.Product{}, application.WrapRepositoryError(err)
	}
	return view.NewProduct(p), nil
}

func (s *Service) ListProducts(ctx context.Context) (_ []view.Product, err error) {
	ctx, run := s.inst.Start(ctx, useCaseProductList, "ListProducts")
	defer func() { run.End(err) }()

	out := []view.Product{}
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		all, err := tx.Products().ListAll(ctx)
		if err != nil {
			return err
		}
		for _, p := range all {
			if !p.Deleted {
				out = append(out, view.NewProduct(p))
			}
		}
		return nil
	})
	if err != nil {
		return nil, application.WrapRepositoryError(err)
	}
	return out, nil
}

func (s *Service) PageProducts(ctx context.Context, req paging.Request) (_ paging.Result[view.Product], err error) {
	ctx, run := s.inst.Start(ctx, useCaseProductPage, "PageProducts")
	defer func() { run.End(err) }()

	req = req.Normalize()
	var out paging.Result[view.Product]
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		items, total, err := tx.Products().ListActive(ctx, req)
		if err != nil {
			return err
		}
		out = paging.Map(paging.NewResult(items, req, total), func(p *domcatalog.Product) view.Product { return view.NewProduct(p) })
		return nil
	})
	if err != nil {
		return paging.Result[view.Product]{}, application.WrapRepositoryError(err)
	}
	return out, nil
}

// GetProduct reads through the product cache.
func (s *Service) GetProduct(ctx context.Context, id int64) (_ view.Product, err error) {
	ctx, run := s.inst.Start(ctx, useCaseProductGet, "GetProduct", attribute.Int64("product.id", id))
	defer func() { run.End(err) }()

	if cached, ok := s.cache.Get(ctx, id); ok {
		run.SetStatus("CACHE_HIT")
		return cached, nil
	}

	var out view.Product
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		p, err := tx.Products().FindActiveByID(ctx, id)
		if err != nil {
			return err
		}
		out = view.NewProduct(p)
		return nil
	})
	if err != nil {
		return view.Product{}, application.WrapRepositoryError(err)
	}
	s.cache.Set(ctx, out)
	return out, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, in ProductInput, role domuser.Role) (_ view.Product, err error) {
	ctx, run := s.inst.Start(ctx, useCaseProductUpdate, "UpdateProduct", attribute.Int64("product.id", id))
	defer func() { run.End(err) }()

	if err := authz.Require(role, domuser.RoleAdmin); err != nil {
		return view.Product{}, err
	}
	var out view.Product
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		p, err := tx.Products().FindActiveByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := tx.Categories().FindActiveByID(ctx, in.CategoryID); err != nil {
			return err
		}
		if err := p.Revise(in.Name, in.StockCount, in.Price, in.CategoryID); err != nil {
			return err
		}
		if err := ensureProductNameFree(ctx, tx, p.Name, p.ID); err != nil {
			return err
		}
		if err := tx.Products().Update(ctx, p); err != nil {
			return err
		}
		out = view.NewProduct(p)
		return nil
	})
	if err != nil {
		return view.Product{}, application.WrapRepositoryError(err)
	}
	s.cache.Invalidate(ctx, id)
	return out, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64, role domuser.Role) (err error) {
	ctx, run := s.inst.Start(ctx, useCaseProductDelete, "DeleteProduct", attribute.Int64("product.id", id))
	defer func() { run.End(err) }()

	if err := authz.Require(role, domuser.RoleAdmin); err != nil {
		return err
	}
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		p, err := tx.Products().FindActiveByID(ctx, id)
		if err != nil {
			return err
		}
		p.MarkDeleted()
		return tx.Products().Update(ctx, p)
	})
	if err != nil {
		return application.WrapRepositoryError(err)
	}
	s.cache.Invalidate(ctx, id)
	return nil
}

func ensureCategoryNameFree(ctx context.Context, tx application.Tx, name string, selfID int64) error {
	existing, err := tx.Categories().FindActiveByName(ctx, name)
	switch {
	case errors.Is(err, domcatalog.ErrCategoryNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != selfID:
		return domcatalog.ErrCategoryAlreadyExists
	default:
		return nil
	}
}

func ensureProductNameFree(ctx context.Context, tx application.Tx, name string, selfID int64) error {
	existing, err := tx.Products().FindActiveByName(ctx, name)
	switch {
	case errors.Is(err, domcatalog.ErrProductNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != selfID:
		return domcatalog.ErrProductAlreadyExists
	default:
		return nil
	}
}
