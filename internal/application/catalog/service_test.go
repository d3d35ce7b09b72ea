package catalog_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/minishop-orders/internal/application/apptest"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/catalog"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/view"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/apperror"
	domcatalog "github.com/Zhima-Mochi/minishop-orders/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/paging"
	domuser "github.com/Zhima-Mochi/minishop-orders/internal/domain/user"
)

type mapCache struct {
	mu          sync.Mutex
	items       map[int64]view.Product
	hits        int
	invalidated []int64
}

func newMapCache() *mapCache { return &mapCache{items: map[int64]view.Product{}} }

func (c *mapCache) Get(_ context.Context, id int64) (view.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.items[id]
	if ok {
		c.hits++
	}
	return p, ok
}

func (c *mapCache) Set(_ context.Context, p view.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[p.ID] = p
}

func (c *mapCache) Invalidate(_ context.Context, id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	c.invalidated = append(c.invalidated, id)
}

func TestMutationsRequireAdmin(t *testing.T) {
	f := apptest.New(t)
	ctx := context.Background()
	in := catalog.ProductInput{Name: "ink", StockCount: 1, Price: decimal.NewFromInt(3), CategoryID: f.CategoryID}

	_, err := f.Catalog.CreateCategory(ctx, "toys", domuser.RoleUser)
	assert.ErrorIs(t, err, domuser.ErrAccessDenied)
	_, err = f.Catalog.UpdateCategory(ctx, f.CategoryID, "toys", domuser.RoleUser)
	assert.ErrorIs(t, err, domuser.ErrAccessDenied)
	assert.ErrorIs(t, f.Catalog.DeleteCategory(ctx, f.CategoryID, domuser.RoleUser), domuser.ErrAccessDenied)
	_, err = f.Catalog.CreateProduct(ctx, in, domuser.RoleUser)
	assert.ErrorIs(t, err, domuser.ErrAccessDenied)
	_, err = f.Catalog.UpdateProduct(ctx, f.PenID, in, domuser.RoleUser)
	assert.ErrorIs(t, err, domuser.ErrAccessDenied)
	assert.ErrorIs(t, f.Catalog.DeleteProduct(ctx, f.PenID, ""), domuser.ErrAccessDenied)

	cats, err := f.Catalog.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 1)
	products, err := f.Catalog.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestCategoryLifecycle(t *testing.T) {
	f := apptest.New(t)
	ctx := context.Background()

	c, err := f.Catalog.CreateCategory(ctx, "toys", domuser.RoleAdmin)
	require.NoError(t, err)

	_, err = f.Catalog.CreateCategory(ctx, "toys", domuser.RoleAdmin)
	assert.ErrorIs(t, err, domcatalog.ErrCategoryAlreadyExists)
	_, err = f.Catalog.UpdateCategory(ctx, c.ID, "stationery", domuser.RoleAdmin)
	assert.ErrorIs(t, err, domcatalog.ErrCategoryAlreadyExists)
	_, err = f.Catalog.CreateCategory(ctx, "", domuser.RoleAdmin)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	renamed, err := f.Catalog.UpdateCategory(ctx, c.ID, "games", domuser.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "games", renamed.Name)

	require.NoError(t, f.Catalog.DeleteCategory(ctx, c.ID, domuser.RoleAdmin))
	_, err = f.Catalog.GetCategory(ctx, c.ID)
	assert.ErrorIs(t, err, domcatalog.ErrCategoryNotFound)
	assert.ErrorIs(t, f.Catalog.DeleteCategory(ctx, c.ID, domuser.RoleAdmin), domcatalog.ErrCategoryNotFound)

	page, err := f.Catalog.PageCategories(ctx, paging.Request{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalItems)
}

func TestProductLifecycle(t *testing.T) {
	f := apptest.New(t)
	ctx := context.Background()

	p, err := f.Catalog.CreateProduct(ctx, catalog.ProductInput{
		Name: "ink", StockCount: 4, Price: decimal.RequireFromString("2.50"), CategoryID: f.CategoryID,
	}, domuser.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("2.5")))

	tests := []struct {
		name string
		in   catalog.ProductInput
		want error
	}{
		{"duplicate name", catalog.ProductInput{Name: "pen", CategoryID: f.CategoryID}, domcatalog.ErrProductAlreadyExists},
		{"unknown category", catalog.ProductInput{Name: "clip", CategoryID: 999}, domcatalog.ErrCategoryNotFound},
		{"negative price", catalog.ProductInput{Name: "clip", Price: decimal.NewFromInt(-1), CategoryID: f.CategoryID}, apperror.ErrValidation},
		{"negative stock", catalog.ProductInput{Name: "clip", StockCount: -1, CategoryID: f.CategoryID}, apperror.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Catalog.CreateProduct(ctx, tt.in, domuser.RoleAdmin)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	require.NoError(t, f.Catalog.DeleteProduct(ctx, p.ID, domuser.RoleAdmin))
	_, err = f.Catalog.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, domcatalog.ErrProductNotFound)

	page, err := f.Catalog.PageProducts(ctx, paging.Request{Size: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
}

func TestGetProductReadsThroughCache(t *testing.T) {
	cache := newMapCache()
	f := apptest.New(t, apptest.WithProductCache(cache))
	ctx := context.Background()

	first, err := f.Catalog.GetProduct(ctx, f.PenID)
	require.NoError(t, err)
	assert.Zero(t, cache.hits)

	second, err := f.Catalog.GetProduct(ctx, f.PenID)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, first, second)

	_, err = f.Catalog.UpdateProduct(ctx, f.PenID, catalog.ProductInput{
		Name: "pen", StockCount: 1, Price: decimal.NewFromInt(12), CategoryID: f.CategoryID,
	}, domuser.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, []int64{f.PenID}, cache.invalidated)

	fresh, err := f.Catalog.GetProduct(ctx, f.PenID)
	require.NoError(t, err)
	assert.True(t, fresh.Price.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, 1, cache.hits)
}
