package localcache

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/minishop-orders/internal/application/catalog"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/view"
)

var _ catalog.ProductCache = (*ProductCache)(nil)

func TestProductCacheRoundTrip(t *testing.T) {
	c := NewProductCache(8, time.Minute)
	ctx := context.Background()

	_, ok := c.Get(ctx, 1)
	assert.False(t, ok)

	c.Set(ctx, view.Product{ID: 1, Name: "pen", Price: decimal.NewFromInt(10)})
	got, ok := c.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, "pen", got.Name)

	c.Invalidate(ctx, 1)
	_, ok = c.Get(ctx, 1)
	assert.False(t, ok)
}

func TestProductCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewProductCache(2, time.Minute)
	ctx := context.Background()

	c.Set(ctx, view.Product{ID: 1})
	c.Set(ctx, view.Product{ID: 2})
	_, _ = c.Get(ctx, 1)
	c.Set(ctx, view.Product{ID: 3})

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get(ctx, 2)
	assert.False(t, ok)
	_, ok = c.Get(ctx, 1)
	assert.True(t, ok)
}

func TestProductCacheExpires(t *testing.T) {
	c := NewProductCache(2, 10*time.Millisecond)
	ctx := context.Background()

	c.Set(ctx, view.Product{ID: 1})
	assert.Eventually(t, func() bool {
		_, ok := c.Get(ctx, 1)
		return !ok
	}, time.Second, 5*time.Millisecond)
}
