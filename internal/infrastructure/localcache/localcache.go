// Package localcache keeps product views in a bounded in-process LRU.
package localcache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Zhima-Mochi/minishop-orders/internal/application/view"
)

// ProductCache serves a single instance; entries expire after ttl and the
// least recently used ones are evicted beyond size.
type ProductCache struct {
	lru *expirable.LRU[int64, view.Product]
}

func NewProductCache(size int, ttl time.Duration) *ProductCache {
	return &ProductCache{lru: expirable.NewLRU[int64, view.Product](size, nil, ttl)}
}

func (c *ProductCache) Get(_ context.Context, id int64) (view.Product, bool) {
	return c.lru.Get(id)
}

func (c *ProductCache) Set(_ context.Context, p view.Product) {
	c.lru.Add(p.ID, p)
}

func (c *ProductCache) Invalidate(_ context.Context, id int64) {
	c.lru.Remove(id)
}

func (c *ProductCache) Len() int { return c.lru.Len() }
