// Package rediscache keeps product views and rate-limit windows in Redis.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Zhima-Mochi/minishop-orders/internal/application/view"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
)

const (
	productKeyPrefix   = "product:"
	rateLimitKeyPrefix = "rate_limit:"
	peerRedis          = "redis"
)

// NewClient parses addr as a redis:// URL or falls back to host:port.
func NewClient(addr string) *redis.Client {
	if opts, err := redis.ParseURL(addr); err == nil {
		return redis.NewClient(opts)
	}
	return redis.NewClient(&redis.Options{Addr: addr})
}

// ProductCache is a cache-aside store for product views. Redis failures
// degrade to misses and are logged.
type ProductCache struct {
	rdb redis.Cmdable
	ttl time.Duration

	log      observability.Logger
	requests observability.Counter
}

func NewProductCache(rdb redis.Cmdable, ttl time.Duration, tel observability.Observability) *ProductCache {
	if tel == nil {
		tel = observability.Nop()
	}
	return &ProductCache{
		rdb:      rdb,
		ttl:      ttl,
		log:      tel.Logger().With(observability.F("component", "product_cache")),
		requests: tel.Metrics().Counter(observability.MExternalRequests),
	}
}

func productKey(id int64) string {
	return productKeyPrefix + strconv.FormatInt(id, 10)
}

func (c *ProductCache) Get(ctx context.Context, id int64) (view.Product, bool) {
	raw, err := c.rdb.Get(ctx, productKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.count("get", "miss")
		return view.Product{}, false
	}
	if err != nil {
		c.count("get", "error")
		c.log.Warn("product_cache_get_failed", observability.F("product_id", id), observability.F("error", err))
		return view.Product{}, false
	}

	var p view.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		c.count("get", "error")
		c.log.Warn("product_cache_decode_failed", observability.F("product_id", id), observability.F("error", err))
		return view.Product{}, false
	}
	c.count("get", "hit")
	return p, true
}

func (c *ProductCache) Set(ctx context.Context, p view.Product) {
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, productKey(p.ID), data, c.ttl).Err(); err != nil {
		c.count("set", "error")
		c.log.Warn("product_cache_set_failed", observability.F("product_id", p.ID), observability.F("error", err))
		return
	}
	c.count("set", "success")
}

func (c *ProductCache) Invalidate(ctx context.Context, id int64) {
	if err := c.rdb.Del(ctx, productKey(id)).Err(); err != nil {
		c.count("del", "error")
		c.log.Warn("product_cache_invalidate_failed", observability.F("product_id", id), observability.F("error", err))
		return
	}
	c.count("del", "success")
}

func (c *ProductCache) count(endpoint, outcome string) {
	c.requests.Add(1,
		observability.L("peer", peerRedis),
		observability.L("endpoint", endpoint),
		observability.L("outcome", outcome),
	)
}

// WindowCounter implements fixed-window counting with INCR and EXPIRE.
type WindowCounter struct {
	rdb redis.Cmdable
}

func NewWindowCounter(rdb redis.Cmdable) *WindowCounter {
	return &WindowCounter{rdb: rdb}
}

// Incr bumps the counter for key and starts its window on the first hit.
func (w *WindowCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	k := rateLimitKeyPrefix + key
	n, err := w.rdb.Incr(ctx, k).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := w.rdb.Expire(ctx, k, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}
