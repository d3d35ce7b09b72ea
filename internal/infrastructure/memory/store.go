// Package memory is an in-process Store. Units of work run one at a time.
// Reads go to the shared state; the first write takes a private copy that
// replaces the shared state on success. Stored values are never mutated in
// place, so the copy only duplicates the maps, not the entities.
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/Zhima-Mochi/minishop-orders/internal/application"
	domcatalog "github.com/Zhima-Mochi/minishop-orders/internal/domain/catalog"
	domorder "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-orders/internal/domain/outbox"
	dompayment "github.com/Zhima-Mochi/minishop-orders/internal/domain/payment"
	domuser "github.com/Zhima-Mochi/minishop-orders/internal/domain/user"
)

type Store struct {
	mu    sync.Mutex
	state *state
}

var _ application.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{state: newState()}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx application.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{base: s.state}
	if err := fn(ctx, t); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.work != nil {
		s.state = t.work
	}
	return nil
}

type sequences struct {
	users, categories, products, orders, items, payments, outbox int64
}

type state struct {
	users      map[int64]*domuser.User
	categories map[int64]*domcatalog.Category
	products   map[int64]*domcatalog.Product
	orders     map[int64]*domorder.Order
	items      map[int64]*domorder.Item
	payments   map[int64]*dompayment.Payment
	outbox     map[int64]domoutbox.Record
	seq        sequences
}

func newState() *state {
	return &state{
		users:      make(map[int64]*domuser.User),
		categories: make(map[int64]*domcatalog.Category),
		products:   make(map[int64]*domcatalog.Product),
		orders:     make(map[int64]*domorder.Order),
		items:      make(map[int64]*domorder.Item),
		payments:   make(map[int64]*dompayment.Payment),
		outbox:     make(map[int64]domoutbox.Record),
	}
}

func (s *state) clone() *state {
	return &state{
		users:      maps.Clone(s.users),
		categories: maps.Clone(s.categories),
		products:   maps.Clone(s.products),
		orders:     maps.Clone(s.orders),
		items:      maps.Clone(s.items),
		payments:   maps.Clone(s.payments),
		outbox:     maps.Clone(s.outbox),
		seq:        s.seq,
	}
}

// sortedIDs returns the keys in insertion order; ids are assigned monotonically.
func sortedIDs[T any](m map[int64]T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

type tx struct {
	base *state
	work *state
}

func (t *tx) read() *state {
	if t.work != nil {
		return t.work
	}
	return t.base
}

func (t *tx) write() *state {
	if t.work == nil {
		t.work = t.base.clone()
	}
	return t.work
}

func (t *tx) Users() domuser.Repository                 { return userRepository{t} }
func (t *tx) Categories() domcatalog.CategoryRepository { return categoryRepository{t} }
func (t *tx) Products() domcatalog.ProductRepository    { return productRepository{t} }
func (t *tx) Orders() domorder.Repository               { return orderRepository{t} }
func (t *tx) OrderItems() domorder.ItemRepository       { return itemRepository{t} }
func (t *tx) Payments() dompayment.Repository           { return paymentRepository{t} }
func (t *tx) Outbox() domoutbox.Store                   { return outboxStore{t} }
