package memory

import (
	"context"

	domorder "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
)

type orderRepository struct{ t *tx }

func (r orderRepository) Insert(_ context.Context, o *domorder.Order) error {
	st := r.t.write()
	st.seq.orders++
	o.ID = st.seq.orders
	st.orders[o.ID] = o.Clone()
	return nil
}

func (r orderRepository) Update(_ context.Context, o *domorder.Order) error {
	if _, ok := r.t.read().orders[o.ID]; !ok {
		return domorder.ErrNotFound
	}
	r.t.write().orders[o.ID] = o.Clone()
	return nil
}

func (r orderRepository) FindByID(_ context.Context, id int64) (*domorder.Order, error) {
	o, ok := r.t.read().orders[id]
	if !ok {
		return nil, domorder.ErrNotFound
	}
	return o.Clone(), nil
}

func (r orderRepository) FindActiveByID(_ context.Context, id int64) (*domorder.Order, error) {
	o, ok := r.t.read().orders[id]
	if !ok || o.Deleted {
		return nil, domorder.ErrNotFound
	}
	return o.Clone(), nil
}

func (r orderRepository) GetForUpdate(ctx context.Context, id int64) (*domorder.Order, error) {
	return r.FindActiveByID(ctx, id)
}

func (r orderRepository) ListByUser(_ context.Context, userID int64) ([]*domorder.Order, error) {
	var out []*domorder.Order
	for _, id := range sortedIDs(r.t.read().orders) {
		if o := r.t.read().orders[id]; o.UserID == userID && !o.Deleted {
			out = append(out, o.Clone())
		}
	}
	return out, nil
}

type itemRepository struct{ t *tx }

func (r itemRepository) Insert(_ context.Context, it *domorder.Item) error {
	if _, ok := r.t.read().orders[it.OrderID]; !ok {
		return domorder.ErrNotFound
	}
	st := r.t.write()
	st.seq.items++
	it.ID = st.seq.items
	st.items[it.ID] = it.Clone()
	return nil
}

func (r itemRepository) ListByOrder(_ context.Context, orderID int64) ([]*domorder.Item, error) {
	var out []*domorder.Item
	for _, id := range sortedIDs(r.t.read().items) {
		if it := r.t.read().items[id]; it.OrderID == orderID {
			out = append(out, it.Clone())
		}
	}
	return out, nil
}

// FindByOrderAndProduct returns the earliest matching item.
func (r itemRepository) FindByOrderAndProduct(_ context.Context, orderID, productID int64) (*domorder.Item, error) {
	for _, id := range sortedIDs(r.t.read().items) {
		if it := r.t.read().items[id]; it.OrderID == orderID && it.ProductID == productID {
			return it.Clone(), nil
		}
	}
	return nil, domorder.ErrItemNotFound
}

func (r itemRepository) Delete(_ context.Context, id int64) error {
	if _, ok := r.t.read().items[id]; !ok {
		return domorder.ErrItemNotFound
	}
	delete(r.t.write().items, id)
	return nil
}

func (r itemRepository) CountByProduct(_ context.Context, productID int64) (int, error) {
	n := 0
	for _, it := range r.t.read().items {
		if it.ProductID == productID {
			n++
		}
	}
	return n, nil
}
