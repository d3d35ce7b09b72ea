package memory

import (
	"context"

	domcatalog "github.com/Zhima-Mochi/minishop-orders/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/paging"
)

type categoryRepository struct{ t *tx }

func (r categoryRepository) Insert(_ context.Context, c *domcatalog.Category) error {
	if r.nameTaken(c.Name, 0) {
		return domcatalog.ErrCategoryAlreadyExists
	}
	st := r.t.write()
	st.seq.categories++
	c.ID = st.seq.categories
	st.categories[c.ID] = c.Clone()
	return nil
}

func (r categoryRepository) Update(_ context.Context, c *domcatalog.Category) error {
	if _, ok := r.t.read().categories[c.ID]; !ok {
		return domcatalog.ErrCategoryNotFound
	}
	if !c.Deleted && r.nameTaken(c.Name, c.ID) {
		return domcatalog.ErrCategoryAlreadyExists
	}
	r.t.write().categories[c.ID] = c.Clone()
	return nil
}

func (r categoryRepository) FindByID(_ context.Context, id int64) (*domcatalog.Category, error) {
	c, ok := r.t.read().categories[id]
	if !ok {
		return nil, domcatalog.ErrCategoryNotFound
	}
	return c.Clone(), nil
}

func (r categoryRepository) FindActiveByID(_ context.Context, id int64) (*domcatalog.Category, error) {
	c, ok := r.t.read().categories[id]
	if !ok || c.Deleted {
		return nil, domcatalog.ErrCategoryNotFound
	}
	return c.Clone(), nil
}

func (r categoryRepository) FindActiveByName(_ context.Context, name string) (*domcatalog.Category, error) {
	for _, id := range sortedIDs(r.t.read().categories) {
		if c := r.t.read().categories[id]; !c.Deleted && c.Name == name {
			return c.Clone(), nil
		}
	}
	return nil, domcatalog.ErrCategoryNotFound
}

func (r categoryRepository) ListActive(_ context.Context, page paging.Request) ([]*domcatalog.Category, int, error) {
	var active []*domcatalog.Category
	for _, id := range sortedIDs(r.t.read().categories) {
		if c := r.t.read().categories[id]; !c.Deleted {
			active = append(active, c.Clone())
		}
	}
	return paging.Slice(active, page), len(active), nil
}

func (r categoryRepository) ListAll(_ context.Context) ([]*domcatalog.Category, error) {
	out := make([]*domcatalog.Category, 0, len(r.t.read().categories))
	for _, id := range sortedIDs(r.t.read().categories) {
		out = append(out, r.t.read().categories[id].Clone())
	}
	return out, nil
}

func (r categoryRepository) nameTaken(name string, selfID int64) bool {
	for id, c := range r.t.read().categories {
		if id != selfID && !c.Deleted && c.Name == name {
			return true
		}
	}
	return false
}

type productRepository struct{ t *tx }

func (r productRepository) Insert(_ context.Context, p *domcatalog.Product) error {
	if r.nameTaken(p.Name, 0) {
		return domcatalog.ErrProductAlreadyExists
	}
	st := r.t.write()
	st.seq.products++
	p.ID = st.seq.products
	st.products[p.ID] = p.Clone()
	return nil
}

func (r productRepository) Update(_ context.Context, p *domcatalog.Product) error {
	if _, ok := r.t.read().products[p.ID]; !ok {
		return domcatalog.ErrProductNotFound
	}
	if !p.Deleted && r.nameTaken(p.Name, p.ID) {
		return domcatalog.ErrProductAlreadyExists
	}
	r.t.write().products[p.ID] = p.Clone()
	return nil
}

func (r productRepository) FindByID(_ context.Context, id int64) (*domcatalog.Product, error) {
	p, ok := r.t.read().products[id]
	if !ok {
		return nil, domcatalog.ErrProductNotFound
	}
	return p.Clone(), nil
}

func (r productRepository) FindActiveByID(_ context.Context, id int64) (*domcatalog.Product, error) {
	p, ok := r.t.read().products[id]
	if !ok || p.Deleted {
		return nil, domcatalog.ErrProductNotFound
	}
	return p.Clone(), nil
}

func (r productRepository) FindActiveByName(_ context.Context, name string) (*domcatalog.Product, error) {
	for _, id := range sortedIDs(r.t.read().products) {
		if p := r.t.read().products[id]; !p.Deleted && p.Name == name {
			return p.Clone(), nil
		}
	}
	return nil, domcatalog.ErrProductNotFound
}

func (r productRepository) ListActive(_ context.Context, page paging.Request) ([]*domcatalog.Product, int, error) {
	var active []*domcatalog.Product
	for _, id := range sortedIDs(r.t.read().products) {
		if p := r.t.read().products[id]; !p.Deleted {
			active = append(active, p.Clone())
		}
	}
	return paging.Slice(active, page), len(active), nil
}

func (r productRepository) ListAll(_ context.Context) ([]*domcatalog.Product, error) {
	out := make([]*domcatalog.Product, 0, len(r.t.read().products))
	for _, id := range sortedIDs(r.t.read().products) {
		out = append(out, r.t.read().products[id].Clone())
	}
	return out, nil
}

func (r productRepository) nameTaken(name string, selfID int64) bool {
	for id, p := range r.t.read().products {
		if id != selfID && !p.Deleted && p.Name == name {
			return true
		}
	}
	return false
}
