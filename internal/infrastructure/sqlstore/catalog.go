package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domcatalog "github.com/Zhima-Mochi/minishop-orders/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/paging"
)

const (
	categoryColumns = "id, name, deleted, created_at, updated_at"
	productColumns  = "id, name, stock_count, price, category_id, deleted, created_at, updated_at"
)

type categoryRepository struct {
	q querier
	d dialect
}

func (r categoryRepository) Insert(ctx context.Context, c *domcatalog.Category) error {
	id, err := insertReturningID(ctx, r.q, r.d,
		"INSERT INTO categories (name, deleted, created_at, updated_at) VALUES (?, ?, ?, ?)",
		c.Name, c.Deleted, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domcatalog.ErrCategoryAlreadyExists
		}
		return fmt.Errorf("insert category: %w", err)
	}
	c.ID = id
	return nil
}

func (r categoryRepository) Update(ctx context.Context, c *domcatalog.Category) error {
	err := execAffecting(ctx, r.q, r.d, domcatalog.ErrCategoryNotFound,
		"UPDATE categories SET name = ?, deleted = ?, updated_at = ? WHERE id = ?",
		c.Name, c.Deleted, c.UpdatedAt, c.ID)
	if isUniqueViolation(err) {
		return domcatalog.ErrCategoryAlreadyExists
	}
	return err
}

func (r categoryRepository) FindByID(ctx context.Context, id int64) (*domcatalog.Category, error) {
	return r.one(ctx, "SELECT "+categoryColumns+" FROM categories WHERE id = ?", id)
}

func (r categoryRepository) FindActiveByID(ctx context.Context, id int64) (*domcatalog.Category, error) {
	return r.one(ctx, "SELECT "+categoryColumns+" FROM categories WHERE id = ? AND deleted = FALSE", id)
}

func (r categoryRepository) FindActiveByName(ctx context.Context, name string) (*domcatalog.Category, error) {
	return r.one(ctx, "SELECT "+categoryColumns+" FROM categories WHERE name = ? AND deleted = FALSE", name)
}

func (r categoryRepository) ListActive(ctx context.Context, page paging.Request) ([]*domcatalog.Category, int, error) {
	var total int
	if err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories WHERE deleted = FALSE").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}
	out, err := r.many(ctx, "SELECT "+categoryColumns+" FROM categories WHERE deleted = FALSE ORDER BY id LIMIT ? OFFSET ?",
		page.Size, page.Offset())
	return out, total, err
}

func (r categoryRepository) ListAll(ctx context.Context) ([]*domcatalog.Category, error) {
	return r.many(ctx, "SELECT "+categoryColumns+" FROM categories ORDER BY id")
}

func (r categoryRepository) one(ctx context.Context, query string, args ...any) (*domcatalog.Category, error) {
	c, err := scanCategory(r.q.QueryRowContext(ctx, r.d.rebind(query), args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domcatalog.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}
	return c, nil
}

func (r categoryRepository) many(ctx context.Context, query string, args ...any) ([]*domcatalog.Category, error) {
	rows, err := r.q.QueryContext(ctx, r.d.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []*domcatalog.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCategory(row rowScanner) (*domcatalog.Category, error) {
	var c domcatalog.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Deleted, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.CreatedAt = utc(c.CreatedAt)
	c.UpdatedAt = utc(c.UpdatedAt)
	return &c, nil
}

type productRepository struct {
	q querier
	d dialect
}

func (r productRepository) Insert(ctx context.Context, p *domcatalog.Product) error {
	id, err := insertReturningID(ctx, r.q, r.d,
		`INSERT INTO products (name, stock_count, price, category_id, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.StockCount, p.Price, p.CategoryID, p.Deleted, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domcatalog.ErrProductAlreadyExists
		}
		return fmt.Errorf("insert product: %w", err)
	}
	p.ID = id
	return nil
}

func (r productRepository) Update(ctx context.Context, p *domcatalog.Product) error {
	err := execAffecting(ctx, r.q, r.d, domcatalog.ErrProductNotFound,
		`UPDATE products SET name = ?, stock_count = ?, price = ?, category_id = ?, deleted = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.StockCount, p.Price, p.CategoryID, p.Deleted, p.UpdatedAt, p.ID)
	if isUniqueViolation(err) {
		return domcatalog.ErrProductAlreadyExists
	}
	return err
}

func (r productRepository) FindByID(ctx context.Context, id int64) (*domcatalog.Product, error) {
	return r.one(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id)
}

func (r productRepository) FindActiveByID(ctx context.Context, id int64) (*domcatalog.Product, error) {
	return r.one(ctx, "SELECT "+productColumns+" FROM products WHERE id = ? AND deleted = FALSE", id)
}

func (r productRepository) FindActiveByName(ctx context.Context, name string) (*domcatalog.Product, error) {
	return r.one(ctx, "SELECT "+productColumns+" FROM products WHERE name = ? AND deleted = FALSE", name)
}

func (r productRepository) ListActive(ctx context.Context, page paging.Request) ([]*domcatalog.Product, int, error) {
	var total int
	if err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM products WHERE deleted = FALSE").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}
	out, err := r.many(ctx, "SELECT "+productColumns+" FROM products WHERE deleted = FALSE ORDER BY id LIMIT ? OFFSET ?",
		page.Size, page.Offset())
	return out, total, err
}

func (r productRepository) ListAll(ctx context.Context) ([]*domcatalog.Product, error) {
	return r.many(ctx, "SELECT "+productColumns+" FROM products ORDER BY id")
}

func (r productRepository) one(ctx context.Context, query string, args ...any) (*domcatalog.Product, error) {
	p, err := scanProduct(r.q.QueryRowContext(ctx, r.d.rebind(query), args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domcatalog.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	return p, nil
}

func (r productRepository) many(ctx context.Context, query string, args ...any) ([]*domcatalog.Product, error) {
	rows, err := r.q.QueryContext(ctx, r.d.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []*domcatalog.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProduct(row rowScanner) (*domcatalog.Product, error) {
	var p domcatalog.Product
	if err := row.Scan(&p.ID, &p.Name, &p.StockCount, &p.Price, &p.CategoryID, &p.Deleted, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt = utc(p.CreatedAt)
	p.UpdatedAt = utc(p.UpdatedAt)
	return &p, nil
}
