package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/apperror"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/money"
)

var (
	ErrCategoryNotFound      = apperror.New(apperror.CodeCategoryNotFound, "catalog: category not found")
	ErrCategoryAlreadyExists = apperror.New(apperror.CodeCategoryAlreadyExists, "catalog: category name already exists")
	ErrProductNotFound       = apperror.New(apperror.CodeProductNotFound, "catalog: product not found")
	ErrProductAlreadyExists  = apperror.New(apperror.CodeProductAlreadyExists, "catalog: product name already exists")
)

type Category struct {
	ID        int64
	Name      string
	Deleted   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewCategory(name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("category name is required")
	}
	now := time.Now().UTC()
	return &Category{Name: name, CreatedAt: now, UpdatedAt: now}, nil
}

func (c *Category) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperror.Validation("category name is required")
	}
	c.Name = name
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (c *Category) MarkDeleted() {
	c.Deleted = true
	c.UpdatedAt = time.Now().UTC()
}

func (c *Category) Clone() *Category {
	cp := *c
	return &cp
}

// Product is a sellable catalog entry. StockCount is informational and is not
// decremented by orders.
type Product struct {
	ID         int64
	Name       string
	StockCount int
	Price      decimal.Decimal
	CategoryID int64
	Deleted    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewProduct(name string, stockCount int, price decimal.Decimal, categoryID int64) (*Product, error) {
	p := &Product{}
	if err := p.apply(name, stockCount, price, categoryID); err != nil {
		return nil, err
	}
	p.CreatedAt = p.UpdatedAt
	return p, nil
}

// Revise replaces the editable fields after validating them.
func (p *Product) Revise(name string, stockCount int, price decimal.Decimal, categoryID int64) error {
	return p.apply(name, stockCount, price, categoryID)
}

func (p *Product) apply(name string, stockCount int, price decimal.Decimal, categoryID int64) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperror.Validation("product name is required")
	}
	if stockCount < 0 {
		return apperror.Validation("stock count must be zero or greater")
	}
	if err := money.Check("price", price); err != nil {
		return err
	}
	p.Name = name
	p.StockCount = stockCount
	p.Price = price
	p.CategoryID = categoryID
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (p *Product) MarkDeleted() {
	p.Deleted = true
	p.UpdatedAt = time.Now().UTC()
}

func (p *Product) Clone() *Product {
	cp := *p
	return &cp
}
