package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/apperror"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/money"
)

type Item struct {
	ID         int64
	OrderID    int64
	ProductID  int64
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
	CreatedAt  time.Time
}

func NewItem(orderID, productID int64, quantity int, unitPrice, totalPrice decimal.Decimal) (*Item, error) {
	if quantity <= 0 {
		return nil, apperror.Validation("quantity must be greater than zero")
	}
	if err := money.Check("unit price", unitPrice); err != nil {
		return nil, err
	}
	if err := money.Check("total price", totalPrice); err != nil {
		return nil, err
	}
	return &Item{
		OrderID:    orderID,
		ProductID:  productID,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		TotalPrice: totalPrice,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

func (i *Item) Clone() *Item {
	cp := *i
	return &cp
}

func TotalOf(items []*Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.TotalPrice)
	}
	return total
}
