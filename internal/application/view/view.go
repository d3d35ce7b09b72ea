// Package view holds the read models returned by the application services.
package view

import (
	"time"

	"github.com/shopspring/decimal"

	domcatalog "github.com/Zhima-Mochi/minishop-orders/internal/domain/catalog"
	domorder "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	dompayment "github.com/Zhima-Mochi/minishop-orders/internal/domain/payment"
	domuser "github.com/Zhima-Mochi/minishop-orders/internal/domain/user"
)

type Order struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	Username   string          `json:"username"`
	Status     domorder.Status `json:"status"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
}

func NewOrder(o *domorder.Order, username string) Order {
	return Order{
		ID:         o.ID,
		UserID:     o.UserID,
		Username:   username,
		Status:     o.Status,
		TotalPrice: o.TotalPrice,
		CreatedAt:  o.CreatedAt,
	}
}

type OrderItem struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	OrderStatus domorder.Status `json:"order_status"`
}

func NewOrderItem(it *domorder.Item, productName string, status domorder.Status) OrderItem {
	return OrderItem{
		ID:          it.ID,
		OrderID:     it.OrderID,
		ProductID:   it.ProductID,
		ProductName: productName,
		Quantity:    it.Quantity,
		UnitPrice:   it.UnitPrice,
		TotalPrice:  it.TotalPrice,
		OrderStatus: status,
	}
}

type Payment struct {
	ID          int64             `json:"id"`
	OrderID     int64             `json:"order_id"`
	Amount      decimal.Decimal   `json:"amount"`
	Method      dompayment.Method `json:"payment_method"`
	PaymentDate time.Time         `json:"payment_date"`
}

func NewPayment(p *dompayment.Payment) Payment {
	return Payment{
		ID:          p.ID,
		OrderID:     p.OrderID,
		Amount:      p.Amount,
		Method:      p.Method,
		PaymentDate: p.PaymentDate,
	}
}

// FullOrder is the result of the combined create-and-pay workflow.
type FullOrder struct {
	Order   Order   `json:"order"`
	Payment Payment `json:"payment"`
}

type OrderStatistics struct {
	TotalOrders int             `json:"total_orders"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type ProductOrderStatistics struct {
	ProductName   string          `json:"product_name"`
	TotalQuantity int             `json:"total_quantity"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}

// User never exposes the stored password.
type User struct {
	ID       int64           `json:"id"`
	Username string          `json:"username"`
	Role     domuser.Role    `json:"role"`
	Balance  decimal.Decimal `json:"balance"`
}

func NewUser(u *domuser.User) User {
	return User{ID: u.ID, Username: u.Username, Role: u.Role, Balance: u.Balance}
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func NewCategory(c *domcatalog.Category) Category {
	return Category{ID: c.ID, Name: c.Name}
}

type Product struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	StockCount int             `json:"stock_count"`
	Price      decimal.Decimal `json:"price"`
	CategoryID int64           `json:"category_id"`
}

func NewProduct(p *domcatalog.Product) Product {
	return Product{
		ID:         p.ID,
		Name:       p.Name,
		StockCount: p.StockCount,
		Price:      p.Price,
		CategoryID: p.CategoryID,
	}
}
