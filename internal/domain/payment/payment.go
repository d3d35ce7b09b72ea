package payment

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/apperror"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/money"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/user"
)

var (
	ErrInvalidMethod = apperror.New(apperror.CodeInvalidPaymentMethod, "payment: invalid payment method %q")
	// ErrInsufficientBalance is raised when the paying user cannot cover the order total.
	ErrInsufficientBalance = user.ErrInsufficientBalance
)

type Method string

const (
	MethodCash     Method = "CASH"
	MethodCard     Method = "CARD"
	MethodTransfer Method = "TRANSFER"
)

func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToUpper(strings.TrimSpace(s))); m {
	case MethodCash, MethodCard, MethodTransfer:
		return m, nil
	default:
		return "", ErrInvalidMethod.With(s)
	}
}

type Payment struct {
	ID          int64
	OrderID     int64
	Amount      decimal.Decimal
	Method      Method
	PaymentDate time.Time
	CreatedAt   time.Time
}

func New(orderID int64, amount decimal.Decimal, method Method, paidAt time.Time) (*Payment, error) {
	if err := money.Check("payment amount", amount); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if paidAt.IsZero() {
		paidAt = now
	}
	return &Payment{
		OrderID:     orderID,
		Amount:      amount,
		Method:      method,
		PaymentDate: paidAt.UTC(),
		CreatedAt:   now,
	}, nil
}

func (p *Payment) Clone() *Payment {
	cp := *p
	return &cp
}
