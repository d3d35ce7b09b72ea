package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/apperror"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/money"
)

var (
	ErrNotFound          = apperror.New(apperror.CodeOrderNotFound, "order: not found")
	ErrAlreadyExists     = apperror.New(apperror.CodeOrderAlreadyExists, "order: already exists")
	ErrCannotCancel      = apperror.New(apperror.CodeCannotCancelOrder, "order: cannot cancel order")
	ErrInvalidStatus     = apperror.New(apperror.CodeInvalidOrderStatus, "order: invalid order status")
	ErrItemNotFound      = apperror.New(apperror.CodeOrderItemNotFound, "order: item not found")
	ErrItemAlreadyExists = apperror.New(apperror.CodeOrderItemAlreadyExists, "order: item already exists")
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusDelivered Status = "DELIVERED"
	StatusFinished  Status = "FINISHED"
	StatusCancelled Status = "CANCELLED"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusPending, StatusDelivered, StatusFinished, StatusCancelled:
		return st, nil
	default:
		return "", ErrInvalidStatus
	}
}

type Order struct {
	ID         int64
	UserID     int64
	Status     Status
	TotalPrice decimal.Decimal
	Deleted    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func New(userID int64, totalPrice decimal.Decimal) (*Order, error) {
	if err := money.Check("order total", totalPrice); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Order{
		UserID:     userID,
		Status:     StatusPending,
		TotalPrice: totalPrice,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (o *Order) IsPending() bool { return o.Status == StatusPending }

func (o *Order) EnsurePending() error {
	if !o.IsPending() {
		return ErrInvalidStatus
	}
	return nil
}

// Cancel moves a PENDING order owned by userID to CANCELLED.
func (o *Order) Cancel(userID int64) error {
	if o.UserID != userID || !o.IsPending() {
		return ErrCannotCancel
	}
	return o.TransitionTo(StatusCancelled)
}

// ChangeStatus is the administrative status setter. It never cancels.
func (o *Order) ChangeStatus(target Status) error {
	if target == StatusCancelled {
		return ErrCannotCancel
	}
	return o.TransitionTo(target)
}

// MarkDelivered records a successful payment.
func (o *Order) MarkDelivered() error {
	return o.TransitionTo(StatusDelivered)
}

// RecomputeTotal sets the total to the sum of the given line totals.
func (o *Order) RecomputeTotal(items []*Item) {
	o.TotalPrice = TotalOf(items)
	o.touch()
}

func (o *Order) Clone() *Order {
	cp := *o
	return &cp
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}
