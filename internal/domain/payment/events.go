package payment

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const EventCreated = "payment.created"

// PaymentCreatedEvent is emitted after a payment settled its order.
type PaymentCreatedEvent struct {
	PaymentID  int64           `json:"payment_id"`
	OrderID    int64           `json:"order_id"`
	UserID     int64           `json:"user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     Method          `json:"method"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func (PaymentCreatedEvent) EventName() string { return EventCreated }

func (e PaymentCreatedEvent) EventKey() string { return strconv.FormatInt(e.OrderID, 10) }

func NewPaymentCreatedEvent(p *Payment, userID int64) PaymentCreatedEvent {
	return PaymentCreatedEvent{
		PaymentID:  p.ID,
		OrderID:    p.OrderID,
		UserID:     userID,
		Amount:     p.Amount,
		Method:     p.Method,
		OccurredAt: time.Now().UTC(),
	}
}
