package order

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventCreated       = "order.created"
	EventCancelled     = "order.cancelled"
	EventStatusChanged = "order.status_changed"
	EventItemAdded     = "order.item_added"
	EventItemRemoved   = "order.item_removed"
)

// OrderCreatedEvent is emitted once the order and all of its items are stored.
type OrderCreatedEvent struct {
	OrderID    int64           `json:"order_id"`
	UserID     int64           `json:"user_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	ItemCount  int             `json:"item_count"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func (OrderCreatedEvent) EventName() string { return EventCreated }

func (e OrderCreatedEvent) EventKey() string { return strconv.FormatInt(e.OrderID, 10) }

func NewOrderCreatedEvent(o *Order, itemCount int) OrderCreatedEvent {
	return OrderCreatedEvent{
		OrderID:    o.ID,
		UserID:     o.UserID,
		TotalPrice: o.TotalPrice,
		ItemCount:  itemCount,
		OccurredAt: time.Now().UTC(),
	}
}

type OrderCancelledEvent struct {
	OrderID    int64     `json:"order_id"`
	UserID     int64     `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (OrderCancelledEvent) EventName() string { return EventCancelled }

func (e OrderCancelledEvent) EventKey() string { return strconv.FormatInt(e.OrderID, 10) }

func NewOrderCancelledEvent(o *Order) OrderCancelledEvent {
	return OrderCancelledEvent{
		OrderID:    o.ID,
		UserID:     o.UserID,
		OccurredAt: time.Now().UTC(),
	}
}

type OrderStatusChangedEvent struct {
	OrderID    int64     `json:"order_id"`
	From       Status    `json:"from"`
	To         Status    `json:"to"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (OrderStatusChangedEvent) EventName() string { return EventStatusChanged }

func (e OrderStatusChangedEvent) EventKey() string { return strconv.FormatInt(e.OrderID, 10) }

func NewOrderStatusChangedEvent(o *Order, from Status) OrderStatusChangedEvent {
	return OrderStatusChangedEvent{
		OrderID:    o.ID,
		From:       from,
		To:         o.Status,
		OccurredAt: time.Now().UTC(),
	}
}

type OrderItemAddedEvent struct {
	OrderID    int64           `json:"order_id"`
	ItemID     int64           `json:"item_id"`
	ProductID  int64           `json:"product_id"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func (OrderItemAddedEvent) EventName() string { return EventItemAdded }

func (e OrderItemAddedEvent) EventKey() string { return strconv.FormatInt(e.OrderID, 10) }

func NewOrderItemAddedEvent(it *Item) OrderItemAddedEvent {
	return OrderItemAddedEvent{
		OrderID:    it.OrderID,
		ItemID:     it.ID,
		ProductID:  it.ProductID,
		Quantity:   it.Quantity,
		TotalPrice: it.TotalPrice,
		OccurredAt: time.Now().UTC(),
	}
}

type OrderItemRemovedEvent struct {
	OrderID    int64     `json:"order_id"`
	ItemID     int64     `json:"item_id"`
	ProductID  int64     `json:"product_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (OrderItemRemovedEvent) EventName() string { return EventItemRemoved }

func (e OrderItemRemovedEvent) EventKey() string { return strconv.FormatInt(e.OrderID, 10) }

func NewOrderItemRemovedEvent(it *Item) OrderItemRemovedEvent {
	return OrderItemRemovedEvent{
		OrderID:    it.OrderID,
		ItemID:     it.ID,
		ProductID:  it.ProductID,
		OccurredAt: time.Now().UTC(),
	}
}
