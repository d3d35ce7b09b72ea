// Package audit consumes relayed order and payment events and keeps
// per-event counters and an audit log line for each of them.
package audit

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Zhima-Mochi/minishop-orders/internal/application"
	domorder "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-orders/internal/domain/outbox"
	dompayment "github.com/Zhima-Mochi/minishop-orders/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
)

const (
	workerService = "audit_worker"

	// seenWindow bounds how many relayed event ids are remembered for
	// redelivery detection.
	seenWindow = 4096
)

// Events lists every event name the worker subscribes to.
var Events = []string{
	domorder.EventCreated,
	domorder.EventCancelled,
	domorder.EventStatusChanged,
	domorder.EventItemAdded,
	domorder.EventItemRemoved,
	dompayment.EventCreated,
}

type Worker struct {
	subscriber domoutbox.Subscriber
	inst       *application.Instrument
	events     observability.Counter
	seen       *lru.Cache[string, struct{}]
}

func New(subscriber domoutbox.Subscriber, tel observability.Observability) *Worker {
	inst := application.NewInstrument(workerService, tel)
	seen, _ := lru.New[string, struct{}](seenWindow)
	return &Worker{
		subscriber: subscriber,
		inst:       inst,
		events:     inst.Metrics().Counter(observability.MOrderEvents),
		seen:       seen,
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil {
		return
	}
	for _, name := range Events {
		w.subscriber.Subscribe(name, w.Handle)
	}
}

// envelope holds the fields shared by all order and payment events.
type envelope struct {
	OrderID   int64  `json:"order_id"`
	UserID    int64  `json:"user_id"`
	PaymentID int64  `json:"payment_id,omitempty"`
	To        string `json:"to,omitempty"`
}

func (w *Worker) Handle(ctx context.Context, e domoutbox.Event) (err error) {
	name := e.EventName()
	_, run := w.inst.Start(ctx, "audit.worker."+name, "AuditEvent", attribute.String("event", name))
	defer func() { run.End(err) }()

	var env envelope
	switch evt := e.(type) {
	case domoutbox.Message:
		if err = evt.Decode(&env); err != nil {
			return fmt.Errorf("audit: decode %s: %w", name, err)
		}
		run.Annotate(observability.F("event_id", evt.EventID))
		// The relay redelivers a record when a later publisher fails.
		if evt.EventID != "" {
			if dup, _ := w.seen.ContainsOrAdd(evt.EventID, struct{}{}); dup {
				run.SetStatus("duplicate")
				return nil
			}
		}
	case domorder.OrderCreatedEvent:
		env = envelope{OrderID: evt.OrderID, UserID: evt.UserID}
	case domorder.OrderCancelledEvent:
		env = envelope{OrderID: evt.OrderID, UserID: evt.UserID}
	case domorder.OrderStatusChangedEvent:
		env = envelope{OrderID: evt.OrderID, To: string(evt.To)}
	case domorder.OrderItemAddedEvent:
		env = envelope{OrderID: evt.OrderID}
	case domorder.OrderItemRemovedEvent:
		env = envelope{OrderID: evt.OrderID}
	case dompayment.PaymentCreatedEvent:
		env = envelope{OrderID: evt.OrderID, UserID: evt.UserID, PaymentID: evt.PaymentID}
	}

	w.events.Add(1, observability.L("event", name))
	run.Annotate(
		observability.F("event", name),
		observability.F("order_id", env.OrderID),
		observability.F("user_id", env.UserID),
	)
	if env.PaymentID != 0 {
		run.Annotate(observability.F("payment_id", env.PaymentID))
	}
	if env.To != "" {
		run.Annotate(observability.F("order_status", env.To))
	}
	return nil
}
