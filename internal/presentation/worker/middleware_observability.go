// Package workerpresentation adapts event handlers for background execution.
package workerpresentation

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	domoutbox "github.com/Zhima-Mochi/minishop-orders/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"
)

// WithEventContext scopes a logger to one delivered event. It carries the
// event name, the outbox event id (generated when the event was not relayed
// from the outbox), the order key and the current trace identifiers.
func WithEventContext(ctx context.Context, base observability.Logger, e domoutbox.Event) context.Context {
	eventID := ""
	if msg, ok := e.(domoutbox.Message); ok {
		eventID = msg.EventID
	}
	if eventID == "" {
		eventID = uuid.NewString()
	}

	fields := []observability.Field{
		observability.F("event", e.EventName()),
		observability.F("event_id", eventID),
	}
	if keyed, ok := e.(domoutbox.Keyed); ok && keyed.EventKey() != "" {
		fields = append(fields, observability.F("event_key", keyed.EventKey()))
	}
	return logctx.Scope(ctx, base, fields...)
}

// Subscriber wraps every handler registered through it with a consumer span
// and an event-scoped logger.
type Subscriber struct {
	next domoutbox.Subscriber
	base observability.Logger
	tel  observability.Observability
}

func NewSubscriber(next domoutbox.Subscriber, tel observability.Observability) *Subscriber {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Subscriber{
		next: next,
		base: tel.Logger().With(observability.F("component", "worker")),
		tel:  tel,
	}
}

func (s *Subscriber) Subscribe(eventName string, h domoutbox.Handler) {
	s.next.Subscribe(eventName, func(ctx context.Context, e domoutbox.Event) error {
		ctx, span := s.tel.Tracer().Start(ctx, "Event."+e.EventName(),
			attribute.String("messaging.operation", "process"),
			attribute.String("event", e.EventName()),
		)
		defer span.End()
		span.SetAttributes(attribute.Bool("event.from_outbox", isRelayed(e)))

		return h(WithEventContext(ctx, s.base, e), e)
	})
}

func isRelayed(e domoutbox.Event) bool {
	_, ok := e.(domoutbox.Message)
	return ok
}
