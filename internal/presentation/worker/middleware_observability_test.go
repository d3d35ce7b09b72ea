package workerpresentation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	domorder "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-orders/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"
)

type mapSubscriber map[string]domoutbox.Handler

func (m mapSubscriber) Subscribe(name string, h domoutbox.Handler) { m[name] = h }

func TestWithEventContextUsesOutboxIdentifiers(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	msg := domoutbox.Message{Record: domoutbox.Record{EventID: "evt-1", Name: domorder.EventCreated, Key: "42"}}

	ctx := WithEventContext(context.Background(), zaplogger.New(zap.New(core)), msg)
	logctx.From(ctx).Info("handled")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "evt-1", fields["event_id"])
	assert.Equal(t, domorder.EventCreated, fields["event"])
	assert.Equal(t, "42", fields["event_key"])
	assert.NotContains(t, fields, "trace_id")
}

func TestWithEventContextGeneratesEventID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := domorder.OrderCancelledEvent{OrderID: 3}

	ctx := WithEventContext(context.Background(), zaplogger.New(zap.New(core)), e)
	logctx.From(ctx).Info("handled")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.NotEmpty(t, fields["event_id"])
	assert.Equal(t, domorder.EventCancelled, fields["event"])
}

func TestSubscriberWrapsHandlers(t *testing.T) {
	inner := mapSubscriber{}
	sub := NewSubscriber(inner, nil)

	var scoped bool
	sub.Subscribe(domorder.EventCreated, func(ctx context.Context, _ domoutbox.Event) error {
		scoped = logctx.From(ctx) != nil
		return nil
	})

	h, ok := inner[domorder.EventCreated]
	require.True(t, ok)
	msg := domoutbox.Message{Record: domoutbox.Record{EventID: "e-1", Name: domorder.EventCreated}}
	require.NoError(t, h(context.Background(), msg))
	assert.True(t, scoped)
}
