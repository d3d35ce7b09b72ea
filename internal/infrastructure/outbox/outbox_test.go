package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/minishop-orders/internal/application"
	domorder "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-orders/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domoutbox.Event
	failOn int
}

func (p *recordingPublisher) Publish(_ context.Context, e domoutbox.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failOn > 0 && len(p.events)+1 == p.failOn {
		return errors.New("broker down")
	}
	p.events = append(p.events, e)
	return nil
}

func appendEvents(t *testing.T, s application.Store, n int) {
	t.Helper()
	require.NoError(t, s.WithinTx(context.Background(), func(ctx context.Context, tx application.Tx) error {
		for i := 1; i <= n; i++ {
			o := &domorder.Order{ID: int64(i), UserID: 1, Status: domorder.StatusPending, TotalPrice: decimal.NewFromInt(10)}
			if err := tx.Outbox().Append(ctx, domorder.NewOrderCreatedEvent(o, 1)); err != nil {
				return err
			}
		}
		return nil
	}))
}

func pendingCount(t *testing.T, s application.Store) int {
	t.Helper()
	var n int
	require.NoError(t, s.WithinTx(context.Background(), func(ctx context.Context, tx application.Tx) error {
		recs, err := tx.Outbox().FetchPending(ctx, 100)
		n = len(recs)
		return err
	}))
	return n
}

func TestRelayMarksPublishedRecordsSent(t *testing.T) {
	store := memory.NewStore()
	appendEvents(t, store, 3)

	pub := &recordingPublisher{}
	relay := NewRelay(store, pub, nil, WithBatchSize(2))

	sent, err := relay.DrainOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Equal(t, 1, pendingCount(t, store))

	sent, err = relay.DrainOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Zero(t, pendingCount(t, store))

	require.Len(t, pub.events, 3)
	msg, ok := pub.events[0].(domoutbox.Message)
	require.True(t, ok)
	assert.Equal(t, domorder.EventCreated, msg.EventName())
	assert.Equal(t, "1", msg.EventKey())

	var evt domorder.OrderCreatedEvent
	require.NoError(t, msg.Decode(&evt))
	assert.Equal(t, int64(1), evt.OrderID)
}

func TestRelayKeepsFailedRecordsPending(t *testing.T) {
	store := memory.NewStore()
	appendEvents(t, store, 3)

	relay := NewRelay(store, &recordingPublisher{failOn: 2}, nil)

	sent, err := relay.DrainOnce(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 2, pendingCount(t, store))
}

func TestBusDeliversToSubscribers(t *testing.T) {
	bus := NewBus(nil)
	ctx := context.Background()

	var (
		mu  sync.Mutex
		got []string
	)
	bus.Subscribe(domorder.EventCreated, func(_ context.Context, e domoutbox.Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e.EventName())
		return nil
	})
	bus.Subscribe(domorder.EventCancelled, func(context.Context, domoutbox.Event) error {
		panic("handler bug")
	})
	bus.Start(ctx)

	o := &domorder.Order{ID: 1, UserID: 1}
	require.NoError(t, bus.Publish(ctx, domorder.NewOrderCreatedEvent(o, 0)))
	require.NoError(t, bus.Publish(ctx, domorder.NewOrderCancelledEvent(o)))

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	bus.Stop(stopCtx)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{domorder.EventCreated}, got)

	assert.ErrorIs(t, bus.Publish(ctx, domorder.NewOrderCreatedEvent(o, 0)), ErrBusClosed)
}

func TestFanoutStopsOnFirstError(t *testing.T) {
	first := &recordingPublisher{}
	second := &recordingPublisher{failOn: 1}
	third := &recordingPublisher{}

	err := Fanout{first, second, third}.Publish(context.Background(), domorder.NewOrderCancelledEvent(&domorder.Order{ID: 3}))
	require.Error(t, err)
	assert.Len(t, first.events, 1)
	assert.Empty(t, third.events)
}

func TestBusHandlerTimeout(t *testing.T) {
	bus := NewBus(nil, WithHandlerTimeout(20*time.Millisecond), WithConcurrency(1))
	ctx := context.Background()

	seen := make(chan error, 1)
	bus.Subscribe(domorder.EventCancelled, func(hctx context.Context, _ domoutbox.Event) error {
		<-hctx.Done()
		seen <- hctx.Err()
		return hctx.Err()
	})
	bus.Start(ctx)
	require.NoError(t, bus.Publish(ctx, domorder.NewOrderCancelledEvent(&domorder.Order{ID: 9})))

	select {
	case err := <-seen:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not cancelled")
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	bus.Stop(stopCtx)
}
