package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/minishop-orders/internal/application"
	domoutbox "github.com/Zhima-Mochi/minishop-orders/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
)

const componentRelay = "outbox_relay"

// Relay polls pending outbox records and hands them to a publisher. A record
// is marked sent only after the publisher accepted it, so delivery is at
// least once.
type Relay struct {
	store     application.Store
	publisher domoutbox.Publisher
	interval  time.Duration
	batch     int
	now       func() time.Time

	log     observability.Logger
	relayed observability.Counter
}

type RelayOption func(*Relay)

func WithInterval(d time.Duration) RelayOption {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBatchSize(n int) RelayOption {
	return func(r *Relay) {
		if n > 0 {
			r.batch = n
		}
	}
}

func NewRelay(store application.Store, publisher domoutbox.Publisher, tel observability.Observability, opts ...RelayOption) *Relay {
	if tel == nil {
		tel = observability.Nop()
	}
	r := &Relay{
		store:     store,
		publisher: publisher,
		interval:  time.Second,
		batch:     100,
		now:       time.Now,
		log:       tel.Logger().With(observability.F("component", componentRelay)),
		relayed:   tel.Metrics().Counter(observability.MOutboxRelayed),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run drains the outbox every interval until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	r.log.Info("outbox_relay_started",
		observability.F("interval", r.interval.String()),
		observability.F("batch", r.batch),
	)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if _, err := r.DrainOnce(ctx); err != nil && ctx.Err() == nil {
			r.log.Warn("outbox_relay_drain_failed", observability.F("error", err))
		}
		select {
		case <-ctx.Done():
			r.log.Info("outbox_relay_stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// DrainOnce publishes at most one batch and returns how many records were
// marked sent. It stops at the first publish failure to keep per-key order.
func (r *Relay) DrainOnce(ctx context.Context) (int, error) {
	var pending []domoutbox.Record
	err := r.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		var err error
		pending, err = tx.Outbox().FetchPending(ctx, r.batch)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("fetch pending: %w", err)
	}

	sent := 0
	for _, rec := range pending {
		if err := r.publisher.Publish(ctx, domoutbox.Message{Record: rec}); err != nil {
			r.relayed.Add(1, observability.L("event", rec.Name), observability.L("outcome", "error"))
			return sent, fmt.Errorf("publish %s (%d): %w", rec.Name, rec.ID, err)
		}
		err := r.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
			return tx.Outbox().MarkSent(ctx, rec.ID, r.now())
		})
		if err != nil {
			return sent, fmt.Errorf("mark sent %d: %w", rec.ID, err)
		}
		r.relayed.Add(1, observability.L("event", rec.Name), observability.L("outcome", "success"))
		sent++
	}
	if sent > 0 {
		r.log.Debug("outbox_relayed", observability.F("count", sent))
	}
	return sent, nil
}

// Fanout publishes to every publisher in order and fails on the first error.
type Fanout []domoutbox.Publisher

func (f Fanout) Publish(ctx context.Context, e domoutbox.Event) error {
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
