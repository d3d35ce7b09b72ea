// Package checkout creates and pays an order in a single unit of work.
package checkout

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Zhima-Mochi/minishop-orders/internal/application"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/orderitem"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/payment"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/view"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/apperror"
	domorder "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	dompayment "github.com/Zhima-Mochi/minishop-orders/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
)

const (
	checkoutService     = "checkout-service"
	useCaseProcessOrder = "order.process_full"
)

type ProcessOrderInput struct {
	UserID  int64
	Items   []orderitem.Input
	Payment payment.Input
}

// ProcessOrderUseCase runs order creation, item attachment and settlement
// atomically. Nothing is stored when any step fails.
type ProcessOrderUseCase struct {
	store    application.Store
	items    *orderitem.Service
	payments *payment.Service
	inst     *application.Instrument
}

var _ application.UseCase[ProcessOrderInput, view.FullOrder] = (*ProcessOrderUseCase)(nil)

func NewProcessOrderUseCase(
	store application.Store,
	items *orderitem.Service,
	payments *payment.Service,
	tel observability.Observability,
) *ProcessOrderUseCase {
	return &ProcessOrderUseCase{
		store:    store,
		items:    items,
		payments: payments,
		inst:     application.NewInstrument(checkoutService, tel),
	}
}

func (uc *ProcessOrderUseCase) Execute(ctx context.Context, cmd ProcessOrderInput) (_ view.FullOrder, err error) {
	ctx, run := uc.inst.Start(ctx, useCaseProcessOrder, "ProcessOrder",
		attribute.Int64("user.id", cmd.UserID),
		attribute.Int("order.item_count", len(cmd.Items)),
		attribute.String("payment.method", cmd.Payment.Method),
	)
	defer func() { run.End(err) }()

	if len(cmd.Items) == 0 {
		return view.FullOrder{}, apperror.Validation("order must contain at least one item")
	}

	var out view.FullOrder
	err = uc.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		u, err := tx.Users().GetForUpdate(ctx, cmd.UserID)
		if err != nil {
			return err
		}
		total := uc.items.OrderTotal(cmd.Items)
		if !u.CanAfford(total) {
			return dompayment.ErrInsufficientBalance
		}

		o, err := domorder.New(u.ID, total)
		if err != nil {
			return err
		}
		if err := tx.Orders().Insert(ctx, o); err != nil {
			return err
		}
		for _, in := range cmd.Items {
			if _, _, err := uc.items.AddItem(ctx, tx, o, in); err != nil {
				return err
			}
		}
		if err := tx.Outbox().Append(ctx, domorder.NewOrderCreatedEvent(o, len(cmd.Items))); err != nil {
			return err
		}

		p, err := uc.payments.Settle(ctx, tx, o, cmd.Payment)
		if err != nil {
			return err
		}
		out = view.FullOrder{
			Order:   view.NewOrder(o, u.Username),
			Payment: view.NewPayment(p),
		}
		return nil
	})
	if err != nil {
		return view.FullOrder{}, application.WrapRepositoryError(err)
	}

	run.Span().AddEvent("order.processed", trace.WithAttributes(
		attribute.Int64("order.id", out.Order.ID),
		attribute.Int64("payment.id", out.Payment.ID),
	))
	run.Annotate(observability.F("order_id", out.Order.ID), observability.F("payment_id", out.Payment.ID))
	return out, nil
}
