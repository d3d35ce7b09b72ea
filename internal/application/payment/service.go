// Package payment settles PENDING orders against the owner's balance.
package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Zhima-Mochi/minishop-orders/internal/application"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/view"
	domorder "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	dompayment "github.com/Zhima-Mochi/minishop-orders/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
)

const (
	paymentService = "payment-service"

	useCasePaymentCreate = "payment.create"
	useCasePaymentList   = "payment.list_by_user"
)

// Input is the caller's payment request. A zero Amount records the order
// total and a zero PaymentDate records the settlement time.
type Input struct {
	Amount      decimal.Decimal
	PaymentDate time.Time
	Method      string
}

type Service struct {
	store application.Store
	inst  *application.Instrument
	now   func() time.Time
}

func NewService(store application.Store, tel observability.Observability) *Service {
	return &Service{
		store: store,
		inst:  application.NewInstrument(paymentService, tel),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// CreatePayment debits the order owner by the order total, records the
// payment and marks the order DELIVERED, all in one unit of work.
func (s *Service) CreatePayment(ctx context.Context, orderID int64, in Input) (_ view.Payment, err error) {
	ctx, run := s.inst.Start(ctx, useCasePaymentCreate, "CreatePayment",
		attribute.Int64("order.id", orderID),
		attribute.String("payment.method", in.Method),
	)
	defer func() { run.End(err) }()

	var out view.Payment
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		o, err := tx.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		p, err := s.Settle(ctx, tx, o, in)
		if err != nil {
			return err
		}
		out = view.NewPayment(p)
		return nil
	})
	if err != nil {
		return view.Payment{}, application.WrapRepositoryError(err)
	}

	run.Span().AddEvent("payment.created", trace.WithAttributes(attribute.Int64("payment.id", out.ID)))
	run.Annotate(observability.F("payment_id", out.ID))
	return out, nil
}

// Settle charges o inside tx. The checks run in a fixed order: the order must
// be PENDING, the method must be known, the owner must exist and afford the
// total. o must have been loaded for update by the caller.
func (s *Service) Settle(ctx context.Context, tx application.Tx, o *domorder.Order, in Input) (*dompayment.Payment, error) {
	if err := o.EnsurePending(); err != nil {
		return nil, err
	}
	method, err := dompayment.ParseMethod(in.Method)
	if err != nil {
		return nil, err
	}
	payer, err := tx.Users().GetForUpdate(ctx, o.UserID)
	if err != nil {
		return nil, err
	}
	if err := payer.Debit(o.TotalPrice); err != nil {
		return nil, err
	}

	amount := in.Amount
	if amount.IsZero() {
		amount = o.TotalPrice
	}
	paidAt := in.PaymentDate
	if paidAt.IsZero() {
		paidAt = s.now()
	}
	p, err := dompayment.New(o.ID, amount, method, paidAt)
	if err != nil {
		return nil, err
	}

	from := o.Status
	if err := o.MarkDelivered(); err != nil {
		return nil, err
	}
	if err := tx.Users().Update(ctx, payer); err != nil {
		return nil, err
	}
	if err := tx.Payments().Insert(ctx, p); err != nil {
		return nil, err
	}
	if err := tx.Orders().Update(ctx, o); err != nil {
		return nil, err
	}
	if err := tx.Outbox().Append(ctx, dompayment.NewPaymentCreatedEvent(p, payer.ID)); err != nil {
		return nil, err
	}
	if err := tx.Outbox().Append(ctx, domorder.NewOrderStatusChangedEvent(o, from)); err != nil {
		return nil, err
	}
	return p, nil
}

// GetUserPayments lists payments for orders owned by userID.
func (s *Service) GetUserPayments(ctx context.Context, userID int64) (_ []view.Payment, err error) {
	ctx, run := s.inst.Start(ctx, useCasePaymentList, "GetUserPayments",
		attribute.Int64("user.id", userID),
	)
	defer func() { run.End(err) }()

	out := []view.Payment{}
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		payments, err := tx.Payments().ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		for _, p := range payments {
			out = append(out, view.NewPayment(p))
		}
		return nil
	})
	if err != nil {
		return nil, application.WrapRepositoryError(err)
	}
	return out, nil
}
