// Package order manages the order aggregate: creation from line items,
// cancellation by the owner and administrative status changes.
package order

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Zhima-Mochi/minishop-orders/internal/application"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/authz"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/orderitem"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/view"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/apperror"
	domorder "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	domuser "github.com/Zhima-Mochi/minishop-orders/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
)

const (
	orderService = "order-service"

	useCaseOrderCreate = "order.create"
	useCaseOrderList   = "order.list_by_user"
	useCaseOrderGet    = "order.get"
	useCaseOrderCancel = "order.cancel"
	useCaseOrderStatus = "order.update_status"
)

type Service struct {
	store application.Store
	items *orderitem.Service
	inst  *application.Instrument
}

func NewService(store application.Store, items *orderitem.Service, tel observability.Observability) *Service {
	return &Service{
		store: store,
		items: items,
		inst:  application.NewInstrument(orderService, tel),
	}
}

// CreateOrder stores a PENDING order whose total is the sum of the line totals
// and attaches every item in the same unit of work.
func (s *Service) CreateOrder(ctx context.Context, userID int64, items []orderitem.Input) (_ view.Order, err error) {
	ctx, run := s.inst.Start(ctx, useCaseOrderCreate, "CreateOrder",
		attribute.Int64("user.id", userID),
		attribute.Int("order.item_count", len(items)),
	)
	defer func() { run.End(err) }()

	if len(items) == 0 {
		return view.Order{}, apperror.Validation("order must contain at least one item")
	}

	var out view.Order
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		u, err := tx.Users().FindActiveByID(ctx, userID)
		if err != nil {
			return err
		}
		o, err := domorder.New(u.ID, s.items.OrderTotal(items))
		if err != nil {
			return err
		}
		if err := tx.Orders().Insert(ctx, o); err != nil {
			return err
		}
		for _, in := range items {
			if _, _, err := s.items.AddItem(ctx, tx, o, in); err != nil {
				return err
			}
		}
		if err := tx.Outbox().Append(ctx, domorder.NewOrderCreatedEvent(o, len(items))); err != nil {
			return err
		}
		out = view.NewOrder(o, u.Username)
		return nil
	})
	if err != nil {
		return view.Order{}, application.WrapRepositoryError(err)
	}

	run.Span().AddEvent("order.created", trace.WithAttributes(attribute.Int64("order.id", out.ID)))
	run.Annotate(observability.F("order_id", out.ID))
	return out, nil
}

// GetUserOrders lists the user's orders oldest first.
func (s *Service) GetUserOrders(ctx context.Context, userID int64) (_ []view.Order, err error) {
	ctx, run := s.inst.Start(ctx, useCaseOrderList, "GetUserOrders",
		attribute.Int64("user.id", userID),
	)
	defer func() { run.End(err) }()

	out := []view.Order{}
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		orders, err := tx.Orders().ListByUser(ctx, userID)
		if err != nil || len(orders) == 0 {
			return err
		}
		username, err := usernameOf(ctx, tx, userID)
		if err != nil {
			return err
		}
		for _, o := range orders {
			out = append(out, view.NewOrder(o, username))
		}
		return nil
	})
	if err != nil {
		return nil, application.WrapRepositoryError(err)
	}
	return out, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID int64) (_ view.Order, err error) {
	ctx, run := s.inst.Start(ctx, useCaseOrderGet, "GetOrder",
		attribute.Int64("order.id", orderID),
	)
	defer func() { run.End(err) }()

	var out view.Order
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		o, err := tx.Orders().FindActiveByID(ctx, orderID)
		if err != nil {
			return err
		}
		username, err := usernameOf(ctx, tx, o.UserID)
		if err != nil {
			return err
		}
		out = view.NewOrder(o, username)
		return nil
	})
	if err != nil {
		return view.Order{}, application.WrapRepositoryError(err)
	}
	return out, nil
}

// CancelOrder cancels a PENDING order on behalf of its owner.
func (s *Service) CancelOrder(ctx context.Context, userID, orderID int64) (_ bool, err error) {
	ctx, run := s.inst.Start(ctx, useCaseOrderCancel, "CancelOrder",
		attribute.Int64("user.id", userID),
		attribute.Int64("order.id", orderID),
	)
	defer func() { run.End(err) }()

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		o, err := tx.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := o.Cancel(userID); err != nil {
			return err
		}
		if err := tx.Orders().Update(ctx, o); err != nil {
			return err
		}
		return tx.Outbox().Append(ctx, domorder.NewOrderCancelledEvent(o))
	})
	if err != nil {
		return false, application.WrapRepositoryError(err)
	}
	return true, nil
}

// UpdateOrderStatus lets an ADMIN advance an order. Cancellation is not
// possible through this path.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID int64, status string, actingUserID int64) (_ view.Order, err error) {
	ctx, run := s.inst.Start(ctx, useCaseOrderStatus, "UpdateOrderStatus",
		attribute.Int64("order.id", orderID),
		attribute.Int64("user.id", actingUserID),
		attribute.String("order.target_status", status),
	)
	defer func() { run.End(err) }()

	var out view.Order
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		actor, err := tx.Users().FindActiveByID(ctx, actingUserID)
		if err != nil {
			return err
		}
		if err := authz.RequireUser(actor, domuser.RoleAdmin); err != nil {
			return err
		}
		o, err := tx.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		target, err := domorder.ParseStatus(status)
		if err != nil {
			return err
		}
		from := o.Status
		if err := o.ChangeStatus(target); err != nil {
			return err
		}
		if err := tx.Orders().Update(ctx, o); err != nil {
			return err
		}
		if err := tx.Outbox().Append(ctx, domorder.NewOrderStatusChangedEvent(o, from)); err != nil {
			return err
		}
		username, err := usernameOf(ctx, tx, o.UserID)
		if err != nil {
			return err
		}
		out = view.NewOrder(o, username)
		return nil
	})
	if err != nil {
		return view.Order{}, application.WrapRepositoryError(err)
	}
	return out, nil
}

// usernameOf resolves the owner name, including soft-deleted users.
func usernameOf(ctx context.Context, tx application.Tx, userID int64) (string, error) {
	u, err := tx.Users().FindByID(ctx, userID)
	if errors.Is(err, domuser.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return u.Username, nil
}
