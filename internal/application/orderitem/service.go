// Package orderitem attaches line items to orders and answers the per-user
// purchase statistics.
package orderitem

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Zhima-Mochi/minishop-orders/internal/application"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/view"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/apperror"
	domcatalog "github.com/Zhima-Mochi/minishop-orders/internal/domain/catalog"
	domorder "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
)

const (
	itemService = "order-item-service"

	useCaseItemCreate      = "order_item.create"
	useCaseItemList        = "order_item.list_by_order"
	useCaseItemCancel      = "order_item.cancel"
	useCaseUserItems       = "order_item.list_by_user"
	useCaseMonthlyStats    = "order_item.stats_monthly"
	useCasePeriodStats     = "order_item.stats_period"
	useCaseProductOrderCnt = "order_item.product_order_count"
)

// Input describes one requested line item.
type Input struct {
	ProductID  int64
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

type Service struct {
	store   application.Store
	pricing domorder.PricingPolicy
	inst    *application.Instrument
}

func NewService(store application.Store, pricing domorder.PricingPolicy, tel observability.Observability) *Service {
	if pricing == "" {
		pricing = domorder.PricingTrust
	}
	return &Service{
		store:   store,
		pricing: pricing,
		inst:    application.NewInstrument(itemService, tel),
	}
}

func (s *Service) Pricing() domorder.PricingPolicy { return s.pricing }

// LineTotal applies the pricing policy to in.
func (s *Service) LineTotal(in Input) decimal.Decimal {
	return s.pricing.LineTotal(in.Quantity, in.UnitPrice, in.TotalPrice)
}

// OrderTotal sums the line totals of ins under the pricing policy.
func (s *Service) OrderTotal(ins []Input) decimal.Decimal {
	total := decimal.Zero
	for _, in := range ins {
		total = total.Add(s.LineTotal(in))
	}
	return total
}

// AddItem validates the product and stores one line item of o inside tx.
// It is shared by every workflow that creates items.
func (s *Service) AddItem(ctx context.Context, tx application.Tx, o *domorder.Order, in Input) (*domorder.Item, *domcatalog.Product, error) {
	product, err := tx.Products().FindActiveByID(ctx, in.ProductID)
	if err != nil {
		return nil, nil, err
	}
	item, err := domorder.NewItem(o.ID, product.ID, in.Quantity, in.UnitPrice, s.LineTotal(in))
	if err != nil {
		return nil, nil, err
	}
	if err := tx.OrderItems().Insert(ctx, item); err != nil {
		return nil, nil, err
	}
	if err := tx.Outbox().Append(ctx, domorder.NewOrderItemAddedEvent(item)); err != nil {
		return nil, nil, err
	}
	return item, product, nil
}

// CreateOrderItem appends an item to an existing PENDING order.
func (s *Service) CreateOrderItem(ctx context.Context, orderID int64, in Input) (_ view.OrderItem, err error) {
	ctx, run := s.inst.Start(ctx, useCaseItemCreate, "CreateOrderItem",
		attribute.Int64("order.id", orderID),
		attribute.Int64("product.id", in.ProductID),
	)
	defer func() { run.End(err) }()

	var out view.OrderItem
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		o, err := tx.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := o.EnsurePending(); err != nil {
			return err
		}
		item, product, err := s.AddItem(ctx, tx, o, in)
		if err != nil {
			return err
		}
		if s.pricing.TracksItems() {
			if err := s.recomputeTotal(ctx, tx, o); err != nil {
				return err
			}
		}
		out = view.NewOrderItem(item, product.Name, o.Status)
		return nil
	})
	if err != nil {
		return view.OrderItem{}, application.WrapRepositoryError(err)
	}
	run.Annotate(observability.F("order_item_id", out.ID))
	return out, nil
}

func (s *Service) GetOrderItemsByOrderID(ctx context.Context, orderID int64) (_ []view.OrderItem, err error) {
	ctx, run := s.inst.Start(ctx, useCaseItemList, "GetOrderItemsByOrderID",
		attribute.Int64("order.id", orderID),
	)
	defer func() { run.End(err) }()

	out := []view.OrderItem{}
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		items, err := tx.OrderItems().ListByOrder(ctx, orderID)
		if err != nil || len(items) == 0 {
			return err
		}
		o, err := tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		names, err := productNames(ctx, tx, items)
		if err != nil {
			return err
		}
		for _, it := range items {
			out = append(out, view.NewOrderItem(it, names[it.ProductID], o.Status))
		}
		return nil
	})
	if err != nil {
		return nil, application.WrapRepositoryError(err)
	}
	return out, nil
}

// CancelOrderItem removes the item of productID from a PENDING order.
func (s *Service) CancelOrderItem(ctx context.Context, orderID, productID int64) (_ bool, err error) {
	ctx, run := s.inst.Start(ctx, useCaseItemCancel, "CancelOrderItem",
		attribute.Int64("order.id", orderID),
		attribute.Int64("product.id", productID),
	)
	defer func() { run.End(err) }()

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		o, err := tx.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := o.EnsurePending(); err != nil {
			return err
		}
		item, err := tx.OrderItems().FindByOrderAndProduct(ctx, orderID, productID)
		if err != nil {
			return err
		}
		if err := tx.OrderItems().Delete(ctx, item.ID); err != nil {
			return err
		}
		if s.pricing.TracksItems() {
			if err := s.recomputeTotal(ctx, tx, o); err != nil {
				return err
			}
		}
		return tx.Outbox().Append(ctx, domorder.NewOrderItemRemovedEvent(item))
	})
	if err != nil {
		return false, application.WrapRepositoryError(err)
	}
	return true, nil
}

// GetUserOrderItems lists every item across the user's orders.
func (s *Service) GetUserOrderItems(ctx context.Context, userID int64) (_ []view.OrderItem, err error) {
	ctx, run := s.inst.Start(ctx, useCaseUserItems, "GetUserOrderItems",
		attribute.Int64("user.id", userID),
	)
	defer func() { run.End(err) }()

	out := []view.OrderItem{}
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		lines, err := userLines(ctx, tx, userID, nil)
		if err != nil {
			return err
		}
		for _, l := range lines {
			out = append(out, view.NewOrderItem(l.item, l.productName, l.order.Status))
		}
		return nil
	})
	if err != nil {
		return nil, application.WrapRepositoryError(err)
	}
	return out, nil
}

// GetUserOrdersByMonth counts the user's orders created in the given month
// (UTC) and sums their totals.
func (s *Service) GetUserOrdersByMonth(ctx context.Context, userID int64, month, year int) (_ view.OrderStatistics, err error) {
	ctx, run := s.inst.Start(ctx, useCaseMonthlyStats, "GetUserOrdersByMonth",
		attribute.Int64("user.id", userID),
		attribute.Int("month", month),
		attribute.Int("year", year),
	)
	defer func() { run.End(err) }()

	if month < 1 || month > 12 {
		return view.OrderStatistics{}, apperror.Validation("month must be between 1 and 12")
	}
	if year < 1 {
		return view.OrderStatistics{}, apperror.Validation("year must be positive")
	}

	stats := view.OrderStatistics{TotalAmount: decimal.Zero}
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		orders, err := tx.Orders().ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		for _, o := range orders {
			created := o.CreatedAt.UTC()
			if created.Year() != year || int(created.Month()) != month {
				continue
			}
			stats.TotalOrders++
			stats.TotalAmount = stats.TotalAmount.Add(o.TotalPrice)
		}
		return nil
	})
	if err != nil {
		return view.OrderStatistics{}, application.WrapRepositoryError(err)
	}
	return stats, nil
}

// GetUserOrderStatisticsByPeriod groups the user's items by product for
// orders created within [start, end].
func (s *Service) GetUserOrderStatisticsByPeriod(ctx context.Context, userID int64, start, end time.Time) (_ []view.ProductOrderStatistics, err error) {
	ctx, run := s.inst.Start(ctx, useCasePeriodStats, "GetUserOrderStatisticsByPeriod",
		attribute.Int64("user.id", userID),
	)
	defer func() { run.End(err) }()

	if end.Before(start) {
		return nil, apperror.Validation("period end must not be before start")
	}

	out := []view.ProductOrderStatistics{}
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		inPeriod := func(o *domorder.Order) bool {
			return !o.CreatedAt.Before(start) && !o.CreatedAt.After(end)
		}
		lines, err := userLines(ctx, tx, userID, inPeriod)
		if err != nil {
			return err
		}
		index := map[int64]int{}
		for _, l := range lines {
			i, ok := index[l.item.ProductID]
			if !ok {
				i = len(out)
				index[l.item.ProductID] = i
				out = append(out, view.ProductOrderStatistics{ProductName: l.productName, TotalPrice: decimal.Zero})
			}
			out[i].TotalQuantity += l.item.Quantity
			out[i].TotalPrice = out[i].TotalPrice.Add(l.item.TotalPrice)
		}
		return nil
	})
	if err != nil {
		return nil, application.WrapRepositoryError(err)
	}
	return out, nil
}

// GetProductOrderCount returns how many order items reference productID.
func (s *Service) GetProductOrderCount(ctx context.Context, productID int64) (_ int, err error) {
	ctx, run := s.inst.Start(ctx, useCaseProductOrderCnt, "GetProductOrderCount",
		attribute.Int64("product.id", productID),
	)
	defer func() { run.End(err) }()

	var n int
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		var err error
		n, err = tx.OrderItems().CountByProduct(ctx, productID)
		return err
	})
	if err != nil {
		return 0, application.WrapRepositoryError(err)
	}
	return n, nil
}

func (s *Service) recomputeTotal(ctx context.Context, tx application.Tx, o *domorder.Order) error {
	items, err := tx.OrderItems().ListByOrder(ctx, o.ID)
	if err != nil {
		return err
	}
	o.RecomputeTotal(items)
	return tx.Orders().Update(ctx, o)
}

type line struct {
	order       *domorder.Order
	item        *domorder.Item
	productName string
}

func userLines(ctx context.Context, tx application.Tx, userID int64, keep func(*domorder.Order) bool) ([]line, error) {
	orders, err := tx.Orders().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var (
		lines []line
		all   []*domorder.Item
	)
	for _, o := range orders {
		if keep != nil && !keep(o) {
			continue
		}
		items, err := tx.OrderItems().ListByOrder(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			lines = append(lines, line{order: o, item: it})
		}
		all = append(all, items...)
	}
	names, err := productNames(ctx, tx, all)
	if err != nil {
		return nil, err
	}
	for i := range lines {
		lines[i].productName = names[lines[i].item.ProductID]
	}
	return lines, nil
}

// productNames resolves names including soft-deleted products so history stays readable.
func productNames(ctx context.Context, tx application.Tx, items []*domorder.Item) (map[int64]string, error) {
	names := make(map[int64]string, len(items))
	for _, it := range items {
		if _, ok := names[it.ProductID]; ok {
			continue
		}
		p, err := tx.Products().FindByID(ctx, it.ProductID)
		switch {
		case err == nil:
			names[it.ProductID] = p.Name
		case errors.Is(err, domcatalog.ErrProductNotFound):
			names[it.ProductID] = ""
		default:
			return nil, err
		}
	}
	return names, nil
}
