package orderitem_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/minishop-orders/internal/application/apptest"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/orderitem"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/payment"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/apperror"
	domcatalog "github.com/Zhima-Mochi/minishop-orders/internal/domain/catalog"
	domorder "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
)

func newOrder(t *testing.T, f *apptest.Fixture, items ...orderitem.Input) int64 {
	t.Helper()
	o, err := f.Orders.CreateOrder(context.Background(), f.CustomerID, items)
	require.NoError(t, err)
	return o.ID
}

func TestCreateOrderItemOnPendingOrder(t *testing.T) {
	f := apptest.New(t)
	ctx := context.Background()
	orderID := newOrder(t, f, apptest.Line(f.PenID, 1, 10))

	got, err := f.Items.CreateOrderItem(ctx, orderID, apptest.Line(f.NotebookID, 3, 5))
	require.NoError(t, err)
	assert.Equal(t, orderID, got.OrderID)
	assert.Equal(t, "notebook", got.ProductName)
	assert.Equal(t, domorder.StatusPending, got.OrderStatus)
	assert.True(t, got.TotalPrice.Equal(decimal.NewFromInt(15)))

	items, err := f.Items.GetOrderItemsByOrderID(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "pen", items[0].ProductName)

	// trust pricing leaves the stored order total alone
	assert.True(t, f.Order(t, orderID).TotalPrice.Equal(decimal.NewFromInt(10)))
}

func TestCreateOrderItemRejected(t *testing.T) {
	f := apptest.New(t)
	ctx := context.Background()
	paid := newOrder(t, f, apptest.Line(f.PenID, 1, 10))
	_, err := f.Payments.CreatePayment(ctx, paid, payment.Input{Method: "CASH"})
	require.NoError(t, err)
	pending := newOrder(t, f, apptest.Line(f.PenID, 1, 10))

	tests := []struct {
		name    string
		orderID int64
		in      orderitem.Input
		want    error
	}{
		{"delivered order", paid, apptest.Line(f.NotebookID, 1, 5), domorder.ErrInvalidStatus},
		{"missing order", 999, apptest.Line(f.NotebookID, 1, 5), domorder.ErrNotFound},
		{"missing product", pending, apptest.Line(999, 1, 5), domcatalog.ErrProductNotFound},
		{"negative quantity", pending, apptest.Line(f.NotebookID, -1, 5), apperror.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Items.CreateOrderItem(ctx, tt.orderID, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Len(t, f.OrderItems(t, paid), 1)
	assert.Len(t, f.OrderItems(t, pending), 1)
}

func TestRecomputePricingKeepsOrderTotalInSync(t *testing.T) {
	f := apptest.New(t, apptest.WithPricing(domorder.PricingRecompute))
	ctx := context.Background()

	in := apptest.Line(f.PenID, 2, 10)
	in.TotalPrice = decimal.NewFromInt(1)
	orderID := newOrder(t, f, in)
	assert.True(t, f.Order(t, orderID).TotalPrice.Equal(decimal.NewFromInt(20)))

	_, err := f.Items.CreateOrderItem(ctx, orderID, apptest.Line(f.NotebookID, 2, 5))
	require.NoError(t, err)
	assert.True(t, f.Order(t, orderID).TotalPrice.Equal(decimal.NewFromInt(30)))

	ok, err := f.Items.CancelOrderItem(ctx, orderID, f.PenID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, f.Order(t, orderID).TotalPrice.Equal(decimal.NewFromInt(10)))
}

func TestCancelOrderItem(t *testing.T) {
	f := apptest.New(t)
	ctx := context.Background()
	orderID := newOrder(t, f, apptest.Line(f.PenID, 1, 10), apptest.Line(f.NotebookID, 1, 5))

	ok, err := f.Items.CancelOrderItem(ctx, orderID, f.NotebookID)
	require.NoError(t, err)
	assert.True(t, ok)
	items := f.OrderItems(t, orderID)
	require.Len(t, items, 1)
	assert.Equal(t, f.PenID, items[0].ProductID)
	assert.Contains(t, f.PendingEvents(t), domorder.EventItemRemoved)

	_, err = f.Items.CancelOrderItem(ctx, orderID, f.NotebookID)
	assert.ErrorIs(t, err, domorder.ErrItemNotFound)

	_, err = f.Payments.CreatePayment(ctx, orderID, payment.Input{Method: "CASH"})
	require.NoError(t, err)
	_, err = f.Items.CancelOrderItem(ctx, orderID, f.PenID)
	assert.ErrorIs(t, err, domorder.ErrInvalidStatus)
	assert.Len(t, f.OrderItems(t, orderID), 1)
}

func TestGetUserOrderItems(t *testing.T) {
	f := apptest.New(t)
	ctx := context.Background()
	newOrder(t, f, apptest.Line(f.PenID, 1, 10))
	newOrder(t, f, apptest.Line(f.NotebookID, 2, 5))

	got, err := f.Items.GetUserOrderItems(ctx, f.CustomerID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "pen", got[0].ProductName)
	assert.Equal(t, "notebook", got[1].ProductName)

	none, err := f.Items.GetUserOrderItems(ctx, f.AdminID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetUserOrdersByMonth(t *testing.T) {
	f := apptest.New(t)
	ctx := context.Background()
	newOrder(t, f, apptest.Line(f.PenID, 2, 10))
	newOrder(t, f, apptest.Line(f.NotebookID, 1, 5))
	now := time.Now().UTC()

	got, err := f.Items.GetUserOrdersByMonth(ctx, f.CustomerID, int(now.Month()), now.Year())
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalOrders)
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(25)))

	empty, err := f.Items.GetUserOrdersByMonth(ctx, f.CustomerID, int(now.Month()), now.Year()-1)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalOrders)
	assert.True(t, empty.TotalAmount.IsZero())

	for _, month := range []int{0, 13} {
		_, err := f.Items.GetUserOrdersByMonth(ctx, f.CustomerID, month, now.Year())
		assert.ErrorIs(t, err, apperror.ErrValidation)
	}
}

func TestGetUserOrderStatisticsByPeriod(t *testing.T) {
	f := apptest.New(t)
	ctx := context.Background()
	newOrder(t, f, apptest.Line(f.PenID, 2, 10), apptest.Line(f.NotebookID, 1, 5))
	newOrder(t, f, apptest.Line(f.PenID, 3, 10))
	now := time.Now().UTC()

	got, err := f.Items.GetUserOrderStatisticsByPeriod(ctx, f.CustomerID, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "pen", got[0].ProductName)
	assert.Equal(t, 5, got[0].TotalQuantity)
	assert.True(t, got[0].TotalPrice.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, "notebook", got[1].ProductName)
	assert.Equal(t, 1, got[1].TotalQuantity)

	past, err := f.Items.GetUserOrderStatisticsByPeriod(ctx, f.CustomerID, now.Add(-48*time.Hour), now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, past)

	_, err = f.Items.GetUserOrderStatisticsByPeriod(ctx, f.CustomerID, now, now.Add(-time.Second))
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestGetProductOrderCount(t *testing.T) {
	f := apptest.New(t)
	ctx := context.Background()

	n, err := f.Items.GetProductOrderCount(ctx, f.PenID)
	require.NoError(t, err)
	assert.Zero(t, n)

	newOrder(t, f, apptest.Line(f.PenID, 5, 10))
	newOrder(t, f, apptest.Line(f.PenID, 1, 10), apptest.Line(f.NotebookID, 1, 5))

	n, err = f.Items.GetProductOrderCount(ctx, f.PenID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
