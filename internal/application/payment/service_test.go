package payment_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/minishop-orders/internal/application"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/apptest"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/orderitem"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/payment"
	domorder "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	dompayment "github.com/Zhima-Mochi/minishop-orders/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/sqlstore"
)

func createOrder(t *testing.T, f *apptest.Fixture, items ...orderitem.Input) int64 {
	t.Helper()
	o, err := f.Orders.CreateOrder(context.Background(), f.CustomerID, items)
	require.NoError(t, err)
	return o.ID
}

func TestCreatePaymentDebitsTotalAndDelivers(t *testing.T) {
	f := apptest.New(t)
	ctx := context.Background()
	orderID := createOrder(t, f, apptest.Line(f.PenID, 6, 10))

	paidAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	got, err := f.Payments.CreatePayment(ctx, orderID, payment.Input{Method: "card", PaymentDate: paidAt})
	require.NoError(t, err)

	assert.Equal(t, dompayment.MethodCard, got.Method)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(60)), "amount defaults to the order total")
	assert.Equal(t, paidAt, got.PaymentDate)

	assert.True(t, f.User(t, f.CustomerID).Balance.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, domorder.StatusDelivered, f.Order(t, orderID).Status)
	assert.Len(t, f.OrderPayments(t, orderID), 1)

	_, err = f.Payments.CreatePayment(ctx, orderID, payment.Input{Method: "CASH"})
	require.ErrorIs(t, err, domorder.ErrInvalidStatus, "a DELIVERED order cannot be paid again")
	assert.True(t, f.User(t, f.CustomerID).Balance.Equal(decimal.NewFromInt(40)))
	assert.Len(t, f.OrderPayments(t, orderID), 1)
}

func TestCreatePaymentDebitsTotalNotRequestedAmount(t *testing.T) {
	f := apptest.New(t)
	orderID := createOrder(t, f, apptest.Line(f.NotebookID, 2, 5))

	got, err := f.Payments.CreatePayment(context.Background(), orderID, payment.Input{
		Method: "TRANSFER",
		Amount: decimal.NewFromInt(1),
	})
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(1)))
	assert.True(t, f.User(t, f.CustomerID).Balance.Equal(decimal.NewFromInt(90)))
}

func TestCreatePaymentFailuresLeaveStateUnchanged(t *testing.T) {
	tests := []struct {
		name   string
		items  func(f *apptest.Fixture) []orderitem.Input
		method string
		want   error
	}{
		{
			name:   "insufficient balance",
			items:  func(f *apptest.Fixture) []orderitem.Input { return []orderitem.Input{apptest.Line(f.PenID, 11, 10)} },
			method: "CASH",
			want:   dompayment.ErrInsufficientBalance,
		},
		{
			name:   "unknown method",
			items:  func(f *apptest.Fixture) []orderitem.Input { return []orderitem.Input{apptest.Line(f.PenID, 1, 10)} },
			method: "BITCOIN",
			want:   dompayment.ErrInvalidMethod,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := apptest.New(t)
			orderID := createOrder(t, f, tt.items(f)...)
			before := f.PendingEvents(t)

			_, err := f.Payments.CreatePayment(context.Background(), orderID, payment.Input{Method: tt.method})
			require.ErrorIs(t, err, tt.want)

			assert.True(t, f.User(t, f.CustomerID).Balance.Equal(decimal.NewFromInt(100)))
			assert.Equal(t, domorder.StatusPending, f.Order(t, orderID).Status)
			assert.Empty(t, f.OrderPayments(t, orderID))
			assert.Equal(t, before, f.PendingEvents(t))
		})
	}
}

func TestCreatePaymentUnknownOrder(t *testing.T) {
	f := apptest.New(t)
	_, err := f.Payments.CreatePayment(context.Background(), 404, payment.Input{Method: "CASH"})
	assert.ErrorIs(t, err, domorder.ErrNotFound)
}

func TestCreatePaymentOnCancelledOrder(t *testing.T) {
	f := apptest.New(t)
	ctx := context.Background()
	orderID := createOrder(t, f, apptest.Line(f.PenID, 1, 10))
	_, err := f.Orders.CancelOrder(ctx, f.CustomerID, orderID)
	require.NoError(t, err)

	_, err = f.Payments.CreatePayment(ctx, orderID, payment.Input{Method: "CASH"})
	assert.ErrorIs(t, err, domorder.ErrInvalidStatus)
}

func TestGetUserPayments(t *testing.T) {
	f := apptest.New(t)
	ctx := context.Background()

	none, err := f.Payments.GetUserPayments(ctx, f.CustomerID)
	require.NoError(t, err)
	assert.Empty(t, none)

	first := createOrder(t, f, apptest.Line(f.PenID, 1, 10))
	second := createOrder(t, f, apptest.Line(f.NotebookID, 1, 5))
	_, err = f.Payments.CreatePayment(ctx, first, payment.Input{Method: "CASH"})
	require.NoError(t, err)
	_, err = f.Payments.CreatePayment(ctx, second, payment.Input{Method: "CARD"})
	require.NoError(t, err)

	got, err := f.Payments.GetUserPayments(ctx, f.CustomerID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first, got[0].OrderID)
	assert.Equal(t, second, got[1].OrderID)

	other, err := f.Payments.GetUserPayments(ctx, f.AdminID)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestConcurrentPaymentsSettleOnce(t *testing.T) {
	stores := []struct {
		name string
		open func(t *testing.T) application.Store
	}{
		{"memory", func(*testing.T) application.Store { return memory.NewStore() }},
		{"sqlite", func(t *testing.T) application.Store {
			s, err := sqlstore.Open(context.Background(), sqlstore.SQLiteDriver, filepath.Join(t.TempDir(), "orders.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		}},
	}
	for _, tt := range stores {
		t.Run(tt.name, func(t *testing.T) {
			f := apptest.New(t, apptest.WithStore(tt.open(t)))
			orderID := createOrder(t, f, apptest.Line(f.PenID, 6, 10))

			ok, errs := f.PayConcurrently(t, orderID, 10)

			assert.Equal(t, 1, ok)
			require.Len(t, errs, 9)
			for _, err := range errs {
				assert.ErrorIs(t, err, domorder.ErrInvalidStatus)
			}
			payments, err := f.Payments.GetUserPayments(context.Background(), f.CustomerID)
			require.NoError(t, err)
			assert.Len(t, payments, 1)
			assert.True(t, f.User(t, f.CustomerID).Balance.Equal(decimal.NewFromInt(40)))
			assert.Equal(t, domorder.StatusDelivered, f.Order(t, orderID).Status)
		})
	}
}
