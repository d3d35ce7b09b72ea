package checkout_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/minishop-orders/internal/application/apptest"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/checkout"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/orderitem"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/payment"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/apperror"
	domcatalog "github.com/Zhima-Mochi/minishop-orders/internal/domain/catalog"
	domorder "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	dompayment "github.com/Zhima-Mochi/minishop-orders/internal/domain/payment"
)

func TestProcessOrderCreatesAndSettles(t *testing.T) {
	f := apptest.New(t)

	got, err := f.Checkout.Execute(context.Background(), checkout.ProcessOrderInput{
		UserID:  f.CustomerID,
		Items:   []orderitem.Input{apptest.Line(f.PenID, 2, 10), apptest.Line(f.NotebookID, 1, 5)},
		Payment: payment.Input{Method: "CASH"},
	})
	require.NoError(t, err)

	assert.Equal(t, domorder.StatusDelivered, got.Order.Status)
	assert.True(t, got.Order.TotalPrice.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, got.Order.ID, got.Payment.OrderID)
	assert.True(t, got.Payment.Amount.Equal(decimal.NewFromInt(25)))
	assert.True(t, f.User(t, f.CustomerID).Balance.Equal(decimal.NewFromInt(75)))
	assert.Len(t, f.OrderItems(t, got.Order.ID), 2)

	assert.Equal(t, []string{
		domorder.EventItemAdded,
		domorder.EventItemAdded,
		domorder.EventCreated,
		dompayment.EventCreated,
		domorder.EventStatusChanged,
	}, f.PendingEvents(t))
}

func TestProcessOrderIsAllOrNothing(t *testing.T) {
	tests := []struct {
		name    string
		items   func(f *apptest.Fixture) []orderitem.Input
		payment payment.Input
		want    error
	}{
		{
			name:    "insufficient balance",
			items:   func(f *apptest.Fixture) []orderitem.Input { return []orderitem.Input{apptest.Line(f.PenID, 20, 10)} },
			payment: payment.Input{Method: "CASH"},
			want:    dompayment.ErrInsufficientBalance,
		},
		{
			name:    "invalid method",
			items:   func(f *apptest.Fixture) []orderitem.Input { return []orderitem.Input{apptest.Line(f.PenID, 1, 10)} },
			payment: payment.Input{Method: "IOU"},
			want:    dompayment.ErrInvalidMethod,
		},
		{
			name:    "unknown product",
			items:   func(*apptest.Fixture) []orderitem.Input { return []orderitem.Input{apptest.Line(777, 1, 10)} },
			payment: payment.Input{Method: "CASH"},
			want:    domcatalog.ErrProductNotFound,
		},
		{
			name:    "empty order",
			items:   func(*apptest.Fixture) []orderitem.Input { return nil },
			payment: payment.Input{Method: "CASH"},
			want:    apperror.ErrValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := apptest.New(t)
			_, err := f.Checkout.Execute(context.Background(), checkout.ProcessOrderInput{
				UserID:  f.CustomerID,
				Items:   tt.items(f),
				Payment: tt.payment,
			})
			require.ErrorIs(t, err, tt.want)

			assert.True(t, f.User(t, f.CustomerID).Balance.Equal(decimal.NewFromInt(100)))
			assert.Empty(t, f.UserOrders(t, f.CustomerID))
			assert.Empty(t, f.PendingEvents(t))
		})
	}
}
