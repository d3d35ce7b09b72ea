package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/apperror"
)

func newPending(t *testing.T) *Order {
	t.Helper()
	o, err := New(7, decimal.NewFromInt(25))
	require.NoError(t, err)
	o.ID = 1
	return o
}

func TestNewOrderIsPending(t *testing.T) {
	o := newPending(t)
	assert.Equal(t, StatusPending, o.Status)
	assert.True(t, o.TotalPrice.Equal(decimal.NewFromInt(25)))

	_, err := New(7, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestTransitionTo(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		wantErr bool
	}{
		{StatusPending, StatusDelivered, false},
		{StatusPending, StatusCancelled, false},
		{StatusPending, StatusFinished, true},
		{StatusPending, StatusPending, true},
		{StatusDelivered, StatusFinished, false},
		{StatusDelivered, StatusCancelled, true},
		{StatusDelivered, StatusPending, true},
		{StatusFinished, StatusDelivered, true},
		{StatusFinished, StatusCancelled, true},
		{StatusCancelled, StatusDelivered, true},
		{StatusCancelled, StatusPending, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			o := newPending(t)
			o.Status = tt.from

			err := o.TransitionTo(tt.to)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidStatus)
				assert.Equal(t, tt.from, o.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, o.Status)
		})
	}
}

func TestCancel(t *testing.T) {
	o := newPending(t)
	assert.ErrorIs(t, o.Cancel(99), ErrCannotCancel, "only the owner may cancel")
	require.NoError(t, o.Cancel(7))
	assert.Equal(t, StatusCancelled, o.Status)
	assert.ErrorIs(t, o.Cancel(7), ErrCannotCancel)

	delivered := newPending(t)
	require.NoError(t, delivered.MarkDelivered())
	assert.ErrorIs(t, delivered.Cancel(7), ErrCannotCancel)
}

func TestChangeStatusNeverCancels(t *testing.T) {
	o := newPending(t)
	assert.ErrorIs(t, o.ChangeStatus(StatusCancelled), ErrCannotCancel)
	assert.Equal(t, StatusPending, o.Status)

	require.NoError(t, o.ChangeStatus(StatusDelivered))
	require.NoError(t, o.ChangeStatus(StatusFinished))
	assert.ErrorIs(t, o.ChangeStatus(StatusDelivered), ErrInvalidStatus)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("finished")
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, s)

	_, err = ParseStatus("SHIPPED")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestPricingPolicy(t *testing.T) {
	unit := decimal.NewFromInt(10)
	given := decimal.NewFromInt(15)

	assert.True(t, PricingTrust.LineTotal(2, unit, given).Equal(given))
	assert.True(t, PricingRecompute.LineTotal(2, unit, given).Equal(decimal.NewFromInt(20)))

	p, err := ParsePricingPolicy("")
	require.NoError(t, err)
	assert.Equal(t, PricingTrust, p)
	_, err = ParsePricingPolicy("guess")
	assert.Error(t, err)
}

func TestRecomputeTotal(t *testing.T) {
	o := newPending(t)
	a, err := NewItem(o.ID, 1, 2, decimal.NewFromInt(10), decimal.NewFromInt(20))
	require.NoError(t, err)
	b, err := NewItem(o.ID, 2, 1, decimal.NewFromInt(5), decimal.NewFromInt(5))
	require.NoError(t, err)

	o.RecomputeTotal([]*Item{a, b})
	assert.True(t, o.TotalPrice.Equal(decimal.NewFromInt(25)))

	_, err = NewItem(o.ID, 1, 0, decimal.NewFromInt(10), decimal.NewFromInt(0))
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestAmountsKeepTwoDecimals(t *testing.T) {
	_, err := NewItem(1, 1, 1, decimal.RequireFromString("0.01"), decimal.RequireFromString("0.005"))
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = NewItem(1, 1, 1, decimal.RequireFromString("0.015"), decimal.RequireFromString("0.02"))
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = New(1, decimal.RequireFromString("10.001"))
	assert.ErrorIs(t, err, apperror.ErrValidation)

	it, err := NewItem(1, 1, 3, decimal.RequireFromString("0.50"), decimal.RequireFromString("1.500"))
	require.NoError(t, err)
	assert.True(t, it.TotalPrice.Equal(decimal.RequireFromString("1.5")))
}
