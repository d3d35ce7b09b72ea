package user

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/apperror"
)

func TestNewValidates(t *testing.T) {
	_, err := New("  ", "pw", RoleUser, decimal.Zero)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = New("alice", "pw", RoleUser, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, apperror.ErrValidation)

	u, err := New(" alice ", "pw", "", decimal.NewFromInt(5))
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, RoleUser, u.Role)
}

func TestDebit(t *testing.T) {
	u, err := New("alice", "pw", RoleUser, decimal.NewFromInt(100))
	require.NoError(t, err)

	require.NoError(t, u.Debit(decimal.NewFromInt(60)))
	assert.True(t, u.Balance.Equal(decimal.NewFromInt(40)))

	err = u.Debit(decimal.NewFromInt(60))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.True(t, u.Balance.Equal(decimal.NewFromInt(40)), "failed debit must not change balance")

	require.NoError(t, u.Debit(decimal.NewFromInt(40)))
	assert.True(t, u.Balance.IsZero())
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	r, err = ParseRole("")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, r)

	_, err = ParseRole("root")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
