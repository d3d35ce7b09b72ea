package account_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Zhima-Mochi/minishop-orders/internal/application/account"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/apptest"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/apperror"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/paging"
	domuser "github.com/Zhima-Mochi/minishop-orders/internal/domain/user"
)

func TestCreateUser(t *testing.T) {
	f := apptest.New(t)
	ctx := context.Background()

	u, err := f.Accounts.CreateUser(ctx, account.CreateInput{Username: " bob ", Password: "pw", Balance: decimal.NewFromInt(7)})
	require.NoError(t, err)
	assert.Equal(t, "bob", u.Username)
	assert.Equal(t, domuser.RoleUser, u.Role)
	assert.True(t, u.Balance.Equal(decimal.NewFromInt(7)))

	stored := f.User(t, u.ID)
	assert.NotEqual(t, "pw", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pw")))

	tests := []struct {
		name string
		in   account.CreateInput
		want error
	}{
		{"duplicate username", account.CreateInput{Username: "alice"}, domuser.ErrAlreadyExists},
		{"blank username", account.CreateInput{Username: "  "}, apperror.ErrValidation},
		{"negative balance", account.CreateInput{Username: "carol", Balance: decimal.NewFromInt(-1)}, apperror.ErrValidation},
		{"unknown role", account.CreateInput{Username: "dave", Role: "root"}, apperror.ErrValidation},
		{"password too long", account.CreateInput{Username: "erin", Password: strings.Repeat("x", 73)}, apperror.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Accounts.CreateUser(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpdateUser(t *testing.T) {
	f := apptest.New(t)
	ctx := context.Background()

	balance := decimal.NewFromInt(250)
	got, err := f.Accounts.UpdateUser(ctx, f.CustomerID, account.UpdateInput{Username: "alice2", Balance: &balance})
	require.NoError(t, err)
	assert.Equal(t, "alice2", got.Username)
	assert.Equal(t, domuser.RoleUser, got.Role, "empty role keeps the current one")
	assert.True(t, got.Balance.Equal(balance))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(f.User(t, f.CustomerID).PasswordHash), []byte(apptest.SeedPassword)),
		"empty password keeps the current one")

	_, err = f.Accounts.UpdateUser(ctx, f.CustomerID, account.UpdateInput{Username: "alice2", Password: "n3w"})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(f.User(t, f.CustomerID).PasswordHash), []byte("n3w")))

	_, err = f.Accounts.UpdateUser(ctx, f.CustomerID, account.UpdateInput{Username: "admin"})
	assert.ErrorIs(t, err, domuser.ErrAlreadyExists)

	_, err = f.Accounts.UpdateUser(ctx, 404, account.UpdateInput{Username: "ghost"})
	assert.ErrorIs(t, err, domuser.ErrNotFound)
}

func TestDeleteUserIsSoft(t *testing.T) {
	f := apptest.New(t)
	ctx := context.Background()

	require.NoError(t, f.Accounts.DeleteUser(ctx, f.CustomerID))

	_, err := f.Accounts.GetUser(ctx, f.CustomerID)
	assert.ErrorIs(t, err, domuser.ErrNotFound)
	assert.True(t, f.User(t, f.CustomerID).Deleted)

	users, err := f.Accounts.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Username)

	// the name is free again once the holder is deleted
	_, err = f.Accounts.CreateUser(ctx, account.CreateInput{Username: "alice"})
	assert.NoError(t, err)
}

func TestPageUsers(t *testing.T) {
	f := apptest.New(t)
	ctx := context.Background()
	for _, name := range []string{"u1", "u2", "u3"} {
		_, err := f.Accounts.CreateUser(ctx, account.CreateInput{Username: name})
		require.NoError(t, err)
	}

	page, err := f.Accounts.PageUsers(ctx, paging.Request{Page: 1, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, page.TotalItems)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "u1", page.Items[0].Username)

	last, err := f.Accounts.PageUsers(ctx, paging.Request{Page: 9})
	require.NoError(t, err)
	assert.Empty(t, last.Items)
	assert.Equal(t, paging.DefaultSize, last.Size)
}
